package vault

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	fileSchemeRE = regexp.MustCompile(`(?i)^file:/*`)
	schemeRE     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	controlRE    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	separatorsRE = regexp.MustCompile(`[\\/]+`)
	reservedRE   = regexp.MustCompile(`[:*?"<>|]+`)
)

// SanitizeFileName makes a user or message supplied name safe to join to the
// vault root: URI schemes and control characters are stripped and
// backslashes become slashes. The result is NFC normalized.
func SanitizeFileName(name string) string {
	n := strings.TrimSpace(name)
	if fileSchemeRE.MatchString(n) {
		n = fileSchemeRE.ReplaceAllString(n, "")
	}
	n = schemeRE.ReplaceAllString(n, "")
	n = controlRE.ReplaceAllString(n, "")
	n = strings.ReplaceAll(n, `\`, "/")
	return norm.NFC.String(n)
}

// CleanName turns a typed title into one path segment: separators become
// "-" and the characters : * ? " < > | are removed.
func CleanName(title string) string {
	s := separatorsRE.ReplaceAllString(strings.TrimSpace(title), "-")
	return strings.TrimSpace(reservedRE.ReplaceAllString(s, ""))
}

// CleanDisplayName is CleanName plus a ".md" extension. It returns "" when
// nothing usable is left.
func CleanDisplayName(title string) string {
	s := CleanName(title)
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(s), ".md") {
		s += ".md"
	}
	return s
}

// NoteName returns the name a note is saved under: a bare name without a
// folder gets ".md" when it has no extension yet.
func NoteName(name string) string {
	if strings.Contains(name, "/") || strings.HasSuffix(name, ".md") {
		return name
	}
	return name + ".md"
}

// unique returns the first candidate name for which taken is false. The
// first candidate is base+ext, then base+sep+n+ext from start upward.
func unique(dir, base, ext, sep string, start int, taken func(string) bool) string {
	name := join(dir, base+ext)
	for n := start; taken(name); n++ {
		name = join(dir, base+sep+strconv.Itoa(n)+ext)
	}
	return name
}

func join(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return path.Join(dir, name)
}

func splitExt(name string) (dir, base, ext string) {
	dir = path.Dir(name)
	ext = path.Ext(name)
	base = strings.TrimSuffix(path.Base(name), ext)
	return dir, base, ext
}
