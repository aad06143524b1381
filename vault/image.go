package vault

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a resolved local image.
type Image struct {
	URI    string
	Width  int
	Height int
}

// ResolveImage finds the file an image reference in note currentFile points
// to. Relative references resolve against the note's folder first, then the
// root; a leading slash means the root. References leaving the root report
// ErrOutsideRoot.
func (v *Vault) ResolveImage(imagePath, currentFile string) (Image, error) {
	ref := strings.Trim(strings.TrimSpace(imagePath), "<>")
	if ref == "" {
		return Image{}, ErrInvalidName
	}
	if u, err := url.Parse(ref); err == nil && strings.EqualFold(u.Scheme, "file") {
		rel, err := v.Rel(filepath.FromSlash(u.Path))
		if err != nil {
			return Image{}, err
		}
		ref = "/" + rel
	} else if schemeRE.MatchString(ref) {
		return Image{}, ErrInvalidName
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	ref = strings.ReplaceAll(ref, `\`, "/")

	var candidates []string
	if strings.HasPrefix(ref, "/") {
		candidates = append(candidates, path.Clean(ref)[1:])
	} else {
		dir := "."
		if cur := SanitizeFileName(currentFile); cur != "" {
			dir = path.Dir(path.Clean("/" + cur)[1:])
		}
		for _, base := range []string{dir, "."} {
			c := path.Join(base, ref)
			if c == ".." || strings.HasPrefix(c, "../") {
				return Image{}, fmt.Errorf("%w: %s", ErrOutsideRoot, imagePath)
			}
			candidates = append(candidates, c)
		}
	}

	for _, c := range candidates {
		p, err := v.abs(c)
		if err != nil {
			return Image{}, err
		}
		info, err := v.fs.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		img := Image{URI: (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()}
		img.Width, img.Height = v.dimensions(p)
		return img, nil
	}
	return Image{}, fmt.Errorf("vault: image %s: %w", imagePath, fs.ErrNotExist)
}

func (v *Vault) dimensions(p string) (int, int) {
	f, err := v.fs.Open(p)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		v.log.Debug("vault: image header", "path", p, "err", err)
		return 0, 0
	}
	v.log.Debug("vault: image header", "path", p, "format", format, "width", cfg.Width, "height", cfg.Height)
	return cfg.Width, cfg.Height
}

