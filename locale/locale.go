// Package locale holds the user-facing strings in English and Japanese.
package locale

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var tables embed.FS

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// Catalog translates keys for one language.
type Catalog struct {
	tag     language.Tag
	strings map[string]string
}

var (
	loadOnce sync.Once
	loaded   map[string]map[string]string
	loadErr  error
)

func load() (map[string]map[string]string, error) {
	loadOnce.Do(func() {
		loaded = make(map[string]map[string]string, len(supported))
		for _, tag := range supported {
			base, _ := tag.Base()
			data, err := tables.ReadFile(base.String() + ".yaml")
			if err != nil {
				loadErr = fmt.Errorf("locale: %s: %w", base, err)
				return
			}
			table := map[string]string{}
			if err := yaml.Unmarshal(data, &table); err != nil {
				loadErr = fmt.Errorf("locale: decode %s: %w", base, err)
				return
			}
			loaded[base.String()] = table
		}
	})
	return loaded, loadErr
}

// New returns the catalog best matching lang, a BCP 47 tag such as "ja-JP".
// Unknown or empty tags fall back to English.
func New(lang string) *Catalog {
	tag := language.English
	if t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")); err == nil {
		_, i, conf := matcher.Match(t)
		if conf != language.No {
			tag = supported[i]
		}
	}
	all, err := load()
	if err != nil {
		return &Catalog{tag: language.English}
	}
	base, _ := tag.Base()
	return &Catalog{tag: tag, strings: all[base.String()]}
}

// Language returns the matched language tag.
func (c *Catalog) Language() language.Tag { return c.tag }

// Translate returns the string for key with {0}, {1}, ... replaced by args.
// A missing key returns the key itself.
func (c *Catalog) Translate(key string, args ...any) string {
	text, ok := c.strings[key]
	if !ok {
		text = key
	}
	for i, arg := range args {
		text = strings.Replace(text, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg), 1)
	}
	return text
}

// Has reports whether key has a translation.
func (c *Catalog) Has(key string) bool {
	_, ok := c.strings[key]
	return ok
}
