// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every lookup falls back to.
const BaseLocale = "en-US"

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedLocales embed.FS

var (
	catalogsMu sync.RWMutex
	// catalogs holds embedded and registered catalogs by locale.
	catalogs = map[string]*Catalog{}
	matcher  language.Matcher
	tags     []string

	loadOnce sync.Once
	loadErr  error
)

// GetCatalog returns the catalog best matching the given locale.
// Falls back to en-US if no supported locale matches.
func GetCatalog(locale string) *Catalog {
	ensureLoaded()

	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	catalogsMu.RLock()
	m, supported := matcher, tags
	catalogsMu.RUnlock()

	if m != nil {
		if tag, err := language.Parse(requested); err == nil {
			_, index, confidence := m.Match(tag)
			if confidence != language.No && index < len(supported) {
				if c, ok := lookupCatalog(supported[index]); ok {
					return c
				}
			}
		}
	}
	if c, ok := lookupCatalog(BaseLocale); ok {
		return c
	}
	return NewCatalog(BaseLocale, nil)
}

// LoadError reports a failure loading the embedded catalogs, if any.
func LoadError() error {
	ensureLoaded()
	return loadErr
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Has reports whether a template exists for code.
func (c *Catalog) Has(code Code) bool {
	_, ok := c.messages[code]
	return ok
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata to ensure
// consistent output (template variables without metadata render as empty).
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// RegisterCatalog registers a catalog for the given locale and makes it
// available to locale negotiation.
func RegisterCatalog(locale string, cat *Catalog) {
	ensureLoaded()
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
	rebuildMatcherLocked()
}

// NewCatalog creates a new catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
	}
}

// LoadFromFS parses every locales/*.yaml file in fsys into catalogs keyed by locale.
func LoadFromFS(fsys fs.FS) (map[string]*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	out := make(map[string]*Catalog, len(paths))
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		locale := strings.TrimSpace(file.Locale)
		if locale == "" {
			return nil, fmt.Errorf("catalog %s: locale is required", path)
		}
		if _, err := language.Parse(locale); err != nil {
			return nil, fmt.Errorf("catalog %s: parse locale tag %q: %w", path, locale, err)
		}
		if _, exists := out[locale]; exists {
			return nil, fmt.Errorf("catalog %s: locale %q already defined", path, locale)
		}
		out[locale] = NewCatalog(locale, file.Messages)
	}
	if _, ok := out[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return out, nil
}

// Locales lists the loaded locales, base locale first.
func Locales() []string {
	ensureLoaded()
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	return append([]string(nil), tags...)
}

func ensureLoaded() {
	loadOnce.Do(func() {
		loaded, err := LoadFromFS(embeddedLocales)
		catalogsMu.Lock()
		defer catalogsMu.Unlock()
		if err != nil {
			loadErr = err
			return
		}
		for locale, cat := range loaded {
			if _, exists := catalogs[locale]; !exists {
				catalogs[locale] = cat
			}
		}
		rebuildMatcherLocked()
	})
}

// rebuildMatcherLocked orders the base locale first so it wins ties.
func rebuildMatcherLocked() {
	locales := make([]string, 0, len(catalogs))
	for locale := range catalogs {
		if locale != BaseLocale {
			locales = append(locales, locale)
		}
	}
	sort.Strings(locales)
	if _, ok := catalogs[BaseLocale]; ok {
		locales = append([]string{BaseLocale}, locales...)
	}

	supported := make([]language.Tag, 0, len(locales))
	kept := make([]string, 0, len(locales))
	for _, locale := range locales {
		tag, err := language.Parse(locale)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		kept = append(kept, locale)
	}
	tags = kept
	if len(supported) == 0 {
		matcher = nil
		return
	}
	matcher = language.NewMatcher(supported)
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}
