// Package l10n provides the Translator service that renders battle-log lines in
// the player's language. There is no package-level translator: callers build one
// at startup and pass printers to the components that need them.
package l10n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Message keys for battle-log lines.
const (
	KeyAbilityUsed = "battle.ability_used"
	KeySwitched    = "battle.switched"
	KeyDefeated    = "battle.defeated"
	KeyVictory     = "battle.victory"
	KeyForfeit     = "battle.forfeit"
)

// DefaultLanguage is the source language every key is defined in.
var DefaultLanguage = language.AmericanEnglish

var defaults = map[string]string{
	KeyAbilityUsed: "%[1]s uses %[2]s on %[3]s!",
	KeySwitched:    "%[1]s switches in %[2]s.",
	KeyDefeated:    "%[1]s has been defeated!",
	KeyVictory:     "🏆 %[1]s's team wins!",
	KeyForfeit:     "%[1]s ran out of time and forfeits the battle.",
}

// Translator owns a message catalog of every loaded language.
//
// A Translator is populated at startup (New, LoadDirectory) and is read-only
// afterwards; Printer is then safe for concurrent use.
type Translator struct {
	builder  *catalog.Builder
	langs    []language.Tag
	matcher  language.Matcher
	fallback language.Tag
	logger   *zap.Logger
}

// New returns a Translator containing the built-in source language.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Translator {
	t := &Translator{
		builder:  catalog.NewBuilder(catalog.Fallback(DefaultLanguage)),
		fallback: DefaultLanguage,
		logger:   logger,
	}
	if err := t.AddLanguage(DefaultLanguage, nil); err != nil {
		panic("l10n: registering source language: " + err.Error())
	}
	return t
}

// AddLanguage registers tag with the given key → template overrides. Keys
// missing from overrides fall back to the source-language template.
func (t *Translator) AddLanguage(tag language.Tag, overrides map[string]string) error {
	for key, tmpl := range defaults {
		if o, ok := overrides[key]; ok && o != "" {
			tmpl = o
		}
		if err := t.builder.SetString(tag, key, tmpl); err != nil {
			return fmt.Errorf("setting %q for %s: %w", key, tag, err)
		}
	}
	for key := range overrides {
		if _, known := defaults[key]; !known {
			t.logger.Warn("locale key missing from source language",
				zap.String("key", key),
				zap.String("lang", tag.String()),
			)
		}
	}
	if !t.has(tag) {
		t.langs = append(t.langs, tag)
	}
	t.matcher = language.NewMatcher(t.langs)
	return nil
}

func (t *Translator) has(tag language.Tag) bool {
	for _, l := range t.langs {
		if l == tag {
			return true
		}
	}
	return false
}

// LoadDirectory reads every <lang>.yaml file in dir. Each file is a flat map of
// message key to template, and the file stem names the language ("pt_BR").
//
// Precondition: dir must be a readable directory.
func (t *Translator) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading locale dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		tag, err := ParseLocale(strings.TrimSuffix(e.Name(), ".yaml"))
		if err != nil {
			return fmt.Errorf("locale file %q: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := t.AddLanguage(tag, msgs); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}

// ParseLocale accepts both "en_US" and "en-US" spellings.
func ParseLocale(locale string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(locale, "_", "-"))
}

// Languages returns the loaded languages sorted by tag.
func (t *Translator) Languages() []language.Tag {
	out := append([]language.Tag(nil), t.langs...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Printer returns a printer for the closest loaded language to locale.
// Unparseable or unmatched locales get the source language.
func (t *Translator) Printer(locale string) *message.Printer {
	tag := t.fallback
	if locale != "" {
		if parsed, err := ParseLocale(locale); err == nil {
			if _, idx, conf := t.matcher.Match(parsed); conf != language.No {
				tag = t.langs[idx]
			}
		} else {
			t.logger.Debug("unparseable locale, using fallback",
				zap.String("locale", locale),
				zap.Error(err),
			)
		}
	}
	return message.NewPrinter(tag, message.Catalog(t.builder))
}

// DefaultPrinter returns a source-language printer backed by a private catalog.
func DefaultPrinter() *message.Printer {
	return New(zap.NewNop()).Printer("")
}
