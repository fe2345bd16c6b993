package ontology

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLang canonicalises a BCP 47 language tag and lowercases it, so
// "EN-us" and "en-US" select the same translation. Unparseable tags are only
// trimmed and lowercased.
func NormalizeLang(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	return strings.ToLower(tag.String())
}

// Label is a text value with translations keyed by normalised language tag.
// Value and Lang hold the designated default. A Label is immutable: every
// method returning a Label returns an independent copy.
type Label struct {
	Value string
	Lang  string

	translations map[string]string
}

// NewLabel returns a label with a single translation that is also its default.
func NewLabel(value, lang string) Label {
	lang = NormalizeLang(lang)
	l := Label{Value: value, Lang: lang}
	if value != "" {
		l.translations = map[string]string{lang: value}
	}
	return l
}

// LabelFromTranslations builds a label whose default is the translation in
// defaultLang, or the translation of the alphabetically first language when
// defaultLang is missing.
func LabelFromTranslations(translations map[string]string, defaultLang string) Label {
	l := Label{translations: make(map[string]string, len(translations))}
	for lang, value := range translations {
		if value != "" {
			l.translations[NormalizeLang(lang)] = value
		}
	}
	if len(l.translations) == 0 {
		l.translations = nil
		return l
	}

	defaultLang = NormalizeLang(defaultLang)
	if v, ok := l.translations[defaultLang]; ok {
		l.Value, l.Lang = v, defaultLang
		return l
	}
	langs := l.Languages()
	l.Lang = langs[0]
	l.Value = l.translations[l.Lang]
	return l
}

// IsEmpty reports whether the label has neither a default nor translations.
func (l Label) IsEmpty() bool {
	return l.Value == "" && len(l.translations) == 0
}

// Languages returns the languages with a translation, sorted.
func (l Label) Languages() []string {
	out := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Translations returns a copy of the translation map.
func (l Label) Translations() map[string]string {
	out := make(map[string]string, len(l.translations))
	for k, v := range l.translations {
		out[k] = v
	}
	return out
}

// Translation returns the best translation for lang. An exact tag wins;
// otherwise the closest available language is used when it is at least a
// regional match ("en-GB" for "en"). Unrelated languages do not match.
func (l Label) Translation(lang string) (string, bool) {
	lang = NormalizeLang(lang)
	if lang == "" || len(l.translations) == 0 {
		return "", false
	}
	if v, ok := l.translations[lang]; ok {
		return v, true
	}

	keys := make([]string, 0, len(l.translations))
	tags := make([]language.Tag, 0, len(l.translations))
	for _, k := range l.Languages() {
		tag, err := language.Parse(k)
		if err != nil || k == "" {
			continue
		}
		keys = append(keys, k)
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return "", false
	}

	want, err := language.Parse(lang)
	if err != nil {
		return "", false
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return "", false
	}
	return l.translations[keys[idx]], true
}

// With returns a copy of l with a translation added or replaced. The default
// is set to it when l had no default.
func (l Label) With(value, lang string) Label {
	lang = NormalizeLang(lang)
	out := l.Clone()
	if out.translations == nil {
		out.translations = make(map[string]string, 1)
	}
	out.translations[lang] = value
	if out.Value == "" {
		out.Value, out.Lang = value, lang
	}
	return out
}

// In returns a copy of l whose default is its translation in lang. When no
// translation matches, the existing default is kept.
func (l Label) In(lang string) Label {
	out := l.Clone()
	if v, ok := l.Translation(lang); ok {
		out.Value = v
		out.Lang = NormalizeLang(lang)
	}
	return out
}

// Clone returns an independent copy.
func (l Label) Clone() Label {
	out := Label{Value: l.Value, Lang: l.Lang}
	if l.translations != nil {
		out.translations = l.Translations()
	}
	return out
}

// String returns the default value.
func (l Label) String() string {
	return l.Value
}
