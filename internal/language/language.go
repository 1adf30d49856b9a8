package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2 string   // ISO 639-1 (2-letter)
	alt3  string   // ISO 639-2 bibliographic alternate (e.g. "fre" vs "fra")
	words []string // Full word forms (e.g. "english")
}

// Bibliographic codes and English word forms x/text does not accept.
var languages = []entry{
	{"en", "", []string{"english"}},
	{"es", "", []string{"spanish", "castilian"}},
	{"fr", "fre", []string{"french"}},
	{"de", "ger", []string{"german"}},
	{"it", "", []string{"italian"}},
	{"pt", "", []string{"portuguese"}},
	{"ja", "", []string{"japanese"}},
	{"ko", "", []string{"korean"}},
	{"zh", "chi", []string{"chinese"}},
	{"ru", "", []string{"russian"}},
	{"ar", "", []string{"arabic"}},
	{"hi", "", []string{"hindi"}},
	{"nl", "dut", []string{"dutch", "flemish"}},
	{"pl", "", []string{"polish"}},
	{"sv", "", []string{"swedish"}},
	{"da", "", []string{"danish"}},
	{"no", "", []string{"norwegian"}},
	{"fi", "", []string{"finnish"}},
	{"cs", "cze", []string{"czech"}},
	{"el", "gre", []string{"greek"}},
	{"ro", "rum", []string{"romanian"}},
}

var aliases = func() map[string]string {
	m := make(map[string]string, len(languages)*2)
	for _, e := range languages {
		if e.alt3 != "" {
			m[e.alt3] = e.code2
		}
		for _, w := range e.words {
			m[w] = e.code2
		}
	}
	return m
}()

var titleCaser = cases.Title(xlanguage.Und)

// Parse converts a language code, tag or English word form to a canonical
// tag. Unrecognized input yields xlanguage.Und.
func Parse(code string) xlanguage.Tag {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return xlanguage.Und
	}
	if mapped, ok := aliases[code]; ok {
		code = mapped
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return xlanguage.Und
	}
	return tag
}

// ToISO2 returns the ISO 639-1 code for any recognized input, or an empty
// string when the language has none.
func ToISO2(code string) string {
	tag := Parse(code)
	if tag == xlanguage.Und {
		return ""
	}
	base, _ := tag.Base()
	s := base.String()
	if len(s) != 2 {
		return ""
	}
	return s
}

// ToISO3 returns the ISO 639-2 code for any recognized input, or "und".
func ToISO3(code string) string {
	tag := Parse(code)
	if tag == xlanguage.Und {
		return "und"
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// DisplayName returns the English name of a language. Returns "Unknown" for
// empty input and a title-cased echo of unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag := Parse(trimmed)
	if tag == xlanguage.Und {
		return titleCaser.String(trimmed)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return titleCaser.String(trimmed)
}

// ExtractFromTags finds the language among metadata key/value pairs.
// Checks common keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) xlanguage.Tag {
	if len(tags) == 0 {
		return xlanguage.Und
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return Parse(value)
			}
		}
	}
	return xlanguage.Und
}
