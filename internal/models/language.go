package models

import (
	"fmt"
	"strings"
)

// Language identifies the tagger configuration used for a text.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageRomanian Language = "ro"
)

// Languages lists every supported language in a stable order.
var Languages = []Language{LanguageEnglish, LanguageRomanian}

// ParseLanguage accepts ISO codes in any case, English names, and the
// numeric codes of the old post form ("0" English, "1" Romanian).
func ParseLanguage(raw string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en", "eng", "english", "0":
		return LanguageEnglish, nil
	case "ro", "ron", "romanian", "1":
		return LanguageRomanian, nil
	}
	return "", fmt.Errorf("unsupported language %q", raw)
}

// ParseLanguages parses a comma-separated list, skipping blanks and duplicates.
func ParseLanguages(raw string) ([]Language, error) {
	var out []Language
	seen := map[Language]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		lang, err := ParseLanguage(part)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return out, nil
}

func (l Language) String() string { return string(l) }
