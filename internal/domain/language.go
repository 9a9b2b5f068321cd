package domain

import (
	"fmt"
	"strings"
)

// LanguageField names a text field on a Flashcard. Round layouts refer to
// fields by this key when choosing the prompt and the expected answer.
type LanguageField string

// Known card fields. FieldEnglish addresses Flashcard.PrimaryText.
const (
	FieldEnglish LanguageField = "english"
	FieldPolish  LanguageField = "polish"
	FieldSpanish LanguageField = "spanish"
)

// SourceField is the field holding the term being learned.
const SourceField = FieldEnglish

// Valid reports whether f is one of the known card fields.
func (f LanguageField) Valid() bool {
	switch f {
	case FieldEnglish, FieldPolish, FieldSpanish:
		return true
	}
	return false
}

// IsTranslation reports whether f is a translation field rather than the
// source-language field.
func (f LanguageField) IsTranslation() bool {
	return f.Valid() && f != SourceField
}

// SupportedLanguage is a native-language code the learner can drill from.
type SupportedLanguage string

// Supported native languages.
const (
	LanguagePolish  SupportedLanguage = "pl"
	LanguageSpanish SupportedLanguage = "es"
)

// SupportedLanguages lists every accepted native-language code.
func SupportedLanguages() []SupportedLanguage {
	return []SupportedLanguage{LanguagePolish, LanguageSpanish}
}

// ParseLanguage validates a native-language code.
// Unknown codes fail with ErrUnsupportedLanguage; there is no fallback language.
func ParseLanguage(code string) (SupportedLanguage, error) {
	lang := SupportedLanguage(strings.ToLower(strings.TrimSpace(code)))
	if _, err := lang.field(); err != nil {
		return "", err
	}
	return lang, nil
}

// Field returns the card field holding translations into this language.
// It returns an empty LanguageField for unsupported codes.
func (l SupportedLanguage) Field() LanguageField {
	f, _ := l.field()
	return f
}

func (l SupportedLanguage) field() (LanguageField, error) {
	switch l {
	case LanguagePolish:
		return FieldPolish, nil
	case LanguageSpanish:
		return FieldSpanish, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, string(l))
}

// Language returns the native language whose translations live in f, or an
// empty code for the source field.
func (f LanguageField) Language() SupportedLanguage {
	for _, l := range SupportedLanguages() {
		if l.Field() == f {
			return l
		}
	}
	return ""
}
