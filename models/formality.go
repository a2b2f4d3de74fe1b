package models

import (
	"strings"

	"github.com/go-playground/validator"
)

type Formality string

const (
	FormalityCasual     Formality = "Casual"
	FormalitySemiFormal Formality = "Semi-Formal"
	FormalityFormal     Formality = "Formal"
)

var KnownFormalities = []string{
	string(FormalityCasual),
	string(FormalitySemiFormal),
	string(FormalityFormal),
}

func (f Formality) String() string {
	return string(f)
}

// ParseFormality accepts any casing and the "semiformal"/"semi formal" spellings.
func ParseFormality(value string) (Formality, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.NewReplacer(" ", "-", "_", "-").Replace(v)
	switch v {
	case "casual":
		return FormalityCasual, true
	case "semi-formal", "semiformal":
		return FormalitySemiFormal, true
	case "formal":
		return FormalityFormal, true
	}
	return "", false
}

func ValidateFormality(fl validator.FieldLevel) bool {
	_, ok := ParseFormality(fl.Field().String())
	return ok
}
