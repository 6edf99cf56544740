// Package validation holds the input rules shared by the checkout and
// address lookup flows. All rules target UK addresses.
package validation

import (
	"regexp"
	"storefront/internal/model"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var ukPostcodeRe = regexp.MustCompile(`^[A-Za-z]{1,2}[0-9]{1,2}[A-Za-z]?[0-9][A-Za-z]{2}$`)

const maxInputLength = 200

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ValidateUKPostcode accepts SW1A 1AA, sw1a1aa, W1A 0AX and friends.
// Letters and digits must be ASCII.
func ValidateUKPostcode(postcode string) bool {
	return ukPostcodeRe.MatchString(stripSpaces(postcode))
}

// FormatUKPostcode upper-cases the postcode and puts a single space before
// the inward code ("sw1a1aa" -> "SW1A 1AA").
func FormatUKPostcode(postcode string) string {
	cleaned := strings.ToUpper(stripSpaces(postcode))
	if n := len(cleaned); n >= 5 && n <= 7 {
		return cleaned[:n-3] + " " + cleaned[n-3:]
	}
	return cleaned
}

// ValidateAddress returns every problem with the address, or nil.
func ValidateAddress(a model.ShippingAddress) []string {
	var errs []string

	switch line1 := strings.TrimSpace(a.AddressLine1); {
	case line1 == "":
		errs = append(errs, "Address line 1 is required")
	case len([]rune(line1)) < 3:
		errs = append(errs, "Address line 1 must be at least 3 characters")
	}

	switch city := strings.TrimSpace(a.City); {
	case city == "":
		errs = append(errs, "City is required")
	case len([]rune(city)) < 2:
		errs = append(errs, "City must be at least 2 characters")
	}

	switch {
	case strings.TrimSpace(a.Postcode) == "":
		errs = append(errs, "Postcode is required")
	case !ValidateUKPostcode(a.Postcode):
		errs = append(errs, "Invalid UK postcode format")
	}

	return errs
}

// SanitizeInput trims s, drops angle brackets and caps it at 200 characters.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if r := []rune(s); len(r) > maxInputLength {
		s = string(r[:maxInputLength])
	}
	return s
}

// SanitizeAddress applies SanitizeInput to every field.
func SanitizeAddress(a model.ShippingAddress) model.ShippingAddress {
	return model.ShippingAddress{
		Name:         SanitizeInput(a.Name),
		AddressLine1: SanitizeInput(a.AddressLine1),
		AddressLine2: SanitizeInput(a.AddressLine2),
		City:         SanitizeInput(a.City),
		County:       SanitizeInput(a.County),
		Postcode:     SanitizeInput(a.Postcode),
		Country:      SanitizeInput(a.Country),
	}
}

// RegisterTags installs the uk_postcode struct tag on v.
func RegisterTags(v *validator.Validate) error {
	return v.RegisterValidation("uk_postcode", func(fl validator.FieldLevel) bool {
		return ValidateUKPostcode(fl.Field().String())
	})
}
