package validation

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// ValidScopeToken reports whether s is a single OAuth scope-token
// (RFC 6749 §3.3): one or more of %x21 / %x23-5B / %x5D-7E.
// Space, double quote and backslash are excluded.
func ValidScopeToken(s string) bool {
	if s == "" || len(s) > 256 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x21 || c > 0x7e || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}

// ScopeTag es el tag de validator para scope tokens.
const ScopeTag = "oauth_scope"

// Register añade ScopeTag a v.
func Register(v *validator.Validate) error {
	return v.RegisterValidation(ScopeTag, func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return ValidScopeToken(f.String())
	})
}
