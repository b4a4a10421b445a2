package providers

import "strings"

// Normalize maps raw adapter output to a Profile. The username is trimmed and
// mandatory; the email is trimmed and lowercased, and may be empty.
func Normalize(provider Name, raw RawProfile) (Profile, error) {
	p := Profile{
		Username: strings.TrimSpace(raw.Username),
		// Lowercased on purpose: lookups and the (lower(email), provider)
		// constraint compare case-insensitively, so the stored form is canonical.
		Email: strings.ToLower(strings.TrimSpace(raw.Email)),
	}
	if p.Username == "" {
		return Profile{}, &ProviderError{Provider: provider, Op: "normalize", Cause: ErrIncompleteProfile}
	}
	return p, nil
}
