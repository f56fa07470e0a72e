package domain

// Preferences holds the per-shopper storefront settings that survive across
// sessions. Persistence is best effort; a missing record means defaults.
type Preferences struct {
	Language string `json:"language" validate:"omitempty,bcp47_language_tag"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

// DefaultPreferences returns the storefront defaults used when a shopper has
// no stored preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		Language: "en",
		Currency: "USD",
	}
}
