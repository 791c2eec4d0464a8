package domain

// TelegramUser is the identity Telegram attaches to Mini App requests.
// It is parsed from the "user" field of signed init data, lives on the
// request context for the duration of one request, and is never stored.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// DisplayName returns the user's first name, falling back to username.
func (u *TelegramUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
