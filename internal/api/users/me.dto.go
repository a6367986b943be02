package users

import "time"

// MeResponse is the /auth/me payload: who the credential is for plus what
// it already owns.
type MeResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsPremium bool      `json:"is_premium"`
	Owned     []string  `json:"owned_product_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type SuggestionResponse struct {
	Suggest          bool       `json:"suggest_premium"`
	PromptUsageCount int        `json:"prompt_usage_count"`
	LastSuggestedAt  *time.Time `json:"last_suggested_at"`
}
