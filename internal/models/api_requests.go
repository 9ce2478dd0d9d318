package models

// CreatePredictionRequest is the body of POST /predictions
type CreatePredictionRequest struct {
	MatchRequest
	Detail DetailLevel `json:"detail,omitempty"` // defaults to advanced
}

type LoginRequest struct {
	UserID      string `json:"user_id" validate:"required,max=254"`
	Credential  string `json:"credential"`
	DisplayName string `json:"display_name,omitempty" validate:"max=120"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	ExpiresAt   string `json:"expires_at"` // ISO8601
	User        User   `json:"user"`
}

// User is the authenticated principal attached to every request
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// AuthState is what auth state subscribers observe. Previous is set on
// sign-out so subscribers can release per-user resources.
type AuthState struct {
	User      *User `json:"user"`
	IsLoading bool  `json:"is_loading"`
	Previous  *User `json:"-"`
}
