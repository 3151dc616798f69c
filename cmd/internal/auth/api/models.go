package api

// Stable machine codes for the auth error taxonomy. Clients branch on these,
// never on message text.
const (
	codeMissingFields      = "missing_fields"
	codeValidationError    = "validation_error"
	codeUserNotFound       = "user_not_found"
	codeInvalidCredentials = "invalid_credentials"
	codeNotAuthenticated   = "not_authenticated"
	codeForbidden          = "forbidden"
	codeRateLimited        = "rate_limited"
	codeServerError        = "server_error"
)

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// dealerResponse is the public dealer projection. The password hash is never
// part of any response shape.
type dealerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
	Dealer       dealerResponse `json:"dealer"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type dealerEnvelope struct {
	Dealer dealerResponse `json:"dealer"`
}
