package oauthmodel

// LoginRequest is the body of the login (token obtain) endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of the token refresh endpoint.
// Security: Never log this value
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// SignupRequest is the body of the registration endpoint.
type SignupRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// ResetPasswordRequest is the body of the password reset endpoint.
// The backend takes the email and the new password only.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}
