package model

// LoginRequest is the POST /api/auth/login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the new token pair and the user it belongs to.
type LoginResponse struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	User         User   `json:"user" validate:"-"`
}

// RefreshResponse is what POST /api/auth/refresh returns.  Only the access
// token is rotated; the refresh token stays the same.
type RefreshResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// RefreshRequest is sent alongside the bearer refresh token for servers that
// read it from the body instead of the Authorization header.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Message is the generic {"message": "..."} acknowledgement returned by
// delete and logout endpoints.
type Message struct {
	Message string `json:"message"`
}
