package api

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UID          string `json:"uid"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Account is returned by registration.
type Account struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
