package handler

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=ADMIN USER"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse mirrors the envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}
