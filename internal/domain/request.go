package domain

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// MeResponse describes the authenticated user.
type MeResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// FriendRequestBody is the body of POST /friends/request.
type FriendRequestBody struct {
	ToUsername string `json:"to_username" validate:"required"`
}

// FriendRespondBody is the body of POST /friends/respond.
// Accept is a pointer so that a missing field fails validation instead of
// silently rejecting the request.
type FriendRespondBody struct {
	RequestID int64 `json:"request_id" validate:"required,gt=0"`
	Accept    *bool `json:"accept" validate:"required"`
}

// ErrorResponse is the body of every failed request/response call.
type ErrorResponse struct {
	Error   ErrorKind `json:"error"`
	Message string    `json:"message"`
}
