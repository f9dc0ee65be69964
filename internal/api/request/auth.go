package request

// Login is the body of POST /v1/auth. Email logins carry email and password,
// GitHub logins carry the OAuth code.
type Login struct {
	Type     string `json:"type" validate:"required,oneof=email github"`
	Email    string `json:"email" validate:"required_if=Type email"`
	Password string `json:"password" validate:"required_if=Type email"`
	Code     string `json:"code" validate:"required_if=Type github"`
}

type Register struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RevokeSession names a session either by full id or by the suffix shown in
// the session list.
type RevokeSession struct {
	SessionID     string `json:"session_id"`
	SessionSuffix string `json:"session_suffix"`
}

type CreateWorkspace struct {
	Name string `json:"name" validate:"required"`
}
