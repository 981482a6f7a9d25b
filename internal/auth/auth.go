package auth

type ErrorCode string

const (
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUsernameTaken      ErrorCode = "USERNAME_TAKEN"
	CodeRegistrationFailed ErrorCode = "REGISTRATION_FAILED"
	CodeInvalidSecretCode  ErrorCode = "INVALID_SECRET_CODE"
	CodeServerError        ErrorCode = "SERVER_ERROR"
	CodeLoginFailed        ErrorCode = "LOGIN_FAILED"
)

// OldUserResetMessage is returned for every reset request so callers cannot
// probe which e-mail addresses exist.
const OldUserResetMessage = "If this email exists in our system, you will receive password reset instructions shortly."

type Error struct {
	Code       ErrorCode
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials}
	ErrUsernameTaken      = &Error{Code: CodeUsernameTaken}
	ErrRegistrationFailed = &Error{Code: CodeRegistrationFailed}
	ErrInvalidSecretCode  = &Error{Code: CodeInvalidSecretCode}
	ErrServerError        = &Error{Code: CodeServerError}
	ErrLoginFailed        = &Error{Code: CodeLoginFailed}
)

// messageKeys maps codes to the translation keys used by front ends.
var messageKeys = map[ErrorCode]string{
	CodeInvalidCredentials: "auth.invalid-credentials",
	CodeUsernameTaken:      "auth.username-taken",
	CodeRegistrationFailed: "auth.registration-failed",
	CodeInvalidSecretCode:  "auth.invalid-secret-code",
	CodeServerError:        "auth.server-error",
	CodeLoginFailed:        "auth.login-failed",
}

func (c ErrorCode) MessageKey() string {
	if key, ok := messageKeys[c]; ok {
		return key
	}
	return "auth.server-error"
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password"`
	Email    string `json:"email" validate:"required,email"`
	Pnr      string `json:"pnr" validate:"required,pnr"`
}

type RecruiterRegisterRequest struct {
	Username   string `json:"username" validate:"required,username"`
	Password   string `json:"password" validate:"required,password"`
	SecretCode string `json:"secretCode" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type oldUserResetRequest struct {
	Email string `json:"email"`
}
