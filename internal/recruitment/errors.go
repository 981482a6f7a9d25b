package recruitment

type ErrorCode string

const (
	CodeNotFoundOrUnauthorized ErrorCode = "NOT_FOUND_OR_UNAUTHORIZED"
	CodeTransport              ErrorCode = "TRANSPORT_ERROR"
	CodeVersionConflict        ErrorCode = "CONFLICT"
	CodeUpdateRejected         ErrorCode = "UPDATE_REJECTED"
)

const (
	defaultUpdateStatusMessage = "Failed to update application status"
	versionConflictMessage     = "The application was changed by someone else"
)

// APIError is returned by Client operations. Error() is the human readable
// message shown to the user; Code classifies the failure.
type APIError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches by code so sentinels work with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

var (
	ErrNotFoundOrUnauthorized = &APIError{Code: CodeNotFoundOrUnauthorized, Message: "application not found or not accessible"}
	ErrTransport              = &APIError{Code: CodeTransport, Message: "request failed"}
	ErrVersionConflict        = &APIError{Code: CodeVersionConflict, Message: versionConflictMessage}
	ErrUpdateRejected         = &APIError{Code: CodeUpdateRejected, Message: defaultUpdateStatusMessage}
)
