package dtf

import (
	"errors"
	"fmt"
)

// Kind classifies a client failure.
type Kind int

const (
	// KindInvalidResponse covers malformed JSON, unexpected envelope shapes
	// and non-200 application codes.
	KindInvalidResponse Kind = iota
	// KindInvalidCredentials is an authentication rejection on the
	// account-check step.
	KindInvalidCredentials
	// KindTransport covers DNS, timeouts and HTTP statuses without an envelope.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindTransport:
		return "transport"
	default:
		return "invalid response"
	}
}

// Client-side codes, never sent by the server.
const (
	CodeMissingData       = -1
	CodeMissingAuthModule = -2
	CodeMalformedJSON     = -3
	CodeMissingResult     = -4
	CodeUploadRejected    = -5
)

// fallbackMessage is used when a failed envelope carries no rm field.
const fallbackMessage = "server returned an invalid response"

var (
	ErrInvalidResponse    = errors.New("invalid response")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTransport          = errors.New("transport failure")
)

// Error is returned by every Client operation.
type Error struct {
	Kind    Kind
	Code    int    // envelope rc or one of the Code* constants
	Message string // server rm or a client-side description
	Status  int    // HTTP status when known
	Body    string // raw body for malformed responses
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidCredentials:
		return "dtf: invalid credentials"
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("dtf: transport: %v", e.Err)
		}
		return fmt.Sprintf("dtf: transport: status %d", e.Status)
	}
	if e.Code == CodeMalformedJSON {
		return fmt.Sprintf("dtf: %s (source string: %s)", e.Message, e.Body)
	}
	return fmt.Sprintf("dtf: code %d: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidResponse:
		return e.Kind == KindInvalidResponse
	case ErrInvalidCredentials:
		return e.Kind == KindInvalidCredentials
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

func invalidResponse(code int, message string) *Error {
	if message == "" {
		message = fallbackMessage
	}
	return &Error{Kind: KindInvalidResponse, Code: code, Message: message}
}

func transportError(status int, err error) *Error {
	return &Error{Kind: KindTransport, Status: status, Err: err}
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
