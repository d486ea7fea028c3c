package tr064

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error returned by an action call
type ErrorType int

const (
	// ErrTypeTransport indicates a network or HTTP level failure
	ErrTypeTransport ErrorType = iota
	// ErrTypeAuth indicates the router rejected the credentials
	ErrTypeAuth
	// ErrTypeServiceNotFound indicates the router does not publish the service
	ErrTypeServiceNotFound
	// ErrTypeActionNotFound indicates the service has no such action (UPnP 401)
	ErrTypeActionNotFound
	// ErrTypeInvalidArgument indicates bad action arguments (UPnP 402, 600, 601)
	ErrTypeInvalidArgument
	// ErrTypeBoundary indicates an array index past the last entry (UPnP 713)
	ErrTypeBoundary
	// ErrTypeNotFound indicates a lookup key with no matching entry (UPnP 714)
	ErrTypeNotFound
	// ErrTypeActionFailed indicates any other UPnP fault
	ErrTypeActionFailed
	// ErrTypeParse indicates a malformed description or SOAP response
	ErrTypeParse
)

// UPnP error codes returned in SOAP faults by TR-064 devices
const (
	CodeInvalidAction           = 401
	CodeInvalidArgs             = 402
	CodeActionFailed            = 501
	CodeArgumentValueInvalid    = 600
	CodeArgumentValueOutOfRange = 601
	CodeActionNotAuthorized     = 606
	CodeArrayIndexInvalid       = 713
	CodeNoSuchEntryInArray      = 714
	CodeInternalError           = 820
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeServiceNotFound:
		return "Service Not Found"
	case ErrTypeActionNotFound:
		return "Action Not Found"
	case ErrTypeInvalidArgument:
		return "Invalid Argument"
	case ErrTypeBoundary:
		return "Index Out Of Range"
	case ErrTypeNotFound:
		return "Entry Not Found"
	case ErrTypeActionFailed:
		return "Action Failed"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ActionError represents an error that occurred while invoking a TR-064 action
type ActionError struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Code    int       // UPnP error code (0 if not a SOAP fault)
	Service string    // Service identifier the call addressed
	Action  string    // Action name
	Err     error     // Underlying error (if any)
}

// Sentinel errors for errors.Is. Matching compares the error type only.
var (
	ErrTransport       = &ActionError{Type: ErrTypeTransport, Message: "transport failure"}
	ErrAuth            = &ActionError{Type: ErrTypeAuth, Message: "authentication failed"}
	ErrServiceNotFound = &ActionError{Type: ErrTypeServiceNotFound, Message: "service not found"}
	ErrActionNotFound  = &ActionError{Type: ErrTypeActionNotFound, Message: "action not found"}
	ErrInvalidArgument = &ActionError{Type: ErrTypeInvalidArgument, Message: "invalid argument"}
	ErrBoundaryReached = &ActionError{Type: ErrTypeBoundary, Message: "array index out of range"}
	ErrNotFound        = &ActionError{Type: ErrTypeNotFound, Message: "no such entry"}
	ErrActionFailed    = &ActionError{Type: ErrTypeActionFailed, Message: "action failed"}
	ErrParse           = &ActionError{Type: ErrTypeParse, Message: "malformed response"}
)

// Error implements the error interface
func (e *ActionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	if e.Service != "" || e.Action != "" {
		b.WriteString(fmt.Sprintf(" [%s#%s]", e.Service, e.Action))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Code != 0 {
		b.WriteString(fmt.Sprintf(" (UPnP %d)", e.Code))
	}
	if e.Err != nil {
		b.WriteString(fmt.Sprintf(" (caused by: %v)", e.Err))
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *ActionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *ActionError of the same type
func (e *ActionError) Is(target error) bool {
	t, ok := target.(*ActionError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// NewFaultError maps a UPnP fault code to a typed error
func NewFaultError(code int, description string) *ActionError {
	errType := ErrTypeActionFailed
	switch code {
	case CodeInvalidAction:
		errType = ErrTypeActionNotFound
	case CodeInvalidArgs, CodeArgumentValueInvalid, CodeArgumentValueOutOfRange:
		errType = ErrTypeInvalidArgument
	case CodeActionNotAuthorized:
		errType = ErrTypeAuth
	case CodeArrayIndexInvalid:
		errType = ErrTypeBoundary
	case CodeNoSuchEntryInArray:
		errType = ErrTypeNotFound
	}

	if description == "" {
		description = "UPnPError"
	}

	return &ActionError{
		Type:    errType,
		Message: description,
		Code:    code,
	}
}

// NewTransportError creates a transport error, classifying common network failures
func NewTransportError(message string, err error) *ActionError {
	return &ActionError{
		Type:    ErrTypeTransport,
		Message: describeNetworkError(message, err),
		Err:     err,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *ActionError {
	return &ActionError{
		Type:    ErrTypeAuth,
		Message: message,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *ActionError {
	return &ActionError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

func describeNetworkError(message string, err error) string {
	if err == nil {
		return message
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if os.IsTimeout(err) {
		return message + ": request timed out"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("%s: cannot resolve %s", message, dnsErr.Name)
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return message + ": connection refused"
	}
	if errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return message + ": router unreachable"
	}

	return message
}

// IsBoundary reports whether err signals an exhausted index range
func IsBoundary(err error) bool {
	return errors.Is(err, ErrBoundaryReached)
}

// IsNotFound reports whether err signals a lookup with no matching entry
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransport reports whether err is a network or HTTP failure
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsAuth reports whether err is an authentication failure
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsServiceNotFound reports whether err signals an unknown service
func IsServiceNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound)
}

// IsParseError reports whether err is a malformed description or response
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) []string {
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		return nil
	}

	switch actionErr.Type {
	case ErrTypeTransport:
		return []string{
			"Check that the router address and port are correct",
			"TR-064 listens on port 49000 (HTTP) or 49443 (TLS)",
			"Enable \"Allow access for applications\" in the router's network settings",
		}
	case ErrTypeAuth:
		return []string{
			"Check the username and password",
			"The user needs the \"FRITZ!Box settings\" permission",
		}
	case ErrTypeServiceNotFound:
		return []string{
			"The router does not publish this service instance",
			"Check the --service number",
			"Powerline support requires a router with HomePlug management",
		}
	case ErrTypeActionNotFound:
		return []string{"The router firmware does not implement this action"}
	case ErrTypeNotFound:
		return []string{"No powerline device with that MAC address is registered"}
	default:
		return nil
	}
}
