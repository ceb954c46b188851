package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags the class of a failure. Every kind is fatal to the run.
type ErrorKind int

const (
	KindParse ErrorKind = iota
	KindConfiguration
	KindMissingEnvironmentVariable
	KindValueFileNotFound
	KindExternalCommandFailed
)

// String returns the string representation of the ErrorKind.
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UnknownError"
	}
	return kindNames[k]
}

var kindNames = [...]string{
	KindParse:                      "ParseError",
	KindConfiguration:              "ConfigurationError",
	KindMissingEnvironmentVariable: "MissingEnvironmentVariable",
	KindValueFileNotFound:          "ValueFileNotFound",
	KindExternalCommandFailed:      "ExternalCommandFailed",
}

// Reasons refine a kind.
const (
	ReasonStackNotFound         = "StackNotFound"
	ReasonStackParseError       = "StackParseError"
	ReasonEnvironmentNotFound   = "EnvironmentNotFound"
	ReasonOverlayMissing        = "OverlayMissing"
	ReasonOverlayParseError     = "OverlayParseError"
	ReasonMissingField          = "MissingField"
	ReasonDuplicateRelease      = "DuplicateRelease"
	ReasonDeleteRequiresTargets = "DeleteRequiresTargets"
)

// Error is the tagged error returned by every resolution step.
type Error struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	label := e.Kind.String()
	if e.Reason != "" && (e.Kind == KindParse || e.Kind == KindConfiguration) {
		label += "/" + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", label, e.Message, e.Err)
	}
	return label + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ReasonOf returns the reason of the first *Error in err's chain.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// NewParseError reports a malformed stack or overlay document.
func NewParseError(reason, path string, err error) *Error {
	return &Error{
		Kind:    KindParse,
		Reason:  reason,
		Message: fmt.Sprintf("cannot parse %s", path),
		Err:     err,
	}
}

// NewConfigurationError reports an invalid stack or invocation.
func NewConfigurationError(reason, format string, args ...any) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewMissingFieldError reports a release without a required key.
func NewMissingFieldError(release, field string) *Error {
	if release == "" {
		return NewConfigurationError(ReasonMissingField, "release is missing required field %q", field)
	}
	return NewConfigurationError(ReasonMissingField, "release %q is missing required field %q", release, field)
}

// NewMissingEnvironmentVariableError reports an unset ${NAME} placeholder.
func NewMissingEnvironmentVariableError(name string) *Error {
	return &Error{
		Kind:    KindMissingEnvironmentVariable,
		Reason:  name,
		Message: fmt.Sprintf("environment variable %s is not set", name),
	}
}

// NewValueFileNotFoundError reports a value file missing at synthesis time.
func NewValueFileNotFoundError(release, path string) *Error {
	return &Error{
		Kind:    KindValueFileNotFound,
		Reason:  path,
		Message: fmt.Sprintf("value file %s for release %q does not exist", path, release),
	}
}

// NewExternalCommandError reports a child process that failed to start or
// exited non-zero.
func NewExternalCommandError(cmd Command, err error) *Error {
	return &Error{
		Kind:    KindExternalCommandFailed,
		Message: fmt.Sprintf("%q failed", cmd.String()),
		Err:     err,
	}
}
