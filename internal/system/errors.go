package system

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal condition and selects the process exit code
type Kind int

const (
	KindUnknown Kind = iota
	KindPrivilege
	KindConfig
	KindCrypt
	KindMount
)

// Exit codes reported by the disksetup binary
const (
	ExitSuccess   = 0
	ExitPrivilege = 2
	ExitConfig    = 3
	ExitCrypt     = 4
	ExitMount     = 5
	ExitUnknown   = 255
)

func (k Kind) String() string {
	switch k {
	case KindPrivilege:
		return "privilege"
	case KindConfig:
		return "config"
	case KindCrypt:
		return "crypt"
	case KindMount:
		return "mount"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code for the kind
func (k Kind) ExitCode() int {
	switch k {
	case KindPrivilege:
		return ExitPrivilege
	case KindConfig:
		return ExitConfig
	case KindCrypt:
		return ExitCrypt
	case KindMount:
		return ExitMount
	default:
		return ExitUnknown
	}
}

// Error is a classified failure. Every fatal condition raised while
// processing targets is returned as an *Error so the entry point can pick
// the exit code in one place.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// PrivilegeErrorf reports a non-elevated invocation
func PrivilegeErrorf(format string, args ...interface{}) error {
	return newError(KindPrivilege, nil, format, args...)
}

// ConfigErrorf reports an invalid or under-specified configuration
func ConfigErrorf(format string, args ...interface{}) error {
	return newError(KindConfig, nil, format, args...)
}

// CryptErrorf reports an encryption layer failure
func CryptErrorf(format string, args ...interface{}) error {
	return newError(KindCrypt, nil, format, args...)
}

// Wrap classifies err under kind with a message prefix. A nil err yields nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return newError(kind, err, format, args...)
}

// KindOf returns the kind of the outermost classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps err to a process exit code. Unclassified errors map to 255.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return KindOf(err).ExitCode()
}
