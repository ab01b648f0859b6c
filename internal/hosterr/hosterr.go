// Package hosterr converts the errors of the I/O layer into structured errors
// for the host, carrying an error code, a retry classification and the
// description reported by the operating system.
package hosterr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/desertwitch/krkio/internal/configuration"
	"github.com/desertwitch/krkio/internal/environ"
	"github.com/desertwitch/krkio/internal/fileio"
	"github.com/desertwitch/krkio/internal/platform"
	perrors "github.com/jmgilman/go/errors"
)

// Kind is the broad category of a converted error.
type Kind string

// The kinds of converted errors.
const (
	KindUsage   Kind = "usage"
	KindType    Kind = "type"
	KindIO      Kind = "io"
	KindEnv     Kind = "env"
	KindConfig  Kind = "config"
	KindOS      Kind = "os"
	KindCorrupt Kind = "corrupt"
	KindUnknown Kind = "unknown"
)

const (
	// ContextOp is the context key holding the failed operation.
	ContextOp = "op"

	// ContextKind is the context key holding the [Kind].
	ContextKind = "kind"

	// ContextPlatform is the context key holding the description reported by
	// the operating system, if any.
	ContextPlatform = "platform"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

// Convert returns err as a structured error of the failed operation op. A nil
// err returns nil.
func Convert(op string, err error) perrors.PlatformError {
	if err == nil {
		return nil
	}

	kind := kindOf(err)
	ctx := map[string]any{
		ContextOp:   op,
		ContextKind: string(kind),
	}

	message := fmt.Sprintf("%s: %s", op, describeKind(kind, err))
	if desc, ok := platformDescription(err); ok {
		ctx[ContextPlatform] = desc
		message = fmt.Sprintf("%s: %s; system returned: %s", op, describeKind(kind, err), desc)
	}

	return perrors.WrapWithContext(err, codeOf(kind, err), message, ctx)
}

// ExitCode returns the process exit code for err: 0 for nil, 2 for invalid
// input and 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	if perrors.GetCode(err) == perrors.CodeInvalidInput {
		return exitUsage
	}

	return exitFailure
}

// JSON returns the serialized form of a converted error, without the wrapped
// error chain.
func JSON(err error) ([]byte, error) {
	data, jerr := json.Marshal(perrors.ToJSON(err))
	if jerr != nil {
		return nil, fmt.Errorf("(hosterr-json) %w", jerr)
	}

	return data, nil
}

func kindOf(err error) Kind {
	switch {
	case errors.Is(err, fileio.ErrUsage):
		return KindUsage
	case errors.Is(err, fileio.ErrTypeMismatch):
		return KindType
	case errors.Is(err, fileio.ErrCorruptState):
		return KindCorrupt
	case errors.Is(err, fileio.ErrIO):
		return KindIO
	case errors.Is(err, environ.ErrEnvSet),
		errors.Is(err, environ.ErrEnvUnset),
		errors.Is(err, environ.ErrNotSet):
		return KindEnv
	case errors.Is(err, configuration.ErrInvalidValue):
		return KindConfig
	case errors.Is(err, platform.ErrSystem):
		return KindOS
	}

	return KindUnknown
}

func codeOf(kind Kind, err error) perrors.ErrorCode {
	switch kind {
	case KindUsage, KindType:
		return perrors.CodeInvalidInput
	case KindCorrupt:
		return perrors.CodeInternal
	case KindConfig:
		return perrors.CodeInvalidConfig
	case KindIO, KindEnv, KindOS, KindUnknown:
	}

	switch {
	case errors.Is(err, environ.ErrNotSet), errors.Is(err, fs.ErrNotExist):
		return perrors.CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return perrors.CodeForbidden
	case errors.Is(err, fs.ErrExist):
		return perrors.CodeAlreadyExists
	case errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.EINTR):
		return perrors.CodeUnavailable
	case kind == KindUnknown:
		return perrors.CodeUnknown
	}

	return perrors.CodeExecutionFailed
}

func describeKind(kind Kind, err error) string {
	switch kind {
	case KindUsage:
		return "invalid usage"
	case KindType:
		return "invalid payload type"
	case KindCorrupt:
		return "corrupt File"
	case KindIO:
		return "i/o error"
	case KindEnv:
		if errors.Is(err, environ.ErrNotSet) {
			return environ.ErrNotSet.Error()
		}

		return "environment error"
	case KindConfig:
		return "invalid configuration"
	case KindOS:
		return "os error"
	case KindUnknown:
	}

	return err.Error()
}

// Strerror returns the description of the operating system error number
// code, as strerror(3) does.
func Strerror(code int) string {
	if code < 0 {
		return fmt.Sprintf("errno %d", code)
	}

	return syscall.Errno(code).Error()
}

// platformDescription returns the description of the innermost operating
// system error, like strerror does for an errno.
func platformDescription(err error) (string, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno.Error(), true
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error(), true
	}

	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return sysErr.Err.Error(), true
	}

	return "", false
}
