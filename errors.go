package headless

import (
	"errors"
	"fmt"
	"strings"
)

// Connection and adapter errors.
var (
	// ErrNoConnection is returned when no GPU backend could be initialized.
	ErrNoConnection = errors.New("headless: no GPU backend available")

	// ErrNoHardwareAdapter is returned when only CPU adapters exist.
	ErrNoHardwareAdapter = errors.New("headless: no hardware adapter found")

	// ErrNoAdapter is returned when no adapter of any kind exists.
	ErrNoAdapter = errors.New("headless: no adapter found")

	// ErrConnectionClosed is returned when using a closed connection.
	ErrConnectionClosed = errors.New("headless: connection is closed")
)

// Context errors.
var (
	// ErrUnsupportedVersion is returned for GL versions outside 3.0-3.3.
	ErrUnsupportedVersion = errors.New("headless: unsupported GL version")

	// ErrUnsupportedFlags is returned for context flags that cannot be honored.
	ErrUnsupportedFlags = errors.New("headless: unsupported context flags")

	// ErrContextDestroyed is returned when using a destroyed context.
	ErrContextDestroyed = errors.New("headless: context has been destroyed")

	// ErrDeviceClosed is returned when using a closed device.
	ErrDeviceClosed = errors.New("headless: device is closed")

	// ErrForeignObject is returned when a context, descriptor or surface
	// belongs to a different device or context.
	ErrForeignObject = errors.New("headless: object belongs to another device or context")

	// ErrNotCurrent is returned when an operation needs the current context.
	ErrNotCurrent = errors.New("headless: context is not current")

	// ErrMissingSymbol is returned when a requested function is unknown.
	ErrMissingSymbol = errors.New("headless: function symbol not found")
)

// Surface errors.
var (
	// ErrInvalidSize is returned for non-positive or over-limit surface sizes.
	ErrInvalidSize = errors.New("headless: invalid surface size")

	// ErrSurfaceAlreadyBound is returned when a context already has a surface.
	ErrSurfaceAlreadyBound = errors.New("headless: context already has a bound surface")

	// ErrNoSurfaceBound is returned when a context has no surface.
	ErrNoSurfaceBound = errors.New("headless: no surface bound to context")

	// ErrSurfaceDestroyed is returned when using a destroyed surface.
	ErrSurfaceDestroyed = errors.New("headless: surface has been destroyed")
)

// Frame and output errors.
var (
	// ErrBufferTooSmall is returned when a pixel destination cannot hold the
	// requested region.
	ErrBufferTooSmall = errors.New("headless: destination buffer too small")

	// ErrUnsupportedFormat is returned for unknown output file extensions.
	ErrUnsupportedFormat = errors.New("headless: unsupported image format")

	// ErrSizeMismatch is returned when a frame size disagrees with the surface.
	ErrSizeMismatch = errors.New("headless: frame size does not match surface")

	// ErrShaderCompile is returned when a shader fails to compile and shader
	// checking is enabled.
	ErrShaderCompile = errors.New("headless: shader compilation failed")

	// ErrProgramLink is returned when a program fails to link and shader
	// checking is enabled.
	ErrProgramLink = errors.New("headless: program link failed")

	// ErrInvalidGeometry is returned for quad geometry with an index out of
	// range or a vertex count that is not a whole number of (x, y) pairs.
	ErrInvalidGeometry = errors.New("headless: invalid geometry")
)

// GLError reports the GL error flags raised during a frame.
type GLError struct {
	Op    string
	Codes []Enum
}

func (e *GLError) Error() string {
	names := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		names[i] = c.String()
	}
	return fmt.Sprintf("headless: %s: GL error %s", e.Op, strings.Join(names, ", "))
}

// Has reports whether code is among the raised flags.
func (e *GLError) Has(code Enum) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// checkGL drains the error flags of gl and returns them as a *GLError, or
// nil when no flag is set.
func checkGL(gl *Functions, op string) error {
	var codes []Enum
	for {
		code := gl.GetError()
		if code == NO_ERROR {
			break
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}
	return &GLError{Op: op, Codes: codes}
}
