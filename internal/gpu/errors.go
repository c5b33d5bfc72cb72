package gpu

import "errors"

var (
	// ErrNoInstance is returned when no registered backend produced an instance.
	ErrNoInstance = errors.New("gpu: no backend instance could be created")

	// ErrNilDevice is returned when an operation receives a nil or destroyed device.
	ErrNilDevice = errors.New("gpu: device is nil or destroyed")

	// ErrEmptyData is returned when uploading a zero-length buffer.
	ErrEmptyData = errors.New("gpu: buffer data is empty")

	// ErrInvalidTarget is returned for a zero-area target descriptor or a
	// nil readback target.
	ErrInvalidTarget = errors.New("gpu: target is empty or nil")

	// ErrShaderInvalid is returned when WGSL fails to parse, lower or validate.
	ErrShaderInvalid = errors.New("gpu: shader source is invalid")

	// ErrMissingEntryPoint is returned when a shader has no entry point for
	// the requested stage.
	ErrMissingEntryPoint = errors.New("gpu: shader has no entry point for stage")
)
