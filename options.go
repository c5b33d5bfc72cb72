package headless

import "github.com/gogpu/gputypes"

// ConnectionOption configures a Connection during creation.
//
// Example:
//
//	// Default backend order
//	conn, err := headless.NewConnection()
//
//	// CPU rasterizer only
//	conn, err := headless.NewConnection(headless.WithBackends(gputypes.BackendEmpty))
type ConnectionOption func(*connectionOptions)

// connectionOptions holds optional configuration for Connection creation.
type connectionOptions struct {
	backends []gputypes.Backend
}

// defaultConnectionOptions returns the default connection options.
func defaultConnectionOptions() connectionOptions {
	return connectionOptions{
		backends: nil, // gpu.DefaultBackendOrder
	}
}

// WithBackends restricts the connection to the given backends, tried in the
// given order. gputypes.BackendEmpty selects the CPU rasterizer.
func WithBackends(backends ...gputypes.Backend) ConnectionOption {
	return func(o *connectionOptions) {
		o.backends = append([]gputypes.Backend(nil), backends...)
	}
}
