package headless

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
)

// softwareSetup returns a setup config on the CPU rasterizer.
func softwareSetup(w, h int, flags ContextAttributeFlags) SetupConfig {
	cfg := DefaultSetupConfig()
	cfg.Backends = []gputypes.Backend{gputypes.BackendEmpty}
	cfg.Adapter = AdapterSoftware
	cfg.Attributes.Flags = flags
	cfg.Size = image.Pt(w, h)
	return cfg
}

// newSoftwareSession sets up a session on the CPU rasterizer and closes it
// when the test ends.
func newSoftwareSession(t *testing.T, w, h int, flags ContextAttributeFlags) *Session {
	t.Helper()
	s, err := Setup(softwareSetup(w, h, flags))
	if errors.Is(err, ErrNoConnection) || errors.Is(err, ErrNoAdapter) {
		t.Skipf("CPU backend not available: %v", err)
	}
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newSoftwareDevice opens a device on the CPU rasterizer.
func newSoftwareDevice(t *testing.T) *Device {
	t.Helper()
	conn, err := NewConnection(WithBackends(gputypes.BackendEmpty))
	if err != nil {
		t.Skipf("CPU backend not available: %v", err)
	}
	t.Cleanup(conn.Close)
	a, err := conn.CreateSoftwareAdapter()
	if err != nil {
		t.Skipf("CPU adapter not available: %v", err)
	}
	d, err := conn.CreateDevice(a)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func newContext(t *testing.T, d *Device, attrs ContextAttributes) *Context {
	t.Helper()
	desc, err := d.CreateContextDescriptor(attrs)
	if err != nil {
		t.Fatalf("CreateContextDescriptor: %v", err)
	}
	ctx, err := d.CreateContext(desc, nil)
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	return ctx
}

func wantGLError(t *testing.T, gl *Functions, want Enum) {
	t.Helper()
	if got := gl.GetError(); got != want {
		t.Errorf("GetError() = %v, want %v", got, want)
	}
	if got := gl.GetError(); got != NO_ERROR {
		t.Errorf("second GetError() = %v, want NO_ERROR", got)
	}
}
