package headless

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	s := newSoftwareSession(t, 320, 200, 0)

	if s.Adapter.IsHardware() {
		t.Errorf("software setup picked hardware adapter %q", s.Adapter.Name())
	}
	if s.Device.CurrentContext() != s.Context {
		t.Error("context is not current after Setup")
	}
	if s.SurfaceInfo.Size != image.Pt(320, 200) || s.SurfaceInfo.ContextID != s.Context.ID() {
		t.Errorf("SurfaceInfo = %+v", s.SurfaceInfo)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestSetupFailureNamesStep(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SetupConfig)
		step   string
		want   error
	}{
		{"version", func(c *SetupConfig) { c.Attributes.Version = GLVersion{4, 6} }, "create context descriptor", ErrUnsupportedVersion},
		{"size", func(c *SetupConfig) { c.Size = image.Pt(0, 0) }, "create surface", ErrInvalidSize},
		{"symbol", func(c *SetupConfig) { c.Symbols = []string{"glDispatchCompute"} }, "load functions", ErrMissingSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := softwareSetup(16, 16, 0)
			tt.mutate(&cfg)
			s, err := Setup(cfg)
			if errors.Is(err, ErrNoConnection) || errors.Is(err, ErrNoAdapter) {
				t.Skipf("CPU backend not available: %v", err)
			}
			if s != nil {
				t.Error("Setup returned a session alongside an error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !strings.HasPrefix(err.Error(), tt.step) {
				t.Errorf("err = %q, want it to start with %q", err, tt.step)
			}
		})
	}
}

func TestSetupNoHardware(t *testing.T) {
	cfg := softwareSetup(16, 16, 0)
	cfg.Adapter = AdapterHardware
	_, err := Setup(cfg)
	if errors.Is(err, ErrNoConnection) {
		t.Skipf("CPU backend not available: %v", err)
	}
	if !errors.Is(err, ErrNoHardwareAdapter) {
		t.Errorf("err = %v, want ErrNoHardwareAdapter", err)
	}
}
