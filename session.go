package headless

import (
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/gputypes"
)

// AdapterPreference selects which adapter Setup asks the connection for.
type AdapterPreference uint8

const (
	AdapterHardware AdapterPreference = iota
	AdapterLowPower
	AdapterSoftware
	AdapterAny
)

var adapterPreferenceNames = [...]string{"hardware", "low-power", "software", "any"}

func (p AdapterPreference) String() string {
	if int(p) < len(adapterPreferenceNames) {
		return adapterPreferenceNames[p]
	}
	return fmt.Sprintf("AdapterPreference(%d)", uint8(p))
}

// ParseAdapterPreference parses "hardware", "low-power", "software" or "any".
func ParseAdapterPreference(s string) (AdapterPreference, error) {
	for i, name := range adapterPreferenceNames {
		if strings.EqualFold(s, name) {
			return AdapterPreference(i), nil
		}
	}
	return 0, fmt.Errorf("headless: unknown adapter preference %q", s)
}

// RequiredSymbols are the GL entry points the frame producers use.
var RequiredSymbols = []string{
	"glBindFramebuffer", "glViewport", "glClearColor", "glClear", "glReadPixels",
	"glCreateShader", "glShaderSource", "glCompileShader", "glGetShaderiv",
	"glGetShaderInfoLog", "glCreateProgram", "glAttachShader", "glLinkProgram",
	"glGetProgramiv", "glGetProgramInfoLog", "glUseProgram",
	"glGenVertexArrays", "glBindVertexArray", "glGenBuffers", "glBindBuffer",
	"glBufferData", "glEnableVertexAttribArray", "glVertexAttribPointer",
	"glDrawElements", "glFlush", "glGetError",
}

// SetupConfig drives Setup.
type SetupConfig struct {
	// Backends restricts the connection; nil means every registered backend.
	Backends   []gputypes.Backend
	Adapter    AdapterPreference
	Attributes ContextAttributes
	Access     SurfaceAccess
	Size       image.Point
	Symbols    []string
}

// DefaultSetupConfig returns a hardware adapter, a GL 3.3 context with no
// flags and a 640x480 GPU-only surface.
func DefaultSetupConfig() SetupConfig {
	return SetupConfig{
		Adapter:    AdapterHardware,
		Attributes: DefaultContextAttributes(),
		Access:     SurfaceGPUOnly,
		Size:       image.Pt(640, 480),
		Symbols:    RequiredSymbols,
	}
}

// Session is a ready-to-render context: the surface is bound, the context
// is current and the functions are loaded.
type Session struct {
	Connection  *Connection
	Adapter     *Adapter
	Device      *Device
	Context     *Context
	GL          *Functions
	SurfaceInfo SurfaceInfo
}

// Setup creates the connection, adapter, device, context and surface,
// binds the surface, makes the context current and loads the functions.
// On failure everything created so far is released and the error names
// the failing step.
func Setup(cfg SetupConfig) (s *Session, err error) {
	s = &Session{}
	defer func() {
		if err != nil {
			s.Close()
			s = nil
		}
	}()

	var opts []ConnectionOption
	if len(cfg.Backends) > 0 {
		opts = append(opts, WithBackends(cfg.Backends...))
	}
	if s.Connection, err = NewConnection(opts...); err != nil {
		return s, fmt.Errorf("create connection: %w", err)
	}
	if s.Adapter, err = selectAdapter(s.Connection, cfg.Adapter); err != nil {
		return s, fmt.Errorf("create adapter: %w", err)
	}
	if s.Device, err = s.Connection.CreateDevice(s.Adapter); err != nil {
		return s, fmt.Errorf("create device: %w", err)
	}
	desc, err := s.Device.CreateContextDescriptor(cfg.Attributes)
	if err != nil {
		return s, fmt.Errorf("create context descriptor: %w", err)
	}
	if s.Context, err = s.Device.CreateContext(desc, nil); err != nil {
		return s, fmt.Errorf("create context: %w", err)
	}
	surface, err := s.Device.CreateSurface(s.Context, cfg.Access, SurfaceType{Size: cfg.Size})
	if err != nil {
		return s, fmt.Errorf("create surface: %w", err)
	}
	if err = s.Device.BindSurfaceToContext(s.Context, surface); err != nil {
		_ = s.Device.DestroySurface(s.Context, surface)
		return s, fmt.Errorf("bind surface: %w", err)
	}
	if err = s.Device.MakeContextCurrent(s.Context); err != nil {
		return s, fmt.Errorf("make context current: %w", err)
	}
	if s.GL, err = s.Device.LoadFunctions(s.Context, cfg.Symbols...); err != nil {
		return s, fmt.Errorf("load functions: %w", err)
	}
	if s.SurfaceInfo, err = s.Device.ContextSurfaceInfo(s.Context); err != nil {
		return s, fmt.Errorf("surface info: %w", err)
	}
	return s, nil
}

func selectAdapter(c *Connection, p AdapterPreference) (*Adapter, error) {
	switch p {
	case AdapterHardware:
		return c.CreateHardwareAdapter()
	case AdapterLowPower:
		return c.CreateLowPowerAdapter()
	case AdapterSoftware:
		return c.CreateSoftwareAdapter()
	case AdapterAny:
		return c.CreateAdapter()
	default:
		return nil, fmt.Errorf("headless: unknown adapter preference %s", p)
	}
}

// Close destroys the context with its surface, then the device and the
// connection. Safe to call on a partially set up session and more than
// once.
func (s *Session) Close() error {
	var err error
	if s.Context != nil && s.Device != nil {
		err = s.Device.DestroyContext(s.Context)
		s.Context, s.GL = nil, nil
	}
	if s.Device != nil {
		s.Device.Close()
		s.Device = nil
	}
	if s.Connection != nil {
		s.Connection.Close()
		s.Connection = nil
	}
	return err
}
