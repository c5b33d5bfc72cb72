package headless

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the file form of a run, loaded from TOML:
//
//	variant = "quad"
//	output = "frame.webp"
//	adapter = "software"
//
//	[context]
//	major = 3
//	minor = 3
//	alpha = false
//
//	[frame]
//	width = 640
//	height = 480
//	clear_color = [0.3, 0.4, 0.5, 1.0]
//
//	[quad]
//	bind_program = true
//	check_shaders = false
//	vertices = [-0.5, -0.5, 0.5, -0.5, 0.5, 0.5, -0.5, 0.5]
//	indices = [0, 1, 2, 2, 3, 0]
type Config struct {
	Variant Variant `toml:"variant"`
	Output  string  `toml:"output"`
	Adapter string  `toml:"adapter"`

	Context ContextConfig `toml:"context"`
	Frame   FrameFile     `toml:"frame"`
	Quad    QuadFile      `toml:"quad"`
}

// ContextConfig is the [context] table.
type ContextConfig struct {
	Major   int  `toml:"major"`
	Minor   int  `toml:"minor"`
	Alpha   bool `toml:"alpha"`
	Depth   bool `toml:"depth"`
	Stencil bool `toml:"stencil"`
}

// FrameFile is the [frame] table.
type FrameFile struct {
	Width      int       `toml:"width"`
	Height     int       `toml:"height"`
	ClearColor []float64 `toml:"clear_color"`
}

// QuadFile is the [quad] table. Indices are read as integers and range
// checked into bytes.
type QuadFile struct {
	BindProgram    bool      `toml:"bind_program"`
	CheckShaders   bool      `toml:"check_shaders"`
	Vertices       []float64 `toml:"vertices"`
	Indices        []int     `toml:"indices"`
	VertexShader   string    `toml:"vertex_shader"`
	FragmentShader string    `toml:"fragment_shader"`
}

// DefaultConfig returns the configuration of the default run: the clear
// variant on a hardware adapter, written to test.png.
func DefaultConfig() Config {
	fc := DefaultFrameConfig()
	verts := DefaultQuadVertices()
	idx := DefaultQuadIndices()
	cfg := Config{
		Variant: VariantClear,
		Output:  "test.png",
		Adapter: AdapterHardware.String(),
		Context: ContextConfig{Major: 3, Minor: 3},
		Frame: FrameFile{
			Width:      fc.Width,
			Height:     fc.Height,
			ClearColor: make([]float64, 4),
		},
		Quad: QuadFile{
			Vertices: make([]float64, len(verts)),
			Indices:  make([]int, len(idx)),
		},
	}
	for i, c := range fc.ClearColor {
		cfg.Frame.ClearColor[i] = float64(c)
	}
	for i, v := range verts {
		cfg.Quad.Vertices[i] = float64(v)
	}
	for i, v := range idx {
		cfg.Quad.Indices[i] = int(v)
	}
	return cfg
}

// LoadConfig reads a TOML file over DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges that the TOML types cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.Output == "" {
		errs = append(errs, errors.New("output is empty"))
	}
	if _, err := ParseAdapterPreference(c.Adapter); err != nil {
		errs = append(errs, err)
	}
	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size %dx%d must be positive", c.Frame.Width, c.Frame.Height))
	}
	if len(c.Frame.ClearColor) != 4 {
		errs = append(errs, fmt.Errorf("clear_color needs 4 components, got %d", len(c.Frame.ClearColor)))
	}
	if c.Context.Major < 0 || c.Context.Major > 255 || c.Context.Minor < 0 || c.Context.Minor > 255 {
		errs = append(errs, fmt.Errorf("context version %d.%d out of range", c.Context.Major, c.Context.Minor))
	}
	for i, v := range c.Quad.Indices {
		if v < 0 || v > 255 {
			errs = append(errs, fmt.Errorf("quad index %d at %d does not fit in a byte", v, i))
		}
	}
	return errors.Join(errs...)
}

// ContextAttributes returns the [context] table as attributes.
func (c Config) ContextAttributes() ContextAttributes {
	attrs := ContextAttributes{Version: GLVersion{Major: uint8(c.Context.Major), Minor: uint8(c.Context.Minor)}}
	if c.Context.Alpha {
		attrs.Flags |= ContextAlpha
	}
	if c.Context.Depth {
		attrs.Flags |= ContextDepth
	}
	if c.Context.Stencil {
		attrs.Flags |= ContextStencil
	}
	return attrs
}

// FrameConfig returns the [frame] table as a FrameConfig.
func (c Config) FrameConfig() FrameConfig {
	fc := FrameConfig{Width: c.Frame.Width, Height: c.Frame.Height}
	for i := 0; i < len(fc.ClearColor) && i < len(c.Frame.ClearColor); i++ {
		fc.ClearColor[i] = float32(c.Frame.ClearColor[i])
	}
	return fc
}

// QuadConfig returns the quad settings, falling back to the embedded
// shaders when none are configured.
func (c Config) QuadConfig() QuadConfig {
	qc := QuadConfig{
		FrameConfig:    c.FrameConfig(),
		Vertices:       make([]float32, len(c.Quad.Vertices)),
		Indices:        make([]uint8, len(c.Quad.Indices)),
		VertexShader:   c.Quad.VertexShader,
		FragmentShader: c.Quad.FragmentShader,
		BindProgram:    c.Quad.BindProgram,
		CheckShaders:   c.Quad.CheckShaders,
	}
	for i, v := range c.Quad.Vertices {
		qc.Vertices[i] = float32(v)
	}
	for i, v := range c.Quad.Indices {
		qc.Indices[i] = uint8(v)
	}
	if qc.VertexShader == "" {
		qc.VertexShader = quadVertexShaderSource
	}
	if qc.FragmentShader == "" {
		qc.FragmentShader = quadFragmentShaderSource
	}
	return qc
}

// SetupConfig returns the setup parameters for the configured run.
func (c Config) SetupConfig() SetupConfig {
	sc := DefaultSetupConfig()
	if p, err := ParseAdapterPreference(c.Adapter); err == nil {
		sc.Adapter = p
	}
	sc.Attributes = c.ContextAttributes()
	sc.Size = image.Pt(c.Frame.Width, c.Frame.Height)
	return sc
}
