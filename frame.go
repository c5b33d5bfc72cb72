package headless

import (
	"errors"
	"fmt"
	"image"
)

// FrameConfig is the fixed configuration of a single frame.
type FrameConfig struct {
	Width      int
	Height     int
	ClearColor [4]float32
}

// DefaultFrameConfig returns a 640x480 frame cleared to (0.3, 0.4, 0.5, 1).
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		Width:      640,
		Height:     480,
		ClearColor: [4]float32{0.3, 0.4, 0.5, 1.0},
	}
}

// QuadConfig configures RenderQuad.
type QuadConfig struct {
	FrameConfig

	// Vertices holds (x, y) pairs in clip space.
	Vertices []float32
	// Indices are triangle-list indices into Vertices.
	Indices []uint8

	VertexShader   string
	FragmentShader string

	// BindProgram makes the linked program active before drawing. When
	// false the draw is issued with no active program and is skipped.
	BindProgram bool
	// CheckShaders turns compile and link failures into errors. When false
	// they are logged and rendering continues.
	CheckShaders bool
}

// DefaultQuadVertices returns the four corners of a centered quad.
func DefaultQuadVertices() []float32 {
	return []float32{
		-0.5, -0.5,
		0.5, -0.5,
		0.5, 0.5,
		-0.5, 0.5,
	}
}

// DefaultQuadIndices returns the two triangles of the default quad.
func DefaultQuadIndices() []uint8 {
	return []uint8{0, 1, 2, 2, 3, 0}
}

// DefaultQuadConfig returns the default frame with the default quad and
// shaders, program binding and shader checks off.
func DefaultQuadConfig() QuadConfig {
	return QuadConfig{
		FrameConfig:    DefaultFrameConfig(),
		Vertices:       DefaultQuadVertices(),
		Indices:        DefaultQuadIndices(),
		VertexShader:   quadVertexShaderSource,
		FragmentShader: quadFragmentShaderSource,
	}
}

func (c FrameConfig) size() image.Point { return image.Pt(c.Width, c.Height) }

func checkFrameSize(cfg FrameConfig, info SurfaceInfo) error {
	if cfg.size() != info.Size {
		return fmt.Errorf("%w: frame %dx%d, surface %v", ErrSizeMismatch, cfg.Width, cfg.Height, info.Size)
	}
	return nil
}

func (c QuadConfig) validateGeometry() error {
	if len(c.Vertices)%2 != 0 {
		return fmt.Errorf("%w: %d floats is not a whole number of (x, y) pairs", ErrInvalidGeometry, len(c.Vertices))
	}
	n := len(c.Vertices) / 2
	for i, idx := range c.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d exceeds %d vertices", ErrInvalidGeometry, idx, i, n)
		}
	}
	return nil
}

// clearSurface binds the surface framebuffer, sets the viewport to the
// whole frame and clears it.
func clearSurface(gl *Functions, info SurfaceInfo, cfg FrameConfig) {
	gl.BindFramebuffer(FRAMEBUFFER, info.FramebufferObject)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.ClearDepth(1)
	gl.ClearStencil(0)
	// Depth and stencil bits are ignored on surfaces without those buffers.
	gl.Clear(COLOR_BUFFER_BIT | DEPTH_BUFFER_BIT | STENCIL_BUFFER_BIT)
}

func readFrame(gl *Functions, cfg FrameConfig) (*PixelBuffer, error) {
	pix := NewPixelBuffer(cfg.Width, cfg.Height)
	if err := gl.ReadPixels(0, 0, int32(cfg.Width), int32(cfg.Height), RGBA, UNSIGNED_BYTE, pix.Pix); err != nil {
		return nil, err
	}
	return pix, nil
}

// RenderClear clears the surface described by info to cfg.ClearColor and
// reads the frame back.
func RenderClear(gl *Functions, info SurfaceInfo, cfg FrameConfig) (*PixelBuffer, error) {
	if err := checkFrameSize(cfg, info); err != nil {
		return nil, err
	}
	clearSurface(gl, info, cfg)
	pix, err := readFrame(gl, cfg)
	if err != nil {
		return nil, err
	}
	if err := checkGL(gl, "clear frame"); err != nil {
		return nil, err
	}
	return pix, nil
}

// RenderQuad clears the surface, draws the indexed quad of cfg and reads
// the frame back. The returned stats cover this frame only.
func RenderQuad(gl *Functions, info SurfaceInfo, cfg QuadConfig) (*PixelBuffer, FrameStats, error) {
	if err := checkFrameSize(cfg.FrameConfig, info); err != nil {
		return nil, FrameStats{}, err
	}
	if err := cfg.validateGeometry(); err != nil {
		return nil, FrameStats{}, err
	}
	before := gl.Stats()

	clearSurface(gl, info, cfg.FrameConfig)

	vs, err := compileShader(gl, VERTEX_SHADER, cfg.VertexShader, cfg.CheckShaders)
	if err != nil {
		return nil, FrameStats{}, err
	}
	fs, err := compileShader(gl, FRAGMENT_SHADER, cfg.FragmentShader, cfg.CheckShaders)
	if err != nil {
		return nil, FrameStats{}, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	if gl.GetProgramiv(program, LINK_STATUS) == FALSE {
		log := gl.GetProgramInfoLog(program)
		if cfg.CheckShaders {
			return nil, FrameStats{}, fmt.Errorf("%w: %s", ErrProgramLink, log)
		}
		Logger().Warn("headless: program link failed", "log", log)
	}

	vao := gl.GenVertexArray()
	gl.BindVertexArray(vao)

	vbo := gl.GenBuffer()
	gl.BindBuffer(ARRAY_BUFFER, vbo)
	gl.BufferData(ARRAY_BUFFER, Float32Bytes(cfg.Vertices), STATIC_DRAW)

	ebo := gl.GenBuffer()
	gl.BindBuffer(ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(ELEMENT_ARRAY_BUFFER, cfg.Indices, STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, FLOAT, false, 0, 0)

	if cfg.BindProgram {
		gl.UseProgram(program)
	}
	gl.DrawElements(TRIANGLES, int32(len(cfg.Indices)), UNSIGNED_BYTE, 0)
	if err := gl.Flush(); err != nil {
		return nil, FrameStats{}, err
	}

	pix, err := readFrame(gl, cfg.FrameConfig)
	if err != nil {
		return nil, FrameStats{}, err
	}
	after := gl.Stats()
	stats := FrameStats{
		Clears:       after.Clears - before.Clears,
		Draws:        after.Draws - before.Draws,
		SkippedDraws: after.SkippedDraws - before.SkippedDraws,
		Submits:      after.Submits - before.Submits,
	}
	if err := checkGL(gl, "quad frame"); err != nil {
		return nil, stats, err
	}
	return pix, stats, nil
}

// compileShader creates and compiles one shader. Failures are returned
// when check is set, logged otherwise.
func compileShader(gl *Functions, kind Enum, src string, check bool) (uint32, error) {
	sh := gl.CreateShader(kind)
	gl.ShaderSource(sh, src)
	gl.CompileShader(sh)
	if gl.GetShaderiv(sh, COMPILE_STATUS) == FALSE {
		log := gl.GetShaderInfoLog(sh)
		if check {
			return 0, fmt.Errorf("%w: %s: %s", ErrShaderCompile, kind, log)
		}
		Logger().Warn("headless: shader compile failed", "kind", kind.String(), "log", log)
	}
	return sh, nil
}

// IsGLError reports whether err carries GL error flags.
func IsGLError(err error) bool {
	var glErr *GLError
	return errors.As(err, &glErr)
}
