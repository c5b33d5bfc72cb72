package headless

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/headless/internal/gpu"
)

// FrameStats counts the work a context recorded.
type FrameStats struct {
	Clears       int
	Draws        int
	SkippedDraws int
	Submits      int
}

// Functions is the GL function table of one context, returned by
// Device.LoadFunctions. Methods follow GL naming and semantics: misuse sets
// a GL error flag readable with GetError instead of returning an error.
// Methods that reach the GPU (Flush, Finish, ReadPixels) also return Go
// errors for device failures.
//
// Functions is not safe for concurrent use, like the context it wraps.
type Functions struct {
	ctx *Context
}

// glSymbols lists the entry points LoadFunctions can resolve.
var glSymbols = map[string]struct{}{
	"glAttachShader":              {},
	"glBindBuffer":                {},
	"glBindFramebuffer":           {},
	"glBindVertexArray":           {},
	"glBufferData":                {},
	"glClear":                     {},
	"glClearColor":                {},
	"glClearDepth":                {},
	"glClearStencil":              {},
	"glCompileShader":             {},
	"glCreateProgram":             {},
	"glCreateShader":              {},
	"glDeleteBuffers":             {},
	"glDeleteProgram":             {},
	"glDeleteShader":              {},
	"glDeleteVertexArrays":        {},
	"glDetachShader":              {},
	"glDisableVertexAttribArray":  {},
	"glDrawElements":              {},
	"glEnableVertexAttribArray":   {},
	"glFinish":                    {},
	"glFlush":                     {},
	"glGenBuffers":                {},
	"glGenVertexArrays":           {},
	"glGetError":                  {},
	"glGetProgramInfoLog":         {},
	"glGetProgramiv":              {},
	"glGetShaderInfoLog":          {},
	"glGetShaderiv":               {},
	"glGetTranslatedShaderSource": {},
	"glLinkProgram":               {},
	"glReadPixels":                {},
	"glShaderSource":              {},
	"glUseProgram":                {},
	"glVertexAttribPointer":       {},
	"glViewport":                  {},
}

// Context returns the context the table belongs to.
func (gl *Functions) Context() *Context { return gl.ctx }

func (gl *Functions) state() *glState { return &gl.ctx.state }

func (gl *Functions) setError(code Enum) { gl.ctx.state.setError(code) }

// live reports whether the context can still execute commands.
func (gl *Functions) live() bool { return !gl.ctx.destroyed }

// GetError returns and clears one pending error flag, or NO_ERROR.
func (gl *Functions) GetError() Enum {
	s := gl.state()
	if len(s.errors) == 0 {
		return NO_ERROR
	}
	code := s.errors[0]
	s.errors = s.errors[1:]
	return code
}

// Stats returns the counters accumulated by the context.
func (gl *Functions) Stats() FrameStats { return gl.state().stats }

// BindFramebuffer binds a framebuffer object to the draw, read, or both
// targets. The only framebuffers are those of surfaces created with the
// context; name 0 has no attachments.
func (gl *Functions) BindFramebuffer(target Enum, name uint32) {
	if !gl.live() {
		return
	}
	if name != 0 {
		if _, ok := gl.ctx.framebuffers[name]; !ok {
			gl.setError(INVALID_OPERATION)
			return
		}
	}
	s := gl.state()
	switch target {
	case FRAMEBUFFER:
		s.drawFB, s.readFB = name, name
	case DRAW_FRAMEBUFFER:
		s.drawFB = name
	case READ_FRAMEBUFFER:
		s.readFB = name
	default:
		gl.setError(INVALID_ENUM)
	}
}

// framebuffer returns the surface behind name if it can be rendered to.
func (gl *Functions) framebuffer(name uint32) *Surface {
	if name == 0 {
		return nil
	}
	s, ok := gl.ctx.framebuffers[name]
	if !ok || s.destroyed {
		return nil
	}
	return s
}

// Viewport sets the viewport rectangle; x and y are the lower-left corner.
func (gl *Functions) Viewport(x, y, width, height int32) {
	if !gl.live() {
		return
	}
	if width < 0 || height < 0 {
		gl.setError(INVALID_VALUE)
		return
	}
	s := gl.state()
	s.viewport = [4]int32{x, y, width, height}
	s.viewportSet = true
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ClearColor sets the color used by Clear. Components are clamped to [0, 1].
func (gl *Functions) ClearColor(r, g, b, a float32) {
	if !gl.live() {
		return
	}
	gl.state().clearColor = [4]float32{clamp01(r), clamp01(g), clamp01(b), clamp01(a)}
}

// ClearDepth sets the depth value used by Clear.
func (gl *Functions) ClearDepth(depth float32) {
	if !gl.live() {
		return
	}
	gl.state().clearDepth = clamp01(depth)
}

// ClearStencil sets the stencil value used by Clear.
func (gl *Functions) ClearStencil(s int32) {
	if !gl.live() {
		return
	}
	gl.state().clearStenc = s
}

// Clear clears the buffers selected by mask in the draw framebuffer.
func (gl *Functions) Clear(mask Bitfield) {
	if !gl.live() {
		return
	}
	if mask&^(COLOR_BUFFER_BIT|DEPTH_BUFFER_BIT|STENCIL_BUFFER_BIT) != 0 {
		gl.setError(INVALID_VALUE)
		return
	}
	s := gl.state()
	fb := gl.framebuffer(s.drawFB)
	if fb == nil {
		gl.setError(INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	if mask == 0 {
		return
	}
	c := s.clearColor
	hasDS := fb.target.HasDepthStencil()
	fb.frame.Clear(gpu.ClearOp{
		ClearColor:   mask&COLOR_BUFFER_BIT != 0,
		Color:        gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
		ClearDepth:   hasDS && mask&DEPTH_BUFFER_BIT != 0,
		Depth:        s.clearDepth,
		ClearStencil: hasDS && mask&STENCIL_BUFFER_BIT != 0,
		Stencil:      uint32(s.clearStenc) & 0xFF,
	})
	s.stats.Clears++
}

// flushSurface encodes and submits the pending operations of s.
func flushSurface(d *gpu.Device, s *Surface) error {
	if s.frame.Pending() == 0 {
		return nil
	}
	cmd, err := s.frame.Encode(d, fmt.Sprintf("surface%d_frame", s.id))
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return d.Submit(cmd)
}

// Flush submits all recorded commands to the GPU without waiting.
func (gl *Functions) Flush() error {
	if !gl.live() {
		return ErrContextDestroyed
	}
	for _, s := range gl.ctx.framebuffers {
		if s.frame.Pending() == 0 {
			continue
		}
		if err := flushSurface(gl.ctx.device.gpu, s); err != nil {
			return err
		}
		gl.state().stats.Submits++
	}
	return nil
}

// Finish submits all recorded commands and waits for the GPU to complete
// them.
func (gl *Functions) Finish() error {
	if err := gl.Flush(); err != nil {
		return err
	}
	return gl.ctx.device.gpu.Wait()
}

// ReadPixels reads a width x height block whose lower-left corner is (x, y)
// from the read framebuffer into dst, row by row from the bottom up. Only
// RGBA / UNSIGNED_BYTE is supported; other combinations set INVALID_ENUM.
// Pixels of the block that lie outside the framebuffer are left untouched.
//
// Without the ContextAlpha flag every alpha byte reads as 255.
func (gl *Functions) ReadPixels(x, y, width, height int32, format, typ Enum, dst []byte) error {
	if !gl.live() {
		return ErrContextDestroyed
	}
	if format != RGBA || typ != UNSIGNED_BYTE {
		gl.setError(INVALID_ENUM)
		return nil
	}
	if width < 0 || height < 0 {
		gl.setError(INVALID_VALUE)
		return nil
	}
	fb := gl.framebuffer(gl.state().readFB)
	if fb == nil {
		gl.setError(INVALID_FRAMEBUFFER_OPERATION)
		return nil
	}
	need := int(width) * int(height) * 4
	if len(dst) < need {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, need, len(dst))
	}
	if need == 0 {
		return nil
	}
	if err := gl.Finish(); err != nil {
		return err
	}
	pix, err := gpu.ReadTarget(gl.ctx.device.gpu, fb.target, fmt.Sprintf("surface%d_readback", fb.id))
	if err != nil {
		return fmt.Errorf("read pixels: %w", err)
	}

	fbW, fbH := fb.size.X, fb.size.Y
	forceAlpha := gl.ctx.attrs.Flags&ContextAlpha == 0
	for row := 0; row < int(height); row++ {
		glY := int(y) + row
		if glY < 0 || glY >= fbH {
			continue
		}
		srcRow := fbH - 1 - glY
		x0, x1 := int(x), int(x)+int(width)
		if x0 < 0 {
			x0 = 0
		}
		if x1 > fbW {
			x1 = fbW
		}
		if x0 >= x1 {
			continue
		}
		src := pix[(srcRow*fbW+x0)*4 : (srcRow*fbW+x1)*4]
		off := (row*int(width) + (x0 - int(x))) * 4
		out := dst[off : off+len(src)]
		copy(out, src)
		if forceAlpha {
			for i := 3; i < len(out); i += 4 {
				out[i] = 0xFF
			}
		}
	}
	return nil
}
