package headless

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const badWGSL = "@vertex fn main( -> {"

func TestGLErrorFlags(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL

	if got := gl.GetError(); got != NO_ERROR {
		t.Fatalf("fresh context GetError() = %v", got)
	}

	gl.BindFramebuffer(ARRAY_BUFFER, s.SurfaceInfo.FramebufferObject)
	wantGLError(t, gl, INVALID_ENUM)

	gl.BindFramebuffer(FRAMEBUFFER, 999)
	wantGLError(t, gl, INVALID_OPERATION)

	gl.Clear(0x1)
	wantGLError(t, gl, INVALID_VALUE)

	gl.BindFramebuffer(FRAMEBUFFER, 0)
	gl.Clear(COLOR_BUFFER_BIT)
	wantGLError(t, gl, INVALID_FRAMEBUFFER_OPERATION)

	gl.Viewport(0, 0, -1, 4)
	wantGLError(t, gl, INVALID_VALUE)

	gl.CreateShader(RGBA)
	wantGLError(t, gl, INVALID_ENUM)
}

func TestGLErrorFlagsAccumulate(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL

	gl.Clear(0x1)
	gl.Clear(0x1)
	gl.CreateShader(RGBA)

	if got := gl.GetError(); got != INVALID_VALUE {
		t.Errorf("first GetError() = %v, want INVALID_VALUE", got)
	}
	if got := gl.GetError(); got != INVALID_ENUM {
		t.Errorf("second GetError() = %v, want INVALID_ENUM", got)
	}
	if got := gl.GetError(); got != NO_ERROR {
		t.Errorf("third GetError() = %v, want NO_ERROR", got)
	}
}

func TestCompileShaderStatus(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL

	good := gl.CreateShader(VERTEX_SHADER)
	gl.ShaderSource(good, QuadVertexShader())
	gl.CompileShader(good)
	if gl.GetShaderiv(good, COMPILE_STATUS) != TRUE {
		t.Fatalf("quad vertex shader did not compile: %s", gl.GetShaderInfoLog(good))
	}
	if n := gl.GetShaderiv(good, INFO_LOG_LENGTH); n != 0 {
		t.Errorf("INFO_LOG_LENGTH = %d for a clean compile, want 0", n)
	}
	if got := Enum(gl.GetShaderiv(good, SHADER_TYPE)); got != VERTEX_SHADER {
		t.Errorf("SHADER_TYPE = %v", got)
	}

	bad := gl.CreateShader(VERTEX_SHADER)
	gl.ShaderSource(bad, badWGSL)
	gl.CompileShader(bad)
	if gl.GetShaderiv(bad, COMPILE_STATUS) != FALSE {
		t.Fatal("malformed shader compiled")
	}
	log := gl.GetShaderInfoLog(bad)
	if log == "" {
		t.Fatal("empty info log for failed compile")
	}
	if n := gl.GetShaderiv(bad, INFO_LOG_LENGTH); int(n) != len(log)+1 {
		t.Errorf("INFO_LOG_LENGTH = %d, want %d", n, len(log)+1)
	}
	wantGLError(t, gl, NO_ERROR)
}

func TestCompileShaderWrongStage(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL

	sh := gl.CreateShader(FRAGMENT_SHADER)
	gl.ShaderSource(sh, QuadVertexShader())
	gl.CompileShader(sh)
	if gl.GetShaderiv(sh, COMPILE_STATUS) != FALSE {
		t.Fatal("vertex-only source compiled as a fragment shader")
	}
	if !strings.Contains(gl.GetShaderInfoLog(sh), "entry point") {
		t.Errorf("info log = %q, want an entry point message", gl.GetShaderInfoLog(sh))
	}
}

func TestGetTranslatedShaderSource(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL

	sh := gl.CreateShader(FRAGMENT_SHADER)
	gl.ShaderSource(sh, QuadFragmentShader())
	gl.CompileShader(sh)
	if gl.GetShaderiv(sh, COMPILE_STATUS) != TRUE {
		t.Fatalf("compile: %s", gl.GetShaderInfoLog(sh))
	}
	src := gl.GetTranslatedShaderSource(sh)
	if !strings.Contains(src, "#version 330") {
		t.Errorf("translated source lacks #version 330:\n%s", src)
	}

	bad := gl.CreateShader(FRAGMENT_SHADER)
	gl.ShaderSource(bad, badWGSL)
	gl.CompileShader(bad)
	if got := gl.GetTranslatedShaderSource(bad); got != "" {
		t.Errorf("translated source of failed shader = %q, want empty", got)
	}
}

func TestLinkProgram(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL

	compile := func(kind Enum, src string) uint32 {
		sh := gl.CreateShader(kind)
		gl.ShaderSource(sh, src)
		gl.CompileShader(sh)
		return sh
	}
	vs := compile(VERTEX_SHADER, QuadVertexShader())
	fs := compile(FRAGMENT_SHADER, QuadFragmentShader())

	t.Run("missing fragment", func(t *testing.T) {
		p := gl.CreateProgram()
		gl.AttachShader(p, vs)
		gl.LinkProgram(p)
		if gl.GetProgramiv(p, LINK_STATUS) != FALSE {
			t.Fatal("program without a fragment shader linked")
		}
		if gl.GetProgramInfoLog(p) == "" {
			t.Error("empty link log")
		}
		gl.UseProgram(p)
		wantGLError(t, gl, INVALID_OPERATION)
	})

	t.Run("duplicate attach", func(t *testing.T) {
		p := gl.CreateProgram()
		gl.AttachShader(p, vs)
		gl.AttachShader(p, vs)
		wantGLError(t, gl, INVALID_OPERATION)
	})

	t.Run("shader name as program", func(t *testing.T) {
		gl.LinkProgram(vs)
		wantGLError(t, gl, INVALID_OPERATION)
	})

	t.Run("linked", func(t *testing.T) {
		p := gl.CreateProgram()
		gl.AttachShader(p, vs)
		gl.AttachShader(p, fs)
		gl.LinkProgram(p)
		if gl.GetProgramiv(p, LINK_STATUS) != TRUE {
			t.Fatalf("link failed: %s", gl.GetProgramInfoLog(p))
		}
		gl.UseProgram(p)
		wantGLError(t, gl, NO_ERROR)
		gl.UseProgram(0)
		gl.DeleteProgram(p)
		wantGLError(t, gl, NO_ERROR)
	})
}

func TestDeleteAttachedShader(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL

	compile := func(kind Enum, src string) uint32 {
		sh := gl.CreateShader(kind)
		gl.ShaderSource(sh, src)
		gl.CompileShader(sh)
		return sh
	}
	vs := compile(VERTEX_SHADER, QuadVertexShader())
	fs := compile(FRAGMENT_SHADER, QuadFragmentShader())
	p := gl.CreateProgram()
	gl.AttachShader(p, vs)
	gl.AttachShader(p, fs)

	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	wantGLError(t, gl, NO_ERROR)
	if got := gl.GetShaderiv(vs, DELETE_STATUS); got != TRUE {
		t.Errorf("DELETE_STATUS = %d, want TRUE", got)
	}

	gl.LinkProgram(p)
	if gl.GetProgramiv(p, LINK_STATUS) != TRUE {
		t.Fatalf("link after DeleteShader failed: %s", gl.GetProgramInfoLog(p))
	}

	gl.DetachShader(p, vs)
	wantGLError(t, gl, NO_ERROR)
	gl.GetShaderiv(vs, COMPILE_STATUS)
	wantGLError(t, gl, INVALID_VALUE)

	gl.DetachShader(p, vs)
	wantGLError(t, gl, INVALID_VALUE)

	gl.DeleteProgram(p)
	gl.GetShaderiv(fs, COMPILE_STATUS)
	wantGLError(t, gl, INVALID_VALUE)

	unattached := compile(VERTEX_SHADER, QuadVertexShader())
	gl.DeleteShader(unattached)
	gl.GetShaderiv(unattached, SHADER_TYPE)
	wantGLError(t, gl, INVALID_VALUE)
}

func TestDrawElementsErrors(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL
	gl.BindFramebuffer(FRAMEBUFFER, s.SurfaceInfo.FramebufferObject)

	gl.BindBuffer(ELEMENT_ARRAY_BUFFER, gl.GenBuffer())
	wantGLError(t, gl, INVALID_OPERATION)

	gl.DrawElements(TRIANGLES, 3, UNSIGNED_BYTE, 0)
	wantGLError(t, gl, INVALID_OPERATION)

	gl.BindVertexArray(gl.GenVertexArray())
	gl.DrawElements(RGBA, 3, UNSIGNED_BYTE, 0)
	wantGLError(t, gl, INVALID_ENUM)

	gl.DrawElements(TRIANGLES, 3, FLOAT, 0)
	wantGLError(t, gl, INVALID_ENUM)

	gl.VertexAttribPointer(0, 2, UNSIGNED_BYTE, false, 0, 0)
	wantGLError(t, gl, INVALID_ENUM)

	gl.VertexAttribPointer(0, 2, FLOAT, false, 0, 8)
	wantGLError(t, gl, INVALID_OPERATION)

	// No program in use: skipped, not an error.
	gl.DrawElements(TRIANGLES, 3, UNSIGNED_BYTE, 0)
	wantGLError(t, gl, NO_ERROR)
	if n := gl.Stats().SkippedDraws; n != 1 {
		t.Errorf("SkippedDraws = %d, want 1", n)
	}
}

func TestDrawElementsOutOfRange(t *testing.T) {
	s := newSoftwareSession(t, 16, 16, 0)
	gl := s.GL
	gl.BindFramebuffer(FRAMEBUFFER, s.SurfaceInfo.FramebufferObject)

	vs := gl.CreateShader(VERTEX_SHADER)
	gl.ShaderSource(vs, QuadVertexShader())
	gl.CompileShader(vs)
	fs := gl.CreateShader(FRAGMENT_SHADER)
	gl.ShaderSource(fs, QuadFragmentShader())
	gl.CompileShader(fs)
	p := gl.CreateProgram()
	gl.AttachShader(p, vs)
	gl.AttachShader(p, fs)
	gl.LinkProgram(p)
	gl.UseProgram(p)

	gl.BindVertexArray(gl.GenVertexArray())
	gl.BindBuffer(ARRAY_BUFFER, gl.GenBuffer())
	gl.BufferData(ARRAY_BUFFER, Float32Bytes(DefaultQuadVertices()), STATIC_DRAW)
	gl.BindBuffer(ELEMENT_ARRAY_BUFFER, gl.GenBuffer())
	gl.BufferData(ELEMENT_ARRAY_BUFFER, DefaultQuadIndices(), STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, FLOAT, false, 0, 0)
	wantGLError(t, gl, NO_ERROR)

	gl.DrawElements(TRIANGLES, 7, UNSIGNED_BYTE, 0)
	wantGLError(t, gl, INVALID_OPERATION)
	gl.DrawElements(TRIANGLES, 3, UNSIGNED_SHORT, 2)
	wantGLError(t, gl, INVALID_OPERATION)

	gl.DrawElements(TRIANGLES, 3, UNSIGNED_BYTE, 3)
	wantGLError(t, gl, NO_ERROR)
	if n := gl.Stats().Draws; n != 1 {
		t.Errorf("Draws = %d, want 1", n)
	}
	if err := gl.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestReadPixelsRegion(t *testing.T) {
	s := newSoftwareSession(t, 8, 4, 0)
	gl := s.GL
	if _, err := RenderClear(gl, s.SurfaceInfo, FrameConfig{Width: 8, Height: 4, ClearColor: [4]float32{0, 0, 1, 1}}); err != nil {
		t.Fatalf("RenderClear: %v", err)
	}

	// A 4x4 block at (6, 2) overlaps the framebuffer in its lower-left 2x2.
	dst := bytes.Repeat([]byte{0xAA}, 4*4*4)
	if err := gl.ReadPixels(6, 2, 4, 4, RGBA, UNSIGNED_BYTE, dst); err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	blue := []byte{0, 0, 255, 255}
	untouched := []byte{0xAA, 0xAA, 0xAA, 0xAA}
	for row := range 4 {
		for col := range 4 {
			got := dst[(row*4+col)*4:][:4]
			want := untouched
			if row < 2 && col < 2 {
				want = blue
			}
			if !bytes.Equal(got, want) {
				t.Errorf("pixel (%d, %d) = %v, want %v", col, row, got, want)
			}
		}
	}
	wantGLError(t, gl, NO_ERROR)
}

func TestReadPixelsArguments(t *testing.T) {
	s := newSoftwareSession(t, 8, 8, 0)
	gl := s.GL
	gl.BindFramebuffer(FRAMEBUFFER, s.SurfaceInfo.FramebufferObject)

	err := gl.ReadPixels(0, 0, 8, 8, RGBA, UNSIGNED_BYTE, make([]byte, 8*8*4-1))
	if !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("short buffer err = %v, want ErrBufferTooSmall", err)
	}

	if err := gl.ReadPixels(0, 0, 8, 8, RGBA, FLOAT, make([]byte, 8*8*16)); err != nil {
		t.Fatalf("ReadPixels(FLOAT): %v", err)
	}
	wantGLError(t, gl, INVALID_ENUM)

	gl.BindFramebuffer(READ_FRAMEBUFFER, 0)
	if err := gl.ReadPixels(0, 0, 1, 1, RGBA, UNSIGNED_BYTE, make([]byte, 4)); err != nil {
		t.Fatalf("ReadPixels(fb 0): %v", err)
	}
	wantGLError(t, gl, INVALID_FRAMEBUFFER_OPERATION)
}

func TestReadPixelsAlpha(t *testing.T) {
	tests := []struct {
		name  string
		flags ContextAttributeFlags
		want  byte
	}{
		{"no alpha channel", 0, 255},
		{"alpha channel", ContextAlpha, 127},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSoftwareSession(t, 4, 4, tt.flags)
			cfg := FrameConfig{Width: 4, Height: 4, ClearColor: [4]float32{1, 1, 1, 0.5}}
			pix, err := RenderClear(s.GL, s.SurfaceInfo, cfg)
			if err != nil {
				t.Fatalf("RenderClear: %v", err)
			}
			if got := pix.At(1, 1)[3]; got != tt.want {
				t.Errorf("alpha = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClearDepthStencil(t *testing.T) {
	tests := []struct {
		name  string
		flags ContextAttributeFlags
	}{
		{"color only", 0},
		{"depth", ContextDepth},
		{"depth and stencil", ContextDepth | ContextStencil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSoftwareSession(t, 4, 4, tt.flags)
			gl := s.GL

			gl.ClearDepth(2)
			if got := gl.state().clearDepth; got != 1 {
				t.Errorf("clearDepth = %v, want 1 (clamped)", got)
			}
			gl.ClearDepth(-1)
			if got := gl.state().clearDepth; got != 0 {
				t.Errorf("clearDepth = %v, want 0 (clamped)", got)
			}
			gl.ClearDepth(0.25)
			gl.ClearStencil(3)

			pix, err := RenderClear(gl, s.SurfaceInfo, FrameConfig{Width: 4, Height: 4, ClearColor: [4]float32{0.3, 0.4, 0.5, 1}})
			if err != nil {
				t.Fatalf("RenderClear: %v", err)
			}
			wantGLError(t, gl, NO_ERROR)
			if got := pix.At(3, 3); got != wantClearPixel {
				t.Errorf("At(3, 3) = %v, want %v", got, wantClearPixel)
			}
			if got := gl.state().clearDepth; got != 1 {
				t.Errorf("clearDepth after frame = %v, want 1", got)
			}
		})
	}
}

func TestFunctionsAfterDestroy(t *testing.T) {
	s := newSoftwareSession(t, 4, 4, 0)
	gl := s.GL
	if err := s.Device.DestroyContext(s.Context); err != nil {
		t.Fatalf("DestroyContext: %v", err)
	}

	if err := gl.Flush(); !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("Flush err = %v, want ErrContextDestroyed", err)
	}
	if err := gl.ReadPixels(0, 0, 1, 1, RGBA, UNSIGNED_BYTE, make([]byte, 4)); !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("ReadPixels err = %v, want ErrContextDestroyed", err)
	}
	if name := gl.CreateProgram(); name != 0 {
		t.Errorf("CreateProgram = %d on destroyed context", name)
	}
}

func TestFloat32Bytes(t *testing.T) {
	got := Float32Bytes([]float32{1, -2})
	want := []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0}
	if !bytes.Equal(got, want) {
		t.Errorf("Float32Bytes = % x, want % x", got, want)
	}
}
