package headless

import (
	"fmt"
	"strings"

	"github.com/gogpu/headless/internal/gpu"
)

// Shader sources are WGSL. Compilation runs the naga front end (parse,
// lower, validate); GetTranslatedShaderSource exposes the GLSL the shader
// translates to for the context version.

// CreateShader creates an empty shader object of the given kind and
// returns its name, or 0 on error.
func (gl *Functions) CreateShader(kind Enum) uint32 {
	if !gl.live() {
		return 0
	}
	if kind != VERTEX_SHADER && kind != FRAGMENT_SHADER {
		gl.setError(INVALID_ENUM)
		return 0
	}
	objs := gl.ctx.objects
	name := objs.alloc()
	objs.shaders[name] = &shaderObject{kind: kind}
	return name
}

func (gl *Functions) shader(name uint32) *shaderObject {
	if s, ok := gl.ctx.objects.shaders[name]; ok {
		return s
	}
	if _, ok := gl.ctx.objects.programs[name]; ok {
		gl.setError(INVALID_OPERATION)
	} else {
		gl.setError(INVALID_VALUE)
	}
	return nil
}

func (gl *Functions) program(name uint32) *programObject {
	if p, ok := gl.ctx.objects.programs[name]; ok {
		return p
	}
	if _, ok := gl.ctx.objects.shaders[name]; ok {
		gl.setError(INVALID_OPERATION)
	} else {
		gl.setError(INVALID_VALUE)
	}
	return nil
}

// ShaderSource replaces the source text of a shader.
func (gl *Functions) ShaderSource(name uint32, sources ...string) {
	if !gl.live() {
		return
	}
	if s := gl.shader(name); s != nil {
		s.source = strings.Join(sources, "")
	}
}

// CompileShader compiles the shader's current source. The result is
// queried with GetShaderiv(COMPILE_STATUS) and GetShaderInfoLog.
func (gl *Functions) CompileShader(name uint32) {
	if !gl.live() {
		return
	}
	s := gl.shader(name)
	if s == nil {
		return
	}
	compiled, err := gpu.CompileShader(s.source, s.stage())
	if err != nil {
		s.compiled, s.log, s.shader = false, err.Error(), nil
		return
	}
	s.compiled, s.log, s.shader = true, "", compiled
}

// GetShaderiv returns a shader parameter: COMPILE_STATUS, INFO_LOG_LENGTH
// (including the terminating NUL, 0 when empty) or SHADER_TYPE.
func (gl *Functions) GetShaderiv(name uint32, pname Enum) int32 {
	if !gl.live() {
		return 0
	}
	s := gl.shader(name)
	if s == nil {
		return 0
	}
	switch pname {
	case COMPILE_STATUS:
		if s.compiled {
			return TRUE
		}
		return FALSE
	case INFO_LOG_LENGTH:
		return logLength(s.log)
	case SHADER_TYPE:
		return int32(s.kind)
	case DELETE_STATUS:
		if s.deleted {
			return TRUE
		}
		return FALSE
	default:
		gl.setError(INVALID_ENUM)
		return 0
	}
}

func logLength(log string) int32 {
	if log == "" {
		return 0
	}
	return int32(len(log) + 1)
}

// GetShaderInfoLog returns the diagnostics of the last compilation.
func (gl *Functions) GetShaderInfoLog(name uint32) string {
	if !gl.live() {
		return ""
	}
	if s := gl.shader(name); s != nil {
		return s.log
	}
	return ""
}

// GetTranslatedShaderSource returns the GLSL the compiled shader translates
// to: version 330 core for GL 3.3 contexts, 300 es otherwise. It returns ""
// for shaders that did not compile.
func (gl *Functions) GetTranslatedShaderSource(name uint32) string {
	if !gl.live() {
		return ""
	}
	s := gl.shader(name)
	if s == nil || s.shader == nil {
		return ""
	}
	src, err := s.shader.TranslateGLSL(gl.ctx.attrs.glslVersion())
	if err != nil {
		Logger().Warn("headless: GLSL translation failed", "shader", name, "err", err)
		return ""
	}
	return src
}

// DeleteShader deletes a shader object. A shader still attached to a
// program is only flagged and goes away once it is detached everywhere.
func (gl *Functions) DeleteShader(name uint32) {
	if !gl.live() || name == 0 {
		return
	}
	s := gl.shader(name)
	if s == nil {
		return
	}
	s.deleted = true
	gl.reapShader(name)
}

// reapShader drops a shader flagged for deletion once no program holds it.
func (gl *Functions) reapShader(name uint32) {
	objs := gl.ctx.objects
	s, ok := objs.shaders[name]
	if !ok || !s.deleted {
		return
	}
	for _, p := range objs.programs {
		for _, a := range p.attached {
			if a == name {
				return
			}
		}
	}
	delete(objs.shaders, name)
}

// CreateProgram creates an empty program object and returns its name.
func (gl *Functions) CreateProgram() uint32 {
	if !gl.live() {
		return 0
	}
	objs := gl.ctx.objects
	name := objs.alloc()
	objs.programs[name] = &programObject{}
	return name
}

// AttachShader attaches a shader to a program.
func (gl *Functions) AttachShader(program, shader uint32) {
	if !gl.live() {
		return
	}
	p := gl.program(program)
	if p == nil {
		return
	}
	if gl.shader(shader) == nil {
		return
	}
	for _, a := range p.attached {
		if a == shader {
			gl.setError(INVALID_OPERATION)
			return
		}
	}
	p.attached = append(p.attached, shader)
}

// DetachShader detaches a shader from a program.
func (gl *Functions) DetachShader(program, shader uint32) {
	if !gl.live() {
		return
	}
	p := gl.program(program)
	if p == nil {
		return
	}
	if gl.shader(shader) == nil {
		return
	}
	for i, a := range p.attached {
		if a == shader {
			p.attached = append(p.attached[:i], p.attached[i+1:]...)
			gl.reapShader(shader)
			return
		}
	}
	gl.setError(INVALID_OPERATION)
}

// LinkProgram links the attached shaders: exactly one compiled vertex and
// one compiled fragment shader are required. The result is queried with
// GetProgramiv(LINK_STATUS) and GetProgramInfoLog.
func (gl *Functions) LinkProgram(program uint32) {
	if !gl.live() {
		return
	}
	p := gl.program(program)
	if p == nil {
		return
	}
	dev := gl.ctx.device.gpu
	p.release(dev)
	p.vertex, p.fragment = nil, nil

	var problems []string
	for _, name := range p.attached {
		s, ok := gl.ctx.objects.shaders[name]
		if !ok {
			continue
		}
		if !s.compiled {
			problems = append(problems, fmt.Sprintf("shader %d is not compiled", name))
			continue
		}
		switch {
		case s.kind == VERTEX_SHADER && p.vertex == nil:
			p.vertex = s.shader
		case s.kind == FRAGMENT_SHADER && p.fragment == nil:
			p.fragment = s.shader
		default:
			problems = append(problems, fmt.Sprintf("more than one %s attached", s.kind))
		}
	}
	if p.vertex == nil {
		problems = append(problems, "no vertex shader attached")
	}
	if p.fragment == nil {
		problems = append(problems, "no fragment shader attached")
	}
	if len(problems) > 0 {
		p.linked, p.log = false, strings.Join(problems, "\n")
		return
	}

	vs, err := gpu.CreateShaderModule(dev, fmt.Sprintf("program%d_vertex", program), p.vertex.Source)
	if err != nil {
		p.linked, p.log = false, err.Error()
		return
	}
	fs, err := gpu.CreateShaderModule(dev, fmt.Sprintf("program%d_fragment", program), p.fragment.Source)
	if err != nil {
		dev.HalDevice().DestroyShaderModule(vs)
		p.linked, p.log = false, err.Error()
		return
	}
	p.vsModule, p.fsModule = vs, fs
	p.linked, p.log = true, ""
}

// GetProgramiv returns a program parameter: LINK_STATUS or INFO_LOG_LENGTH.
func (gl *Functions) GetProgramiv(program uint32, pname Enum) int32 {
	if !gl.live() {
		return 0
	}
	p := gl.program(program)
	if p == nil {
		return 0
	}
	switch pname {
	case LINK_STATUS:
		if p.linked {
			return TRUE
		}
		return FALSE
	case INFO_LOG_LENGTH:
		return logLength(p.log)
	default:
		gl.setError(INVALID_ENUM)
		return 0
	}
}

// GetProgramInfoLog returns the diagnostics of the last link.
func (gl *Functions) GetProgramInfoLog(program uint32) string {
	if !gl.live() {
		return ""
	}
	if p := gl.program(program); p != nil {
		return p.log
	}
	return ""
}

// UseProgram makes a linked program active. Name 0 deactivates programs;
// draws issued with no active program are skipped.
func (gl *Functions) UseProgram(program uint32) {
	if !gl.live() {
		return
	}
	if program != 0 {
		p := gl.program(program)
		if p == nil {
			return
		}
		if !p.linked {
			gl.setError(INVALID_OPERATION)
			return
		}
	}
	gl.state().program = program
}

// DeleteProgram deletes a program object. Deleting the active program
// deactivates it.
func (gl *Functions) DeleteProgram(program uint32) {
	if !gl.live() || program == 0 {
		return
	}
	p := gl.program(program)
	if p == nil {
		return
	}
	p.release(gl.ctx.device.gpu)
	delete(gl.ctx.objects.programs, program)
	for _, name := range p.attached {
		gl.reapShader(name)
	}
	if gl.state().program == program {
		gl.state().program = 0
	}
}
