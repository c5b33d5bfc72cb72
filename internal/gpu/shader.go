package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu/hal"
)

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

func (s Stage) irStage() ir.ShaderStage {
	if s == StageFragment {
		return ir.StageFragment
	}
	return ir.StageVertex
}

// Shader is a WGSL source that parsed, lowered and validated, together with
// the entry point selected for its stage.
type Shader struct {
	Source     string
	Stage      Stage
	EntryPoint string
	module     *ir.Module
}

// CompileShader runs the WGSL front end over src and picks the first entry
// point for stage. The returned error wraps ErrShaderInvalid or
// ErrMissingEntryPoint and carries the diagnostics as its message, suitable
// for an info log.
func CompileShader(src string, stage Stage) (*Shader, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderInvalid, err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderInvalid, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderInvalid, err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for i := range verrs {
			msgs = append(msgs, verrs[i].Error())
		}
		return nil, fmt.Errorf("%w: %s", ErrShaderInvalid, strings.Join(msgs, "; "))
	}
	if err := checkReturnTypes(module); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderInvalid, err)
	}
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if ep.Stage == stage.irStage() {
			return &Shader{Source: src, Stage: stage, EntryPoint: ep.Name, module: module}, nil
		}
	}
	return nil, fmt.Errorf("%w %s", ErrMissingEntryPoint, stage)
}

// checkReturnTypes rejects functions whose return values do not have the
// shape (scalar, vector or matrix) of the declared result type. naga's
// validator does not compare the two.
func checkReturnTypes(module *ir.Module) error {
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if err := checkFunctionReturns(module, &ep.Function, ep.Name); err != nil {
			return err
		}
	}
	for i := range module.Functions {
		fn := &module.Functions[i]
		if err := checkFunctionReturns(module, fn, fn.Name); err != nil {
			return err
		}
	}
	return nil
}

func checkFunctionReturns(module *ir.Module, fn *ir.Function, name string) error {
	if fn.Result == nil || int(fn.Result.Type) >= len(module.Types) {
		return nil
	}
	want := module.Types[fn.Result.Type].Inner
	var walk func(block []ir.Statement) error
	walk = func(block []ir.Statement) error {
		for _, st := range block {
			switch k := st.Kind.(type) {
			case ir.StmtReturn:
				if k.Value == nil || int(*k.Value) >= len(fn.ExpressionTypes) {
					continue
				}
				got := ir.TypeResInner(module, fn.ExpressionTypes[*k.Value])
				if !sameShape(got, want) {
					return fmt.Errorf("function %s returns %s, declared %s", name, shapeName(got), shapeName(want))
				}
			case ir.StmtBlock:
				if err := walk(k.Block); err != nil {
					return err
				}
			case ir.StmtIf:
				if err := walk(k.Accept); err != nil {
					return err
				}
				if err := walk(k.Reject); err != nil {
					return err
				}
			case ir.StmtSwitch:
				for _, c := range k.Cases {
					if err := walk(c.Body); err != nil {
						return err
					}
				}
			case ir.StmtLoop:
				if err := walk(k.Body); err != nil {
					return err
				}
				if err := walk(k.Continuing); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(fn.Body)
}

// sameShape reports whether two types agree in shape. Only scalars, vectors
// and matrices are compared; any other pairing is accepted.
func sameShape(a, b ir.TypeInner) bool {
	switch x := a.(type) {
	case ir.ScalarType:
		switch y := b.(type) {
		case ir.ScalarType:
			return sameKind(x, y)
		case ir.VectorType, ir.MatrixType:
			return false
		}
	case ir.VectorType:
		switch y := b.(type) {
		case ir.VectorType:
			return x.Size == y.Size && sameKind(x.Scalar, y.Scalar)
		case ir.ScalarType, ir.MatrixType:
			return false
		}
	case ir.MatrixType:
		switch y := b.(type) {
		case ir.MatrixType:
			return x.Columns == y.Columns && x.Rows == y.Rows
		case ir.ScalarType, ir.VectorType:
			return false
		}
	}
	return true
}

// sameKind compares scalar kinds, treating abstract literals as matching.
func sameKind(a, b ir.ScalarType) bool {
	if a.Kind == ir.ScalarAbstractInt || a.Kind == ir.ScalarAbstractFloat ||
		b.Kind == ir.ScalarAbstractInt || b.Kind == ir.ScalarAbstractFloat {
		return true
	}
	return a.Kind == b.Kind
}

func shapeName(t ir.TypeInner) string {
	switch x := t.(type) {
	case ir.ScalarType:
		return "scalar"
	case ir.VectorType:
		return fmt.Sprintf("vec%d", x.Size)
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d", x.Columns, x.Rows)
	default:
		return "value"
	}
}

// TranslateGLSL returns the GLSL text for the shader's entry point.
func (s *Shader) TranslateGLSL(version glsl.Version) (string, error) {
	out, _, err := glsl.Compile(s.module, glsl.Options{
		LangVersion:        version,
		EntryPoint:         s.EntryPoint,
		ForceHighPrecision: true,
	})
	if err != nil {
		return "", fmt.Errorf("translate %s shader to GLSL: %w", s.Stage, err)
	}
	return out, nil
}

// CreateShaderModule creates a HAL shader module from WGSL source.
func CreateShaderModule(d *Device, label, src string) (hal.ShaderModule, error) {
	if d == nil || d.raw == nil {
		return nil, ErrNilDevice
	}
	m, err := d.raw.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: src},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}
	return m, nil
}
