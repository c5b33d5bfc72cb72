package headless

import _ "embed"

// Embedded WGSL sources of the quad program.

//go:embed shaders/quad_vertex.wgsl
var quadVertexShaderSource string

//go:embed shaders/quad_fragment.wgsl
var quadFragmentShaderSource string

// QuadVertexShader returns the default vertex shader of RenderQuad.
func QuadVertexShader() string { return quadVertexShaderSource }

// QuadFragmentShader returns the default fragment shader of RenderQuad.
func QuadFragmentShader() string { return quadFragmentShaderSource }
