package shader

import _ "embed"

// EquirectVertexShader transforms the equirectangular mesh.
//
//go:embed glsl/equirect.vert
var EquirectVertexShader string

// EquirectFragmentShader samples the scene cube map along each vertex's UV
// direction and modulates it by the heat colour.
//
//go:embed glsl/equirect.frag
var EquirectFragmentShader string

// MarkerVertexShader draws particle markers as sized points.
//
//go:embed glsl/marker.vert
var MarkerVertexShader string

// MarkerFragmentShader shades round, soft-edged points.
//
//go:embed glsl/marker.frag
var MarkerFragmentShader string

// SceneVertexShader is the vertex shader for the demo environment.
//
//go:embed glsl/scene.vert
var SceneVertexShader string

// SceneFragmentShader draws the demo environment with grid lines.
//
//go:embed glsl/scene.frag
var SceneFragmentShader string
