// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// HeroVertexShader is the vertex shader for the hero model.
//
//go:embed hero.vert
var HeroVertexShader string

// HeroFragmentShader is the fragment shader for the hero model.
//
//go:embed hero.frag
var HeroFragmentShader string
