package lod

import (
	gomath "math"

	"github.com/Faultbox/meshlod/pkg/mesh"
)

// Controller tracks the selected mesh, texture and shader level of one object.
// Indices computed by Update stay valid until the next Update.
type Controller struct {
	meshes   *MeshLevels
	textures *TextureLevels
	shaders  *ShaderLevels
	mode     Mode
	bias     float32

	meshIndex    int
	textureIndex int
	shaderIndex  int
}

// NewController creates a controller over the given level sets. Any set may be
// nil, in which case its index stays 0 and its accessor returns the zero value.
//
// The controller starts at bias 1 and selects with its own bias, so several
// controllers may share one level set (for example a baked set handed out by a
// cache) without seeing each other's bias.
func NewController(meshes *MeshLevels, textures *TextureLevels, shaders *ShaderLevels, mode Mode) *Controller {
	return &Controller{
		meshes:   meshes,
		textures: textures,
		shaders:  shaders,
		mode:     mode,
		bias:     1,
	}
}

// Mode returns how update values are interpreted.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Update selects a level in every set for a distance or coverage value.
func (c *Controller) Update(value float32) {
	if c.meshes != nil {
		c.meshIndex = c.meshes.indexWithBias(c.mode, value, c.bias)
	}
	if c.textures != nil {
		c.textureIndex = c.textures.indexWithBias(c.mode, value, c.bias)
	}
	if c.shaders != nil {
		c.shaderIndex = c.shaders.indexWithBias(c.mode, value, c.bias)
	}
}

// SetBias sets the bias used by Update and mirrors it onto the level sets so
// their own Select methods agree. Non-positive, NaN and infinite values are
// ignored.
func (c *Controller) SetBias(b float32) {
	if !(b > 0) || gomath.IsInf(float64(b), 0) {
		return
	}
	c.bias = b
	if c.meshes != nil {
		c.meshes.SetBias(b)
	}
	if c.textures != nil {
		c.textures.SetBias(b)
	}
	if c.shaders != nil {
		c.shaders.SetBias(b)
	}
}

// Bias returns the last bias applied through SetBias.
func (c *Controller) Bias() float32 {
	return c.bias
}

// MeshIndex returns the mesh level chosen by the last Update.
func (c *Controller) MeshIndex() int { return c.meshIndex }

// TextureIndex returns the texture level chosen by the last Update.
func (c *Controller) TextureIndex() int { return c.textureIndex }

// ShaderIndex returns the shader level chosen by the last Update.
func (c *Controller) ShaderIndex() int { return c.shaderIndex }

// Mesh returns the selected mesh, or nil without a mesh level set.
func (c *Controller) Mesh() *mesh.Mesh {
	if c.meshes == nil {
		return nil
	}
	return c.meshes.Mesh(c.meshIndex)
}

// Resolution returns the selected texture resolution, or 0 without a texture
// level set.
func (c *Controller) Resolution() int {
	if c.textures == nil {
		return 0
	}
	return c.textures.Resolution(c.textureIndex)
}

// Complexity returns the selected shader feature set.
func (c *Controller) Complexity() Complexity {
	if c.shaders == nil {
		return Complexity{}
	}
	return c.shaders.Complexity(c.shaderIndex)
}
