package fx

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

const (
	// MaxTextures is the number of texture slots of an effect.
	MaxTextures = 8

	// MaxSecondaryTextures is the number of slots after the primary texture.
	MaxSecondaryTextures = MaxTextures - 1
)

// EffectInfo describes a basic material.
type EffectInfo struct {
	// Name is the cache key of the effect. Effects without a name are
	// never cached.
	Name string

	AmbientColor  mgl32.Vec3
	DiffuseColor  mgl32.Vec3
	SpecularColor mgl32.Vec3
	EmissiveColor mgl32.Vec3

	Alpha         float32
	SpecularPower float32

	// Texture is the path of the primary texture, may be empty.
	Texture string
}

// DGSLEffectInfo extends EffectInfo with a pixel shader and up to seven
// additional textures.
type DGSLEffectInfo struct {
	EffectInfo

	// PixelShader names the shader. Its root token selects the variant,
	// see ParseShaderVariant.
	PixelShader string

	// Textures holds the paths bound to slots 1 to 7. Empty entries leave
	// their slot unbound.
	Textures [MaxSecondaryTextures]string
}

func nonZero[V ~[3]F, F constraints.Float](v V) bool {
	return v[0] != 0 || v[1] != 0 || v[2] != 0
}
