package fx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectDefaults(t *testing.T) {
	effect := NewEffect(&fakeDevice{}, nil)
	defer effect.Release()

	assert.Equal(t, mgl32.Vec3{1, 1, 1}, effect.DiffuseColor())
	assert.Equal(t, float32(1), effect.Alpha())
	assert.Equal(t, float32(16), effect.SpecularPower())
	assert.True(t, effect.SpecularEnabled())
	assert.False(t, effect.LightingEnabled())
	assert.Nil(t, effect.PixelShader())
	assert.Empty(t, effect.BoundSlots())
}

func TestEffectDisableSpecular(t *testing.T) {
	effect := NewEffect(&fakeDevice{}, nil)
	defer effect.Release()

	effect.DisableSpecular()
	assert.False(t, effect.SpecularEnabled())
	assert.Equal(t, mgl32.Vec3{}, effect.SpecularColor())
	assert.Equal(t, float32(1), effect.SpecularPower())

	effect.SetSpecularColor(mgl32.Vec3{0.5, 0.5, 0.5})
	assert.True(t, effect.SpecularEnabled())
}

func TestEffectConstants(t *testing.T) {
	effect := NewEffect(&fakeDevice{}, nil)
	defer effect.Release()

	effect.SetLightingEnabled(true)
	effect.SetAlpha(0.25)
	effect.SetSpecularPower(8)
	effect.SetEmissiveColor(mgl32.Vec3{0.1, 0.2, 0.3})

	constants := effect.Constants()
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 0.25}, constants.Diffuse)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 8}, constants.Specular)
	assert.Equal(t, mgl32.Vec4{0.1, 0.2, 0.3, 0}, constants.Emissive)
	assert.Equal(t, mgl32.Vec4{1, 1, 0, 0}, constants.Flags)
}

func TestEffectTextures(t *testing.T) {
	effect := NewEffect(&fakeDevice{}, nil)

	first := &fakeTexture{path: "a.png"}
	second := &fakeTexture{path: "b.png"}

	effect.SetTexture(3, NewShared[Texture](first))
	assert.Equal(t, []int{3}, effect.BoundSlots())

	// replacing a texture releases the previous one
	effect.SetTexture(3, NewShared[Texture](second))
	assert.Equal(t, int32(1), first.released.Load())
	assert.Equal(t, int32(0), second.released.Load())

	require.Panics(t, func() { effect.SetTexture(MaxTextures, nil) })
	require.Panics(t, func() { effect.SetTexture(-1, nil) })

	effect.Release()
	effect.Release()

	assert.Equal(t, int32(1), second.released.Load())
	assert.Nil(t, effect.Texture(3))
}

func TestEffectReleasesShader(t *testing.T) {
	shader := &fakeShader{label: "custom.cso"}

	effect := NewEffect(&fakeDevice{}, NewShared[PixelShader](shader))
	require.NotNil(t, effect.PixelShader())

	effect.Release()
	assert.Equal(t, int32(1), shader.released.Load())
	assert.Nil(t, effect.PixelShader())
}
