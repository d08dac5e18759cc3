package pulse

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/fxfactory/fx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureLevelOf(t *testing.T) {
	assert.Equal(t, fx.FeatureLevel9_3, FeatureLevelOf(wgpu.BackendTypeOpenGLES))
	assert.Equal(t, fx.FeatureLevel9_3, FeatureLevelOf(wgpu.BackendTypeOpenGL))
	assert.Equal(t, fx.FeatureLevel11_0, FeatureLevelOf(wgpu.BackendTypeD3D11))
	assert.Equal(t, fx.FeatureLevel12_0, FeatureLevelOf(wgpu.BackendTypeVulkan))
	assert.Equal(t, fx.FeatureLevel12_0, FeatureLevelOf(wgpu.BackendTypeMetal))
	assert.Equal(t, fx.FeatureLevel10_0, FeatureLevelOf(wgpu.BackendType(0)))
}

func TestTextureLoaderRejectsForeignDevice(t *testing.T) {
	loader := TextureLoader{
		ReadFile: func(path string) ([]byte, error) {
			t.Fatalf("unexpected read of %q", path)
			return nil, nil
		},
	}

	_, err := loader.LoadCompressed(nil, "brick.dds")
	assert.Error(t, err)

	_, err = loader.LoadImage(&Context{}, nil, "brick.png")
	assert.Error(t, err)
}

func TestBlockSize(t *testing.T) {
	assert.Equal(t, uint32(4), blockSize(wgpu.TextureFormatBC1RGBAUnorm))
	assert.Equal(t, uint32(1), blockSize(wgpu.TextureFormatRGBA8UnormSrgb))
}

func TestEffectConstantsLayout(t *testing.T) {
	constants := fx.EffectConstants{}
	require.Len(t, AsByteSlice(&constants), 5*16)
}
