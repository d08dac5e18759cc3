package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShaderRoot(t *testing.T) {
	tests := []struct {
		shader string
		root   string
	}{
		{"foo_bar_phong.cso", "phong"},
		{"simple.cso", "simple"},
		{"materials_custom", "custom"},
		{"noext", "noext"},
		{"a_b.c.d", "b"},
		{"trailing_", ""},
		{"dir/sub_dir/lambert.cso", "dir/lambert"},
	}

	for _, test := range tests {
		t.Run(test.shader, func(t *testing.T) {
			assert.Equal(t, test.root, ShaderRoot(test.shader))
		})
	}
}

func TestParseShaderVariant(t *testing.T) {
	tests := []struct {
		shader        string
		kind          VariantKind
		lighting      bool
		allowSpecular bool
	}{
		{"", VariantDefault, true, true},
		{"scene_Lambert.cso", VariantLambert, true, false},
		{"scene_PHONG.cso", VariantPhong, true, true},
		{"unlit.cso", VariantUnlit, false, true},
		{"materials_custom.cso", VariantCustom, true, true},
	}

	for _, test := range tests {
		t.Run(test.kind.String(), func(t *testing.T) {
			variant := ParseShaderVariant(test.shader)
			assert.Equal(t, test.kind, variant.Kind)
			assert.Equal(t, test.lighting, variant.Lighting())
			assert.Equal(t, test.allowSpecular, variant.AllowSpecular())
		})
	}
}

func TestShaderPathFallback(t *testing.T) {
	custom := ParseShaderVariant("materials_custom.cso")
	assert.Equal(t, "materials_custom.cso", custom.ShaderPath(FeatureLevel10_0))
	assert.Equal(t, "materials_custom.cso", custom.ShaderPath(FeatureLevel12_1))
	assert.Equal(t, "custom.cso", custom.ShaderPath(FeatureLevel9_3))

	for _, shader := range []string{"", "x_phong.cso", "x_lambert.cso", "x_unlit.cso"} {
		assert.Empty(t, ParseShaderVariant(shader).ShaderPath(FeatureLevel9_1), shader)
	}
}

func TestParseFeatureLevel(t *testing.T) {
	level, ok := ParseFeatureLevel("10.1")
	assert.True(t, ok)
	assert.Equal(t, FeatureLevel10_1, level)

	level, ok = ParseFeatureLevel("9_3")
	assert.True(t, ok)
	assert.Equal(t, FeatureLevel9_3, level)

	_, ok = ParseFeatureLevel("13_0")
	assert.False(t, ok)
}
