package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oliverbestmann/fxfactory/fx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
device:
  feature_level: "9_3"
factory:
  texture_root: textures
  shader_root: /opt/shaders
  single_flight: true
logging:
  level: debug
  format: json
materials:
  - name: brick
    diffuse: [0.5, 0.25, 1]
    specular: [1, 1, 1]
    specular_power: 32
    texture: brick.dds
  - name: water
    alpha: 0.5
    pixel_shader: scene_phong.cso
    textures: [normal.dds, "", foam.png]
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "materials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, sample)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "textures"), m.Factory.TextureRoot)
	assert.Equal(t, "/opt/shaders", m.Factory.ShaderRoot)
	assert.True(t, m.Factory.Sharing, "sharing defaults to true")
	assert.True(t, m.Factory.SingleFlight)
	assert.Equal(t, "debug", m.Logging.Level)
	assert.Equal(t, "fxfactory", m.Device.Label)

	level := m.Device.FeatureLevelOverride()
	require.NotNil(t, level)
	assert.Equal(t, fx.FeatureLevel9_3, *level)

	require.Len(t, m.Materials, 2)
	assert.False(t, m.Materials[0].IsDGSL())
	assert.True(t, m.Materials[1].IsDGSL())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/materials.yaml")
	assert.Error(t, err)
}

func TestParse_Defaults(t *testing.T) {
	m, err := Parse([]byte("materials: []"))
	require.NoError(t, err)

	assert.Equal(t, ".", m.Factory.TextureRoot)
	assert.True(t, m.Factory.Sharing)
	assert.Equal(t, "info", m.Logging.Level)
	assert.Equal(t, "text", m.Logging.Format)
	assert.Nil(t, m.Device.FeatureLevelOverride())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("FXFACTORY_TEXTURE_ROOT", "/data/textures")
	t.Setenv("FXFACTORY_SHARING", "false")
	t.Setenv("FXFACTORY_FEATURE_LEVEL", "11.0")
	t.Setenv("FXFACTORY_LOG_LEVEL", "warn")

	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "/data/textures", m.Factory.TextureRoot)
	assert.False(t, m.Factory.Sharing)
	assert.Equal(t, fx.FeatureLevel11_0, *m.Device.FeatureLevelOverride())
	assert.Equal(t, "warn", m.Logging.Level)
}

func TestParse_InvalidSharingEnv(t *testing.T) {
	t.Setenv("FXFACTORY_SHARING", "sometimes")

	_, err := Parse([]byte(sample))
	assert.ErrorContains(t, err, "FXFACTORY_SHARING")
}

func TestValidate(t *testing.T) {
	content := `
device:
  feature_level: "13_0"
logging:
  format: xml
materials:
  - name: a
    ambient: [1, 1]
  - name: a
    textures: [a, b, c, d, e, f, g, h]
`

	_, err := Parse([]byte(content))
	require.Error(t, err)

	assert.ErrorContains(t, err, "device.feature_level")
	assert.ErrorContains(t, err, "logging.format")
	assert.ErrorContains(t, err, "ambient needs 3 components")
	assert.ErrorContains(t, err, "name already used by materials[0]")
	assert.ErrorContains(t, err, "at most 7 secondary textures")
}

func TestMaterialConversion(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	brick := m.Materials[0].EffectInfo()
	assert.Equal(t, "brick", brick.Name)
	assert.Equal(t, mgl32.Vec3{0.5, 0.25, 1}, brick.DiffuseColor)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, brick.SpecularColor)
	assert.Equal(t, float32(1), brick.Alpha)
	assert.Equal(t, float32(32), brick.SpecularPower)
	assert.Equal(t, "brick.dds", brick.Texture)

	water := m.Materials[1].DGSLEffectInfo()
	assert.Equal(t, "water", water.Name)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, water.DiffuseColor)
	assert.Equal(t, float32(0.5), water.Alpha)
	assert.Equal(t, float32(16), water.SpecularPower)
	assert.Equal(t, "scene_phong.cso", water.PixelShader)
	assert.Equal(t, [fx.MaxSecondaryTextures]string{"normal.dds", "", "foam.png"}, water.Textures)
}

func TestRootedReader(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "custom.cso"), []byte("code"), 0o600))

	cfg := FactoryConfig{ShaderRoot: root}

	data, err := cfg.ShaderReader()("custom.cso")
	require.NoError(t, err)
	assert.Equal(t, []byte("code"), data)

	_, err = cfg.TextureReader()("custom.cso")
	assert.Error(t, err)
}
