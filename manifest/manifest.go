// Package manifest loads material manifests: YAML files that configure a
// factory and list the materials to resolve with it.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oliverbestmann/fxfactory/fx"
	"gopkg.in/yaml.v3"
)

// Manifest is the root of a manifest file.
type Manifest struct {
	Device    DeviceConfig  `yaml:"device"`
	Factory   FactoryConfig `yaml:"factory"`
	Logging   LoggingConfig `yaml:"logging"`
	Materials []Material    `yaml:"materials"`
}

// DeviceConfig configures the headless device.
type DeviceConfig struct {
	Label string `yaml:"label"`

	// FeatureLevel overrides the level derived from the adapter,
	// e.g. "9_3" or "11.0". Empty keeps the derived level.
	FeatureLevel string `yaml:"feature_level"`

	// Compression requests block compressed texture support.
	Compression bool `yaml:"compression"`
}

// FactoryConfig configures the factory and where it reads files from.
type FactoryConfig struct {
	TextureRoot  string `yaml:"texture_root"`
	ShaderRoot   string `yaml:"shader_root"`
	Sharing      bool   `yaml:"sharing"`
	SingleFlight bool   `yaml:"single_flight"`
}

// LoggingConfig selects level and format of the log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Material describes one material. A material with a pixel shader or
// secondary textures is a DGSL material.
type Material struct {
	Name string `yaml:"name"`

	Ambient  []float32 `yaml:"ambient"`
	Diffuse  []float32 `yaml:"diffuse"`
	Specular []float32 `yaml:"specular"`
	Emissive []float32 `yaml:"emissive"`

	Alpha         *float32 `yaml:"alpha"`
	SpecularPower *float32 `yaml:"specular_power"`

	Texture     string   `yaml:"texture"`
	PixelShader string   `yaml:"pixel_shader"`
	Textures    []string `yaml:"textures"`
}

// Load reads the manifest at path, applies environment overrides and
// validates the result.
//
// Environment variables:
//   - FXFACTORY_TEXTURE_ROOT, FXFACTORY_SHADER_ROOT
//   - FXFACTORY_SHARING (a bool as understood by strconv.ParseBool)
//   - FXFACTORY_FEATURE_LEVEL
//   - FXFACTORY_LOG_LEVEL
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// relative roots are relative to the manifest
	dir := filepath.Dir(path)
	m.Factory.TextureRoot = resolveRoot(dir, m.Factory.TextureRoot)
	m.Factory.ShaderRoot = resolveRoot(dir, m.Factory.ShaderRoot)

	return m, nil
}

// Parse decodes a manifest, applies environment overrides and validates
// the result. Relative roots stay relative to the working directory.
func Parse(data []byte) (*Manifest, error) {
	m := defaultManifest()

	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := applyEnvOverrides(m); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	return m, nil
}

func resolveRoot(dir, root string) string {
	if filepath.IsAbs(root) {
		return root
	}

	return filepath.Join(dir, root)
}

func defaultManifest() *Manifest {
	return &Manifest{
		Device: DeviceConfig{
			Label: "fxfactory",
		},
		Factory: FactoryConfig{
			TextureRoot: ".",
			ShaderRoot:  ".",
			Sharing:     true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func applyEnvOverrides(m *Manifest) error {
	if v := os.Getenv("FXFACTORY_TEXTURE_ROOT"); v != "" {
		m.Factory.TextureRoot = v
	}

	if v := os.Getenv("FXFACTORY_SHADER_ROOT"); v != "" {
		m.Factory.ShaderRoot = v
	}

	if v := os.Getenv("FXFACTORY_SHARING"); v != "" {
		sharing, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FXFACTORY_SHARING: %w", err)
		}

		m.Factory.Sharing = sharing
	}

	if v := os.Getenv("FXFACTORY_FEATURE_LEVEL"); v != "" {
		m.Device.FeatureLevel = v
	}

	if v := os.Getenv("FXFACTORY_LOG_LEVEL"); v != "" {
		m.Logging.Level = v
	}

	return nil
}

// Validate checks the manifest for errors. All problems are reported at once.
func (m *Manifest) Validate() error {
	var errs []string

	if m.Device.FeatureLevel != "" {
		if _, ok := fx.ParseFeatureLevel(m.Device.FeatureLevel); !ok {
			errs = append(errs, fmt.Sprintf("device.feature_level %q is unknown", m.Device.FeatureLevel))
		}
	}

	switch strings.ToLower(m.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be debug, info, warn or error", m.Logging.Level))
	}

	switch strings.ToLower(m.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be text or json", m.Logging.Format))
	}

	names := map[string]int{}

	for idx, mat := range m.Materials {
		prefix := fmt.Sprintf("materials[%d]", idx)
		if mat.Name != "" {
			prefix = fmt.Sprintf("materials[%d] (%s)", idx, mat.Name)

			if prev, ok := names[mat.Name]; ok {
				errs = append(errs, fmt.Sprintf("%s: name already used by materials[%d]", prefix, prev))
			}

			names[mat.Name] = idx
		}

		for field, color := range map[string][]float32{
			"ambient":  mat.Ambient,
			"diffuse":  mat.Diffuse,
			"specular": mat.Specular,
			"emissive": mat.Emissive,
		} {
			if len(color) != 0 && len(color) != 3 {
				errs = append(errs, fmt.Sprintf("%s: %s needs 3 components, got %d", prefix, field, len(color)))
			}
		}

		if len(mat.Textures) > fx.MaxSecondaryTextures {
			errs = append(errs, fmt.Sprintf("%s: at most %d secondary textures, got %d",
				prefix, fx.MaxSecondaryTextures, len(mat.Textures)))
		}
	}

	if len(errs) > 0 {
		// map iteration above is unordered
		slices.Sort(errs)
		return fmt.Errorf("manifest errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// FeatureLevelOverride returns the configured feature level, or nil.
func (d DeviceConfig) FeatureLevelOverride() *fx.FeatureLevel {
	if d.FeatureLevel == "" {
		return nil
	}

	level, ok := fx.ParseFeatureLevel(d.FeatureLevel)
	if !ok {
		return nil
	}

	return &level
}

// TextureReader reads texture paths relative to the texture root.
func (f FactoryConfig) TextureReader() fx.FileReader {
	return rootedReader(f.TextureRoot)
}

// ShaderReader reads shader paths relative to the shader root.
func (f FactoryConfig) ShaderReader() fx.FileReader {
	return rootedReader(f.ShaderRoot)
}

func rootedReader(root string) fx.FileReader {
	return func(path string) ([]byte, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}

		return os.ReadFile(path)
	}
}

// IsDGSL reports whether the material needs a DGSL effect.
func (mat *Material) IsDGSL() bool {
	return mat.PixelShader != "" || len(mat.Textures) > 0
}

// EffectInfo converts the material into a basic effect description.
func (mat *Material) EffectInfo() fx.EffectInfo {
	info := fx.EffectInfo{
		Name:          mat.Name,
		AmbientColor:  vec3(mat.Ambient),
		DiffuseColor:  vec3(mat.Diffuse),
		SpecularColor: vec3(mat.Specular),
		EmissiveColor: vec3(mat.Emissive),
		Alpha:         1,
		SpecularPower: 16,
		Texture:       mat.Texture,
	}

	if len(mat.Diffuse) == 0 {
		info.DiffuseColor = mgl32.Vec3{1, 1, 1}
	}

	if mat.Alpha != nil {
		info.Alpha = *mat.Alpha
	}

	if mat.SpecularPower != nil {
		info.SpecularPower = *mat.SpecularPower
	}

	return info
}

// DGSLEffectInfo converts the material into a DGSL effect description.
func (mat *Material) DGSLEffectInfo() fx.DGSLEffectInfo {
	info := fx.DGSLEffectInfo{
		EffectInfo:  mat.EffectInfo(),
		PixelShader: mat.PixelShader,
	}

	copy(info.Textures[:], mat.Textures)

	return info
}

func vec3(values []float32) mgl32.Vec3 {
	var v mgl32.Vec3
	copy(v[:], values)
	return v
}
