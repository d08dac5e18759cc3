package fx

import "strings"

//go:generate go tool stringer -type=VariantKind -trimprefix=Variant

// VariantKind selects how an effect is built from a material's shader name.
type VariantKind int

const (
	// VariantDefault is used when the material names no shader.
	VariantDefault VariantKind = iota

	// VariantLambert disables specular highlights.
	VariantLambert

	// VariantPhong is the lit default with specular highlights.
	VariantPhong

	// VariantUnlit disables lighting.
	VariantUnlit

	// VariantCustom uses the pixel shader the material names.
	VariantCustom
)

// ShaderVariant is the parsed form of a material's shader reference.
type ShaderVariant struct {
	Kind VariantKind

	// Root is the variant token taken from the shader name, e.g. "phong"
	// for "foo_bar_phong.cso".
	Root string

	// Shader is the shader reference as given in the material.
	Shader string
}

// ParseShaderVariant classifies a shader reference. The comparison of the
// root token against the built-in variants ignores case.
func ParseShaderVariant(shader string) ShaderVariant {
	if shader == "" {
		return ShaderVariant{Kind: VariantDefault}
	}

	root := ShaderRoot(shader)
	variant := ShaderVariant{Root: root, Shader: shader}

	switch strings.ToLower(root) {
	case "lambert":
		variant.Kind = VariantLambert
	case "phong":
		variant.Kind = VariantPhong
	case "unlit":
		variant.Kind = VariantUnlit
	default:
		variant.Kind = VariantCustom
	}

	return variant
}

// ShaderRoot returns the part of shader after the last underscore, cut at
// the first dot.
func ShaderRoot(shader string) string {
	root := shader
	if idx := strings.LastIndexByte(shader, '_'); idx >= 0 {
		root = shader[idx+1:]
	}

	if idx := strings.IndexByte(root, '.'); idx >= 0 {
		root = root[:idx]
	}

	return root
}

// Lighting reports whether effects of this variant are lit.
func (v ShaderVariant) Lighting() bool {
	return v.Kind != VariantUnlit
}

// AllowSpecular reports whether effects of this variant may have specular
// highlights.
func (v ShaderVariant) AllowSpecular() bool {
	return v.Kind != VariantLambert
}

// ShaderPath returns the pixel shader to load on a device with the given
// feature level. It is empty for the built-in variants. Devices below
// FeatureLevel10_0 cannot run custom shaders and get the fallback shader
// named after the root token instead.
func (v ShaderVariant) ShaderPath(level FeatureLevel) string {
	if v.Kind != VariantCustom {
		return ""
	}

	if level < FeatureLevel10_0 {
		return v.Root + ".cso"
	}

	return v.Shader
}
