package fx

import (
	"path/filepath"
	"strings"
)

//go:generate go tool stringer -type=FeatureLevel -trimprefix=FeatureLevel

// FeatureLevel ranks the capabilities of a graphics device. Higher values
// support everything lower values support.
type FeatureLevel int

const (
	FeatureLevel9_1 FeatureLevel = iota
	FeatureLevel9_2
	FeatureLevel9_3
	FeatureLevel10_0
	FeatureLevel10_1
	FeatureLevel11_0
	FeatureLevel11_1
	FeatureLevel12_0
	FeatureLevel12_1
)

// ParseFeatureLevel parses names like "10_0" or "10.0".
func ParseFeatureLevel(name string) (FeatureLevel, bool) {
	name = strings.ReplaceAll(strings.TrimSpace(name), ".", "_")

	for level := FeatureLevel9_1; level <= FeatureLevel12_1; level++ {
		if level.String() == name {
			return level, true
		}
	}

	return 0, false
}

// Device is the graphics device effects are bound to. Implementations are
// used as map keys and must be comparable, typically a pointer.
type Device interface {
	// FeatureLevel reports the capability tier of the device.
	FeatureLevel() FeatureLevel

	// CreatePixelShader creates a pixel shader from a compiled shader blob.
	CreatePixelShader(label string, code []byte) (PixelShader, error)
}

// RenderContext is an optional context used to upload texture data. It is
// not safe for concurrent use; uploads through it are serialized per device.
type RenderContext any

// Texture is a GPU texture view.
type Texture interface {
	Releaser
}

// PixelShader is a GPU pixel shader object.
type PixelShader interface {
	Releaser
}

// TextureLoader creates textures from files.
type TextureLoader interface {
	// LoadCompressed loads a GPU-native texture container such as DDS.
	LoadCompressed(dev Device, path string) (Texture, error)

	// LoadImage loads a generic image file. ctx may be nil.
	LoadImage(dev Device, ctx RenderContext, path string) (Texture, error)
}

// FileReader reads a whole file into memory.
type FileReader func(path string) ([]byte, error)

// IsCompressedTexture reports whether path names a GPU-native texture
// container that is loaded without a render context.
func IsCompressedTexture(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dds":
		return true
	default:
		return false
	}
}
