package pulse

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/fxfactory/fx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture wraps a wgpu.Texture and an identity wgpu.TextureView.
type Texture struct {
	texture     *wgpu.Texture
	textureView *wgpu.TextureView

	// equal to texture.GetFormat()
	format wgpu.TextureFormat

	width, height uint32
	mipLevels     uint32

	label string
}

var _ fx.Texture = (*Texture)(nil)

// NewTextureFromDesc creates a texture and its default view.
func NewTextureFromDesc(ctx *Context, desc *wgpu.TextureDescriptor) (*Texture, error) {
	texture, err := ctx.Device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}

	// now create a default texture view
	textureView, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()

		return nil, err
	}

	return &Texture{
		texture:     texture,
		textureView: textureView,
		format:      desc.Format,
		width:       desc.Size.Width,
		height:      desc.Size.Height,
		mipLevels:   desc.MipLevelCount,
		label:       desc.Label,
	}, nil
}

func newSampledTexture(ctx *Context, label string, format wgpu.TextureFormat, width, height, mipLevels uint32) (*Texture, error) {
	return NewTextureFromDesc(ctx, &wgpu.TextureDescriptor{
		Label:         label,
		Format:        format,
		SampleCount:   1,
		MipLevelCount: mipLevels,
		Dimension:     wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Usage: wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
}

// NewTextureFromImage uploads src as an RGBA8 texture through queue.
func NewTextureFromImage(ctx *Context, queue *wgpu.Queue, label string, src image.Image) (*Texture, error) {
	iw, ih := src.Bounds().Dx(), src.Bounds().Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, iw, ih))

	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	t, err := newSampledTexture(ctx, label, wgpu.TextureFormatRGBA8UnormSrgb, uint32(iw), uint32(ih), 1)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	t.writeLevel(queue, 0, rgba.Pix, uint32(rgba.Stride), uint32(iw), uint32(ih))

	return t, nil
}

func (t *Texture) writeLevel(queue *wgpu.Queue, mipLevel uint32, pixels []byte, bytesPerRow, width, height uint32) {
	// rows of compressed formats are rows of 4x4 blocks
	rows := height
	if blockSize(t.format) > 1 {
		rows = height / 4
	}

	size := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}

	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: mipLevel,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: rows,
		},
		&size,
	)
}

func blockSize(format wgpu.TextureFormat) uint32 {
	switch format {
	case wgpu.TextureFormatBC1RGBAUnorm, wgpu.TextureFormatBC1RGBAUnormSrgb,
		wgpu.TextureFormatBC2RGBAUnorm, wgpu.TextureFormatBC2RGBAUnormSrgb,
		wgpu.TextureFormatBC3RGBAUnorm, wgpu.TextureFormatBC3RGBAUnormSrgb:
		return 4
	default:
		return 1
	}
}

func (t *Texture) View() *wgpu.TextureView {
	return t.textureView
}

func (t *Texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

func (t *Texture) MipLevels() uint32 {
	return t.mipLevels
}

func (t *Texture) Label() string {
	return t.label
}

func (t *Texture) ToWGPUTexture() *wgpu.Texture {
	return t.texture
}

// Release releases the view and the texture. Textures handed out by an
// fx.Factory are reference counted and must be released through their
// fx.Shared handle instead.
func (t *Texture) Release() {
	t.textureView.Release()
	t.texture.Release()
}

// TextureLoader implements fx.TextureLoader for devices created by New.
// The zero value reads files from disk.
type TextureLoader struct {
	// ReadFile reads texture files. Defaults to os.ReadFile.
	ReadFile fx.FileReader
}

var _ fx.TextureLoader = TextureLoader{}

func (l TextureLoader) read(path string) ([]byte, error) {
	if l.ReadFile != nil {
		return l.ReadFile(path)
	}

	return os.ReadFile(path)
}

// LoadCompressed loads a DDS file and uploads all of its mip levels
// without conversion.
func (l TextureLoader) LoadCompressed(dev fx.Device, path string) (fx.Texture, error) {
	ctx, err := contextOf(dev)
	if err != nil {
		return nil, err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".dds" {
		return nil, fmt.Errorf("load %q: %s containers are not supported", path, ext)
	}

	buf, err := l.read(path)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}

	img, err := parseDDS(buf)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	format := wgpuFormatOf(img.format, img.srgb)

	t, err := newSampledTexture(ctx, path, format, img.width, img.height, uint32(len(img.levels)))
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	for idx, level := range img.levels {
		t.writeLevel(ctx.Queue, uint32(idx), level.data, level.bytesPerRow, level.width, level.height)
	}

	return t, nil
}

// LoadImage decodes a png, jpeg, gif, bmp, tiff or webp file and uploads it
// as RGBA8. rc may be a *wgpu.Queue to upload through; the device queue is
// used otherwise.
func (l TextureLoader) LoadImage(dev fx.Device, rc fx.RenderContext, path string) (fx.Texture, error) {
	ctx, err := contextOf(dev)
	if err != nil {
		return nil, err
	}

	queue := ctx.Queue
	if rc != nil {
		q, ok := rc.(*wgpu.Queue)
		if !ok {
			return nil, fmt.Errorf("render context must be a *wgpu.Queue, got %T", rc)
		}

		queue = q
	}

	buf, err := l.read(path)
	if err != nil {
		return nil, fmt.Errorf("read texture: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}

	return NewTextureFromImage(ctx, queue, path, src)
}

func contextOf(dev fx.Device) (*Context, error) {
	ctx, ok := dev.(*Context)
	if !ok || ctx.Device == nil {
		return nil, fmt.Errorf("device %T is not an open pulse context", dev)
	}

	return ctx, nil
}

func wgpuFormatOf(format ddsFormat, srgb bool) wgpu.TextureFormat {
	switch format {
	case ddsFormatBC1:
		if srgb {
			return wgpu.TextureFormatBC1RGBAUnormSrgb
		}
		return wgpu.TextureFormatBC1RGBAUnorm

	case ddsFormatBC2:
		if srgb {
			return wgpu.TextureFormatBC2RGBAUnormSrgb
		}
		return wgpu.TextureFormatBC2RGBAUnorm

	case ddsFormatBC3:
		if srgb {
			return wgpu.TextureFormatBC3RGBAUnormSrgb
		}
		return wgpu.TextureFormatBC3RGBAUnorm

	case ddsFormatBGRA8:
		if srgb {
			return wgpu.TextureFormatBGRA8UnormSrgb
		}
		return wgpu.TextureFormatBGRA8Unorm

	default:
		if srgb {
			return wgpu.TextureFormatRGBA8UnormSrgb
		}
		return wgpu.TextureFormatRGBA8Unorm
	}
}
