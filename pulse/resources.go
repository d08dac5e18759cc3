package pulse

import (
	"fmt"
	"image"
	"image/color"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/fxfactory/fx"
)

// EffectResources holds the GPU side of an fx.Effect: a uniform buffer with
// the effect constants, one texture view per slot and a sampler.
type EffectResources struct {
	ctx    *Context
	effect *fx.Effect

	constants *wgpu.Buffer
	sampler   *wgpu.Sampler

	// bound to slots without a texture
	white *Texture

	views [fx.MaxTextures]*wgpu.TextureView
}

// NewEffectResources uploads the current parameters of the effect. The
// effect must have been created for ctx.
func NewEffectResources(ctx *Context, effect *fx.Effect) (*EffectResources, error) {
	if effect.Device() != fx.Device(ctx) {
		return nil, fmt.Errorf("effect belongs to another device")
	}

	sampler, err := CachedSampler(ctx.Device, LinearSampler)
	if err != nil {
		return nil, err
	}

	constants := effect.Constants()

	buffer, err := ctx.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "EffectConstants",
		Contents: AsByteSlice(&constants),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})

	if err != nil {
		return nil, fmt.Errorf("create constant buffer: %w", err)
	}

	res := &EffectResources{
		ctx:       ctx,
		effect:    effect,
		constants: buffer,
		sampler:   sampler,
	}

	if err := res.bindTextures(); err != nil {
		res.Release()
		return nil, err
	}

	return res, nil
}

func (r *EffectResources) bindTextures() error {
	for slot := range r.views {
		r.views[slot] = nil

		if shared := r.effect.Texture(slot); shared != nil {
			texture, ok := shared.Value().(*Texture)
			if !ok {
				return fmt.Errorf("texture in slot %d is a %T", slot, shared.Value())
			}

			r.views[slot] = texture.View()
			continue
		}

		if r.white == nil {
			white, err := newWhiteTexture(r.ctx)
			if err != nil {
				return err
			}

			r.white = white
		}

		r.views[slot] = r.white.View()
	}

	return nil
}

func newWhiteTexture(ctx *Context) (*Texture, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

	return NewTextureFromImage(ctx, ctx.Queue, "white", img)
}

// Update writes the current effect parameters and texture bindings.
func (r *EffectResources) Update() error {
	constants := r.effect.Constants()

	if err := r.ctx.Queue.WriteBuffer(r.constants, 0, AsByteSlice(&constants)); err != nil {
		return fmt.Errorf("write constant buffer: %w", err)
	}

	return r.bindTextures()
}

// BindGroupEntries returns the entries for a bind group starting at binding
// first: the constants, the sampler and then one view per texture slot.
func (r *EffectResources) BindGroupEntries(first uint32) []wgpu.BindGroupEntry {
	entries := []wgpu.BindGroupEntry{
		{
			Binding: first,
			Buffer:  r.constants,
			Offset:  0,
			Size:    wgpu.WholeSize,
		},
		{
			Binding: first + 1,
			Sampler: r.sampler,
		},
	}

	for slot, view := range r.views {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     first + 2 + uint32(slot),
			TextureView: view,
		})
	}

	return entries
}

// ShaderModule returns the module of the effect's pixel shader, or nil for
// built-in variants.
func (r *EffectResources) ShaderModule() *wgpu.ShaderModule {
	shared := r.effect.PixelShader()
	if shared == nil {
		return nil
	}

	shader, ok := shared.Value().(*PixelShader)
	if !ok {
		return nil
	}

	return shader.Module()
}

// Release frees the buffers owned by the resources. The effect itself is
// not released.
func (r *EffectResources) Release() {
	if r.constants != nil {
		r.constants.Release()
		r.constants = nil
	}

	if r.white != nil {
		r.white.Release()
		r.white = nil
	}

	r.views = [fx.MaxTextures]*wgpu.TextureView{}
}
