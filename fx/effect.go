package fx

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Effect is a pixel shader together with the parameters and textures a
// material binds to it. Effects returned by a Factory may be shared between
// callers and must be treated as read-only.
//
// Effects are reference counted. Every caller of a Factory owns one
// reference and drops it with Release; the effect cache holds another one
// while the effect is cached.
type Effect struct {
	mu sync.Mutex

	device Device
	shader *Shared[PixelShader]

	lightingEnabled bool
	defaultLighting bool

	ambient  mgl32.Vec3
	diffuse  mgl32.Vec3
	specular mgl32.Vec3
	emissive mgl32.Vec3

	alpha           float32
	specularPower   float32
	specularEnabled bool

	textureEnabled bool
	textures       [MaxTextures]*Shared[Texture]

	refs int
}

// NewEffect creates an effect for dev. shader may be nil to use the built-in
// shader. The effect takes ownership of the shader reference.
func NewEffect(dev Device, shader *Shared[PixelShader]) *Effect {
	effect := &Effect{
		device:          dev,
		shader:          shader,
		diffuse:         mgl32.Vec3{1, 1, 1},
		alpha:           1,
		specular:        mgl32.Vec3{1, 1, 1},
		specularPower:   16,
		specularEnabled: true,
		refs:            1,
	}

	return registerWithGC(effect, (*Effect).destroy)
}

// registerWithGC calls release once the garbage collector finds value
// unreachable.
func registerWithGC[T any](value *T, release func(*T)) *T {
	if runtime.GOOS == "js" {
		return value
	}

	runtime.SetFinalizer(value, func(value *T) {
		Logger().Debug("Releasing garbage collected value", "type", fmt.Sprintf("%T", value))
		release(value)
	})

	return value
}

// retain adds a reference. The caller must already hold one.
func (e *Effect) retain() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.refs <= 0 {
		panic("fx: retain on a released effect")
	}

	e.refs++
}

// Refs returns the number of live references.
func (e *Effect) Refs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refs
}

// EnableDefaultLighting turns on the standard three-light rig.
func (e *Effect) EnableDefaultLighting() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultLighting = true
}

func (e *Effect) SetLightingEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lightingEnabled = enabled
}

func (e *Effect) SetAmbientColor(color mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ambient = color
}

func (e *Effect) SetDiffuseColor(color mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.diffuse = color
}

func (e *Effect) SetAlpha(alpha float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alpha = alpha
}

// SetSpecularColor sets the specular color and enables specular highlights.
func (e *Effect) SetSpecularColor(color mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.specular = color
	e.specularEnabled = true
}

func (e *Effect) SetSpecularPower(power float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.specularPower = power
}

// DisableSpecular turns specular highlights off.
func (e *Effect) DisableSpecular() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.specular = mgl32.Vec3{}
	e.specularPower = 1
	e.specularEnabled = false
}

func (e *Effect) SetEmissiveColor(color mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emissive = color
}

func (e *Effect) SetTextureEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.textureEnabled = enabled
}

// SetTexture binds texture to slot. The effect takes ownership of the
// reference and releases the texture previously bound to the slot.
func (e *Effect) SetTexture(slot int, texture *Shared[Texture]) {
	if slot < 0 || slot >= MaxTextures {
		panic(fmt.Sprintf("texture slot %d out of range", slot))
	}

	e.mu.Lock()
	previous := e.textures[slot]
	e.textures[slot] = texture
	e.mu.Unlock()

	if previous != nil {
		previous.Release()
	}
}

// Device returns the device the effect was created for.
func (e *Effect) Device() Device {
	return e.device
}

// PixelShader returns the custom pixel shader or nil for built-in shaders.
func (e *Effect) PixelShader() *Shared[PixelShader] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shader
}

func (e *Effect) LightingEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lightingEnabled
}

func (e *Effect) DefaultLighting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultLighting
}

func (e *Effect) AmbientColor() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ambient
}

func (e *Effect) DiffuseColor() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.diffuse
}

func (e *Effect) SpecularColor() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.specular
}

func (e *Effect) EmissiveColor() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emissive
}

func (e *Effect) Alpha() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha
}

func (e *Effect) SpecularPower() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.specularPower
}

func (e *Effect) SpecularEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.specularEnabled
}

func (e *Effect) TextureEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.textureEnabled
}

// Texture returns the texture bound to slot, or nil.
func (e *Effect) Texture(slot int) *Shared[Texture] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.textures[slot]
}

// BoundSlots returns the indices of all slots with a texture.
func (e *Effect) BoundSlots() []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var slots []int
	for slot, texture := range e.textures {
		if texture != nil {
			slots = append(slots, slot)
		}
	}

	return slots
}

// EffectConstants is the effect's parameter block in the layout of a GPU
// uniform buffer: every member is padded to 16 bytes.
type EffectConstants struct {
	Ambient  mgl32.Vec4
	Diffuse  mgl32.Vec4 // w is alpha
	Specular mgl32.Vec4 // w is specular power
	Emissive mgl32.Vec4

	// Flags: x lighting, y specular, z texture, w default lighting.
	Flags mgl32.Vec4
}

// Constants returns the effect parameters in uniform buffer layout.
func (e *Effect) Constants() EffectConstants {
	e.mu.Lock()
	defer e.mu.Unlock()

	flag := func(value bool) float32 {
		if value {
			return 1
		}

		return 0
	}

	return EffectConstants{
		Ambient:  e.ambient.Vec4(0),
		Diffuse:  e.diffuse.Vec4(e.alpha),
		Specular: e.specular.Vec4(e.specularPower),
		Emissive: e.emissive.Vec4(0),
		Flags: mgl32.Vec4{
			flag(e.lightingEnabled),
			flag(e.specularEnabled),
			flag(e.textureEnabled),
			flag(e.defaultLighting),
		},
	}
}

// Release drops one reference. The last reference drops the effect's
// references to its textures and pixel shader. Releasing an effect that is
// already freed is a no-op.
func (e *Effect) Release() {
	e.mu.Lock()
	if e.refs <= 0 {
		e.mu.Unlock()
		return
	}

	e.refs--
	if e.refs > 0 {
		e.mu.Unlock()
		return
	}

	e.mu.Unlock()
	e.destroy()
}

// destroy frees the effect regardless of outstanding references. It runs
// for the last Release and from the finalizer, when no holder is left.
func (e *Effect) destroy() {
	e.mu.Lock()
	e.refs = 0
	textures := e.textures
	e.textures = [MaxTextures]*Shared[Texture]{}
	e.textureEnabled = false
	shader := e.shader
	e.shader = nil
	e.mu.Unlock()

	for _, texture := range textures {
		if texture != nil {
			texture.Release()
		}
	}

	if shader != nil {
		shader.Release()
	}
}
