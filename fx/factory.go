package fx

import (
	"fmt"
	"log/slog"
)

// Options configure the shared state of a device. They take effect when
// the first Factory for a device is created; later factories for the same
// device share that state and their options are ignored.
type Options struct {
	// Loader creates textures. Texture requests fail with
	// ErrInvalidArgument if it is nil.
	Loader TextureLoader

	// ReadFile reads compiled shaders. Defaults to os.ReadFile.
	ReadFile FileReader

	// SingleFlight collapses concurrent loads of the same texture, shader or
	// named effect into a single load. Without it, racing callers may each
	// load the resource and only the first result is cached.
	SingleFlight bool

	// Logger overrides the package logger for this device.
	Logger *slog.Logger
}

// one deviceState per Device, shared by all factories
var devicePool = NewSharedResourcePool[Device, *deviceState](destroyDeviceState)

func destroyDeviceState(dev Device, st *deviceState) {
	st.logger.Debug("Destroying effect factory state", slog.String("device", deviceName(dev)))
	st.releaseCache()
}

// Factory creates effects for a device. All factories created for the same
// Device share one set of caches.
//
// A Factory must not be copied; use Move to hand it over. After Close or
// Move the factory returns ErrClosed from every operation.
type Factory struct {
	ref *PoolRef[Device, *deviceState]
}

// NewFactory returns a factory for dev. dev is used as a map key and must
// be comparable.
func NewFactory(dev Device, opts Options) *Factory {
	ref := devicePool.DemandCreate(dev, func(dev Device) *deviceState {
		st := newDeviceState(dev, opts)
		st.logger.Debug("Creating effect factory state", slog.String("device", deviceName(dev)))
		return st
	})

	return &Factory{ref: ref}
}

func deviceName(dev Device) string {
	return fmt.Sprintf("%T(%p)", dev, dev)
}

func (f *Factory) state() (*deviceState, error) {
	if f == nil || f.ref == nil {
		return nil, ErrClosed
	}

	return f.ref.Value(), nil
}

// CreateEffect returns the effect for a basic material. If sharing is
// enabled and the material has a name, a previously created effect of the
// same name is returned as is. ctx is used for texture uploads and may be
// nil. The caller owns a reference to the effect and must release it.
func (f *Factory) CreateEffect(info EffectInfo, ctx RenderContext) (*Effect, error) {
	st, err := f.state()
	if err != nil {
		return nil, err
	}

	return st.createEffect(&info, ctx)
}

// CreateDGSLEffect returns the effect for a DGSL material. The shader name
// selects the variant, see ParseShaderVariant.
func (f *Factory) CreateDGSLEffect(info DGSLEffectInfo, ctx RenderContext) (*Effect, error) {
	st, err := f.state()
	if err != nil {
		return nil, err
	}

	return st.createDGSLEffect(&info, ctx)
}

// CreateTexture returns a texture reference the caller must release.
func (f *Factory) CreateTexture(path string, ctx RenderContext) (*Shared[Texture], error) {
	st, err := f.state()
	if err != nil {
		return nil, err
	}

	return st.createTexture(path, ctx)
}

// CreatePixelShader returns a pixel shader reference the caller must
// release.
func (f *Factory) CreatePixelShader(path string) (*Shared[PixelShader], error) {
	st, err := f.state()
	if err != nil {
		return nil, err
	}

	return st.createPixelShader(path)
}

// ReleaseCache empties the effect, texture and shader caches of the device.
// Objects already handed out stay valid.
func (f *Factory) ReleaseCache() {
	if st, err := f.state(); err == nil {
		st.releaseCache()
	}
}

// SetSharing controls whether named requests are served from and stored in
// the caches. Disabling sharing does not clear the caches. The flag is
// shared by all factories of the device and is meant to be set during
// setup.
func (f *Factory) SetSharing(enabled bool) {
	if st, err := f.state(); err == nil {
		st.sharing.Store(enabled)
	}
}

// Sharing reports whether sharing is enabled.
func (f *Factory) Sharing() bool {
	st, err := f.state()
	return err == nil && st.sharing.Load()
}

// Device returns the device of the factory, nil after Close.
func (f *Factory) Device() Device {
	st, err := f.state()
	if err != nil {
		return nil
	}

	return st.device
}

// Stats returns the cache counters of the device.
func (f *Factory) Stats() Stats {
	st, err := f.state()
	if err != nil {
		return Stats{}
	}

	return st.stats()
}

// Move transfers the factory's state to a new Factory and leaves f closed.
func (f *Factory) Move() *Factory {
	if f == nil {
		return &Factory{}
	}

	moved := &Factory{ref: f.ref}
	f.ref = nil
	return moved
}

// Close releases the factory's reference to the device state. The state
// and its caches are destroyed when the last factory of the device is
// closed.
func (f *Factory) Close() {
	if f != nil && f.ref != nil {
		f.ref.Release()
		f.ref = nil
	}
}
