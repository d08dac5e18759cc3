package fx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// deviceState holds the caches shared by every Factory of one device.
type deviceState struct {
	device Device
	loader TextureLoader
	read   FileReader
	logger *slog.Logger

	// guards the three caches
	mu sync.RWMutex

	effects  *ResourceCache[string, *Effect]
	textures *ResourceCache[string, *Shared[Texture]]
	shaders  *ResourceCache[string, *Shared[PixelShader]]

	// serializes uploads through a caller supplied RenderContext
	uploadMu sync.Mutex

	sharing atomic.Bool

	// nil unless Options.SingleFlight is set
	flights *singleflight.Group
}

func newDeviceState(dev Device, opts Options) *deviceState {
	st := &deviceState{
		device: dev,
		loader: opts.Loader,
		read:   opts.ReadFile,
		logger: opts.Logger,
	}

	if st.read == nil {
		st.read = os.ReadFile
	}

	if st.logger == nil {
		st.logger = Logger()
	}

	if opts.SingleFlight {
		st.flights = &singleflight.Group{}
	}

	st.effects = newSharedLockCache(&st.mu, releaseEffect)
	st.textures = newSharedLockCache(&st.mu, releaseShared[Texture])
	st.shaders = newSharedLockCache(&st.mu, releaseShared[PixelShader])

	st.sharing.Store(true)

	return st
}

func releaseShared[T Releaser](_ string, value *Shared[T]) {
	value.Release()
}

func releaseEffect(_ string, effect *Effect) {
	effect.Release()
}

func (st *deviceState) createEffect(info *EffectInfo, ctx RenderContext) (*Effect, error) {
	return st.sharedEffect(info.Name, func() (*Effect, error) {
		effect := NewEffect(st.device, nil)

		effect.EnableDefaultLighting()
		effect.SetLightingEnabled(true)

		effect.SetAmbientColor(info.AmbientColor)
		effect.SetDiffuseColor(info.DiffuseColor)
		effect.SetAlpha(info.Alpha)

		if nonZero(info.SpecularColor) {
			effect.SetSpecularColor(info.SpecularColor)
			effect.SetSpecularPower(info.SpecularPower)
		}

		if nonZero(info.EmissiveColor) {
			effect.SetEmissiveColor(info.EmissiveColor)
		}

		if info.Texture != "" {
			texture, err := st.createTexture(info.Texture, ctx)
			if err != nil {
				effect.Release()
				return nil, err
			}

			effect.SetTexture(0, texture)
			effect.SetTextureEnabled(true)
		}

		return effect, nil
	})
}

func (st *deviceState) createDGSLEffect(info *DGSLEffectInfo, ctx RenderContext) (*Effect, error) {
	return st.sharedEffect(info.Name, func() (*Effect, error) {
		variant := ParseShaderVariant(info.PixelShader)

		var shader *Shared[PixelShader]

		if path := variant.ShaderPath(st.device.FeatureLevel()); path != "" {
			if path != variant.Shader {
				st.logger.Info(
					"Device below feature level 10_0, using fallback shader",
					slog.String("shader", variant.Shader),
					slog.String("fallback", path),
				)
			}

			var err error
			shader, err = st.createPixelShader(path)
			if err != nil {
				return nil, err
			}
		}

		effect := NewEffect(st.device, shader)

		if variant.Lighting() {
			effect.EnableDefaultLighting()
			effect.SetLightingEnabled(true)
		}

		effect.SetAmbientColor(info.AmbientColor)
		effect.SetDiffuseColor(info.DiffuseColor)
		effect.SetAlpha(info.Alpha)

		if variant.AllowSpecular() && nonZero(info.SpecularColor) {
			effect.SetSpecularColor(info.SpecularColor)
			effect.SetSpecularPower(info.SpecularPower)
		} else {
			effect.DisableSpecular()
		}

		if nonZero(info.EmissiveColor) {
			effect.SetEmissiveColor(info.EmissiveColor)
		}

		paths := append([]string{info.Texture}, info.Textures[:]...)
		for slot, path := range paths {
			if path == "" {
				continue
			}

			texture, err := st.createTexture(path, ctx)
			if err != nil {
				effect.Release()
				return nil, err
			}

			effect.SetTexture(slot, texture)
			effect.SetTextureEnabled(true)
		}

		return effect, nil
	})
}

// sharedEffect returns the cached effect for name or builds a new one.
// Effects without a name are never cached. The caller owns one reference
// to the returned effect.
func (st *deviceState) sharedEffect(name string, build func() (*Effect, error)) (*Effect, error) {
	sharing := st.sharing.Load() && name != ""

	var found bool
	if sharing {
		var effect *Effect
		if effect, found = st.effects.FindWith(name, (*Effect).retain); found {
			return effect, nil
		}
	}

	if sharing && st.flights != nil {
		_, err, _ := st.flights.Do("effect:"+name, func() (any, error) {
			if _, ok := st.effects.Find(name); ok {
				return nil, nil
			}

			effect, err := build()
			if err != nil {
				return nil, err
			}

			// the cache takes over the reference created by build
			if _, inserted := st.effects.Insert(name, effect); !inserted {
				effect.Release()
			}

			return nil, nil
		})

		if err != nil {
			return nil, err
		}

		if effect, ok := st.effects.FindWith(name, (*Effect).retain); ok {
			return effect, nil
		}

		// the cache was cleared in between, fall through to a private build
	}

	effect, err := build()
	if err != nil {
		return nil, err
	}

	if sharing && !found {
		effect.retain()

		if _, inserted := st.effects.Insert(name, effect); !inserted {
			effect.Release()
			st.logger.Warn("Concurrent create of effect won the race", slog.String("name", name))
		}
	}

	return effect, nil
}

// createTexture returns a reference to the texture at path owned by the
// caller.
func (st *deviceState) createTexture(path string, ctx RenderContext) (*Shared[Texture], error) {
	if path == "" {
		return nil, newResourceError("create texture", path, ErrInvalidArgument, errors.New("empty path"))
	}

	if st.loader == nil {
		return nil, newResourceError("create texture", path, ErrInvalidArgument, errors.New("no texture loader configured"))
	}

	return sharedResource(st, st.textures, "texture:", path, func() (*Shared[Texture], error) {
		texture, err := st.loadTexture(path, ctx)
		if err != nil {
			return nil, newResourceError("create texture", path, ErrLoader, err)
		}

		return NewShared(texture), nil
	})
}

func (st *deviceState) loadTexture(path string, ctx RenderContext) (Texture, error) {
	st.logger.Debug("Loading texture", slog.String("path", path))

	switch {
	case IsCompressedTexture(path):
		return st.loader.LoadCompressed(st.device, path)

	case ctx != nil:
		// a render context must not be used by two goroutines at once
		st.uploadMu.Lock()
		defer st.uploadMu.Unlock()

		return st.loader.LoadImage(st.device, ctx, path)

	default:
		return st.loader.LoadImage(st.device, nil, path)
	}
}

// createPixelShader returns a reference to the shader at path owned by the
// caller.
func (st *deviceState) createPixelShader(path string) (*Shared[PixelShader], error) {
	if path == "" {
		return nil, newResourceError("create pixel shader", path, ErrInvalidArgument, errors.New("empty path"))
	}

	return sharedResource(st, st.shaders, "shader:", path, func() (*Shared[PixelShader], error) {
		st.logger.Debug("Loading pixel shader", slog.String("path", path))

		code, err := st.read(path)
		if err != nil {
			return nil, newResourceError("read shader", path, ErrIO, err)
		}

		if len(code) == 0 {
			return nil, newResourceError("read shader", path, ErrIO, errors.New("empty file"))
		}

		shader, err := st.device.CreatePixelShader(path, code)
		if err != nil {
			return nil, newResourceError("create pixel shader", path, ErrDevice, err)
		}

		return NewShared(shader), nil
	})
}

// sharedResource implements the lookup, load and insert cycle shared by
// textures and pixel shaders. The returned reference belongs to the caller.
func sharedResource[T Releaser](
	st *deviceState,
	cache *ResourceCache[string, *Shared[T]],
	kind, name string,
	load func() (*Shared[T], error),
) (*Shared[T], error) {
	sharing := st.sharing.Load()

	var found bool
	if sharing {
		var value *Shared[T]
		if value, found = cache.FindWith(name, acquireShared[T]); found {
			return value, nil
		}
	}

	if sharing && st.flights != nil {
		_, err, _ := st.flights.Do(kind+name, func() (any, error) {
			if _, ok := cache.Find(name); ok {
				return nil, nil
			}

			value, err := load()
			if err != nil {
				return nil, err
			}

			// the cache takes over the reference created by load
			if _, inserted := cache.Insert(name, value); !inserted {
				value.Release()
			}

			return nil, nil
		})

		if err != nil {
			return nil, err
		}

		if value, ok := cache.FindWith(name, acquireShared[T]); ok {
			return value, nil
		}

		// the cache was cleared in between, fall through to a private load
	}

	value, err := load()
	if err != nil {
		return nil, err
	}

	if sharing && !found {
		if _, inserted := cache.Insert(name, value.Acquire()); !inserted {
			value.Release()
			st.logger.Warn("Concurrent load won the race", slog.String("name", kind+name))
		}
	}

	return value, nil
}

// acquireShared runs under the cache lock, where the cache still holds its
// reference.
func acquireShared[T Releaser](value *Shared[T]) {
	value.Acquire()
}

func (st *deviceState) releaseCache() {
	st.mu.Lock()
	evictEffects := st.effects.clearLocked()
	evictTextures := st.textures.clearLocked()
	evictShaders := st.shaders.clearLocked()
	st.mu.Unlock()

	evictEffects()
	evictTextures()
	evictShaders()
}

func (st *deviceState) stats() Stats {
	return Stats{
		Effects:  st.effects.Stats(),
		Textures: st.textures.Stats(),
		Shaders:  st.shaders.Stats(),
	}
}

// Stats reports the counters of a device's caches.
type Stats struct {
	Effects  CacheStats
	Textures CacheStats
	Shaders  CacheStats
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"effects %d (%d hits), textures %d (%d hits), shaders %d (%d hits)",
		s.Effects.Entries, s.Effects.Hits,
		s.Textures.Entries, s.Textures.Hits,
		s.Shaders.Entries, s.Shaders.Hits,
	)
}
