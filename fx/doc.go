// Package fx turns declarative material descriptions into effects bound to a
// graphics device.
//
// A Factory resolves a material into an Effect: it picks the shader variant
// from the material's shader name, loads the textures and pixel shader it
// references and configures the effect parameters. Textures, pixel shaders
// and named effects are cached per device, so every Factory created for the
// same Device shares a single set of caches.
//
// The caches are de-duplication caches, not LRUs. An entry lives until
// ReleaseCache is called. Concurrent misses for the same key may each load
// the resource; the first insert wins and later inserts are dropped. Set
// Options.SingleFlight to collapse concurrent loads of the same key into one.
//
// Loading is delegated to the Device and TextureLoader collaborators. The
// pulse package provides WebGPU implementations of both.
//
//	dev, err := pulse.New(pulse.ContextOptions{})
//	if err != nil {
//		return err
//	}
//	defer dev.Release()
//
//	factory := fx.NewFactory(dev, fx.Options{Loader: pulse.TextureLoader{}})
//	defer factory.Close()
//
//	effect, err := factory.CreateDGSLEffect(info, nil)
package fx
