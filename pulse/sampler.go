package pulse

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	lru "github.com/hashicorp/golang-lru/v2"
)

type samplerKey struct {
	device *wgpu.Device
	desc   wgpu.SamplerDescriptor
}

var samplerCache, _ = lru.NewWithEvict[samplerKey, *wgpu.Sampler](16, samplerCacheOnEvict)

func samplerCacheOnEvict(key samplerKey, value *wgpu.Sampler) {
	value.Release()
}

// LinearSampler filters linearly and repeats in both directions.
var LinearSampler = wgpu.SamplerDescriptor{
	Label:         "linear",
	AddressModeU:  wgpu.AddressModeRepeat,
	AddressModeV:  wgpu.AddressModeRepeat,
	AddressModeW:  wgpu.AddressModeRepeat,
	MagFilter:     wgpu.FilterModeLinear,
	MinFilter:     wgpu.FilterModeLinear,
	MipmapFilter:  wgpu.MipmapFilterModeLinear,
	LodMaxClamp:   32,
	MaxAnisotropy: 1,
}

// CachedSampler returns a sampler matching your description. The sampler may be cached,
// you  must not call wgpu.Sampler.Release() on it.
func CachedSampler(dev *wgpu.Device, desc wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	key := samplerKey{device: dev, desc: desc}

	cachedSampler, ok := samplerCache.Get(key)
	if ok {
		return cachedSampler, nil
	}

	// create a new sampler
	sampler, err := dev.CreateSampler(&desc)
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	samplerCache.Add(key, sampler)

	return sampler, nil
}

// purgeSamplers releases all cached samplers of the given device.
func purgeSamplers(dev *wgpu.Device) {
	if dev == nil {
		return
	}

	for _, key := range samplerCache.Keys() {
		if key.device == dev {
			samplerCache.Remove(key)
		}
	}
}
