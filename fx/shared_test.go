package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharedIsNeverRevived(t *testing.T) {
	texture := &fakeTexture{path: "wall.png"}

	shared := NewShared[Texture](texture)
	shared.Release()

	assert.False(t, shared.TryAcquire())
	assert.Panics(t, func() { shared.Acquire() })
	assert.False(t, shared.Alive())
	assert.Zero(t, shared.Refs())
	assert.EqualValues(t, 1, texture.released.Load())
}
