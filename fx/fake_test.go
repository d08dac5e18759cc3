package fx

import (
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeTexture struct {
	path     string
	released atomic.Int32
}

func (t *fakeTexture) Release() { t.released.Add(1) }

type fakeShader struct {
	label    string
	code     []byte
	released atomic.Int32
}

func (s *fakeShader) Release() { s.released.Add(1) }

type fakeDevice struct {
	level     FeatureLevel
	rejectAll bool

	mu      sync.Mutex
	shaders []string
}

func (d *fakeDevice) FeatureLevel() FeatureLevel { return d.level }

func (d *fakeDevice) CreatePixelShader(label string, code []byte) (PixelShader, error) {
	if d.rejectAll {
		return nil, errors.New("shader rejected")
	}

	d.mu.Lock()
	d.shaders = append(d.shaders, label)
	d.mu.Unlock()

	return &fakeShader{label: label, code: code}, nil
}

func (d *fakeDevice) createdShaders() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.shaders...)
}

type loadCall struct {
	path       string
	compressed bool
	ctx        RenderContext
}

type fakeLoader struct {
	fail map[string]error

	mu    sync.Mutex
	calls []loadCall
}

func (l *fakeLoader) load(call loadCall) (Texture, error) {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()

	if err := l.fail[call.path]; err != nil {
		return nil, err
	}

	return &fakeTexture{path: call.path}, nil
}

func (l *fakeLoader) LoadCompressed(_ Device, path string) (Texture, error) {
	return l.load(loadCall{path: path, compressed: true})
}

func (l *fakeLoader) LoadImage(_ Device, ctx RenderContext, path string) (Texture, error) {
	return l.load(loadCall{path: path, ctx: ctx})
}

func (l *fakeLoader) loads(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for _, call := range l.calls {
		if call.path == path {
			n++
		}
	}

	return n
}

func (l *fakeLoader) lastCall() loadCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[len(l.calls)-1]
}

// fakeFiles serves shader blobs from memory.
type fakeFiles map[string][]byte

func (f fakeFiles) read(path string) ([]byte, error) {
	code, ok := f[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	return code, nil
}

type fixture struct {
	device  *fakeDevice
	loader  *fakeLoader
	files   fakeFiles
	factory *Factory
}

func newFixture(t *testing.T, level FeatureLevel) *fixture {
	t.Helper()

	fix := &fixture{
		device: &fakeDevice{level: level},
		loader: &fakeLoader{fail: map[string]error{}},
		files: fakeFiles{
			"materials_custom.cso": []byte("custom dgsl shader"),
			"custom.cso":           []byte("fallback shader"),
		},
	}

	fix.factory = NewFactory(fix.device, Options{
		Loader:   fix.loader,
		ReadFile: fix.files.read,
	})

	t.Cleanup(fix.factory.Close)

	return fix
}
