package pulse

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/fxfactory/fx"
)

var forceFallbackAdapter = os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1"

func init() {
	switch strings.ToUpper(os.Getenv("WGPU_LOG_LEVEL")) {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	}
}

type ContextOptions struct {
	// Label of the device
	Label string

	// FeatureLevel overrides the level derived from the adapter backend.
	FeatureLevel *fx.FeatureLevel

	// RequiredFeatures are requested when creating the device, e.g.
	// wgpu.FeatureNameTextureCompressionBC to load BC compressed DDS files.
	RequiredFeatures []wgpu.FeatureName
}

// Context encapsulates a headless webgpu device and its queue. It implements
// fx.Device, so a *Context can be passed to fx.NewFactory directly.
type Context struct {
	*wgpu.Device
	*wgpu.Queue
	Adapter *wgpu.Adapter

	level fx.FeatureLevel
}

var _ fx.Device = (*Context)(nil)

// New creates a headless context on the default adapter.
func New(opts ContextOptions) (st *Context, err error) {
	defer func() {
		if err != nil && st != nil {
			st.Release()
			st = nil
		}
	}()

	st = &Context{}

	// create the webgpu instance
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	// no surface, we never present anything
	st.Adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})

	if err != nil {
		return st, fmt.Errorf("request adapter: %w", err)
	}

	st.Device, err = st.Adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            opts.Label,
		RequiredFeatures: opts.RequiredFeatures,
	})

	if err != nil {
		return st, fmt.Errorf("request device: %w", err)
	}

	st.Queue = st.Device.GetQueue()

	info := st.Adapter.GetInfo()
	st.level = FeatureLevelOf(info.BackendType)

	if opts.FeatureLevel != nil {
		st.level = *opts.FeatureLevel
	}

	slog.Info(
		"Created headless device",
		slog.Any("backend", info.BackendType),
		slog.String("adapter", info.Name),
		slog.String("featureLevel", st.level.String()),
	)

	return st, nil
}

// FeatureLevelOf maps a webgpu backend to the feature level of the hardware
// tier it typically runs on.
func FeatureLevelOf(backend wgpu.BackendType) fx.FeatureLevel {
	switch backend {
	case wgpu.BackendTypeOpenGL, wgpu.BackendTypeOpenGLES:
		return fx.FeatureLevel9_3
	case wgpu.BackendTypeD3D11:
		return fx.FeatureLevel11_0
	case wgpu.BackendTypeD3D12, wgpu.BackendTypeVulkan, wgpu.BackendTypeMetal:
		return fx.FeatureLevel12_0
	default:
		return fx.FeatureLevel10_0
	}
}

// FeatureLevel implements fx.Device.
func (c *Context) FeatureLevel() fx.FeatureLevel {
	return c.level
}

// CreatePixelShader implements fx.Device. The code must be WGSL source.
func (c *Context) CreatePixelShader(label string, code []byte) (fx.PixelShader, error) {
	module, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: string(code)},
	})

	if err != nil {
		return nil, fmt.Errorf("create shader module %q: %w", label, err)
	}

	return &PixelShader{module: module, label: label}, nil
}

func (c *Context) Release() {
	purgeSamplers(c.Device)

	if c.Queue != nil {
		c.Queue.Release()
		c.Queue = nil
	}

	if c.Device != nil {
		c.Device.Release()
		c.Device = nil
	}

	if c.Adapter != nil {
		c.Adapter.Release()
		c.Adapter = nil
	}
}

// PixelShader is a shader module created by Context.CreatePixelShader.
type PixelShader struct {
	module *wgpu.ShaderModule
	label  string
}

func (s *PixelShader) Module() *wgpu.ShaderModule {
	return s.module
}

func (s *PixelShader) Label() string {
	return s.label
}

func (s *PixelShader) Release() {
	s.module.Release()
}
