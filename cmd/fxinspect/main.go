// Command fxinspect resolves every material of a manifest on a headless
// device and prints what the factory made of it.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/fxfactory/fx"
	"github.com/oliverbestmann/fxfactory/manifest"
	"github.com/oliverbestmann/fxfactory/pulse"
	"github.com/pkg/profile"
)

func main() {
	os.Exit(inspectMain())
}

func inspectMain() int {
	var (
		manifestPath = flag.String("manifest", "", "path to the material manifest")
		cpuProfile   = flag.Bool("profile", false, "write a cpu profile to the working directory")
		logFormat    = flag.String("log-format", "", "log format: text or json, overrides the manifest")
		logLevel     = flag.String("log-level", "", "log level: debug, info, warn or error, overrides the manifest")
	)

	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "fxinspect: -manifest is required")
		flag.Usage()
		return 2
	}

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if err := run(*manifestPath, *logFormat, *logLevel, os.Stdout); err != nil {
		slog.Error("Inspection failed", slog.String("err", err.Error()))
		return 1
	}

	return 0
}

func run(path, logFormat, logLevel string, out io.Writer) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	if logFormat != "" {
		m.Logging.Format = logFormat
	}

	if logLevel != "" {
		m.Logging.Level = logLevel
	}

	logger := newLogger(m.Logging, os.Stderr)
	slog.SetDefault(logger)
	fx.SetLogger(logger)

	opts := pulse.ContextOptions{
		Label:        m.Device.Label,
		FeatureLevel: m.Device.FeatureLevelOverride(),
	}

	if m.Device.Compression {
		opts.RequiredFeatures = append(opts.RequiredFeatures, wgpu.FeatureNameTextureCompressionBC)
	}

	dev, err := pulse.New(opts)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}

	defer dev.Release()

	factory := fx.NewFactory(dev, fx.Options{
		Loader:       pulse.TextureLoader{ReadFile: m.Factory.TextureReader()},
		ReadFile:     m.Factory.ShaderReader(),
		SingleFlight: m.Factory.SingleFlight,
	})

	defer factory.Close()

	factory.SetSharing(m.Factory.Sharing)

	for idx := range m.Materials {
		if err := inspect(dev, factory, &m.Materials[idx], out); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out, factory.Stats())

	return nil
}

func inspect(dev *pulse.Context, factory *fx.Factory, mat *manifest.Material, out io.Writer) error {
	var (
		effect  *fx.Effect
		variant fx.ShaderVariant
		err     error
	)

	if mat.IsDGSL() {
		variant = fx.ParseShaderVariant(mat.PixelShader)
		effect, err = factory.CreateDGSLEffect(mat.DGSLEffectInfo(), nil)
	} else {
		effect, err = factory.CreateEffect(mat.EffectInfo(), nil)
	}

	if err != nil {
		return fmt.Errorf("material %q: %w", mat.Name, err)
	}

	defer effect.Release()

	// make sure the effect can actually be bound
	resources, err := pulse.NewEffectResources(dev, effect)
	if err != nil {
		return fmt.Errorf("material %q: %w", mat.Name, err)
	}

	defer resources.Release()

	slog.Debug("Resolved material", slog.String("name", mat.Name), slog.Any("slots", effect.BoundSlots()))

	_, err = fmt.Fprintf(out, "%-24s variant=%-8s lighting=%-5t specular=%-5t texture=%-5t slots=%s\n",
		displayName(mat.Name),
		variant.Kind,
		effect.LightingEnabled(),
		effect.SpecularEnabled(),
		effect.TextureEnabled(),
		formatSlots(effect.BoundSlots()),
	)

	return err
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed)"
	}

	return name
}

func formatSlots(slots []int) string {
	if len(slots) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, fmt.Sprint(slot))
	}

	return strings.Join(parts, ",")
}

func newLogger(cfg manifest.LoggingConfig, output io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
