package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/opd-ai/clipforge"
	"github.com/opd-ai/clipforge/config"
	"github.com/opd-ai/clipforge/factory"
	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/media/video"
	"github.com/sirupsen/logrus"
)

// CLIConfig holds the command-line options.
type CLIConfig struct {
	input      string
	filter     string
	outDir     string
	configPath string
	simulate   bool
	real       bool
	strict     bool
	logLevel   string
}

func parseCLIFlags(args []string) (*CLIConfig, error) {
	cli := &CLIConfig{}
	fs := flag.NewFlagSet("clipforge-process", flag.ContinueOnError)

	fs.StringVar(&cli.input, "input", "", "Source video file")
	fs.StringVar(&cli.filter, "filter", "grayscale", "Filter: "+filterNames())
	fs.StringVar(&cli.outDir, "out", ".", "Output directory")
	fs.StringVar(&cli.configPath, "config", "", "Optional YAML configuration (processing and media sections)")
	fs.BoolVar(&cli.simulate, "simulate", false, "Use the synthetic media backend")
	fs.BoolVar(&cli.real, "real", false, "Use the ffmpeg backend even if configuration or environment selects simulation")
	fs.BoolVar(&cli.strict, "strict", false, "Fail the video on a mid-stream decode error")
	fs.StringVar(&cli.logLevel, "log-level", "warn", "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cli.input == "" {
		return nil, errors.New("-input is required")
	}
	if cli.simulate && cli.real {
		return nil, errors.New("-simulate and -real are mutually exclusive")
	}
	return cli, nil
}

func filterNames() string {
	names := make([]string, 0, len(video.FilterKinds()))
	for _, k := range video.FilterKinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

func main() {
	cli, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	result, err := run(cli, os.Stdout)
	if err != nil || result == nil || !result.Video.OK {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(cli *CLIConfig, out io.Writer) (*clipforge.Result, error) {
	cfg := config.Default()
	if cli.configPath != "" {
		var err error
		if cfg, err = config.Load(cli.configPath); err != nil {
			return nil, err
		}
	}
	cfg.Logging.Level = cli.logLevel
	if cli.strict {
		cfg.Processing.StrictDecode = true
	}

	backendCfg := cfg.BackendConfig()
	factory.ApplyEnvironmentOverrides(backendCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ConfigureLogging(cfg.Logging); err != nil {
		return nil, err
	}

	backend, err := newBackend(cli, backendCfg)
	if err != nil {
		return nil, err
	}

	job := clipforge.Job{
		ID:            strings.TrimSuffix(filepath.Base(cli.input), filepath.Ext(cli.input)),
		SourcePath:    cli.input,
		Filter:        video.ParseFilterKind(cli.filter),
		VideoPath:     filepath.Join(cli.outDir, "video."+cfg.Processing.Container),
		ThumbnailPath: filepath.Join(cli.outDir, "thumbnail.jpg"),
		PreviewPath:   filepath.Join(cli.outDir, "preview.gif"),
	}
	if err := os.MkdirAll(cli.outDir, 0o755); err != nil {
		return nil, err
	}

	result, procErr := clipforge.NewPipeline(backend, cfg.PipelineOptions()).Process(job)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return result, err
	}
	return result, procErr
}

// newBackend applies the command-line backend switch on top of the
// configured and environment-selected mode.
func newBackend(cli *CLIConfig, backendCfg *interfaces.MediaBackendConfig) (interfaces.IMediaBackend, error) {
	f := factory.NewMediaBackendFactory()
	if err := f.UpdateConfig(backendCfg); err != nil {
		return nil, fmt.Errorf("invalid media configuration: %w", err)
	}
	switch {
	case cli.simulate:
		f.SwitchToSimulation()
	case cli.real:
		f.SwitchToReal()
	}

	logrus.WithFields(logrus.Fields{
		"function":   "newBackend",
		"simulation": f.IsUsingSimulation(),
	}).Debug("Selected media backend")

	return f.CreateMediaBackend()
}
