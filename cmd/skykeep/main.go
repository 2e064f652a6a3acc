// Command skykeep shows three floating castles in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/skykeep/internal/config"
	"github.com/taigrr/skykeep/internal/host"
	"github.com/taigrr/skykeep/internal/logger"
	"github.com/taigrr/skykeep/internal/session"
	"github.com/taigrr/skykeep/pkg/assets"
	"github.com/taigrr/skykeep/pkg/camera"
	"github.com/taigrr/skykeep/pkg/loader"
	"github.com/taigrr/skykeep/pkg/scene"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

type viewFlags struct {
	overrides config.Overrides
	snapshot  string
	width     int
	height    int
}

func newRootCmd() *cobra.Command {
	var f viewFlags

	root := &cobra.Command{
		Use:   "skykeep",
		Short: "Floating castles in your terminal",
		Long: `Skykeep renders a row of floating castles with a software rasterizer.

Drag to orbit, scroll to zoom, click a castle to give it a quarter turn.
Press q or esc to quit.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd.Context(), f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.overrides.ConfigPath, "config", "c", "", "config file (default ./skykeep.yaml or the user config dir)")
	pf.BoolVar(&f.overrides.Debug, "debug", false, "log at debug level")
	pf.StringVar(&f.overrides.LogFile, "log-file", "", "write logs to this file")
	pf.StringVarP(&f.overrides.Manifest, "manifest", "m", "", "castle manifest (default embedded)")

	fl := root.Flags()
	fl.BoolVar(&f.overrides.NoAuth, "no-auth", false, "skip the session check")
	fl.IntVar(&f.overrides.FPS, "fps", 0, "target frames per second")
	fl.StringVar(&f.snapshot, "snapshot", "", "render one frame to this PNG and exit")
	fl.IntVar(&f.width, "width", 160, "snapshot width in pixels")
	fl.IntVar(&f.height, "height", 96, "snapshot height in pixels")

	root.AddCommand(newManifestCmd(&f.overrides))
	return root
}

func runView(ctx context.Context, f viewFlags) error {
	cfg, err := config.Load(f.overrides)
	if err != nil {
		return err
	}

	// The terminal surface owns stdout, so console logs only go out headless.
	var console io.Writer
	if f.snapshot != "" {
		console = os.Stderr
	}
	log, err := newLogger(cfg, console)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := checkSession(ctx, cfg, log); err != nil {
		return err
	}

	ml := newModelLoader(cfg, log)
	open := manifestOpener(cfg)
	load := func(ctx context.Context) []*scene.Group {
		return ml.LoadManifest(ctx, open)
	}

	bg, err := cfg.Render.BackgroundColor()
	if err != nil {
		return err
	}
	opts := host.Options{FPS: cfg.Render.FPS, Background: bg, Backface: cfg.Render.Backface}
	ctrl := camera.New(cameraOptions(cfg), log)

	if f.snapshot != "" {
		h := host.New(&host.Snapshot{Path: f.snapshot, Width: f.width, Height: f.height}, ctrl, load, opts, log)
		defer h.Close()
		if err := h.RenderOnce(ctx, 0); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		log.Info("snapshot written", zap.String("path", f.snapshot))
		return nil
	}

	term, err := host.OpenTerminal(log)
	if err != nil {
		return err
	}
	return host.New(term, ctrl, load, opts, log).Run(ctx)
}

func newLogger(cfg *config.Config, console io.Writer) (*zap.Logger, error) {
	return logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		File:    logger.DefaultFileConfig(cfg.Logging.LogFile),
		Console: console,
		Mute:    cfg.Logging.Mute,
	})
}

func checkSession(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Session.Skip {
		log.Info("session check skipped")
		return nil
	}
	provider, err := session.NewStatic(cfg.Session.Token)
	if err != nil {
		return fmt.Errorf("session token: %w", err)
	}
	s, err := session.NewGate(provider, log).Check(ctx)
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired):
		return fmt.Errorf("%w: sign in and set %s, or pass --no-auth", err, config.TokenEnv)
	case err != nil:
		return err
	}
	log.Info("signed in", zap.String("user", s.UserID), zap.Time("expires", s.ExpiresAt))
	return nil
}

func newModelLoader(cfg *config.Config, log *zap.Logger) *loader.ModelLoader {
	baseDir := cfg.Assets.BaseDir
	// Relative handles in a manifest file resolve next to it unless configured.
	if cfg.Assets.Manifest != "" && (baseDir == "" || baseDir == ".") {
		baseDir = filepath.Dir(cfg.Assets.Manifest)
	}
	resolver := assets.NewResolver(baseDir, cfg.Assets.HTTPTimeout)
	tl := loader.NewTextureLoader(resolver, cfg.Render.MaxTextureSize, log)
	return loader.NewModelLoader(resolver, tl, log)
}

func manifestOpener(cfg *config.Config) func() (*assets.Manifest, error) {
	if cfg.Assets.Manifest == "" {
		return assets.Embedded
	}
	return func() (*assets.Manifest, error) {
		return assets.LoadFile(cfg.Assets.Manifest)
	}
}

func cameraOptions(cfg *config.Config) camera.Options {
	c := cfg.Camera
	opts := camera.DefaultOptions()
	opts.MinDistance = c.MinDistance
	opts.MaxDistance = c.MaxDistance
	opts.InitialDistance = c.InitialDistance
	opts.PanSensitivity = c.PanSensitivity
	opts.SmoothingFactor = c.SmoothingFactor
	opts.SpringFrequency = c.SpringFrequency
	opts.SpringDamping = c.SpringDamping
	opts.FPS = cfg.Render.FPS
	if c.Smoothing == "spring" {
		opts.Smoothing = camera.SmoothSpring
	}
	return opts
}
