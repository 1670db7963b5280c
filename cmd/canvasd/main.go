// canvasd serves the canvases listed in its config file to browsers over
// WebSocket. Each canvas logs pointer and keyboard events and paints a
// 10x10 square wherever it is clicked.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/luciancaetano/canvasnet"
	"github.com/luciancaetano/canvasnet/canvas"
	"github.com/luciancaetano/canvasnet/internal/config"
	"github.com/luciancaetano/canvasnet/ws"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var addr string

	flagSet := pflag.NewFlagSet("canvasd", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&addr, "addr", "", "listen address, overrides the config file")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := ws.New(ws.WithLogger(ws.NewConfig(cfg.Addr, cfg.RateLimit, ws.AllOrigins(),
		func(t canvasnet.Transport, canvasID string) {
			logger.Info("browser connected", "canvas_id", canvasID, "transport_id", t.ID(), "remote_addr", t.RemoteAddr())
		},
		func(t canvasnet.Transport, canvasID string, voluntary bool) {
			logger.Info("browser disconnected", "canvas_id", canvasID, "transport_id", t.ID(), "voluntary", voluntary)
		},
	), logger))

	canvases := buildCanvases(cfg, logger)
	defer func() {
		for _, c := range canvases {
			c.Shutdown()
		}
	}()

	for _, c := range canvases {
		if err := server.Mount(ctx, c); err != nil {
			return err
		}
		logger.Info("canvas mounted", "canvas_id", c.ID(), "path", "/ws/"+c.ID())
	}

	if err := server.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}

// newLogger returns a text logger on stderr at the configured level.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// buildCanvases creates one canvas per config entry with the demo handlers
// attached.
func buildCanvases(cfg *config.Config, logger *slog.Logger) []*canvas.Canvas {
	canvases := make([]*canvas.Canvas, 0, len(cfg.Canvases))
	for _, cc := range cfg.Canvases {
		c := canvas.New(cc.ID, cc.Width, cc.Height, cc.Alt,
			canvas.WithLogger(logger),
			canvas.WithAttributes(cc.Attributes),
		)
		attachHandlers(c, logger.With("canvas_id", c.ID()))
		canvases = append(canvases, c)
	}
	return canvases
}

func attachHandlers(c *canvas.Canvas, logger *slog.Logger) {
	c.OnMouseDown(func(x, y string) {
		logger.Info("mousedown", "x", x, "y", y)
		if err := c.FillRect(x, y, 10, 10); err != nil {
			logger.Warn("drawing failed", "error", err)
		}
	})
	c.OnKeyDown(func(keyCode string) {
		logger.Info("keydown", "key_code", keyCode)
	})
	c.OnResponse(func(value string) {
		logger.Debug("response", "value", value)
	})
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `canvasd serves remote HTML canvases over WebSocket.

Browsers connect to /ws/{canvasID} and fetch the element markup from
/canvas/{canvasID}. Clicking a canvas paints a 10x10 square.

Usage:
  canvasd [flags]

Examples:
  # Serve the default canvas on :8080
  canvasd

  # Serve the canvases listed in a config file
  canvasd --config canvasnet.yaml

  # Same, on another port
  canvasd --config canvasnet.yaml --addr :9000

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
