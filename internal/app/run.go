package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/driver"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/runconfig"
	"github.com/vk/animgraph/internal/sink"
)

// Run loads the run file and plays every character in it to completion.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "run_file", a.config.RunPath)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer func() {
			err = errors.Join(err, a.closeHealthcheckServer(ctx))
		}()
	}

	file, err := runconfig.Load(a.config.RunPath)
	if err != nil {
		return fmt.Errorf("failed to load run file: %w", err)
	}
	a.logger.Debug("Run file loaded.", "path", a.config.RunPath, "characters", len(file.Characters))

	maxDepth := file.Run.MaxDepth
	if a.config.MaxDepth > 0 {
		maxDepth = a.config.MaxDepth
	}
	eng := engine.New(
		engine.WithLogger(a.logger),
		engine.WithResolver(a.library),
		engine.WithMaxDepth(maxDepth),
	)

	out, err := a.openSink(ctx, file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close sinks: %w", cerr))
		}
	}()

	drivers := make([]*driver.Driver, 0, len(file.Characters))
	for _, c := range file.Characters {
		d, err := a.newDriver(eng, out, file, c)
		if err != nil {
			return err
		}
		drivers = append(drivers, d)
	}

	a.logger.Info("Starting playback.", "characters", len(drivers), "fps", file.Run.FPS, "frames", file.Run.Frames)
	if err := driver.RunAll(ctx, drivers...); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	a.logger.Info("Playback finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) newDriver(eng *engine.Engine, out sink.Sink, file *runconfig.File, c runconfig.CharacterBlock) (*driver.Driver, error) {
	g, err := a.library.Graph(c.Graph)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", c.Name, err)
	}
	cfg, err := file.DriverConfig(c, g)
	if err != nil {
		return nil, err
	}
	if a.config.Frames > 0 {
		cfg.Frames = a.config.Frames
	}
	d, err := driver.New(eng, engine.NewInstance(g), out, cfg)
	if err != nil {
		return nil, fmt.Errorf("character %q: %w", c.Name, err)
	}
	a.logger.Debug("Character ready.", "character", c.Name, "graph", c.Graph, "events", len(cfg.Events), "changes", len(cfg.Changes))
	return d, nil
}

// openSink fans frames out to the log, the run file's stream and any sinks
// added with AddSink.
func (a *App) openSink(ctx context.Context, file *runconfig.File) (sink.Sink, error) {
	out := sink.Multi{sink.Log{Level: slog.LevelInfo}}
	if s := file.Stream; s != nil {
		timeout, err := s.ConnectTimeout()
		if err != nil {
			return nil, err
		}
		stream, err := sink.DialSocketIO(ctx, sink.SocketIOConfig{
			URL:                s.URL,
			Namespace:          s.Namespace,
			Event:              s.Event,
			InsecureSkipVerify: s.InsecureSkipVerify,
			ConnectTimeout:     timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open stream: %w", err)
		}
		out = append(out, stream)
	}
	return append(out, a.sinks...), nil
}
