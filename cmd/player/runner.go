package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Sab1tov/dombyra-master-sub000/internal/client"
	"github.com/Sab1tov/dombyra-master-sub000/internal/localcache"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// Runner holds the dependencies shared by all commands
type Runner struct {
	logger *zap.Logger
	output io.Writer
	client *client.Client
	cache  *localcache.Cache
	userID int
}

// RunnerOpts contains configuration options for creating a Runner
type RunnerOpts struct {
	Logger *zap.Logger
	Output io.Writer
}

// NewRunner creates a new Runner. The logger is replaced in before unless one is given.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		watchCommand, progressCommand, lessonsCommand, tokenCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// before builds the logger, the API client and the local cache from the global flags
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.logger == nil {
		logger, err := newLogger(cmd.Bool("verbose"))
		if err != nil {
			return ctx, fmt.Errorf("failed to initialize logger: %w", err)
		}
		r.logger = logger
	}

	r.userID = int(cmd.Int("user-id"))
	r.client = client.New(client.Config{
		BaseURL: cmd.String("api-url"),
		Token:   cmd.String("token"),
	}, r.logger)

	if path := cmd.String("cache"); path != "" {
		cache, err := localcache.Open(path)
		if err != nil {
			r.logger.Warn("Local progress cache unavailable", zap.String("path", path), zap.Error(err))
		} else {
			r.cache = cache
		}
	}

	return ctx, nil
}

func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.logger.Warn("Failed to close local progress cache", zap.Error(err))
		}
	}
	if r.logger != nil {
		_ = r.logger.Sync()
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format+"\n", args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
