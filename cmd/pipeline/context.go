package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/events"
	"github.com/nguyentantai21042004/context-flow/internal/extractor"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/internal/processor"
	"github.com/nguyentantai21042004/context-flow/internal/store"
	"github.com/nguyentantai21042004/context-flow/internal/transcriber"
	"github.com/nguyentantai21042004/context-flow/pkg/executor"
)

// commandContext lazily builds the shared runtime for a command invocation.
type commandContext struct {
	flags *globalFlags
	extra []config.Option

	cfg     *config.Config
	log     logger.Logger
	store   store.Store
	closers []io.Closer
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// options turns the global flags into config options. Unset flags leave the
// field to the file, the environment or the default.
func (c *commandContext) options() []config.Option {
	var opts []config.Option
	f := c.flags
	if f.videos != "" {
		opts = append(opts, config.WithVideosDir(f.videos))
	}
	if f.context != "" {
		opts = append(opts, config.WithContextDir(f.context))
	}
	if f.modelSize != "" {
		opts = append(opts, config.WithModelSize(f.modelSize))
	}
	if f.backend != "" {
		opts = append(opts, config.WithBackend(f.backend))
	}
	if f.index != "" {
		opts = append(opts, config.WithIndexBackend(f.index))
	}
	if f.logLevel != "" {
		opts = append(opts, config.WithLogLevel(f.logLevel))
	}
	return append(opts, c.extra...)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if path := strings.TrimSpace(c.flags.config); path != "" {
		cfg, err = config.Load(path, c.options()...)
	} else {
		cfg, err = config.New(c.options()...)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) logger() (logger.Logger, error) {
	if c.log != nil {
		return c.log, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, closer, err := logger.Open(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, closer)
	c.log = log
	return log, nil
}

func (c *commandContext) openStore() (store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := c.logger()
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	c.closers = append(c.closers, st)
	c.store = st
	return st, nil
}

// eventSink writes published events as JSON lines when --events is set.
func (c *commandContext) eventSink(stdout io.Writer) (events.Sink, error) {
	switch c.flags.events {
	case "":
		return nil, nil
	case "-":
		return events.NewJSONLines(stdout), nil
	}
	f, err := os.OpenFile(c.flags.events, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	c.closers = append(c.closers, f)
	return events.NewJSONLines(f), nil
}

// newProcessor wires the processor for a command. Extra sinks may be nil.
func (c *commandContext) newProcessor(stdout io.Writer, extra ...events.Sink) (processor.Processor, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log, err := c.logger()
	if err != nil {
		return nil, err
	}
	st, err := c.openStore()
	if err != nil {
		return nil, err
	}
	sink, err := c.eventSink(stdout)
	if err != nil {
		return nil, err
	}
	var sinks []events.Sink
	for _, s := range append([]events.Sink{sink}, extra...) {
		if s != nil {
			sinks = append(sinks, s)
		}
	}

	exec := executor.New()
	return processor.New(cfg, processor.Deps{
		Extractor: extractor.New(cfg.FFmpeg, exec, log),
		Loader:    transcriber.NewLoader(cfg, exec, log),
		Store:     st,
		Sink:      events.Multi(sinks...),
		Logger:    log,
	}), nil
}

func (c *commandContext) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
