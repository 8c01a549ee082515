package processor

import (
	"time"

	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/events"
	"github.com/nguyentantai21042004/context-flow/internal/extractor"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/internal/store"
	"github.com/nguyentantai21042004/context-flow/internal/transcriber"
)

// Deps are the collaborators a Processor drives. Sink may be nil.
type Deps struct {
	Extractor extractor.Extractor
	Loader    transcriber.Loader
	Store     store.Store
	Sink      events.Sink
	Logger    logger.Logger
}

type implProcessor struct {
	cfg       *config.Config
	extractor extractor.Extractor
	load      transcriber.Loader
	store     store.Store
	sink      events.Sink
	logger    logger.Logger
	gate      *runGate
	now       func() time.Time

	// guarded by gate
	model    transcriber.Transcriber
	progress progress
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps) Processor {
	sink := deps.Sink
	if sink == nil {
		sink = events.Funcs{}
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &implProcessor{
		cfg:       cfg,
		extractor: deps.Extractor,
		load:      deps.Loader,
		store:     deps.Store,
		sink:      sink,
		logger:    log,
		gate:      newRunGate(),
		now:       time.Now,
	}
}
