package exporter

import (
	"github.com/nguyentantai21042004/context-flow/internal/logger"
	"github.com/nguyentantai21042004/context-flow/internal/store"
)

type implExporter struct {
	store     store.Store
	logger    logger.Logger
	overwrite bool
}

// New creates an Exporter over the artifacts in st. Existing documents are
// kept unless overwrite is set.
func New(st store.Store, log logger.Logger, overwrite bool) Exporter {
	return &implExporter{
		store:     st,
		logger:    log,
		overwrite: overwrite,
	}
}
