package store

import (
	"github.com/nguyentantai21042004/context-flow/internal/config"
	"github.com/nguyentantai21042004/context-flow/internal/logger"
)

// New opens the store selected by cfg.Index.Backend.
func New(cfg *config.Config, log logger.Logger) (Store, error) {
	dir := newDirStore(cfg.Paths.Context, log)
	if cfg.Index.Backend == config.IndexSQLite {
		return newSQLiteStore(dir, cfg.Index.Path)
	}
	return dir, nil
}
