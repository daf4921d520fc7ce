// Package watch keeps an analytics.Store current by re-running the engine
// when the match history changes or on a schedule.
package watch

import (
	"context"

	"github.com/ramonehamilton/konivrer-insights/internal/storage"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// Source supplies the raw history for one refresh.
type Source interface {
	Load(ctx context.Context) (*models.History, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*models.History, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (*models.History, error) {
	return f(ctx)
}

// FileSource reads a JSON or YAML history document on every refresh.
type FileSource struct {
	Path string
}

// Load reads and decodes the file.
func (s FileSource) Load(ctx context.Context) (*models.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return storage.ReadHistoryFile(s.Path)
}

// DatabaseSource loads the complete stored history.
type DatabaseSource struct {
	Service *storage.Service
}

// Load reads every stored record.
func (s DatabaseSource) Load(ctx context.Context) (*models.History, error) {
	return s.Service.LoadHistory(ctx)
}
