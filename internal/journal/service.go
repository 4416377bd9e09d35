package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/statement-workbench/statement-workbench/internal/backend"
	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
)

// Backend is the journal surface of the external financial API.
type Backend interface {
	JournalMetadata(ctx context.Context) (backend.JournalMetadata, error)
	PostJournalBatch(ctx context.Context, entries []backend.BatchEntry) error
}

// Service loads journal metadata and posts adjustment batches.
type Service struct {
	logger  *slog.Logger
	backend Backend
}

// NewService constructs the journal service.
func NewService(logger *slog.Logger, b Backend) *Service {
	return &Service{logger: logger, backend: b}
}

// Metadata fetches GL accounts and period labels in a single request.
func (s *Service) Metadata(ctx context.Context) (backend.JournalMetadata, error) {
	meta, err := s.backend.JournalMetadata(ctx)
	if err != nil {
		s.logger.Error("fetch journal metadata", slog.Any("error", err))
		return backend.JournalMetadata{}, fmt.Errorf("%w: %v", httpx.ErrUnavailable, err)
	}
	return meta, nil
}

// Post builds the signed batch and submits it in one request. An empty batch
// is rejected before any network call; a failed post leaves local state
// untouched and the operation retryable.
func (s *Service) Post(ctx context.Context, rows []Row, periods []string) (int, error) {
	batch := BuildBatch(rows, periods)
	if len(batch) == 0 {
		return 0, fmt.Errorf("%w: nothing to post, add an account and amount first", httpx.ErrValidation)
	}
	if err := s.backend.PostJournalBatch(ctx, batch); err != nil {
		s.logger.Error("post journal batch", slog.Any("error", err), slog.Int("entries", len(batch)))
		return 0, fmt.Errorf("%w: %v", httpx.ErrUnavailable, err)
	}
	return len(batch), nil
}
