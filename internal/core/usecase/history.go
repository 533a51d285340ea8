package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
)

const publishTimeout = 5 * time.Second

// HistoryService keeps analysis history with relaxed durability: the
// in-memory view updates immediately, the durable write travels through the
// queue to the worker. Publish failures are logged, never surfaced.
type HistoryService struct {
	repo   ports.HistoryRepository
	queue  ports.HistoryQueue
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string][]domain.HistoryEntry
}

func NewHistoryService(repo ports.HistoryRepository, queue ports.HistoryQueue, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		repo:   repo,
		queue:  queue,
		logger: logger,
		cache:  make(map[string][]domain.HistoryEntry),
	}
}

// Append records the entry optimistically and hands the durable write to
// the queue in the background. The caller sees success unconditionally.
func (s *HistoryService) Append(ctx context.Context, entry *domain.HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.cache[entry.UserID] = append([]domain.HistoryEntry{*entry}, s.cache[entry.UserID]...)
	s.mu.Unlock()

	// Detached from the request context: the append outlives the request.
	go func(entry domain.HistoryEntry) {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.queue.PublishHistoryEntry(pubCtx, &entry); err != nil {
			s.logger.Warn("history publish failed, entry stays cache-only",
				slog.String("entry_id", entry.ID),
				slog.String("error", err.Error()))
		}
	}(*entry)
}

// List merges the optimistic cache over the durable store, newest first.
// A repository failure degrades to the cached view.
func (s *HistoryService) List(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	persisted, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("history read failed, serving cached view",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		persisted = nil
	}

	seen := make(map[string]struct{}, len(persisted))
	for _, e := range persisted {
		seen[e.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make([]domain.HistoryEntry, 0, len(persisted)+len(s.cache[userID]))
	for _, e := range s.cache[userID] {
		if _, ok := seen[e.ID]; !ok {
			merged = append(merged, e)
		}
	}
	return append(merged, persisted...), nil
}

// HistoryPersister is the worker-side half: it performs the durable insert
// the api process only enqueued.
type HistoryPersister struct {
	repo   ports.HistoryRepository
	logger *slog.Logger
}

func NewHistoryPersister(repo ports.HistoryRepository, logger *slog.Logger) *HistoryPersister {
	return &HistoryPersister{repo: repo, logger: logger}
}

func (p *HistoryPersister) Persist(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := p.repo.Insert(ctx, entry); err != nil {
		p.logger.Error("history persist failed",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()))
		return err
	}
	p.logger.Info("history entry persisted", slog.String("entry_id", entry.ID))
	return nil
}
