package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

type historyRepoFake struct {
	mu       sync.Mutex
	entries  []domain.HistoryEntry
	listErr  error
	insError error
}

func (f *historyRepoFake) Insert(_ context.Context, entry *domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insError != nil {
		return f.insError
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *historyRepoFake) ListByUser(_ context.Context, userID string) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.HistoryEntry, 0)
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type historyQueueFake struct {
	mu        sync.Mutex
	published []domain.HistoryEntry
	err       error
	done      chan struct{}
}

func newHistoryQueueFake() *historyQueueFake {
	return &historyQueueFake{done: make(chan struct{}, 8)}
}

func (f *historyQueueFake) PublishHistoryEntry(_ context.Context, entry *domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, *entry)
	return nil
}

func (f *historyQueueFake) SubscribeHistoryEntries(context.Context, func(context.Context, *domain.HistoryEntry) error) error {
	return errors.New("not implemented")
}

func (f *historyQueueFake) waitPublish(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queue publish")
	}
}

func sampleReport() *domain.AnalysisReport {
	return &domain.AnalysisReport{SuccessProbability: 70, SyllabusCoverage: 85}
}

func TestHistoryAppendIsImmediatelyVisible(t *testing.T) {
	repo := &historyRepoFake{}
	queue := newHistoryQueueFake()
	svc := NewHistoryService(repo, queue, testLogger())

	svc.Append(context.Background(), &domain.HistoryEntry{UserID: "u1", CourseName: "OS", Report: sampleReport()})

	entries, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].CourseName != "OS" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].ID == "" || entries[0].CreatedAt.IsZero() {
		t.Error("Append must assign id and timestamp")
	}
	queue.waitPublish(t)
}

func TestHistoryAppendPublishesDurableWrite(t *testing.T) {
	repo := &historyRepoFake{}
	queue := newHistoryQueueFake()
	svc := NewHistoryService(repo, queue, testLogger())

	svc.Append(context.Background(), &domain.HistoryEntry{UserID: "u1", CourseName: "OS", Report: sampleReport()})
	queue.waitPublish(t)

	queue.mu.Lock()
	defer queue.mu.Unlock()
	if len(queue.published) != 1 {
		t.Fatalf("published = %d, want 1", len(queue.published))
	}
}

func TestHistoryAppendPublishFailureIsNotSurfaced(t *testing.T) {
	repo := &historyRepoFake{}
	queue := newHistoryQueueFake()
	queue.err = errors.New("nats down")
	svc := NewHistoryService(repo, queue, testLogger())

	svc.Append(context.Background(), &domain.HistoryEntry{UserID: "u1", CourseName: "OS", Report: sampleReport()})
	queue.waitPublish(t)

	entries, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatal("cached entry must survive a failed publish")
	}
}

func TestHistoryListMergesWithoutDuplicates(t *testing.T) {
	repo := &historyRepoFake{}
	queue := newHistoryQueueFake()
	svc := NewHistoryService(repo, queue, testLogger())

	entry := &domain.HistoryEntry{UserID: "u1", CourseName: "OS", Report: sampleReport()}
	svc.Append(context.Background(), entry)
	queue.waitPublish(t)

	// Simulate the worker having persisted the same entry.
	if err := repo.Insert(context.Background(), entry); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	entries, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want deduplicated 1", len(entries))
	}
}

func TestHistoryListDegradesToCacheOnRepoFailure(t *testing.T) {
	repo := &historyRepoFake{listErr: errors.New("db down")}
	queue := newHistoryQueueFake()
	svc := NewHistoryService(repo, queue, testLogger())

	svc.Append(context.Background(), &domain.HistoryEntry{UserID: "u1", CourseName: "OS", Report: sampleReport()})
	queue.waitPublish(t)

	entries, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want cached entry", len(entries))
	}
}

func TestHistoryPersister(t *testing.T) {
	repo := &historyRepoFake{}
	p := NewHistoryPersister(repo, testLogger())

	entry := &domain.HistoryEntry{ID: "h1", UserID: "u1", CourseName: "OS", Report: sampleReport(), CreatedAt: time.Now().UTC()}
	if err := p.Persist(context.Background(), entry); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatal("expected durable insert")
	}

	repo.insError = errors.New("db down")
	if err := p.Persist(context.Background(), entry); err == nil {
		t.Fatal("worker must surface persist failures for redelivery")
	}
}
