package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/papyrus/papyrus/backend/notes-api/internal/note"
	"github.com/papyrus/papyrus/backend/notes-api/internal/note/repository"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/logger"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = repository.ErrNotFound
	ErrInvalidID   = repository.ErrInvalidID
	ErrNoSnapshots = errors.New("snapshot storage not configured")
)

// Service defines the note operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, req note.CreateRequest) (string, error)
	List(ctx context.Context, f note.Filter) ([]note.Note, error)
	Update(ctx context.Context, id string, p note.Patch) error
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context) (*Snapshot, error)
}

// SnapshotStore persists exported note snapshots. Implemented by storage.MinIOStorage.
type SnapshotStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Snapshot describes an uploaded export.
type Snapshot struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// Option configures a note service.
type Option func(*noteService)

// WithSnapshots enables Export against the given store; URLs stay valid for ttl.
func WithSnapshots(store SnapshotStore, ttl time.Duration) Option {
	return func(s *noteService) {
		s.snapshots = store
		s.urlTTL = ttl
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *noteService) { s.now = now }
}

// New returns a Service backed by the given repository.
func New(repo repository.Repository, opts ...Option) Service {
	s := &noteService{repo: repo, now: time.Now, urlTTL: time.Hour}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(opts ...Option) Service {
	return New(repository.NewMemoryRepo(), opts...)
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(col *mongo.Collection, opts ...Option) Service {
	return New(repository.NewMongoRepo(col), opts...)
}

type noteService struct {
	repo      repository.Repository
	now       func() time.Time
	snapshots SnapshotStore
	urlTTL    time.Duration
}

func (s *noteService) Create(ctx context.Context, req note.CreateRequest) (string, error) {
	n := req.ToNote()
	now := s.now().UTC()
	n.CreatedAt = &now
	n.UpdatedAt = &now
	id, err := s.repo.Create(ctx, n)
	record("create", err)
	if err != nil {
		return "", err
	}
	logger.Debugf("note %s created", id)
	return id, nil
}

func (s *noteService) List(ctx context.Context, f note.Filter) ([]note.Note, error) {
	notes, err := s.repo.List(ctx, f)
	record("list", err)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *noteService) Update(ctx context.Context, id string, p note.Patch) error {
	err := s.repo.Update(ctx, id, p.Sanitized(s.now().UTC()))
	record("update", err)
	return err
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	record("delete", err)
	return err
}

// Export uploads every note, in list order, as one JSON document.
func (s *noteService) Export(ctx context.Context) (*Snapshot, error) {
	if s.snapshots == nil {
		return nil, ErrNoSnapshots
	}
	notes, err := s.repo.List(ctx, note.Filter{})
	if err != nil {
		record("export", err)
		return nil, fmt.Errorf("list notes: %w", err)
	}
	body, err := json.Marshal(notes)
	if err != nil {
		record("export", err)
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	key := fmt.Sprintf("exports/notes-%s.json", s.now().UTC().Format("20060102T150405Z"))
	if err := s.snapshots.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		record("export", err)
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	url, err := s.snapshots.GetPresignedURL(ctx, key, s.urlTTL)
	record("export", err)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}
	logger.Infof("exported %d notes to %s", len(notes), key)
	return &Snapshot{Key: key, URL: url, Count: len(notes)}, nil
}

func record(op string, err error) {
	metrics.NoteOperations.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrInvalidID):
		return "invalid"
	default:
		return "error"
	}
}
