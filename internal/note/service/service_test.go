package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/papyrus/papyrus/backend/notes-api/internal/note"
	"github.com/papyrus/papyrus/backend/notes-api/internal/note/repository"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// failingRepo returns err from every call.
type failingRepo struct{ err error }

func (f *failingRepo) Create(ctx context.Context, n *note.Note) (string, error) {
	return "", f.err
}

func (f *failingRepo) Get(ctx context.Context, id string) (*note.Note, error) {
	return nil, f.err
}

func (f *failingRepo) List(ctx context.Context, fl note.Filter) ([]note.Note, error) {
	return nil, f.err
}

func (f *failingRepo) Update(ctx context.Context, id string, p note.Patch) error {
	return f.err
}

func (f *failingRepo) Delete(ctx context.Context, id string) error {
	return f.err
}

// fakeSnapshots records uploads in memory.
type fakeSnapshots struct {
	key       string
	body      []byte
	ttl       time.Duration
	uploadErr error
}

func (f *fakeSnapshots) UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.key, f.body = key, b
	return nil
}

func (f *fakeSnapshots) GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	f.ttl = expires
	return "https://minio.local/" + key + "?sig=1", nil
}

func fixedClock(ts time.Time) Option {
	return WithClock(func() time.Time { return ts })
}

func TestService_CreateStampsTimestamps(t *testing.T) {
	repo := repository.NewMemoryRepo()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := New(repo, fixedClock(created))
	ctx := context.Background()

	id, err := svc.Create(ctx, note.CreateRequest{Title: "t", Tags: []string{"a"}})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "t", got.Title)
	require.Equal(t, []string{"a"}, got.Tags)
	require.NotNil(t, got.CreatedAt)
	require.True(t, created.Equal(*got.CreatedAt))
	require.True(t, created.Equal(*got.UpdatedAt))
}

func TestService_UpdateStampsUpdatedAtAndKeepsIdentity(t *testing.T) {
	repo := repository.NewMemoryRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	svc := New(repo, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	id, err := svc.Create(ctx, note.CreateRequest{Title: "old", Content: "body"})
	require.NoError(t, err)

	clock = now.Add(time.Hour)
	require.NoError(t, svc.Update(ctx, id, note.Patch{"title": "new", "id": "other", "_id": "65f000000000000000000000"}))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.Equal(t, "new", got.Title)
	require.Equal(t, "body", got.Content)
	require.True(t, now.Equal(*got.CreatedAt))
	require.True(t, clock.Equal(*got.UpdatedAt))
}

func TestService_NotFoundPassesThrough(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	missing := "65f000000000000000000000"

	before := testutil.ToFloat64(metrics.NoteOperations.WithLabelValues("delete", "not_found"))
	require.ErrorIs(t, svc.Delete(ctx, missing), ErrNotFound)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.NoteOperations.WithLabelValues("delete", "not_found")))

	require.ErrorIs(t, svc.Update(ctx, missing, note.Patch{"title": "x"}), ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "bad"), ErrInvalidID)
}

func TestService_StoreFailures(t *testing.T) {
	boom := errors.New("connection reset")
	svc := New(&failingRepo{err: boom})
	ctx := context.Background()

	_, err := svc.Create(ctx, note.CreateRequest{})
	require.Equal(t, boom, err)

	_, err = svc.List(ctx, note.Filter{})
	require.ErrorIs(t, err, boom)

	require.ErrorIs(t, svc.Update(ctx, "65f000000000000000000000", note.Patch{}), boom)
	require.ErrorIs(t, svc.Delete(ctx, "65f000000000000000000000"), boom)
}

func TestService_ExportUploadsOrderedSnapshot(t *testing.T) {
	snaps := &fakeSnapshots{}
	ts := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	svc := NewMemoryService(WithSnapshots(snaps, 15*time.Minute), fixedClock(ts))
	ctx := context.Background()

	_, err := svc.Create(ctx, note.CreateRequest{Title: "plain"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, note.CreateRequest{Title: "pinned", IsPinned: true})
	require.NoError(t, err)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Equal(t, "exports/notes-20261019T083000Z.json", snap.Key)
	require.Equal(t, snap.Key, snaps.key)
	require.Equal(t, 2, snap.Count)
	require.Contains(t, snap.URL, snap.Key)
	require.Equal(t, 15*time.Minute, snaps.ttl)

	var exported []note.Note
	require.NoError(t, json.Unmarshal(snaps.body, &exported))
	require.Len(t, exported, 2)
	require.Equal(t, "pinned", exported[0].Title)
}

func TestService_ExportWithoutStorage(t *testing.T) {
	_, err := NewMemoryService().Export(context.Background())
	require.ErrorIs(t, err, ErrNoSnapshots)
}

func TestService_ExportUploadFailure(t *testing.T) {
	svc := NewMemoryService(WithSnapshots(&fakeSnapshots{uploadErr: errors.New("bucket gone")}, time.Minute))
	_, err := svc.Export(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bucket gone")
}
