package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/papyrus/papyrus/backend/notes-api/internal/config"
	"github.com/papyrus/papyrus/backend/notes-api/internal/note/service"
	"github.com/stretchr/testify/require"
)

var _ service.SnapshotStore = (*MinIOStorage)(nil)

func TestNewMinIOClient_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOClient(config.MinIOConfig{Bucket: "papyrus-exports"})
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewMinIOClient(config.MinIOConfig{Endpoint: "localhost:9000"})
	require.Error(t, err)
}

func TestGetPresignedURL_IsSignedLocally(t *testing.T) {
	s, err := NewMinIOClient(config.MinIOConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "papyrus-exports",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	require.Equal(t, "papyrus-exports", s.Bucket())

	u, err := s.GetPresignedURL(context.Background(), "exports/notes-20261019T083000Z.json", 10*time.Minute)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://localhost:9000/papyrus-exports/exports/notes-20261019T083000Z.json?"), u)
	require.Contains(t, u, "X-Amz-Expires=600")
	require.Contains(t, u, "X-Amz-Signature=")
}
