package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout/internal/config"
	"jobscout/pkg/models"
)

func sampleJobs() []models.JobPosting {
	city := "Berlin"
	salary := 85000.0
	return []models.JobPosting{
		{JobID: "a", JobTitle: "Go Developer", EmployerName: "Acme", JobCity: &city, JobMinSalary: &salary},
		{JobID: "b", JobTitle: "SRE", EmployerName: "Beta", JobHighlights: &models.JobHighlights{Benefits: []string{"Remote"}}},
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	jobs, err := b.Load(ctx, "saved_jobs:s1")
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.NotNil(t, jobs)

	require.NoError(t, b.Save(ctx, "saved_jobs:s1", sampleJobs()))
	got, err := b.Load(ctx, "saved_jobs:s1")
	require.NoError(t, err)
	assert.Equal(t, sampleJobs(), got)

	// keys are isolated
	other, err := b.Load(ctx, "saved_jobs:s2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, b.Save(ctx, "saved_jobs:s1", nil))
	got, err = b.Load(ctx, "saved_jobs:s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileBackend_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, b.Save(ctx, "k", sampleJobs()))

	reopened, err := NewFileBackend(dir)
	require.NoError(t, err)
	got, err := reopened.Load(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestFileBackend_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, b.Save(context.Background(), "../escape:me", sampleJobs()))
	_, err = os.Stat(filepath.Join(dir, "..%2Fescape%3Ame.json"))
	assert.NoError(t, err)
}

func TestFileBackend_SimilarKeysStaySeparate(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	keys := []string{"a:b", "a_b", "a/b", "a%3Ab", "a b"}
	for i, key := range keys {
		require.NoError(t, b.Save(ctx, key, []models.JobPosting{{JobID: key, JobTitle: "job", EmployerName: "Acme"}}), i)
	}
	for _, key := range keys {
		got, err := b.Load(ctx, key)
		require.NoError(t, err)
		require.Len(t, got, 1, key)
		assert.Equal(t, key, got[0].JobID)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "saved_jobs.json", fileName("saved_jobs"))
	assert.Equal(t, "saved_jobs%3As1.json", fileName("saved_jobs:s1"))
	assert.Equal(t, "%25.json", fileName("%"))
	assert.NotEqual(t, fileName("a:b"), fileName("a_b"))
}

func TestFileBackend_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), []byte("{not json"), 0o644))

	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	_, err = b.Load(context.Background(), "k")
	assert.Error(t, err)
}

func TestFileBackend_CanceledContext(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Save(ctx, "k", sampleJobs()), context.Canceled)
}

func TestKeyedStore(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	s := ForKey(b, SessionKey("saved_jobs", "abc"))
	assert.Equal(t, "saved_jobs:abc", s.Key())

	require.NoError(t, s.Save(context.Background(), sampleJobs()[:1]))
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].JobID)

	assert.Equal(t, "saved_jobs", SessionKey("saved_jobs", ""))
}

func TestOpen(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.FileDir = t.TempDir()

	b, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "file", b.Name())
	assert.NoError(t, b.Ping(context.Background()))
	assert.NoError(t, b.Close())

	cfg.Storage.Backend = "s3"
	_, err = Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
