package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"jobscout/internal/jobs"
	"jobscout/internal/mocks"
	"jobscout/internal/provider"
	"jobscout/internal/storage"
	"jobscout/pkg/models"
)

func newRegistry(t *testing.T, searcher jobs.Searcher) (*Registry, *storage.FileBackend) {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	r := NewRegistry(Deps{
		Searcher: searcher,
		Fetcher:  mocks.NewMockFetcher(ctrl),
		Backend:  backend,
		BaseKey:  "savedJobs",
		NumPages: 1,
	})
	t.Cleanup(r.Close)
	return r, backend
}

func TestGetOrCreateReusesSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _ := newRegistry(t, mocks.NewMockSearcher(ctrl))

	a, err := r.GetOrCreate(context.Background(), "abc")
	require.NoError(t, err)
	b, err := r.GetOrCreate(context.Background(), "abc")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "savedJobs:abc", a.Store.Key())
}

func TestGetOrCreateGeneratesID(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _ := newRegistry(t, mocks.NewMockSearcher(ctrl))

	s, err := r.GetOrCreate(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestSessionsKeepSeparateSavedSets(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, backend := newRegistry(t, mocks.NewMockSearcher(ctrl))
	ctx := context.Background()

	alice, err := r.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	bob, err := r.GetOrCreate(ctx, "bob")
	require.NoError(t, err)

	saved, err := alice.Aggregator.ToggleSave(ctx, models.JobPosting{JobID: "j1", JobTitle: "Go dev"})
	require.NoError(t, err)
	assert.True(t, saved)

	assert.True(t, alice.Aggregator.Snapshot().IsSaved("j1"))
	assert.False(t, bob.Aggregator.Snapshot().IsSaved("j1"))

	stored, err := backend.Load(ctx, "savedJobs:alice")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "j1", stored[0].JobID)

	stored, err = backend.Load(ctx, "savedJobs:bob")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSavedJobsSurviveSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _ := newRegistry(t, mocks.NewMockSearcher(ctrl))
	ctx := context.Background()

	s, err := r.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	_, err = s.Aggregator.ToggleSave(ctx, models.JobPosting{JobID: "j1"})
	require.NoError(t, err)

	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 1, r.Sweep(time.Minute))
	assert.Equal(t, 0, r.Len())

	// closed sessions reject further work
	_, err = s.Aggregator.ToggleSave(ctx, models.JobPosting{JobID: "j2"})
	assert.ErrorIs(t, err, jobs.ErrClosed)

	again, err := r.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.Equal(t, []string{"j1"}, again.Aggregator.Snapshot().SavedIDs())
}

func TestSweepKeepsActiveSessions(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _ := newRegistry(t, mocks.NewMockSearcher(ctrl))
	ctx := context.Background()

	start := time.Now()
	r.now = func() time.Time { return start }
	_, err := r.GetOrCreate(ctx, "old")
	require.NoError(t, err)

	r.now = func() time.Time { return start.Add(30 * time.Minute) }
	_, err = r.GetOrCreate(ctx, "fresh")
	require.NoError(t, err)

	assert.Equal(t, 1, r.Sweep(10*time.Minute))
	assert.Equal(t, []string{"fresh"}, r.IDs())
}

func TestScrollWiredToAggregator(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	r, _ := newRegistry(t, searcher)
	ctx := context.Background()

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(&provider.SearchResult{
		Items:     []models.JobPosting{{JobID: "a"}, {JobID: "b"}},
		TotalJobs: 4,
	}, nil)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
			assert.Equal(t, 2, req.Page)
			return &provider.SearchResult{
				Items:     []models.JobPosting{{JobID: "c"}, {JobID: "d"}},
				TotalJobs: 4,
			}, nil
		})

	s, err := r.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.Aggregator.RunSearch(ctx, "golang", models.FilterOverrides{}))
	assert.Equal(t, "b", s.Scroll.Target())

	assert.Equal(t, 1, s.Tracker.Report(ctx, "b", true))
	state := s.Aggregator.Snapshot()
	assert.Len(t, state.Results, 4)
	assert.False(t, state.HasMore())
	assert.Empty(t, s.Scroll.Target())
}

func TestConcurrentGetOrCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _ := newRegistry(t, mocks.NewMockSearcher(ctrl))

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.GetOrCreate(context.Background(), "shared")
			assert.NoError(t, err)
			got[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, r.Len())
}

func TestClosedRegistryRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _ := newRegistry(t, mocks.NewMockSearcher(ctrl))

	r.Close()
	_, err := r.GetOrCreate(context.Background(), "late")
	assert.ErrorIs(t, err, ErrClosed)
}
