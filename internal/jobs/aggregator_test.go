package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"jobscout/internal/mocks"
	"jobscout/internal/provider"
	"jobscout/pkg/models"
)

func job(id string) models.JobPosting {
	return models.JobPosting{JobID: id, JobTitle: "Title " + id, EmployerName: "Acme"}
}

func page(total int, ids ...string) *provider.SearchResult {
	items := make([]models.JobPosting, len(ids))
	for i, id := range ids {
		items[i] = job(id)
	}
	return &provider.SearchResult{Items: items, TotalJobs: total}
}

func ids(jobs []models.JobPosting) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.JobID
	}
	return out
}

func emptyStore(ctrl *gomock.Controller) *mocks.MockSavedStore {
	store := mocks.NewMockSavedStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(nil, nil)
	return store
}

func newAggregator(t *testing.T, searcher Searcher, store SavedStore) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(context.Background(), searcher, store)
	require.NoError(t, err)
	t.Cleanup(func() { agg.Close() })
	return agg
}

// gatedSearcher blocks every Search until the test answers it
type gatedSearcher struct {
	calls chan *gatedCall
}

type gatedCall struct {
	req  provider.SearchRequest
	resp chan gatedResult
}

type gatedResult struct {
	res *provider.SearchResult
	err error
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{calls: make(chan *gatedCall, 8)}
}

func (g *gatedSearcher) Search(ctx context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
	c := &gatedCall{req: req, resp: make(chan gatedResult, 1)}
	g.calls <- c
	r := <-c.resp
	return r.res, r.err
}

func (c *gatedCall) reply(res *provider.SearchResult, err error) {
	c.resp <- gatedResult{res: res, err: err}
}

func TestRunSearch_Scenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	searcher.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
			assert.Equal(t, "Developer AND (React OR Vue) -Junior", req.Query)
			assert.Equal(t, 1, req.Page)
			assert.Equal(t, 1, req.NumPages)
			return page(2, "jobA", "jobB"), nil
		})

	require.NoError(t, agg.RunSearch(context.Background(), "Developer AND (React OR Vue) NOT Junior", models.FilterOverrides{}))

	s := agg.Snapshot()
	assert.Equal(t, []string{"jobA", "jobB"}, ids(s.Results))
	assert.Equal(t, 2, s.TotalJobs)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Equal(t, 1, s.Filters.Page)
	assert.Equal(t, "Developer AND (React OR Vue) NOT Junior", s.Query.Raw)
	assert.Equal(t, "Developer AND (React OR Vue) -Junior", s.Query.Normalized)
	assert.False(t, s.HasMore())
}

func TestRunSearch_EmptyQueryMakesNoCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(5, "a"), nil)
	require.NoError(t, agg.RunSearch(context.Background(), "golang", models.FilterOverrides{}))
	before := agg.Snapshot()

	for _, raw := range []string{"", "   ", "\t\n"} {
		err := agg.RunSearch(context.Background(), raw, models.FilterOverrides{})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	}

	assert.Equal(t, before, agg.Snapshot())
}

func TestRunSearch_TruncatesToTotal(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(2, "a", "b", "c"), nil)
	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))

	s := agg.Snapshot()
	assert.Equal(t, []string{"a", "b"}, ids(s.Results))
	assert.Equal(t, 1, s.Filters.Page)
}

func TestRunSearch_RateLimitedKeepsResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(10, "a", "b"), nil),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			Return(nil, &provider.Error{Kind: provider.KindRateLimited, Op: "search", StatusCode: 429}),
	)

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))
	err := agg.RunSearch(context.Background(), "rust", models.FilterOverrides{})
	assert.ErrorIs(t, err, provider.ErrRateLimited)

	s := agg.Snapshot()
	assert.Equal(t, []string{"a", "b"}, ids(s.Results))
	assert.NotEmpty(t, s.Error)
	assert.Equal(t, msgProvider, s.Error)
	assert.False(t, s.Loading)
	assert.Equal(t, "go", s.Query.Raw, "failed search must not commit its query")
}

func TestRunSearch_FiltersCommittedOnlyOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	remote := true
	week := models.DatePostedWeek

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
				assert.True(t, req.Filters.RemoteJobsOnly)
				return page(1, "a"), nil
			}),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
				assert.True(t, req.Filters.RemoteJobsOnly, "overrides merge into current filters")
				assert.Equal(t, week, req.Filters.DatePosted)
				return nil, &provider.Error{Kind: provider.KindTransport, Op: "search"}
			}),
	)

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{RemoteJobsOnly: &remote}))
	require.Error(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{DatePosted: &week}))

	s := agg.Snapshot()
	assert.True(t, s.Filters.RemoteJobsOnly)
	assert.Equal(t, models.DatePostedAll, s.Filters.DatePosted)
	assert.Equal(t, msgTransport, s.Error)
}

func TestRunSearch_ClearsPreviousError(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom")),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(1, "a"), nil),
	)

	require.Error(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))
	assert.Equal(t, msgUnknown, agg.Snapshot().Error)

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))
	assert.Empty(t, agg.Snapshot().Error)
}

func TestLoadMore_AppendsPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(5, "a", "b"), nil),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
				assert.Equal(t, 2, req.Page)
				assert.Equal(t, "golang", req.Query)
				return page(5, "c", "d"), nil
			}),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
				assert.Equal(t, 3, req.Page)
				return page(5, "e"), nil
			}),
	)

	require.NoError(t, agg.RunSearch(context.Background(), "golang", models.FilterOverrides{}))

	fetched, err := agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	s := agg.Snapshot()
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(s.Results))
	assert.Equal(t, 2, s.Filters.Page)

	fetched, err = agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	s = agg.Snapshot()
	assert.Len(t, s.Results, 5)
	assert.False(t, s.HasMore())

	// everything loaded: no further call
	fetched, err = agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
}

func TestLoadMore_NoopWhenAllLoaded(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(2, "a", "b"), nil).Times(1)
	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))

	before := agg.Snapshot()
	fetched, err := agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Equal(t, before, agg.Snapshot())
}

func TestLoadMore_NoopBeforeFirstSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), emptyStore(ctrl))

	fetched, err := agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
}

func TestLoadMore_NoopWhileLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := newGatedSearcher()
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	done := make(chan error, 1)
	go func() { done <- agg.RunSearch(context.Background(), "go", models.FilterOverrides{}) }()
	call := <-searcher.calls

	before := agg.Snapshot()
	require.True(t, before.Loading)

	fetched, err := agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
	assert.Equal(t, before, agg.Snapshot())
	assert.Empty(t, searcher.calls, "no additional call issued")

	call.reply(page(4, "a"), nil)
	require.NoError(t, <-done)
	assert.False(t, agg.Snapshot().Loading)
}

func TestLoadMore_FailureKeepsResultsAndPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(4, "a", "b"), nil),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			Return(nil, &provider.Error{Kind: provider.KindProvider, Op: "search", StatusCode: 500}),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
				assert.Equal(t, 2, req.Page, "failed page is requested again")
				return page(4, "c", "d"), nil
			}),
	)

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))

	fetched, err := agg.LoadMore(context.Background())
	assert.False(t, fetched)
	assert.ErrorIs(t, err, provider.ErrProvider)

	s := agg.Snapshot()
	assert.Equal(t, []string{"a", "b"}, ids(s.Results))
	assert.Equal(t, 1, s.Filters.Page)
	assert.Equal(t, msgProvider, s.Error)
	assert.False(t, s.Loading)

	fetched, err = agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Empty(t, agg.Snapshot().Error)
}

func TestLoadMore_EmptyPageEndsPaging(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(100, "a"), nil),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(100), nil),
	)

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))
	fetched, err := agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)

	s := agg.Snapshot()
	assert.Equal(t, 1, s.TotalJobs)
	assert.False(t, s.HasMore())
}

func unknownTotal(ids ...string) *provider.SearchResult {
	res := page(len(ids), ids...)
	res.TotalUnknown = true
	return res
}

func TestLoadMore_UnknownTotalPagesUntilEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(unknownTotal("a", "b"), nil),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
				assert.Equal(t, 2, req.Page)
				return unknownTotal("c"), nil
			}),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(unknownTotal(), nil),
	)

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))
	s := agg.Snapshot()
	assert.True(t, s.TotalUnknown)
	assert.True(t, s.HasMore())

	fetched, err := agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	s = agg.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Results))
	assert.Equal(t, 3, s.TotalJobs)
	assert.True(t, s.HasMore())

	fetched, err = agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	s = agg.Snapshot()
	assert.Len(t, s.Results, 3)
	assert.False(t, s.TotalUnknown)
	assert.False(t, s.HasMore())

	// the empty page settled the total: no further call
	fetched, err = agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
}

func TestRunSearch_UnknownTotalWithNoItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(unknownTotal(), nil).Times(1)
	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))

	s := agg.Snapshot()
	assert.False(t, s.TotalUnknown)
	assert.False(t, s.HasMore())

	fetched, err := agg.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched)
}

func TestLoadMore_KnownTotalAfterUnknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(unknownTotal("a"), nil),
		searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(2, "b"), nil),
	)

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))
	_, err := agg.LoadMore(context.Background())
	require.NoError(t, err)

	s := agg.Snapshot()
	assert.False(t, s.TotalUnknown)
	assert.Equal(t, 2, s.TotalJobs)
	assert.False(t, s.HasMore())
}

func TestRunSearch_StaleResponseDiscarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := newGatedSearcher()
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	first := make(chan error, 1)
	go func() { first <- agg.RunSearch(context.Background(), "slow", models.FilterOverrides{}) }()
	slowCall := <-searcher.calls

	second := make(chan error, 1)
	go func() { second <- agg.RunSearch(context.Background(), "fast", models.FilterOverrides{}) }()
	fastCall := <-searcher.calls

	fastCall.reply(page(1, "fast-1"), nil)
	require.NoError(t, <-second)

	slowCall.reply(page(1, "slow-1"), nil)
	assert.ErrorIs(t, <-first, ErrSuperseded)

	s := agg.Snapshot()
	assert.Equal(t, []string{"fast-1"}, ids(s.Results))
	assert.Equal(t, "fast", s.Query.Raw)
	assert.False(t, s.Loading)
}

func TestRunSearch_StaleFailureDoesNotSetError(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := newGatedSearcher()
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	first := make(chan error, 1)
	go func() { first <- agg.RunSearch(context.Background(), "one", models.FilterOverrides{}) }()
	oldCall := <-searcher.calls

	second := make(chan error, 1)
	go func() { second <- agg.RunSearch(context.Background(), "two", models.FilterOverrides{}) }()
	newCall := <-searcher.calls

	oldCall.reply(nil, errors.New("late failure"))
	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.True(t, agg.Snapshot().Loading, "newer fetch still outstanding")
	assert.Empty(t, agg.Snapshot().Error)

	newCall.reply(page(1, "x"), nil)
	require.NoError(t, <-second)
}

func TestToggleSave_PersistsEachToggle(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := emptyStore(ctrl)
	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), store)

	j := job("saved-1")
	gomock.InOrder(
		store.EXPECT().Save(gomock.Any(), []models.JobPosting{j}).Return(nil),
		store.EXPECT().Save(gomock.Any(), []models.JobPosting{}).Return(nil),
	)

	saved, err := agg.ToggleSave(context.Background(), j)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, agg.Snapshot().IsSaved("saved-1"))

	saved, err = agg.ToggleSave(context.Background(), j)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.False(t, agg.Snapshot().IsSaved("saved-1"))
}

func TestToggleSave_RollsBackOnPersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := emptyStore(ctrl)
	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), store)

	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	var events int
	agg.Subscribe(func(ev Event) {
		if ev.Type == EventSaved {
			events++
		}
	})

	saved, err := agg.ToggleSave(context.Background(), job("x"))
	require.Error(t, err)
	assert.False(t, saved)
	assert.Empty(t, agg.Snapshot().Saved)
	assert.Zero(t, events)
}

func TestToggleSave_RequiresJobID(t *testing.T) {
	ctrl := gomock.NewController(t)
	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), emptyStore(ctrl))

	_, err := agg.ToggleSave(context.Background(), models.JobPosting{JobTitle: "no id"})
	assert.True(t, IsValidation(err))
}

func TestToggleSave_ConcurrentTogglesStayConsistent(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := emptyStore(ctrl)
	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), store)

	var mu sync.Mutex
	var last []models.JobPosting
	store.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, jobs []models.JobPosting) error {
			mu.Lock()
			defer mu.Unlock()
			last = jobs
			return nil
		}).Times(10)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := agg.ToggleSave(context.Background(), job(string(rune('a'+i))))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	s := agg.Snapshot()
	assert.Len(t, s.Saved, 10)
	assert.Equal(t, ids(last), s.SavedIDs())
}

func TestNewAggregator_LoadsSavedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSavedStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return([]models.JobPosting{job("a"), job("a"), job("b"), {JobTitle: "no id"}}, nil).Times(1)

	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), store)
	assert.Equal(t, []string{"a", "b"}, agg.Snapshot().SavedIDs())
}

func TestNewAggregator_LoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSavedStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(nil, errors.New("corrupt"))

	_, err := NewAggregator(context.Background(), mocks.NewMockSearcher(ctrl), store)
	assert.Error(t, err)
}

func TestSelection(t *testing.T) {
	ctrl := gomock.NewController(t)
	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), emptyStore(ctrl))

	var got []Event
	cancel := agg.Subscribe(func(ev Event) { got = append(got, ev) })

	agg.SelectJob(job("a"))
	require.NotNil(t, agg.Snapshot().SelectedJob)
	assert.Equal(t, "a", agg.Snapshot().SelectedJob.JobID)

	agg.ClearSelectedJob()
	assert.Nil(t, agg.Snapshot().SelectedJob)
	agg.ClearSelectedJob()

	require.Len(t, got, 2)
	assert.Equal(t, EventSelection, got[0].Type)
	assert.Equal(t, "a", got[0].State.SelectedJob.JobID)
	assert.Nil(t, got[1].State.SelectedJob)

	cancel()
	agg.SelectJob(job("b"))
	assert.Len(t, got, 2)
}

func TestEvents_ListenerMayCallBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(1, "a"), nil)

	var types []EventType
	agg.Subscribe(func(ev Event) {
		types = append(types, ev.Type)
		_ = agg.Snapshot()
	})

	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))
	assert.Equal(t, []EventType{EventLoading, EventResults}, types)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	agg := newAggregator(t, searcher, emptyStore(ctrl))

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(page(1, "a"), nil)
	require.NoError(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}))

	s := agg.Snapshot()
	s.Results[0].JobID = "mutated"
	assert.Equal(t, "a", agg.Snapshot().Results[0].JobID)
}

func TestClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	agg := newAggregator(t, mocks.NewMockSearcher(ctrl), emptyStore(ctrl))

	require.NoError(t, agg.Close())
	assert.ErrorIs(t, agg.RunSearch(context.Background(), "go", models.FilterOverrides{}), ErrClosed)
	_, err := agg.LoadMore(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = agg.ToggleSave(context.Background(), job("a"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, agg.Close())
}
