package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"jobscout/internal/detail"
	"jobscout/internal/jobs"
	"jobscout/internal/mocks"
	"jobscout/internal/provider"
	"jobscout/pkg/models"
)

type fixture struct {
	sh       *shell
	out      *bytes.Buffer
	searcher *mocks.MockSearcher
	fetcher  *mocks.MockFetcher
	store    *mocks.MockSavedStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		out:      &bytes.Buffer{},
		searcher: mocks.NewMockSearcher(ctrl),
		fetcher:  mocks.NewMockFetcher(ctrl),
		store:    mocks.NewMockSavedStore(ctrl),
	}
	f.store.EXPECT().Load(gomock.Any()).Return(nil, nil)

	agg, err := jobs.NewAggregator(context.Background(), f.searcher, f.store)
	require.NoError(t, err)
	view := detail.NewView(agg, f.fetcher)
	t.Cleanup(func() {
		view.Close()
		agg.Close()
	})

	f.sh = newShell(agg, view, f.out)
	f.sh.pollEvery = time.Millisecond
	f.sh.detailWait = 2 * time.Second
	return f
}

func posting(id, title string) models.JobPosting {
	return models.JobPosting{JobID: id, JobTitle: title, EmployerName: "Acme"}
}

func TestShellSearchPrintsResults(t *testing.T) {
	f := newFixture(t)
	f.searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
			assert.Equal(t, "golang -junior", req.Query)
			return &provider.SearchResult{
				Items:     []models.JobPosting{posting("a", "Go Engineer"), posting("b", "Backend Dev")},
				TotalJobs: 5,
			}, nil
		})

	require.NoError(t, f.sh.exec(context.Background(), "search golang NOT junior"))

	out := f.out.String()
	assert.Contains(t, out, "query: golang -junior")
	assert.Contains(t, out, "Go Engineer")
	assert.Contains(t, out, "showing 2 of 5")
	assert.Contains(t, out, "type more")
}

func TestShellUnknownTotalKeepsPaging(t *testing.T) {
	f := newFixture(t)
	f.searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(&provider.SearchResult{
		Items:        []models.JobPosting{posting("a", "Go Engineer")},
		TotalJobs:    1,
		TotalUnknown: true,
	}, nil)

	require.NoError(t, f.sh.exec(context.Background(), "search golang"))

	out := f.out.String()
	assert.Contains(t, out, "showing 1,")
	assert.NotContains(t, out, "showing 1 of")
	assert.Contains(t, out, "type more")
}

func TestShellFilterAppliesToNextSearch(t *testing.T) {
	f := newFixture(t)
	f.searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req provider.SearchRequest) (*provider.SearchResult, error) {
			assert.Equal(t, models.DatePostedWeek, req.Filters.DatePosted)
			assert.True(t, req.Filters.RemoteJobsOnly)
			return &provider.SearchResult{Items: []models.JobPosting{posting("a", "Go")}, TotalJobs: 1}, nil
		})

	require.NoError(t, f.sh.exec(context.Background(), "filter date=week remote=true"))
	require.NoError(t, f.sh.exec(context.Background(), "search go"))

	assert.Error(t, f.sh.exec(context.Background(), "filter remote=maybe"))
	assert.Error(t, f.sh.exec(context.Background(), "filter colour=blue"))
	assert.Error(t, f.sh.exec(context.Background(), "filter date"))
}

func TestShellSaveToggles(t *testing.T) {
	f := newFixture(t)
	f.searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(&provider.SearchResult{Items: []models.JobPosting{posting("a", "Go Engineer")}, TotalJobs: 1}, nil)
	f.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	ctx := context.Background()
	require.NoError(t, f.sh.exec(ctx, "search go"))
	require.NoError(t, f.sh.exec(ctx, "save 1"))
	assert.Contains(t, f.out.String(), "Go Engineer added to saved jobs")

	f.out.Reset()
	require.NoError(t, f.sh.exec(ctx, "saved"))
	assert.Contains(t, f.out.String(), "Go Engineer")

	f.out.Reset()
	require.NoError(t, f.sh.exec(ctx, "list"))
	assert.Contains(t, f.out.String(), "*1")

	require.NoError(t, f.sh.exec(ctx, "save 1"))
	f.out.Reset()
	require.NoError(t, f.sh.exec(ctx, "saved"))
	assert.Contains(t, f.out.String(), "no saved jobs")

	assert.Error(t, f.sh.exec(ctx, "save 2"))
	assert.Error(t, f.sh.exec(ctx, "save x"))
}

func TestShellShowFetchesDetails(t *testing.T) {
	f := newFixture(t)
	f.searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(&provider.SearchResult{Items: []models.JobPosting{posting("a", "Go Engineer")}, TotalJobs: 1}, nil)
	desc := "Build services in Go."
	full := posting("a", "Go Engineer")
	full.JobDescription = &desc
	f.fetcher.EXPECT().GetDetails(gomock.Any(), "a").Return(&full, nil)

	ctx := context.Background()
	require.NoError(t, f.sh.exec(ctx, "search go"))
	f.out.Reset()
	require.NoError(t, f.sh.exec(ctx, "show 1"))

	assert.Contains(t, f.out.String(), "Build services in Go.")
}

func TestShellProviderErrorUsesUserMessage(t *testing.T) {
	f := newFixture(t)
	f.searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(nil, &provider.Error{Kind: provider.KindRateLimited, Op: "search", StatusCode: 429})

	err := f.sh.exec(context.Background(), "search go")
	require.Error(t, err)
	assert.Equal(t, f.sh.agg.Snapshot().Error, err.Error())
	assert.NotContains(t, err.Error(), "429")
}

func TestShellRejectsEmptySearchAndUnknownCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.sh.exec(ctx, "search   ")
	require.Error(t, err)
	assert.True(t, jobs.IsValidation(err))

	assert.ErrorContains(t, f.sh.exec(ctx, "frobnicate"), "unknown command")
	assert.NoError(t, f.sh.exec(ctx, ""))
	assert.ErrorIs(t, f.sh.exec(ctx, "quit"), errQuit)
}

func TestReplStopsOnQuit(t *testing.T) {
	f := newFixture(t)
	in := bufio.NewScanner(strings.NewReader("help\nbogus\nquit\nsearch never\n"))

	require.NoError(t, repl(context.Background(), f.sh, in))

	out := f.out.String()
	assert.Contains(t, out, "commands:")
	assert.Contains(t, out, "error: unknown command")
}
