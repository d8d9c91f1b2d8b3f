// Package mocks provides gomock implementations of the interfaces the
// aggregator and detail view depend on.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=saved_store_mock.go jobscout/internal/jobs SavedStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=searcher_mock.go jobscout/internal/jobs Searcher
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=details_fetcher_mock.go jobscout/internal/detail Fetcher
