package main

import (
	"time"

	"github.com/rxtech-lab/argo-signal/internal/pipeline"
)

// WatchlistMsg carries the rows of one refresh.
type WatchlistMsg struct {
	Rows        []pipeline.WatchlistRow
	RefreshedAt time.Time
	generation  int
}

// RefreshErrorMsg indicates the watchlist could not be built.
type RefreshErrorMsg struct {
	Err error
}

// refreshTickMsg schedules the next refresh of a watch session.
type refreshTickMsg struct {
	generation int
}
