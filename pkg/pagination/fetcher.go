// Package pagination provides bounded-concurrency batch fetching for
// numbered-page endpoints.
package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Prometheus metrics for batch fetch operations.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forklift_pages_fetched_total",
		Help: "Total number of pages fetched successfully",
	})

	batchFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "forklift_batch_fetch_duration_seconds",
		Help:    "Duration of complete batch fetch operations",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 300},
	})
)

// DefaultMaxConcurrency bounds in-flight page fetches when unconfigured.
const DefaultMaxConcurrency = 10

// progressLogInterval controls how often batch progress is logged.
const progressLogInterval = 10

// PageFetcher fetches a single page of items. The total page count it
// returns is authoritative on the first page; subsequent calls may report
// anything. Implementations own their retry policy.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, page int) (items []T, totalPages int, err error)
}

// ProgressFunc reports batch progress: (pagesFetched, totalPages).
// Called from the collecting goroutine only.
type ProgressFunc func(fetched, total int)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the permit ceiling for simultaneous page fetches.
	MaxConcurrency int

	// OnProgress, when set, is invoked after every collected page.
	OnProgress ProgressFunc
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: DefaultMaxConcurrency,
	}
}

// pageResult carries one page's outcome back to the collecting goroutine.
type pageResult[T any] struct {
	page  int
	items []T
	err   error
}

// BatchFetcher fetches every page of a paginated endpoint. Page 1 is fetched
// synchronously to learn the total page count; remaining pages run in
// permit-gated goroutines and report back over a channel. The collecting
// goroutine is the only writer to the aggregate, so no locking is needed.
type BatchFetcher[T any] struct {
	fetcher PageFetcher[T]
	config  Config
}

// NewBatchFetcher creates a batch fetcher.
func NewBatchFetcher[T any](fetcher PageFetcher[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}

	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll fetches all pages and returns the merged items. Pages are
// collected in completion order; the merge is order-independent. The first
// unrecoverable page error aborts the whole fetch: the run context is
// cancelled, the error is returned, and no partial result escapes. Spawned
// workers always terminate because the results channel is buffered to
// capacity.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	defer func() {
		batchFetchDuration.Observe(time.Since(start).Seconds())
	}()

	firstPage, totalPages, err := bf.fetcher.FetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	pagesFetchedTotal.Inc()

	log.Info().
		Int("total_pages", totalPages).
		Int("max_concurrency", bf.config.MaxConcurrency).
		Msg("Starting batch page fetch")

	if totalPages <= 1 {
		log.Info().
			Int("items", len(firstPage)).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		if bf.config.OnProgress != nil {
			bf.config.OnProgress(1, 1)
		}
		return firstPage, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	remaining := totalPages - 1
	results := make(chan pageResult[T], remaining)
	permits := semaphore.NewWeighted(int64(bf.config.MaxConcurrency))

	for page := 2; page <= totalPages; page++ {
		go func(page int) {
			// The permit covers the fetch including its internal retries
			// and backoff waits.
			if err := permits.Acquire(ctx, 1); err != nil {
				results <- pageResult[T]{page: page, err: err}
				return
			}
			defer permits.Release(1)

			items, _, err := bf.fetcher.FetchPage(ctx, page)
			results <- pageResult[T]{page: page, items: items, err: err}
		}(page)
	}

	all := firstPage
	fetched := 1
	for ; remaining > 0; remaining-- {
		result := <-results
		if result.err != nil {
			cancel()
			log.Error().
				Err(result.err).
				Int("page", result.page).
				Int("fetched_pages", fetched).
				Int("total_pages", totalPages).
				Msg("Page fetch failed, aborting batch")
			return nil, fmt.Errorf("fetch page %d: %w", result.page, result.err)
		}

		all = append(all, result.items...)
		fetched++
		pagesFetchedTotal.Inc()

		if bf.config.OnProgress != nil {
			bf.config.OnProgress(fetched, totalPages)
		}
		if fetched%progressLogInterval == 0 {
			log.Info().
				Int("fetched", fetched).
				Int("total", totalPages).
				Float64("progress_pct", float64(fetched)/float64(totalPages)*100).
				Msg("Fetch progress")
		}
	}

	log.Info().
		Int("pages", fetched).
		Int("items", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return all, nil
}
