// Package pagination provides bounded-concurrency batch fetching for
// paginated endpoints with numbered pages.
//
// The GitHub fork listing reports its total page count via the Link header on
// the first response, and tolerates parallel requests within rate limits.
// This package fetches page 1 synchronously to learn the page count, then
// fans the remaining pages out across goroutines gated by a counting
// semaphore.
//
// Example usage:
//
//	fetcher := github.NewForkPageFetcher(client, "kubernetes", "kubernetes")
//	batch := pagination.NewBatchFetcher[github.Fork](fetcher, pagination.DefaultConfig())
//	forks, err := batch.FetchAll(ctx)
//
// The batch fetcher:
//   - Fetches the first page to determine total pages
//   - Spawns one permit-gated goroutine per remaining page (default ceiling 10)
//   - Collects results in completion order on the calling goroutine,
//     which is the aggregate's only writer
//   - Aborts on the first unrecoverable page error with no partial result
package pagination
