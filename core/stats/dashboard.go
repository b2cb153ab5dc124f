package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/upskillway/crm/core"
)

// Fetcher returns one page for a category. Implementations typically wrap a
// repository or the upstream platform API client.
type Fetcher func(ctx context.Context, page, limit int) (ListResponse, error)

// Service refreshes the admin dashboard: it fires all category fetchers
// concurrently, joins them all-settled (a failed fetch only zeroes its own
// category) and runs one synchronous aggregation pass over the results.
type Service struct {
	fetchers   map[Category]Fetcher
	aggregator *Aggregator
	logger     core.Logger

	// SampleLimit is the page size requested from each category endpoint.
	SampleLimit int
}

func NewService(fetchers map[Category]Fetcher, logger core.Logger) *Service {
	return &Service{
		fetchers:    fetchers,
		aggregator:  NewAggregator(logger),
		logger:      logger,
		SampleLimit: 100,
	}
}

func (svc *Service) Refresh(ctx context.Context) Dashboard {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		responses = make(map[Category]ListResponse, len(AllCategories))
	)

	for _, cat := range AllCategories {
		fetch, ok := svc.fetchers[cat]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(cat Category, fetch Fetcher) {
			defer wg.Done()
			resp, err := fetch(ctx, 1, svc.SampleLimit)
			if err != nil {
				svc.logger.Warn(fmt.Sprintf("stats: fetching %s failed: %v", cat, err), err)
				resp = ListResponse{} // settles as a failed category
			}
			mu.Lock()
			responses[cat] = resp
			mu.Unlock()
		}(cat, fetch)
	}
	wg.Wait()

	return svc.aggregator.Aggregate(responses)
}
