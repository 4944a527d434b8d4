package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/skywardva/fleetboard/pkg/logger"
)

// PlanCache is a TTL cache of fetched route plans keyed by flight id.
// Concurrent lookups for the same flight are coalesced into a single
// upstream fetch. Failed fetches are never cached, so a later call retries.
type PlanCache struct {
	cache  *expirable.LRU[string, *RoutePlan]
	group  singleflight.Group
	logger *logger.Logger
}

// NewPlanCache creates a plan cache holding at most maxEntries plans,
// each valid for ttl from the moment it was stored
func NewPlanCache(maxEntries int, ttl time.Duration, log *logger.Logger) *PlanCache {
	return &PlanCache{
		cache:  expirable.NewLRU[string, *RoutePlan](maxEntries, nil, ttl),
		logger: log.Named("plan-cache"),
	}
}

// GetOrFetch returns the cached plan for flightID if it is still fresh,
// otherwise fetches it via the injected fetcher. A nil plan with nil error
// means no plan is filed for the flight.
func (c *PlanCache) GetOrFetch(ctx context.Context, flightID string, fetcher RoutePlanFetcher) (*RoutePlan, error) {
	if plan, ok := c.cache.Get(flightID); ok {
		return plan, nil
	}

	v, err, shared := c.group.Do(flightID, func() (interface{}, error) {
		// Another caller may have completed the fill while we waited
		if plan, ok := c.cache.Get(flightID); ok {
			return plan, nil
		}

		plan, err := fetcher.FlightPlan(ctx, flightID)
		if err != nil {
			return nil, err
		}

		// Unfiled plans are not cached either; they are cheap to re-ask for
		// and may appear once the pilot files one
		if plan != nil {
			c.cache.Add(flightID, plan)
		}
		return plan, nil
	})

	if err != nil {
		c.logger.Warn("Flight plan fetch failed",
			logger.String("flight_id", flightID),
			logger.Bool("shared", shared),
			logger.Error(err))
		return nil, err
	}

	plan, _ := v.(*RoutePlan)
	return plan, nil
}

// FetchMissing resolves plans for all given flight ids concurrently. Each
// fetch settles independently; a failure records a nil plan for that id and
// never aborts siblings. Settled results are streamed to onResult (if set)
// as they arrive, and the call returns only once every fetch has settled.
func (c *PlanCache) FetchMissing(ctx context.Context, flightIDs []string, fetcher RoutePlanFetcher, onResult func(flightID string, plan *RoutePlan)) map[string]*RoutePlan {
	unique := dedupeIDs(flightIDs)

	results := make(map[string]*RoutePlan, len(unique))
	var mu sync.Mutex
	var wg sync.WaitGroup

	start := time.Now()
	for _, id := range unique {
		wg.Add(1)
		go func(flightID string) {
			defer wg.Done()

			plan, err := c.GetOrFetch(ctx, flightID, fetcher)
			if err != nil {
				plan = nil
			}

			mu.Lock()
			results[flightID] = plan
			mu.Unlock()

			if onResult != nil {
				onResult(flightID, plan)
			}
		}(id)
	}
	wg.Wait()

	c.logger.Debug("Plan batch fetch completed",
		logger.Int("requested", len(flightIDs)),
		logger.Int("unique", len(unique)),
		logger.Duration("duration", time.Since(start)))

	return results
}

// Len returns the number of currently cached plans
func (c *PlanCache) Len() int {
	return c.cache.Len()
}

// Purge drops all cached plans
func (c *PlanCache) Purge() {
	c.cache.Purge()
}

// dedupeIDs removes duplicate flight ids, preserving first-seen order
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
