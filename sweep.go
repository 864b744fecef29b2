package faresweep

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/fabianMendez/faresweep/pkg/date"
)

// maxConcurrentSweeps bounds in-flight work when sweeping several routes at
// once, so one credential never hammers the upstream API.
const maxConcurrentSweeps = 4

// Sweeper drives day-by-day searches through the cache. Within one route the
// sweep is strictly sequential: pacing decisions depend on iteration order.
type Sweeper struct {
	client   *Client
	cache    *Cache
	log      *log.Logger
	currency string
}

func NewSweeper(client *Client, cache *Cache, currencyCode string, logger *log.Logger) *Sweeper {
	return &Sweeper{
		client:   client,
		cache:    cache,
		log:      logger,
		currency: currencyCode,
	}
}

// Sweep issues one request per calendar day in [start, start+days) in
// ascending order and returns the flattened records of every day. Any day
// failing aborts the whole sweep: no partial results are returned.
//
// Every request after the first for a given URL is served from the cache.
// Pacing applies only to actual network calls, and never to the final
// request of the sweep.
func (s *Sweeper) Sweep(ctx context.Context, origin, destination string, start time.Time, days int) ([]Record, error) {
	window := date.NewWindow(start, days)

	var records []Record
	for _, day := range window.Days() {
		u := s.client.OffersURL(origin, destination, date.Format(day), s.currency)
		pace := !window.Last(day)

		resp, err := s.cache.GetOrFetch(u, func() (Response, error) {
			return s.client.Get(ctx, u, pace)
		})
		if err != nil {
			return nil, err
		}

		recs, err := ParseOffers(resp.Body)
		if err != nil {
			return nil, err
		}

		s.log.Debug("day swept", "origin", origin, "destination", destination,
			"date", date.Format(day), "records", len(recs))
		records = append(records, recs...)
	}

	return records, nil
}

// SweepRoutes sweeps several routes over the same window, a few at a time.
// The cache is shared, so overlapping routes never fetch a URL twice even
// when their sweeps run concurrently. Record order is not deterministic
// here; sorting is the assembler's job.
func (s *Sweeper) SweepRoutes(ctx context.Context, routes []Route, start time.Time, days int) ([]Record, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSweeps)

	var mu sync.Mutex
	var all []Record

	for _, route := range routes {
		g.Go(func() error {
			records, err := s.Sweep(ctx, route.Origin, route.Destination, start, days)
			if err != nil {
				return err
			}

			mu.Lock()
			all = append(all, records...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return all, nil
}
