package faresweep

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offerBody(total, currency string) string {
	return fmt.Sprintf(`{
	  "data": [{
	    "price": {"total": %q, "currency": %q},
	    "itineraries": [{"segments": [{
	      "carrierCode": "BA",
	      "departure": {"iataCode": "JFK", "terminal": "7", "at": "2024-06-01T18:30:00"},
	      "arrival": {"iataCode": "LHR", "at": "2024-06-02T06:25:00"}
	    }]}]
	  }],
	  "dictionaries": {"carriers": {"BA": "BRITISH AIRWAYS"}}
	}`, total, currency)
}

// sweepServer records the departureDate of every request it serves.
type sweepServer struct {
	*httptest.Server

	mu    sync.Mutex
	dates []string
}

func newSweepServer(respond func(departureDate string) (int, string)) *sweepServer {
	ss := &sweepServer{}
	ss.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		day := r.URL.Query().Get("departureDate")

		ss.mu.Lock()
		ss.dates = append(ss.dates, day)
		ss.mu.Unlock()

		status, body := respond(day)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	return ss
}

func (ss *sweepServer) requested() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.dates...)
}

func TestSweepOneRequestPerDayInOrder(t *testing.T) {
	srv := newSweepServer(func(string) (int, string) {
		return http.StatusOK, `{"data": []}`
	})
	defer srv.Close()

	client, slept := testClient(srv.Server)
	sweeper := NewSweeper(client, NewCache(), "EUR", testLogger())

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	records, err := sweeper.Sweep(context.Background(), "JFK", "LHR", start, 3)
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, srv.requested())
	// paced after every response except the last one
	assert.Equal(t, []time.Duration{defaultPaceInterval, defaultPaceInterval}, slept.all())
}

func TestSweepAbortsOnFailedDay(t *testing.T) {
	srv := newSweepServer(func(day string) (int, string) {
		if day == "2024-06-02" {
			return http.StatusInternalServerError, ""
		}
		return http.StatusOK, offerBody("100.00", "EUR")
	})
	defer srv.Close()

	client, _ := testClient(srv.Server)
	client.SetRetryPolicy(1, time.Second)
	sweeper := NewSweeper(client, NewCache(), "EUR", testLogger())

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	records, err := sweeper.Sweep(context.Background(), "JFK", "LHR", start, 5)

	require.ErrorIs(t, err, ErrFetchFailed)
	// all-or-nothing: day 1 succeeded but no partial results come back
	assert.Nil(t, records)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02"}, srv.requested())
}

func TestSweepServesRepeatsFromCache(t *testing.T) {
	srv := newSweepServer(func(string) (int, string) {
		return http.StatusOK, offerBody("100.00", "EUR")
	})
	defer srv.Close()

	client, slept := testClient(srv.Server)
	cache := NewCache()
	sweeper := NewSweeper(client, cache, "EUR", testLogger())

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	first, err := sweeper.Sweep(context.Background(), "JFK", "LHR", start, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.Len(t, srv.requested(), 3)

	slept.reset()
	second, err := sweeper.Sweep(context.Background(), "JFK", "LHR", start, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// no network calls and no pacing on cache hits
	assert.Len(t, srv.requested(), 3)
	assert.Empty(t, slept.all())
}

func TestSweepMalformedResponseAborts(t *testing.T) {
	srv := newSweepServer(func(string) (int, string) {
		return http.StatusOK, `{"dictionaries": {}}`
	})
	defer srv.Close()

	client, _ := testClient(srv.Server)
	sweeper := NewSweeper(client, NewCache(), "EUR", testLogger())

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	_, err := sweeper.Sweep(context.Background(), "JFK", "LHR", start, 1)

	require.ErrorIs(t, err, ErrMalformedOffer)
}

func TestSweepTwoDayExample(t *testing.T) {
	srv := newSweepServer(func(day string) (int, string) {
		if day == "2024-06-01" {
			return http.StatusOK, offerBody("450.00", "EUR")
		}
		return http.StatusOK, `{"data": []}`
	})
	defer srv.Close()

	client, _ := testClient(srv.Server)
	sweeper := NewSweeper(client, NewCache(), "EUR", testLogger())

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	records, err := sweeper.Sweep(context.Background(), "JFK", "LHR", start, 2)
	require.NoError(t, err)

	table := NewTable(records)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, []string{"airline", "departure", "t_from", "arrival", "t_to", "price_eur"}, table.Columns())
	assert.Equal(t, []string{"BRITISH AIRWAYS", "2024-06-01T18:30:00", "7", "2024-06-02T06:25:00", "0", "450.00"}, table.Row(0))
}

func TestSweepRoutesSharesCache(t *testing.T) {
	srv := newSweepServer(func(string) (int, string) {
		return http.StatusOK, offerBody("100.00", "EUR")
	})
	defer srv.Close()

	client, _ := testClient(srv.Server)
	sweeper := NewSweeper(client, NewCache(), "EUR", testLogger())

	routes := []Route{
		{Origin: "JFK", Destination: "LHR"},
		{Origin: "JFK", Destination: "LHR"},
	}

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	records, err := sweeper.SweepRoutes(context.Background(), routes, start, 2)
	require.NoError(t, err)

	// both sweeps see every day, but each URL is fetched once
	assert.Len(t, records, 4)
	assert.Len(t, srv.requested(), 2)
}
