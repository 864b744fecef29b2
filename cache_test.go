package faresweep

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheFetchesAtMostOncePerKey(t *testing.T) {
	cache := NewCache()

	var calls int32
	fetch := func() (Response, error) {
		atomic.AddInt32(&calls, 1)
		return Response{StatusCode: 200, Body: []byte("body")}, nil
	}

	first, err := cache.GetOrFetch("k", fetch)
	require.NoError(t, err)
	second, err := cache.GetOrFetch("k", fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheDistinctKeys(t *testing.T) {
	cache := NewCache()

	var calls int32
	fetch := func() (Response, error) {
		atomic.AddInt32(&calls, 1)
		return Response{StatusCode: 200}, nil
	}

	_, err := cache.GetOrFetch("a", fetch)
	require.NoError(t, err)
	_, err = cache.GetOrFetch("b", fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls)
	assert.Equal(t, 2, cache.Len())
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	cache := NewCache()

	var calls int32
	_, err := cache.GetOrFetch("k", func() (Response, error) {
		atomic.AddInt32(&calls, 1)
		return Response{}, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	resp, err := cache.GetOrFetch("k", func() (Response, error) {
		atomic.AddInt32(&calls, 1)
		return Response{Body: []byte("ok")}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
	assert.Equal(t, []byte("ok"), resp.Body)
}

func TestCacheSerializesConcurrentFetches(t *testing.T) {
	cache := NewCache()

	var calls int32
	fetch := func() (Response, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return Response{Body: []byte("shared")}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := cache.GetOrFetch("k", fetch)
			assert.NoError(t, err)
			assert.Equal(t, []byte("shared"), resp.Body)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls)
}
