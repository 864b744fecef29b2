package faresweep

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"golang.org/x/net/proxy"
)

const (
	DefaultBaseURL = "https://test.api.amadeus.com"

	tokenPath  = "/v1/security/oauth2/token"
	offersPath = "/v2/shopping/flight-offers"

	defaultMaxAttempts     = 3
	defaultBackoffInterval = time.Second
	defaultPaceInterval    = 100 * time.Millisecond
)

// Response is an immutable snapshot of a completed request, safe to hand out
// from the cache any number of times.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client talks to the flight-offers API. All requests share one underlying
// transport so connections are reused across the whole sweep.
type Client struct {
	httpClient *http.Client
	log        *log.Logger
	baseURL    string
	token      string

	maxAttempts       int
	backoffInterval   time.Duration
	retryServerErrors bool
	paceInterval      time.Duration
	sleep             func(time.Duration)
}

func NewClient(baseURL, token string, logger *log.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = proxy.Dial
	httpClient := &http.Client{Transport: transport, Timeout: time.Second * 15}

	return &Client{
		httpClient:        httpClient,
		log:               logger,
		baseURL:           baseURL,
		token:             token,
		maxAttempts:       defaultMaxAttempts,
		backoffInterval:   defaultBackoffInterval,
		retryServerErrors: true,
		paceInterval:      defaultPaceInterval,
		sleep:             time.Sleep,
	}
}

// SetRetryPolicy overrides the retry budget and the initial backoff
// interval. maxAttempts counts the first try.
func (c *Client) SetRetryPolicy(maxAttempts int, interval time.Duration) {
	c.maxAttempts = maxAttempts
	c.backoffInterval = interval
}

// SetRetryServerErrors controls whether 5xx responses count as transient.
// When disabled they fail immediately like client errors.
func (c *Client) SetRetryServerErrors(retry bool) {
	c.retryServerErrors = retry
}

// SetPaceInterval overrides the delay inserted after paced responses.
func (c *Client) SetPaceInterval(interval time.Duration) {
	c.paceInterval = interval
}

// OffersURL builds the flight-offers request URL for a single departure day.
// url.Values encodes parameters in sorted order, so the same search always
// yields the same URL and therefore the same cache key.
func (c *Client) OffersURL(origin, destination, departureDate, currencyCode string) string {
	parameters := url.Values{}
	parameters.Set("originLocationCode", origin)
	parameters.Set("destinationLocationCode", destination)
	parameters.Set("departureDate", departureDate)
	parameters.Set("nonStop", "true")
	parameters.Set("adults", "1")
	parameters.Set("currencyCode", currencyCode)

	return c.baseURL + offersPath + "?" + parameters.Encode()
}

// Get performs a GET with the bearer credential, retrying transport errors
// and server errors with exponential backoff. Client errors (4xx) are never
// retried. When pace is true, a short delay follows a successful response to
// stay under the upstream rate limit.
func (c *Client) Get(ctx context.Context, u string, pace bool) (Response, error) {
	boff := backoff.NewExponentialBackOff()
	boff.InitialInterval = c.backoffInterval
	boff.Multiplier = 2
	boff.RandomizationFactor = 0
	boff.Reset()

	c.log.Debug("GET", "url", u, "pace", pace)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			boffDuration := boff.NextBackOff()
			c.log.Debug("backoff retry", "attempt", attempt, "wait", boffDuration)
			c.sleep(boffDuration)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return Response{}, fmt.Errorf("could not create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError && c.retryServerErrors {
			lastErr = fmt.Errorf("GET %s: %s", u, resp.Status)
			continue
		}

		if resp.StatusCode >= http.StatusBadRequest {
			return Response{}, fmt.Errorf("%w: GET %s: %s", ErrFetchFailed, u, resp.Status)
		}

		if pace {
			c.sleep(c.paceInterval)
		}

		return Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
	}

	return Response{}, fmt.Errorf("%w: %d attempts: %v", ErrFetchFailed, c.maxAttempts, lastErr)
}
