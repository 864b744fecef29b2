package faresweep

import "errors"

var (
	// ErrAuth indicates the credential could not be obtained.
	ErrAuth = errors.New("authentication failed")

	// ErrFetchFailed indicates a request failed permanently, either because
	// the retry budget was exhausted or because the server answered with a
	// non-retryable client error.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrMalformedOffer indicates a response document without a usable
	// top-level offer list.
	ErrMalformedOffer = errors.New("malformed offer document")
)
