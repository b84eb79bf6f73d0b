package reasoning

import "errors"

var (
	// ErrUpstreamStatus indicates the provider answered with a non-2xx status
	ErrUpstreamStatus = errors.New("reasoning provider returned error status")

	// ErrEmptyResponse indicates the provider answered without any content
	ErrEmptyResponse = errors.New("reasoning provider returned empty response")

	// ErrCircuitOpen indicates calls are being short-circuited after repeated failures
	ErrCircuitOpen = errors.New("reasoning circuit breaker open")

	// ErrTimeout indicates the call exceeded its deadline
	ErrTimeout = errors.New("reasoning request timeout")

	// ErrMalformedOutput indicates the response could not be decoded into the
	// expected structure. It is never retried.
	ErrMalformedOutput = errors.New("malformed structured output")
)
