package common

// RequestIDHeader carries the per-request correlation id on HTTP responses.
// An incoming value is reused when present.
const RequestIDHeader = "X-Request-ID"

// IDBytes is the number of random bytes behind a user id; hex encoding
// doubles it to the 24 characters the identifier check expects.
const IDBytes = 12
