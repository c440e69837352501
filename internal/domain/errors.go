package domain

import "errors"

// Sentinel errors for synchronizer operations
var (
	// ErrUnauthenticated indicates sync was invoked without valid credentials
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrAuthFailed indicates the portal rejected the current token
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrServerOffline indicates the portal proxy is unreachable
	ErrServerOffline = errors.New("portal is unreachable")

	// ErrFetchFailed indicates the remote fetch failed and no cached
	// snapshot was available to fall back on
	ErrFetchFailed = errors.New("fetch failed")
)
