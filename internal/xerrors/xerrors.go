// Package xerrors declares the sentinel error kinds surfaced across the
// toolkit. Callers use errors.Is to branch on kind; the wrapping message
// carries the operation-specific detail.
package xerrors

import "errors"

var (
	// ErrInvalidInput covers malformed bbox order, mismatched vector
	// lengths, and non-polygon geometry where a polygon is required.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyResponse is returned when a fetcher batch contains no
	// nodes and no ways.
	ErrEmptyResponse = errors.New("empty response: no nodes or ways")

	// ErrAlreadySimplified is returned when Simplify is called on a
	// graph whose graph-level simplified attribute is already true.
	ErrAlreadySimplified = errors.New("graph is already simplified")

	// ErrNoPath is returned when a route could not reach its
	// destination.
	ErrNoPath = errors.New("no path found")

	// ErrGeocodeMiss covers zero geocoder results, an out-of-range
	// result index, or no (multi)polygon among results when one is
	// required.
	ErrGeocodeMiss = errors.New("geocode miss")

	// ErrValidationFailed is returned when a graph or feature
	// collection fails the schema invariants in strict mode.
	ErrValidationFailed = errors.New("validation failed")

	// ErrGraphTooComplex is returned when a bounded internal walk
	// (e.g. simplification path tracing) hits its step cap, which
	// indicates malformed input rather than a legitimate long chain.
	ErrGraphTooComplex = errors.New("graph too complex for bounded operation")

	// ErrFetcherFailure wraps a collaborator (map service or gazetteer)
	// failure. The core neither retries nor masks it.
	ErrFetcherFailure = errors.New("fetcher failure")
)
