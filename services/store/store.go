package store

import (
	"ymurakami/suumowatcher/internal/scraper"
)

// ListingStore persists previously-seen listings, partitioned by criterion
// name. Partitions are append-only except that merges collapse duplicate
// detail URLs.
type ListingStore interface {
	// Load returns every listing recorded for the criterion. Missing or
	// unreadable history yields an empty slice, not an error.
	Load(criterionName string) ([]scraper.Listing, error)

	// Merge folds newListings into the criterion's partition,
	// deduplicating by detail URL with last-seen wins, and persists the
	// result atomically with respect to partial writes.
	Merge(criterionName string, newListings []scraper.Listing) error

	// Close releases any underlying resources
	Close() error
}
