package notifier

import (
	"ymurakami/suumowatcher/internal/scraper"
)

// Notifier delivers newly discovered listings to an outbound channel.
// Delivery is best-effort: callers log a returned error and move on, and a
// failed notification never blocks committing the listings as seen.
type Notifier interface {
	// Notify sends newListings for the named criterion. Zero listings is
	// a no-op.
	Notify(newListings []scraper.Listing, criterionName string) error

	// Close closes the notifier connection
	Close() error
}
