package scraper

import "context"

// Listing represents one rentable unit discovered on the listing site.
// Monetary fields stay in the site's native units: rent, deposit and key
// money in man-yen, management fee in yen. The detail URL is the identity
// key; two listings with the same URL are the same real-world listing.
type Listing struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Station       string  `json:"station"`
	WalkMinutes   int     `json:"walkMinutes"`
	Rent          int     `json:"rent"`
	ManagementFee int     `json:"managementFee"`
	Deposit       int     `json:"deposit"`
	KeyMoney      int     `json:"keyMoney"`
	Layout        string  `json:"layout"`
	Size          float64 `json:"size"`
	AgeYears      int     `json:"ageYears"`
	Floor         string  `json:"floor"`
	URL           string  `json:"url"`
	ImageURL      string  `json:"imageUrl"`
	UpdatedAt     int64   `json:"updatedAt"`
}

// Scraper fetches all current listings matching one search criterion.
// Implementations return whatever was collected before a terminal
// condition; a fetch failure mid-run yields partial results, not an error.
type Scraper interface {
	Scrape(ctx context.Context, criterion Criterion) ([]Listing, error)

	// GetName returns the scraper's name for logging and identification
	GetName() string
}
