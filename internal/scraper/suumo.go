package scraper

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ymurakami/suumowatcher/helpers"
	"ymurakami/suumowatcher/logger"
	apperrors "ymurakami/suumowatcher/pkg/errors"
	"ymurakami/suumowatcher/services/cache"
)

const (
	defaultSearchURL = "https://suumo.jp/jj/chintai/ichiran/FR301FC001/"
	defaultPageDelay = 2 * time.Second
	defaultBlockTime = 10 * time.Minute

	blockCacheKey = "suumo_rate_limited"
)

// SuumoConfig contains configuration for a SuumoScraper
type SuumoConfig struct {
	SearchURL string
	PageDelay time.Duration
	BlockTime time.Duration
}

// SuumoScraper drives the paginated fetch loop against the listing site:
// build URL, GET, extract, decide whether to continue, wait. All terminal
// conditions degrade to partial results instead of failing the run.
type SuumoScraper struct {
	searchURL string
	siteRoot  *url.URL
	cacheSvc  cache.CacheService
	blockTime time.Duration
	pageDelay time.Duration
	fetchFunc func(url string) (io.Reader, error)
	log       *logger.Logger
}

// NewSuumoScraper creates a new scraper. cacheSvc holds the rate-limit
// block key consulted before the first fetch of a run; it may be nil.
func NewSuumoScraper(cfg SuumoConfig, cacheSvc cache.CacheService) (*SuumoScraper, error) {
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if cfg.PageDelay == 0 {
		cfg.PageDelay = defaultPageDelay
	}
	if cfg.BlockTime == 0 {
		cfg.BlockTime = defaultBlockTime
	}

	root, err := url.Parse(cfg.SearchURL)
	if err != nil {
		return nil, apperrors.NewConfiguration("invalid search URL: "+cfg.SearchURL, err)
	}

	return &SuumoScraper{
		searchURL: cfg.SearchURL,
		siteRoot:  root,
		cacheSvc:  cacheSvc,
		blockTime: cfg.BlockTime,
		pageDelay: cfg.PageDelay,
		fetchFunc: helpers.FetchWithBrowserHeaders,
		log:       logger.ForComponent("scraper"),
	}, nil
}

// GetName returns the scraper name
func (s *SuumoScraper) GetName() string {
	return "SuumoScraper"
}

// Scrape fetches result pages for the criterion until a terminal
// condition: unfetchable/empty page, zero extracted listings, or no "next
// page" link. Listings are returned in fetch order; duplicates across
// pages are possible and left for the store to collapse. The context is
// only examined between page fetches.
func (s *SuumoScraper) Scrape(ctx context.Context, criterion Criterion) ([]Listing, error) {
	log := s.log.WithField("criterion", criterion.Name)

	if s.blocked() {
		return nil, apperrors.NewRateLimit(s.GetName(), "")
	}

	var listings []Listing

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return listings, err
		}

		pageURL := s.buildURL(criterion, page)
		log.Debug().Int("page", page).Str("url", pageURL).Msg("Fetching page")

		body, err := s.fetchFunc(pageURL)
		if err != nil {
			if apperrors.IsRateLimit(err) {
				s.block()
			}
			log.Warn().Err(err).Int("page", page).Msg("Fetch failed; keeping partial results")
			break
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("Markup unparsable; keeping partial results")
			break
		}

		pageListings := s.parsePage(doc)
		listings = append(listings, pageListings...)

		log.Info().Int("page", page).Int("count", len(pageListings)).Msg("Extracted page")

		if len(pageListings) == 0 || !hasNextPage(doc) {
			break
		}

		// Politeness delay toward the site, only when another fetch
		// will actually happen.
		select {
		case <-ctx.Done():
			return listings, ctx.Err()
		case <-time.After(s.pageDelay):
		}
	}

	return listings, nil
}

// buildURL builds the search URL for one page of one criterion.
func (s *SuumoScraper) buildURL(criterion Criterion, page int) string {
	return s.searchURL + "?" + criterion.QueryParams(page).Encode()
}

// blocked reports whether a previous run was rate limited and the block
// has not expired yet.
func (s *SuumoScraper) blocked() bool {
	if s.cacheSvc == nil {
		return false
	}
	_, err := s.cacheSvc.Get(blockCacheKey)
	return err == nil
}

// block records a rate limit so subsequent runs back off for blockTime.
func (s *SuumoScraper) block() {
	if s.cacheSvc == nil {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(s.blockTime.Seconds())))
	if err := s.cacheSvc.Set(blockCacheKey, value, s.blockTime); err != nil {
		s.log.Warn().Err(err).Msg("Failed to set rate limit block key")
	}
}
