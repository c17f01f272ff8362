package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	apperrors "ymurakami/suumowatcher/pkg/errors"
)

// building holds the block-level fields shared by every unit row inside
// one listing block (one block = one building).
type building struct {
	name        string
	address     string
	station     string
	walkMinutes int
	ageYears    int
	imageURL    string
}

// parsePage extracts all listings from one result page, in page order:
// block order, then row order within each block. A block with no unit rows
// yields nothing; a failing unit row is skipped with a warning and never
// aborts its siblings.
func (s *SuumoScraper) parsePage(doc *goquery.Document) []Listing {
	now := time.Now().UnixMilli()
	var listings []Listing

	doc.Find("div.cassetteitem").Each(func(_ int, block *goquery.Selection) {
		b := s.parseBuilding(block)

		block.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			listing, err := s.parseUnitRow(b, row, now)
			if err != nil {
				s.log.Warn().Err(err).Str("building", b.name).Msg("Skipping unit row")
				return
			}
			if listing != nil {
				listings = append(listings, *listing)
			}
		})
	})

	return listings
}

// parseBuilding extracts the block-level fields once per block.
func (s *SuumoScraper) parseBuilding(block *goquery.Selection) building {
	stationText := block.Find("li.cassetteitem_detail-col2").First().Text()
	station, walkMinutes := ExtractStationInfo(stationText)

	return building{
		name:        strings.TrimSpace(block.Find("div.cassetteitem_content-title").Text()),
		address:     strings.TrimSpace(block.Find("li.cassetteitem_detail-col1").Text()),
		station:     station,
		walkMinutes: walkMinutes,
		ageYears:    ExtractAge(block.Find("li.cassetteitem_detail-col3").Text()),
		imageURL:    s.resolveURL(block.Find("div.cassetteitem_object-item img").AttrOr("src", "")),
	}
}

// parseUnitRow combines block-level fields with one unit row. Rows without
// any cells (spacers, headers) are silently dropped.
func (s *SuumoScraper) parseUnitRow(b building, row *goquery.Selection, now int64) (*Listing, error) {
	if row.Find("td").Length() == 0 {
		return nil, nil
	}

	detailHref := row.Find("td.cassetteitem_other a").AttrOr("href", "")
	detailURL, err := s.absoluteURL(detailHref)
	if err != nil {
		return nil, apperrors.NewParsing(s.GetName(), "bad detail link: "+detailHref, err)
	}

	return &Listing{
		ID:            ExtractListingID(detailURL),
		Name:          b.name,
		Address:       b.address,
		Station:       b.station,
		WalkMinutes:   b.walkMinutes,
		Rent:          ExtractRent(row.Find("span.cassetteitem_other-emphasis").Text()),
		ManagementFee: ExtractManagementFee(row.Find("span.cassetteitem_price--administration").Text()),
		Deposit:       ExtractDeposit(row.Find("span.cassetteitem_price--deposit").Text()),
		KeyMoney:      ExtractKeyMoney(row.Find("span.cassetteitem_price--gratuity").Text()),
		Layout:        strings.TrimSpace(row.Find("span.cassetteitem_madori").Text()),
		Size:          ExtractSize(row.Find("span.cassetteitem_menseki").Text()),
		AgeYears:      b.ageYears,
		Floor:         strings.TrimSpace(row.Find("td.cassetteitem_other-floor").Text()),
		URL:           detailURL,
		ImageURL:      b.imageURL,
		UpdatedAt:     now,
	}, nil
}

// hasNextPage reports whether the page carries the "next page" navigation
// link. Its absence is a terminal pagination condition.
func hasNextPage(doc *goquery.Document) bool {
	found := false
	doc.Find("div.pagination p.pagination-parts a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(a.Text(), "次へ") {
			found = true
			return false
		}
		return true
	})
	return found
}

// resolveURL is the tolerant variant of absoluteURL for non-identity
// fields: on failure it returns "" instead of an error.
func (s *SuumoScraper) resolveURL(href string) string {
	resolved, err := s.absoluteURL(href)
	if err != nil {
		return ""
	}
	return resolved
}

// absoluteURL resolves an href against the site root.
func (s *SuumoScraper) absoluteURL(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return s.siteRoot.ResolveReference(ref).String(), nil
}
