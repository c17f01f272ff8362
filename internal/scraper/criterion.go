package scraper

import (
	"fmt"
	"net/url"
	"strconv"
)

// Criterion is an immutable description of what to look for. Name doubles
// as the store partition key. Zero-valued optional fields emit no query
// key at all.
type Criterion struct {
	Name            string            `json:"name" yaml:"name"`
	Prefecture      string            `json:"prefecture" yaml:"prefecture"`
	City            string            `json:"city,omitempty" yaml:"city,omitempty"`
	District        string            `json:"district,omitempty" yaml:"district,omitempty"`
	MinRent         int               `json:"minRent,omitempty" yaml:"minRent,omitempty"`
	MaxRent         int               `json:"maxRent,omitempty" yaml:"maxRent,omitempty"`
	Layouts         []string          `json:"layouts,omitempty" yaml:"layouts,omitempty"`
	MaxWalkMinutes  int               `json:"maxWalkMinutes,omitempty" yaml:"maxWalkMinutes,omitempty"`
	MaxAgeYears     int               `json:"maxAgeYears,omitempty" yaml:"maxAgeYears,omitempty"`
	HasParking      bool              `json:"hasParking,omitempty" yaml:"hasParking,omitempty"`
	PetsAllowed     bool              `json:"petsAllowed,omitempty" yaml:"petsAllowed,omitempty"`
	OtherConditions map[string]string `json:"otherConditions,omitempty" yaml:"otherConditions,omitempty"`
}

// defaultAreaCode is used for prefectures missing from the lookup table.
// The site's code space is not fully mapped; falling back keeps a criterion
// usable rather than failing the whole run.
const defaultAreaCode = "030"

// PrefectureCodes maps prefecture names to the site's area codes. Exported
// as a var so integrators can extend the table without patching.
var PrefectureCodes = map[string]string{
	"東京都":  "030",
	"神奈川県": "040",
	"埼玉県":  "050",
	"千葉県":  "060",
	"大阪府":  "070",
	"京都府":  "080",
	"兵庫県":  "090",
}

// QueryParams converts the criterion into the site's query parameters for
// the given page. Page 1 carries no pagination key, matching the site's
// own convention. Entries from OtherConditions are merged last and may
// override any derived key.
func (c Criterion) QueryParams(page int) url.Values {
	params := url.Values{}

	params.Set("ar", prefectureCode(c.Prefecture))
	if c.City != "" {
		params.Set("bs", cityCode(c.Prefecture, c.City))
	}
	if c.District != "" {
		params.Set("ta", districtCode(c.Prefecture, c.City, c.District))
	}

	if c.MinRent > 0 {
		params.Set("cb", rentCode(c.MinRent))
	}
	if c.MaxRent > 0 {
		params.Set("ct", rentCode(c.MaxRent))
	}

	for i, layout := range c.Layouts {
		params.Set(fmt.Sprintf("md%d", i+1), layoutCode(layout))
	}

	if c.MaxWalkMinutes > 0 {
		params.Set("ts", walkMinutesCode(c.MaxWalkMinutes))
	}
	if c.MaxAgeYears > 0 {
		params.Set("kb", ageYearsCode(c.MaxAgeYears))
	}

	if c.HasParking {
		params.Set("kj", "9")
	}
	if c.PetsAllowed {
		params.Set("ks", "1")
	}

	// Results per page
	params.Set("pc", "50")

	if page > 1 {
		params.Set("pn", strconv.Itoa(page))
	}

	for k, v := range c.OtherConditions {
		params.Set(k, v)
	}

	return params
}

func prefectureCode(prefecture string) string {
	if code, ok := PrefectureCodes[prefecture]; ok {
		return code
	}
	return defaultAreaCode
}

// The remaining lookups are documented placeholders: the site's code
// tables for cities, districts, layouts, walk time and building age have
// not been mapped out. Integrators should replace these with real tables.
func cityCode(prefecture, city string) string { return "040" }

func districtCode(prefecture, city, district string) string { return "11217" }

func rentCode(rent int) string { return strconv.Itoa(rent) }

func layoutCode(layout string) string { return "1" }

func walkMinutesCode(minutes int) string { return "3" }

func ageYearsCode(years int) string { return "1" }
