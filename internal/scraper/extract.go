package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

// Field extractors are pure best-effort parsers: raw text fragment in,
// typed value out, zero value when nothing matches. They never fail and
// never look at each other's input, so a malformed fragment for one field
// cannot poison another.
var (
	rentPattern      = regexp.MustCompile(`([0-9.]+)万円`)
	feePattern       = regexp.MustCompile(`([0-9,]+)円`)
	sizePattern      = regexp.MustCompile(`([0-9.]+)m`)
	agePattern       = regexp.MustCompile(`築([0-9]+)年`)
	stationPattern   = regexp.MustCompile(`(.+?)駅`)
	walkPattern      = regexp.MustCompile(`歩([0-9]+)分`)
	listingIDPattern = regexp.MustCompile(`jnc_([0-9]+)`)
)

// ExtractRent parses a rent fragment like "8.3万円" into whole man-yen.
func ExtractRent(text string) int {
	m := rentPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return int(v)
}

// ExtractManagementFee parses a fee fragment like "12,000円" into yen.
func ExtractManagementFee(text string) int {
	m := feePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return v
}

// ExtractDeposit parses a deposit fragment in man-yen. The site renders
// "no deposit" as a literal "-" which short-circuits to zero.
func ExtractDeposit(text string) int {
	if strings.TrimSpace(text) == "-" {
		return 0
	}
	return ExtractRent(text)
}

// ExtractKeyMoney parses a key money fragment in man-yen, with the same
// "-" marker handling as deposits.
func ExtractKeyMoney(text string) int {
	if strings.TrimSpace(text) == "-" {
		return 0
	}
	return ExtractRent(text)
}

// ExtractSize parses a floor area fragment like "25.5m²" into square meters.
func ExtractSize(text string) float64 {
	m := sizePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0.0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0.0
	}
	return v
}

// ExtractAge parses a building age fragment like "築12年" into years.
func ExtractAge(text string) int {
	m := agePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

// ExtractStationInfo pulls the nearest station name and walk minutes out
// of an access fragment like "山手線/渋谷駅 歩8分". The two patterns are
// applied independently, so a missing walk marker still yields the station.
func ExtractStationInfo(text string) (string, int) {
	station := ""
	if m := stationPattern.FindStringSubmatch(text); len(m) > 1 {
		station = strings.TrimSpace(m[1])
	}

	minutes := 0
	if m := walkPattern.FindStringSubmatch(text); len(m) > 1 {
		if v, err := strconv.Atoi(m[1]); err == nil {
			minutes = v
		}
	}

	return station, minutes
}

// ExtractListingID pulls the numeric listing identifier out of a detail
// page URL, e.g. ".../chintai/jnc_000012345678/" -> "000012345678".
func ExtractListingID(url string) string {
	m := listingIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
