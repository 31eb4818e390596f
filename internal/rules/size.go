package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tidyd/internal/errors"
)

// sizePattern splits a threshold like "200m" into its numeric part and
// its unit suffix. Units are at most two characters.
const sizePattern = `^(?P<size>\d+)(?P<units>\w{0,2})$`

// unitMultipliers maps unit suffixes to their byte multipliers.
// Bare numbers and "b" mean bytes; the rest are binary multiples.
var unitMultipliers = map[string]int64{
	"":   1,
	"b":  1,
	"k":  1 << 10,
	"kb": 1 << 10,
	"m":  1 << 20,
	"mb": 1 << 20,
	"g":  1 << 30,
	"gb": 1 << 30,
	"t":  1 << 40,
	"tb": 1 << 40,
}

// SizeMatcher parses size thresholds and compares file sizes against them.
type SizeMatcher struct {
	re *regexp.Regexp
}

// NewSizeMatcher creates a size matcher with the threshold grammar compiled.
func NewSizeMatcher() (*SizeMatcher, error) {
	re, err := regexp.Compile(sizePattern)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile size pattern")
	}
	return &SizeMatcher{re: re}, nil
}

// ParseThreshold converts a threshold string like "500", "10k" or "2gb"
// into a byte count. Unit suffixes are case-insensitive.
func (m *SizeMatcher) ParseThreshold(threshold string) (int64, error) {
	match := m.re.FindStringSubmatch(strings.TrimSpace(threshold))
	if match == nil {
		return 0, errors.NewRuleError(
			fmt.Sprintf("invalid size threshold %q", threshold),
			threshold, errors.InvalidRule, nil)
	}

	size := match[m.re.SubexpIndex("size")]
	units := strings.ToLower(match[m.re.SubexpIndex("units")])

	multiplier, ok := unitMultipliers[units]
	if !ok {
		return 0, errors.NewRuleError(
			fmt.Sprintf("unknown size unit %q", units),
			threshold, errors.UnknownSizeUnit, nil)
	}

	n, err := strconv.ParseInt(size, 10, 64)
	if err != nil {
		return 0, errors.NewRuleError(
			fmt.Sprintf("invalid size threshold %q", threshold),
			threshold, errors.InvalidRule, err)
	}

	return n * multiplier, nil
}

// Exceeds reports whether fileSize is strictly greater than the parsed
// threshold. A file exactly at the threshold does not pass.
func (m *SizeMatcher) Exceeds(fileSize int64, threshold string) (bool, error) {
	limit, err := m.ParseThreshold(threshold)
	if err != nil {
		return false, err
	}
	return fileSize > limit, nil
}
