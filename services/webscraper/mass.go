package webscraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// first run of digits/commas/dots immediately followed by the "kg" unit
var massKgRegex = regexp.MustCompile(`([0-9][0-9,.]*)\s*kg`)

// ParseMassKg extracts the numeric payload mass in kilograms from a raw
// mass string like "15,600 kg (34,000 lb)". No match yields NaN, never
// zero: downstream aggregates must treat the value as missing.
func ParseMassKg(text string) float64 {
	m := massKgRegex.FindStringSubmatch(text)
	if m == nil {
		return math.NaN()
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}
