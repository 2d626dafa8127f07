package table

import (
	"math"
	"strconv"
	"strings"
)

// nullTokens are cell contents read as missing values.
var nullTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"nan":  {},
	"none": {},
	"-":    {},
}

func isNullToken(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseNumber parses a locale-formatted number such as "1,234.5", "1.234,5",
// "12.5%" or "2 382 750 000". A zero separator means auto-detect.
func ParseNumber(s string, decimal, thousands rune) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec, thou := decimal, thousands
	if dec == 0 {
		dec, thou = detectSeparators(raw, thou)
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' ', '\''} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// detectSeparators picks the decimal separator for a single value. When both
// ',' and '.' appear the last one is the decimal mark. A lone comma followed by
// exactly three digits, or repeated commas, are read as grouping.
func detectSeparators(raw string, thou rune) (dec, thousands rune) {
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			return ',', '.'
		}
		return '.', ','
	case cpos >= 0:
		if strings.Count(raw, ",") > 1 || len(raw)-cpos-1 == 3 {
			return '.', ','
		}
		return ',', thou
	case dpos >= 0 && strings.Count(raw, ".") > 1:
		return ',', '.'
	default:
		return '.', thou
	}
}
