package exchange

import (
	"strings"
)

// UpperCaseSymbols canonicalizes venue symbols that are case-insensitive on the
// wire but upper-case in payloads. Order and duplicates are kept; nil stays nil
// so "all symbols" survives the round trip.
func UpperCaseSymbols(symbols []string) []string {
	if symbols == nil {
		return nil
	}
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

// NormalizeSymbols upper-cases symbols and drops blanks and duplicates.
// Used for operator configuration where a symbol set, not a list, is meant.
func NormalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
