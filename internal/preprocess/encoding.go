package preprocess

import (
	"sort"
	"strconv"
)

// UnknownCategoryCode is substituted for values an encoder never saw.
const UnknownCategoryCode = 0

// EncodingTable maps each categorical attribute to its value codes.
type EncodingTable map[string]map[string]int

// FitEncodingTable assigns codes 0..n-1 to the distinct values of each
// attribute present in the dataset, in sorted order. Columns made entirely of
// numbers sort numerically, everything else lexically.
func FitEncodingTable(ds *ReferenceDataset, attributes []string) EncodingTable {
	table := make(EncodingTable, len(attributes))
	for _, attr := range attributes {
		values, ok := ds.Column(attr)
		if !ok || len(values) == 0 {
			continue
		}
		table[attr] = encodeSorted(values)
	}
	return table
}

func encodeSorted(values []string) map[string]int {
	seen := make(map[string]struct{}, len(values))
	distinct := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}

	if allNumeric(distinct) {
		sort.Slice(distinct, func(i, j int) bool {
			a, _ := strconv.ParseFloat(distinct[i], 64)
			b, _ := strconv.ParseFloat(distinct[j], 64)
			return a < b
		})
	} else {
		sort.Strings(distinct)
	}

	codes := make(map[string]int, len(distinct))
	for i, v := range distinct {
		codes[v] = i
	}
	return codes
}

func allNumeric(values []string) bool {
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}

// Has reports whether attr has a fitted encoder.
func (t EncodingTable) Has(attr string) bool {
	_, ok := t[attr]
	return ok
}

// Encode returns the code for value. Unknown values yield
// UnknownCategoryCode. The boolean is false when attr has no encoder.
func (t EncodingTable) Encode(attr, value string) (int, bool) {
	codes, ok := t[attr]
	if !ok {
		return 0, false
	}
	code, known := codes[value]
	if !known {
		return UnknownCategoryCode, true
	}
	return code, true
}

// Categories returns the known values of attr ordered by code.
func (t EncodingTable) Categories(attr string) []string {
	codes := t[attr]
	out := make([]string, len(codes))
	for v, code := range codes {
		out[code] = v
	}
	return out
}
