package model

// TimeMapping pairs a regular class slot with its Ramadan counterpart.
type TimeMapping struct {
	Before TimeRange
	During TimeRange
}

// MatchKind reports how an entry was matched against the mapping table.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)
