package model

// Stats are aggregate conversion counters since the counters were created.
type Stats struct {
	Attempts         int64
	Successes        int64
	Failures         int64
	EntriesExtracted int64
	Converted        int64
	Unmapped         int64
}

// SuccessRate is the percentage of successful attempts, 0 when there were none.
func (s Stats) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Attempts) * 100
}

// AverageEntries is the mean number of extracted entries per successful attempt.
func (s Stats) AverageEntries() float64 {
	if s.Successes == 0 {
		return 0
	}
	return float64(s.EntriesExtracted) / float64(s.Successes)
}
