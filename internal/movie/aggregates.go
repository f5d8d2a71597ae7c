package movie

// Aggregates are the watched-list means. Derived on read, never stored.
type Aggregates struct {
	Count              int
	AvgCommunityRating float64
	AvgUserRating      float64
	AvgRuntime         float64
}

// Summarize computes the watched-list means. Each mean is 0 for an empty list.
func Summarize(entries []WatchedEntry) Aggregates {
	agg := Aggregates{Count: len(entries)}
	if len(entries) == 0 {
		return agg
	}

	var community, user, runtime float64
	for _, e := range entries {
		community += e.CommunityRating
		user += float64(e.UserRating)
		runtime += float64(e.RuntimeMinutes)
	}

	n := float64(len(entries))
	agg.AvgCommunityRating = community / n
	agg.AvgUserRating = user / n
	agg.AvgRuntime = runtime / n
	return agg
}
