package report

import "sjsage522/cruisewatch/internal/cruise"

// GroupKey identifies the rows that share a cruise/origin header
type GroupKey struct {
	Cruise string
	From   string
}

// Group is every sailing sharing one key, in input order
type Group struct {
	Key     GroupKey
	Members []cruise.NormalizedItinerary
}

// GroupItineraries buckets sailings by (cruise, from) in a single pass.
// Groups are ordered by first appearance, so sailings of one group that are
// not adjacent in the input still end up under one header.
func GroupItineraries(items []cruise.NormalizedItinerary) []Group {
	var groups []Group
	index := make(map[GroupKey]int)

	for _, it := range items {
		key := GroupKey{Cruise: it.Cruise, From: it.From}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Members = append(groups[i].Members, it)
	}

	return groups
}
