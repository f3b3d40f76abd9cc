package outfit

import "sort"

// #region classify-state
// ClassifyState computes the outfit-state tag for a set of items.
//
// One filled zone out of {top, bottom} is tagged empty, the same as no items
// at all. Completeness checks downstream rely on that.
func ClassifyState(items []Item) StateTag {
	if len(items) == 0 {
		return StateEmpty
	}
	counts := ZoneCounts(items)
	if counts[ZoneOnePiece] > 0 {
		return StateOnePiece
	}
	if counts[ZoneTop] > 0 && counts[ZoneBottom] > 0 {
		if counts[ZoneOuterwear] > 0 || counts[ZoneTop] > 1 {
			return StateLayered
		}
		return StateSeparates
	}
	return StateEmpty
}

// IsComplete reports whether an outfit is wearable as-is.
func IsComplete(items []Item) bool {
	return ClassifyState(items) != StateEmpty
}

// #endregion classify-state

// #region zone-helpers
// ZoneCounts tallies items per zone.
func ZoneCounts(items []Item) map[Zone]int {
	counts := make(map[Zone]int, len(Zones))
	for _, it := range items {
		counts[it.Category]++
	}
	return counts
}

// InZone returns the items occupying the given zone, in order.
func InZone(items []Item, zone Zone) []Item {
	var out []Item
	for _, it := range items {
		if it.Category == zone {
			out = append(out, it)
		}
	}
	return out
}

// SortByLayer orders items by zone render order and then by z-index within
// a zone. Items without a z-index keep their relative order and sort after
// layered ones.
func SortByLayer(items []Item) []Item {
	out := CloneItems(items)
	rank := make(map[Zone]int, len(Zones))
	for i, z := range Zones {
		rank[z] = i
	}
	sort.SliceStable(out, func(a, b int) bool {
		ra, rb := zoneRank(rank, out[a].Category), zoneRank(rank, out[b].Category)
		if ra != rb {
			return ra < rb
		}
		za, zb := out[a].ZIndex, out[b].ZIndex
		switch {
		case za != nil && zb != nil:
			return *za < *zb
		case za != nil:
			return true
		default:
			return false
		}
	})
	return out
}

func zoneRank(rank map[Zone]int, z Zone) int {
	if r, ok := rank[z]; ok {
		return r
	}
	return len(rank)
}

// #endregion zone-helpers
