package marketlog

// Deduplicate merges order records sharing an order ID across overlapping
// snapshots, keeping the copy with the latest issue date. Issue dates are
// compared lexicographically, which matches temporal order for the
// zero-padded timestamps the game logs. Output order is unspecified.
func Deduplicate(orders []Order) []Order {
	byID := make(map[int64]Order, len(orders))
	mergeLatest(byID, orders)

	out := make([]Order, 0, len(byID))
	for _, o := range byID {
		out = append(out, o)
	}
	return out
}

// mergeLatest folds orders into the map, retaining the latest issued copy
// for each order ID.
func mergeLatest(byID map[int64]Order, orders []Order) {
	for _, o := range orders {
		if cur, ok := byID[o.OrderID]; !ok || o.IssueDate > cur.IssueDate {
			byID[o.OrderID] = o
		}
	}
}
