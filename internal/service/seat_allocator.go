package service

import (
	"fmt"
	"strings"
)

// AllocateSeatLabels mints quantity fresh seat labels for a ticket type,
// disjoint from the labels already issued for the same (event, type)
// scope. Labels take the form UPPERCASE(code)-N with N counting up from
// 1; positions already present in existing are skipped. The result is
// deterministic for a given snapshot of existing labels. Callers must
// hold the event's booking lock so the snapshot cannot change while new
// labels are minted.
func AllocateSeatLabels(existing []string, code string, quantity int) []string {
	if quantity <= 0 {
		return []string{}
	}
	labels := make([]string, 0, quantity)
	taken := make(map[string]struct{}, len(existing))
	for _, label := range existing {
		taken[label] = struct{}{}
	}
	prefix := strings.ToUpper(code)
	for n := 1; len(labels) < quantity; n++ {
		label := fmt.Sprintf("%s-%d", prefix, n)
		if _, used := taken[label]; used {
			continue
		}
		labels = append(labels, label)
	}
	return labels
}
