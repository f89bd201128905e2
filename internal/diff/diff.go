// Package diff computes keyed set differences between two snapshots of a
// tracked collection. Classification is structural and deterministic
// regardless of input ordering.
package diff

import "sort"

// Delta holds the classified difference between the previous and current
// snapshot of one collection. The three sets are pairwise disjoint over
// keys, and Changed only contains keys present on both sides.
type Delta[T any] struct {
	Added   []T
	Removed []T
	Changed []T
}

// Empty reports whether the delta carries no change at all.
func (d Delta[T]) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Count returns the total number of classified elements.
func (d Delta[T]) Count() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed)
}

// Keyed diffs two collections by the given stable key function.
//
// Added contains current elements whose key is absent from previous,
// Removed contains previous elements whose key is absent from current, and
// Changed contains current elements present on both sides whose content
// differs structurally. Both inputs are freshly deserialized values, so
// equality is value comparison, never identity.
//
// Output sets are sorted by key so repeated runs over reordered input
// produce identical deltas.
func Keyed[T comparable](previous, current []T, key func(T) string) Delta[T] {
	prevByKey := make(map[string]T, len(previous))
	for _, el := range previous {
		prevByKey[key(el)] = el
	}
	currByKey := make(map[string]T, len(current))
	for _, el := range current {
		currByKey[key(el)] = el
	}

	var d Delta[T]
	for k, el := range currByKey {
		prev, ok := prevByKey[k]
		if !ok {
			d.Added = append(d.Added, el)
			continue
		}
		if prev != el {
			d.Changed = append(d.Changed, el)
		}
	}
	for k, el := range prevByKey {
		if _, ok := currByKey[k]; !ok {
			d.Removed = append(d.Removed, el)
		}
	}

	sortByKey(d.Added, key)
	sortByKey(d.Removed, key)
	sortByKey(d.Changed, key)
	return d
}

func sortByKey[T any](els []T, key func(T) string) {
	sort.Slice(els, func(i, j int) bool {
		return key(els[i]) < key(els[j])
	})
}
