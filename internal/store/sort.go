package store

import "github.com/kaiwen/cms/internal/model"

// SortKey selects the field records are ordered by.
type SortKey int

const (
	ByID SortKey = iota
	ByMark
)

// Direction selects ascending or descending order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Sorted returns the live records ordered by the selected key and direction.
// It sorts a cloned snapshot with a recursive merge sort, so the store's own
// insertion order is never perturbed.
func (s *Store) Sorted(key SortKey, dir Direction) []model.Record {
	return mergeSort(s.Records(), key, dir)
}

func mergeSort(recs []model.Record, key SortKey, dir Direction) []model.Record {
	if len(recs) < 2 {
		return recs
	}
	mid := len(recs) / 2
	left := mergeSort(recs[:mid], key, dir)
	right := mergeSort(recs[mid:], key, dir)
	return merge(left, right, key, dir)
}

// merge combines two sorted runs. On an equal compare the left element wins,
// matching the split order.
func merge(left, right []model.Record, key SortKey, dir Direction) []model.Record {
	out := make([]model.Record, 0, len(left)+len(right))
	for len(left) > 0 && len(right) > 0 {
		c := compare(left[0], right[0], key)
		if (dir == Ascending && c <= 0) || (dir == Descending && c >= 0) {
			out = append(out, left[0])
			left = left[1:]
		} else {
			out = append(out, right[0])
			right = right[1:]
		}
	}
	out = append(out, left...)
	out = append(out, right...)
	return out
}

func compare(a, b model.Record, key SortKey) int {
	if key == ByID {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
	switch {
	case a.Mark < b.Mark:
		return -1
	case a.Mark > b.Mark:
		return 1
	}
	return 0
}
