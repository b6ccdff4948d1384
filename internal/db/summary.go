package db

import (
	"strings"

	"github.com/kaiwen/cms/internal/model"
)

// Stats holds summary statistics over the live records.
type Stats struct {
	Total   int
	Average float64
	Highest float64
	Lowest  float64

	// Top and Bottom list every record holding the highest and lowest mark,
	// in insertion order.
	Top    []model.Record
	Bottom []model.Record
}

// Summary computes statistics over the live records, optionally restricted
// to one programme (matched case-insensitively). The second return value is
// false when no record matched.
func (s *Session) Summary(programme string) (Stats, bool) {
	var stats Stats
	var sum float64
	first := true

	s.store.Each(func(rec model.Record) bool {
		if programme != "" && !strings.EqualFold(rec.Programme, programme) {
			return true
		}
		if first || rec.Mark > stats.Highest {
			stats.Highest = rec.Mark
		}
		if first || rec.Mark < stats.Lowest {
			stats.Lowest = rec.Mark
		}
		first = false
		sum += rec.Mark
		stats.Total++
		return true
	})

	if stats.Total == 0 {
		return Stats{}, false
	}
	stats.Average = sum / float64(stats.Total)

	s.store.Each(func(rec model.Record) bool {
		if programme != "" && !strings.EqualFold(rec.Programme, programme) {
			return true
		}
		if rec.Mark == stats.Highest {
			stats.Top = append(stats.Top, rec)
		}
		if rec.Mark == stats.Lowest {
			stats.Bottom = append(stats.Bottom, rec)
		}
		return true
	})

	return stats, true
}
