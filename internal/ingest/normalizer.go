package ingest

import (
	"sort"
	"strings"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

const (
	raceDateFormat = "2006-01-02"
	raceTimeFormat = "15:04"
)

// RaceID derives the race identifier from the race date and start time
func RaceID(rec Record) string {
	return rec.Date.Format(raceDateFormat) + "_" + rec.StartTime().Format(raceTimeFormat)
}

// BuildRaceGroups applies the optional track allow-list, orders records
// chronologically (original order breaks ties), partitions them by race id and
// ranks each race by raw probability. The returned groups are strictly
// increasing in start time.
func BuildRaceGroups(records []Record, trackFilter []string) []models.RaceGroup {
	allowed := make(map[string]bool, len(trackFilter))
	for _, track := range trackFilter {
		allowed[strings.ToLower(strings.TrimSpace(track))] = true
	}

	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if len(allowed) > 0 && !allowed[strings.ToLower(rec.Track)] {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		ti, tj := filtered[i].StartTime(), filtered[j].StartTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return filtered[i].Seq < filtered[j].Seq
	})

	var groups []models.RaceGroup
	for _, rec := range filtered {
		id := RaceID(rec)
		if len(groups) == 0 || groups[len(groups)-1].ID != id {
			groups = append(groups, models.RaceGroup{
				ID:    id,
				Time:  rec.StartTime(),
				Track: rec.Track,
				Class: rec.Class,
			})
		}
		g := &groups[len(groups)-1]
		g.Entries = append(g.Entries, models.HorseEntry{
			Seq:            rec.Seq,
			RaceID:         id,
			RaceTime:       rec.StartTime(),
			Horse:          rec.Horse,
			Track:          rec.Track,
			Class:          rec.Class,
			Odds:           rec.Odds,
			RawProbability: rec.Probability,
			Place:          rec.Place,
		})
	}

	for i := range groups {
		rankEntries(groups[i].Entries)
	}

	return groups
}

// rankEntries assigns a dense 1..n predicted rank, highest probability first,
// ties resolved by original order. Entry order itself is left untouched.
func rankEntries(entries []models.HorseEntry) {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := entries[order[a]], entries[order[b]]
		if ea.RawProbability != eb.RawProbability {
			return ea.RawProbability > eb.RawProbability
		}
		return ea.Seq < eb.Seq
	})

	for rank, i := range order {
		entries[i].PredictedRank = rank + 1
		entries[i].FieldSize = len(entries)
	}
}
