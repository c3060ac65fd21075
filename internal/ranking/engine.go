// Package ranking computes leaderboard ranks. It is a pure transform over a
// snapshot supplied by the caller: no state, no I/O, no locking. A snapshot
// may be momentarily stale relative to the latest XP write; that is fine for
// a read-mostly leaderboard.
package ranking

import (
	"math"
	"sort"
)

// Entry is one scored identity in a leaderboard snapshot.
type Entry struct {
	UserID         uint
	Nickname       string
	Avatar         string
	XP             int64
	Level          int
	TasksCompleted int
}

// RankedEntry is an Entry annotated with its competition rank.
type RankedEntry struct {
	Entry
	Rank int
}

// Rank orders entries by XP desc, Level desc, UserID asc and annotates each
// with its rank. Rank is competition-style: 1 + the number of entries with
// strictly greater XP. Entries tied on XP share a rank value even though the
// deterministic sort gives them distinct positions, so rank is NOT position+1
// whenever ties exist.
//
// Returns the ordered entries, the subject's rank (0 if the subject is not in
// the snapshot) and the snapshot size.
func Rank(entries []Entry, subjectID uint) ([]RankedEntry, int, int) {
	ordered := make([]RankedEntry, len(entries))
	for i, e := range entries {
		ordered[i] = RankedEntry{Entry: e}
	}

	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.UserID < b.UserID
	})

	// Sorted desc by XP, so the rank of every entry in a tie group is the
	// position of the group's first member + 1.
	subjectRank := 0
	groupStart := 0
	for i := range ordered {
		if ordered[i].XP != ordered[groupStart].XP {
			groupStart = i
		}
		ordered[i].Rank = groupStart + 1
		if ordered[i].UserID == subjectID {
			subjectRank = ordered[i].Rank
		}
	}

	return ordered, subjectRank, len(entries)
}

// Percentile converts a rank into a 0-100 percentile, rounded to the nearest
// integer. A zero total yields zero.
func Percentile(rank, total int) int {
	if total == 0 || rank == 0 {
		return 0
	}
	return int(math.Round(float64(rank) / float64(total) * 100))
}
