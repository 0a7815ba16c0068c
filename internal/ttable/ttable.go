// Package ttable implements the search's transposition table and its
// persistent learn table.
package ttable

import (
	"github.com/nullmove/sunshouse/internal/board"
)

// MateScore is the evaluation returned for a delivered checkmate at ply
// 0; scores are adjusted toward it as ply increases so the engine
// prefers the shortest mate.
const MateScore = 29000

// MaxPly bounds both search depth and the ply-indexed arrays (PV,
// last move) the search keeps per ply.
const MaxPly = 128

// Flag indicates which kind of bound an Entry's score represents.
type Flag uint8

const (
	Exact      Flag = iota // the true minimax value
	LowerBound             // failed high: true value is >= Score
	UpperBound             // failed low: true value is <= Score
)

// Entry is one transposition table slot.
type Entry struct {
	Key      uint32     // high bits of the position hash, for collision detection
	BestMove board.Move // move to try first, NoMove if none recorded
	Score    int16      // bounded by Flag
	Depth    int8       // depth (in the search's sub-ply units) this entry was searched to
	Flag     Flag
	Age      uint8 // root-search generation, for replacement
}

// Table is a fixed-size, power-of-two-indexed hash table owned
// exclusively by the search (see the concurrency model: no concurrent
// writers exist, so no locking is needed here).
type Table struct {
	entries []Entry
	mask    uint64
	age     uint8

	probes uint64
	hits   uint64
}

// New creates a table sized to approximately sizeMB megabytes.
func New(sizeMB int) *Table {
	const entrySize = 16
	numEntries := roundDownPow2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	if numEntries == 0 {
		numEntries = 1
	}
	return &Table{
		entries: make([]Entry, numEntries),
		mask:    numEntries - 1,
	}
}

// minHashMB is the minimum viable hash table size spec.md §7 names as the
// fallback when the requested size can't be allocated.
const minHashMB = 16

// SafeNew allocates a table of sizeMB, falling back to minHashMB on
// allocation failure, and returning nil if even that fails — the caller
// is expected to treat a nil result as the "exit with diagnostic" case
// spec.md §7 describes for unrecoverable resource exhaustion.
func SafeNew(sizeMB int) (t *Table) {
	defer func() {
		if recover() != nil && sizeMB != minHashMB {
			t = SafeNew(minHashMB)
		}
	}()
	return New(sizeMB)
}

func roundDownPow2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the entry stored for hash, and whether it was found and
// passes the key-tag check.
func (t *Table) Probe(hash uint64) (Entry, bool) {
	t.probes++
	idx := hash & t.mask
	e := t.entries[idx]
	if e.Flag == Exact || e.Flag == LowerBound || e.Flag == UpperBound {
		if e.Key == uint32(hash>>32) && e.Depth > 0 {
			t.hits++
			return e, true
		}
	}
	return Entry{}, false
}

// Store writes an entry, subject to the replacement policy: always
// replace a stale-generation slot, otherwise only replace with an
// equal-or-deeper search.
func (t *Table) Store(hash uint64, depth int, score int, flag Flag, best board.Move) {
	idx := hash & t.mask
	e := &t.entries[idx]
	if e.Age != t.age || depth >= int(e.Depth) {
		e.Key = uint32(hash >> 32)
		e.BestMove = best
		e.Score = int16(score)
		e.Depth = int8(depth)
		e.Flag = flag
		e.Age = t.age
	}
}

// NewSearch bumps the replacement generation; called once per root
// search so stale entries from prior searches yield to new ones.
func (t *Table) NewSearch() {
	t.age++
}

// Clear wipes the table and resets statistics.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	t.age = 0
	t.probes = 0
	t.hits = 0
}

// HashFull samples the table and returns parts-per-thousand occupancy
// of the current generation, matching the xboard/UCI "hashfull" stat.
func (t *Table) HashFull() int {
	sample := 1000
	if uint64(sample) > uint64(len(t.entries)) {
		sample = len(t.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		if t.entries[i].Depth > 0 && t.entries[i].Age == t.age {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}

// HitRate returns the probe hit rate as a percentage, for diagnostics.
func (t *Table) HitRate() float64 {
	if t.probes == 0 {
		return 0
	}
	return float64(t.hits) / float64(t.probes) * 100
}

// AdjustScoreFromTT converts a mate-relative score read from the table
// (relative to the root) into one relative to the current ply.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT is the inverse of AdjustScoreFromTT, applied before a
// mate-range score is stored.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
