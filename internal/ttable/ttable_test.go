package ttable

import (
	"testing"

	"github.com/nullmove/sunshouse/internal/board"
)

func TestStoreAndProbe(t *testing.T) {
	tt := New(1)
	hash := uint64(0x1234567890abcdef)

	if _, found := tt.Probe(hash); found {
		t.Fatal("expected empty table to miss")
	}

	tt.Store(hash, 6, 125, Exact, board.NoMove)

	entry, found := tt.Probe(hash)
	if !found {
		t.Fatal("expected probe to find stored entry")
	}
	if entry.Score != 125 || entry.Depth != 6 || entry.Flag != Exact {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestReplacementPolicy(t *testing.T) {
	tt := New(1)
	hash := uint64(0xdeadbeefcafef00d)

	tt.Store(hash, 8, 50, Exact, board.NoMove)
	tt.Store(hash, 3, 99, Exact, board.NoMove) // shallower, same generation: ignored

	entry, _ := tt.Probe(hash)
	if entry.Depth != 8 {
		t.Errorf("shallower same-generation store should not replace, got depth %d", entry.Depth)
	}

	tt.NewSearch()
	tt.Store(hash, 1, 7, Exact, board.NoMove) // new generation: always replaces

	entry, _ = tt.Probe(hash)
	if entry.Depth != 1 || entry.Score != 7 {
		t.Errorf("new-generation store should replace regardless of depth, got %+v", entry)
	}
}

func TestMateScoreRoundTrip(t *testing.T) {
	ply := 4
	stored := MateScore - 2 // a mate-in-one found 2 plies deep in this subtree
	toTT := AdjustScoreToTT(stored, ply)
	back := AdjustScoreFromTT(toTT, ply)
	if back != stored {
		t.Errorf("mate score did not round-trip: stored=%d got=%d", stored, back)
	}
}

func TestClearResetsOccupancy(t *testing.T) {
	tt := New(1)
	tt.Store(1, 5, 10, Exact, board.NoMove)
	if tt.HashFull() == 0 {
		t.Fatal("expected nonzero occupancy after a store")
	}
	tt.Clear()
	if tt.HashFull() != 0 {
		t.Error("expected zero occupancy after Clear")
	}
}
