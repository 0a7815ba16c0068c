package board

import "testing"

// TestMakeUnmakeDeterminism plays ten legal moves from a canonical opening
// line, checks the hash/material invariants hold after each one, then
// unmakes all ten and checks for bitwise equality with a freshly
// initialized starting position.
func TestMakeUnmakeDeterminism(t *testing.T) {
	moves := []string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1b5",
		"a7a6", "b5a4", "g8f6", "d2d3", "f8c5",
	}

	pos := NewPosition()
	type step struct {
		move Move
		undo UndoInfo
	}
	var played []step

	for _, s := range moves {
		m, err := ParseMove(s, pos)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", s, err)
		}
		undo := pos.MakeMove(m)
		played = append(played, step{m, undo})

		if pos.Hash != pos.ComputeHash() {
			t.Fatalf("hash invariant broken after %s: incremental=%d recomputed=%d", s, pos.Hash, pos.ComputeHash())
		}
		if pos.Material != pos.computeMaterial() {
			t.Fatalf("material invariant broken after %s", s)
		}
	}

	for i := len(played) - 1; i >= 0; i-- {
		pos.UnmakeMove(played[i].move, played[i].undo)
	}

	fresh := NewPosition()
	if pos.Hash != fresh.Hash {
		t.Errorf("hash mismatch after full unmake: got %d want %d", pos.Hash, fresh.Hash)
	}
	if pos.Material != fresh.Material {
		t.Errorf("material mismatch after full unmake")
	}
	for sq := Square(0); sq < 64; sq++ {
		if pos.PieceAt(sq) != fresh.PieceAt(sq) {
			t.Errorf("square %s mismatch after full unmake: got %v want %v", sq, pos.PieceAt(sq), fresh.PieceAt(sq))
		}
	}
}
