package movegen

import (
	"testing"

	"github.com/nullmove/sunshouse/internal/board"
)

// perft counts leaf nodes at the given depth, the standard way to verify
// move generation correctness.
func perft(p *board.Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := GenerateLegal(p)
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

// TestPerftStartingPosition checks move counts from the starting
// position against the standard chess perft sequence. These depths stay
// valid for the Crazyhouse ruleset too: the earliest possible capture
// from this position is ply 3, and a captured piece only becomes
// droppable on its captor's *next* turn (ply 5), so no hand-drop can
// alter node counts at depth <= 4.
func TestPerftStartingPosition(t *testing.T) {
	pos := board.NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftKiwipete exercises castling, en passant and promotion move
// generation. Only depths 1-2 are asserted: this position already has
// captures available on ply 1, and a depth-3 count would include the
// capturing side's own next turn, where the newly-acquired hand piece
// adds drop moves the classical (non-Crazyhouse) node count doesn't
// account for.
func TestPerftKiwipete(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftEnPassantPin verifies that an en-passant capture exposing the
// king to a horizontal pin is excluded from the legal move set.
// FEN: 8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1 — the black pawn on e4 could
// capture en passant on d3, but doing so would expose the black king on
// a4 to the white rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := board.ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	moves := GenerateLegal(pos)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsEnPassant(pos) {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", m)
		}
	}

	if got, want := perft(pos, 1), int64(6); got != want {
		t.Errorf("perft(1) = %d, want %d", got, want)
	}
}
