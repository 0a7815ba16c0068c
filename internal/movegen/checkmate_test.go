package movegen

import (
	"testing"

	"github.com/nullmove/sunshouse/internal/board"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate: White Ra8 + Ka1 vs Black Kh8 boxed in by its own pawns.
	pos, err := board.ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if !pos.InCheck() {
		t.Fatal("expected black to be in check")
	}

	blackMoves := GenerateLegal(pos)
	if blackMoves.Len() != 0 {
		t.Errorf("expected no legal moves, got %d", blackMoves.Len())
	}

	if !pos.IsCheckmate() {
		t.Error("expected checkmate but got false")
	}
}

func TestNotCheckmate(t *testing.T) {
	// Black king can capture the checking rook: not checkmate.
	pos, err := board.ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	if pos.IsCheckmate() {
		t.Error("expected NOT checkmate but got true")
	}
}

// TestDropBlocksCheck verifies a Crazyhouse-specific escape: a piece in
// hand can be dropped between a sliding checker and the king to resolve
// check, where classical chess would have no such option.
func TestDropBlocksCheck(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4R1K1[q] b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}
	if !pos.InCheck() {
		t.Fatal("expected black king in check from the rook on e1 along the e-file")
	}

	moves := GenerateEvasions(pos)
	found := false
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsDrop() && m.MovedPiece().Type() == board.Queen {
			found = true
		}
	}
	if !found {
		t.Error("expected a queen drop to be among the evasions")
	}
}
