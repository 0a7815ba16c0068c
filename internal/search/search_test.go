package search

import (
	"testing"

	"github.com/nullmove/sunshouse/internal/board"
	"github.com/nullmove/sunshouse/internal/movegen"
	"github.com/nullmove/sunshouse/internal/ttable"
)

func newTestSearcher() *Searcher {
	return NewSearcher(ttable.New(4), nil)
}

func TestSearchBasicReturnsLegalMove(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher()

	result := s.SearchRoot(pos, Limits{FixedDepth: 3}, false, false)
	if result.Move == board.NoMove {
		t.Fatal("search returned NoMove for starting position")
	}
	if !legalMoveInPosition(pos, result.Move) {
		t.Errorf("search returned a move not legal in the position: %v", result.Move)
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	// White to move, mate in one.
	// Back rank mate: rook already poised, black king boxed by own pawns.
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/1R4K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	s := newTestSearcher()

	result := s.SearchRoot(pos, Limits{FixedDepth: 3}, false, false)
	if result.Score < ttable.MateScore-ttable.MaxPly {
		t.Errorf("expected a mate score, got %d (move %v)", result.Score, result.Move)
	}
}

func TestSearchRespectsFixedNodes(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher()

	result := s.SearchRoot(pos, Limits{FixedNodes: 2000, FixedDepth: 40}, false, false)
	if result.Move == board.NoMove {
		t.Fatal("expected a move even under a tight node limit")
	}
	if s.Nodes() == 0 {
		t.Error("expected some nodes to have been searched")
	}
}

func TestSearchStalemateScoresZero(t *testing.T) {
	// Classic stalemate: black king in the corner, no legal moves, not in check.
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	s := newTestSearcher()
	s.pos = pos
	score := s.noLegalMoveScore(0)
	if score != 0 {
		t.Errorf("expected stalemate to score 0, got %d", score)
	}
}

func TestCantBlockDetectsAdjacentCheck(t *testing.T) {
	// Black king adjacent to a checking white king is impossible (illegal),
	// so use a knight check instead: knight on g6 checks king on h8, and the
	// knight check is never blockable.
	pos, err := board.ParseFEN("6nk/8/6N1/8/8/8/8/6K1 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if !pos.InCheck() {
		t.Fatal("expected black to be in check")
	}
	if !cantBlock(pos) {
		t.Error("expected a knight check to be unblockable")
	}
}

func TestTTRoundTripsThroughSearch(t *testing.T) {
	pos := board.NewPosition()
	tt := ttable.New(4)
	s := NewSearcher(tt, nil)

	first := s.SearchRoot(pos, Limits{FixedDepth: 4}, false, false)
	if _, found := tt.Probe(pos.Hash); !found {
		t.Error("expected the root position to be stored in the transposition table")
	}

	second := NewSearcher(tt, nil).SearchRoot(pos, Limits{FixedDepth: 2}, false, false)
	if second.Move == board.NoMove {
		t.Fatal("expected a move from the TT-primed shallow search")
	}
	_ = first
}

func TestSearchFindsDropMate(t *testing.T) {
	// Crazyhouse: black king boxed in on h8 by its own pawns on g7/h7, a
	// white knight on f6 guards the only flight square g8, and white
	// holds a queen to drop there for a supported mate.
	pos, err := board.ParseFEN("7k/6pp/5N2/8/8/8/8/6K1[Q] w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	s := newTestSearcher()

	result := s.SearchRoot(pos, Limits{FixedDepth: 1}, false, false)
	if result.Score < ttable.MateScore-ttable.MaxPly {
		t.Errorf("expected a mate score, got %d (move %v)", result.Score, result.Move)
	}
	if !result.Move.IsDrop() {
		t.Errorf("expected the mating move to be a drop, got %v", result.Move)
	}
}

func TestSearchFindsMaterialWinningCaptureAtDepth(t *testing.T) {
	// A quiet middlegame-ish position with one clearly winning capture
	// (rook takes undefended knight) among otherwise roughly level options;
	// null-move pruning must not cause the search to miss it at depth 5.
	pos, err := board.ParseFEN("4k3/8/8/3n4/8/8/3R4/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	s := newTestSearcher()

	result := s.SearchRoot(pos, Limits{FixedDepth: 5}, false, false)
	if result.Move.From() != board.D2 || result.Move.To() != board.D5 {
		t.Errorf("expected Rd2xd5, got %v", result.Move)
	}
}

func legalMoveInPosition(pos *board.Position, m board.Move) bool {
	return movegen.GenerateLegal(pos).Contains(m)
}
