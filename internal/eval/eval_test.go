package eval

import (
	"testing"

	"github.com/nullmove/sunshouse/internal/board"
)

func TestStartingPositionIsBalanced(t *testing.T) {
	pos := board.NewPosition()
	score := Evaluate(pos, false, false)
	if score < -5 || score > 5 {
		t.Errorf("expected near-zero eval for starting position, got %d", score)
	}
}

func TestMaterialDominates(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/Q3K3[] w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if score := Evaluate(pos, false, false); score <= 0 {
		t.Errorf("expected White ahead with an extra queen, got %d", score)
	}
}

func TestHandMaterialCounted(t *testing.T) {
	without, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3[] w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	with, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3[Q] w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	scoreWithout := Evaluate(without, false, false)
	scoreWith := Evaluate(with, false, false)
	if scoreWith <= scoreWithout {
		t.Errorf("a queen in hand should increase White's score: without=%d with=%d", scoreWithout, scoreWith)
	}
}

func TestKingSafetyPenalizesExposedKing(t *testing.T) {
	// White king boxed in by its own pawns (safe) vs. stranded in the
	// open center with Black holding a queen ready to drop nearby.
	safe, err := board.ParseFEN("4k3/8/8/8/8/8/5PPP/6K1[q] b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	exposed, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3[q] b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	// Evaluate from White's perspective directly (ignore side to move).
	safeScore := kingSafetyTerm(safe, board.White)
	exposedScore := kingSafetyTerm(exposed, board.White)
	if exposedScore < safeScore {
		t.Errorf("expected the exposed king to score at least as dangerous: exposed=%d safe=%d", exposedScore, safeScore)
	}
}

func TestBughouseSitForRewardsEmptyOpponentHand(t *testing.T) {
	// White holds a pawn and Black's hand is empty, so Black lacks every
	// droppable type while White lacks four: the sit-for term is nonzero
	// unless the partner is sitting.
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3[P] w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	baseline := Evaluate(pos, false, false)
	scoreActive := Evaluate(pos, true, false)
	scoreWaiting := Evaluate(pos, true, true)

	if scoreWaiting != baseline {
		t.Errorf("partner sitting should suppress the sit-for bonus: baseline=%d waiting=%d", baseline, scoreWaiting)
	}
	if scoreActive == baseline {
		t.Errorf("expected the asymmetric hands to produce a nonzero sit-for term")
	}
}
