package bughouse

import (
	"testing"

	"github.com/nullmove/sunshouse/internal/board"
	"github.com/nullmove/sunshouse/internal/ttable"
)

func TestAfterSearchAsksPartnerToSitOnMateDelivery(t *testing.T) {
	var s State
	d := s.AfterSearch(board.NewMove(board.E2, board.E4, board.NewPiece(board.Pawn, board.White)), ttable.MateScore-10)

	if !s.ToldPartISit {
		t.Error("expected ToldPartISit to be set after delivering mate")
	}
	if len(d.Messages) == 0 {
		t.Error("expected a ptell message asking the partner to sit")
	}
	if !d.Wait {
		t.Error("expected to wait for external release after asking to sit")
	}
}

func TestAfterSearchOnlyAsksOnce(t *testing.T) {
	var s State
	s.AfterSearch(board.NoMove, ttable.MateScore-10)
	d := s.AfterSearch(board.NoMove, ttable.MateScore-10)
	if len(d.Messages) != 0 {
		t.Error("expected no repeat ptell once ToldPartISit is already set")
	}
}

func TestAfterSearchTellsPartnerToSitWhenMated(t *testing.T) {
	var s State
	d := s.AfterSearch(board.NoMove, -(ttable.MateScore - 10))
	if !s.PartSitting || !s.ToldPartToSit {
		t.Error("expected PartSitting and ToldPartToSit to be set when we are mated")
	}
	if !d.ReSearch {
		t.Error("expected a re-search after telling the partner to sit")
	}
}

func TestAfterSearchTellsPartnerToGoAfterSafeMove(t *testing.T) {
	var s State
	s.ToldPartToSit = true
	d := s.AfterSearch(board.NoMove, 50)
	if s.ToldPartToSit {
		t.Error("expected ToldPartToSit to clear once a safe move was found")
	}
	found := false
	for _, m := range d.Messages {
		if m == "tellics ptell go (I am ok)" {
			found = true
		}
	}
	if !found {
		t.Error("expected a go message after finding a safe move")
	}
}

func TestGhostPieceAugmentRoundTrips(t *testing.T) {
	pos := board.NewPosition()
	before := pos.Hand
	undo := AugmentHands(pos)
	if pos.Hand[board.White][board.Rook] != before[board.White][board.Rook]+1 {
		t.Error("expected a ghost rook added to White's hand")
	}
	undo()
	if pos.Hand != before {
		t.Error("expected hands restored after undoing ghost augmentation")
	}
}

func TestHandlePartnerMessageSit(t *testing.T) {
	var s State
	reply, ok := s.HandlePartnerMessage("sit", "")
	if !ok {
		t.Fatal("expected \"sit\" to be recognized")
	}
	if !s.Sitting {
		t.Error("expected Sitting to be set after partner says sit")
	}
	if reply == "" {
		t.Error("expected an acknowledgement reply")
	}
}

func TestHandlePartnerMessageGoClearsSitting(t *testing.T) {
	var s State
	s.Sitting = true
	s.ToldPartISit = true
	_, ok := s.HandlePartnerMessage("go", "")
	if !ok {
		t.Fatal("expected \"go\" to be recognized")
	}
	if s.Sitting || s.ToldPartISit || !s.PartToldGo {
		t.Error("expected go to clear our sitting state and set PartToldGo")
	}
}

func TestHandlePartnerMessageUnrecognizedFallsThrough(t *testing.T) {
	var s State
	_, ok := s.HandlePartnerMessage("e2e4", "")
	if ok {
		t.Error("expected a bare move token to be left for the move parser")
	}
}

func TestAfterMoveNudgesLongSelfSittingPartner(t *testing.T) {
	var s State
	s.PartSitting = true
	for i := 0; i < watchOurTimeAfter; i++ {
		if msgs := s.AfterMove(); len(msgs) != 0 {
			t.Fatalf("unexpected nudge at streak %d: %v", i, msgs)
		}
	}
	msgs := s.AfterMove()
	if len(msgs) == 0 {
		t.Error("expected a nudge after the partner sits out too many moves")
	}
}
