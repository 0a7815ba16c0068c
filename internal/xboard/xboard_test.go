package xboard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nullmove/sunshouse/internal/board"
	"github.com/nullmove/sunshouse/internal/ttable"
)

func newTestEngine() (*Engine, *bytes.Buffer) {
	var out bytes.Buffer
	e := New(ttable.New(4), nil, &out)
	return e, &out
}

func TestNewResetsToStartPosition(t *testing.T) {
	e, _ := newTestEngine()
	e.dispatch("new")
	if e.pos.Hash != board.NewPosition().Hash {
		t.Error("expected \"new\" to reset the board to the starting position")
	}
}

func TestForceThenGoReplyMove(t *testing.T) {
	e, out := newTestEngine()
	e.dispatch("new")
	e.dispatch("force")
	e.dispatch("sd 2")
	e.dispatch("go")
	if !strings.Contains(out.String(), "move ") {
		t.Errorf("expected a \"move ...\" line after \"go\", got: %q", out.String())
	}
}

func TestBareMoveAppliedAndIllegalRejected(t *testing.T) {
	e, out := newTestEngine()
	e.dispatch("new")
	e.dispatch("force")
	e.dispatch("e2e4")
	if e.pos.PieceAt(board.E4) == board.NoPiece {
		t.Error("expected e2e4 to be applied to the board")
	}
	out.Reset()
	e.dispatch("e2e4") // no pawn left on e2 now
	if !strings.Contains(out.String(), "Illegal move") {
		t.Errorf("expected an \"Illegal move\" reply for a second e2e4, got: %q", out.String())
	}
}

func TestSANMoveParsing(t *testing.T) {
	e, _ := newTestEngine()
	e.dispatch("new")
	e.dispatch("force")
	e.dispatch("Nf3")
	if e.pos.PieceAt(board.F3) == board.NoPiece {
		t.Error("expected SAN \"Nf3\" to move the knight to f3")
	}
}

func TestUndoRestoresPosition(t *testing.T) {
	e, _ := newTestEngine()
	e.dispatch("new")
	before := e.pos.Hash
	e.dispatch("force")
	e.dispatch("e2e4")
	e.dispatch("undo")
	if e.pos.Hash != before {
		t.Error("expected \"undo\" to restore the pre-move hash")
	}
}

func TestHoldingSetsHandCounts(t *testing.T) {
	e, _ := newTestEngine()
	e.dispatch("new")
	e.dispatch("variant bughouse")
	e.dispatch("holding [PP] [n]")
	if e.pos.Hand[board.White][board.Pawn] != 2 {
		t.Errorf("expected White to hold 2 pawns, got %d", e.pos.Hand[board.White][board.Pawn])
	}
	if e.pos.Hand[board.Black][board.Knight] != 1 {
		t.Errorf("expected Black to hold 1 knight, got %d", e.pos.Hand[board.Black][board.Knight])
	}
}

func TestPTellUnrecognizedGetsSorryReply(t *testing.T) {
	e, out := newTestEngine()
	e.dispatch("new")
	e.dispatch("variant bughouse")
	e.dispatch("ptell blah")
	if !strings.Contains(out.String(), "Sorry") {
		t.Errorf("expected a \"Sorry\" reply to an unrecognized ptell, got: %q", out.String())
	}
}

func TestPTellSorryDoesNotLoop(t *testing.T) {
	e, out := newTestEngine()
	e.dispatch("new")
	e.dispatch("variant bughouse")
	e.dispatch(`ptell "Sorry,_I_didn't_understand"`)
	if strings.Contains(out.String(), "Sorry") {
		t.Errorf("expected no reply to a message that already looks like a \"Sorry\", got: %q", out.String())
	}
}

func TestQuitStopsTheLoop(t *testing.T) {
	e, _ := newTestEngine()
	if !e.dispatch("quit") {
		t.Error("expected dispatch(\"quit\") to report loop termination")
	}
}

func TestRunProcessesMultipleLines(t *testing.T) {
	e, out := newTestEngine()
	in := strings.NewReader("new\nforce\ne2e4\nquit\n")
	e.Run(in)
	if e.pos.PieceAt(board.E4) == board.NoPiece {
		t.Error("expected Run to have applied e2e4 before quitting")
	}
	_ = out
}
