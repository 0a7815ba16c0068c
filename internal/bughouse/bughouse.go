// Package bughouse tracks the partner/sit coordination state a Bughouse
// engine carries alongside the board: whether we're sitting out a move
// waiting for a piece, whether we've asked our partner to do the same,
// and the "ghost piece" search augmentation that models a piece which
// might arrive from the partner board before it's actually dropped.
package bughouse

import (
	"fmt"
	"strings"

	"github.com/nullmove/sunshouse/internal/board"
	"github.com/nullmove/sunshouse/internal/ttable"
)

// nearMateMargin mirrors the original engine's 90-centipawn band around a
// mate score used to decide "close enough to mate to ask partner to sit"
// without requiring the exact fastest mate value.
const nearMateMargin = 90

// watchOurTimeAfter is how many consecutive moves we tolerate our partner
// self-sitting before nudging them to keep the game moving.
const watchOurTimeAfter = 5

// State holds the five coordination flags spec.md §4.8 names, plus the
// original engine's own-sit duration counter used for the "watch our
// time" partner nudge (a supplementary feature, not in the core flag list).
type State struct {
	Sitting       bool // we are sitting out a move waiting for a piece
	ToldPartISit  bool // we told our partner that we are sitting on our own
	ToldPartToSit bool // we told our partner to sit
	PartSitting   bool // our partner reported they are sitting
	PartToldGo    bool // our partner told us to go ahead and move

	sittingStreak int
}

// BeginMove resets the one-shot "partner told us to go" flag: per the
// original engine, a partner "go" message only excuses the ghost-piece
// search for a single move.
func (s *State) BeginMove() {
	s.PartToldGo = false
}

// ShouldAugmentHands reports whether the root search should temporarily
// credit both sides with one extra rook, knight and pawn in hand before
// searching — modeling the possibility that a piece arrives from the
// partner board mid-thought, so the search doesn't panic over a drop
// mate that a forthcoming piece could answer.
func (s *State) ShouldAugmentHands() bool {
	return !s.PartSitting && !s.PartToldGo
}

// AugmentHands adds the ghost pieces described by ShouldAugmentHands to
// pos, returning an undo closure that removes exactly what was added.
func AugmentHands(pos *board.Position) func() {
	ghosts := []board.PieceType{board.Rook, board.Knight, board.Pawn}
	for _, pt := range ghosts {
		pos.Hand[board.White][pt]++
		pos.Hand[board.Black][pt]++
	}
	return func() {
		for _, pt := range ghosts {
			pos.Hand[board.White][pt]--
			pos.Hand[board.Black][pt]--
		}
	}
}

// Decision is what the root search loop should do in response to a
// completed (possibly ghost-augmented) search, per spec.md §4.8's three
// transition rules.
type Decision struct {
	Messages []string // ptell lines to send, in order
	ReSearch bool      // discard this result and search again
	Wait     bool      // block for an external ptell before moving
}

// AfterSearch applies spec.md §4.8's three result-driven transitions:
// a mate we're about to deliver asks the partner to sit (once); a mate
// against us tells the partner to sit and requests a re-search; finding
// a safe move after asking to sit tells the partner to go.
func (s *State) AfterSearch(best board.Move, value int) Decision {
	var d Decision

	deliveringMate := value >= ttable.MateScore-ttable.MaxPly-nearMateMargin
	if deliveringMate && !s.ToldPartISit {
		d.Messages = append(d.Messages, fmt.Sprintf("tellics ptell sitting (%s with mate). Tell me \"sitting\" if no stuff comes for me or \"go\" to make one move.", best.String()))
		s.ToldPartISit = true
		d.Wait = true
		return d
	}

	beingMated := value <= -(ttable.MateScore - ttable.MaxPly - nearMateMargin)
	if beingMated {
		if !s.PartSitting {
			d.Messages = append(d.Messages, "tellics ptell sit (I am mated)")
			s.PartSitting = true
			s.ToldPartToSit = true
			d.ReSearch = true
		}
		return d
	}

	if s.ToldPartToSit {
		d.Messages = append(d.Messages, "tellics ptell go (I am ok)")
		s.ToldPartToSit = false
	} else if !s.PartSitting && value <= -(ttable.MateScore-ttable.MaxPly)/2 {
		// Not mated outright, but in enough trouble that a helping piece
		// from our partner could matter: ask them to hold off.
		d.Messages = append(d.Messages, "tellics ptell sit (I am in trouble)")
		s.PartSitting = true
		s.ToldPartToSit = true
		d.ReSearch = true
	}

	return d
}

// AfterMove runs the bookkeeping the original engine does once a move is
// finally committed: nudging a partner who has been self-sitting too
// long, and clearing the flags that only apply for one move.
func (s *State) AfterMove() []string {
	var out []string
	if s.PartSitting && !s.ToldPartToSit {
		s.sittingStreak++
		if s.sittingStreak > watchOurTimeAfter {
			out = append(out, "tellics ptell go (watch our time)")
			s.sittingStreak = 0
		}
	} else {
		s.sittingStreak = 0
	}

	if s.ToldPartISit {
		s.unsit()
	}
	if s.ToldPartToSit {
		s.PartSitting = false
	}
	return out
}

func (s *State) unsit() {
	s.Sitting = false
	s.ToldPartISit = false
}

// HandlePartnerMessage interprets one ptell token from the partner
// ("sit", "go", "sitting"/"frozen", "cancel", "flag", "abort", "help",
// or a greeting) per spec.md §6's ptell command; anything else, moves
// included, returns recognized=false. reply is empty when no
// acknowledgement is needed.
func (s *State) HandlePartnerMessage(arg1, arg2 string) (reply string, recognized bool) {
	switch strings.ToLower(arg1) {
	case "help":
		return partnerHelp(arg2), true
	case "sitting", "frozen":
		s.PartSitting = true
		s.unsit()
		return "", true
	case "sit":
		s.Sitting = true
		return "tellics ptell sitting", true
	case "go":
		s.PartToldGo = true
		s.unsit()
		return "", true
	case "cancel":
		s.PartSitting = false
		s.Sitting = false
		s.ToldPartISit = false
		return "", true
	case "flag":
		return "tellics flag", true
	case "abort":
		return "tellics abort", true
	case "hi", "hello", "hiya":
		return "tellics ptell hi!", true
	default:
		return "", false
	}
}

func partnerHelp(topic string) string {
	switch strings.ToLower(topic) {
	case "intro":
		return "tellics ptell Hi. Thanks for being my partner. Tell me \"help\" for the commands I understand."
	case "sitting", "frozen":
		return "tellics ptell if you tell me that you are sitting I know that no stuff comes for me or my opponent."
	case "sit", "go":
		return "tellics ptell sit means to sit, go means to stop sitting."
	case "flag":
		return "tellics ptell Use flag to tell me to flag my opponent."
	case "abort":
		return "tellics ptell Use abort to make me offer or accept an abort request."
	case "":
		return "tellics ptell I understand: sitting/frozen, sit, go, flag and abort. Tell me a move and I'll play it."
	default:
		return fmt.Sprintf("tellics ptell Sorry I don't have help on %s", topic)
	}
}
