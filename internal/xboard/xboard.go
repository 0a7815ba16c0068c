// Package xboard implements the textual command protocol the engine is
// driven by: a line-oriented loop over stdin, in the same scanner-and-
// dispatch shape the teacher's UCI handler uses, but speaking the
// xboard/Winboard "new/force/go/time/ptell" vocabulary a Crazyhouse or
// Bughouse interface expects instead of UCI's "position/go wtime".
package xboard

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nullmove/sunshouse/internal/board"
	"github.com/nullmove/sunshouse/internal/bughouse"
	"github.com/nullmove/sunshouse/internal/movegen"
	"github.com/nullmove/sunshouse/internal/search"
	"github.com/nullmove/sunshouse/internal/ttable"
)

// moveRecord is one entry of the undo-one-ply/undo-two-plies history; the
// board representation keeps no history stack of its own (see the design
// notes on attack-table undo records), so the protocol layer keeps one.
type moveRecord struct {
	move board.Move
	undo board.UndoInfo
}

// Engine binds a board, transposition/learn tables, a searcher and the
// Bughouse partner/sit state machine to the command loop. It owns exactly
// the mutable protocol-level state described in spec.md's concurrency
// model: no goroutines, no locks, the search runs to completion (or to an
// interrupt poll) between one line of input and the next.
type Engine struct {
	pos *board.Position
	tt  *ttable.Table

	learn    *ttable.LearnTable
	searcher *search.Searcher
	bh       bughouse.State

	bughouseRules bool
	forceMode     bool
	analyzeMode   bool
	gameInProgress bool

	myClockCs      int
	oppClockCs     int
	partnerClockCs int
	fixedDepth     int
	fixedNodes     uint64

	engineColor      board.Color
	engineHasColor   bool
	history          []moveRecord
	engineMoveHashes []uint64

	out io.Writer
}

// New creates a protocol handler over the given transposition table. learn
// may be nil if no learn file could be opened; its absence disables the
// "result" command's save step and the root search's learned time bias.
func New(tt *ttable.Table, learn *ttable.LearnTable, out io.Writer) *Engine {
	return &Engine{
		pos:      board.NewPosition(),
		tt:       tt,
		learn:    learn,
		searcher: search.NewSearcher(tt, learn),
		out:      out,
	}
}

// Run reads commands from in until "quit" or end of input.
func (e *Engine) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if e.dispatch(line) {
			return
		}
	}
}

func (e *Engine) println(format string, args ...any) {
	fmt.Fprintf(e.out, format+"\n", args...)
}

// dispatch handles one input line, returning true if the engine should
// exit (the "quit" command).
func (e *Engine) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "new":
		e.handleNew()
	case "variant":
		e.handleVariant(args)
	case "force":
		e.handleForce()
	case "go":
		e.handleGo()
	case "analyze":
		e.analyzeMode = true
		e.forceMode = false
	case "exit":
		e.analyzeMode = false
	case "time":
		e.myClockCs = atoiOr(args, e.myClockCs)
	case "otim":
		e.oppClockCs = atoiOr(args, e.oppClockCs)
	case "sd":
		e.fixedDepth = atoiOr(args, e.fixedDepth)
	case "snodes":
		if n, err := strconv.ParseUint(first(args), 10, 64); err == nil {
			e.fixedNodes = n
		}
	case "hash", "memory":
		e.handleHash(args)
	case "setboard":
		e.handleSetBoard(args)
	case "holding":
		e.handleHolding(args)
	case "undo":
		e.handleUndo(1)
	case "remove":
		e.handleUndo(2)
	case "?":
		e.searcher.Stop()
	case "ptell":
		e.handlePTell(args)
	case "result":
		e.handleResult(args)
	case "quit":
		return true
	default:
		e.handleMoveText(line)
	}
	return false
}

func (e *Engine) handleNew() {
	e.pos = board.NewPosition()
	e.bughouseRules = false
	e.forceMode = false
	e.analyzeMode = false
	e.gameInProgress = true
	e.history = nil
	e.engineMoveHashes = nil
	e.engineHasColor = false
	e.bh = bughouse.State{}
}

func (e *Engine) handleVariant(args []string) {
	if len(args) == 0 {
		return
	}
	switch strings.ToLower(args[0]) {
	case "bughouse":
		e.bughouseRules = true
	case "crazyhouse":
		e.bughouseRules = false
	}
}

func (e *Engine) handleForce() {
	e.forceMode = true
	e.analyzeMode = false
}

func (e *Engine) handleGo() {
	e.forceMode = false
	e.engineColor = e.pos.SideToMove
	e.engineHasColor = true
	e.think()
}

func (e *Engine) handleHash(args []string) {
	mb, err := strconv.Atoi(first(args))
	if err != nil || mb <= 0 {
		return
	}
	if tt := ttable.SafeNew(mb); tt != nil {
		e.tt = tt
		e.searcher = search.NewSearcher(e.tt, e.learn)
	}
}

func (e *Engine) handleSetBoard(args []string) {
	if e.bughouseRules {
		// Per the protocol's own command table, setboard only applies to
		// Crazyhouse: a Bughouse position is reconstructed move-by-move
		// alongside the partner board, never loaded wholesale.
		return
	}
	fen := strings.Join(args, " ")
	pos, err := board.ParseFEN(fen)
	if err != nil {
		e.println("Illegal move: setboard %s", fen)
		return
	}
	e.pos = pos
	e.history = nil
	e.gameInProgress = true
}

// handleHolding implements "holding [WHB][BLH]": two bracketed holdings
// strings, one per color in white-then-black order, each replacing (not
// adding to) that color's hand counts. Only meaningful in Bughouse: in
// Crazyhouse the engine already tracks its own hand from captures.
func (e *Engine) handleHolding(args []string) {
	if !e.bughouseRules || len(args) < 2 {
		return
	}
	e.pos.Hand[board.White] = [6]int{}
	e.pos.Hand[board.Black] = [6]int{}
	setHandFromBrackets(e.pos, board.White, args[0])
	setHandFromBrackets(e.pos, board.Black, args[1])
	e.pos.Hash = e.pos.ComputeHash()
}

func setHandFromBrackets(pos *board.Position, c board.Color, s string) {
	for _, r := range s {
		switch r {
		case 'p', 'P':
			pos.Hand[c][board.Pawn]++
		case 'n', 'N':
			pos.Hand[c][board.Knight]++
		case 'b', 'B':
			pos.Hand[c][board.Bishop]++
		case 'r', 'R':
			pos.Hand[c][board.Rook]++
		case 'q', 'Q':
			pos.Hand[c][board.Queen]++
		}
	}
}

func (e *Engine) handleUndo(plies int) {
	if len(e.history) < plies {
		return
	}
	e.searcher.Stop()
	for i := 0; i < plies; i++ {
		last := e.history[len(e.history)-1]
		e.history = e.history[:len(e.history)-1]
		e.pos.UnmakeMove(last.move, last.undo)
	}
}

func (e *Engine) handlePTell(args []string) {
	arg1 := first(args)
	arg2 := ""
	if len(args) > 1 {
		arg2 = args[1]
	}

	reply, ok := e.bh.HandlePartnerMessage(arg1, arg2)
	if ok {
		if reply != "" {
			e.println("%s", reply)
		}
		return
	}

	// Not a recognized partner command: per spec.md §7, try it as a move
	// before giving up, and never reply "Sorry" to something that already
	// looks like a "Sorry" or "OK," — that pattern is how two instances of
	// this same engine paired as partners end up in an infinite reply loop.
	if m, err := e.parseMoveText(arg1); err == nil {
		e.playMove(m)
		return
	}
	if strings.Contains(arg1, "Sorry") || strings.Contains(arg1, "OK,") {
		return
	}
	e.println("tellics ptell Sorry, I didn't understand %s %s", arg1, arg2)
}

func (e *Engine) handleResult(args []string) {
	if e.learn != nil && !e.bughouseRules && e.engineHasColor {
		const pointsWon = 120
		const maxMagnitude = 500
		result := first(args)
		won := (result == "1-0" && e.engineColor == board.White) ||
			(result == "0-1" && e.engineColor == board.Black)
		lost := (result == "1-0" && e.engineColor == board.Black) ||
			(result == "0-1" && e.engineColor == board.White)
		if won || lost {
			delta := -pointsWon
			if won {
				delta = pointsWon
			}
			for _, h := range e.engineMoveHashes {
				e.learn.Adjust(h, delta, maxMagnitude)
			}
		}
	}
	e.gameInProgress = false
	e.history = nil
	e.engineMoveHashes = nil
}

// handleMoveText handles a bare move token: the opponent's reply, in raw
// algebraic or SAN notation.
func (e *Engine) handleMoveText(s string) {
	if !e.gameInProgress {
		e.println("Illegal move: %s", s)
		return
	}
	m, err := e.parseMoveText(s)
	if err != nil {
		e.println("Illegal move: %s", s)
		return
	}
	e.playMove(m)

	if e.engineHasColor && !e.forceMode && e.pos.SideToMove == e.engineColor {
		e.think()
	}
}

func (e *Engine) parseMoveText(s string) (board.Move, error) {
	if m, err := board.ParseMove(s, e.pos); err == nil && movegen.IsLegal(e.pos, m) {
		return m, nil
	}
	m, err := movegen.ParseSAN(s, e.pos)
	if err != nil {
		return board.NoMove, err
	}
	if m == board.NoMove || !movegen.IsLegal(e.pos, m) {
		return board.NoMove, fmt.Errorf("illegal move: %s", s)
	}
	return m, nil
}

func (e *Engine) playMove(m board.Move) {
	undo := e.pos.MakeMove(m)
	e.pos.UpdateCheckers()
	e.history = append(e.history, moveRecord{move: m, undo: undo})
}

// think runs the root search for the side to move and reports the result
// per spec.md §6's output format, applying the Bughouse re-search/wait
// transitions from the partner/sit state machine.
func (e *Engine) think() {
	e.bh.BeginMove()

	for {
		limits := search.Limits{
			MyClockCs:      e.myClockCs,
			OppClockCs:     e.oppClockCs,
			Bughouse:       e.bughouseRules,
			PartnerClockCs: e.partnerClockCs,
			FixedDepth:     e.fixedDepth,
			FixedNodes:     e.fixedNodes,
			Infinite:       e.analyzeMode,
		}

		var undoGhosts func()
		if e.bughouseRules && e.bh.ShouldAugmentHands() {
			undoGhosts = bughouse.AugmentHands(e.pos)
		}

		start := time.Now()
		e.searcher.SetInfoCallback(func(depth, score int, nodes uint64, pv []board.Move) {
			e.reportIteration(depth, score, nodes, start, pv)
		})
		result := e.searcher.SearchRoot(e.pos, limits, e.bughouseRules, e.bh.PartSitting)

		if undoGhosts != nil {
			undoGhosts()
		}

		if result.Move == board.NoMove {
			// A bad or absent move reached the root: per spec.md §7, wait
			// for further input rather than moving.
			return
		}

		if !e.bughouseRules {
			e.commitEngineMove(result.Move)
			return
		}

		decision := e.bh.AfterSearch(result.Move, result.Score)
		for _, msg := range decision.Messages {
			e.println("%s", msg)
		}
		if decision.ReSearch {
			continue
		}

		if decision.Wait {
			// The partner/sit protocol expects an external "ptell sit" or
			// "ptell go" before we actually commit to a move; report the
			// line the move would be and stop here, per the mate-delivery
			// transition in spec.md §4.8.
			return
		}
		e.commitEngineMove(result.Move)
		return
	}
}

func (e *Engine) commitEngineMove(m board.Move) {
	// ToSAN reads the piece being moved and re-applies the move to append
	// a +/# suffix, so it must run against the position before playMove
	// mutates it.
	san := movegen.ToSAN(e.pos, m)
	e.engineMoveHashes = append(e.engineMoveHashes, e.pos.Hash)
	e.playMove(m)
	e.println("move %s", san)
	for _, msg := range e.bh.AfterMove() {
		e.println("%s", msg)
	}
}

func (e *Engine) reportIteration(depth, score int, nodes uint64, start time.Time, pv []board.Move) {
	pvStr := ""
	if len(pv) > 0 {
		strs := make([]string, len(pv))
		for i, m := range pv {
			strs[i] = m.String()
		}
		pvStr = " " + strings.Join(strs, " ")
	}
	e.println("%d %d %d %d%s", depth, score, elapsedCs(start), nodes, pvStr)
}

func elapsedCs(start time.Time) int64 {
	return time.Since(start).Milliseconds() / 10
}

func atoiOr(args []string, fallback int) int {
	n, err := strconv.Atoi(first(args))
	if err != nil {
		return fallback
	}
	return n
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
