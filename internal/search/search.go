// Package search implements iterative-deepening negamax over a
// Crazyhouse/Bughouse position: null-move pruning and razoring in the deep
// branch, a captures-and-mate-tries-only shallow branch, quiescence at the
// horizon, and the Crazyhouse/Bughouse-specific no-legal-move scoring.
package search

import (
	"sync/atomic"
	"time"

	"github.com/nullmove/sunshouse/internal/board"
	"github.com/nullmove/sunshouse/internal/eval"
	"github.com/nullmove/sunshouse/internal/movegen"
	"github.com/nullmove/sunshouse/internal/ttable"
)

const (
	Infinity = 30000

	// onePly is the sub-unit count of one full ply; extensions and
	// razor reductions are given directly in these sub-units.
	onePly = 4

	ccDepth            = 3 * onePly // deep/shallow branch threshold
	captureExtension   = onePly / 2
	nullReductionPlies = 3 * onePly // (NULL_REDUCTION=2 + 1) plies

	nodeCheckInterval = 20000

	seeWinningThreshold = 20

	maxQuiesceDepth = 32
)

// PVTable stores the principal variation discovered at each ply.
type PVTable struct {
	length [ttable.MaxPly]int
	moves  [ttable.MaxPly][ttable.MaxPly]board.Move
}

// Searcher drives one iterative-deepening search over a single board. It
// is not safe for concurrent use; a Bughouse engine runs one per board.
type Searcher struct {
	pos   *board.Position
	tt    *ttable.Table
	learn *ttable.LearnTable

	bughouse       bool
	partnerSitting bool

	hist historyTable
	pv   PVTable

	nodes    uint64
	stopFlag atomic.Bool
	deadline time.Time
	infinite bool

	lastMove [ttable.MaxPly]board.Move

	onInfo func(depth, score int, nodes uint64, pv []board.Move)
}

// SetInfoCallback installs a callback invoked once per completed
// iterative-deepening iteration, in the style of the teacher's OnInfo
// hook, so a protocol layer can report "depth value time nodes pv" lines
// without the searcher knowing anything about how they're formatted.
func (s *Searcher) SetInfoCallback(f func(depth, score int, nodes uint64, pv []board.Move)) {
	s.onInfo = f
}

// NewSearcher creates a searcher sharing the given transposition table and
// (optionally nil) persistent learn table.
func NewSearcher(tt *ttable.Table, learn *ttable.LearnTable) *Searcher {
	return &Searcher{tt: tt, learn: learn}
}

// Stop requests the in-progress search return as soon as it next polls.
func (s *Searcher) Stop() { s.stopFlag.Store(true) }

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 { return s.nodes }

// PV returns the principal variation found by the most recent search.
func (s *Searcher) PV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

// Result is a completed (or time-interrupted) root search outcome.
type Result struct {
	Move  board.Move
	Score int
	Depth int
	Nodes uint64
}

// SearchRoot runs iterative deepening under limits, returning the best
// move found. bughouse and partnerSitting select the evaluator's
// hand-aware terms and the Bughouse branch of no-legal-move scoring.
func (s *Searcher) SearchRoot(pos *board.Position, limits Limits, bughouse, partnerSitting bool) Result {
	s.pos = pos.Copy()
	s.bughouse = bughouse
	s.partnerSitting = partnerSitting
	s.nodes = 0
	s.stopFlag.Store(false)
	s.hist.age()
	s.tt.NewSearch()

	roots := movegen.GenerateLegal(s.pos)
	if roots.Len() == 0 {
		return Result{}
	}

	learnValueCp := 0
	if s.learn != nil {
		if v, found := s.learn.Probe(s.pos.Hash); found {
			learnValueCp = v
		}
	}
	tm := newTimeManager(limits, learnValueCp)
	s.infinite = limits.Infinite
	start := time.Now()
	if !limits.Infinite {
		s.deadline = start.Add(time.Duration(tm.allotmentMs()) * time.Millisecond)
	}

	order := make([]int, roots.Len())
	values := make([]int, roots.Len())
	for i := range order {
		order[i] = i
	}

	best := Result{Move: roots.Get(0)}

	for depth := 1; ; depth++ {
		if limits.FixedDepth > 0 && depth > limits.FixedDepth {
			break
		}
		if depth > 1 && !limits.Infinite && time.Now().After(s.deadline) {
			break
		}
		if limits.FixedNodes > 0 && s.nodes >= limits.FixedNodes {
			break
		}

		sortRootOrder(order, values)

		iterBestValue := -Infinity
		iterBestMove := roots.Get(order[0])
		interrupted := false

		for idx, mi := range order {
			m := roots.Get(mi)
			var score int
			var ok bool
			if idx == 0 {
				alpha, beta := -Infinity, Infinity
				if depth > 1 {
					alpha, beta = best.Score-25, best.Score+25
				}
				score, ok = s.searchFirstRoot(m, depth*onePly, alpha, beta)
			} else {
				score, ok = s.scoutRoot(m, depth*onePly, iterBestValue)
			}
			if !ok {
				interrupted = true
				break
			}

			values[mi] = score
			if score > iterBestValue {
				iterBestValue = score
				iterBestMove = m
			}
		}

		if interrupted {
			break
		}

		best = Result{Move: iterBestMove, Score: iterBestValue, Depth: depth, Nodes: s.nodes}
		s.tt.Store(s.pos.Hash, depth*onePly, ttable.AdjustScoreToTT(iterBestValue, 0), ttable.Exact, iterBestMove)
		tm.onBestValue(iterBestValue)
		if s.onInfo != nil {
			s.onInfo(depth, iterBestValue, s.nodes, s.PV())
		}
		if !limits.Infinite {
			s.deadline = start.Add(time.Duration(tm.allotmentMs()) * time.Millisecond)
		}

		if iterBestValue >= ttable.MateScore-ttable.MaxPly || iterBestValue <= -(ttable.MateScore-ttable.MaxPly) {
			break
		}
		if limits.FixedDepth == 0 && limits.FixedNodes == 0 && !limits.Infinite && time.Now().After(s.deadline) {
			break
		}
	}

	return best
}

// searchFirstRoot searches the principal move with an aspiration window,
// widening and re-searching at the same depth on either side of a fail.
func (s *Searcher) searchFirstRoot(m board.Move, depthUnits, alpha, beta int) (int, bool) {
	window := 25
	a, b := alpha, beta
	for {
		undo := s.pos.MakeMove(m)
		score := -s.negamax(depthUnits-onePly, 1, -b, -a, false)
		s.pos.UnmakeMove(m, undo)
		if s.stopFlag.Load() {
			return 0, false
		}
		if score <= a && a > -Infinity {
			window *= 4
			a -= window
			if a < -Infinity {
				a = -Infinity
			}
			continue
		}
		if score >= b && b < Infinity {
			window *= 4
			b += window
			if b > Infinity {
				b = Infinity
			}
			continue
		}
		return score, true
	}
}

// scoutRoot searches a non-principal root move with a null-window scout,
// falling back to a full re-search only on a fail-high.
func (s *Searcher) scoutRoot(m board.Move, depthUnits, bestValue int) (int, bool) {
	undo := s.pos.MakeMove(m)
	score := -s.negamax(depthUnits-onePly, 1, -(bestValue + 1), -bestValue, false)
	if s.stopFlag.Load() {
		s.pos.UnmakeMove(m, undo)
		return 0, false
	}
	if score > bestValue {
		score = -s.negamax(depthUnits-onePly, 1, -Infinity, -bestValue, false)
	}
	s.pos.UnmakeMove(m, undo)
	if s.stopFlag.Load() {
		return 0, false
	}
	return score, true
}

func sortRootOrder(order []int, values []int) {
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && values[order[j-1]] < values[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
}

// negamax is the recursive heart of the search: depth is counted in
// sub-ply units (see onePly), ply in whole plies from the root. wasNull marks that the move
// leading to this node was a null move, disabling a second consecutive one.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, wasNull bool) int {
	s.nodes++
	if s.nodes%nodeCheckInterval == 0 {
		if s.stopFlag.Load() || (!s.infinite && time.Now().After(s.deadline)) {
			s.stopFlag.Store(true)
			return 0
		}
	}

	s.pv.length[ply] = ply

	if ply > 0 && s.pos.HalfMoveClock >= 100 {
		return 0
	}

	if !movegen.HasLegalMove(s.pos) {
		return s.noLegalMoveScore(ply)
	}

	inCheck := s.pos.InCheck()

	var ttMove board.Move
	if entry, found := s.tt.Probe(s.pos.Hash); found {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			score := ttable.AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case ttable.Exact:
				return score
			case ttable.LowerBound:
				if score >= beta {
					return score
				}
			case ttable.UpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	extension := 0
	if !wasNull && s.capturedOnSameSquareAsLastMove(ply) {
		extension += captureExtension
	}
	if inCheck {
		extension += checkExtensionAmount(depth)
	}
	depth += extension

	if depth <= 0 || ply >= ttable.MaxPly-1 {
		return s.quiescence(ply, alpha, beta)
	}

	origAlpha := alpha
	bestValue := -Infinity
	bestMove := board.NoMove

	switch {
	case inCheck:
		bestValue, bestMove, alpha = s.searchEvasions(depth, ply, alpha, beta, ttMove, bestValue, bestMove)
	case depth > ccDepth:
		if v, ok := s.tryNullMove(depth, ply, beta, wasNull); ok {
			bestValue, bestMove, alpha = v, board.NoMove, alpha
			if bestValue >= beta {
				return bestValue
			}
		}
		if s.stopFlag.Load() {
			return 0
		}
		bestValue, bestMove, alpha = s.searchDeep(depth, ply, alpha, beta, ttMove, bestValue, bestMove)
	default:
		bestValue, bestMove, alpha = s.searchShallow(depth, ply, alpha, beta, ttMove, bestValue, bestMove)
	}

	if s.stopFlag.Load() {
		return 0
	}

	flag := ttable.UpperBound
	if bestValue >= beta {
		flag = ttable.LowerBound
	} else if bestValue > origAlpha {
		flag = ttable.Exact
	}
	s.tt.Store(s.pos.Hash, depth, ttable.AdjustScoreToTT(bestValue, ply), flag, bestMove)

	return bestValue
}

// tryNullMove attempts the null-move-pruning cutoff for the deep branch.
// ok is false when the attempt wasn't made (side has only pawns, or the
// previous move was itself a null move), was interrupted, or did not
// reach beta.
func (s *Searcher) tryNullMove(depth, ply, beta int, wasNull bool) (int, bool) {
	if wasNull || !hasNonPawnMaterial(s.pos, s.pos.SideToMove) {
		return 0, false
	}
	undo := s.pos.MakeNullMove()
	score := -s.negamax(depth-nullReductionPlies, ply+1, -beta, -beta+1, true)
	s.pos.UnmakeNullMove(undo)
	if s.stopFlag.Load() {
		return 0, false
	}
	if score >= beta {
		return score, true
	}
	return 0, false
}

// searchEvasions handles the in-check branch: the hash move first, then
// every evasion (captures of the checker before interpositions — the
// order movegen.GenerateEvasions already produces).
func (s *Searcher) searchEvasions(depth, ply, alpha, beta int, ttMove board.Move, bestValue int, bestMove board.Move) (int, board.Move, int) {
	moves := movegen.GenerateEvasions(s.pos)
	if ttMove != board.NoMove && moves.Contains(ttMove) {
		moveHashFirst(moves, ttMove)
	}
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		score, ok := s.searchChild(m, depth-onePly, ply, alpha, beta)
		if !ok {
			return bestValue, bestMove, alpha
		}
		if score > bestValue {
			bestValue = score
			bestMove = m
			s.updatePV(ply, m)
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			if !m.IsCapture(s.pos) {
				s.hist.update(s.pos, m, depth/onePly)
			}
			break
		}
	}
	return bestValue, bestMove, alpha
}

// searchDeep handles the deep branch: hash move, all captures, then all
// non-captures with razor-reduced depth for uninteresting quiets.
func (s *Searcher) searchDeep(depth, ply, alpha, beta int, ttMove board.Move, bestValue int, bestMove board.Move) (int, board.Move, int) {
	triedHash := false
	if ttMove != board.NoMove && movegen.IsLegal(s.pos, ttMove) {
		score, ok := s.searchChild(ttMove, depth-onePly, ply, alpha, beta)
		if !ok {
			return bestValue, bestMove, alpha
		}
		triedHash = true
		if score > bestValue {
			bestValue = score
			bestMove = ttMove
			s.updatePV(ply, ttMove)
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			if !ttMove.IsCapture(s.pos) {
				s.hist.update(s.pos, ttMove, depth/onePly)
			}
			return bestValue, bestMove, alpha
		}
	}

	captures := movegen.GenerateCaptures(s.pos)
	for i := 0; i < captures.Len(); i++ {
		m := captures.Get(i)
		if triedHash && m == ttMove {
			continue
		}
		score, ok := s.searchChild(m, depth-onePly, ply, alpha, beta)
		if !ok {
			return bestValue, bestMove, alpha
		}
		if score > bestValue {
			bestValue = score
			bestMove = m
			s.updatePV(ply, m)
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			return bestValue, bestMove, alpha
		}
	}

	quiets := movegen.GenerateNonCaptures(s.pos, s.hist.top(s.pos.SideToMove))
	for i := 0; i < quiets.Len(); i++ {
		m := quiets.Get(i)
		if triedHash && m == ttMove {
			continue
		}
		red := 0
		if !s.isInterestingQuiet(m) {
			red = razorReduction(depth)
		}
		score, ok := s.searchChild(m, depth-onePly+red, ply, alpha, beta)
		if !ok {
			return bestValue, bestMove, alpha
		}
		if score > bestValue {
			bestValue = score
			bestMove = m
			s.updatePV(ply, m)
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			s.hist.update(s.pos, m, depth/onePly)
			return bestValue, bestMove, alpha
		}
	}

	return bestValue, bestMove, alpha
}

// searchShallow handles the shallow branch (remaining depth at or below
// ccDepth): stand-pat, then the hash move, winning captures only, and
// mate tries — no quiet moves are tried at all.
func (s *Searcher) searchShallow(depth, ply, alpha, beta int, ttMove board.Move, bestValue int, bestMove board.Move) (int, board.Move, int) {
	standPat := s.evaluate()
	if standPat > bestValue {
		bestValue = standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
	if alpha >= beta {
		return bestValue, bestMove, alpha
	}

	triedHash := false
	if ttMove != board.NoMove && movegen.IsLegal(s.pos, ttMove) {
		score, ok := s.searchChild(ttMove, depth-onePly, ply, alpha, beta)
		if !ok {
			return bestValue, bestMove, alpha
		}
		triedHash = true
		if score > bestValue {
			bestValue = score
			bestMove = ttMove
			s.updatePV(ply, ttMove)
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			return bestValue, bestMove, alpha
		}
	}

	captures := movegen.GenerateCaptures(s.pos)
	for i := 0; i < captures.Len(); i++ {
		m := captures.Get(i)
		if triedHash && m == ttMove {
			continue
		}
		if !movegen.IsWinningCapture(s.pos, m) {
			continue
		}
		score, ok := s.searchChild(m, depth-onePly, ply, alpha, beta)
		if !ok {
			return bestValue, bestMove, alpha
		}
		if score > bestValue {
			bestValue = score
			bestMove = m
			s.updatePV(ply, m)
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			return bestValue, bestMove, alpha
		}
	}

	mateTries := movegen.GenerateMateTries(s.pos)
	for i := 0; i < mateTries.Len(); i++ {
		m := mateTries.Get(i)
		if triedHash && m == ttMove {
			continue
		}
		score, ok := s.searchChild(m, depth-onePly, ply, alpha, beta)
		if !ok {
			return bestValue, bestMove, alpha
		}
		if score > bestValue {
			bestValue = score
			bestMove = m
			s.updatePV(ply, m)
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			return bestValue, bestMove, alpha
		}
	}

	return bestValue, bestMove, alpha
}

// searchChild makes m, recurses at the given child depth, and unmakes.
func (s *Searcher) searchChild(m board.Move, childDepth, ply, alpha, beta int) (int, bool) {
	undo := s.pos.MakeMove(m)
	prevLast := s.lastMove[ply]
	s.lastMove[ply] = m
	score := -s.negamax(childDepth, ply+1, -beta, -alpha, false)
	s.lastMove[ply] = prevLast
	s.pos.UnmakeMove(m, undo)
	if s.stopFlag.Load() {
		return 0, false
	}
	return score, true
}

// quiescence extends the search through captures only, to avoid the
// horizon effect at the nominal search depth.
func (s *Searcher) quiescence(ply, alpha, beta int) int {
	s.nodes++
	if s.nodes%nodeCheckInterval == 0 {
		if s.stopFlag.Load() || (!s.infinite && time.Now().After(s.deadline)) {
			s.stopFlag.Store(true)
			return 0
		}
	}

	if ply-1 >= maxQuiesceDepth || ply >= ttable.MaxPly-1 {
		return s.evaluate()
	}

	captures := movegen.GenerateCaptures(s.pos)
	if captures.Len() == 0 {
		return s.evaluate()
	}

	standPat := s.evaluate()
	bestValue := standPat
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	for i := 0; i < captures.Len(); i++ {
		m := captures.Get(i)
		if movegen.SEE(s.pos, m) < seeWinningThreshold {
			break // captures are SEE-ordered descending; the rest are worse
		}
		undo := s.pos.MakeMove(m)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UnmakeMove(m, undo)
		if s.stopFlag.Load() {
			return 0
		}
		if score > bestValue {
			bestValue = score
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			break
		}
	}

	return bestValue
}

func (s *Searcher) evaluate() int {
	return eval.Evaluate(s.pos, s.bughouse, s.partnerSitting)
}

func (s *Searcher) updatePV(ply int, m board.Move) {
	s.pv.moves[ply][ply] = m
	next := ply + 1
	for j := next; j < s.pv.length[next]; j++ {
		s.pv.moves[ply][j] = s.pv.moves[next][j]
	}
	s.pv.length[ply] = s.pv.length[next]
	if s.pv.length[ply] <= ply {
		s.pv.length[ply] = ply + 1
	}
}

// noLegalMoveScore implements the Crazyhouse/Bughouse no-legal-move
// scoring: in Crazyhouse a checkmate is always final; in Bughouse a check
// with no geometric block is final too, but a blockable check is merely
// "almost mate" since a partner-supplied drop could still answer it.
func (s *Searcher) noLegalMoveScore(ply int) int {
	if !s.pos.InCheck() {
		return 0 // stalemate
	}
	if !s.bughouse {
		return -ttable.MateScore + ply/2 + 1
	}
	if cantBlock(s.pos) {
		return -ttable.MateScore + bughouseMateEval(s.pos, s.partnerSitting)
	}
	return -almostMate
}

// cantBlock reports whether the side to move's check is geometrically
// unblockable: double check, or a single checker adjacent to the king
// (a knight or a contact check), where no drop could interpose.
func cantBlock(pos *board.Position) bool {
	checkers := pos.Checkers
	if checkers.PopCount() > 1 {
		return true
	}
	ksq := pos.KingSquare[pos.SideToMove]
	unblockable := board.KingAttacks(ksq) | board.KnightAttacks(ksq)
	return checkers&unblockable != 0
}

// bughouseMateEval biases a true mate score by whether the mating side is
// missing the pieces it would need to ask its own partner to sit, so the
// search prefers mates that don't leave the opponent merely waiting on a
// drop from their partner.
func bughouseMateEval(pos *board.Position, partnerSitting bool) int {
	if partnerSitting {
		return 0
	}
	mater := pos.SideToMove.Other()
	bonus := 0
	if pos.Hand[mater][board.Rook] < 1 {
		bonus += board.PieceValue[board.Rook]
	}
	if pos.Hand[mater][board.Knight] < 1 {
		bonus += board.PieceValue[board.Knight]
	}
	if pos.Hand[mater][board.Pawn] < 1 {
		bonus += board.PieceValue[board.Pawn]
	}
	return bonus
}

// capturedOnSameSquareAsLastMove reports whether the move just made at
// ply-1 landed on the same square as the move at ply-2, i.e. it captured
// the piece that move had just put there. Whether the ply-2 move was
// itself a capture, and whether the recapturing piece is defended, are
// not checked.
func (s *Searcher) capturedOnSameSquareAsLastMove(ply int) bool {
	if ply < 2 {
		return false
	}
	last := s.lastMove[ply-1]
	prev := s.lastMove[ply-2]
	if last == board.NoMove || prev == board.NoMove {
		return false
	}
	return last.To() == prev.To()
}

// checkExtensionAmount extends more generously the more depth remains:
// 3 sub-units above 5 plies, 2 above 3 plies, 1 otherwise.
func checkExtensionAmount(depth int) int {
	switch {
	case depth > 5*onePly:
		return 3
	case depth > 3*onePly:
		return 2
	default:
		return 1
	}
}

// razorReduction reduces an uninteresting quiet move further than the
// normal one-ply decrement, more aggressively the less depth remains.
func razorReduction(depth int) int {
	switch {
	case depth-onePly < 6*onePly:
		return -4
	case depth-onePly < 8*onePly:
		return -3
	default:
		return -2
	}
}

// isInterestingQuiet reports whether a quiet move should be searched at
// full depth rather than razor-reduced: it gives check, or it moves a
// piece away from a square where it was more attacked than defended.
func (s *Searcher) isInterestingQuiet(m board.Move) bool {
	us := s.pos.SideToMove
	if !m.IsDrop() {
		from := m.From()
		if s.pos.Attacks[us.Other()][from] > s.pos.Attacks[us][from] {
			return true // escaping an attack
		}
	}
	undo := s.pos.MakeMove(m)
	givesCheck := s.pos.InCheck()
	s.pos.UnmakeMove(m, undo)
	return givesCheck
}

func hasNonPawnMaterial(pos *board.Position, c board.Color) bool {
	for pt := board.Knight; pt <= board.Queen; pt++ {
		if pos.Pieces[c][pt] != 0 {
			return true
		}
	}
	return false
}

func moveHashFirst(ml *board.MoveList, hash board.Move) {
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i) == hash {
			ml.Swap(0, i)
			return
		}
	}
}
