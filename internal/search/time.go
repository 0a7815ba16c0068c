package search

// Limits describes how a root search should be bounded: wall-clock
// budget from the xboard "time"/"otim" clocks (in centiseconds, matching
// the protocol's own units), or a fixed depth/node ceiling for "sd"/"snodes".
type Limits struct {
	MyClockCs      int // our remaining clock, centiseconds
	OppClockCs     int // opponent's remaining clock, centiseconds
	Bughouse       bool
	PartnerClockCs int // partner board's remaining clock, centiseconds (Bughouse only)
	FixedDepth     int // 0 = no fixed depth
	FixedNodes     uint64
	Infinite       bool // analyze mode: run until stopped
}

// extremeEval marks a position severe enough (we are being mated) that
// the allotment for this move is doubled once, since losing quickly to
// a clock flag is worse than losing quickly to a better move elsewhere.
const extremeEval = 8000

// almostMate is the finite score assigned in Bughouse when the side to
// move is in check with no legal move, but the check could be blocked by
// a dropped piece: a piece from the partner may still arrive, so the
// position is not scored as a full mate.
const almostMate = 20000

// timeManager computes the per-move time budget following the spec's
// clamp table: allotment shrinks disproportionately as the clock runs
// low, since a single over-budget move near flag-fall is fatal in a way
// it isn't earlier in the game.
type timeManager struct {
	allotmentCs int
	doubledOnce bool
}

func newTimeManager(limits Limits, learnValueCp int) *timeManager {
	tm := &timeManager{}
	tm.allotmentCs = allotmentFor(limits.MyClockCs)

	if limits.Bughouse && limits.PartnerClockCs > 0 {
		// A partner running low on time needs us to keep the game moving;
		// never plan to think longer than a share of what they have left.
		partnerShare := limits.PartnerClockCs / 10
		if partnerShare < tm.allotmentCs {
			tm.allotmentCs = partnerShare
		}
	}

	if learnValueCp != 0 {
		bias := learnValueCp * 4
		if bias > tm.allotmentCs {
			bias = tm.allotmentCs
		}
		if bias < -tm.allotmentCs+1 {
			bias = -tm.allotmentCs + 1
		}
		tm.allotmentCs += bias
	}

	if tm.allotmentCs < 1 {
		tm.allotmentCs = 1
	}
	return tm
}

// allotmentFor implements the clamp table: allot ~clock/25 normally,
// dropping to clock/40 at 20s, a flat 100ms at 4s, and a flat 20ms at
// 0.8s, so the budget per move shrinks faster than the clock itself
// does as time runs out.
func allotmentFor(myClockCs int) int {
	switch {
	case myClockCs <= 80:
		return 2
	case myClockCs <= 400:
		return 10
	case myClockCs <= 2000:
		return myClockCs / 40
	default:
		return myClockCs / 25
	}
}

// onBestValue lets the root search double the allotment once if we
// discover we are being mated severely.
func (tm *timeManager) onBestValue(best int) {
	if !tm.doubledOnce && best < -extremeEval {
		tm.allotmentCs *= 2
		tm.doubledOnce = true
	}
}

func (tm *timeManager) allotmentMs() int64 {
	return int64(tm.allotmentCs) * 10
}
