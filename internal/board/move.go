package board

import "fmt"

// Move is an immutable 32-bit encoded tuple (from, to, moved_piece,
// promotion_piece, is_bad).
//
// from == InHand marks a drop: moved_piece names the piece being placed
// from hand and there is no captured-piece bookkeeping to undo beyond the
// hand count. is_bad marks the one-past-the-end sentinel a move list can
// carry so a scan can stop without a separate length check.
//
//	bits 0-6:   from square (0-66, includes InHand/OffBoard/NoSquare)
//	bits 7-12:  to square (0-63)
//	bits 13-16: moved piece (0-12, includes NoPiece)
//	bits 17-19: promotion piece type (0-6, includes NoPieceType)
//	bit  20:    is_bad
type Move uint32

const (
	moveFromShift  = 0
	moveToShift    = 7
	movePieceShift = 13
	movePromoShift = 17
	moveBadShift   = 20

	moveFromMask  = 0x7F
	moveToMask    = 0x3F
	movePieceMask = 0xF
	movePromoMask = 0x7
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// BadMove is the end-of-list sentinel: a move with the is_bad bit set and no
// other meaningful fields.
const BadMove Move = 1 << moveBadShift

func encodeMove(from, to Square, moved Piece, promo PieceType) Move {
	return Move(from)<<moveFromShift |
		Move(to)<<moveToShift |
		Move(moved)<<movePieceShift |
		Move(promo)<<movePromoShift
}

// NewMove creates a normal board move (no promotion).
func NewMove(from, to Square, moved Piece) Move {
	return encodeMove(from, to, moved, NoPieceType)
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, moved Piece, promo PieceType) Move {
	return encodeMove(from, to, moved, promo)
}

// NewDrop creates a drop move: from is InHand, moved names the dropped piece.
func NewDrop(to Square, moved Piece) Move {
	return encodeMove(InHand, to, moved, NoPieceType)
}

// From returns the origin square, or InHand for a drop.
func (m Move) From() Square {
	return Square((m >> moveFromShift) & moveFromMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> moveToShift) & moveToMask)
}

// MovedPiece returns the piece being moved (or dropped).
func (m Move) MovedPiece() Piece {
	return Piece((m >> movePieceShift) & movePieceMask)
}

// Promotion returns the promotion piece type, or NoPieceType if this is not
// a promoting move.
func (m Move) Promotion() PieceType {
	return PieceType((m >> movePromoShift) & movePromoMask)
}

// IsPromotion returns true if this move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Promotion() != NoPieceType
}

// IsDrop returns true if this move places a piece from hand.
func (m Move) IsDrop() bool {
	return m.From() == InHand
}

// IsBad returns true if m is the end-of-list sentinel.
func (m Move) IsBad() bool {
	return m&BadMove != 0
}

// IsCastling reports whether this is a king move of two files, the
// encoding used for castling (no separate flag bit is needed: a two-square
// king move is unambiguous since no other rule produces one).
func (m Move) IsCastling() bool {
	return m.MovedPiece().Type() == King && abs(m.To().File()-m.From().File()) == 2
}

// IsEnPassant reports whether this is a pawn move to the en-passant square
// that isn't a simple forward push, given the position it was generated in.
func (m Move) IsEnPassant(pos *Position) bool {
	return m.MovedPiece().Type() == Pawn && m.To() == pos.EnPassant && m.To() != OffBoard &&
		m.From().File() != m.To().File()
}

// IsCapture returns true if this move captures a piece (including en
// passant). Drops never capture.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsDrop() {
		return false
	}
	if m.IsEnPassant(pos) {
		return true
	}
	return pos.PieceAt(m.To()) != NoPiece
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String returns the engine's textual move format: algebraic from-to, an
// '@' origin for drops, and a trailing promotion letter.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	var s string
	if m.IsDrop() {
		s = fmt.Sprintf("%c@%s", "PNBRQK"[m.MovedPiece().Type()], m.To())
	} else {
		s = m.From().String() + m.To().String()
	}
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove parses the engine's textual move format against pos, which
// supplies the moved piece and disambiguates castling/en-passant.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	if s[1] == '@' {
		pt, err := pieceTypeFromUpperChar(s[0])
		if err != nil {
			return NoMove, err
		}
		to, err := ParseSquare(s[2:4])
		if err != nil {
			return NoMove, err
		}
		return NewDrop(to, NewPiece(pt, pos.SideToMove)), nil
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, piece, promo), nil
	}

	return NewMove(from, to, piece), nil
}

func pieceTypeFromUpperChar(c byte) (PieceType, error) {
	switch c {
	case 'P':
		return Pawn, nil
	case 'N':
		return Knight, nil
	case 'B':
		return Bishop, nil
	case 'R':
		return Rook, nil
	case 'Q':
		return Queen, nil
	default:
		return NoPieceType, fmt.Errorf("invalid drop piece: %c", c)
	}
}

// maxMoves bounds a single MoveList. A drop-heavy Crazyhouse/Bughouse
// position can hold all five droppable piece types against dozens of
// empty squares on top of the usual board moves, so this follows the
// original engine's own MAX_MOVES of 512 rather than chess's much
// smaller no-drop bound.
const maxMoves = 512

// MoveList is a fixed-size list of moves to avoid allocations during search.
type MoveList struct {
	moves [maxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Terminate appends the bad-move end-of-list sentinel.
func (ml *MoveList) Terminate() {
	ml.Add(BadMove)
}
