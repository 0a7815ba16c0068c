package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position, with empty
// holdings in brackets per the Crazyhouse/Bughouse holdings convention.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR[] w KQkq - 0 1"

// ParseFEN parses a FEN string, including an optional bracketed holdings
// section and '~' promoted-pawn suffixes on board pieces, and returns a
// Position.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{
		EnPassant:      OffBoard,
		FullMoveNumber: 1,
	}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare

	placement, holdings := splitHoldings(parts[0])

	if err := parsePiecePlacement(pos, placement); err != nil {
		return nil, err
	}
	if err := parseHoldings(pos, holdings); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		pos.EnPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	pos.updateOccupied()
	pos.findKings()
	pos.rebuildAttacksAndAux()
	pos.Hash = pos.ComputeHash()
	pos.Material = pos.computeMaterial()

	return pos, nil
}

// splitHoldings separates "board[holdings]" into its two parts; holdings
// is "" if the bracket section is absent.
func splitHoldings(field string) (placement, holdings string) {
	if i := strings.IndexByte(field, '['); i >= 0 {
		j := strings.IndexByte(field, ']')
		if j > i {
			return field[:i], field[i+1 : j]
		}
		return field[:i], ""
	}
	return field, ""
}

// parsePiecePlacement parses the piece placement section of a FEN string,
// including a trailing '~' marking the preceding piece as promoted.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		runes := []rune(rankStr)

		for idx := 0; idx < len(runes); idx++ {
			c := runes[idx]
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("invalid piece character: %c", c)
			}
			sq := NewSquare(file, rank)

			promoted := idx+1 < len(runes) && runes[idx+1] == '~'
			if promoted {
				idx++
			}

			pos.setPiece(piece, sq, promoted)
			file++
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return nil
}

// parseHoldings parses a bracketed holdings string such as "PPNb" into
// per-color hand counts. Uppercase letters are White's hand, lowercase
// Black's.
func parseHoldings(pos *Position, holdings string) error {
	for _, c := range holdings {
		piece := PieceFromChar(byte(c))
		if piece == NoPiece {
			return fmt.Errorf("invalid holdings character: %c", c)
		}
		pos.Hand[piece.Color()][piece.Type()]++
	}
	return nil
}

// setPiece places a piece directly on the board without touching the
// incremental attack table; used only while loading a FEN, which rebuilds
// Attacks/aux occupancy in one pass afterward via rebuildAttacksAndAux.
func (p *Position) setPiece(piece Piece, sq Square, promoted bool) {
	bb := SquareBB(sq)
	p.Pieces[piece.Color()][piece.Type()] |= bb
	if promoted {
		p.PromotedPawns = p.PromotedPawns.Set(sq)
	}
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			pos.CastlingRights |= WhiteKingSideCastle
		case 'Q':
			pos.CastlingRights |= WhiteQueenSideCastle
		case 'k':
			pos.CastlingRights |= BlackKingSideCastle
		case 'q':
			pos.CastlingRights |= BlackQueenSideCastle
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}

	return nil
}

// ToFEN returns the FEN representation of the position, including
// holdings in brackets and '~' suffixes on promoted pieces.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
				if p.PromotedPawns.IsSet(sq) {
					sb.WriteByte('~')
				}
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte('[')
	sb.WriteString(p.handString(White))
	sb.WriteString(strings.ToLower(p.handString(Black)))
	sb.WriteByte(']')

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

// ComputeHash computes the Zobrist hash for the position from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= zobristPiece[c][pt][sq]
			}
		}
	}

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= Queen; pt++ {
			for i := 0; i < p.Hand[c][pt]; i++ {
				hash ^= zobristHand[c][pt][i]
			}
		}
	}

	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}

	hash ^= zobristCastling[p.CastlingRights]

	if p.EnPassant != OffBoard && p.EnPassant != NoSquare {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	return hash
}

// computeMaterial computes the board-only material balance from scratch.
func (p *Position) computeMaterial() int {
	score := 0
	for pt := Pawn; pt <= King; pt++ {
		score += p.Pieces[White][pt].PopCount() * PieceValue[pt]
		score -= p.Pieces[Black][pt].PopCount() * PieceValue[pt]
	}
	return score
}
