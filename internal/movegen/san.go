package movegen

import (
	"strings"

	"github.com/nullmove/sunshouse/internal/board"
)

// ToSAN converts a move to Standard Algebraic Notation, with the
// Crazyhouse/Bughouse "P@e4" drop extension.
func ToSAN(pos *board.Position, m board.Move) string {
	if m == board.NoMove {
		return "-"
	}

	if m.IsDrop() {
		var sb strings.Builder
		pt := m.MovedPiece().Type()
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteByte('@')
		sb.WriteString(m.To().String())
		appendCheckMarker(&sb, pos, m)
		return sb.String()
	}

	from := m.From()
	to := m.To()
	piece := pos.PieceAt(from)
	if piece == board.NoPiece {
		return m.String()
	}

	if m.IsCastling() {
		if to.File() > from.File() {
			return "O-O"
		}
		return "O-O-O"
	}

	var sb strings.Builder
	pt := piece.Type()

	if pt != board.Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(getDisambiguation(pos, m, pt))
	}

	if m.IsCapture(pos) {
		if pt == board.Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte("PNBRQK"[m.Promotion()])
	}

	appendCheckMarker(&sb, pos, m)
	return sb.String()
}

func appendCheckMarker(sb *strings.Builder, pos *board.Position, m board.Move) {
	newPos := pos.Copy()
	newPos.MakeMove(m)
	if newPos.IsCheckmate() {
		sb.WriteByte('#')
	} else if newPos.InCheck() {
		sb.WriteByte('+')
	}
}

// getDisambiguation returns the disambiguation string needed for a move
// among other legal moves of the same piece type to the same square.
func getDisambiguation(pos *board.Position, m board.Move, pt board.PieceType) string {
	from := m.From()
	to := m.To()
	us := pos.SideToMove
	pieces := pos.Pieces[us][pt]

	var candidates []board.Square
	allMoves := GenerateLegal(pos)
	for i := 0; i < allMoves.Len(); i++ {
		move := allMoves.Get(i)
		if move.To() != to || move.IsDrop() {
			continue
		}
		moveFrom := move.From()
		if moveFrom == from {
			continue
		}
		if pieces.IsSet(moveFrom) {
			candidates = append(candidates, moveFrom)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + from.File()))
	}
	if !sameRank {
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// ParseSAN parses a SAN string (including the "P@sq" drop extension)
// against the legal moves available in pos.
func ParseSAN(s string, pos *board.Position) (board.Move, error) {
	s = strings.TrimSpace(s)
	us := pos.SideToMove

	if s == "O-O" || s == "0-0" {
		if us == board.White {
			return findCastling(pos, board.E1, board.G1)
		}
		return findCastling(pos, board.E8, board.G8)
	}
	if s == "O-O-O" || s == "0-0-0" {
		if us == board.White {
			return findCastling(pos, board.E1, board.C1)
		}
		return findCastling(pos, board.E8, board.C8)
	}

	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSuffix(s, "#")

	if idx := strings.IndexByte(s, '@'); idx >= 0 {
		pt := board.Pawn
		if idx == 1 {
			switch s[0] {
			case 'N':
				pt = board.Knight
			case 'B':
				pt = board.Bishop
			case 'R':
				pt = board.Rook
			case 'Q':
				pt = board.Queen
			}
		}
		to, err := board.ParseSquare(s[idx+1:])
		if err != nil {
			return board.NoMove, err
		}
		return board.NewDrop(to, board.NewPiece(pt, us)), nil
	}

	var promoPiece board.PieceType = board.NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		switch s[idx+1] {
		case 'N':
			promoPiece = board.Knight
		case 'B':
			promoPiece = board.Bishop
		case 'R':
			promoPiece = board.Rook
		case 'Q':
			promoPiece = board.Queen
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := board.Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		switch s[0] {
		case 'N':
			pt = board.Knight
		case 'B':
			pt = board.Bishop
		case 'R':
			pt = board.Rook
		case 'Q':
			pt = board.Queen
		case 'K':
			pt = board.King
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return board.NoMove, nil
	}
	dest, err := board.ParseSquare(s[len(s)-2:])
	if err != nil {
		return board.NoMove, err
	}
	s = s[:len(s)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		if c >= 'a' && c <= 'h' {
			disambigFile = int(c - 'a')
		} else if c >= '1' && c <= '8' {
			disambigRank = int(c - '1')
		}
	}

	moves := GenerateLegal(pos)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsDrop() || m.To() != dest {
			continue
		}
		from := m.From()
		piece := pos.PieceAt(from)
		if piece.Type() != pt {
			continue
		}
		if disambigFile >= 0 && from.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && from.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture(pos) {
			continue
		}
		if promoPiece != board.NoPieceType {
			if !m.IsPromotion() || m.Promotion() != promoPiece {
				continue
			}
		} else if m.IsPromotion() {
			continue
		}
		return m, nil
	}

	return board.NoMove, nil
}

func findCastling(pos *board.Position, from, to board.Square) (board.Move, error) {
	moves := GenerateLegal(pos)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == from && m.To() == to && m.IsCastling() {
			return m, nil
		}
	}
	return board.NoMove, nil
}

// MovesToSAN converts a slice of moves, played in sequence from pos, to
// SAN notation.
func MovesToSAN(pos *board.Position, moves []board.Move) []string {
	result := make([]string, len(moves))
	p := pos.Copy()
	for i, m := range moves {
		result[i] = ToSAN(p, m)
		p.MakeMove(m)
	}
	return result
}
