package xiangqi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrInvalidMove = errors.New("invalid move")
)

// Encode 输出标准象棋 FEN：从黑方底线（rank 9）写到红方底线，空格后 w/b。
func (p *Position) Encode() string {
	var sb strings.Builder
	for r := Ranks - 1; r >= 0; r-- {
		if r != Ranks-1 {
			sb.WriteByte('/')
		}
		empty := 0
		for f := 0; f < Files; f++ {
			pc := p.Board.Get(Sq(r, f))
			if pc == 0 {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pieceToChar(pc))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	if p.SideToMove == Black {
		sb.WriteString(" b")
	} else {
		sb.WriteString(" w")
	}
	fmt.Fprintf(&sb, " - - 0 %d", p.Ply/2+1)
	return sb.String()
}

// DecodePosition 解析 FEN。只要求棋盘段，走子方缺省为红；
// 第六段（回合数）存在时用来恢复 Ply。
func DecodePosition(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return nil, ErrInvalidFEN
	}
	rows := strings.Split(parts[0], "/")
	if len(rows) != Ranks {
		return nil, fmt.Errorf("%w: want %d ranks, got %d", ErrInvalidFEN, Ranks, len(rows))
	}

	pos := &Position{SideToMove: Red}
	var count [2]int
	for i, row := range rows {
		r := Ranks - 1 - i
		f := 0
		for _, ch := range row {
			if ch >= '1' && ch <= '9' {
				f += int(ch - '0')
				if f > Files {
					return nil, fmt.Errorf("%w: rank %d too long", ErrInvalidFEN, r)
				}
				continue
			}
			if f >= Files {
				return nil, fmt.Errorf("%w: rank %d too long", ErrInvalidFEN, r)
			}
			pt, ok := letterToPieceType[unicode.ToLower(ch)]
			if !ok {
				return nil, fmt.Errorf("%w: bad piece %q", ErrInvalidFEN, ch)
			}
			side := Black
			if unicode.IsUpper(ch) {
				side = Red
			}
			if pt == PieceGeneral {
				count[sideIndex(side)]++
				if count[sideIndex(side)] > 1 {
					return nil, fmt.Errorf("%w: two %s generals", ErrInvalidFEN, side)
				}
			}
			pos.Board.Set(Sq(r, f), MakePiece(side, pt))
			f++
		}
		if f != Files {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, r, f)
		}
	}

	if len(parts) >= 2 {
		switch parts[1] {
		case "w", "r":
			pos.SideToMove = Red
		case "b":
			pos.SideToMove = Black
		default:
			return nil, fmt.Errorf("%w: bad side %q", ErrInvalidFEN, parts[1])
		}
	}
	if len(parts) >= 6 {
		if n, err := strconv.Atoi(parts[5]); err == nil && n > 0 {
			pos.Ply = (n - 1) * 2
			if pos.SideToMove == Black {
				pos.Ply++
			}
		}
	}
	return pos, nil
}

// ICCS 坐标记谱，例如 h2e2。
func (m Move) ICCS() string {
	if m.IsNull() {
		return "0000"
	}
	return m.From.String() + m.To.String()
}

func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return -1, fmt.Errorf("%w: square %q", ErrInvalidMove, s)
	}
	f := int(unicode.ToLower(rune(s[0])) - 'a')
	r := int(s[1] - '0')
	if !IsValidSquare(r, f) {
		return -1, fmt.Errorf("%w: square %q", ErrInvalidMove, s)
	}
	return Sq(r, f), nil
}

// ParseICCS 只做格式解析，不检查合法性。
func ParseICCS(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		s = s[:2] + s[3:]
	}
	if len(s) != 4 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return NoMove, err
	}
	return Move{From: from, To: to}, nil
}
