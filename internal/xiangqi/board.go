package xiangqi

import "strings"

const (
	Ranks      = 10
	Files      = 9
	NumSquares = Ranks * Files

	// 河界：红方 0..4，黑方 5..9
	RiverRank = 5

	CenterFile = Files / 2 // 4
)

// Square 按 rank*Files+file 编号，rank 0 是红方底线。
type Square int

func Sq(rank, file int) Square { return Square(rank*Files + file) }

func (s Square) Rank() int { return int(s) / Files }
func (s Square) File() int { return int(s) % Files }

func (s Square) Valid() bool { return s >= 0 && s < NumSquares }

func (s Square) String() string {
	if !s.Valid() {
		return "--"
	}
	return string([]byte{byte('a' + s.File()), byte('0' + s.Rank())})
}

// IsValidSquare 只做范围检查。
func IsValidSquare(rank, file int) bool {
	return rank >= 0 && rank < Ranks && file >= 0 && file < Files
}

// IsInPalace 红方九宫 rank 0..2，黑方 7..9，file 3..5。
func IsInPalace(sq Square, side Side) bool {
	if !sq.Valid() {
		return false
	}
	return inPalace(side, sq.Rank(), sq.File())
}

func inPalace(side Side, rank, file int) bool {
	if file < 3 || file > 5 {
		return false
	}
	switch side {
	case Red:
		return rank >= 0 && rank <= 2
	case Black:
		return rank >= 7 && rank <= 9
	}
	return false
}

// 是否在自己半场（象不能过河）
func ownHalf(side Side, rank int) bool {
	if side == Red {
		return rank < RiverRank
	}
	if side == Black {
		return rank >= RiverRank
	}
	return false
}

// 兵是否已经过河
func crossedRiver(side Side, rank int) bool {
	if side == Red {
		return rank >= RiverRank
	}
	if side == Black {
		return rank < RiverRank
	}
	return false
}

// 兵的前进方向：红向上(+1)，黑向下(-1)
func soldierDir(side Side) int {
	if side == Red {
		return +1
	}
	if side == Black {
		return -1
	}
	return 0
}

func sideIndex(side Side) int {
	if side == Black {
		return 1
	}
	return 0
}

// Board 拥有 90 个格子；没有棋子对象，也不需要反向引用。
type Board struct {
	squares  [NumSquares]Piece
	hash     uint64
	generals [2]int8 // 将帅所在格 +1；0 表示不在盘上
}

// Get 越界返回空。
func (b *Board) Get(sq Square) Piece {
	if !sq.Valid() {
		return 0
	}
	return b.squares[sq]
}

// Set 无条件写入，同时维护哈希和将帅位置。
func (b *Board) Set(sq Square, pc Piece) {
	if !sq.Valid() {
		return
	}
	old := b.squares[sq]
	if old == pc {
		return
	}
	if old != 0 {
		b.hash ^= pieceHashKey(old, sq)
		if old.Type() == PieceGeneral && int(b.generals[sideIndex(old.Side())]) == int(sq)+1 {
			b.generals[sideIndex(old.Side())] = 0
		}
	}
	b.squares[sq] = pc
	if pc != 0 {
		b.hash ^= pieceHashKey(pc, sq)
		if pc.Type() == PieceGeneral {
			b.generals[sideIndex(pc.Side())] = int8(sq + 1)
		}
	}
}

// MakeTestMove 把 From 上的子挪到 To，To 上原有的子直接被覆盖。
// 调用方需要先用 Get(m.To) 记下被吃的子。
func (b *Board) MakeTestMove(m Move) {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return
	}
	pc := b.squares[m.From]
	b.Set(m.To, pc)
	b.Set(m.From, 0)
}

// UndoTestMove 必须和之前的一次 MakeTestMove 严格配对（后进先出）。
func (b *Board) UndoTestMove(m Move, captured Piece) {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return
	}
	pc := b.squares[m.To]
	b.Set(m.From, pc)
	b.Set(m.To, captured)
}

// CountPiecesBetween 统计同行/同列两格之间（不含两端）的棋子数，不共线返回 0。
func (b *Board) CountPiecesBetween(a, c Square) int {
	if !a.Valid() || !c.Valid() {
		return 0
	}
	ar, af := a.Rank(), a.File()
	cr, cf := c.Rank(), c.File()
	n := 0
	switch {
	case ar == cr && af != cf:
		lo, hi := min(af, cf), max(af, cf)
		for f := lo + 1; f < hi; f++ {
			if b.squares[Sq(ar, f)] != 0 {
				n++
			}
		}
	case af == cf && ar != cr:
		lo, hi := min(ar, cr), max(ar, cr)
		for r := lo + 1; r < hi; r++ {
			if b.squares[Sq(r, af)] != 0 {
				n++
			}
		}
	}
	return n
}

// Hash 只包含棋子摆放；走子方由调用方异或 SideKey。
func (b *Board) Hash() uint64 { return b.hash }

// FindGeneral 找不到返回 -1。
func (b *Board) FindGeneral(side Side) Square {
	if side != Red && side != Black {
		return -1
	}
	return Square(b.generals[sideIndex(side)]) - 1
}

func (b *Board) PieceCount() int {
	n := 0
	for _, pc := range b.squares {
		if pc != 0 {
			n++
		}
	}
	return n
}

func (b *Board) Clone() *Board {
	nb := *b
	return &nb
}

// Squares 返回棋盘数组的副本，外部改动不会影响棋盘。
func (b *Board) Squares() [NumSquares]Piece { return b.squares }

var letterToPieceType = map[rune]PieceType{
	'k': PieceGeneral,
	'a': PieceAdvisor,
	'b': PieceElephant,
	'n': PieceHorse,
	'r': PieceChariot,
	'c': PieceCannon,
	'p': PieceSoldier,
}

var pieceTypeToLetter = [...]byte{'.', 'k', 'a', 'b', 'n', 'r', 'c', 'p'}

func pieceToChar(p Piece) byte {
	if p == 0 {
		return '.'
	}
	ch := pieceTypeToLetter[p.Type()]
	if p.Side() == Red {
		return ch - 'a' + 'A'
	}
	return ch
}

// String 从黑方底线往下打印，方便肉眼对照 FEN。
func (b *Board) String() string {
	var sb strings.Builder
	for r := Ranks - 1; r >= 0; r-- {
		for f := 0; f < Files; f++ {
			sb.WriteByte(pieceToChar(b.squares[Sq(r, f)]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

const InitialFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"

func NewInitialPosition() *Position {
	pos, err := DecodePosition(InitialFEN)
	if err != nil {
		panic("bad initial FEN: " + err.Error())
	}
	return pos
}
