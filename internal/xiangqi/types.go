package xiangqi

type Side int8

const (
	NoSide Side = -1
	Red    Side = 0
	Black  Side = 1
)

func (s Side) Opposite() Side {
	switch s {
	case Red:
		return Black
	case Black:
		return Red
	}
	return NoSide
}

func (s Side) String() string {
	switch s {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return "none"
}

type PieceType int8

const (
	PieceNone     PieceType = iota
	PieceGeneral            // 帅 / 将
	PieceAdvisor            // 仕 / 士
	PieceElephant           // 相 / 象
	PieceHorse              // 马
	PieceChariot            // 车
	PieceCannon             // 炮
	PieceSoldier            // 兵 / 卒
)

func (pt PieceType) String() string {
	switch pt {
	case PieceGeneral:
		return "general"
	case PieceAdvisor:
		return "advisor"
	case PieceElephant:
		return "elephant"
	case PieceHorse:
		return "horse"
	case PieceChariot:
		return "chariot"
	case PieceCannon:
		return "cannon"
	case PieceSoldier:
		return "soldier"
	}
	return "none"
}

type Piece int8 // 0=空；>0 红；<0 黑；abs=PieceType

func MakePiece(side Side, pt PieceType) Piece {
	if pt == PieceNone || side == NoSide {
		return 0
	}
	if side == Red {
		return Piece(pt)
	}
	return -Piece(pt)
}

func (p Piece) Type() PieceType {
	if p < 0 {
		return PieceType(-p)
	}
	return PieceType(p)
}

func (p Piece) Side() Side {
	if p == 0 {
		return NoSide
	}
	if p > 0 {
		return Red
	}
	return Black
}

func (p Piece) IsEmpty() bool { return p == 0 }

type Move struct {
	From  Square `json:"from"`
	To    Square `json:"to"`
	Score int    `json:"-"` // 搜索排序用，不进 JSON
}

// NoMove 表示“无着法”，From/To 都是非法格子。
var NoMove = Move{From: -1, To: -1}

func (m Move) IsNull() bool {
	return !m.From.Valid() || !m.To.Valid()
}

// Same 只比较起止格，忽略 Score。
func (m Move) Same(o Move) bool {
	return m.From == o.From && m.To == o.To
}

// Position = 棋盘 + 轮到谁走 + 已走的半回合数
type Position struct {
	Board      Board
	SideToMove Side
	Ply        int
}
