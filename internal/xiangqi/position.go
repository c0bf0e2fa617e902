package xiangqi

// IsFlyingGeneral 两个老将同列且中间无子。
func (b *Board) IsFlyingGeneral() bool {
	red, black := b.FindGeneral(Red), b.FindGeneral(Black)
	if red < 0 || black < 0 {
		return false
	}
	if red.File() != black.File() {
		return false
	}
	return b.CountPiecesBetween(red, black) == 0
}

func (b *Board) GeneralExists(side Side) bool {
	return b.FindGeneral(side) >= 0
}

// Clone 深拷贝，Board 是值类型，直接复制即可。
func (p *Position) Clone() *Position {
	np := *p
	return &np
}

func (p *Position) String() string {
	return p.Board.String() + p.SideToMove.String() + " to move\n"
}
