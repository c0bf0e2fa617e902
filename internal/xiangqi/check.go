package xiangqi

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// CanAttack 判断 from 上属于 side 的棋子能否攻击到 to（不看 to 上是谁）。
// 只做几何判断，比生成整张走法表快得多，将军检测和保护判断都用它。
func (b *Board) CanAttack(from, to Square, side Side) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	pc := b.squares[from]
	if pc == 0 || pc.Side() != side {
		return false
	}
	fr, fc := from.Rank(), from.File()
	tr, tc := to.Rank(), to.File()
	dr, dc := tr-fr, tc-fc

	switch pc.Type() {
	case PieceChariot:
		return (dr == 0 || dc == 0) && b.CountPiecesBetween(from, to) == 0
	case PieceCannon:
		return (dr == 0 || dc == 0) && b.CountPiecesBetween(from, to) == 1
	case PieceHorse:
		switch {
		case abs(dr) == 2 && abs(dc) == 1:
			return b.squares[Sq(fr+dr/2, fc)] == 0
		case abs(dr) == 1 && abs(dc) == 2:
			return b.squares[Sq(fr, fc+dc/2)] == 0
		}
		return false
	case PieceSoldier:
		if dc == 0 && dr == soldierDir(side) {
			return true
		}
		return dr == 0 && abs(dc) == 1 && crossedRiver(side, fr)
	case PieceGeneral:
		if abs(dr)+abs(dc) == 1 {
			return inPalace(side, tr, tc)
		}
		// 飞将：同列无遮挡，对方老将在 to
		target := b.squares[to]
		return dc == 0 && target.Type() == PieceGeneral && target.Side() != side &&
			b.CountPiecesBetween(from, to) == 0
	case PieceAdvisor:
		return abs(dr) == 1 && abs(dc) == 1 && inPalace(side, tr, tc)
	case PieceElephant:
		return abs(dr) == 2 && abs(dc) == 2 && ownHalf(side, tr) &&
			b.squares[Sq(fr+dr/2, fc+dc/2)] == 0
	}
	return false
}

// IsAttacked 判断 sq 是否被 bySide 的任意棋子攻击。
func (b *Board) IsAttacked(sq Square, bySide Side) bool {
	for s := Square(0); s < NumSquares; s++ {
		pc := b.squares[s]
		if pc == 0 || pc.Side() != bySide {
			continue
		}
		if b.CanAttack(s, sq, bySide) {
			return true
		}
	}
	return false
}

// Attackers 返回攻击 sq 的 bySide 棋子所在格。
func (b *Board) Attackers(sq Square, bySide Side) []Square {
	var out []Square
	for s := Square(0); s < NumSquares; s++ {
		pc := b.squares[s]
		if pc == 0 || pc.Side() != bySide {
			continue
		}
		if b.CanAttack(s, sq, bySide) {
			out = append(out, s)
		}
	}
	return out
}

// IsInCheck 判断 side 的老将是否被将军；老将已经不在盘上也算被将。
func (b *Board) IsInCheck(side Side) bool {
	g := b.FindGeneral(side)
	if g < 0 {
		return true
	}
	return b.IsAttacked(g, side.Opposite())
}

// IsInCheckAfterMove 试走后检查，棋盘总会被还原。
func (b *Board) IsInCheckAfterMove(m Move, side Side) bool {
	if m.IsNull() {
		return b.IsInCheck(side)
	}
	captured := b.Get(m.To)
	b.MakeTestMove(m)
	inCheck := b.IsInCheck(side)
	b.UndoTestMove(m, captured)
	return inCheck
}

// IsCheckmate 没有任何合法着法即判负（不区分困毙）。
func (b *Board) IsCheckmate(side Side) bool {
	return len(b.LegalMoves(side)) == 0
}
