package xiangqi

var (
	orthoDirs = [4][2]int{{+1, 0}, {-1, 0}, {0, -1}, {0, +1}}
	diagDirs  = [4][2]int{{+1, -1}, {+1, +1}, {-1, -1}, {-1, +1}}
)

// 目标格不是己方子就可以落
func addIfNotOwn(b *Board, side Side, from Square, r, f int, moves *[]Move) {
	to := Sq(r, f)
	dst := b.squares[to]
	if dst == 0 || dst.Side() != side {
		*moves = append(*moves, Move{From: from, To: to})
	}
}

// 车：横竖直走，吃遇到的第一个敌子
func genChariotMoves(b *Board, from Square, moves *[]Move) {
	side := b.squares[from].Side()
	row, col := from.Rank(), from.File()
	for _, d := range orthoDirs {
		for r, c := row+d[0], col+d[1]; IsValidSquare(r, c); r, c = r+d[0], c+d[1] {
			to := Sq(r, c)
			pc := b.squares[to]
			if pc == 0 {
				*moves = append(*moves, Move{From: from, To: to})
				continue
			}
			if pc.Side() != side {
				*moves = append(*moves, Move{From: from, To: to})
			}
			break
		}
	}
}

// 炮：走子同车，吃子必须隔一个炮架
func genCannonMoves(b *Board, from Square, moves *[]Move) {
	side := b.squares[from].Side()
	row, col := from.Rank(), from.File()
	for _, d := range orthoDirs {
		r, c := row+d[0], col+d[1]

		// 走子阶段：直到第一个棋子
		for IsValidSquare(r, c) {
			if b.squares[Sq(r, c)] != 0 {
				break
			}
			*moves = append(*moves, Move{From: from, To: Sq(r, c)})
			r, c = r+d[0], c+d[1]
		}

		// 越过炮架，遇到的第一子若是敌子可吃
		for r, c = r+d[0], c+d[1]; IsValidSquare(r, c); r, c = r+d[0], c+d[1] {
			pc := b.squares[Sq(r, c)]
			if pc == 0 {
				continue
			}
			if pc.Side() != side {
				*moves = append(*moves, Move{From: from, To: Sq(r, c)})
			}
			break
		}
	}
}

// 相：田字，塞象眼不能走，不能过河
func genElephantMoves(b *Board, from Square, moves *[]Move) {
	side := b.squares[from].Side()
	row, col := from.Rank(), from.File()
	for _, d := range diagDirs {
		r, c := row+2*d[0], col+2*d[1]
		if !IsValidSquare(r, c) || !ownHalf(side, r) {
			continue
		}
		if b.squares[Sq(row+d[0], col+d[1])] != 0 {
			continue
		}
		addIfNotOwn(b, side, from, r, c, moves)
	}
}

// 士：九宫内斜走一格
func genAdvisorMoves(b *Board, from Square, moves *[]Move) {
	side := b.squares[from].Side()
	row, col := from.Rank(), from.File()
	for _, d := range diagDirs {
		r, c := row+d[0], col+d[1]
		if !inPalace(side, r, c) {
			continue
		}
		addIfNotOwn(b, side, from, r, c, moves)
	}
}

// 将：九宫内上下左右一格，外加“飞将”吃对方老将
func genGeneralMoves(b *Board, from Square, moves *[]Move) {
	side := b.squares[from].Side()
	row, col := from.Rank(), from.File()
	for _, d := range orthoDirs {
		r, c := row+d[0], col+d[1]
		if !inPalace(side, r, c) {
			continue
		}
		addIfNotOwn(b, side, from, r, c, moves)
	}

	dir := soldierDir(side)
	for r := row + dir; r >= 0 && r < Ranks; r += dir {
		pc := b.squares[Sq(r, col)]
		if pc == 0 {
			continue
		}
		if pc.Type() == PieceGeneral && pc.Side() != side {
			*moves = append(*moves, Move{From: from, To: Sq(r, col)})
		}
		break
	}
}
