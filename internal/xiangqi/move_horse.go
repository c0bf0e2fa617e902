package xiangqi

// 马走日：终点 + 马腿（紧挨起点的那一格）
var horseLegMoves = [8]struct {
	Dr, Dc int // 终点
	Br, Bc int // 马腿
}{
	{+2, -1, +1, 0},
	{+2, +1, +1, 0},
	{+1, -2, 0, -1},
	{+1, +2, 0, +1},
	{-1, -2, 0, -1},
	{-1, +2, 0, +1},
	{-2, -1, -1, 0},
	{-2, +1, -1, 0},
}

func genHorseMoves(b *Board, from Square, moves *[]Move) {
	side := b.squares[from].Side()
	row, col := from.Rank(), from.File()
	for _, m := range horseLegMoves {
		r, c := row+m.Dr, col+m.Dc
		if !IsValidSquare(r, c) {
			continue
		}
		if b.squares[Sq(row+m.Br, col+m.Bc)] != 0 {
			continue // 蹩马腿
		}
		addIfNotOwn(b, side, from, r, c, moves)
	}
}
