package xiangqi

// 兵：未过河只能前进一格；过河后可以左右，永远不能后退
func genSoldierMoves(b *Board, from Square, moves *[]Move) {
	side := b.squares[from].Side()
	row, col := from.Rank(), from.File()

	if r := row + soldierDir(side); IsValidSquare(r, col) {
		addIfNotOwn(b, side, from, r, col, moves)
	}
	if !crossedRiver(side, row) {
		return
	}
	for _, dc := range [2]int{-1, +1} {
		if c := col + dc; IsValidSquare(row, c) {
			addIfNotOwn(b, side, from, row, c, moves)
		}
	}
}
