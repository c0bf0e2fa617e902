package xiangqi

// GeneratePieceMoves 生成 sq 上棋子的伪合法走法（不考虑自己老将被将）。
func (b *Board) GeneratePieceMoves(sq Square) []Move {
	var moves []Move
	b.appendPieceMoves(sq, &moves)
	return moves
}

func (b *Board) appendPieceMoves(sq Square, moves *[]Move) {
	pc := b.Get(sq)
	switch pc.Type() {
	case PieceGeneral:
		genGeneralMoves(b, sq, moves)
	case PieceAdvisor:
		genAdvisorMoves(b, sq, moves)
	case PieceElephant:
		genElephantMoves(b, sq, moves)
	case PieceHorse:
		genHorseMoves(b, sq, moves)
	case PieceChariot:
		genChariotMoves(b, sq, moves)
	case PieceCannon:
		genCannonMoves(b, sq, moves)
	case PieceSoldier:
		genSoldierMoves(b, sq, moves)
	}
}

// GenerateAllMoves 按 rank 优先、file 其次的顺序扫描 side 的全部伪合法走法。
func (b *Board) GenerateAllMoves(side Side) []Move {
	moves := make([]Move, 0, 64)
	for sq := Square(0); sq < NumSquares; sq++ {
		pc := b.squares[sq]
		if pc == 0 || pc.Side() != side {
			continue
		}
		b.appendPieceMoves(sq, &moves)
	}
	return moves
}

// 吃对方老将的着法始终保留：对局在这一步就结束了
func (b *Board) keepLegal(side Side, pseudo []Move) []Move {
	if b.FindGeneral(side) < 0 {
		return nil
	}
	out := pseudo[:0]
	for _, mv := range pseudo {
		if t := b.squares[mv.To]; t != 0 && t.Type() == PieceGeneral {
			out = append(out, mv)
			continue
		}
		if b.IsInCheckAfterMove(mv, side) {
			continue
		}
		out = append(out, mv)
	}
	return out
}

// LegalMoves 是界面和搜索共用的唯一一套合法性规则。
func (b *Board) LegalMoves(side Side) []Move {
	return b.keepLegal(side, b.GenerateAllMoves(side))
}

func (b *Board) LegalMovesFrom(sq Square) []Move {
	pc := b.Get(sq)
	if pc == 0 {
		return nil
	}
	return b.keepLegal(pc.Side(), b.GeneratePieceMoves(sq))
}

// IsLegal 检查 m 是不是 side 当前的合法着法。
func (b *Board) IsLegal(m Move, side Side) bool {
	if m.IsNull() {
		return false
	}
	pc := b.Get(m.From)
	if pc == 0 || pc.Side() != side {
		return false
	}
	for _, lm := range b.LegalMovesFrom(m.From) {
		if lm.Same(m) {
			return true
		}
	}
	return false
}

// ApplyMove 返回走完之后的新局面；这里不做合法性检查，只拦截明显错误。
func (p *Position) ApplyMove(m Move) (*Position, bool) {
	if m.IsNull() {
		return nil, false
	}
	pc := p.Board.Get(m.From)
	if pc == 0 || pc.Side() != p.SideToMove {
		return nil, false
	}
	np := *p
	np.Board.MakeTestMove(m)
	np.SideToMove = p.SideToMove.Opposite()
	np.Ply++
	return &np, true
}

// Play 在原局面上走一步合法着法。
func (p *Position) Play(m Move) error {
	if !p.Board.IsLegal(m, p.SideToMove) {
		return ErrInvalidMove
	}
	p.Board.MakeTestMove(m)
	p.SideToMove = p.SideToMove.Opposite()
	p.Ply++
	return nil
}

func (p *Position) LegalMoves() []Move {
	return p.Board.LegalMoves(p.SideToMove)
}
