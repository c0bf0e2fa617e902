package engine

import "xiangqi/internal/xiangqi"

// 炮的配合分阈值：低于它的空走炮视为“无意义”
const cannonSynergyThreshold = 200

const (
	synergyChariotLine  = 100 // 同线己方车，中间无子
	synergyGeneralAim   = 80  // 隔一子瞄着对方老将
	synergyHorseAdjoins = 30
)

// FilterInvalidMoves 依次去掉：
//
//	(a) 落点不在棋盘上
//	(b) 走完自己老将被将
//	(c) 车炮去吃一个有根、而且比自己便宜的子
//	(d) 炮的空走：不在中路、没过河、走完也没有吃子威胁、配合分不超过阈值
//
// pieceType 为 PieceNone 时处理全部着法，否则只保留该兵种的着法；ply 是对局已走的半回合数，用来定子力价值。
// (c)(d) 只是剪枝经验，不是规则；它们把着法删光时退回 (a)(b) 的结果。
func FilterInvalidMoves(b *xiangqi.Board, moves []xiangqi.Move, side xiangqi.Side, pieceType xiangqi.PieceType, ply int) []xiangqi.Move {
	legal := make([]xiangqi.Move, 0, len(moves))
	for _, mv := range moves {
		if !mv.From.Valid() || !mv.To.Valid() {
			continue
		}
		pc := b.Get(mv.From)
		if pc == 0 || pc.Side() != side {
			continue
		}
		if pieceType != xiangqi.PieceNone && pc.Type() != pieceType {
			continue
		}
		if isGeneralCapture(b, mv) {
			legal = append(legal, mv)
			continue
		}
		if b.IsInCheckAfterMove(mv, side) {
			continue
		}
		legal = append(legal, mv)
	}
	return pruneHeuristic(b, legal, side, ply)
}

// pruneHeuristic 只做 (c)(d)。被将军时一律不剪。
func pruneHeuristic(b *xiangqi.Board, legal []xiangqi.Move, side xiangqi.Side, ply int) []xiangqi.Move {
	if len(legal) <= 1 || b.IsInCheck(side) {
		return legal
	}
	phase := GamePhase(b, ply)
	out := make([]xiangqi.Move, 0, len(legal))
	for _, mv := range legal {
		if isGeneralCapture(b, mv) {
			out = append(out, mv)
			continue
		}
		mover := b.Get(mv.From).Type()
		if (mover == xiangqi.PieceChariot || mover == xiangqi.PieceCannon) && capturesRootedCheaper(b, mv, phase) {
			continue
		}
		if mover == xiangqi.PieceCannon && isMeaninglessCannonMove(b, mv, side) {
			continue
		}
		out = append(out, mv)
	}
	if len(out) == 0 {
		return legal
	}
	return out
}

func isGeneralCapture(b *xiangqi.Board, mv xiangqi.Move) bool {
	t := b.Get(mv.To)
	return t != 0 && t.Type() == xiangqi.PieceGeneral && t.Side() != b.Get(mv.From).Side()
}

func capturesRootedCheaper(b *xiangqi.Board, mv xiangqi.Move, phase Phase) bool {
	target := b.Get(mv.To)
	if target == 0 {
		return false
	}
	moverVal := BaseValue(b.Get(mv.From).Type(), phase)
	if BaseValue(target.Type(), phase) >= moverVal {
		return false
	}
	return isRooted(b, mv.To, mv.From, phase)
}

// IsRooted 判断 sq 上的子被 by 吃掉之后，对方能否用不比 by 贵的子吃回来。
func IsRooted(b *xiangqi.Board, sq, by xiangqi.Square, ply int) bool {
	return isRooted(b, sq, by, GamePhase(b, ply))
}

func isRooted(b *xiangqi.Board, sq, by xiangqi.Square, phase Phase) bool {
	target := b.Get(sq)
	attacker := b.Get(by)
	if target == 0 || attacker == 0 || target.Side() == attacker.Side() {
		return false
	}
	limit := BaseValue(attacker.Type(), phase)

	mv := xiangqi.Move{From: by, To: sq}
	b.MakeTestMove(mv)
	defer b.UndoTestMove(mv, target)

	owner := target.Side()
	for _, from := range b.Attackers(sq, owner) {
		d := b.Get(from)
		if BaseValue(d.Type(), phase) > limit {
			continue
		}
		// 吃回去不能送将
		if b.IsInCheckAfterMove(xiangqi.Move{From: from, To: sq}, owner) {
			continue
		}
		return true
	}
	return false
}

func isMeaninglessCannonMove(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side) bool {
	if b.Get(mv.To) != 0 {
		return false
	}
	if mv.To.File() == xiangqi.CenterFile {
		return false
	}
	if advanceOf(side, mv.To.Rank()) >= xiangqi.RiverRank {
		return false
	}
	b.MakeTestMove(mv)
	defer b.UndoTestMove(mv, 0)
	if hasCaptureThreat(b, mv.To, side) {
		return false
	}
	return cannonSynergy(b, mv.To, side) <= cannonSynergyThreshold
}

func hasCaptureThreat(b *xiangqi.Board, sq xiangqi.Square, side xiangqi.Side) bool {
	for _, m := range b.GeneratePieceMoves(sq) {
		if t := b.Get(m.To); t != 0 && t.Side() != side {
			return true
		}
	}
	return false
}

// cannonSynergy 炮落在 sq 之后和己方子力的配合分（调用方已经把炮放上去）。
func cannonSynergy(b *xiangqi.Board, sq xiangqi.Square, side xiangqi.Side) int {
	score := 0
	for s := xiangqi.Square(0); s < xiangqi.NumSquares; s++ {
		pc := b.Get(s)
		if pc == 0 || s == sq {
			continue
		}
		aligned := s.Rank() == sq.Rank() || s.File() == sq.File()
		switch {
		case pc.Side() == side && pc.Type() == xiangqi.PieceChariot:
			if aligned && b.CountPiecesBetween(s, sq) == 0 {
				score += synergyChariotLine
			}
		case pc.Side() == side && pc.Type() == xiangqi.PieceHorse:
			if abs(s.Rank()-sq.Rank())+abs(s.File()-sq.File()) == 1 {
				score += synergyHorseAdjoins
			}
		case pc.Side() != side && pc.Type() == xiangqi.PieceGeneral:
			if aligned && b.CountPiecesBetween(s, sq) == 1 {
				score += synergyGeneralAim
			}
		}
	}
	return score
}

// IsMoveSuicidal 走完之后落点被对方更便宜的子攻击、自己又没人保护，
// 而这步吃到的子还不值自己的价。
func IsMoveSuicidal(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, ply int) bool {
	return isMoveSuicidal(b, mv, side, GamePhase(b, ply))
}

func isMoveSuicidal(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) bool {
	mover := b.Get(mv.From)
	if mover == 0 || mover.Side() != side || mover.Type() == xiangqi.PieceGeneral {
		return false
	}
	captured := b.Get(mv.To)
	if captured != 0 && captured.Type() == xiangqi.PieceGeneral {
		return false
	}
	moverVal := BaseValue(mover.Type(), phase)
	if captured != 0 && BaseValue(captured.Type(), phase) >= moverVal {
		return false
	}

	b.MakeTestMove(mv)
	defer b.UndoTestMove(mv, captured)

	cheaper := false
	for _, from := range b.Attackers(mv.To, side.Opposite()) {
		if BaseValue(b.Get(from).Type(), phase) < moverVal {
			cheaper = true
			break
		}
	}
	if !cheaper {
		return false
	}
	return !b.IsAttacked(mv.To, side)
}

// filterSuicidal 根节点用；删光时原样返回。
func filterSuicidal(b *xiangqi.Board, moves []xiangqi.Move, side xiangqi.Side, ply int) []xiangqi.Move {
	if len(moves) <= 1 || b.IsInCheck(side) {
		return moves
	}
	phase := GamePhase(b, ply)
	out := make([]xiangqi.Move, 0, len(moves))
	for _, mv := range moves {
		if isMoveSuicidal(b, mv, side, phase) {
			continue
		}
		out = append(out, mv)
	}
	if len(out) == 0 {
		return moves
	}
	return out
}
