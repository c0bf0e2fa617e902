package engine

import "xiangqi/internal/xiangqi"

type TacticKind int

const (
	TacticNone TacticKind = iota
	TacticKingFaceOff
	TacticDoubleCheck
	TacticFork
	TacticSkewer
	TacticPin
	TacticDiscoveredAttack
	TacticSacrifice
	TacticDefensive
	TacticPositional
)

func (k TacticKind) String() string {
	switch k {
	case TacticKingFaceOff:
		return "king_face_off"
	case TacticDoubleCheck:
		return "double_check"
	case TacticFork:
		return "fork"
	case TacticSkewer:
		return "skewer"
	case TacticPin:
		return "pin"
	case TacticDiscoveredAttack:
		return "discovered_attack"
	case TacticSacrifice:
		return "sacrifice"
	case TacticDefensive:
		return "defensive"
	case TacticPositional:
		return "positional"
	}
	return "none"
}

type Tactic struct {
	Kind  TacticKind
	Move  xiangqi.Move
	Score int
}

const (
	kingFaceOffScore = 200
	// 其它战术封顶，保证飞将永远排第一
	tacticScoreCap = kingFaceOffScore - 1
)

// DetectKingFaceOff 两将照面时返回 side 的老将直接吃对方老将这一步。
func DetectKingFaceOff(b *xiangqi.Board, side xiangqi.Side) (Tactic, bool) {
	if !b.IsFlyingGeneral() {
		return Tactic{}, false
	}
	own, enemy := b.FindGeneral(side), b.FindGeneral(side.Opposite())
	return Tactic{
		Kind:  TacticKingFaceOff,
		Move:  xiangqi.Move{From: own, To: enemy},
		Score: kingFaceOffScore,
	}, true
}

type tacticDetector func(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int)

// 固定优先级；同分时前面的胜出
var tacticDetectors = []tacticDetector{
	detectFaceOffCapture,
	detectDoubleCheck,
	detectFork,
	detectSkewer,
	detectPin,
	detectDiscoveredAttack,
	detectSacrifice,
	detectDefensive,
	detectPositional,
}

// DetectTactics 对一步候选着法只报告得分最高的一种战术；ply 是对局已走的半回合数。
func DetectTactics(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, ply int) Tactic {
	best := Tactic{Kind: TacticNone, Move: mv}
	pc := b.Get(mv.From)
	if pc == 0 || pc.Side() != side || !mv.To.Valid() {
		return best
	}
	phase := GamePhase(b, ply)
	for _, detect := range tacticDetectors {
		kind, score := detect(b, mv, side, phase)
		if kind == TacticNone {
			continue
		}
		if kind != TacticKingFaceOff && score > tacticScoreCap {
			score = tacticScoreCap
		}
		if score > best.Score {
			best = Tactic{Kind: kind, Move: mv, Score: score}
		}
	}
	return best
}

func detectFaceOffCapture(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, _ Phase) (TacticKind, int) {
	t, ok := DetectKingFaceOff(b, side)
	if ok && t.Move.Same(mv) {
		return TacticKingFaceOff, kingFaceOffScore
	}
	return TacticNone, 0
}

// withMove 试走 mv，执行 fn，然后还原
func withMove(b *xiangqi.Board, mv xiangqi.Move, fn func()) {
	captured := b.Get(mv.To)
	b.MakeTestMove(mv)
	fn()
	b.UndoTestMove(mv, captured)
}

func detectDoubleCheck(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, _ Phase) (TacticKind, int) {
	enemyGeneral := b.FindGeneral(side.Opposite())
	if enemyGeneral < 0 || mv.To == enemyGeneral {
		return TacticNone, 0
	}
	n := 0
	withMove(b, mv, func() {
		n = len(b.Attackers(enemyGeneral, side))
	})
	if n < 2 {
		return TacticNone, 0
	}
	return TacticDoubleCheck, 80 + 20*(n-2)
}

// 被视为“值钱”的对方子
func isValuable(pt xiangqi.PieceType) bool {
	switch pt {
	case xiangqi.PieceChariot, xiangqi.PieceHorse, xiangqi.PieceCannon:
		return true
	}
	return false
}

func detectFork(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int) {
	count, total, majors := 0, 0, 0
	withMove(b, mv, func() {
		for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
			pc := b.Get(sq)
			if pc == 0 || pc.Side() == side || pc.Type() == xiangqi.PieceGeneral {
				continue
			}
			if BaseValue(pc.Type(), phase) < 200 || !b.CanAttack(mv.To, sq, side) {
				continue
			}
			count++
			total += BaseValue(pc.Type(), phase)
			if isValuable(pc.Type()) {
				majors++
			}
		}
	})
	if count < 2 {
		return TacticNone, 0
	}
	return TacticFork, total/20 + 10*count + 30*majors
}

// lineBeyond 从 from 沿 from->to 方向越过 to 找下一个子
func lineBeyond(b *xiangqi.Board, from, to xiangqi.Square) (xiangqi.Square, bool) {
	dr, dc := sign(to.Rank()-from.Rank()), sign(to.File()-from.File())
	if dr != 0 && dc != 0 {
		return -1, false
	}
	for r, c := to.Rank()+dr, to.File()+dc; xiangqi.IsValidSquare(r, c); r, c = r+dr, c+dc {
		if b.Get(xiangqi.Sq(r, c)) != 0 {
			return xiangqi.Sq(r, c), true
		}
	}
	return -1, false
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func detectSkewer(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int) {
	// 炮吃完以后还要隔一子才打得到后面，只认车
	if b.Get(mv.From).Type() != xiangqi.PieceChariot {
		return TacticNone, 0
	}
	target := b.Get(mv.To)
	if target == 0 || target.Side() == side || BaseValue(target.Type(), phase) < 200 {
		return TacticNone, 0
	}
	behindSq, ok := lineBeyond(b, mv.From, mv.To)
	if !ok {
		return TacticNone, 0
	}
	behind := b.Get(behindSq)
	if behind.Side() == side || BaseValue(behind.Type(), phase) <= BaseValue(target.Type(), phase) {
		return TacticNone, 0
	}
	return TacticSkewer, BaseValue(target.Type(), phase)/10 + min(BaseValue(behind.Type(), phase), 1000)/20
}

func detectPin(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int) {
	if b.Get(mv.From).Type() != xiangqi.PieceChariot {
		return TacticNone, 0
	}
	best := 0
	withMove(b, mv, func() {
		for _, d := range orthoDirs {
			var first xiangqi.Square = -1
			for r, c := mv.To.Rank()+d[0], mv.To.File()+d[1]; xiangqi.IsValidSquare(r, c); r, c = r+d[0], c+d[1] {
				sq := xiangqi.Sq(r, c)
				pc := b.Get(sq)
				if pc == 0 {
					continue
				}
				if pc.Side() == side {
					break
				}
				if first < 0 {
					first = sq
					continue
				}
				frontVal := BaseValue(b.Get(first).Type(), phase)
				backVal := min(BaseValue(pc.Type(), phase), 1000)
				if backVal > frontVal {
					best = max(best, (backVal-frontVal)/10+20)
				}
				break
			}
		}
	})
	if best == 0 {
		return TacticNone, 0
	}
	return TacticPin, best
}

func detectDiscoveredAttack(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int) {
	best := 0
	for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
		pc := b.Get(sq)
		if sq == mv.From || pc.Side() != side {
			continue
		}
		if pc.Type() != xiangqi.PieceChariot && pc.Type() != xiangqi.PieceCannon {
			continue
		}
		if sq.Rank() != mv.From.Rank() && sq.File() != mv.From.File() {
			continue
		}
		before := attackedValuables(b, sq, side, phase)
		withMove(b, mv, func() {
			for target, val := range attackedValuables(b, sq, side, phase) {
				if _, seen := before[target]; seen || target == mv.To {
					continue
				}
				best = max(best, 40+val/20)
			}
		})
	}
	if best == 0 {
		return TacticNone, 0
	}
	return TacticDiscoveredAttack, best
}

func attackedValuables(b *xiangqi.Board, from xiangqi.Square, side xiangqi.Side, phase Phase) map[xiangqi.Square]int {
	out := make(map[xiangqi.Square]int)
	for _, m := range b.GeneratePieceMoves(from) {
		t := b.Get(m.To)
		// 将军交给双将那一项去算
		if t == 0 || t.Side() == side || t.Type() == xiangqi.PieceGeneral {
			continue
		}
		if val := BaseValue(t.Type(), phase); val >= 200 {
			out[m.To] = val
		}
	}
	return out
}

func detectSacrifice(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int) {
	mover := b.Get(mv.From)
	if b.Get(mv.To) != 0 || mover.Type() == xiangqi.PieceGeneral {
		return TacticNone, 0
	}
	val := BaseValue(mover.Type(), phase)
	if val < 200 {
		return TacticNone, 0
	}
	comp, hanging := 0, false
	withMove(b, mv, func() {
		if !b.IsAttacked(mv.To, side.Opposite()) {
			return
		}
		hanging = true
		if b.IsInCheck(side.Opposite()) {
			comp += 150
		}
		for _, v := range attackedValuables(b, mv.To, side, phase) {
			comp += v / 2
		}
		if g := b.FindGeneral(side.Opposite()); g >= 0 {
			comp += straightLongRangePressure(b, side.Opposite(), g)
		}
	})
	if !hanging || comp <= val/2 {
		return TacticNone, 0
	}
	return TacticSacrifice, 50 + comp/20
}

func detectDefensive(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int) {
	if b.IsInCheck(side) {
		resolved := false
		withMove(b, mv, func() { resolved = !b.IsInCheck(side) })
		if resolved {
			return TacticDefensive, 60
		}
		return TacticNone, 0
	}
	best := 0
	enemy := side.Opposite()
	for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
		pc := b.Get(sq)
		if sq == mv.From || pc.Side() != side || pc.Type() == xiangqi.PieceGeneral {
			continue
		}
		val := BaseValue(pc.Type(), phase)
		if val < 400 || !b.IsAttacked(sq, enemy) || b.IsAttacked(sq, side) {
			continue
		}
		protected := false
		withMove(b, mv, func() { protected = b.IsAttacked(sq, side) })
		if protected {
			best = max(best, 40+val/20)
		}
	}
	if best == 0 {
		return TacticNone, 0
	}
	return TacticDefensive, best
}

func detectPositional(b *xiangqi.Board, mv xiangqi.Move, side xiangqi.Side, phase Phase) (TacticKind, int) {
	pt := b.Get(mv.From).Type()
	gain := piecePositionalBonus(pt, side, mv.To, phase) - piecePositionalBonus(pt, side, mv.From, phase)
	adv := advanceOf(side, mv.To.Rank())
	switch pt {
	case xiangqi.PieceHorse:
		if adv >= xiangqi.RiverRank {
			gain += 10
		}
	case xiangqi.PieceChariot:
		if b.CountPiecesBetween(mv.To, xiangqi.Sq(enemyBackRank(side), mv.To.File())) == 0 {
			gain += 10 // 通头车
		}
	case xiangqi.PieceSoldier:
		if adv == xiangqi.RiverRank {
			gain += 10
		}
	}
	withMove(b, mv, func() {
		for _, d := range orthoDirs {
			r, c := mv.To.Rank()+d[0], mv.To.File()+d[1]
			if !xiangqi.IsValidSquare(r, c) {
				continue
			}
			n := b.Get(xiangqi.Sq(r, c))
			if n.Side() != side {
				continue
			}
			if (pt == xiangqi.PieceChariot && (n.Type() == xiangqi.PieceCannon || n.Type() == xiangqi.PieceHorse)) ||
				(n.Type() == xiangqi.PieceChariot && (pt == xiangqi.PieceCannon || pt == xiangqi.PieceHorse)) {
				gain += 8
			}
		}
	})
	if gain <= 0 {
		return TacticNone, 0
	}
	return TacticPositional, min(gain, 60)
}

func enemyBackRank(side xiangqi.Side) int {
	if side == xiangqi.Red {
		return xiangqi.Ranks - 1
	}
	return 0
}
