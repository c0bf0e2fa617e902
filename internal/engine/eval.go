package engine

import "xiangqi/internal/xiangqi"

type Phase int

const (
	Opening Phase = iota
	Midgame
	Endgame
)

func (p Phase) String() string {
	switch p {
	case Opening:
		return "opening"
	case Midgame:
		return "midgame"
	}
	return "endgame"
}

const (
	openingPlyLimit    = 20
	openingPieceCount  = 28
	endgameMajorPieces = 6 // 双方车马炮合计
)

// GamePhase 由剩余子力和步数推出来，不存储。
func GamePhase(b *xiangqi.Board, ply int) Phase {
	total, majors, chariots := 0, 0, 0
	for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
		pc := b.Get(sq)
		if pc == 0 {
			continue
		}
		total++
		switch pc.Type() {
		case xiangqi.PieceChariot:
			majors++
			chariots++
		case xiangqi.PieceHorse, xiangqi.PieceCannon:
			majors++
		}
	}
	if ply < openingPlyLimit && total >= openingPieceCount {
		return Opening
	}
	if majors <= endgameMajorPieces || (chariots == 0 && majors <= 8) {
		return Endgame
	}
	return Midgame
}

var baseValues = map[xiangqi.PieceType][3]int{
	xiangqi.PieceGeneral:  {10000, 10000, 10000},
	xiangqi.PieceChariot:  {900, 900, 900},
	xiangqi.PieceCannon:   {480, 450, 400}, // 开局炮更凶，残局马更好
	xiangqi.PieceHorse:    {400, 400, 400},
	xiangqi.PieceElephant: {200, 200, 200},
	xiangqi.PieceAdvisor:  {200, 200, 200},
	xiangqi.PieceSoldier:  {100, 120, 200},
}

// BaseValue 空子返回 0。
func BaseValue(pt xiangqi.PieceType, phase Phase) int {
	v, ok := baseValues[pt]
	if !ok {
		return 0
	}
	return v[phase]
}

// Evaluate 从 side 的角度打分：正数对 side 有利。
func Evaluate(b *xiangqi.Board, side xiangqi.Side, ply int) int {
	phase := GamePhase(b, ply)
	score := evaluateMaterialPositional(b, phase) +
		evaluateKingSafety(b) +
		evaluateCoordination(b)
	if side == xiangqi.Black {
		return -score
	}
	return score
}

// 从红方视角：材料 + 位置分
func evaluateMaterialPositional(b *xiangqi.Board, phase Phase) int {
	score := 0
	for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
		pc := b.Get(sq)
		if pc == 0 {
			continue
		}
		val := BaseValue(pc.Type(), phase) + piecePositionalBonus(pc.Type(), pc.Side(), sq, phase)
		if pc.Side() == xiangqi.Red {
			score += val
		} else {
			score -= val
		}
	}
	return score
}

// 自家方向上的“前进距离”：底线为 0，对方底线为 9
func advanceOf(side xiangqi.Side, rank int) int {
	if side == xiangqi.Black {
		return xiangqi.Ranks - 1 - rank
	}
	return rank
}

// 计算某个棋子在 sq 上的位置加成（从该子所属一方的视角）
func piecePositionalBonus(pt xiangqi.PieceType, side xiangqi.Side, sq xiangqi.Square, phase Phase) int {
	file := sq.File()
	adv := advanceOf(side, sq.Rank())
	centerBonus := 4 - abs(file-xiangqi.CenterFile) // [0,4]

	switch pt {
	case xiangqi.PieceSoldier:
		return soldierPosBonus(adv, file, centerBonus, phase)
	case xiangqi.PieceHorse:
		// 马：靠中比边强，河口到对方卒林最活跃
		b := centerBonus * 4
		if adv >= 3 && adv <= 7 {
			b += 10
		}
		if file == 0 || file == xiangqi.Files-1 {
			b -= 10
		}
		return b
	case xiangqi.PieceChariot:
		b := centerBonus * 2
		if adv >= 5 {
			b += 10
		}
		// 卡对方将门
		if adv == 8 && file >= 3 && file <= 5 {
			b += 15
		}
		return b
	case xiangqi.PieceCannon:
		b := 0
		if file == xiangqi.CenterFile {
			b += 20
		}
		if adv == 4 || adv == 6 {
			b += 6 // 河口 / 对方卒林
		}
		return b
	case xiangqi.PieceElephant, xiangqi.PieceAdvisor:
		if file == xiangqi.CenterFile {
			return 6
		}
		return 0
	case xiangqi.PieceGeneral:
		if adv > 0 {
			return -10 * adv // 老将离开底线一般是坏事
		}
		return 0
	}
	return 0
}

func soldierPosBonus(adv, file, centerBonus int, phase Phase) int {
	if adv < xiangqi.RiverRank {
		// 未过河：只鼓励中兵一点点
		if file == xiangqi.CenterFile {
			return 4
		}
		return 0
	}
	b := 20 + (adv-xiangqi.RiverRank)*6 + centerBonus*3
	if phase == Endgame {
		b += 10
	}
	// 老兵（到底线）失去前进能力
	if adv == xiangqi.Ranks-1 {
		b -= 30
	}
	return b
}

// 一些权重，可之后慢慢调
const (
	kingMissingAdvisorPenalty  = 25
	kingMissingElephantPenalty = 20

	kingChariotDirectPressure = 45
	kingCannonScreenPressure  = 35
)

func evaluateKingSafety(b *xiangqi.Board) int {
	score := 0
	for _, side := range [2]xiangqi.Side{xiangqi.Red, xiangqi.Black} {
		kingSq := b.FindGeneral(side)
		if kingSq < 0 {
			continue // 已经被吃，终局判定另外处理
		}
		numAdvisor, numElephant := countAdvisorElephant(b, side)
		penalty := 0
		if numAdvisor < 2 {
			penalty += (2 - numAdvisor) * kingMissingAdvisorPenalty
		}
		if numElephant < 2 {
			penalty += (2 - numElephant) * kingMissingElephantPenalty
		}
		penalty += straightLongRangePressure(b, side, kingSq)

		if side == xiangqi.Red {
			score -= penalty
		} else {
			score += penalty
		}
	}
	return score
}

func countAdvisorElephant(b *xiangqi.Board, side xiangqi.Side) (numAdvisor, numElephant int) {
	for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
		pc := b.Get(sq)
		if pc == 0 || pc.Side() != side {
			continue
		}
		switch pc.Type() {
		case xiangqi.PieceAdvisor:
			numAdvisor++
		case xiangqi.PieceElephant:
			numElephant++
		}
	}
	return
}

var orthoDirs = [4][2]int{{+1, 0}, {-1, 0}, {0, -1}, {0, +1}}

// 四个正方向上查敌方车（直射）和炮（隔一子）的威胁
func straightLongRangePressure(b *xiangqi.Board, side xiangqi.Side, kingSq xiangqi.Square) int {
	enemy := side.Opposite()
	total := 0
	for _, d := range orthoDirs {
		screens := 0
		for r, c := kingSq.Rank()+d[0], kingSq.File()+d[1]; xiangqi.IsValidSquare(r, c); r, c = r+d[0], c+d[1] {
			pc := b.Get(xiangqi.Sq(r, c))
			if pc == 0 {
				continue
			}
			if pc.Side() == enemy {
				switch {
				case pc.Type() == xiangqi.PieceChariot && screens == 0:
					total += kingChariotDirectPressure
				case pc.Type() == xiangqi.PieceCannon && screens == 1:
					total += kingCannonScreenPressure
				}
			}
			screens++
			if screens > 1 {
				break
			}
		}
	}
	return total
}

const (
	chariotCannonBonus = 15
	horseChariotBonus  = 10
)

// 车炮同线、马车相邻的配合分（红方视角）
func evaluateCoordination(b *xiangqi.Board) int {
	score := 0
	for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
		pc := b.Get(sq)
		if pc == 0 || pc.Type() != xiangqi.PieceChariot {
			continue
		}
		bonus := 0
		for _, d := range orthoDirs {
			for r, c := sq.Rank()+d[0], sq.File()+d[1]; xiangqi.IsValidSquare(r, c); r, c = r+d[0], c+d[1] {
				other := b.Get(xiangqi.Sq(r, c))
				if other == 0 {
					continue
				}
				if other.Side() == pc.Side() && other.Type() == xiangqi.PieceCannon {
					bonus += chariotCannonBonus
				}
				break
			}
			r, c := sq.Rank()+d[0], sq.File()+d[1]
			if xiangqi.IsValidSquare(r, c) {
				other := b.Get(xiangqi.Sq(r, c))
				if other.Side() == pc.Side() && other.Type() == xiangqi.PieceHorse {
					bonus += horseChariotBonus
				}
			}
		}
		if pc.Side() == xiangqi.Red {
			score += bonus
		} else {
			score -= bonus
		}
	}
	return score
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
