package engine

import (
	"sort"

	"xiangqi/internal/xiangqi"
)

const (
	checkSeqDepthCap         = 15
	checkSeqDefaultDepth     = 7 // 攻方 4 步
	checkSeqNodeBudgetBase   = 4000
	checkSeqNodeBudgetPerPly = 1000
)

const (
	checkSeqModeAttack uint64 = 0xA5A5A5A5A5A5A5A5
	checkSeqModeDefend uint64 = 0x5A5A5A5A5A5A5A5A
)

type checkSeqTTEntry struct {
	Depth  int
	Result bool
	Move   xiangqi.Move // 记录最佳走法用于排序
}

type checkSeqContext struct {
	tt         map[uint64]checkSeqTTEntry
	inPath     map[uint64]bool
	nodes      int
	nodeBudget int
}

// CheckSeqResult 连将搜索结果
type CheckSeqResult struct {
	Found bool
	Move  xiangqi.Move
	Plies int // 杀棋需要的半回合数（上限）
}

// CheckSequenceSearch 只用将军着法找杀：攻方每步都必须将军，守方任何应着都算。
// 棋盘会被原地 make/unmake，返回时已还原。
func CheckSequenceSearch(b *xiangqi.Board, side xiangqi.Side, maxDepth int) CheckSeqResult {
	if maxDepth <= 0 {
		maxDepth = checkSeqDefaultDepth
	}
	if maxDepth > checkSeqDepthCap {
		maxDepth = checkSeqDepthCap
	}
	ctx := &checkSeqContext{
		tt:         make(map[uint64]checkSeqTTEntry, 1<<12),
		inPath:     make(map[uint64]bool, 64),
		nodeBudget: checkSeqNodeBudgetBase + maxDepth*checkSeqNodeBudgetPerPly,
	}

	// 迭代加深：攻方走奇数层
	for d := 1; d <= maxDepth; d += 2 {
		if found, mv := ctx.attack(b, side, d, true); found {
			return CheckSeqResult{Found: true, Move: mv, Plies: d}
		}
		if ctx.nodes > ctx.nodeBudget {
			break
		}
	}
	return CheckSeqResult{}
}

// scoreCheckMoves 启发式评分：车 > 炮 > 马 > 兵
func (ctx *checkSeqContext) scoreCheckMoves(b *xiangqi.Board, moves []xiangqi.Move, key uint64) {
	ttMove := xiangqi.NoMove
	if entry, ok := ctx.tt[key]; ok {
		ttMove = entry.Move
	}
	for i := range moves {
		mv := &moves[i]
		mv.Score = 0
		if mv.Same(ttMove) {
			mv.Score = 1000
			continue
		}
		if target := b.Get(mv.To); target != 0 {
			mv.Score = 100 + int(target.Type())
		}
		switch b.Get(mv.From).Type() {
		case xiangqi.PieceGeneral: // 照面或吃将
			mv.Score += 500
		case xiangqi.PieceChariot:
			mv.Score += 80
		case xiangqi.PieceCannon:
			mv.Score += 60
		case xiangqi.PieceHorse:
			mv.Score += 40
		case xiangqi.PieceSoldier:
			mv.Score += 20
		}
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].Score > moves[j].Score })
}

func (ctx *checkSeqContext) attack(b *xiangqi.Board, side xiangqi.Side, depth int, root bool) (bool, xiangqi.Move) {
	if depth <= 0 || ctx.reachNodeBudget() {
		return false, xiangqi.NoMove
	}
	key := b.Hash() ^ xiangqi.SideKey(side) ^ checkSeqModeAttack
	if !root {
		if ctx.inPath[key] {
			return false, xiangqi.NoMove
		}
		if entry, ok := ctx.tt[key]; ok && entry.Depth >= depth {
			return entry.Result, entry.Move
		}
	}
	ctx.inPath[key] = true
	defer delete(ctx.inPath, key)

	moves := b.LegalMoves(side)
	ctx.scoreCheckMoves(b, moves, key)

	enemy := side.Opposite()
	result := false
	bestMove := xiangqi.NoMove
	for _, mv := range moves {
		if isGeneralCapture(b, mv) {
			result, bestMove = true, mv
			break
		}
		captured := b.Get(mv.To)
		b.MakeTestMove(mv)
		// 攻方必须将军
		win := b.IsInCheck(enemy) && !ctx.defenderCanEscape(b, enemy, depth-1)
		b.UndoTestMove(mv, captured)
		if win {
			result, bestMove = true, mv
			break
		}
	}
	ctx.tt[key] = checkSeqTTEntry{Depth: depth, Result: result, Move: bestMove}
	return result, bestMove
}

func (ctx *checkSeqContext) defenderCanEscape(b *xiangqi.Board, side xiangqi.Side, depth int) bool {
	moves := b.LegalMoves(side)
	if len(moves) == 0 {
		return false
	}
	if depth <= 0 || ctx.reachNodeBudget() {
		return true
	}
	key := b.Hash() ^ xiangqi.SideKey(side) ^ checkSeqModeDefend
	if ctx.inPath[key] {
		return true
	}
	if entry, ok := ctx.tt[key]; ok && entry.Depth >= depth {
		return entry.Result
	}
	ctx.inPath[key] = true
	defer delete(ctx.inPath, key)

	result := false
	bestMove := xiangqi.NoMove
	for _, mv := range moves {
		captured := b.Get(mv.To)
		b.MakeTestMove(mv)
		forced, _ := ctx.attack(b, side.Opposite(), depth-1, false)
		b.UndoTestMove(mv, captured)
		if !forced {
			// 找到一个不被连将杀的应着就算逃脱
			result, bestMove = true, mv
			break
		}
	}
	ctx.tt[key] = checkSeqTTEntry{Depth: depth, Result: result, Move: bestMove}
	return result
}

func (ctx *checkSeqContext) reachNodeBudget() bool {
	ctx.nodes++
	return ctx.nodes > ctx.nodeBudget
}
