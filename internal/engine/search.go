package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/xiangqi"
)

const (
	MateScore = 1_000_000
	// 一个足够大的值，当成正负无穷
	scoreInf = 2 * MateScore
	// 绝对值超过它的分数都是杀棋分
	mateBound = MateScore - 1000

	quiescencePlyCap = 6
	timeCheckMask    = 1023
)

type Difficulty int

const (
	Easy Difficulty = iota
	Normal
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	}
	return "hard"
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "normal", "":
		return Normal, nil
	case "hard":
		return Hard, nil
	}
	return Normal, fmt.Errorf("unknown difficulty %q", s)
}

// 难度 -> 最大深度 + 根节点随机化的分差
func (d Difficulty) profile() (maxDepth, margin int) {
	switch d {
	case Easy:
		return 2, 120
	case Normal:
		return 4, 30
	}
	return 6, 0
}

// 结果来源
const (
	SourceNone      = "none"
	SourceMate      = "mate"
	SourceCheckSeq  = "check_sequence"
	SourceSingle    = "single"
	SourceSearch    = "search"
	SourceFallback  = "fallback"
	SourcePredictor = "predictor"
)

// 搜索配置
type Options struct {
	MaxDepth  int  // >0 时覆盖难度自带的深度
	DisableTT bool // 关掉置换表，只影响速度
	TTBits    int  // 置换表大小 2^TTBits
	Seed      int64
	GamePly   int // 根局面已经走过的半回合数，用于判断开局/中局

	// 只有 Hard 会先跑连将杀；<=0 用默认深度
	CheckSequenceDepth int

	Progress func(percent int)
	Control  *Control
}

// 搜索结果
type Result struct {
	Move     xiangqi.Move  `json:"move"`
	Score    int           `json:"score"`    // side 视角
	WinProb  float32       `json:"win_prob"` // side 胜率的粗略换算
	Depth    int           `json:"depth"`
	Nodes    int64         `json:"nodes"`
	TimeUsed time.Duration `json:"time_used"`
	NoMove   bool          `json:"no_move"` // 没有合法着法 = 输棋
	Source   string        `json:"source"`
}

type Searcher struct {
	opts Options
	tt   *transTable
	rng  *rand.Rand
	log  *logrus.Entry

	nodes    int64
	deadline time.Time
	aborted  bool
}

func NewSearcher(opts Options) *Searcher {
	s := &Searcher{
		opts: opts,
		log:  logrus.WithField("component", "search"),
	}
	if !opts.DisableTT {
		s.tt = newTransTable(opts.TTBits)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))
	return s
}

// GetBestMove 在 budget 时间内为 side 找一步棋。超时不算错误，返回最后一个完整深度的结果；
// 没有合法着法时返回 NoMove=true。board 本身不会被改动。
func (s *Searcher) GetBestMove(board *xiangqi.Board, side xiangqi.Side, difficulty Difficulty, budget time.Duration) Result {
	start := time.Now()
	s.nodes = 0
	s.aborted = false
	s.deadline = time.Time{}
	if budget > 0 {
		s.deadline = start.Add(budget)
	}
	if s.tt != nil {
		s.tt.reset()
	}

	// 拷贝一次，之后整棵树都在这份棋盘上 make/unmake
	b := *board

	legal := b.LegalMoves(side)
	if len(legal) == 0 {
		return s.finish(Result{Move: xiangqi.NoMove, Score: -MateScore, NoMove: true, Source: SourceNone}, side, start)
	}

	// 绝杀剪枝：能直接吃掉对方老将就不用再搜
	for _, mv := range legal {
		if isGeneralCapture(&b, mv) {
			return s.finish(Result{Move: mv, Score: MateScore, Depth: 1, Source: SourceMate}, side, start)
		}
	}
	if len(legal) == 1 {
		return s.finish(Result{Move: legal[0], Score: Evaluate(&b, side, s.opts.GamePly), Source: SourceSingle}, side, start)
	}

	maxDepth, margin := difficulty.profile()
	if s.opts.MaxDepth > 0 {
		maxDepth = s.opts.MaxDepth
	}

	if difficulty == Hard {
		if cs := CheckSequenceSearch(&b, side, s.opts.CheckSequenceDepth); cs.Found {
			return s.finish(Result{Move: cs.Move, Score: MateScore - cs.Plies, Depth: cs.Plies, Source: SourceCheckSeq}, side, start)
		}
	}

	moves := pruneHeuristic(&b, legal, side, s.opts.GamePly)
	moves = filterSuicidal(&b, moves, side, s.opts.GamePly)
	s.orderRoot(&b, moves, side)

	best := Result{Move: moves[0], Score: Evaluate(&b, side, s.opts.GamePly), Source: SourceFallback}
	var scores []int
	for depth := 1; depth <= maxDepth; depth++ {
		if s.timeUp() {
			break
		}
		ds, ok := s.searchRoot(&b, side, moves, depth, maxDepth, margin)
		if !ok {
			break
		}
		// 本层最佳着法挪到最前面，下一层先搜它
		bestIdx := 0
		for i := range ds {
			if ds[i] > ds[bestIdx] {
				bestIdx = i
			}
		}
		moves[0], moves[bestIdx] = moves[bestIdx], moves[0]
		ds[0], ds[bestIdx] = ds[bestIdx], ds[0]
		scores = ds
		best = Result{Move: moves[0], Score: scores[0], Depth: depth, Source: SourceSearch}
		if scores[0] >= mateBound || scores[0] <= -mateBound {
			break
		}
	}

	if margin > 0 && scores != nil {
		var candidates []int
		for i, sc := range scores {
			if sc > scores[0]-margin {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 1 {
			pick := candidates[s.rng.Intn(len(candidates))]
			best.Move, best.Score = moves[pick], scores[pick]
		}
	}
	return s.finish(best, side, start)
}

func (s *Searcher) finish(res Result, side xiangqi.Side, start time.Time) Result {
	res.Nodes = s.nodes
	res.TimeUsed = time.Since(start)
	res.WinProb = winProbability(res.Score)
	if s.opts.Progress != nil {
		s.opts.Progress(100)
	}
	s.log.WithFields(logrus.Fields{
		"side":   side.String(),
		"source": res.Source,
		"depth":  res.Depth,
		"nodes":  res.Nodes,
	}).Infof("best move %s score %d in %v", res.Move.ICCS(), res.Score, res.TimeUsed)
	return res
}

func winProbability(score int) float32 {
	p := (float32(score)/10000.0 + 1.0) / 2.0
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// searchRoot 搜完一层返回每步的分；中途被打断返回 false，这一层作废。
// margin>0 时把 alpha 放宽到 best-margin，分差在 margin 以内的着法拿到的都是准确分。
func (s *Searcher) searchRoot(b *xiangqi.Board, side xiangqi.Side, moves []xiangqi.Move, depth, maxDepth, margin int) ([]int, bool) {
	scores := make([]int, len(moves))
	alpha, beta := -scoreInf, scoreInf
	best := -scoreInf
	for i, mv := range moves {
		if s.timeUp() || !s.checkpoint() {
			return nil, false
		}
		captured := b.Get(mv.To)
		b.MakeTestMove(mv)
		score := -s.negamax(b, side.Opposite(), depth-1, 1, -beta, -alpha)
		b.UndoTestMove(mv, captured)
		if s.aborted {
			return nil, false
		}
		scores[i] = score
		if score > best {
			best = score
			alpha = max(alpha, best-margin)
		}
		s.reportProgress(depth, maxDepth, i+1, len(moves))
	}
	return scores, true
}

func (s *Searcher) reportProgress(depth, maxDepth, done, total int) {
	if s.opts.Progress == nil || maxDepth <= 0 || total == 0 {
		return
	}
	pct := ((depth-1)*100 + done*100/total) / maxDepth
	if pct >= 100 {
		pct = 99 // 100 留给 finish
	}
	s.opts.Progress(pct)
}

// 内部递归：negamax + alpha-beta，分数总是从 side 的角度
func (s *Searcher) negamax(b *xiangqi.Board, side xiangqi.Side, depth, ply, alpha, beta int) int {
	s.nodes++
	if !s.checkpoint() {
		return 0
	}
	if depth <= 0 {
		return s.quiesce(b, side, ply, alpha, beta, 0)
	}

	alphaOrig, betaOrig := alpha, beta
	key := b.Hash() ^ xiangqi.SideKey(side)
	ttMove := xiangqi.NoMove
	if s.tt != nil {
		if e, ok := s.tt.probe(key); ok {
			ttMove = e.move
			if int(e.depth) >= depth {
				v := scoreFromTT(int(e.score), ply)
				switch e.flag {
				case ttExact:
					return v
				case ttLower:
					alpha = max(alpha, v)
				case ttUpper:
					beta = min(beta, v)
				}
				if alpha >= beta {
					return v
				}
			}
		}
	}

	moves := b.LegalMoves(side)
	if len(moves) == 0 {
		// 无着可走即判负，不区分困毙
		return -MateScore + ply
	}
	for _, mv := range moves {
		if isGeneralCapture(b, mv) {
			return MateScore - ply - 1
		}
	}
	moves = pruneHeuristic(b, moves, side, s.opts.GamePly+ply)
	orderMoves(b, moves, ttMove)

	best := -scoreInf
	bestMove := xiangqi.NoMove
	for _, mv := range moves {
		captured := b.Get(mv.To)
		b.MakeTestMove(mv)
		score := -s.negamax(b, side.Opposite(), depth-1, ply+1, -beta, -alpha)
		b.UndoTestMove(mv, captured)
		if s.aborted {
			return 0
		}
		if score > best {
			best = score
			bestMove = mv
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	if s.tt != nil {
		flag := ttExact
		switch {
		case best <= alphaOrig:
			flag = ttUpper
		case best >= betaOrig:
			flag = ttLower
		}
		s.tt.store(key, depth, scoreToTT(best, ply), flag, bestMove)
	}
	return best
}

// quiesce 深度用完之后只搜吃子，避免停在对方刚吃子的局面上
func (s *Searcher) quiesce(b *xiangqi.Board, side xiangqi.Side, ply, alpha, beta, qply int) int {
	s.nodes++
	if !s.checkpoint() {
		return 0
	}
	if b.FindGeneral(side) < 0 {
		return -MateScore + ply
	}
	stand := Evaluate(b, side, s.opts.GamePly+ply)
	if stand >= beta || qply >= quiescencePlyCap {
		return stand
	}
	alpha = max(alpha, stand)

	var captures []xiangqi.Move
	for _, mv := range b.GenerateAllMoves(side) {
		if b.Get(mv.To) != 0 {
			captures = append(captures, mv)
		}
	}
	orderMoves(b, captures, xiangqi.NoMove)

	best := stand
	for _, mv := range captures {
		if isGeneralCapture(b, mv) {
			return MateScore - ply - 1
		}
		if b.IsInCheckAfterMove(mv, side) {
			continue
		}
		captured := b.Get(mv.To)
		b.MakeTestMove(mv)
		score := -s.quiesce(b, side.Opposite(), ply+1, -beta, -alpha, qply+1)
		b.UndoTestMove(mv, captured)
		if s.aborted {
			return 0
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// checkpoint 在每个节点入口调用：暂停时阻塞，取消或超时返回 false。
// 返回 false 后各层照常 unmake，棋盘最终还原。
func (s *Searcher) checkpoint() bool {
	if s.aborted {
		return false
	}
	if s.opts.Control != nil && !s.opts.Control.Checkpoint() {
		s.aborted = true
		return false
	}
	if !s.deadline.IsZero() && s.nodes&timeCheckMask == 0 && time.Now().After(s.deadline) {
		s.aborted = true
	}
	return !s.aborted
}

func (s *Searcher) timeUp() bool {
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.aborted = true
	}
	return s.aborted
}

// MVV/LVA：先吃大子，用小子吃优先
func captureScore(b *xiangqi.Board, mv xiangqi.Move) int {
	victim := b.Get(mv.To)
	if victim == 0 {
		return 0
	}
	return 10*min(BaseValue(victim.Type(), Midgame), 1000) - BaseValue(b.Get(mv.From).Type(), Midgame)/10 + 1000
}

func orderMoves(b *xiangqi.Board, moves []xiangqi.Move, ttMove xiangqi.Move) {
	for i := range moves {
		moves[i].Score = captureScore(b, moves[i])
		if moves[i].Same(ttMove) {
			moves[i].Score = 1 << 30
		}
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].Score > moves[j].Score })
}

// 根节点排序：吃老将 > 战术分 > 吃子
func (s *Searcher) orderRoot(b *xiangqi.Board, moves []xiangqi.Move, side xiangqi.Side) {
	for i := range moves {
		mv := &moves[i]
		mv.Score = captureScore(b, *mv)
		if t := DetectTactics(b, *mv, side, s.opts.GamePly); t.Kind != TacticNone {
			mv.Score += t.Score * 100
		}
		if isGeneralCapture(b, *mv) {
			mv.Score = 1 << 30
		}
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].Score > moves[j].Score })
}
