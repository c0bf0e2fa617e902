package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/predict"
	"xiangqi/internal/xiangqi"
)

// Engine 对外的门面：界面/服务只通过它下棋，试走（MakeTestMove）不对外暴露。
type Engine struct {
	opts      Options
	predictor predict.Predictor
	log       *logrus.Entry
}

// New 返回一个引擎；p 为 nil 时只用搜索。
func New(opts Options, p predict.Predictor) *Engine {
	if p == nil {
		p = predict.NoOp{}
	}
	return &Engine{
		opts:      opts,
		predictor: p,
		log:       logrus.WithField("component", "engine"),
	}
}

// ComputeBestMove 同步计算；pos 不会被改动。
func (e *Engine) ComputeBestMove(pos *xiangqi.Position, side xiangqi.Side, difficulty Difficulty, budget time.Duration) Result {
	return e.compute(pos, side, difficulty, budget, 0, nil, nil)
}

// depth>0 时覆盖难度对应的最大深度
func (e *Engine) compute(pos *xiangqi.Position, side xiangqi.Side, difficulty Difficulty, budget time.Duration, depth int, ctl *Control, progress func(int)) Result {
	start := time.Now()
	if sug, ok := e.predictor.Suggest(pos, side); ok {
		if pos.Board.IsLegal(sug.Move, side) {
			e.log.Debugf("predictor suggests %s (%.2f)", sug.Move.ICCS(), sug.Confidence)
			score := Evaluate(&pos.Board, side, pos.Ply)
			return Result{
				Move:     sug.Move,
				Score:    score,
				WinProb:  winProbability(score),
				TimeUsed: time.Since(start),
				Source:   SourcePredictor,
			}
		}
		e.log.Warnf("predictor suggested illegal move %s, falling back to search", sug.Move.ICCS())
	}

	opts := e.opts
	opts.GamePly = pos.Ply
	opts.Control = ctl
	if depth > 0 {
		opts.MaxDepth = depth
	}
	if progress != nil {
		opts.Progress = progress
	}
	return NewSearcher(opts).GetBestMove(&pos.Board, side, difficulty, budget)
}

// ApplyMove 用和搜索同一套合法性规则校验，然后改动正式局面、换边、步数加一。
func ApplyMove(pos *xiangqi.Position, m xiangqi.Move) bool {
	return pos.Play(m) == nil
}

// GenerateLegalMoves 界面选中一个子时用来高亮落点。
func GenerateLegalMoves(pos *xiangqi.Position, sq xiangqi.Square) []xiangqi.Move {
	return pos.Board.LegalMovesFrom(sq)
}

func IsInCheck(pos *xiangqi.Position, side xiangqi.Side) bool {
	return pos.Board.IsInCheck(side)
}

func IsCheckmate(pos *xiangqi.Position, side xiangqi.Side) bool {
	return pos.Board.IsCheckmate(side)
}
