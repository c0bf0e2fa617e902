package game

import (
	"sync"
	"time"

	"xiangqi/internal/engine"
	"xiangqi/internal/xiangqi"
)

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCheckmate Status = "checkmate"
	// 没有合法着法但没被将军，象棋里同样判负
	StatusStalemate Status = "stalemate"
)

// GameState 一盘棋：权威局面只在 mu 保护下被 Play 改动。
type GameState struct {
	ID         string
	Difficulty engine.Difficulty
	CreatedAt  time.Time
	UpdatedAt  time.Time

	mu       sync.Mutex
	pos      *xiangqi.Position
	history  []xiangqi.Move
	worker   *engine.Worker
	thinking bool
	last     *engine.Result
}

// Snapshot 对外只读的一份拷贝
type Snapshot struct {
	ID         string
	FEN        string
	ToMove     xiangqi.Side
	Ply        int
	LegalMoves []xiangqi.Move
	History    []xiangqi.Move
	Status     Status
	Winner     xiangqi.Side
	InCheck    bool
	Thinking   bool
	Paused     bool
	LastAI     *engine.Result
}

func statusOf(pos *xiangqi.Position, legal []xiangqi.Move) (Status, xiangqi.Side) {
	if len(legal) > 0 {
		return StatusOngoing, xiangqi.NoSide
	}
	winner := pos.SideToMove.Opposite()
	if pos.Board.IsInCheck(pos.SideToMove) {
		return StatusCheckmate, winner
	}
	return StatusStalemate, winner
}

// 调用方持有 g.mu
func (g *GameState) snapshotLocked() Snapshot {
	legal := g.pos.LegalMoves()
	status, winner := statusOf(g.pos, legal)
	s := Snapshot{
		ID:         g.ID,
		FEN:        g.pos.Encode(),
		ToMove:     g.pos.SideToMove,
		Ply:        g.pos.Ply,
		LegalMoves: legal,
		History:    append([]xiangqi.Move(nil), g.history...),
		Status:     status,
		Winner:     winner,
		InCheck:    g.pos.Board.IsInCheck(g.pos.SideToMove),
		Thinking:   g.thinking,
		Paused:     g.thinking && g.worker.Paused(),
	}
	if g.last != nil {
		r := *g.last
		s.LastAI = &r
	}
	return s
}
