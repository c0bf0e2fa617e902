package httpserver

import (
	"xiangqi/internal/engine"
	"xiangqi/internal/server/game"
	"xiangqi/internal/xiangqi"
)

// NewGameRequest fen 为空从开局开始
type NewGameRequest struct {
	FEN        string `json:"fen"`
	Difficulty string `json:"difficulty"`
}

// 前端用 ICCS 串表示招法，比如 "h2e2"
type PlayRequest struct {
	Move string `json:"move"`
}

type AIMoveRequest struct {
	Difficulty string `json:"difficulty"` // 空串用对局默认难度
	TimeMs     int64  `json:"time_ms"`
}

type ResultDTO struct {
	Move    string  `json:"move"`
	Score   int     `json:"score"`
	WinProb float32 `json:"win_prob"`
	Depth   int     `json:"depth"`
	Nodes   int64   `json:"nodes"`
	TimeMs  int64   `json:"time_ms"`
	NoMove  bool    `json:"no_move"`
	Source  string  `json:"source"`
}

type GameResponse struct {
	GameID     string     `json:"game_id"`
	Position   string     `json:"position"` // FEN
	ToMove     string     `json:"to_move"`  // "red" / "black"
	LegalMoves []string   `json:"legal_moves"`
	History    []string   `json:"history"`
	Status     string     `json:"status"`
	Winner     string     `json:"winner,omitempty"`
	InCheck    bool       `json:"in_check"`
	Thinking   bool       `json:"thinking"`
	Paused     bool       `json:"paused"`
	LastAI     *ResultDTO `json:"last_ai,omitempty"`
}

type LegalMovesResponse struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// 推给 websocket 的消息
type wsMessage struct {
	Type    string `json:"type"` // progress / ai_move / ping
	Payload any    `json:"payload,omitempty"`
}

type progressPayload struct {
	Percent int `json:"percent"`
}

type aiMovePayload struct {
	Result ResultDTO    `json:"result"`
	Game   GameResponse `json:"game"`
}

func movesToICCS(ms []xiangqi.Move) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ICCS()
	}
	return out
}

func resultToDTO(r engine.Result) ResultDTO {
	return ResultDTO{
		Move:    r.Move.ICCS(),
		Score:   r.Score,
		WinProb: r.WinProb,
		Depth:   r.Depth,
		Nodes:   r.Nodes,
		TimeMs:  r.TimeUsed.Milliseconds(),
		NoMove:  r.NoMove,
		Source:  r.Source,
	}
}

func snapshotToDTO(s game.Snapshot) GameResponse {
	resp := GameResponse{
		GameID:     s.ID,
		Position:   s.FEN,
		ToMove:     s.ToMove.String(),
		LegalMoves: movesToICCS(s.LegalMoves),
		History:    movesToICCS(s.History),
		Status:     string(s.Status),
		InCheck:    s.InCheck,
		Thinking:   s.Thinking,
		Paused:     s.Paused,
	}
	if s.Winner != xiangqi.NoSide {
		resp.Winner = s.Winner.String()
	}
	if s.LastAI != nil {
		r := resultToDTO(*s.LastAI)
		resp.LastAI = &r
	}
	return resp
}
