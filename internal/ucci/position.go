package ucci

import (
	"fmt"
	"strings"

	"xiangqi/internal/xiangqi"
)

// parsePosition 解析 "startpos [moves ...]" 或 "fen <fen> [moves ...]"，着法逐步校验。
func parsePosition(s string) (*xiangqi.Position, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty position command")
	}
	movesAt := len(parts)
	for i, p := range parts {
		if p == "moves" {
			movesAt = i
			break
		}
	}

	var pos *xiangqi.Position
	switch parts[0] {
	case "startpos":
		pos = xiangqi.NewInitialPosition()
	case "fen":
		if movesAt < 2 {
			return nil, fmt.Errorf("missing fen in %q", s)
		}
		p, err := xiangqi.DecodePosition(strings.Join(parts[1:movesAt], " "))
		if err != nil {
			return nil, err
		}
		pos = p
	default:
		return nil, fmt.Errorf("unknown position kind %q", parts[0])
	}

	for _, raw := range parts[min(movesAt+1, len(parts)):] {
		mv, err := xiangqi.ParseICCS(raw)
		if err != nil {
			return nil, err
		}
		if err := pos.Play(mv); err != nil {
			return nil, fmt.Errorf("move %s: %w", raw, err)
		}
	}
	return pos, nil
}
