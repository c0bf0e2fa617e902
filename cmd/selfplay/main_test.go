package main

import (
	"testing"

	"xiangqi/internal/engine"
	"xiangqi/internal/predict"
	"xiangqi/internal/xiangqi"
)

func TestPlayGameShort(t *testing.T) {
	eng := engine.New(engine.Options{MaxDepth: 1}, nil)
	p := player{Name: "easy", Difficulty: engine.Easy}
	rec := playGame(eng, p, p, 6)
	if rec.Plies > 6 {
		t.Fatalf("game ran %d plies", rec.Plies)
	}
	if rec.Winner == xiangqi.NoSide && len(rec.Samples) != 0 {
		t.Fatalf("drawn games should not produce samples")
	}
}

func TestWinnerSamples(t *testing.T) {
	history := []predict.Sample{{Move: "h2e2"}, {Move: "h9g7"}, {Move: "b0c2"}}
	sides := []xiangqi.Side{xiangqi.Red, xiangqi.Black, xiangqi.Red}
	got := winnerSamples(history, sides, xiangqi.Red)
	if len(got) != 2 || got[0].Move != "h2e2" || got[1].Move != "b0c2" {
		t.Fatalf("unexpected samples %v", got)
	}
}
