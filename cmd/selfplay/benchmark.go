package main

import (
	"fmt"

	"xiangqi/internal/engine"
	"xiangqi/internal/xiangqi"
)

// runBenchmark 两个难度轮流执红，统计胜负
func runBenchmark(eng *engine.Engine, a, b player, games, workers, maxMoves int) {
	records := playGames(eng, a, b, games, workers, maxMoves)

	aWins, bWins, draws := 0, 0, 0
	for g, rec := range records {
		aIsRed := g%2 == 0
		switch {
		case rec.Winner == xiangqi.NoSide:
			draws++
		case (rec.Winner == xiangqi.Red) == aIsRed:
			aWins++
		default:
			bWins++
		}
	}

	fmt.Printf("\n=== Final Score ===\n")
	fmt.Printf("%s: %d\n", a.Name, aWins)
	fmt.Printf("%s: %d\n", b.Name, bWins)
	fmt.Printf("Draws: %d\n", draws)
}
