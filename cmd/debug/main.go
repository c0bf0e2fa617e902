package main

import (
	"flag"
	"fmt"
	"os"

	"xiangqi/internal/engine"
	"xiangqi/internal/xiangqi"
)

func main() {
	fen := flag.String("fen", xiangqi.InitialFEN, "position to inspect")
	flag.Parse()

	pos, err := xiangqi.DecodePosition(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	side := pos.SideToMove
	fmt.Print(pos.Board.String())
	fmt.Println("FEN:", pos.Encode())
	fmt.Println("Pseudo legal moves:", len(pos.Board.GenerateAllMoves(side)))
	fmt.Println("Legal moves:", len(pos.LegalMoves()))
	fmt.Printf("Phase: %s, eval (%s): %d\n", engine.GamePhase(&pos.Board, pos.Ply), side, engine.Evaluate(&pos.Board, side, pos.Ply))
	if engine.IsCheckmate(pos, side) {
		fmt.Println(side, "is checkmated")
	} else if engine.IsInCheck(pos, side) {
		fmt.Println(side, "is in check")
	}
	for _, mv := range pos.LegalMoves() {
		if t := engine.DetectTactics(&pos.Board, mv, side, pos.Ply); t.Kind != engine.TacticNone {
			fmt.Printf("  %s %s (%d)\n", mv.ICCS(), t.Kind, t.Score)
		}
	}
}
