package main

import (
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/xiangqi"
)

// TestCase 一个随机局面及其全部合法着法，供其他实现交叉校验走法生成。
type TestCase struct {
	FEN     string   `json:"fen"`
	InCheck bool     `json:"in_check"`
	Moves   []string `json:"moves"`
	// 随机选中的子和它的落点，对应界面上“选子-落子”两步
	Picked  string   `json:"picked"`
	Targets []string `json:"targets"`
}

func main() {
	numGames := flag.Int("games", 10, "number of random games")
	maxMoves := flag.Int("maxmoves", 200, "max plies per game")
	seed := flag.Int64("seed", 1, "random seed")
	out := flag.String("out", "move_gen_test_data.json", "output file")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	var cases []TestCase
	for g := 0; g < *numGames; g++ {
		cases = append(cases, randomGame(rng, *maxMoves)...)
	}

	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		logrus.Fatalf("encode test cases: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logrus.Fatalf("write %s: %v", *out, err)
	}
	logrus.Infof("generated %d test cases from %d random games to %s", len(cases), *numGames, *out)
}

func randomGame(rng *rand.Rand, maxMoves int) []TestCase {
	pos := xiangqi.NewInitialPosition()
	var cases []TestCase
	for i := 0; i < maxMoves; i++ {
		legal := pos.LegalMoves()
		if len(legal) == 0 {
			break
		}
		chosen := legal[rng.Intn(len(legal))]

		tc := TestCase{
			FEN:     pos.Encode(),
			InCheck: pos.Board.IsInCheck(pos.SideToMove),
			Moves:   iccsSorted(legal),
			Picked:  chosen.From.String(),
			Targets: iccsSorted(pos.Board.LegalMovesFrom(chosen.From)),
		}
		cases = append(cases, tc)

		if err := pos.Play(chosen); err != nil {
			break
		}
	}
	return cases
}

func iccsSorted(ms []xiangqi.Move) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ICCS()
	}
	sort.Strings(out)
	return out
}
