package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"xiangqi/internal/config"
	"xiangqi/internal/engine"
	"xiangqi/internal/predict"
	"xiangqi/internal/xiangqi"
)

type player struct {
	Name       string
	Difficulty engine.Difficulty
	Budget     time.Duration
}

type gameRecord struct {
	Winner  xiangqi.Side // NoSide = 和棋（步数到上限）
	Plies   int
	Samples []predict.Sample
}

func main() {
	cfgPath := flag.String("config", "xiangqi.json", "config file")
	totalGames := flag.Int("games", 10, "number of games to play")
	workers := flag.Int("workers", 0, "concurrent games (default CPU/2)")
	redLevel := flag.String("red", "normal", "red difficulty")
	blackLevel := flag.String("black", "normal", "black difficulty")
	timeMs := flag.Int("time", 300, "time per move in ms")
	depth := flag.Int("depth", 0, "override search depth")
	maxMoves := flag.Int("maxmoves", 300, "plies before a game is called a draw")
	samplesOut := flag.String("samples", "", "write winner's moves as JSON lines")
	trainDir := flag.String("train", "", "train the predictor and save it here")
	epochs := flag.Int("epochs", 20, "network training epochs")
	bench := flag.Bool("bench", false, "alternate colours and report a score table")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	cfg.SetupLogging()

	if *workers <= 0 {
		*workers = max(runtime.NumCPU()/2, 1)
	}
	red, err := engine.ParseDifficulty(*redLevel)
	if err != nil {
		logrus.Fatal(err)
	}
	black, err := engine.ParseDifficulty(*blackLevel)
	if err != nil {
		logrus.Fatal(err)
	}
	budget := time.Duration(*timeMs) * time.Millisecond
	opts := cfg.EngineOptions()
	opts.MaxDepth = *depth
	eng := engine.New(opts, nil)

	a := player{Name: "A(" + red.String() + ")", Difficulty: red, Budget: budget}
	b := player{Name: "B(" + black.String() + ")", Difficulty: black, Budget: budget}
	if *bench {
		runBenchmark(eng, a, b, *totalGames, *workers, *maxMoves)
		return
	}

	records := playGames(eng, a, b, *totalGames, *workers, *maxMoves)
	var samples []predict.Sample
	for _, r := range records {
		samples = append(samples, r.Samples...)
	}
	logrus.Infof("selfplay finished: %d games, %d samples", len(records), len(samples))

	if *samplesOut != "" {
		if err := writeSamples(*samplesOut, samples); err != nil {
			logrus.Fatalf("write samples: %v", err)
		}
	}
	if *trainDir != "" {
		if err := trainAndSave(*trainDir, samples, *epochs); err != nil {
			logrus.Fatalf("train: %v", err)
		}
	}
}

// playGames 第 g 局偶数时 a 执红，奇数时交换
func playGames(eng *engine.Engine, a, b player, games, workers, maxMoves int) []gameRecord {
	records := make([]gameRecord, games)
	var g errgroup.Group
	g.SetLimit(workers)
	var mu sync.Mutex
	for i := 0; i < games; i++ {
		i := i
		g.Go(func() error {
			red, black := a, b
			if i%2 == 1 {
				red, black = b, a
			}
			rec := playGame(eng, red, black, maxMoves)
			logrus.Infof("game %d: red %s black %s winner %s after %d plies", i+1, red.Name, black.Name, rec.Winner, rec.Plies)
			mu.Lock()
			records[i] = rec
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return records
}

func playGame(eng *engine.Engine, red, black player, maxMoves int) gameRecord {
	pos := xiangqi.NewInitialPosition()
	var history []predict.Sample
	var sides []xiangqi.Side

	for i := 0; i < maxMoves; i++ {
		p := red
		if pos.SideToMove == xiangqi.Black {
			p = black
		}
		res := eng.ComputeBestMove(pos, pos.SideToMove, p.Difficulty, p.Budget)
		if res.NoMove {
			// 无子可动，当前方输
			return gameRecord{
				Winner:  pos.SideToMove.Opposite(),
				Plies:   i,
				Samples: winnerSamples(history, sides, pos.SideToMove.Opposite()),
			}
		}
		fen := pos.Encode()
		side := pos.SideToMove
		if err := pos.Play(res.Move); err != nil {
			logrus.Errorf("engine produced invalid move %s: %v", res.Move.ICCS(), err)
			return gameRecord{Winner: xiangqi.NoSide, Plies: i}
		}
		history = append(history, predict.Sample{FEN: fen, Move: res.Move.ICCS()})
		sides = append(sides, side)

		// 吃掉老将也直接结束
		if !pos.Board.GeneralExists(pos.SideToMove) {
			return gameRecord{Winner: side, Plies: i + 1, Samples: winnerSamples(history, sides, side)}
		}
	}
	return gameRecord{Winner: xiangqi.NoSide, Plies: maxMoves}
}

func winnerSamples(history []predict.Sample, sides []xiangqi.Side, winner xiangqi.Side) []predict.Sample {
	var out []predict.Sample
	for i, s := range history {
		if sides[i] == winner {
			out = append(out, s)
		}
	}
	return out
}

func writeSamples(path string, samples []predict.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logrus.Infof("wrote %d samples to %s", len(samples), path)
	return nil
}

func trainAndSave(dir string, samples []predict.Sample, epochs int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tree, net, sum, err := predict.Train(samples, predict.TrainConfig{Epochs: epochs, Seed: time.Now().UnixNano()})
	if err != nil {
		return err
	}
	paths := predict.DirPaths(dir)
	if err := tree.Save(paths.Tree); err != nil {
		return err
	}
	if err := net.Save(paths.Network); err != nil {
		return err
	}
	if err := sum.Save(paths.Summary); err != nil {
		return err
	}
	logrus.Infof("trained on %d samples: accuracy %.3f loss %.4f", sum.Samples, sum.Accuracy, sum.Loss)
	return nil
}
