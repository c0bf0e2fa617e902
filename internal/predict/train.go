package predict

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"xiangqi/internal/xiangqi"
)

// Sample 一条训练数据：局面 FEN 和该局面下走的着法（ICCS）。
type Sample struct {
	FEN  string `json:"fen"`
	Move string `json:"move"`
}

type TrainingSummary struct {
	Epochs      int       `json:"epochs"`
	Accuracy    float64   `json:"accuracy"`
	Loss        float64   `json:"loss"`
	Samples     int       `json:"samples"`
	LastTrained time.Time `json:"last_trained"`
}

type TrainConfig struct {
	Tree         TreeConfig
	Hidden       int
	Epochs       int
	LearningRate float64
	Seed         int64
}

func (c *TrainConfig) normalize() {
	if c.Hidden <= 0 {
		c.Hidden = 32
	}
	if c.Epochs <= 0 {
		c.Epochs = 20
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.05
	}
}

// Train 坏样本（FEN 解析失败、着法不合法）直接跳过。
func Train(samples []Sample, cfg TrainConfig) (*DecisionTree, *Network, TrainingSummary, error) {
	cfg.normalize()

	var (
		xs    [][]float64
		moves []string
	)
	for _, s := range samples {
		pos, err := xiangqi.DecodePosition(s.FEN)
		if err != nil {
			continue
		}
		mv, err := xiangqi.ParseICCS(s.Move)
		if err != nil || !pos.Board.IsLegal(mv, pos.SideToMove) {
			continue
		}
		xs = append(xs, Features(&pos.Board, pos.SideToMove))
		moves = append(moves, mv.ICCS())
	}
	if len(xs) == 0 {
		return nil, nil, TrainingSummary{}, fmt.Errorf("train: no usable samples out of %d", len(samples))
	}

	labels, ys := buildVocab(moves)
	tree, err := TrainTree(xs, ys, labels, cfg.Tree)
	if err != nil {
		return nil, nil, TrainingSummary{}, err
	}

	net := NewNetwork(FeatureSize, cfg.Hidden, labels, cfg.Seed)
	rng := rand.New(rand.NewSource(cfg.Seed))
	loss := 0.0
	for e := 0; e < cfg.Epochs; e++ {
		loss = net.TrainEpoch(xs, ys, cfg.LearningRate, rng)
	}

	// 训练集上的准确率用两者平均后的 argmax
	correct := 0
	for i, x := range xs {
		if blendArgmax(tree.Predict(x), net.Predict(x)) == ys[i] {
			correct++
		}
	}
	sum := TrainingSummary{
		Epochs:      cfg.Epochs,
		Accuracy:    float64(correct) / float64(len(xs)),
		Loss:        loss,
		Samples:     len(xs),
		LastTrained: time.Now().UTC(),
	}
	return tree, net, sum, nil
}

// buildVocab 词表按字典序，保证同样的数据得到同样的下标
func buildVocab(moves []string) ([]string, []int) {
	seen := make(map[string]struct{})
	for _, m := range moves {
		seen[m] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for m := range seen {
		labels = append(labels, m)
	}
	sort.Strings(labels)
	index := make(map[string]int, len(labels))
	for i, m := range labels {
		index[m] = i
	}
	ys := make([]int, len(moves))
	for i, m := range moves {
		ys[i] = index[m]
	}
	return labels, ys
}

func blendArgmax(a, b []float64) int {
	best, bestP := -1, -1.0
	for i := range a {
		p := a[i]
		if i < len(b) {
			p = (p + b[i]) / 2
		}
		if p > bestP {
			best, bestP = i, p
		}
	}
	return best
}

func (s TrainingSummary) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}

func LoadSummary(path string) (TrainingSummary, error) {
	var s TrainingSummary
	p, err := resolveModelPath(path)
	if err != nil {
		return s, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return s, fmt.Errorf("read summary: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode summary %s: %w", p, err)
	}
	return s, nil
}
