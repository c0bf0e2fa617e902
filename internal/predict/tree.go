package predict

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

// TreeNode Feature<0 表示叶子，Leaf 是各类别的概率。
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      []float64
}

// DecisionTree CART 分类树，类别下标对应 Labels 里的着法串。
type DecisionTree struct {
	Nodes  []TreeNode
	Labels []string
}

type TreeConfig struct {
	MaxDepth        int
	MinSamplesSplit int
}

func (c *TreeConfig) normalize() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 10
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
}

// TrainTree 用基尼不纯度贪心切分，x 的每一行长度都应为 FeatureSize。
func TrainTree(x [][]float64, y []int, labels []string, cfg TreeConfig) (*DecisionTree, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("train tree: %d samples, %d labels", len(x), len(y))
	}
	cfg.normalize()
	t := &DecisionTree{Labels: labels}
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	t.build(x, y, idx, 0, cfg)
	return t, nil
}

func (t *DecisionTree) build(x [][]float64, y []int, idx []int, depth int, cfg TreeConfig) int {
	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, TreeNode{Feature: -1})

	counts := classCounts(y, idx, len(t.Labels))
	if depth >= cfg.MaxDepth || len(idx) < cfg.MinSamplesSplit || gini(counts, len(idx)) == 0 {
		t.Nodes[id].Leaf = distribution(counts, len(idx))
		return id
	}

	feat, thr, ok := bestSplit(x, y, idx, len(t.Labels))
	if !ok {
		t.Nodes[id].Leaf = distribution(counts, len(idx))
		return id
	}
	var left, right []int
	for _, i := range idx {
		if x[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := t.build(x, y, left, depth+1, cfg)
	r := t.build(x, y, right, depth+1, cfg)
	t.Nodes[id] = TreeNode{Feature: feat, Threshold: thr, Left: l, Right: r}
	return id
}

func classCounts(y []int, idx []int, classes int) []int {
	counts := make([]int, classes)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func distribution(counts []int, n int) []float64 {
	out := make([]float64, len(counts))
	if n == 0 {
		return out
	}
	for c, k := range counts {
		out[c] = float64(k) / float64(n)
	}
	return out
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, k := range counts {
		p := float64(k) / float64(n)
		g -= p * p
	}
	return g
}

// bestSplit 对每个特征按取值排序扫描，取加权基尼最小的切分点
func bestSplit(x [][]float64, y []int, idx []int, classes int) (int, float64, bool) {
	n := len(idx)
	bestScore := gini(classCounts(y, idx, classes), n)
	bestFeat, bestThr, found := -1, 0.0, false

	order := make([]int, n)
	left := make([]int, classes)
	right := make([]int, classes)
	for f := 0; f < len(x[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		clear(left)
		clear(right)
		for _, i := range order {
			right[y[i]]++
		}
		for k := 0; k < n-1; k++ {
			i := order[k]
			left[y[i]]++
			right[y[i]]--
			v, next := x[i][f], x[order[k+1]][f]
			if v == next {
				continue
			}
			nl, nr := k+1, n-k-1
			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if score < bestScore-1e-12 {
				bestScore, bestFeat, bestThr, found = score, f, (v+next)/2, true
			}
		}
	}
	return bestFeat, bestThr, found
}

// Predict 返回叶子上的类别分布，树为空或结构损坏时返回 nil
func (t *DecisionTree) Predict(x []float64) []float64 {
	if t == nil || len(t.Nodes) == 0 {
		return nil
	}
	id := 0
	for {
		nd := &t.Nodes[id]
		if nd.Feature < 0 {
			return nd.Leaf
		}
		next := nd.Right
		if nd.Feature < len(x) && x[nd.Feature] <= nd.Threshold {
			next = nd.Left
		}
		// 子节点总在父节点之后，这样循环一定会结束
		if next <= id || next >= len(t.Nodes) {
			return nil
		}
		id = next
	}
}

// validate 检查子节点下标和叶子宽度，TrainTree 生成的树总能通过。
func (t *DecisionTree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty model")
	}
	if len(t.Labels) == 0 {
		return fmt.Errorf("no labels")
	}
	for id, nd := range t.Nodes {
		if nd.Feature < 0 {
			if len(nd.Leaf) != len(t.Labels) {
				return fmt.Errorf("node %d: leaf has %d classes, want %d", id, len(nd.Leaf), len(t.Labels))
			}
			continue
		}
		if nd.Feature >= FeatureSize {
			return fmt.Errorf("node %d: feature %d out of range", id, nd.Feature)
		}
		for _, child := range [2]int{nd.Left, nd.Right} {
			if child <= id || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child %d out of range", id, child)
			}
		}
	}
	return nil
}

func (t *DecisionTree) Save(path string) error {
	return saveGob(path, t)
}

func LoadTree(path string) (*DecisionTree, error) {
	var t DecisionTree
	if err := loadGob(path, &t); err != nil {
		return nil, err
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("load tree %s: %w", path, err)
	}
	return &t, nil
}

func saveGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func loadGob(path string, v any) error {
	p, err := resolveModelPath(path)
	if err != nil {
		return err
	}
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	return nil
}
