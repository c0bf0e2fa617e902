package predict

import (
	"fmt"
	"math"
	"math/rand"
)

// Network 单隐层前馈网络：tanh 隐层，softmax 输出到着法词表。
type Network struct {
	In, Hidden, Out int
	W1              []float64 // Hidden*In
	B1              []float64
	W2              []float64 // Out*Hidden
	B2              []float64
	Labels          []string
}

func NewNetwork(in, hidden int, labels []string, seed int64) *Network {
	out := len(labels)
	n := &Network{
		In: in, Hidden: hidden, Out: out,
		W1:     make([]float64, hidden*in),
		B1:     make([]float64, hidden),
		W2:     make([]float64, out*hidden),
		B2:     make([]float64, out),
		Labels: labels,
	}
	rng := rand.New(rand.NewSource(seed))
	s1 := 1 / math.Sqrt(float64(in))
	for i := range n.W1 {
		n.W1[i] = (rng.Float64()*2 - 1) * s1
	}
	s2 := 1 / math.Sqrt(float64(hidden))
	for i := range n.W2 {
		n.W2[i] = (rng.Float64()*2 - 1) * s2
	}
	return n
}

func (n *Network) forward(x []float64, h, out []float64) {
	for j := 0; j < n.Hidden; j++ {
		s := n.B1[j]
		row := n.W1[j*n.In : (j+1)*n.In]
		for i, v := range x[:n.In] {
			if v != 0 {
				s += row[i] * v
			}
		}
		h[j] = math.Tanh(s)
	}
	maxLogit := math.Inf(-1)
	for k := 0; k < n.Out; k++ {
		s := n.B2[k]
		row := n.W2[k*n.Hidden : (k+1)*n.Hidden]
		for j, v := range h {
			s += row[j] * v
		}
		out[k] = s
		maxLogit = math.Max(maxLogit, s)
	}
	sum := 0.0
	for k := range out {
		out[k] = math.Exp(out[k] - maxLogit)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
}

// Predict 返回 softmax 概率；输入维度不对时返回 nil。
func (n *Network) Predict(x []float64) []float64 {
	if n == nil || n.Out == 0 || len(x) < n.In {
		return nil
	}
	h := make([]float64, n.Hidden)
	out := make([]float64, n.Out)
	n.forward(x, h, out)
	return out
}

// TrainEpoch 逐样本 SGD 一轮，返回平均交叉熵。
func (n *Network) TrainEpoch(x [][]float64, y []int, lr float64, rng *rand.Rand) float64 {
	order := rng.Perm(len(x))
	h := make([]float64, n.Hidden)
	out := make([]float64, n.Out)
	dh := make([]float64, n.Hidden)
	loss := 0.0
	for _, s := range order {
		xs, target := x[s], y[s]
		n.forward(xs, h, out)
		loss -= math.Log(math.Max(out[target], 1e-12))

		clear(dh)
		for k := 0; k < n.Out; k++ {
			g := out[k]
			if k == target {
				g -= 1
			}
			row := n.W2[k*n.Hidden : (k+1)*n.Hidden]
			for j := range row {
				dh[j] += g * row[j]
				row[j] -= lr * g * h[j]
			}
			n.B2[k] -= lr * g
		}
		for j := 0; j < n.Hidden; j++ {
			g := dh[j] * (1 - h[j]*h[j])
			if g == 0 {
				continue
			}
			row := n.W1[j*n.In : (j+1)*n.In]
			for i, v := range xs[:n.In] {
				if v != 0 {
					row[i] -= lr * g * v
				}
			}
			n.B1[j] -= lr * g
		}
	}
	return loss / float64(len(x))
}

func (n *Network) Save(path string) error {
	return saveGob(path, n)
}

func LoadNetwork(path string) (*Network, error) {
	var n Network
	if err := loadGob(path, &n); err != nil {
		return nil, err
	}
	if n.Out == 0 || len(n.W1) != n.In*n.Hidden || len(n.W2) != n.Out*n.Hidden || len(n.B1) != n.Hidden || len(n.B2) != n.Out || len(n.Labels) != n.Out {
		return nil, fmt.Errorf("load network %s: inconsistent shape", path)
	}
	return &n, nil
}
