package predict

import (
	"errors"
	"io/fs"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/xiangqi"
)

// Suggestion 预测器给出的着法和把握（0..1）
type Suggestion struct {
	Move       xiangqi.Move
	Confidence float64
}

// Predictor 在搜索之前给一个建议；ok=false 表示没有把握，交给搜索。
type Predictor interface {
	Suggest(pos *xiangqi.Position, side xiangqi.Side) (Suggestion, bool)
}

// NoOp 从不给建议。
type NoOp struct{}

func (NoOp) Suggest(*xiangqi.Position, xiangqi.Side) (Suggestion, bool) {
	return Suggestion{}, false
}

const DefaultConfidence = 0.6

// TrainedModel 决策树和网络取平均；任一个可以为空。
type TrainedModel struct {
	Tree      *DecisionTree
	Net       *Network
	Threshold float64

	log *logrus.Entry
}

func NewTrainedModel(tree *DecisionTree, net *Network, threshold float64) *TrainedModel {
	if threshold <= 0 {
		threshold = DefaultConfidence
	}
	return &TrainedModel{
		Tree:      tree,
		Net:       net,
		Threshold: threshold,
		log:       logrus.WithField("component", "predict"),
	}
}

// Suggest 模型词表里的着法串必须在当前局面合法才会返回。
func (m *TrainedModel) Suggest(pos *xiangqi.Position, side xiangqi.Side) (Suggestion, bool) {
	if m == nil || (m.Tree == nil && m.Net == nil) {
		return Suggestion{}, false
	}
	x := Features(&pos.Board, side)

	votes := make(map[string]float64)
	sources := 0
	if m.Tree != nil {
		if dist := m.Tree.Predict(x); dist != nil {
			addVotes(votes, m.Tree.Labels, dist)
			sources++
		}
	}
	if m.Net != nil {
		if dist := m.Net.Predict(x); dist != nil {
			addVotes(votes, m.Net.Labels, dist)
			sources++
		}
	}
	if sources == 0 {
		return Suggestion{}, false
	}

	best, conf := "", 0.0
	for label, p := range votes {
		p /= float64(sources)
		if p > conf || (p == conf && label < best) {
			best, conf = label, p
		}
	}
	if conf < m.Threshold {
		return Suggestion{}, false
	}
	mv, err := xiangqi.ParseICCS(best)
	if err != nil || !pos.Board.IsLegal(mv, side) {
		m.log.Debugf("dropping suggestion %q: not legal here", best)
		return Suggestion{}, false
	}
	return Suggestion{Move: mv, Confidence: conf}, true
}

func addVotes(votes map[string]float64, labels []string, dist []float64) {
	for i, p := range dist {
		if i < len(labels) && p > 0 {
			votes[labels[i]] += p
		}
	}
}

// Load 加载失败只记日志，返回 NoOp，不影响下棋。
func Load(paths Paths, threshold float64) Predictor {
	log := logrus.WithField("component", "predict")
	if paths.Tree == "" && paths.Network == "" {
		return NoOp{}
	}
	var (
		tree *DecisionTree
		net  *Network
		err  error
	)
	if paths.Tree != "" {
		if tree, err = LoadTree(paths.Tree); err != nil {
			logLoadError(log, "decision tree", err)
			tree = nil
		}
	}
	if paths.Network != "" {
		if net, err = LoadNetwork(paths.Network); err != nil {
			logLoadError(log, "network", err)
			net = nil
		} else if net.In != FeatureSize {
			log.Warnf("network expects %d features, have %d; ignored", net.In, FeatureSize)
			net = nil
		}
	}
	if tree == nil && net == nil {
		return NoOp{}
	}
	fields := logrus.Fields{"tree": tree != nil, "network": net != nil, "threshold": threshold}
	if paths.Summary != "" {
		if sum, err := LoadSummary(paths.Summary); err == nil {
			fields["samples"] = sum.Samples
			fields["last_trained"] = sum.LastTrained
		} else {
			logLoadError(log, "training summary", err)
		}
	}
	log.WithFields(fields).Info("predictor loaded")
	return NewTrainedModel(tree, net, threshold)
}

// 没有模型文件是正常情况，文件坏了才告警
func logLoadError(log *logrus.Entry, what string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		log.Infof("%s not found, skipped: %v", what, err)
		return
	}
	log.Warnf("%s unavailable: %v", what, err)
}
