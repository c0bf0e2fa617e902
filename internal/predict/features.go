package predict

import (
	"fmt"

	"xiangqi/internal/xiangqi"
)

// 每格一个特征：有符号子力编码 / 7，红正黑负；最后一维是走子方。
const FeatureSize = xiangqi.NumSquares + 1

// Features 把局面压成定长向量，顺序与 FEN 无关，按 Square 编号。
func Features(b *xiangqi.Board, side xiangqi.Side) []float64 {
	x := make([]float64, FeatureSize)
	for sq := xiangqi.Square(0); sq < xiangqi.NumSquares; sq++ {
		pc := b.Get(sq)
		if pc == 0 {
			continue
		}
		v := float64(pc.Type()) / 7
		if pc.Side() == xiangqi.Black {
			v = -v
		}
		x[sq] = v
	}
	if side == xiangqi.Black {
		x[xiangqi.NumSquares] = 1
	}
	return x
}

// FeaturesFromFEN 训练样本以 FEN 存盘，走子方取 FEN 里的 w/b。
func FeaturesFromFEN(fen string) ([]float64, error) {
	pos, err := xiangqi.DecodePosition(fen)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	return Features(&pos.Board, pos.SideToMove), nil
}
