package xiangqi

import "sync"

const zobristPieceTypes = 8 // PieceType 范围 [1..7]，0 保留空位不用

var (
	zobristOnce sync.Once

	zobristPieces [2][zobristPieceTypes][NumSquares]uint64
	zobristSide   uint64
)

func initZobrist() {
	zobristOnce.Do(func() {
		// splitmix64，固定种子保证每次运行的 key 一致（置换表可以落盘复用）
		seed := uint64(0x9E3779B97F4A7C15)
		next := func() uint64 {
			seed += 0x9E3779B97F4A7C15
			z := seed
			z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
			z = (z ^ (z >> 27)) * 0x94D049BB133111EB
			return z ^ (z >> 31)
		}
		for side := 0; side < 2; side++ {
			for pt := 1; pt < zobristPieceTypes; pt++ {
				for sq := 0; sq < NumSquares; sq++ {
					zobristPieces[side][pt][sq] = next()
				}
			}
		}
		zobristSide = next()
	})
}

func pieceHashKey(pc Piece, sq Square) uint64 {
	if pc == 0 || !sq.Valid() {
		return 0
	}
	pt := int(pc.Type())
	if pt <= 0 || pt >= zobristPieceTypes {
		return 0
	}
	initZobrist()
	return zobristPieces[sideIndex(pc.Side())][pt][sq]
}

// SideKey 黑方走棋时异或进哈希，红方为 0。
func SideKey(side Side) uint64 {
	if side != Black {
		return 0
	}
	initZobrist()
	return zobristSide
}

// CalculateHash 全量重算棋子摆放的哈希，只用于校验增量结果。
func (b *Board) CalculateHash() uint64 {
	var h uint64
	for sq := Square(0); sq < NumSquares; sq++ {
		if pc := b.squares[sq]; pc != 0 {
			h ^= pieceHashKey(pc, sq)
		}
	}
	return h
}

// Hash 是局面键：棋子摆放 + 走子方。
func (p *Position) Hash() uint64 {
	return p.Board.Hash() ^ SideKey(p.SideToMove)
}
