package engine

import (
	"testing"

	"xiangqi/internal/xiangqi"
)

var testLetters = map[byte]xiangqi.PieceType{
	'k': xiangqi.PieceGeneral,
	'a': xiangqi.PieceAdvisor,
	'b': xiangqi.PieceElephant,
	'n': xiangqi.PieceHorse,
	'r': xiangqi.PieceChariot,
	'c': xiangqi.PieceCannon,
	'p': xiangqi.PieceSoldier,
}

func sq(t *testing.T, s string) xiangqi.Square {
	t.Helper()
	v, err := xiangqi.ParseSquare(s)
	if err != nil {
		t.Fatalf("bad square %q: %v", s, err)
	}
	return v
}

func mv(t *testing.T, s string) xiangqi.Move {
	t.Helper()
	m, err := xiangqi.ParseICCS(s)
	if err != nil {
		t.Fatalf("bad move %q: %v", s, err)
	}
	return m
}

// boardOf 按 ICCS 坐标摆子，大写红方
func boardOf(t *testing.T, pieces map[string]byte) *xiangqi.Board {
	t.Helper()
	var b xiangqi.Board
	for at, ch := range pieces {
		pt, ok := testLetters[ch|0x20]
		if !ok {
			t.Fatalf("bad piece %q", ch)
		}
		side := xiangqi.Black
		if ch&0x20 == 0 {
			side = xiangqi.Red
		}
		b.Set(sq(t, at), xiangqi.MakePiece(side, pt))
	}
	return &b
}

func containsMove(moves []xiangqi.Move, m xiangqi.Move) bool {
	for _, x := range moves {
		if x.Same(m) {
			return true
		}
	}
	return false
}

// 双车错杀的前一步：红 a1 车走 a9 即杀
func mateInOneBoard(t *testing.T) *xiangqi.Board {
	return boardOf(t, map[string]byte{"d0": 'K', "e9": 'k', "a1": 'R', "b8": 'R'})
}

const midgameFEN = "r1bakab1r/9/1cn3nc1/p1p1p1p1p/9/9/P1P1P1P1P/1CN3NC1/9/R1BAKAB1R w - - 4 3"
