package engine

import (
	"testing"
	"time"

	"xiangqi/internal/xiangqi"
)

func TestSearchDeterministicAtFixedDepth(t *testing.T) {
	pos, err := xiangqi.DecodePosition(midgameFEN)
	if err != nil {
		t.Fatal(err)
	}
	run := func() Result {
		s := NewSearcher(Options{MaxDepth: 3, Seed: 7, GamePly: pos.Ply})
		return s.GetBestMove(&pos.Board, pos.SideToMove, Hard, 0)
	}
	a, b := run(), run()
	if !a.Move.Same(b.Move) || a.Score != b.Score {
		t.Fatalf("two runs differ: %s/%d vs %s/%d", a.Move.ICCS(), a.Score, b.Move.ICCS(), b.Score)
	}
	if a.Depth != 3 || a.Source != SourceSearch {
		t.Fatalf("expected a full depth-3 search, got depth=%d source=%s", a.Depth, a.Source)
	}
	if !pos.Board.IsLegal(a.Move, pos.SideToMove) {
		t.Fatalf("illegal best move %s", a.Move.ICCS())
	}
}

func TestTranspositionTableDoesNotChangeResult(t *testing.T) {
	pos, err := xiangqi.DecodePosition(midgameFEN)
	if err != nil {
		t.Fatal(err)
	}
	for _, side := range []xiangqi.Side{xiangqi.Red, xiangqi.Black} {
		with := NewSearcher(Options{MaxDepth: 3, Seed: 1}).GetBestMove(&pos.Board, side, Hard, 0)
		without := NewSearcher(Options{MaxDepth: 3, Seed: 1, DisableTT: true}).GetBestMove(&pos.Board, side, Hard, 0)
		if !with.Move.Same(without.Move) || with.Score != without.Score {
			t.Fatalf("%s: TT changed the result: %s/%d vs %s/%d",
				side, with.Move.ICCS(), with.Score, without.Move.ICCS(), without.Score)
		}
		if with.Nodes > without.Nodes {
			t.Logf("%s: TT searched more nodes (%d > %d)", side, with.Nodes, without.Nodes)
		}
	}
}

func TestTinyBudgetStillReturnsLegalMove(t *testing.T) {
	pos := xiangqi.NewInitialPosition()
	done := make(chan Result, 1)
	go func() {
		done <- NewSearcher(Options{Seed: 3}).GetBestMove(&pos.Board, xiangqi.Red, Normal, time.Millisecond)
	}()
	select {
	case res := <-done:
		if res.NoMove {
			t.Fatalf("legal moves exist, got NoMove")
		}
		if !pos.Board.IsLegal(res.Move, xiangqi.Red) {
			t.Fatalf("illegal move %s", res.Move.ICCS())
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("search ignored the deadline")
	}
	if pos.Encode() != xiangqi.InitialFEN {
		t.Fatalf("search must not modify the caller's board")
	}
}

func TestAbortedSearchUnwindsBoard(t *testing.T) {
	pos := xiangqi.NewInitialPosition()
	b := pos.Board
	s := NewSearcher(Options{Seed: 5, DisableTT: true})
	// 截止时间已过：第一次到时间检查点就中断，此时还在树的深处
	s.deadline = time.Now().Add(-time.Second)
	s.negamax(&b, xiangqi.Red, 8, 0, -scoreInf, scoreInf)
	if !s.aborted {
		t.Fatalf("search should have been aborted after %d nodes", s.nodes)
	}
	if b != pos.Board {
		t.Fatalf("aborted search left the board changed:\n%s", b.String())
	}
}

func TestNoLegalMovesIsLoss(t *testing.T) {
	b := boardOf(t, map[string]byte{"d0": 'K', "e9": 'k', "a9": 'R', "b8": 'R'})
	res := NewSearcher(Options{}).GetBestMove(b, xiangqi.Black, Hard, time.Second)
	if !res.NoMove || !res.Move.IsNull() {
		t.Fatalf("mated side should get NoMove, got %+v", res)
	}
	if res.Score > -mateBound {
		t.Fatalf("no-move score should be a loss, got %d", res.Score)
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	for _, d := range []Difficulty{Easy, Normal, Hard} {
		t.Run(d.String(), func(t *testing.T) {
			b := mateInOneBoard(t)
			res := NewSearcher(Options{Seed: 11}).GetBestMove(b, xiangqi.Red, d, 5*time.Second)
			if res.Score < mateBound {
				t.Fatalf("expected a mate score, got %d (%s)", res.Score, res.Move.ICCS())
			}
			captured := b.Get(res.Move.To)
			b.MakeTestMove(res.Move)
			mated := b.IsCheckmate(xiangqi.Black)
			b.UndoTestMove(res.Move, captured)
			if !mated {
				t.Fatalf("%s does not mate", res.Move.ICCS())
			}
		})
	}
}

func TestKingFaceOffWinsAtAnyDepth(t *testing.T) {
	for _, depth := range []int{1, 2, 6} {
		b := boardOf(t, map[string]byte{
			"e0": 'K', "e9": 'k',
			"a0": 'R', "a9": 'r', "h7": 'c', "c3": 'P',
		})
		res := NewSearcher(Options{MaxDepth: depth}).GetBestMove(b, xiangqi.Red, Normal, time.Second)
		if !res.Move.Same(mv(t, "e0e9")) {
			t.Fatalf("depth %d: expected e0e9, got %s", depth, res.Move.ICCS())
		}
		if res.Score != MateScore || res.Source != SourceMate {
			t.Fatalf("depth %d: result %+v", depth, res)
		}
	}
}

func TestProgressReachesHundred(t *testing.T) {
	pos := xiangqi.NewInitialPosition()
	var last int
	calls := 0
	s := NewSearcher(Options{MaxDepth: 2, Seed: 5, Progress: func(p int) {
		if p < last {
			t.Errorf("progress went backwards: %d -> %d", last, p)
		}
		last = p
		calls++
	}})
	s.GetBestMove(&pos.Board, xiangqi.Red, Hard, 0)
	if calls == 0 || last != 100 {
		t.Fatalf("progress calls=%d last=%d", calls, last)
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"easy": Easy, "Normal": Normal, " hard ": Hard, "": Normal} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Fatalf("ParseDifficulty(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTranspositionTableStore(t *testing.T) {
	tt := newTransTable(4)
	m := xiangqi.Move{From: 1, To: 2}
	tt.store(0x1234, 3, 50, ttExact, m)
	e, ok := tt.probe(0x1234)
	if !ok || e.score != 50 || !e.move.Same(m) || e.flag != ttExact {
		t.Fatalf("probe = %+v %v", e, ok)
	}
	// 同 key 浅层不覆盖深层
	tt.store(0x1234, 1, 10, ttLower, xiangqi.NoMove)
	if e, _ := tt.probe(0x1234); e.depth != 3 {
		t.Fatalf("shallow store replaced deeper entry")
	}
	if _, ok := tt.probe(0x1234 + 16); ok {
		t.Fatalf("different key in same slot must miss")
	}
	tt.reset()
	if _, ok := tt.probe(0x1234); ok {
		t.Fatalf("reset should clear entries")
	}

	if got := scoreFromTT(scoreToTT(MateScore-5, 3), 3); got != MateScore-5 {
		t.Fatalf("mate score round trip = %d", got)
	}
}
