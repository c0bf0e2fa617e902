package game

import (
	"errors"
	"testing"
	"time"

	"xiangqi/internal/engine"
	"xiangqi/internal/xiangqi"
)

func iccs(t *testing.T, s string) xiangqi.Move {
	t.Helper()
	m, err := xiangqi.ParseICCS(s)
	if err != nil {
		t.Fatalf("bad move %q: %v", s, err)
	}
	return m
}

func newManager() *Manager {
	return NewManager(engine.New(engine.Options{MaxDepth: 2}, nil))
}

func TestNewGameAndPlay(t *testing.T) {
	m := newManager()
	snap, err := m.NewGame("", engine.Easy)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if snap.Status != StatusOngoing || len(snap.LegalMoves) != 44 || snap.ToMove != xiangqi.Red {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}

	if _, err := m.Play(snap.ID, iccs(t, "a0a5")); !errors.Is(err, xiangqi.ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	after, err := m.Play(snap.ID, iccs(t, "h2e2"))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if after.ToMove != xiangqi.Black || after.Ply != 1 || len(after.History) != 1 {
		t.Fatalf("unexpected snapshot after move %+v", after)
	}

	if _, err := m.State("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := m.NewGame("bad fen", engine.Easy); err == nil {
		t.Fatalf("bad FEN accepted")
	}
}

func TestCheckmateStatus(t *testing.T) {
	m := newManager()
	// 红车已到 a9，黑将被双车错杀
	snap, err := m.NewGame("R3k4/1R7/9/9/9/9/9/9/9/3K5 b - - 0 30", engine.Easy)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if snap.Status != StatusCheckmate || snap.Winner != xiangqi.Red || !snap.InCheck {
		t.Fatalf("expected red win by checkmate, got %s winner %s", snap.Status, snap.Winner)
	}
	if err := m.StartAI(snap.ID, -1, 0, AIHooks{}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestLegalMovesForSquare(t *testing.T) {
	m := newManager()
	snap, _ := m.NewGame("", engine.Easy)
	moves, err := m.LegalMoves(snap.ID, xiangqi.Sq(0, 1))
	if err != nil || len(moves) != 2 {
		t.Fatalf("horse b0: %v %v", moves, err)
	}
	moves, _ = m.LegalMoves(snap.ID, xiangqi.Sq(9, 1))
	if len(moves) != 0 {
		t.Fatalf("black pieces are not selectable on red's turn")
	}
}

func TestAIMoveIsApplied(t *testing.T) {
	m := newManager()
	snap, _ := m.NewGame("", engine.Easy)

	done := make(chan Snapshot, 1)
	var last int
	err := m.StartAI(snap.ID, -1, 0, AIHooks{
		Progress: func(_ string, p int) { last = p },
		Done:     func(s Snapshot, _ engine.Result) { done <- s },
	})
	if err != nil {
		t.Fatalf("StartAI: %v", err)
	}

	var after Snapshot
	select {
	case after = <-done:
	case <-time.After(30 * time.Second):
		t.Fatalf("engine did not answer")
	}
	_ = m.Wait(snap.ID)
	if after.Ply != 1 || len(after.History) != 1 || after.Thinking {
		t.Fatalf("engine move not applied: %+v", after)
	}
	if after.LastAI == nil || after.LastAI.NoMove {
		t.Fatalf("missing engine result")
	}
	if last != 100 {
		t.Fatalf("progress ended at %d", last)
	}
}

func TestPauseAndCancelAI(t *testing.T) {
	m := NewManager(engine.New(engine.Options{MaxDepth: 8}, nil))
	snap, _ := m.NewGame("", engine.Hard)
	if err := m.PauseAI(snap.ID); !errors.Is(err, ErrNotThinking) {
		t.Fatalf("pause without search: %v", err)
	}

	done := make(chan Snapshot, 1)
	if err := m.StartAI(snap.ID, -1, 0, AIHooks{Done: func(s Snapshot, _ engine.Result) { done <- s }}); err != nil {
		t.Fatalf("StartAI: %v", err)
	}
	if err := m.PauseAI(snap.ID); err != nil {
		t.Fatalf("PauseAI: %v", err)
	}
	if err := m.StartAI(snap.ID, -1, 0, AIHooks{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("second StartAI: %v", err)
	}
	if _, err := m.Play(snap.ID, iccs(t, "h2e2")); !errors.Is(err, ErrBusy) {
		t.Fatalf("moves must be rejected while thinking, got %v", err)
	}
	if err := m.CancelAI(snap.ID); err != nil {
		t.Fatalf("CancelAI: %v", err)
	}
	select {
	case s := <-done:
		if s.Ply != 1 {
			t.Fatalf("cancelled search should still play its best move")
		}
	case <-time.After(30 * time.Second):
		t.Fatalf("cancel did not stop the search")
	}
	m.Shutdown()
}
