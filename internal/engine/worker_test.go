package engine

import (
	"sync"
	"testing"
	"time"

	"xiangqi/internal/xiangqi"
)

func TestWorkerPauseResumeCancel(t *testing.T) {
	eng := New(Options{MaxDepth: 8}, nil)
	w := NewWorker(eng)

	pos := xiangqi.NewInitialPosition()
	var (
		mu     sync.Mutex
		gotID  string
		result Result
	)
	ok := w.Start(Request{ID: "first", Position: *pos, Side: xiangqi.Red, Difficulty: Hard}, func(id string, res Result) {
		mu.Lock()
		gotID, result = id, res
		mu.Unlock()
	})
	if !ok {
		t.Fatalf("first start should succeed")
	}
	if !w.Pause() {
		t.Fatalf("pause should find a running search")
	}
	time.Sleep(20 * time.Millisecond)

	if !w.Busy() || !w.Paused() {
		t.Fatalf("worker should be busy and paused")
	}
	if w.Start(Request{Position: *pos, Side: xiangqi.Red}, nil) {
		t.Fatalf("second start must be rejected while paused")
	}

	// 改动调用方的局面不影响后台快照
	pos.Board.Set(sq(t, "e0"), 0)

	w.Resume()
	w.Cancel()
	w.Wait()

	if w.Busy() {
		t.Fatalf("worker still busy after Wait")
	}
	mu.Lock()
	defer mu.Unlock()
	if gotID != "first" {
		t.Fatalf("onDone got id %q", gotID)
	}
	start := xiangqi.NewInitialPosition()
	if !start.Board.IsLegal(result.Move, xiangqi.Red) {
		t.Fatalf("cancelled search returned illegal move %s", result.Move.ICCS())
	}
}

func TestWorkerAssignsID(t *testing.T) {
	w := NewWorker(New(Options{MaxDepth: 1}, nil))
	done := make(chan string, 1)
	pos := xiangqi.NewInitialPosition()
	if !w.Start(Request{Position: *pos, Side: xiangqi.Red, Difficulty: Easy}, func(id string, _ Result) {
		done <- id
	}) {
		t.Fatalf("start failed")
	}
	select {
	case id := <-done:
		if id == "" {
			t.Fatalf("empty request id")
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("search did not finish")
	}
	w.Wait()
	if w.Pause() || w.Resume() || w.Cancel() {
		t.Fatalf("controls should report false with nothing running")
	}
}
