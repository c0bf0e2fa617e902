package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"xiangqi/internal/xiangqi"
)

// Control 协作式暂停/取消。搜索只在两次 make/unmake 之间调用 Checkpoint。
type Control struct {
	mu      sync.Mutex
	cond    *sync.Cond
	paused  atomic.Bool
	stopped atomic.Bool
}

func NewControl() *Control {
	c := &Control{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *Control) Pause() {
	c.mu.Lock()
	c.paused.Store(true)
	c.mu.Unlock()
}

func (c *Control) Resume() {
	c.mu.Lock()
	c.paused.Store(false)
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Control) Cancel() {
	c.mu.Lock()
	c.stopped.Store(true)
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Control) Paused() bool    { return c.paused.Load() }
func (c *Control) Cancelled() bool { return c.stopped.Load() }

// Checkpoint 暂停时阻塞直到恢复或取消；返回 false 表示应当停止。
func (c *Control) Checkpoint() bool {
	if c.stopped.Load() {
		return false
	}
	if !c.paused.Load() {
		return true
	}
	c.mu.Lock()
	for c.paused.Load() && !c.stopped.Load() {
		c.cond.Wait()
	}
	c.mu.Unlock()
	return !c.stopped.Load()
}

// Request 一次后台搜索请求。Position 按值传入，Start 时就是快照。
type Request struct {
	ID         string
	Position   xiangqi.Position
	Side       xiangqi.Side
	Difficulty Difficulty
	Budget     time.Duration
	MaxDepth   int // 0 = 按难度
	Progress   func(percent int)
}

// Worker 同一时间只跑一个搜索，搜索本身在独立 goroutine 里同步执行。
type Worker struct {
	eng *Engine
	log *logrus.Entry

	mu      sync.Mutex
	running bool
	ctl     *Control
	done    chan struct{}
}

func NewWorker(eng *Engine) *Worker {
	return &Worker{
		eng: eng,
		log: logrus.WithField("component", "worker"),
	}
}

// Start 已有搜索在跑（包括暂停中）时返回 false。onDone 在 worker 的 goroutine 里调用。
func (w *Worker) Start(req Request, onDone func(id string, res Result)) bool {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.log.Warnf("search %s rejected: worker busy", req.ID)
		return false
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctl := NewControl()
	done := make(chan struct{})
	w.running, w.ctl, w.done = true, ctl, done
	w.mu.Unlock()

	pos := req.Position
	go func() {
		defer close(done)
		w.log.WithField("id", req.ID).Debugf("search started for %s", req.Side)
		res := w.eng.compute(&pos, req.Side, req.Difficulty, req.Budget, req.MaxDepth, ctl, req.Progress)
		if ctl.Cancelled() {
			w.log.WithField("id", req.ID).Infof("search cancelled, returning %s", res.Move.ICCS())
		}

		w.mu.Lock()
		w.running, w.ctl = false, nil
		w.mu.Unlock()

		if onDone != nil {
			onDone(req.ID, res)
		}
	}()
	return true
}

func (w *Worker) control() *Control {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctl
}

func (w *Worker) Pause() bool {
	c := w.control()
	if c == nil {
		return false
	}
	c.Pause()
	return true
}

func (w *Worker) Resume() bool {
	c := w.control()
	if c == nil {
		return false
	}
	c.Resume()
	return true
}

func (w *Worker) Cancel() bool {
	c := w.control()
	if c == nil {
		return false
	}
	c.Cancel()
	return true
}

func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Worker) Paused() bool {
	c := w.control()
	return c != nil && c.Paused()
}

// Wait 等当前搜索结束（onDone 已返回）。
func (w *Worker) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}
