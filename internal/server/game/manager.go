package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"xiangqi/internal/engine"
	"xiangqi/internal/xiangqi"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrBusy         = errors.New("engine is thinking")
	ErrNotThinking  = errors.New("engine is not thinking")
	ErrGameOver     = errors.New("game is over")
)

// AIHooks 后台思考的回调，都在 worker 的 goroutine 里调用。
type AIHooks struct {
	Progress func(gameID string, percent int)
	Done     func(snap Snapshot, res engine.Result)
}

type Manager struct {
	eng *engine.Engine
	log *logrus.Entry

	mu    sync.RWMutex
	games map[string]*GameState
}

func NewManager(eng *engine.Engine) *Manager {
	return &Manager{
		eng:   eng,
		log:   logrus.WithField("component", "game"),
		games: make(map[string]*GameState),
	}
}

// NewGame fen 为空时从开局开始。
func (m *Manager) NewGame(fen string, difficulty engine.Difficulty) (Snapshot, error) {
	pos := xiangqi.NewInitialPosition()
	if fen != "" {
		p, err := xiangqi.DecodePosition(fen)
		if err != nil {
			return Snapshot{}, err
		}
		pos = p
	}

	now := time.Now()
	g := &GameState{
		ID:         uuid.NewString(),
		Difficulty: difficulty,
		CreatedAt:  now,
		UpdatedAt:  now,
		pos:        pos,
		worker:     engine.NewWorker(m.eng),
	}

	m.mu.Lock()
	m.games[g.ID] = g
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"game": g.ID, "difficulty": difficulty.String()}).Info("new game")
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(), nil
}

func (m *Manager) get(id string) (*GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return g, nil
}

func (m *Manager) State(id string) (Snapshot, error) {
	g, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(), nil
}

// Play 人走一步。引擎思考期间拒绝。
func (m *Manager) Play(id string, mv xiangqi.Move) (Snapshot, error) {
	g, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.thinking {
		return Snapshot{}, ErrBusy
	}
	if err := g.pos.Play(mv); err != nil {
		return Snapshot{}, err
	}
	g.history = append(g.history, mv)
	g.UpdatedAt = time.Now()
	return g.snapshotLocked(), nil
}

func (m *Manager) LegalMoves(id string, sq xiangqi.Square) ([]xiangqi.Move, error) {
	g, err := m.get(id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if sq.Valid() && g.pos.Board.Get(sq).Side() != g.pos.SideToMove {
		return nil, nil
	}
	return engine.GenerateLegalMoves(g.pos, sq), nil
}

// StartAI 让引擎替当前走子方想一步，算完自动落子。difficulty<0 用对局的默认难度。
func (m *Manager) StartAI(id string, difficulty engine.Difficulty, budget time.Duration, hooks AIHooks) error {
	g, err := m.get(id)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.thinking {
		return ErrBusy
	}
	if len(g.pos.LegalMoves()) == 0 {
		return ErrGameOver
	}
	if difficulty < 0 {
		difficulty = g.Difficulty
	}

	req := engine.Request{
		Position:   *g.pos,
		Side:       g.pos.SideToMove,
		Difficulty: difficulty,
		Budget:     budget,
	}
	if hooks.Progress != nil {
		req.Progress = func(p int) { hooks.Progress(id, p) }
	}
	startPly := g.pos.Ply
	ok := g.worker.Start(req, func(reqID string, res engine.Result) {
		snap := m.finishAI(g, startPly, res)
		if hooks.Done != nil {
			hooks.Done(snap, res)
		}
	})
	if !ok {
		return ErrBusy
	}
	g.thinking = true
	return nil
}

func (m *Manager) finishAI(g *GameState, startPly int, res engine.Result) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thinking = false
	g.last = &res
	log := m.log.WithFields(logrus.Fields{"game": g.ID, "source": res.Source})
	switch {
	case res.NoMove:
		log.Info("engine has no legal move")
	case g.pos.Ply != startPly:
		log.Warn("position changed while thinking, result dropped")
	default:
		if err := g.pos.Play(res.Move); err != nil {
			log.Errorf("engine move %s rejected: %v", res.Move.ICCS(), err)
			break
		}
		g.history = append(g.history, res.Move)
		g.UpdatedAt = time.Now()
	}
	return g.snapshotLocked()
}

func (m *Manager) control(id string, fn func(w *engine.Worker) bool) error {
	g, err := m.get(id)
	if err != nil {
		return err
	}
	if !fn(g.worker) {
		return ErrNotThinking
	}
	return nil
}

func (m *Manager) PauseAI(id string) error {
	return m.control(id, (*engine.Worker).Pause)
}

func (m *Manager) ResumeAI(id string) error {
	return m.control(id, (*engine.Worker).Resume)
}

// CancelAI 停止思考，引擎按已经搜到的最好着法落子。
func (m *Manager) CancelAI(id string) error {
	return m.control(id, (*engine.Worker).Cancel)
}

// Wait 测试和退出时用：等当前的后台思考结束。
func (m *Manager) Wait(id string) error {
	g, err := m.get(id)
	if err != nil {
		return err
	}
	g.worker.Wait()
	return nil
}

// Shutdown 取消所有还在思考的对局并等待结束。
func (m *Manager) Shutdown() {
	m.mu.RLock()
	workers := make([]*engine.Worker, 0, len(m.games))
	for _, g := range m.games {
		workers = append(workers, g.worker)
	}
	m.mu.RUnlock()
	for _, w := range workers {
		w.Cancel()
		w.Wait()
	}
}
