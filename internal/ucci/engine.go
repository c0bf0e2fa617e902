package ucci

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/engine"
	"xiangqi/internal/xiangqi"
)

// Engine 一条 UCCI 连接的状态。go 在后台思考，stop 让它立刻给出 bestmove。
type Engine struct {
	worker     *engine.Worker
	difficulty engine.Difficulty
	budget     time.Duration

	pos *xiangqi.Position

	outMu sync.Mutex
	out   io.Writer
}

func NewEngine(eng *engine.Engine, difficulty engine.Difficulty, budget time.Duration, out io.Writer) *Engine {
	return &Engine{
		worker:     engine.NewWorker(eng),
		difficulty: difficulty,
		budget:     budget,
		pos:        xiangqi.NewInitialPosition(),
		out:        out,
	}
}

// ExecCommand 返回 false 表示收到 quit。
func (e *Engine) ExecCommand(cmdStr string) bool {
	cmdStr = strings.TrimSpace(cmdStr)
	logrus.Infof("cmd: %s", cmdStr)
	cmd, args, _ := strings.Cut(cmdStr, " ")
	switch cmd {
	case "ucci":
		e.ucci()
	case "isready":
		e.println("readyok")
	case "position":
		e.position(args)
	case "go":
		e.goThink(args)
	case "stop":
		e.worker.Cancel()
	case "quit":
		e.worker.Cancel()
		e.worker.Wait()
		e.println("bye")
		return false
	case "":
	default:
		logrus.Warnf("unknown command %q", cmd)
	}
	return true
}

func (e *Engine) ucci() {
	e.println("id name xiangqi")
	e.println("id author xiangqi developers")
	e.println("option usemillisec type check default true")
	e.println("ucciok")
}

func (e *Engine) position(args string) {
	pos, err := parsePosition(args)
	if err != nil {
		logrus.Errorf("parse position failure, position: %s, err: %v", args, err)
		return
	}
	e.pos = pos
}

// goThink 支持 "go [time <ms>] [depth <n>]"，其余参数忽略
func (e *Engine) goThink(args string) {
	budget, depth := e.budget, 0
	fields := strings.Fields(args)
	for i := 0; i+1 < len(fields); i++ {
		n, err := strconv.Atoi(fields[i+1])
		if err != nil {
			continue
		}
		switch fields[i] {
		case "time":
			budget = time.Duration(n) * time.Millisecond
			i++
		case "depth":
			depth = n
			i++
		}
	}

	req := engine.Request{
		Position:   *e.pos,
		Side:       e.pos.SideToMove,
		Difficulty: e.difficulty,
		Budget:     budget,
		MaxDepth:   depth,
	}
	ok := e.worker.Start(req, func(_ string, res engine.Result) {
		if res.NoMove {
			e.println("nobestmove")
			return
		}
		e.println(fmt.Sprintf("info depth %d score %d nodes %d time %d", res.Depth, res.Score, res.Nodes, res.TimeUsed.Milliseconds()))
		e.println("bestmove " + res.Move.ICCS())
	})
	if !ok {
		logrus.Warnf("go ignored: engine is already thinking")
	}
}

// Wait 等当前 go 的输出写完
func (e *Engine) Wait() { e.worker.Wait() }

func (e *Engine) println(line string) {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	logrus.Debugf("ucci: %s", line)
	if _, err := fmt.Fprintln(e.out, line); err != nil {
		logrus.Errorf("output write failure. %s, err=%v", line, err)
	}
}
