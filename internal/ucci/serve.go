package ucci

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/engine"
)

// Deal 按行读取命令直到 quit 或输入结束。
func Deal(eng *engine.Engine, difficulty engine.Difficulty, budget time.Duration, r io.Reader, w io.Writer) {
	ue := NewEngine(eng, difficulty, budget, w)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if !ue.ExecCommand(scanner.Text()) {
			logrus.Infof("engine quit")
			return
		}
	}
	ue.ExecCommand("quit")
}

// ServeTCP 每个连接一个独立的 UCCI 会话，ctx 取消时关闭监听。
func ServeTCP(ctx context.Context, addr string, eng *engine.Engine, difficulty engine.Difficulty, budget time.Duration) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	logrus.Infof("start listening: %v", ln.Addr())
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		logrus.Infof("accept connection: %v", conn.RemoteAddr())
		go func() {
			defer conn.Close()
			Deal(eng, difficulty, budget, conn, conn)
		}()
	}
}
