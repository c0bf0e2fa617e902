package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"xiangqi/internal/engine"
	"xiangqi/internal/predict"
)

// Config 本地服务、UCCI 引擎和自对弈共用的配置，命令行参数会覆盖文件里的值。
type Config struct {
	Addr       string `json:"addr"`
	WebDir     string `json:"web_dir"`
	Difficulty string `json:"difficulty"`
	TimeMs     int    `json:"time_ms"`
	TTBits     int    `json:"tt_bits"`

	// ModelDir 是 selfplay -train 的输出目录；TreeModel/NetworkModel 单独指定时覆盖目录里的文件
	ModelDir     string  `json:"model_dir"`
	TreeModel    string  `json:"tree_model"`
	NetworkModel string  `json:"network_model"`
	Confidence   float64 `json:"confidence"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

func Default() Config {
	return Config{
		Addr:       ":2888",
		WebDir:     "./web",
		Difficulty: engine.Normal.String(),
		TimeMs:     3000,
		TTBits:     16,
		Confidence: predict.DefaultConfidence,
		LogLevel:   "info",
	}
}

// Load 文件不存在时返回默认值；存在但解析失败才报错。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Budget() time.Duration {
	if c.TimeMs <= 0 {
		return 0
	}
	return time.Duration(c.TimeMs) * time.Millisecond
}

// DifficultyLevel 未知的难度名退回 Normal。
func (c Config) DifficultyLevel() engine.Difficulty {
	d, err := engine.ParseDifficulty(c.Difficulty)
	if err != nil {
		return engine.Normal
	}
	return d
}

func (c Config) EngineOptions() engine.Options {
	return engine.Options{TTBits: c.TTBits}
}

func (c Config) ModelPaths() predict.Paths {
	paths := predict.DirPaths(c.ModelDir)
	if c.TreeModel != "" {
		paths.Tree = c.TreeModel
	}
	if c.NetworkModel != "" {
		paths.Network = c.NetworkModel
	}
	return paths
}

func (c Config) Predictor() predict.Predictor {
	return predict.Load(c.ModelPaths(), c.Confidence)
}

// SetupLogging 日志文件打不开时继续写 stderr。
func (c Config) SetupLogging() {
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	} else {
		logrus.Warnf("unknown log level %q, keeping %s", c.LogLevel, logrus.GetLevel())
	}
	if c.LogFile == "" {
		return
	}
	file, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.Warnf("open log file %s: %v", c.LogFile, err)
		return
	}
	logrus.SetOutput(file)
}
