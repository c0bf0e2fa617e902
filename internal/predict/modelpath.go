package predict

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// 模型目录里的固定文件名，selfplay -train 按这个布局写出
const (
	TreeFile    = "tree.gob"
	NetworkFile = "network.gob"
	SummaryFile = "summary.json"
)

// Paths 模型文件位置，空串表示不加载那一部分。
type Paths struct {
	Tree    string
	Network string
	Summary string
}

// DirPaths 返回 dir 下三份模型文件的路径；dir 为空时什么都不加载。
func DirPaths(dir string) Paths {
	if dir == "" {
		return Paths{}
	}
	return Paths{
		Tree:    filepath.Join(dir, TreeFile),
		Network: filepath.Join(dir, NetworkFile),
		Summary: filepath.Join(dir, SummaryFile),
	}
}

// resolveModelPath 相对路径先按工作目录找，再到可执行文件所在目录找。
// 都找不到时返回的错误包着 fs.ErrNotExist，调用方据此区分“没有模型”和“模型坏了”。
func resolveModelPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty model path: %w", fs.ErrNotExist)
	}
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		if exe, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(exe), name))
		}
	}

	var checked []string
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil || slices.Contains(checked, abs) {
			continue
		}
		checked = append(checked, abs)
		info, err := os.Stat(abs)
		if err != nil {
			continue
		}
		if info.IsDir() {
			return "", fmt.Errorf("model path %s is a directory", abs)
		}
		return abs, nil
	}
	return "", fmt.Errorf("model %s (checked %s): %w", name, strings.Join(checked, ", "), fs.ErrNotExist)
}
