package engine

import "xiangqi/internal/xiangqi"

type ttFlag uint8

const (
	ttExact ttFlag = iota + 1
	ttLower        // fail-high，真实值 >= score
	ttUpper        // fail-low，真实值 <= score
)

// 简单 TT 条目
type ttEntry struct {
	key   uint64
	move  xiangqi.Move
	score int32
	depth int8
	flag  ttFlag
}

// transTable 固定大小的数组，下标取哈希低位；每次搜索私有，不加锁。
type transTable struct {
	entries []ttEntry
	mask    uint64
}

const (
	defaultTTBits = 16
	maxTTBits     = 24
)

func newTransTable(bits int) *transTable {
	if bits <= 0 {
		bits = defaultTTBits
	}
	if bits > maxTTBits {
		bits = maxTTBits
	}
	n := 1 << bits
	return &transTable{entries: make([]ttEntry, n), mask: uint64(n - 1)}
}

func (t *transTable) reset() {
	clear(t.entries)
}

func (t *transTable) probe(key uint64) (ttEntry, bool) {
	e := t.entries[key&t.mask]
	if e.flag == 0 || e.key != key {
		return ttEntry{}, false
	}
	return e, true
}

// 同一个 key 深度优先；不同 key 直接覆盖
func (t *transTable) store(key uint64, depth, score int, flag ttFlag, mv xiangqi.Move) {
	slot := &t.entries[key&t.mask]
	if slot.flag != 0 && slot.key == key && int(slot.depth) > depth {
		return
	}
	*slot = ttEntry{key: key, move: mv, score: int32(score), depth: int8(depth), flag: flag}
}

// 杀棋分按“距当前节点”存，取出时再换回“距根节点”
func scoreToTT(score, ply int) int {
	switch {
	case score >= mateBound:
		return score + ply
	case score <= -mateBound:
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	switch {
	case score >= mateBound:
		return score - ply
	case score <= -mateBound:
		return score + ply
	}
	return score
}
