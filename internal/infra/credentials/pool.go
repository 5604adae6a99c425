package credentials

import (
	"math/rand"
	"strings"
)

// PickFunc selects an index in [0, n). It exists so tests can pin selection.
type PickFunc func(n int) int

// Pool is an immutable ordered list of API keys with a pluggable selection
// strategy. The default strategy is uniform random with no sticky affinity
// and no per-key usage tracking.
type Pool struct {
	keys []string
	pick PickFunc
}

// NewPool builds a pool over the given keys. Empty entries are dropped. A nil
// pick falls back to uniform random selection.
func NewPool(keys []string, pick PickFunc) *Pool {
	var cleaned []string
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if pick == nil {
		pick = rand.Intn
	}
	return &Pool{keys: cleaned, pick: pick}
}

// ParseKeys splits a comma-joined credential blob into individual keys.
func ParseKeys(blob string) []string {
	var out []string
	for _, part := range strings.Split(blob, ",") {
		if k := strings.TrimSpace(part); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Key returns one key chosen by the selection strategy, or "" for an empty
// pool.
func (p *Pool) Key() string {
	if p == nil || len(p.keys) == 0 {
		return ""
	}
	if len(p.keys) == 1 {
		return p.keys[0]
	}
	return p.keys[p.pick(len(p.keys))]
}

// Size returns the number of keys in the pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Empty reports whether the pool holds no keys.
func (p *Pool) Empty() bool {
	return p.Size() == 0
}
