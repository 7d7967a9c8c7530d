package predictor

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

var (
	// ErrInsufficientPool 抽取个数大于候选池
	ErrInsufficientPool = errors.New("insufficient pool")
	// ErrInvalidWeight 权重为负数、NaN 或无穷
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrInvalidCount 抽取个数为负
	ErrInvalidCount = errors.New("invalid count")
	// ErrDuplicateItem 候选池中有重复项
	ErrDuplicateItem = errors.New("duplicate item")
)

// Candidate 候选项及其权重
type Candidate[T comparable] struct {
	Item   T
	Weight float64
}

// Sample 不放回加权抽样：每次按剩余权重归一化后抽一个并移出候选池
// 剩余权重全为 0 时在剩余项中均匀抽取
func Sample[T comparable](r *rand.Rand, pool []Candidate[T], k int) ([]T, error) {
	if err := checkCount(k, len(pool)); err != nil {
		return nil, err
	}

	seen := make(map[T]struct{}, len(pool))
	var total float64
	for _, c := range pool {
		if c.Weight < 0 || math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
			return nil, fmt.Errorf("%w: %v has weight %v", ErrInvalidWeight, c.Item, c.Weight)
		}
		if _, dup := seen[c.Item]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateItem, c.Item)
		}
		seen[c.Item] = struct{}{}
		total += c.Weight
	}
	// 任意子集之和不超过总和，总和有限则每轮抽样都有限
	if math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: weights sum overflows", ErrInvalidWeight)
	}

	remaining := slices.Clone(pool)
	picked := make([]T, 0, k)
	for len(picked) < k {
		idx := pick(r, remaining)
		picked = append(picked, remaining[idx].Item)
		remaining = slices.Delete(remaining, idx, idx+1)
	}
	return picked, nil
}

// pick 在剩余候选中按权重选出一个下标
func pick[T comparable](r *rand.Rand, remaining []Candidate[T]) int {
	var total float64
	for _, c := range remaining {
		total += c.Weight
	}
	if total <= 0 {
		return r.IntN(len(remaining))
	}

	target := r.Float64() * total
	var cumulative float64
	for i, c := range remaining {
		cumulative += c.Weight
		if cumulative > target {
			return i
		}
	}

	// 浮点累加误差导致没有命中时取最后一个正权重项
	for i := len(remaining) - 1; i >= 0; i-- {
		if remaining[i].Weight > 0 {
			return i
		}
	}
	return len(remaining) - 1
}

// Uniform 不放回均匀抽取 k 个
func Uniform[T comparable](r *rand.Rand, items []T, k int) ([]T, error) {
	if err := checkCount(k, len(items)); err != nil {
		return nil, err
	}

	seen := make(map[T]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateItem, item)
		}
		seen[item] = struct{}{}
	}

	// 部分 Fisher-Yates
	shuffled := slices.Clone(items)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:k], nil
}

func checkCount(k, size int) error {
	if k < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, k)
	}
	if k > size {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientPool, k, size)
	}
	return nil
}
