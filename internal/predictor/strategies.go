package predictor

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/database"
)

// 策略名称
const (
	StrategyMostFrequent = "most-frequent"
	StrategyOverdue      = "overdue"
	StrategyHot          = "hot"
	StrategyBalanced     = "balanced"
	StrategyPatternBased = "pattern-based"
	StrategyWeighted     = "weighted"
)

// DefaultStrategies 默认策略，顺序即输出顺序
func DefaultStrategies() []Strategy {
	return []Strategy{
		&poolStrategy{
			name:        StrategyMostFrequent,
			description: "uniform pick from the all-time most frequent numbers",
			pool: func(cs analysis.ColumnStats) []int {
				return cs.Frequency.Top(cs.TopN)
			},
		},
		&poolStrategy{
			name:        StrategyOverdue,
			description: "uniform pick from the numbers with the longest current gap",
			pool: func(cs analysis.ColumnStats) []int {
				return cs.Gaps.OverdueNumbers(cs.TopN)
			},
		},
		&poolStrategy{
			name:        StrategyHot,
			description: "uniform pick from the most frequent numbers in the recent window",
			pool: func(cs analysis.ColumnStats) []int {
				return cs.Recent.Top(cs.TopN)
			},
		},
		&poolStrategy{
			name:        StrategyBalanced,
			description: "uniform pick from the union of frequent and overdue numbers",
			pool: func(cs analysis.ColumnStats) []int {
				return union(cs.Frequency.Top(cs.BalancedN), cs.Gaps.OverdueNumbers(cs.BalancedN))
			},
		},
		&PatternStrategy{MinOdd: 2, MaxOdd: 3},
		&WeightedStrategy{},
	}
}

// poolStrategy 先按统计结果圈定候选池，再在池中均匀抽取
type poolStrategy struct {
	name        string
	description string
	pool        func(cs analysis.ColumnStats) []int
}

func (s *poolStrategy) Name() string        { return s.name }
func (s *poolStrategy) Description() string { return s.description }

func (s *poolStrategy) Predict(in *analysis.Inputs, r *rand.Rand) (Pick, error) {
	return pickColumns(in, func(cs analysis.ColumnStats) ([]int, error) {
		return Uniform(r, s.pool(cs), cs.Column.Domain().Picks)
	})
}

// PatternStrategy 随机选号后调整单双，使主号码奇数个数落在 [MinOdd, MaxOdd]
type PatternStrategy struct {
	MinOdd int
	MaxOdd int
}

func (s *PatternStrategy) Name() string { return StrategyPatternBased }

func (s *PatternStrategy) Description() string {
	return fmt.Sprintf("random numbers adjusted to %d-%d odd main numbers", s.MinOdd, s.MaxOdd)
}

func (s *PatternStrategy) Predict(in *analysis.Inputs, r *rand.Rand) (Pick, error) {
	domain := database.MainDomain
	main := randomDistinct(r, domain)

	odd := 0
	for _, n := range main {
		if n%2 == 1 {
			odd++
		}
	}

	// 每次把一个不符合要求的号码换成另一奇偶性的未选号码
	for i := 0; i < len(main) && (odd < s.MinOdd || odd > s.MaxOdd); i++ {
		wantOdd := odd < s.MinOdd
		if (main[i]%2 == 1) == wantOdd {
			continue
		}
		replacement, err := replacementOf(r, domain, main, wantOdd)
		if err != nil {
			return Pick{}, err
		}
		main[i] = replacement
		if wantOdd {
			odd++
		} else {
			odd--
		}
	}

	bonus, err := Uniform(r, database.BonusDomain.Numbers(), database.BonusDomain.Picks)
	if err != nil {
		return Pick{}, err
	}
	return Pick{Main: main, Bonus: bonus}, nil
}

// randomDistinct 反复随机取号直到凑满不重复的 Picks 个
func randomDistinct(r *rand.Rand, domain database.Domain) []int {
	picked := make([]int, 0, domain.Picks)
	for len(picked) < domain.Picks {
		n := domain.Min + r.IntN(domain.Size())
		if !slices.Contains(picked, n) {
			picked = append(picked, n)
		}
	}
	return picked
}

// replacementOf 在域内随机取一个指定奇偶且未被选中的号码
func replacementOf(r *rand.Rand, domain database.Domain, current []int, odd bool) (int, error) {
	var candidates []int
	for _, n := range domain.Numbers() {
		if (n%2 == 1) == odd && !slices.Contains(current, n) {
			candidates = append(candidates, n)
		}
	}
	picked, err := Uniform(r, candidates, 1)
	if err != nil {
		return 0, err
	}
	return picked[0], nil
}

// WeightedStrategy 在整个号码域上做不放回加权抽样
// 权重 = FrequencyWeight * 出现率 * 选号个数 + GapWeight / (遗漏 + 1)
type WeightedStrategy struct{}

func (s *WeightedStrategy) Name() string { return StrategyWeighted }

func (s *WeightedStrategy) Description() string {
	return "weighted sampling over the full domain by frequency and gap"
}

func (s *WeightedStrategy) Predict(in *analysis.Inputs, r *rand.Rand) (Pick, error) {
	return pickColumns(in, func(cs analysis.ColumnStats) ([]int, error) {
		return Sample(r, Weights(cs, in.Params), cs.Column.Domain().Picks)
	})
}

// Weights 计算一列全部号码的权重，从未出现的号码遗漏按历史长度计
// 频率项为每期出现率乘以每期选号个数（主号码 5，幸运星 2）
func Weights(cs analysis.ColumnStats, p analysis.Params) []Candidate[int] {
	domain := cs.Column.Domain()
	nums := domain.Numbers()
	pool := make([]Candidate[int], len(nums))
	for i, n := range nums {
		freq := cs.Frequency.Rate(n) * float64(domain.Picks)
		gap := float64(cs.Gaps.Effective(n))
		pool[i] = Candidate[int]{
			Item:   n,
			Weight: p.FrequencyWeight*freq + p.GapWeight/(gap+1),
		}
	}
	return pool
}

// pickColumns 主号码与幸运星分别选号
func pickColumns(in *analysis.Inputs, choose func(cs analysis.ColumnStats) ([]int, error)) (Pick, error) {
	main, err := choose(in.Main)
	if err != nil {
		return Pick{}, fmt.Errorf("main numbers: %w", err)
	}
	bonus, err := choose(in.Bonus)
	if err != nil {
		return Pick{}, fmt.Errorf("bonus numbers: %w", err)
	}
	return Pick{Main: main, Bonus: bonus}, nil
}

// union 合并去重，保持首次出现顺序
func union(lists ...[]int) []int {
	var out []int
	for _, list := range lists {
		for _, n := range list {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out
}
