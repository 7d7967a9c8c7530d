package predictor

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticHistory 用固定种子生成 n 期合法开奖
func syntheticHistory(t *testing.T, n int) database.DrawHistory {
	t.Helper()
	r := testRand(2024)
	history := make(database.DrawHistory, n)
	for i := range history {
		main, err := Uniform(r, database.MainDomain.Numbers(), 5)
		require.NoError(t, err)
		bonus, err := Uniform(r, database.BonusDomain.Numbers(), 2)
		require.NoError(t, err)
		copy(history[i].Main[:], main)
		copy(history[i].Bonus[:], bonus)
		history[i].Date = "d" + string(rune('A'+i%26))
	}
	return history
}

func analyzed(t *testing.T, n int) *analysis.Inputs {
	t.Helper()
	in, err := analysis.Analyze(syntheticHistory(t, n), analysis.DefaultParams())
	require.NoError(t, err)
	return in
}

func assertValidPick(t *testing.T, name string, p Pick) {
	t.Helper()
	for _, col := range []struct {
		nums   []int
		domain database.Domain
	}{{p.Main, database.MainDomain}, {p.Bonus, database.BonusDomain}} {
		require.Len(t, col.nums, col.domain.Picks, name)
		assert.True(t, slices.IsSorted(col.nums), "%s not sorted: %v", name, col.nums)
		assert.Len(t, slices.Compact(slices.Clone(col.nums)), col.domain.Picks, "%s has duplicates", name)
		for _, n := range col.nums {
			assert.True(t, col.domain.Contains(n), "%s: %d out of range", name, n)
		}
	}
}

func TestManager_RegistrationOrder(t *testing.T) {
	m := NewManager()
	assert.Equal(t, []string{
		StrategyMostFrequent, StrategyOverdue, StrategyHot,
		StrategyBalanced, StrategyPatternBased, StrategyWeighted,
	}, m.Names())

	assert.Error(t, m.Register(&WeightedStrategy{}))
	assert.Error(t, m.SetRecommended("nope", StrategyWeighted))
	assert.NoError(t, m.SetRecommended(StrategyHot, StrategyOverdue))
}

func TestPredictAll(t *testing.T) {
	in := analyzed(t, 120)
	run, err := NewManager().PredictAll(in, 7)
	require.NoError(t, err)

	require.Len(t, run.Predictions, 6)
	assert.Equal(t, uint64(7), run.Seed)
	assert.Equal(t, 120, run.DrawCount)
	assert.Equal(t, StrategyBalanced, run.Primary)
	assert.Equal(t, StrategyWeighted, run.Secondary)
	for _, p := range run.Predictions {
		assertValidPick(t, p.Strategy, p.Pick)
		assert.NotEmpty(t, p.Description)
	}

	mf, _ := run.Get(StrategyMostFrequent)
	assert.Subset(t, in.Main.Frequency.Top(10), mf.Main)
	assert.Subset(t, in.Bonus.Frequency.Top(6), mf.Bonus)

	od, _ := run.Get(StrategyOverdue)
	assert.Subset(t, in.Main.Gaps.OverdueNumbers(10), od.Main)
	assert.Subset(t, in.Bonus.Gaps.OverdueNumbers(6), od.Bonus)

	hot, _ := run.Get(StrategyHot)
	assert.Subset(t, in.Main.Recent.Top(10), hot.Main)

	bal, _ := run.Get(StrategyBalanced)
	pool := union(in.Main.Frequency.Top(7), in.Main.Gaps.OverdueNumbers(7))
	assert.Subset(t, pool, bal.Main)
	assert.Subset(t, union(in.Bonus.Frequency.Top(3), in.Bonus.Gaps.OverdueNumbers(3)), bal.Bonus)

	rec := run.Record()
	assert.Equal(t, run.ID.String(), rec.RunID)
	assert.Len(t, rec.Predictions, 6)
}

func TestPredictAll_DeterministicPerSeed(t *testing.T) {
	in := analyzed(t, 80)
	m := NewManager()

	a, err := m.PredictAll(in, 99)
	require.NoError(t, err)
	b, err := m.PredictAll(in, 99)
	require.NoError(t, err)

	for i := range a.Predictions {
		assert.Equal(t, a.Predictions[i].Pick, b.Predictions[i].Pick, a.Predictions[i].Strategy)
	}
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPatternStrategy_OddCount(t *testing.T) {
	in := analyzed(t, 10)
	s := &PatternStrategy{MinOdd: 2, MaxOdd: 3}

	for seed := uint64(0); seed < 500; seed++ {
		p, err := s.Predict(in, NewRand(seed, s.Name()))
		require.NoError(t, err)
		slices.Sort(p.Main)
		slices.Sort(p.Bonus)
		assertValidPick(t, s.Name(), p)

		odd := 0
		for _, n := range p.Main {
			odd += n % 2
		}
		assert.True(t, odd >= 2 && odd <= 3, "seed %d: %v has %d odd", seed, p.Main, odd)
	}
}

func TestWeights(t *testing.T) {
	history := database.DrawHistory{
		{Main: [5]int{1, 2, 3, 4, 5}, Bonus: [2]int{1, 2}},
		{Main: [5]int{1, 7, 8, 9, 10}, Bonus: [2]int{3, 4}},
	}
	in, err := analysis.Analyze(history, analysis.DefaultParams())
	require.NoError(t, err)

	pool := Weights(in.Main, in.Params)
	require.Len(t, pool, 50)

	weight := func(n int) float64 { return pool[n-1].Weight }
	// 1：每期都出现，遗漏 0
	assert.InDelta(t, 0.6*1.0*5+0.4/1, weight(1), 1e-12)
	// 2：出现 1 次，遗漏 1
	assert.InDelta(t, 0.6*0.5*5+0.4/2, weight(2), 1e-12)
	// 50：从未出现，遗漏按 2 期计
	assert.InDelta(t, 0.4/3, weight(50), 1e-12)
	assert.InDelta(t, 25.5, weight(1)/weight(50), 1e-9)

	bonus := Weights(in.Bonus, in.Params)
	require.Len(t, bonus, 12)
	// 幸运星 3：出现 1 次，遗漏 0
	assert.InDelta(t, 0.6*0.5*2+0.4/1, bonus[2].Weight, 1e-12)
	// 幸运星 1：出现 1 次，遗漏 1
	assert.InDelta(t, 0.6*0.5*2+0.4/2, bonus[0].Weight, 1e-12)
}

func TestPredictAll_OutOfRangeNumbersStayOutOfPicks(t *testing.T) {
	// 99 与 20 超出号码域，出现次数却最多
	var csv strings.Builder
	csv.WriteString("Date,Ball1,Ball2,Ball3,Ball4,Ball5,Star1,Star2\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&csv, "2024-01-%02d,1,2,3,4,99,1,20\n", i%28+1)
	}
	history, err := database.LoadCSV(strings.NewReader(csv.String()))
	require.NoError(t, err)

	in, err := analysis.Analyze(history, analysis.DefaultParams())
	require.NoError(t, err)
	assert.NotContains(t, in.Main.Frequency.Top(10), 99)
	assert.NotContains(t, in.Bonus.Recent.Top(6), 20)

	m := NewManager()
	for seed := uint64(0); seed < 50; seed++ {
		run, err := m.PredictAll(in, seed)
		require.NoError(t, err)
		for _, p := range run.Predictions {
			assertValidPick(t, fmt.Sprintf("seed %d %s", seed, p.Strategy), p.Pick)
		}
	}
}

func TestWeightedStrategy_FavoursHeavyNumbers(t *testing.T) {
	// 1..5 每期都出现，权重远高于其他号码
	history := make(database.DrawHistory, 30)
	for i := range history {
		history[i] = database.Draw{Main: [5]int{1, 2, 3, 4, 5}, Bonus: [2]int{1, 2}}
	}
	in, err := analysis.Analyze(history, analysis.DefaultParams())
	require.NoError(t, err)

	s := &WeightedStrategy{}
	hits := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		p, err := s.Predict(in, testRand(uint64(i)))
		require.NoError(t, err)
		for _, n := range p.Main {
			if n <= 5 {
				hits++
			}
		}
	}
	// 均匀抽样期望约 0.5 个，加权后远大于此
	assert.Greater(t, float64(hits)/trials, 3.0)
}

func TestPoolStrategy_SmallPool(t *testing.T) {
	in := analyzed(t, 20)
	in.Main.TopN = 4

	_, err := NewManager().PredictAll(in, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientPool)
}
