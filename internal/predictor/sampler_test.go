package predictor

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// withinBinomial 断言 hits 落在 Binomial(trials, p) 均值 5 个标准差内
func withinBinomial(t *testing.T, hits, trials int, p float64) {
	t.Helper()
	b := distuv.Binomial{N: float64(trials), P: p}
	assert.InDelta(t, b.Mean(), float64(hits), 5*b.StdDev(),
		"hits=%d trials=%d p=%.4f", hits, trials, p)
}

func TestSample_Distribution(t *testing.T) {
	pool := []Candidate[string]{{"A", 1}, {"B", 3}}
	r := testRand(1)

	const trials = 100000
	hitsB := 0
	for i := 0; i < trials; i++ {
		got, err := Sample(r, pool, 1)
		require.NoError(t, err)
		if got[0] == "B" {
			hitsB++
		}
	}

	withinBinomial(t, hitsB, trials, 0.75)
}

func TestSample_RenormalizesAfterRemoval(t *testing.T) {
	// P(C 入选) = 1/2 + 1/4*2/3 + 1/4*2/3 = 5/6
	pool := []Candidate[string]{{"A", 1}, {"B", 1}, {"C", 2}}
	r := testRand(2)

	const trials = 60000
	hitsC := 0
	for i := 0; i < trials; i++ {
		got, err := Sample(r, pool, 2)
		require.NoError(t, err)
		for _, item := range got {
			if item == "C" {
				hitsC++
			}
		}
	}

	withinBinomial(t, hitsC, trials, 5.0/6.0)
}

func TestSample_ExactlyKDistinct(t *testing.T) {
	r := testRand(3)
	pool := make([]Candidate[int], 20)
	for i := range pool {
		pool[i] = Candidate[int]{Item: i + 1, Weight: float64(i % 4)}
	}

	for k := 0; k <= len(pool); k++ {
		got, err := Sample(r, pool, k)
		require.NoError(t, err)
		require.Len(t, got, k)

		seen := make(map[int]bool)
		for _, n := range got {
			assert.False(t, seen[n], "duplicate %d for k=%d", n, k)
			assert.True(t, n >= 1 && n <= 20)
			seen[n] = true
		}
	}
}

func TestSample_ZeroWeightsFallBackToUniform(t *testing.T) {
	pool := []Candidate[int]{{1, 0}, {2, 0}, {3, 0}, {4, 0}}
	r := testRand(4)

	const trials = 40000
	counts := make(map[int]int)
	for i := 0; i < trials; i++ {
		got, err := Sample(r, pool, 4)
		require.NoError(t, err)
		require.ElementsMatch(t, []int{1, 2, 3, 4}, got)
		counts[got[0]]++
	}

	for item := 1; item <= 4; item++ {
		withinBinomial(t, counts[item], trials, 0.25)
	}
}

func TestSample_ZeroWeightItemsOnlyAfterPositiveOnes(t *testing.T) {
	pool := []Candidate[int]{{1, 0}, {2, 5}, {3, 0}}
	r := testRand(5)

	for i := 0; i < 1000; i++ {
		got, err := Sample(r, pool, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, got[0])
		assert.Contains(t, []int{1, 3}, got[1])
	}
}

func TestSample_Errors(t *testing.T) {
	r := testRand(6)

	_, err := Sample(r, []Candidate[int]{{1, 1}}, 2)
	assert.ErrorIs(t, err, ErrInsufficientPool)

	_, err = Sample(r, []Candidate[int]{{1, 1}, {2, -0.5}}, 1)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = Sample(r, []Candidate[int]{{1, math.NaN()}}, 1)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = Sample(r, []Candidate[int]{{1, math.Inf(1)}}, 1)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	// 单个权重有限，但总和溢出为 +Inf
	_, err = Sample(r, []Candidate[int]{{1, math.MaxFloat64}, {2, math.MaxFloat64}}, 1)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = Sample(r, []Candidate[int]{{1, 1}}, -1)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = Sample(r, []Candidate[int]{{1, 1}, {1, 2}}, 1)
	assert.ErrorIs(t, err, ErrDuplicateItem)

	got, err := Sample[int](r, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSample_DoesNotMutatePool(t *testing.T) {
	pool := []Candidate[int]{{1, 1}, {2, 2}, {3, 3}}
	_, err := Sample(testRand(7), pool, 3)
	require.NoError(t, err)
	assert.Equal(t, []Candidate[int]{{1, 1}, {2, 2}, {3, 3}}, pool)
}

func TestSample_Deterministic(t *testing.T) {
	pool := make([]Candidate[int], 50)
	for i := range pool {
		pool[i] = Candidate[int]{Item: i + 1, Weight: float64(i + 1)}
	}

	a, err := Sample(testRand(42), pool, 5)
	require.NoError(t, err)
	b, err := Sample(testRand(42), pool, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUniform(t *testing.T) {
	r := testRand(8)
	items := []int{10, 20, 30, 40, 50}

	got, err := Uniform(r, items, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Subset(t, items, got)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, items)

	_, err = Uniform(r, items, 6)
	assert.ErrorIs(t, err, ErrInsufficientPool)

	_, err = Uniform(r, []int{1, 1}, 1)
	assert.ErrorIs(t, err, ErrDuplicateItem)

	const trials = 50000
	first := 0
	for i := 0; i < trials; i++ {
		got, err := Uniform(r, items, 2)
		require.NoError(t, err)
		if got[0] == 10 || got[1] == 10 {
			first++
		}
	}
	withinBinomial(t, first, trials, 2.0/5.0)
}
