package analysis

import (
	"fmt"
	"sort"

	"lotto-analyzer/internal/database"

	"github.com/shopspring/decimal"
)

// Parity 单双分布
type Parity string

const (
	AllOdd       Parity = "all-odd"
	MajorityOdd  Parity = "majority-odd"
	MajorityEven Parity = "majority-even"
	AllEven      Parity = "all-even"
)

// Parities 展示顺序
var Parities = []Parity{AllOdd, MajorityOdd, MajorityEven, AllEven}

// ParityOf 按奇数个数归类
func ParityOf(oddCount int) Parity {
	switch {
	case oddCount >= 5:
		return AllOdd
	case oddCount >= 3:
		return MajorityOdd
	case oddCount >= 1:
		return MajorityEven
	default:
		return AllEven
	}
}

const sumBucketWidth = 25

// SumBucket 和值区间，宽 25，从 0 起
type SumBucket struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// BucketFor 和值所在区间
func BucketFor(sum int) SumBucket {
	low := (sum / sumBucketWidth) * sumBucketWidth
	return SumBucket{Low: low, High: low + sumBucketWidth - 1}
}

func (b SumBucket) String() string {
	return fmt.Sprintf("%d-%d", b.Low, b.High)
}

// DrawPattern 单期形态
type DrawPattern struct {
	OddCount         int
	Parity           Parity
	ConsecutivePairs int
	HasPair          bool
	HasTriplet       bool
	Decades          int
	Concentrated     bool
	Sum              int
	Bucket           SumBucket
}

// Classify 对一期主号码做形态归类
func Classify(d database.Draw) DrawPattern {
	nums := d.Main
	sorted := nums[:]
	sort.Ints(sorted)

	var p DrawPattern
	decades := make(map[int]struct{})
	for i, n := range sorted {
		if n%2 == 1 {
			p.OddCount++
		}
		p.Sum += n
		decades[n/10] = struct{}{}
		if i > 0 && n-sorted[i-1] == 1 {
			p.ConsecutivePairs++
		}
	}

	p.Parity = ParityOf(p.OddCount)
	p.HasPair = p.ConsecutivePairs >= 1
	p.HasTriplet = p.ConsecutivePairs >= 2
	p.Decades = len(decades)
	p.Concentrated = p.Decades <= 3
	p.Bucket = BucketFor(p.Sum)
	return p
}

// PatternCount 计数与占比
type PatternCount struct {
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

// BucketCount 和值区间计数
type BucketCount struct {
	Bucket SumBucket `json:"bucket"`
	PatternCount
}

// PatternSummary 全部历史的形态汇总
type PatternSummary struct {
	Draws               int                     `json:"draws"`
	Parity              map[Parity]PatternCount `json:"parity"`
	ConsecutivePairs    PatternCount            `json:"consecutive_pairs"`
	ConsecutiveTriplets PatternCount            `json:"consecutive_triplets"`
	Concentrated        PatternCount            `json:"concentrated"`
	SumBuckets          []BucketCount           `json:"sum_buckets"`
}

// Summarize 汇总各形态出现次数与占比
// 和值区间按次数降序，次数相同按区间下限升序
func Summarize(history database.DrawHistory) PatternSummary {
	total := len(history)
	parity := make(map[Parity]int)
	buckets := make(map[SumBucket]int)
	var pairs, triplets, concentrated int

	for _, d := range history {
		p := Classify(d)
		parity[p.Parity]++
		buckets[p.Bucket]++
		if p.HasPair {
			pairs++
		}
		if p.HasTriplet {
			triplets++
		}
		if p.Concentrated {
			concentrated++
		}
	}

	s := PatternSummary{
		Draws:               total,
		Parity:              make(map[Parity]PatternCount, len(Parities)),
		ConsecutivePairs:    newPatternCount(pairs, total),
		ConsecutiveTriplets: newPatternCount(triplets, total),
		Concentrated:        newPatternCount(concentrated, total),
	}
	for _, p := range Parities {
		s.Parity[p] = newPatternCount(parity[p], total)
	}

	for b, c := range buckets {
		s.SumBuckets = append(s.SumBuckets, BucketCount{Bucket: b, PatternCount: newPatternCount(c, total)})
	}
	sort.Slice(s.SumBuckets, func(i, j int) bool {
		a, b := s.SumBuckets[i], s.SumBuckets[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Bucket.Low < b.Bucket.Low
	})
	return s
}

func newPatternCount(count, total int) PatternCount {
	return PatternCount{Count: count, Percent: Percent(count, total)}
}

// Percent count/total 的百分比，保留一位小数
func Percent(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 1)
}
