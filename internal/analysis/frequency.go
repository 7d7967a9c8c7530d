package analysis

import (
	"fmt"
	"sort"

	"lotto-analyzer/internal/database"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Window 统计窗口，Recent 为 0 表示全部历史
type Window struct {
	Recent int
}

// AllDraws 全部历史
var AllDraws = Window{}

// RecentDraws 最近 n 期
func RecentDraws(n int) Window {
	return Window{Recent: n}
}

// Apply 截取窗口内的开奖记录
func (w Window) Apply(history database.DrawHistory) database.DrawHistory {
	return history.Recent(w.Recent)
}

func (w Window) String() string {
	if w.Recent <= 0 {
		return "all draws"
	}
	return fmt.Sprintf("last %d draws", w.Recent)
}

// NumberCount 号码及出现次数
type NumberCount struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// FrequencyTable 号码出现次数表
type FrequencyTable struct {
	Domain database.Domain
	Window Window
	Counts map[int]int
	// Draws 窗口内期数
	Draws int
	// Total 窗口内号码总个数
	Total int
	// order 号码首次出现顺序，用于并列排名
	order []int
}

// Count 统计窗口内某列号码的出现次数
func Count(history database.DrawHistory, column database.Column, window Window) *FrequencyTable {
	draws := window.Apply(history)
	t := &FrequencyTable{
		Domain: column.Domain(),
		Window: window,
		Counts: make(map[int]int),
		Draws:  len(draws),
	}

	for _, d := range draws {
		for _, n := range column.Numbers(d) {
			if _, seen := t.Counts[n]; !seen {
				t.order = append(t.order, n)
			}
			t.Counts[n]++
			t.Total++
		}
	}
	return t
}

// Get 号码出现次数
func (t *FrequencyTable) Get(n int) int {
	return t.Counts[n]
}

// Share 号码占全部号码的比例
func (t *FrequencyTable) Share(n int) float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Counts[n]) / float64(t.Total)
}

// Rate 每期出现率，即 count / draws
func (t *FrequencyTable) Rate(n int) float64 {
	if t.Draws == 0 {
		return 0
	}
	return float64(t.Counts[n]) / float64(t.Draws)
}

// MostCommon 按次数降序取前 n 个，n <= 0 取全部
// 次数相同按首次出现顺序；未出现的域内号码按升序排在最后
func (t *FrequencyTable) MostCommon(n int) []NumberCount {
	ranked := t.observed()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	for _, num := range t.Cold() {
		ranked = append(ranked, NumberCount{Number: num})
	}
	return head(ranked, n)
}

// LeastCommon 已出现号码按次数升序取前 n 个，次数相同按首次出现顺序
func (t *FrequencyTable) LeastCommon(n int) []NumberCount {
	ranked := t.observed()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count < ranked[j].Count
	})
	return head(ranked, n)
}

// Top 前 n 个域内高频号码，数据中超出号码域的值不参与
func (t *FrequencyTable) Top(n int) []int {
	var nums []int
	for _, c := range t.MostCommon(0) {
		if t.Domain.Contains(c.Number) {
			nums = append(nums, c.Number)
		}
	}
	return head(nums, n)
}

// Cold 窗口内未出现的域内号码，升序
func (t *FrequencyTable) Cold() []int {
	var cold []int
	for _, num := range t.Domain.Numbers() {
		if t.Counts[num] == 0 {
			cold = append(cold, num)
		}
	}
	return cold
}

func (t *FrequencyTable) observed() []NumberCount {
	ranked := make([]NumberCount, 0, len(t.order))
	for _, num := range t.order {
		ranked = append(ranked, NumberCount{Number: num, Count: t.Counts[num]})
	}
	return ranked
}

// UniformityTest 卡方均匀性检验结果
type UniformityTest struct {
	ChiSquare        float64 `json:"chi_square"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
}

// Uniformity 对域内号码做卡方检验，期望为均匀分布
// 只计域内号码，样本为空时 PValue 为 1
func (t *FrequencyTable) Uniformity() UniformityTest {
	nums := t.Domain.Numbers()
	result := UniformityTest{DegreesOfFreedom: len(nums) - 1, PValue: 1}

	observed := make([]float64, len(nums))
	var total float64
	for i, num := range nums {
		observed[i] = float64(t.Counts[num])
		total += observed[i]
	}
	if total == 0 || result.DegreesOfFreedom < 1 {
		return result
	}

	expected := make([]float64, len(nums))
	for i := range expected {
		expected[i] = total / float64(len(nums))
	}

	result.ChiSquare = stat.ChiSquare(observed, expected)
	result.PValue = distuv.ChiSquared{K: float64(result.DegreesOfFreedom)}.Survival(result.ChiSquare)
	return result
}

func head[T any](s []T, n int) []T {
	if n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}

func numbersOf(counts []NumberCount) []int {
	nums := make([]int, len(counts))
	for i, c := range counts {
		nums[i] = c.Number
	}
	return nums
}
