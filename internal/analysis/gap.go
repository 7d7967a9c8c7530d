package analysis

import (
	"sort"

	"lotto-analyzer/internal/database"
)

// NeverSeen 从未出现过的号码的遗漏值
const NeverSeen = -1

// NumberGap 号码及当前遗漏期数
type NumberGap struct {
	Number int `json:"number"`
	Gap    int `json:"gap"`
}

// GapTable 当前遗漏表，以历史最后一期为参照
type GapTable struct {
	Domain database.Domain
	Gaps   map[int]int
	Draws  int
}

// Gaps 计算域内每个号码距最后一次出现的期数
// gap = (len(history)-1) - lastIndex，从未出现记为 NeverSeen
func Gaps(history database.DrawHistory, column database.Column) *GapTable {
	domain := column.Domain()
	last := make(map[int]int)
	for i, d := range history {
		for _, n := range column.Numbers(d) {
			last[n] = i
		}
	}

	t := &GapTable{
		Domain: domain,
		Gaps:   make(map[int]int, domain.Size()),
		Draws:  len(history),
	}
	for _, n := range domain.Numbers() {
		idx, ok := last[n]
		if !ok {
			t.Gaps[n] = NeverSeen
			continue
		}
		t.Gaps[n] = len(history) - 1 - idx
	}
	return t
}

// Get 号码遗漏值，可能为 NeverSeen
func (t *GapTable) Get(n int) int {
	gap, ok := t.Gaps[n]
	if !ok {
		return NeverSeen
	}
	return gap
}

// Effective 参与加权计算的遗漏值，从未出现按整段历史长度计
func (t *GapTable) Effective(n int) int {
	gap := t.Get(n)
	if gap == NeverSeen {
		return t.Draws
	}
	return gap
}

// Overdue 按遗漏降序取前 n 个，n <= 0 取全部
// 从未出现的排最前，遗漏相同按号码升序
func (t *GapTable) Overdue(n int) []NumberGap {
	ranked := make([]NumberGap, 0, len(t.Gaps))
	for _, num := range t.Domain.Numbers() {
		ranked = append(ranked, NumberGap{Number: num, Gap: t.Gaps[num]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if (a.Gap == NeverSeen) != (b.Gap == NeverSeen) {
			return a.Gap == NeverSeen
		}
		return a.Gap > b.Gap
	})
	return head(ranked, n)
}

// OverdueNumbers 前 n 个遗漏号码
func (t *GapTable) OverdueNumbers(n int) []int {
	overdue := t.Overdue(n)
	nums := make([]int, len(overdue))
	for i, g := range overdue {
		nums[i] = g.Number
	}
	return nums
}
