package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingInput 数据源不存在
	ErrMissingInput = errors.New("missing input")
	// ErrMalformedRecord 记录格式错误
	ErrMalformedRecord = errors.New("malformed record")
	// ErrEmptyDataset 数据集为空
	ErrEmptyDataset = errors.New("empty dataset")
)

// Domain 号码域
type Domain struct {
	Name  string
	Min   int
	Max   int
	Picks int
}

var (
	// MainDomain 主号码 1-50，每期 5 个
	MainDomain = Domain{Name: "main", Min: 1, Max: 50, Picks: 5}
	// BonusDomain 幸运星 1-12，每期 2 个
	BonusDomain = Domain{Name: "bonus", Min: 1, Max: 12, Picks: 2}
)

// Size 号码域大小
func (d Domain) Size() int {
	return d.Max - d.Min + 1
}

// Contains 号码是否在域内
func (d Domain) Contains(n int) bool {
	return n >= d.Min && n <= d.Max
}

// Numbers 域内全部号码，升序
func (d Domain) Numbers() []int {
	nums := make([]int, 0, d.Size())
	for n := d.Min; n <= d.Max; n++ {
		nums = append(nums, n)
	}
	return nums
}

// Column 号码列选择器
type Column int

const (
	MainColumn Column = iota
	BonusColumn
)

// Domain 列对应的号码域
func (c Column) Domain() Domain {
	if c == BonusColumn {
		return BonusDomain
	}
	return MainDomain
}

// Numbers 取出开奖记录中该列的号码
func (c Column) Numbers(d Draw) []int {
	if c == BonusColumn {
		return d.Bonus[:]
	}
	return d.Main[:]
}

func (c Column) String() string {
	return c.Domain().Name
}

// Draw 开奖记录，加载后只读
type Draw struct {
	Date  string `json:"date"`
	Main  [5]int `json:"main"`
	Bonus [2]int `json:"bonus"`
}

// String 格式化开奖号码，如 "03 14 22 37 45 + 02 11"
func (d Draw) String() string {
	return FormatNumbers(d.Main[:]) + " + " + FormatNumbers(d.Bonus[:])
}

// DrawHistory 按读取顺序排列的开奖历史，下标即时间
type DrawHistory []Draw

// Latest 最新一期
func (h DrawHistory) Latest() (Draw, bool) {
	if len(h) == 0 {
		return Draw{}, false
	}
	return h[len(h)-1], true
}

// Recent 最近 n 期，n <= 0 或超出长度时返回全部
func (h DrawHistory) Recent(n int) DrawHistory {
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[len(h)-n:]
}

// PredictionRun 一次预测运行的存档
type PredictionRun struct {
	ID          int64
	RunID       string
	Seed        uint64
	DrawCount   int
	LatestDate  string
	CreatedAt   time.Time
	Predictions []PredictionRecord
}

// PredictionRecord 单个策略的预测存档
type PredictionRecord struct {
	Strategy string
	Main     []int
	Bonus    []int
}

// FormatNumbers 两位补零，空格分隔
func FormatNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}

// JoinNumbers 存库格式，逗号分隔
func JoinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// SplitNumbers 解析存库格式
func SplitNumbers(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("failed to parse number %q: %v", part, err)
		}
		nums = append(nums, n)
	}
	return nums, nil
}
