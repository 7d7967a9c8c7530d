package report

import (
	"strings"
	"time"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/predictor"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Snapshot 一次运行的全部输出数据
type Snapshot struct {
	GeneratedAt time.Time
	Source      string
	Inputs      *analysis.Inputs
	Run         *predictor.Run
	// Backtest 可为空
	Backtest *predictor.BacktestReport
}

// FirstDate 最早一期日期
func (s *Snapshot) FirstDate() string {
	if len(s.Inputs.History) == 0 {
		return ""
	}
	return s.Inputs.History[0].Date
}

// LatestDate 最新一期日期
func (s *Snapshot) LatestDate() string {
	return s.Inputs.Latest().Date
}

// StrategyTitle 策略展示名，如 "most-frequent" -> "Most Frequent"
func StrategyTitle(name string) string {
	// Caser 有内部状态，不能跨 goroutine 共享
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
