package analysis

import (
	"lotto-analyzer/internal/config"
	"lotto-analyzer/internal/database"
)

// Params 分析与预测参数，原先散落在各处的常量统一在这里
type Params struct {
	RecentWindow    int
	TopMain         int
	TopBonus        int
	BalancedMain    int
	BalancedBonus   int
	FrequencyWeight float64
	GapWeight       float64
}

// DefaultParams 默认参数
func DefaultParams() Params {
	return NewParams(config.DefaultConfig().Analysis)
}

// NewParams 从配置构造参数
func NewParams(cfg config.Analysis) Params {
	return Params{
		RecentWindow:    cfg.RecentWindow,
		TopMain:         cfg.TopMain,
		TopBonus:        cfg.TopBonus,
		BalancedMain:    cfg.BalancedMain,
		BalancedBonus:   cfg.BalancedBonus,
		FrequencyWeight: cfg.FrequencyWeight,
		GapWeight:       cfg.GapWeight,
	}
}

// ColumnStats 单列（主号码或幸运星）的统计结果
type ColumnStats struct {
	Column    database.Column
	Frequency *FrequencyTable
	Recent    *FrequencyTable
	Gaps      *GapTable
	// TopN 该列候选池大小，主号码 TopMain，幸运星 TopBonus
	TopN int
	// BalancedN 均衡策略每个来源取的个数
	BalancedN int
}

// Inputs 一次分析的只读结果，供各预测策略共享
type Inputs struct {
	History  database.DrawHistory
	Params   Params
	Main     ColumnStats
	Bonus    ColumnStats
	Patterns PatternSummary
}

// Analyze 对历史做全部分析
func Analyze(history database.DrawHistory, p Params) (*Inputs, error) {
	if len(history) == 0 {
		return nil, database.ErrEmptyDataset
	}

	return &Inputs{
		History:  history,
		Params:   p,
		Main:     columnStats(history, database.MainColumn, p, p.TopMain, p.BalancedMain),
		Bonus:    columnStats(history, database.BonusColumn, p, p.TopBonus, p.BalancedBonus),
		Patterns: Summarize(history),
	}, nil
}

func columnStats(history database.DrawHistory, column database.Column, p Params, topN, balancedN int) ColumnStats {
	return ColumnStats{
		Column:    column,
		Frequency: Count(history, column, AllDraws),
		Recent:    Count(history, column, RecentDraws(p.RecentWindow)),
		Gaps:      Gaps(history, column),
		TopN:      topN,
		BalancedN: balancedN,
	}
}

// Column 按列取统计结果
func (in *Inputs) Column(column database.Column) ColumnStats {
	if column == database.BonusColumn {
		return in.Bonus
	}
	return in.Main
}

// Latest 最新一期
func (in *Inputs) Latest() database.Draw {
	d, _ := in.History.Latest()
	return d
}
