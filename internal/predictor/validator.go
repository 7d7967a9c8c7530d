package predictor

import (
	"fmt"
	"slices"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/database"
	"lotto-analyzer/internal/logger"
)

// ValidationResult 单次预测与实际开奖的比对结果
type ValidationResult struct {
	MatchedMain  []int `json:"matched_main"`
	MatchedBonus []int `json:"matched_bonus"`
}

// MainHits 主号码命中个数
func (v ValidationResult) MainHits() int { return len(v.MatchedMain) }

// BonusHits 幸运星命中个数
func (v ValidationResult) BonusHits() int { return len(v.MatchedBonus) }

// ValidatePrediction 比对预测与实际开奖，不考虑顺序
func ValidatePrediction(pick Pick, actual database.Draw) ValidationResult {
	return ValidationResult{
		MatchedMain:  matched(pick.Main, actual.Main[:]),
		MatchedBonus: matched(pick.Bonus, actual.Bonus[:]),
	}
}

func matched(predicted, actual []int) []int {
	var hits []int
	for _, n := range predicted {
		if slices.Contains(actual, n) && !slices.Contains(hits, n) {
			hits = append(hits, n)
		}
	}
	slices.Sort(hits)
	return hits
}

// Statistics 单个策略的回测统计
type Statistics struct {
	Strategy     string  `json:"strategy"`
	Attempts     int     `json:"attempts"`
	MainHits     int     `json:"main_hits"`
	BonusHits    int     `json:"bonus_hits"`
	AverageMain  float64 `json:"average_main"`
	AverageBonus float64 `json:"average_bonus"`
	BestMain     int     `json:"best_main"`
	BestBonus    int     `json:"best_bonus"`
	BestDate     string  `json:"best_date"`
	// Histogram[i] 主号码命中 i 个的次数
	Histogram [6]int `json:"histogram"`
}

// BacktestReport 回测结果，Strategies 与注册顺序一致
type BacktestReport struct {
	Draws      int          `json:"draws"`
	Seed       uint64       `json:"seed"`
	Strategies []Statistics `json:"strategies"`
}

// Validator 历史回测
type Validator struct {
	manager *Manager
}

// NewValidator 创建新的验证器
func NewValidator(manager *Manager) *Validator {
	return &Validator{
		manager: manager,
	}
}

// Backtest 对最近 draws 期逐期回测：只用该期之前的历史分析并预测，再与该期比对
// 第 i 期使用种子 seed+i，结果可复现
func (v *Validator) Backtest(history database.DrawHistory, params analysis.Params, draws int, seed uint64) (*BacktestReport, error) {
	start := len(history) - draws
	if start < 1 {
		start = 1
	}

	names := v.manager.Names()
	report := &BacktestReport{Seed: seed, Strategies: make([]Statistics, len(names))}
	for i, name := range names {
		report.Strategies[i].Strategy = name
	}

	for i := start; i < len(history); i++ {
		in, err := analysis.Analyze(history[:i], params)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze prefix %d: %w", i, err)
		}

		run, err := v.manager.PredictAll(in, seed+uint64(i))
		if err != nil {
			return nil, fmt.Errorf("failed to predict draw %s: %w", history[i].Date, err)
		}

		for j, p := range run.Predictions {
			report.Strategies[j].record(ValidatePrediction(p.Pick, history[i]), history[i].Date)
		}
		report.Draws++
	}

	for i := range report.Strategies {
		report.Strategies[i].finish()
	}

	logger.Infof("Backtest completed over %d draws", report.Draws)
	return report, nil
}

func (s *Statistics) record(result ValidationResult, date string) {
	main, bonus := result.MainHits(), result.BonusHits()
	s.Attempts++
	s.MainHits += main
	s.BonusHits += bonus
	if main < len(s.Histogram) {
		s.Histogram[main]++
	}
	if s.BestDate == "" || main > s.BestMain || (main == s.BestMain && bonus > s.BestBonus) {
		s.BestMain, s.BestBonus, s.BestDate = main, bonus, date
	}
}

func (s *Statistics) finish() {
	if s.Attempts == 0 {
		return
	}
	s.AverageMain = float64(s.MainHits) / float64(s.Attempts)
	s.AverageBonus = float64(s.BonusHits) / float64(s.Attempts)
}

// ExpectedMainHits 随机选 5 个主号码的期望命中数，作为回测参照
func ExpectedMainHits() float64 {
	d := database.MainDomain
	return float64(d.Picks) * float64(d.Picks) / float64(d.Size())
}
