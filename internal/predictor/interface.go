package predictor

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"time"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/database"
	"lotto-analyzer/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Strategy 预测策略接口
type Strategy interface {
	// Name 策略名称，同时用于派生随机源
	Name() string

	// Description 策略说明
	Description() string

	// Predict 根据分析结果给出一组号码，随机性只能来自 r
	Predict(in *analysis.Inputs, r *rand.Rand) (Pick, error)
}

// Pick 一组预测号码，均为升序
type Pick struct {
	Main  []int `json:"main"`
	Bonus []int `json:"bonus"`
}

// String 格式化输出
func (p Pick) String() string {
	return fmt.Sprintf("[%s] + [%s]", database.FormatNumbers(p.Main), database.FormatNumbers(p.Bonus))
}

// Prediction 单个策略的预测结果
type Prediction struct {
	Strategy    string `json:"strategy"`
	Description string `json:"description"`
	Pick
}

// Run 一次完整预测
type Run struct {
	ID          uuid.UUID    `json:"id"`
	Seed        uint64       `json:"seed"`
	CreatedAt   time.Time    `json:"created_at"`
	DrawCount   int          `json:"draw_count"`
	LatestDate  string       `json:"latest_date"`
	Primary     string       `json:"primary"`
	Secondary   string       `json:"secondary"`
	Predictions []Prediction `json:"predictions"`
}

// Get 按策略名称取结果
func (r *Run) Get(name string) (Prediction, bool) {
	for _, p := range r.Predictions {
		if p.Strategy == name {
			return p, true
		}
	}
	return Prediction{}, false
}

// Record 转为存档格式
func (r *Run) Record() *database.PredictionRun {
	rec := &database.PredictionRun{
		RunID:      r.ID.String(),
		Seed:       r.Seed,
		DrawCount:  r.DrawCount,
		LatestDate: r.LatestDate,
		CreatedAt:  r.CreatedAt,
	}
	for _, p := range r.Predictions {
		rec.Predictions = append(rec.Predictions, database.PredictionRecord{
			Strategy: p.Strategy,
			Main:     p.Main,
			Bonus:    p.Bonus,
		})
	}
	return rec
}

// Manager 预测策略管理器，按注册顺序输出
type Manager struct {
	strategies []Strategy
	byName     map[string]Strategy
	primary    string
	secondary  string
}

// NewManager 创建管理器并注册全部默认策略
func NewManager() *Manager {
	m := &Manager{byName: make(map[string]Strategy)}

	for _, s := range DefaultStrategies() {
		// 默认策略名称唯一，不会出错
		_ = m.Register(s)
	}
	m.primary = StrategyBalanced
	m.secondary = StrategyWeighted

	return m
}

// Register 注册策略
func (m *Manager) Register(s Strategy) error {
	if _, exists := m.byName[s.Name()]; exists {
		return fmt.Errorf("strategy already registered: %s", s.Name())
	}
	m.strategies = append(m.strategies, s)
	m.byName[s.Name()] = s
	return nil
}

// SetRecommended 设置首选与次选推荐策略
func (m *Manager) SetRecommended(primary, secondary string) error {
	for _, name := range []string{primary, secondary} {
		if _, exists := m.byName[name]; !exists {
			return fmt.Errorf("strategy not found: %s", name)
		}
	}
	m.primary, m.secondary = primary, secondary
	return nil
}

// Names 已注册策略名称，注册顺序
func (m *Manager) Names() []string {
	names := make([]string, len(m.strategies))
	for i, s := range m.strategies {
		names[i] = s.Name()
	}
	return names
}

// Get 按名称获取策略
func (m *Manager) Get(name string) (Strategy, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// PredictAll 并发运行全部策略
// 每个策略使用由 (seed, 策略名) 派生的独立随机源，同一种子结果可复现
func (m *Manager) PredictAll(in *analysis.Inputs, seed uint64) (*Run, error) {
	if len(m.strategies) == 0 {
		return nil, fmt.Errorf("no strategies registered")
	}

	predictions := make([]Prediction, len(m.strategies))
	var g errgroup.Group
	for i, s := range m.strategies {
		g.Go(func() error {
			pick, err := s.Predict(in, NewRand(seed, s.Name()))
			if err != nil {
				return fmt.Errorf("strategy %s failed: %w", s.Name(), err)
			}
			slices.Sort(pick.Main)
			slices.Sort(pick.Bonus)
			predictions[i] = Prediction{Strategy: s.Name(), Description: s.Description(), Pick: pick}
			logger.Debugf("Strategy %s picked %s", s.Name(), pick)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:          uuid.New(),
		Seed:        seed,
		CreatedAt:   time.Now(),
		DrawCount:   len(in.History),
		LatestDate:  in.Latest().Date,
		Primary:     m.primary,
		Secondary:   m.secondary,
		Predictions: predictions,
	}

	logger.Debugf("Prediction run %s generated %d predictions (seed=%d)", run.ID, len(predictions), seed)
	return run, nil
}

// NewRand 由种子与策略名派生独立随机源
func NewRand(seed uint64, name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}
