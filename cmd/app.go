package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/api"
	"lotto-analyzer/internal/config"
	"lotto-analyzer/internal/database"
	"lotto-analyzer/internal/logger"
	"lotto-analyzer/internal/predictor"
	"lotto-analyzer/internal/report"
	"lotto-analyzer/internal/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Options 命令行参数，零值表示沿用配置文件
type Options struct {
	ConfigPath string
	Seed       uint64
	Source     string
}

// App 应用程序主结构
type App struct {
	config    *config.Config
	apiClient *api.Client
	store     *database.Store
	notifier  *telegram.Notifier
	manager   *predictor.Manager
	validator *predictor.Validator

	// stdout 文本报告输出目标
	stdout io.Writer
	cron   *cron.Cron
}

// NewApp 创建应用程序实例
func NewApp(ctx context.Context, opts Options) (*App, error) {
	// 加载配置
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	// 命令行参数优先于配置文件
	if opts.Source != "" {
		cfg.Data.Source = opts.Source
		cfg.Data.FromDatabase = false
	}
	if opts.Seed != 0 {
		cfg.Predict.Seed = opts.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	// 初始化日志
	logger.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	manager := predictor.NewManager()
	app := &App{
		config:    cfg,
		apiClient: api.NewClient(&cfg.API),
		manager:   manager,
		validator: predictor.NewValidator(manager),
		stdout:    os.Stdout,
	}

	// 初始化数据库
	if cfg.Database.Enabled {
		store, err := database.Open(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %v", err)
		}
		app.store = store
		fmt.Fprintf(os.Stderr, "✅ 数据库连接成功 (%s)\n", store.Driver())
	}

	// 初始化Telegram推送
	if cfg.Telegram.Enabled {
		notifier, err := telegram.NewNotifier(&cfg.Telegram)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize telegram notifier: %v", err)
		}
		app.notifier = notifier
		fmt.Fprintf(os.Stderr, "✅ Telegram机器人连接成功 (@%s)\n", notifier.BotName())
	}

	return app, nil
}

// Run 执行一次完整流程：加载、分析、预测、回测、输出报告
func (a *App) Run(ctx context.Context) error {
	started := time.Now()

	history, source, err := a.loadHistory(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📚 已加载 %d 期开奖数据 (%s)\n", len(history), source)

	params := analysis.NewParams(a.config.Analysis)
	in, err := analysis.Analyze(history, params)
	if err != nil {
		return fmt.Errorf("failed to analyze history: %w", err)
	}

	seed := a.config.Predict.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	run, err := a.manager.PredictAll(in, seed)
	if err != nil {
		return fmt.Errorf("failed to generate predictions: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"run_id":      run.ID.String(),
		"seed":        run.Seed,
		"draws":       run.DrawCount,
		"predictions": len(run.Predictions),
	}).Info("Predictions generated")

	snapshot := &report.Snapshot{
		GeneratedAt: started,
		Source:      source,
		Inputs:      in,
		Run:         run,
	}

	if draws := a.config.Analysis.BacktestDraws; draws > 0 {
		bt, err := a.validator.Backtest(history, params, draws, seed)
		if err != nil {
			// 数据太少时跳过回测，不影响主流程
			logger.Warnf("Backtest skipped: %v", err)
		} else if bt.Draws > 0 {
			snapshot.Backtest = bt
		}
	}

	if err := report.WriteText(a.stdout, snapshot); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}

	written, err := report.Publish(a.config.Report, snapshot)
	if err != nil {
		return fmt.Errorf("failed to publish reports: %w", err)
	}
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "📝 报告已生成: %s\n", path)
	}

	if a.store != nil {
		if err := a.archive(ctx, history, run); err != nil {
			return err
		}
	}

	if a.notifier != nil {
		if err := a.notifier.Broadcast(run, in.Latest()); err != nil {
			logger.Warnf("Failed to broadcast predictions: %v", err)
		}
	}

	logger.Infof("Run finished in %v", time.Since(started).Round(time.Millisecond))
	return nil
}

// Import 把数据集导入数据库
func (a *App) Import(ctx context.Context) (int, error) {
	if a.store == nil {
		return 0, fmt.Errorf("database is not enabled")
	}

	history, err := database.Load(ctx, a.config.Data.Source, a.apiClient)
	if err != nil {
		return 0, fmt.Errorf("failed to load dataset: %w", err)
	}

	saved, err := a.store.SaveDraws(ctx, history)
	if err != nil {
		return 0, fmt.Errorf("failed to import draws: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✅ 导入了 %d 期开奖数据\n", saved)
	return saved, nil
}

// Start 按 cron 表达式定时执行 Run
func (a *App) Start() error {
	fmt.Fprintln(os.Stderr, "🔄 启动定时任务...")

	a.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger.Log))))
	_, err := a.cron.AddFunc(a.config.Schedule.Cron, func() {
		if err := a.Run(context.Background()); err != nil {
			logger.Errorf("Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %v", a.config.Schedule.Cron, err)
	}
	a.cron.Start()

	fmt.Fprintf(os.Stderr, "⏰ 执行计划: %s\n", a.config.Schedule.Cron)
	fmt.Fprintln(os.Stderr, "💡 按 Ctrl+C 停止程序")
	return nil
}

// Stop 停止定时任务并释放资源
func (a *App) Stop() error {
	fmt.Fprintln(os.Stderr, "🛑 正在停止应用程序...")

	if a.cron != nil {
		// 等待正在执行的任务结束
		<-a.cron.Stop().Done()
	}

	if err := a.Close(); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "✅ 应用程序已安全停止")
	return nil
}

// Close 关闭数据库连接
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %v", err)
	}
	return nil
}

// loadHistory 从数据库或数据源加载开奖历史，返回数据来源描述
func (a *App) loadHistory(ctx context.Context) (database.DrawHistory, string, error) {
	if a.config.Data.FromDatabase {
		history, err := a.store.LoadHistory(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load history from database: %w", err)
		}
		return history, "database (" + a.store.Driver() + ")", nil
	}

	history, err := database.Load(ctx, a.config.Data.Source, a.apiClient)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load dataset: %w", err)
	}
	return history, a.config.Data.Source, nil
}

// archive 保存开奖数据与本次预测
func (a *App) archive(ctx context.Context, history database.DrawHistory, run *predictor.Run) error {
	if !a.config.Data.FromDatabase {
		saved, err := a.store.SaveDraws(ctx, history)
		if err != nil {
			return fmt.Errorf("failed to archive draws: %w", err)
		}
		logger.Debugf("Archived %d draws", saved)
	}

	if err := a.store.SaveRun(ctx, run.Record()); err != nil {
		return fmt.Errorf("failed to archive prediction run: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 预测记录已保存: %s\n", run.ID)
	return nil
}
