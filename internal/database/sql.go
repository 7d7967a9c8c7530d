package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"lotto-analyzer/internal/config"
	"lotto-analyzer/internal/logger"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// dialect 不同数据库的建表与 upsert 语句
type dialect struct {
	driver     string
	schema     []string
	upsertDraw string
}

var mysqlDialect = dialect{
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS draws (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			draw_date VARCHAR(64) NOT NULL UNIQUE COMMENT '开奖日期',
			main_numbers VARCHAR(32) NOT NULL COMMENT '主号码',
			bonus_numbers VARCHAR(16) NOT NULL COMMENT '幸运星',
			created_at BIGINT NOT NULL COMMENT '记录创建时间'
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT='开奖数据表'`,
		`CREATE TABLE IF NOT EXISTS prediction_runs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL UNIQUE COMMENT '运行ID',
			seed VARCHAR(20) NOT NULL COMMENT '随机种子',
			draw_count INT NOT NULL COMMENT '历史期数',
			latest_date VARCHAR(64) NOT NULL COMMENT '最新一期日期',
			created_at BIGINT NOT NULL COMMENT '预测时间'
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT='预测运行表'`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL COMMENT '运行ID',
			strategy VARCHAR(32) NOT NULL COMMENT '策略名称',
			main_numbers VARCHAR(32) NOT NULL COMMENT '预测主号码',
			bonus_numbers VARCHAR(16) NOT NULL COMMENT '预测幸运星',
			INDEX idx_run_id (run_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT='预测记录表'`,
	},
	upsertDraw: `INSERT INTO draws (draw_date, main_numbers, bonus_numbers, created_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		main_numbers = VALUES(main_numbers),
		bonus_numbers = VALUES(bonus_numbers)`,
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS draws (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			draw_date TEXT NOT NULL UNIQUE,
			main_numbers TEXT NOT NULL,
			bonus_numbers TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prediction_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			seed TEXT NOT NULL,
			draw_count INTEGER NOT NULL,
			latest_date TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			strategy TEXT NOT NULL,
			main_numbers TEXT NOT NULL,
			bonus_numbers TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_run_id ON predictions (run_id)`,
	},
	upsertDraw: `INSERT INTO draws (draw_date, main_numbers, bonus_numbers, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(draw_date) DO UPDATE SET
		main_numbers = excluded.main_numbers,
		bonus_numbers = excluded.bonus_numbers`,
}

// Store 开奖数据与预测存档
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open 打开数据库连接并自动建表
func Open(ctx context.Context, cfg *config.Database) (*Store, error) {
	var d dialect
	switch cfg.Driver {
	case "mysql":
		d = mysqlDialect
	case "sqlite", "":
		d = sqliteDialect
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(d.driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// 设置连接池参数
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	store := &Store{db: db, dialect: d}
	if err := store.createTablesIfNotExists(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	logger.Debugf("Database opened: driver=%s", d.driver)
	return store, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver 驱动名
func (s *Store) Driver() string {
	return s.dialect.driver
}

func (s *Store) createTablesIfNotExists(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveDraws 批量保存开奖数据，按日期 upsert，返回处理条数
func (s *Store) SaveDraws(ctx context.Context, history DrawHistory) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.upsertDraw)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare draw upsert: %v", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, d := range history {
		if _, err := stmt.ExecContext(ctx, d.Date, JoinNumbers(d.Main[:]), JoinNumbers(d.Bonus[:]), now); err != nil {
			return 0, fmt.Errorf("failed to save draw %s: %v", d.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit draws: %v", err)
	}

	logger.Debugf("Saved %d draws", len(history))
	return len(history), nil
}

// LoadHistory 按插入顺序读取全部开奖数据
func (s *Store) LoadHistory(ctx context.Context) (DrawHistory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT draw_date, main_numbers, bonus_numbers FROM draws ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %v", err)
	}
	defer rows.Close()

	var history DrawHistory
	for rows.Next() {
		var date, main, bonus string
		if err := rows.Scan(&date, &main, &bonus); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %v", err)
		}

		d, err := decodeDraw(date, main, bonus)
		if err != nil {
			return nil, err
		}
		history = append(history, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading draw rows: %v", err)
	}

	if len(history) == 0 {
		return nil, ErrEmptyDataset
	}
	return history, nil
}

func decodeDraw(date, main, bonus string) (Draw, error) {
	d := Draw{Date: date}

	mainNums, err := SplitNumbers(main)
	if err != nil || len(mainNums) != len(d.Main) {
		return Draw{}, fmt.Errorf("%w: stored draw %s has main numbers %q", ErrMalformedRecord, date, main)
	}
	bonusNums, err := SplitNumbers(bonus)
	if err != nil || len(bonusNums) != len(d.Bonus) {
		return Draw{}, fmt.Errorf("%w: stored draw %s has bonus numbers %q", ErrMalformedRecord, date, bonus)
	}

	copy(d.Main[:], mainNums)
	copy(d.Bonus[:], bonusNums)
	return d, nil
}

// SaveRun 保存一次预测运行及其全部策略结果
func (s *Store) SaveRun(ctx context.Context, run *PredictionRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO prediction_runs (run_id, seed, draw_count, latest_date, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.RunID, strconv.FormatUint(run.Seed, 10), run.DrawCount, run.LatestDate, run.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save prediction run: %v", err)
	}

	for _, p := range run.Predictions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO predictions (run_id, strategy, main_numbers, bonus_numbers) VALUES (?, ?, ?, ?)`,
			run.RunID, p.Strategy, JoinNumbers(p.Main), JoinNumbers(p.Bonus))
		if err != nil {
			return fmt.Errorf("failed to save prediction %s: %v", p.Strategy, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prediction run: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %v", err)
	}
	run.ID = id

	logger.Debugf("Saved prediction run %s with %d predictions", run.RunID, len(run.Predictions))
	return nil
}

// LatestRuns 获取最近的预测运行，新的在前
func (s *Store) LatestRuns(ctx context.Context, limit int) ([]PredictionRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, seed, draw_count, latest_date, created_at
		 FROM prediction_runs
		 ORDER BY id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction runs: %v", err)
	}

	var runs []PredictionRun
	for rows.Next() {
		var run PredictionRun
		var seed string
		var created int64
		if err := rows.Scan(&run.ID, &run.RunID, &seed, &run.DrawCount, &run.LatestDate, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan prediction run: %v", err)
		}
		if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			rows.Close()
			return nil, fmt.Errorf("invalid seed %q for run %s: %v", seed, run.RunID, err)
		}
		run.CreatedAt = time.Unix(created, 0)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error reading prediction run rows: %v", err)
	}
	rows.Close()

	for i := range runs {
		preds, err := s.predictionsForRun(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Predictions = preds
	}

	return runs, nil
}

func (s *Store) predictionsForRun(ctx context.Context, runID string) ([]PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, main_numbers, bonus_numbers FROM predictions WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %v", err)
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		var rec PredictionRecord
		var main, bonus string
		if err := rows.Scan(&rec.Strategy, &main, &bonus); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %v", err)
		}
		if rec.Main, err = SplitNumbers(main); err != nil {
			return nil, err
		}
		if rec.Bonus, err = SplitNumbers(bonus); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading prediction rows: %v", err)
	}

	return records, nil
}
