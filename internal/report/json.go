package report

import (
	"io"
	"time"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/database"
	"lotto-analyzer/internal/predictor"

	"github.com/goccy/go-json"
)

type columnJSON struct {
	MostCommon []analysis.NumberCount  `json:"most_common"`
	Hot        []analysis.NumberCount  `json:"hot"`
	Cold       []int                   `json:"cold"`
	Overdue    []analysis.NumberGap    `json:"overdue"`
	Uniformity analysis.UniformityTest `json:"uniformity"`
}

type snapshotJSON struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Source      string                    `json:"source,omitempty"`
	Draws       int                       `json:"draws"`
	FirstDate   string                    `json:"first_date"`
	Latest      database.Draw             `json:"latest"`
	Main        columnJSON                `json:"main"`
	Bonus       columnJSON                `json:"bonus"`
	Patterns    analysis.PatternSummary   `json:"patterns"`
	Run         *predictor.Run            `json:"run"`
	Backtest    *predictor.BacktestReport `json:"backtest,omitempty"`
}

// WriteJSON 输出机器可读的快照
func WriteJSON(w io.Writer, s *Snapshot) error {
	in := s.Inputs
	out := snapshotJSON{
		GeneratedAt: s.GeneratedAt,
		Source:      s.Source,
		Draws:       len(in.History),
		FirstDate:   s.FirstDate(),
		Latest:      in.Latest(),
		Main:        newColumnJSON(in.Main),
		Bonus:       newColumnJSON(in.Bonus),
		Patterns:    in.Patterns,
		Run:         s.Run,
		Backtest:    s.Backtest,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newColumnJSON(cs analysis.ColumnStats) columnJSON {
	return columnJSON{
		MostCommon: cs.Frequency.MostCommon(cs.TopN),
		Hot:        cs.Recent.MostCommon(cs.TopN),
		Cold:       cs.Recent.Cold(),
		Overdue:    cs.Gaps.Overdue(cs.TopN),
		Uniformity: cs.Frequency.Uniformity(),
	}
}
