package report

import (
	"fmt"
	"io"
	"strings"

	"lotto-analyzer/internal/analysis"
	"lotto-analyzer/internal/database"
	"lotto-analyzer/internal/predictor"
)

// textWriter 记录第一个写错误，之后的写入全部跳过
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) section(title string) {
	rule := strings.Repeat("=", 50)
	t.printf("\n%s\n%s\n%s\n", rule, title, rule)
}

// WriteText 输出列对齐的文本报告
func WriteText(w io.Writer, s *Snapshot) error {
	t := &textWriter{w: w}
	in := s.Inputs

	t.printf("Euro Millions Lottery Analysis Report\n")
	t.printf("Generated on: %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	t.printf("Data: %d draws from %s to %s\n", len(in.History), s.FirstDate(), s.LatestDate())
	if s.Source != "" {
		t.printf("Source: %s\n", s.Source)
	}
	t.printf("Run: %s (seed %d)\n", s.Run.ID, s.Run.Seed)
	t.printf("%s\n", strings.Repeat("=", 80))

	writeBasic(t, in)
	writeGaps(t, in)
	writePatterns(t, in.Patterns)
	writeHotCold(t, in)
	writePredictions(t, s.Run)
	writeRecommendations(t, s.Run)
	if s.Backtest != nil {
		writeBacktest(t, s.Backtest)
	}
	writeDisclaimer(t)

	return t.err
}

func columnTitle(col database.Column) string {
	d := col.Domain()
	if col == database.BonusColumn {
		return fmt.Sprintf("Lucky Stars (%d-%d)", d.Min, d.Max)
	}
	return fmt.Sprintf("Main Balls (%d-%d)", d.Min, d.Max)
}

func writeCounts(t *textWriter, freq *analysis.FrequencyTable, counts []analysis.NumberCount) {
	for _, c := range counts {
		t.printf("  %2d: %3d times (%4.1f%%)\n", c.Number, c.Count, freq.Share(c.Number)*100)
	}
}

func writeBasic(t *textWriter, in *analysis.Inputs) {
	t.section("BASIC STATISTICS")

	for _, cs := range []analysis.ColumnStats{in.Main, in.Bonus} {
		freq := cs.Frequency
		t.printf("\n%s Frequency:\n", columnTitle(cs.Column))
		t.printf("Most frequent:\n")
		writeCounts(t, freq, freq.MostCommon(cs.TopN))
		t.printf("Least frequent:\n")
		writeCounts(t, freq, freq.LeastCommon(cs.TopN))
		if cold := freq.Cold(); len(cold) > 0 {
			t.printf("Never drawn: %v\n", cold)
		}

		u := freq.Uniformity()
		t.printf("Uniformity: chi-square %.2f, df %d, p-value %.4f\n", u.ChiSquare, u.DegreesOfFreedom, u.PValue)
	}
}

func writeGaps(t *textWriter, in *analysis.Inputs) {
	t.section("GAP ANALYSIS")
	t.printf("Numbers with longest current gaps (overdue):\n")

	for _, cs := range []analysis.ColumnStats{in.Main, in.Bonus} {
		t.printf("%s:\n", columnTitle(cs.Column))
		for _, g := range cs.Gaps.Overdue(cs.TopN) {
			if g.Gap == analysis.NeverSeen {
				t.printf("  %2d: never seen\n", g.Number)
				continue
			}
			t.printf("  %2d: %3d draws ago\n", g.Number, g.Gap)
		}
	}
}

func writePatterns(t *textWriter, p analysis.PatternSummary) {
	t.section("PATTERN ANALYSIS")
	t.printf("Pattern frequencies out of %d draws:\n", p.Draws)

	rows := []patternRow{
		{"Consecutive pairs", p.ConsecutivePairs},
		{"Consecutive triplets", p.ConsecutiveTriplets},
		{"Same decade concentration", p.Concentrated},
	}
	for _, parity := range analysis.Parities {
		rows = append(rows, patternRow{parityLabel(parity), p.Parity[parity]})
	}
	for _, row := range rows {
		t.printf("  %-26s %5d (%s%%)\n", row.label+":", row.count.Count, row.count.Percent.StringFixed(1))
	}

	t.printf("\nSum ranges:\n")
	for _, b := range p.SumBuckets {
		t.printf("  %-8s %5d (%s%%)\n", b.Bucket.String()+":", b.Count, b.Percent.StringFixed(1))
	}
}

type patternRow struct {
	label string
	count analysis.PatternCount
}

func parityLabel(p analysis.Parity) string {
	switch p {
	case analysis.AllOdd:
		return "All odd"
	case analysis.MajorityOdd:
		return "Majority odd"
	case analysis.MajorityEven:
		return "Majority even"
	default:
		return "All even"
	}
}

func writeHotCold(t *textWriter, in *analysis.Inputs) {
	t.section(fmt.Sprintf("HOT/COLD ANALYSIS (%s)", in.Main.Recent.Window))

	for _, cs := range []analysis.ColumnStats{in.Main, in.Bonus} {
		recent := cs.Recent
		t.printf("\nHOT %s:\n", columnTitle(cs.Column))
		writeCounts(t, recent, recent.MostCommon(cs.TopN))

		t.printf("COLD %s:\n", columnTitle(cs.Column))
		if cold := recent.Cold(); len(cold) > 0 {
			t.printf("  Numbers not drawn: %v\n", cold)
		}
		writeCounts(t, recent, recent.LeastCommon(cs.TopN))
	}
}

func writePredictions(t *textWriter, run *predictor.Run) {
	t.section("LOTTERY PREDICTIONS FOR NEXT DRAW")
	for _, p := range run.Predictions {
		t.printf("%-15s: %s\n", StrategyTitle(p.Strategy), p.Pick)
	}
}

func writeRecommendations(t *textWriter, run *predictor.Run) {
	t.section("RECOMMENDATIONS")
	for _, rec := range []struct {
		label string
		name  string
	}{
		{"PRIMARY", run.Primary},
		{"SECONDARY", run.Secondary},
	} {
		p, ok := run.Get(rec.name)
		if !ok {
			continue
		}
		t.printf("%s RECOMMENDATION (%s Method):\n", rec.label, StrategyTitle(p.Strategy))
		t.printf("  Main Numbers: %s\n", database.FormatNumbers(p.Main))
		t.printf("  Lucky Stars:  %s\n", database.FormatNumbers(p.Bonus))
	}
}

func writeBacktest(t *textWriter, b *predictor.BacktestReport) {
	t.section(fmt.Sprintf("BACKTEST (last %d draws)", b.Draws))
	t.printf("%-15s %8s %8s %6s %s\n", "Method", "Avg main", "Avg star", "Best", "Main hits 0/1/2/3/4/5")
	for _, s := range b.Strategies {
		hist := make([]string, len(s.Histogram))
		for i, n := range s.Histogram {
			hist[i] = fmt.Sprint(n)
		}
		t.printf("%-15s %8.2f %8.2f %4d+%d %s\n",
			StrategyTitle(s.Strategy), s.AverageMain, s.AverageBonus, s.BestMain, s.BestBonus, strings.Join(hist, "/"))
	}
	t.printf("Random baseline: %.2f main hits per draw\n", predictor.ExpectedMainHits())
}

func writeDisclaimer(t *textWriter) {
	t.section("DISCLAIMER")
	t.printf("Lottery draws are independent random events. Frequency, gap and pattern\n")
	t.printf("statistics describe the past only and carry no predictive power.\n")
	t.printf("These numbers are for entertainment purposes only.\n")
}
