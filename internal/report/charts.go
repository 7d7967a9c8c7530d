package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"lotto-analyzer/internal/analysis"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig 图表尺寸与主题
type ChartConfig struct {
	Width  string
	Height string
	Theme  string
}

// DefaultChartConfig 默认图表配置
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "420px",
		Theme:  "light",
	}
}

// RenderCharts 输出交互式图表页：主号码与幸运星频率、和值区间、单双分布
func RenderCharts(w io.Writer, s *Snapshot, cfg ChartConfig) error {
	in := s.Inputs

	page := components.NewPage()
	page.SetPageTitle("Euro Millions Lottery Charts")
	page.AddCharts(
		frequencyChart(cfg, "Main Balls Frequency", in.Main),
		frequencyChart(cfg, "Lucky Stars Frequency", in.Bonus),
		sumBucketChart(cfg, in.Patterns),
		parityChart(cfg, in.Patterns),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func newBar(cfg ChartConfig, title, subtitle string, legend bool) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  cfg.Width,
			Height: cfg.Height,
			Theme:  cfg.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(legend),
		}),
	)
	return bar
}

func frequencyChart(cfg ChartConfig, title string, cs analysis.ColumnStats) *charts.Bar {
	nums := cs.Column.Domain().Numbers()
	labels := make([]string, len(nums))
	all := make([]opts.BarData, len(nums))
	recent := make([]opts.BarData, len(nums))
	for i, n := range nums {
		labels[i] = strconv.Itoa(n)
		all[i] = opts.BarData{Value: cs.Frequency.Get(n)}
		recent[i] = opts.BarData{Value: cs.Recent.Get(n)}
	}

	bar := newBar(cfg, title, fmt.Sprintf("%d draws, recent window %s", cs.Frequency.Draws, cs.Recent.Window), true)
	bar.SetXAxis(labels).
		AddSeries("All draws", all).
		AddSeries("Recent", recent).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)
	return bar
}

func sumBucketChart(cfg ChartConfig, p analysis.PatternSummary) *charts.Bar {
	// 图表按区间升序展示
	buckets := slices.Clone(p.SumBuckets)
	slices.SortFunc(buckets, func(a, b analysis.BucketCount) int {
		return a.Bucket.Low - b.Bucket.Low
	})

	labels := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Bucket.String()
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := newBar(cfg, "Main Ball Sum Ranges", fmt.Sprintf("%d draws", p.Draws), false)
	bar.SetXAxis(labels).AddSeries("Draws", data)
	return bar
}

func parityChart(cfg ChartConfig, p analysis.PatternSummary) *charts.Bar {
	labels := make([]string, len(analysis.Parities))
	data := make([]opts.BarData, len(analysis.Parities))
	for i, parity := range analysis.Parities {
		labels[i] = parityLabel(parity)
		data[i] = opts.BarData{Value: p.Parity[parity].Count}
	}

	bar := newBar(cfg, "Odd/Even Mix", fmt.Sprintf("%d draws", p.Draws), false)
	bar.SetXAxis(labels).AddSeries("Draws", data)
	return bar
}
