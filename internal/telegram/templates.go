package telegram

import (
	"fmt"
	"strings"

	"lotto-analyzer/internal/database"
	"lotto-analyzer/internal/predictor"
)

// formatPredictionBroadcast 格式化预测推送消息
func formatPredictionBroadcast(run *predictor.Run, latest database.Draw) string {
	var builder strings.Builder

	// 标题
	builder.WriteString("🎰 *Euro Millions Prediction*\n\n")

	// 最新开奖数据
	builder.WriteString("🎯 *Latest Result*\n")
	builder.WriteString(fmt.Sprintf("Date: `%s`\n", latest.Date))
	builder.WriteString(fmt.Sprintf("Numbers: `%s`\n", database.FormatNumbers(latest.Main[:])))
	builder.WriteString(fmt.Sprintf("Stars: `%s`\n\n", database.FormatNumbers(latest.Bonus[:])))

	// 推荐号码
	for _, rec := range []struct {
		icon  string
		label string
		name  string
	}{
		{"🥇", "Primary", run.Primary},
		{"🥈", "Secondary", run.Secondary},
	} {
		p, ok := run.Get(rec.name)
		if !ok {
			continue
		}
		builder.WriteString(fmt.Sprintf("%s *%s* (%s)\n", rec.icon, rec.label, p.Strategy))
		builder.WriteString(fmt.Sprintf("`%s`\n\n", p.Pick))
	}

	// 其余策略
	builder.WriteString("🔮 *All Methods*\n")
	for _, p := range run.Predictions {
		builder.WriteString(fmt.Sprintf("%s: `%s`\n", p.Strategy, p.Pick))
	}

	builder.WriteString(fmt.Sprintf("\nDraws analysed: `%d` | Seed: `%d`\n", run.DrawCount, run.Seed))
	builder.WriteString("\n💡 *Tips*: Lottery draws are random, predictions are for entertainment only")

	return builder.String()
}
