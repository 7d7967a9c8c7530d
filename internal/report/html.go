package report

import (
	"html/template"
	"io"

	"lotto-analyzer/internal/database"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Euro Millions Lottery Analysis</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f4f6fb; color: #222; }
header { background: #1f3c88; color: #fff; padding: 24px; }
main { max-width: 1100px; margin: 0 auto; padding: 24px; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 16px; }
.card { background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.card .value { font-size: 1.8em; font-weight: bold; }
.ball { display: inline-block; width: 36px; height: 36px; line-height: 36px; border-radius: 50%; text-align: center; margin: 2px; background: #1f3c88; color: #fff; }
.star { background: #f5b400; color: #222; }
pre { background: #fff; padding: 16px; border-radius: 8px; overflow-x: auto; font-size: 13px; }
footer { color: #777; font-size: .9em; padding: 24px; text-align: center; }
</style>
</head>
<body>
<header>
<h1>Euro Millions Lottery Analysis</h1>
<p>Generated on {{.GeneratedAt}}</p>
</header>
<main>
<section class="cards">
  <div class="card"><div>Total draws</div><div class="value">{{.TotalDraws}}</div></div>
  <div class="card"><div>Prediction methods</div><div class="value">{{.Methods}}</div></div>
  <div class="card"><div>Date range</div><div class="value">{{.FirstDate}} &ndash; {{.LatestDate}}</div></div>
  <div class="card"><div>Number ranges</div><div class="value">{{.MainRange}} + {{.BonusRange}}</div></div>
</section>
<section class="card" style="margin-top:16px">
  <h2>Latest draw ({{.Latest.Date}})</h2>
  {{range .LatestMain}}<span class="ball">{{.}}</span>{{end}}
  {{range .LatestBonus}}<span class="ball star">{{.}}</span>{{end}}
</section>
{{if .Recommendations}}
<section class="cards" style="margin-top:16px">
  {{range .Recommendations}}
  <div class="card">
    <h3>{{.Label}}: {{.Title}}</h3>
    {{range .Main}}<span class="ball">{{.}}</span>{{end}}
    {{range .Bonus}}<span class="ball star">{{.}}</span>{{end}}
  </div>
  {{end}}
</section>
{{end}}
{{if .ChartsHref}}<p><a href="{{.ChartsHref}}">Interactive charts</a></p>{{end}}
<h2>Full analysis</h2>
<pre>{{.Text}}</pre>
</main>
<footer>For entertainment purposes only. Lottery draws are independent random events.</footer>
</body>
</html>
`))

type recommendationView struct {
	Label string
	Title string
	Main  []string
	Bonus []string
}

type pageView struct {
	GeneratedAt     string
	TotalDraws      string
	Methods         int
	FirstDate       string
	LatestDate      string
	MainRange       string
	BonusRange      string
	Latest          database.Draw
	LatestMain      []string
	LatestBonus     []string
	Recommendations []recommendationView
	ChartsHref      string
	Text            string
}

// WriteHTML 输出静态页面：统计卡片、最新一期、推荐号码和完整文本报告
// chartsHref 为空时不显示图表链接
func WriteHTML(w io.Writer, s *Snapshot, text, chartsHref string) error {
	p := message.NewPrinter(language.English)
	latest := s.Inputs.Latest()
	main, bonus := database.MainDomain, database.BonusDomain

	view := pageView{
		GeneratedAt: s.GeneratedAt.Format("2006-01-02 15:04:05"),
		TotalDraws:  p.Sprintf("%d", len(s.Inputs.History)),
		Methods:     len(s.Run.Predictions),
		FirstDate:   s.FirstDate(),
		LatestDate:  s.LatestDate(),
		MainRange:   p.Sprintf("%d/%d", main.Picks, main.Max),
		BonusRange:  p.Sprintf("%d/%d", bonus.Picks, bonus.Max),
		Latest:      latest,
		LatestMain:  twoDigits(latest.Main[:]),
		LatestBonus: twoDigits(latest.Bonus[:]),
		ChartsHref:  chartsHref,
		Text:        text,
	}

	for _, rec := range []struct{ label, name string }{
		{"Primary", s.Run.Primary},
		{"Secondary", s.Run.Secondary},
	} {
		pred, ok := s.Run.Get(rec.name)
		if !ok {
			continue
		}
		view.Recommendations = append(view.Recommendations, recommendationView{
			Label: rec.label,
			Title: StrategyTitle(pred.Strategy),
			Main:  twoDigits(pred.Main),
			Bonus: twoDigits(pred.Bonus),
		})
	}

	return pageTemplate.Execute(w, view)
}

func twoDigits(nums []int) []string {
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = database.FormatNumbers([]int{n})
	}
	return out
}
