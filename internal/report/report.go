// Package report renders a dashboard as a markdown document and as HTML.
package report

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"absentee/domain/verdict"
	"absentee/internal/dashboard"
	"absentee/internal/errors"
)

const reportTemplate = `# Sick-day analysis of {{ escape .Filename }}

- Rows: {{ .Rows }}
- Age range: {{ .AgeRange }}
- Sick-days range: {{ .SickDaysRange }}
- Age threshold: {{ .Thresholds.AgeThreshold }}
- Sick-days threshold: {{ .Thresholds.SickDaysThreshold }}

## Hypotheses
{{ range $i, $h := .Hypotheses }}
### {{ inc $i }}. {{ title $h.Key }}

> {{ $h.Statement }}

**{{ status $h.Verdict.Status }}:** {{ $h.Verdict.Text }}
{{ end }}
## Distributions above {{ .Thresholds.SickDaysThreshold }} sick days
{{ range $c := comparisons . }}
### {{ $c.Title }}

| {{ $c.GroupLabel }} | n | min | Q1 | median | Q3 | max | outliers |
|---|---|---|---|---|---|---|---|
{{- range $s := $c.Segments }}
{{- if $s.Box }}
| {{ $s.Label }} | {{ $s.Count }} | {{ num $s.Box.Min }} | {{ num $s.Box.Q1 }} | {{ num $s.Box.Median }} | {{ num $s.Box.Q3 }} | {{ num $s.Box.Max }} | {{ nums $s.Box.Outliers }} |
{{- else }}
| {{ $s.Label }} | 0 | - | - | - | - | - | - |
{{- end }}
{{- end }}
{{ end }}`

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":    func(i int) int { return i + 1 },
	"escape": escapeMarkdown,
	"title": func(key string) string {
		switch key {
		case dashboard.HypothesisSex:
			return "Men versus women"
		case dashboard.HypothesisAge:
			return "Older versus younger employees"
		}
		return key
	},
	"status": statusLabel,
	"num":    formatNumber,
	"nums":   formatNumbers,
	"comparisons": func(d *dashboard.Dashboard) []dashboard.Comparison {
		return []dashboard.Comparison{d.SexComparison, d.AgeComparison}
	},
}).Parse(reportTemplate))

// Markdown renders d as a markdown report
func Markdown(d *dashboard.Dashboard) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return nil, errors.Wrap(err, "failed to render report")
	}
	return buf.Bytes(), nil
}

// HTML converts a markdown document into an HTML fragment. Raw HTML in the source is dropped.
func HTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse(md)

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML})
	return markdown.Render(doc, renderer)
}

// markdownEscaper backslash-escapes the characters that would turn user text into markup
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNumbers(values []float64) string {
	if len(values) == 0 {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}

func statusLabel(status verdict.VerdictStatus) string {
	switch status {
	case verdict.StatusSignificant:
		return "Significant"
	case verdict.StatusNotSignificant:
		return "Not significant"
	case verdict.StatusUndefined:
		return "Undefined"
	}
	return "Verdict"
}
