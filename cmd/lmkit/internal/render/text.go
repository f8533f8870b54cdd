package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arloliu/lmkit"
	"github.com/arloliu/lmkit/anova"
	"github.com/arloliu/lmkit/correlation"
	"github.com/arloliu/lmkit/diagnostics"
	"github.com/arloliu/lmkit/predict"
)

// Report palette.
var (
	ColorAccent  = lipgloss.Color("#5FAFD7")
	ColorBorder  = lipgloss.Color("#4E6E81")
	ColorSuccess = lipgloss.Color("#5FD787")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#808080")
)

// Styles are the text styles of a report.
type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Number  lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles builds the styles for output written to w.
func NewStyles(w io.Writer) Styles {
	re := lipgloss.NewRenderer(w)

	return Styles{
		Title:   re.NewStyle().Bold(true).Foreground(ColorAccent),
		Bold:    re.NewStyle().Bold(true),
		Muted:   re.NewStyle().Foreground(ColorMuted),
		Success: re.NewStyle().Foreground(ColorSuccess),
		Warning: re.NewStyle().Foreground(ColorWarning),
		Error:   re.NewStyle().Foreground(ColorError).Bold(true),
		Header:  re.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1),
		Cell:    re.NewStyle().Padding(0, 1),
		Number:  re.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		Border:  re.NewStyle().Foreground(ColorBorder),
	}
}

// grid renders a bordered table. The first column is left-aligned, the rest right-aligned.
func (r *Renderer) grid(headers []string, rows [][]string) string {
	st := r.styles

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.Header
			case col == 0:
				return st.Cell
			default:
				return st.Number
			}
		}).
		String()
}

func (r *Renderer) header(sb *strings.Builder, title string, meta ...string) {
	sb.WriteString(r.styles.Title.Render(title))
	sb.WriteByte('\n')
	if len(meta) > 0 {
		sb.WriteString(r.styles.Muted.Render(strings.Join(meta, "  ")))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
}

func (r *Renderer) regression(rep *RegressionReport) string {
	var sb strings.Builder

	s := rep.Analysis.Summary
	r.header(&sb, fmt.Sprintf("Linear regression  %s ~ %s", s.Response, strings.Join(s.Predictors, " + ")),
		"session "+rep.Session.String(), "source "+rep.Source)
	r.regressionBody(&sb, rep.Analysis)

	if rep.Prediction != nil {
		sb.WriteByte('\n')
		r.predictions(&sb, "Predictions", rep.Prediction)
	}

	return sb.String()
}

func (r *Renderer) regressionBody(sb *strings.Builder, ra *lmkit.RegressionAnalysis) {
	s := ra.Summary

	fmt.Fprintf(sb, "train %d rows, test %d rows (fraction %.2f, seed %d)\n\n",
		len(ra.Split.Train), len(ra.Split.Test), ra.Split.Fraction, ra.Split.Seed)

	rows := make([][]string, len(s.Coefficients))
	for i, c := range s.Coefficients {
		rows[i] = []string{c.Term, num(c.Estimate), num(c.StdError), num(c.TValue), pval(c.PValue), stars(c.PValue)}
	}
	sb.WriteString(r.grid([]string{"Term", "Estimate", "Std. Error", "t value", "Pr(>|t|)", ""}, rows))
	sb.WriteByte('\n')
	sb.WriteString(r.styles.Muted.Render("codes: *** 0.001  ** 0.01  * 0.05  . 0.1"))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Residual standard error: %s on %d degrees of freedom\n", num(s.ResidualStdError), s.DfResidual)
	fmt.Fprintf(sb, "R-squared: %s   adjusted R-squared: %s   RMSE: %s\n",
		num(s.RSquared), num(s.AdjRSquared), num(s.RMSE))
	fmt.Fprintf(sb, "F-statistic: %s on %d and %d DF, p-value: %s\n\n",
		num(s.FStatistic), s.DfModel, s.DfResidual, pval(s.FPValue))

	r.diagnostics(sb, ra.Diagnostics.Results())

	vif := ra.Diagnostics.Multicollinearity
	if vif.Applicable && len(vif.VIF) > 0 {
		rows := make([][]string, len(vif.VIF))
		for i, e := range vif.VIF {
			flag := ""
			if e.Flagged {
				flag = r.styles.Warning.Render("high")
			}
			rows[i] = []string{e.Term, num(e.GVIF), strconv.Itoa(e.DF), num(e.Scaled), flag}
		}
		sb.WriteByte('\n')
		sb.WriteString(r.grid([]string{"Term", "GVIF", "Df", "GVIF^(1/Df)", ""}, rows))
		sb.WriteByte('\n')
	}

	switch {
	case ra.Evaluation != nil:
		sb.WriteByte('\n')
		r.accuracy(sb, "Held-out evaluation", ra.Evaluation)
	case ra.EvaluationError != "":
		sb.WriteByte('\n')
		sb.WriteString(r.styles.Error.Render("held-out evaluation failed: " + ra.EvaluationError))
		sb.WriteByte('\n')
	}
}

func (r *Renderer) accuracy(sb *strings.Builder, title string, res *predict.Result) {
	sb.WriteString(r.styles.Bold.Render(title))
	sb.WriteByte('\n')
	if res.Accuracy == nil {
		sb.WriteString(r.styles.Muted.Render("no observed response"))
		sb.WriteByte('\n')
		return
	}

	a := res.Accuracy
	fmt.Fprintf(sb, "n=%d  MSE=%s  RMSE=%s  MAE=%s\n", a.N, num(a.MSE), num(a.RMSE), num(a.MAE))
}

func (r *Renderer) predictions(sb *strings.Builder, title string, res *predict.Result) {
	sb.WriteString(r.styles.Bold.Render(fmt.Sprintf("%s (%s, %.0f%% intervals)", title, res.Response, res.Confidence*100)))
	sb.WriteByte('\n')

	rows := make([][]string, len(res.Predictions))
	for i, p := range res.Predictions {
		rows[i] = []string{
			strconv.Itoa(p.Row), num(p.Estimate), num(p.Lower), num(p.Upper),
			num(p.MeanLower), num(p.MeanUpper), num(p.Actual),
		}
	}
	sb.WriteString(r.grid([]string{"Row", "Estimate", "PI lower", "PI upper", "CI lower", "CI upper", "Actual"}, rows))
	sb.WriteByte('\n')

	if res.Accuracy != nil {
		r.accuracy(sb, "Accuracy", res)
	}
}

func (r *Renderer) diagnostics(sb *strings.Builder, results []diagnostics.Result) {
	sb.WriteString(r.styles.Bold.Render("Diagnostics"))
	sb.WriteByte('\n')

	rows := make([][]string, len(results))
	for i, d := range results {
		verdict := r.styles.Success.Render(d.Verdict)
		switch {
		case !d.Applicable:
			verdict = r.styles.Muted.Render(d.Verdict + ": " + d.Reason)
		case d.Rejected:
			verdict = r.styles.Warning.Render(d.Verdict)
		}
		rows[i] = []string{string(d.Test), d.Method, num(d.Statistic), pval(d.PValue), verdict}
	}
	sb.WriteString(r.grid([]string{"Check", "Method", "Statistic", "p-value", "Verdict"}, rows))
	sb.WriteByte('\n')
}

func (r *Renderer) anova(rep *ANOVAReport) string {
	var sb strings.Builder

	a := rep.Analysis
	r.header(&sb, fmt.Sprintf("One-way ANOVA  %s by %s", a.Spec.Response, a.Spec.Factor),
		"session "+rep.Session.String(), "source "+rep.Source)
	r.anovaBody(&sb, a)

	return sb.String()
}

func (r *Renderer) anovaBody(sb *strings.Builder, a *anova.Analysis) {
	groups := make([][]string, len(a.Groups))
	for i, g := range a.Groups {
		groups[i] = []string{g.Level, strconv.Itoa(g.N), num(g.Mean), num(g.SD)}
	}
	sb.WriteString(r.grid([]string{a.Spec.Factor, "N", "Mean", "SD"}, groups))
	sb.WriteString("\n\n")

	summary := [][]string{
		{a.Spec.Factor, strconv.Itoa(a.DfBetween), num(a.SSBetween), num(a.MSBetween), num(a.FStatistic), pval(a.PValue)},
		{"Residuals", strconv.Itoa(a.DfWithin), num(a.SSWithin), num(a.MSWithin), "", ""},
		{"Total", strconv.Itoa(a.DfBetween + a.DfWithin), num(a.SSTotal), "", "", ""},
	}
	sb.WriteString(r.grid([]string{"Source", "Df", "Sum Sq", "Mean Sq", "F value", "Pr(>F)"}, summary))
	sb.WriteString("\n\n")

	r.diagnostics(sb, []diagnostics.Result{a.Normality, a.Heteroscedasticity})
	sb.WriteByte('\n')

	if a.PostHoc == nil {
		sb.WriteString(r.styles.Error.Render("post-hoc comparison failed: " + a.PostHocError))
		sb.WriteByte('\n')
		return
	}

	ph := a.PostHoc
	sb.WriteString(r.styles.Bold.Render(fmt.Sprintf("%s, %.0f%% family-wise confidence", ph.Method, ph.Confidence*100)))
	sb.WriteByte('\n')

	rows := make([][]string, len(ph.Comparisons))
	for i, c := range ph.Comparisons {
		sig := ""
		if c.Significant {
			sig = r.styles.Warning.Render("yes")
		}
		rows[i] = []string{c.Name(), num(c.Diff), num(c.Lower), num(c.Upper), pval(c.PValue), sig}
	}
	sb.WriteString(r.grid([]string{"Comparison", "Diff", "Lower", "Upper", "p adj", "Significant"}, rows))
	sb.WriteByte('\n')
}

func (r *Renderer) correlation(rep *CorrelationReport) string {
	var sb strings.Builder

	r.header(&sb, "Pearson correlation", "session "+rep.Session.String(), "source "+rep.Source)
	r.correlationBody(&sb, rep.Matrix)

	return sb.String()
}

// strongestPairs is the number of pairs listed under the matrix.
const strongestPairs = 5

func (r *Renderer) correlationBody(sb *strings.Builder, m correlation.Table) {
	rows := make([][]string, len(m.Names))
	for i, name := range m.Names {
		rows[i] = make([]string, 0, len(m.Names)+1)
		rows[i] = append(rows[i], name)
		for _, v := range m.R[i] {
			rows[i] = append(rows[i], coef(v))
		}
	}
	sb.WriteString(r.grid(append([]string{""}, m.Names...), rows))
	sb.WriteString("\n\n")

	sb.WriteString(r.styles.Bold.Render("Strongest pairs"))
	sb.WriteByte('\n')
	for _, p := range m.Pairs[:min(strongestPairs, len(m.Pairs))] {
		fmt.Fprintf(sb, "  %-24s %6s  (n=%d)\n", p.A+" ~ "+p.B, coef(p.R), p.N)
	}
}

func (r *Renderer) snapshot(rep *SnapshotReport) string {
	var sb strings.Builder

	r.header(&sb, "Snapshot written", rep.Output)
	fmt.Fprintf(&sb, "source:      %s\n", rep.Source)
	fmt.Fprintf(&sb, "rows:        %d\n", rep.Rows)
	fmt.Fprintf(&sb, "columns:     %d\n", rep.Columns)
	fmt.Fprintf(&sb, "compression: %s\n", rep.Compression)
	fmt.Fprintf(&sb, "size:        %d -> %d bytes (ratio %.3f)\n", rep.BodySize, rep.PayloadSize, rep.Ratio)
	fmt.Fprintf(&sb, "checksum:    %016x\n", rep.Checksum)

	return sb.String()
}

func (r *Renderer) batch(rep *BatchReport) string {
	var sb strings.Builder

	r.header(&sb, fmt.Sprintf("Batch run  %d jobs", len(rep.Jobs)),
		"session "+rep.Session.String(), "source "+rep.Source)

	for i, j := range rep.Jobs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(r.styles.Title.Render(fmt.Sprintf("[%s] %s", j.Kind, j.Name)))
		sb.WriteString("\n\n")

		switch {
		case j.Error != "":
			sb.WriteString(r.styles.Error.Render("failed: " + j.Error))
			sb.WriteByte('\n')
		case j.Regression != nil:
			r.regressionBody(&sb, j.Regression)
		case j.ANOVA != nil:
			r.anovaBody(&sb, j.ANOVA)
		case j.Correlation != nil:
			r.correlationBody(&sb, *j.Correlation)
		}
	}

	if n := rep.Failed(); n > 0 {
		sb.WriteString("\n")
		sb.WriteString(r.styles.Error.Render(fmt.Sprintf("%d of %d jobs failed", n, len(rep.Jobs))))
		sb.WriteByte('\n')
	}

	return sb.String()
}

func num(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NA"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == 0:
		return "0"
	}

	if a := math.Abs(v); a < 1e-4 || a >= 1e9 {
		return strconv.FormatFloat(v, 'e', 3, 64)
	}

	return strconv.FormatFloat(v, 'f', 4, 64)
}

func coef(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}

	return strconv.FormatFloat(v, 'f', correlation.Decimals, 64)
}

func pval(p float64) string {
	switch {
	case math.IsNaN(p):
		return "NA"
	case p < 1e-4:
		return "<1e-4"
	default:
		return strconv.FormatFloat(p, 'f', 4, 64)
	}
}

func stars(p float64) string {
	switch {
	case math.IsNaN(p):
		return ""
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	case p < 0.1:
		return "."
	default:
		return ""
	}
}
