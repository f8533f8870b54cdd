package render

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/lmkit"
	"github.com/arloliu/lmkit/dataset"
)

func houses(t *testing.T) *dataset.Dataset {
	t.Helper()

	n := 30
	area := make([]float64, n)
	price := make([]float64, n)
	district := make([]string, n)
	for i := range n {
		area[i] = float64(50 + 3*i)
		district[i] = []string{"north", "south", "east"}[i%3]
		price[i] = 20 + 1.5*area[i] + float64(i%3)*10 + float64((i*7)%5) - 2
	}

	ds, err := dataset.New(
		dataset.NewNumeric("price", price),
		dataset.NewNumeric("area", area),
		dataset.NewCategorical("district", district),
	)
	require.NoError(t, err)

	return ds
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"text": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestSanitize(t *testing.T) {
	type inner struct {
		V float64 `json:"v"`
	}
	type sample struct {
		A      float64            `json:"a"`
		B      float64            `json:"b"`
		Skip   string             `json:"-"`
		Empty  string             `json:"empty,omitempty"`
		Plain  int                // no tag
		Inner  *inner             `json:"inner"`
		Nil    *inner             `json:"nil"`
		Values []float64          `json:"values"`
		Map    map[string]float64 `json:"map"`
		ID     uuid.UUID          `json:"id"`
		hidden int
	}

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	v := sample{
		A:      1.5,
		B:      math.NaN(),
		Skip:   "x",
		Plain:  3,
		Inner:  &inner{V: math.Inf(1)},
		Values: []float64{1, math.Inf(-1)},
		Map:    map[string]float64{"k": math.NaN()},
		ID:     id,
		hidden: 1,
	}

	data, err := json.Marshal(sanitize(v))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"a": 1.5, "b": null, "Plain": 3, "inner": {"v": null}, "nil": null,
		"values": [1, null], "map": {"k": null}, "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	}`, string(data))

	// members keep declaration order
	assert.Regexp(t, `^\{"a":1.5,"b":null,"Plain":3,`, string(data))
}

func TestRenderRegression(t *testing.T) {
	ds := houses(t)
	ra, err := lmkit.FitRegression(ds, "price", []string{"area", "district"}, 0.7, 42)
	require.NoError(t, err)

	pred, err := lmkit.Predict(ra.Model, ds, 0.95)
	require.NoError(t, err)

	rep := &RegressionReport{Session: uuid.New(), Source: "houses.csv", Analysis: ra, Prediction: pred}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, FormatText).Render(rep))

		out := buf.String()
		assert.Contains(t, out, "price ~ area + district")
		assert.Contains(t, out, "(Intercept)")
		assert.Contains(t, out, "districtsouth")
		assert.Contains(t, out, "Durbin-Watson")
		assert.Contains(t, out, "Held-out evaluation")
		assert.Contains(t, out, "Predictions (price, 95% intervals)")
		assert.NotContains(t, out, "\x1b[", "buffer output is plain text")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, FormatJSON).Render(rep))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "houses.csv", got["source"])

		analysis := got["analysis"].(map[string]any)
		assert.NotContains(t, analysis, "Model")
		summary := analysis["summary"].(map[string]any)
		assert.Len(t, summary["coefficients"], 4)

		prediction := got["prediction"].(map[string]any)
		assert.Len(t, prediction["predictions"], ds.Rows())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, FormatYAML).Render(rep))

		var got map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, rep.Session.String(), got["session"])
	})
}

func TestRenderANOVA(t *testing.T) {
	a, err := lmkit.FitANOVA(houses(t), "district", "price")
	require.NoError(t, err)

	rep := &ANOVAReport{Session: uuid.New(), Source: "houses.csv", Analysis: a}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Render(rep))

	out := buf.String()
	assert.Contains(t, out, "price by district")
	assert.Contains(t, out, "Residuals")
	assert.Contains(t, out, "Tukey HSD, 95% family-wise confidence")
	assert.Contains(t, out, "south-north")

	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Render(rep))
	assert.Contains(t, buf.String(), `"post_hoc"`)
}

func TestRenderRegressionEvaluationFailure(t *testing.T) {
	ra, err := lmkit.FitRegression(houses(t), "price", []string{"area"}, 0.7, 42)
	require.NoError(t, err)

	failed := *ra
	failed.Evaluation = nil
	failed.EvaluationError = `evaluate held-out rows: schema mismatch: predictor "district" has unseen level "west"`
	rep := &RegressionReport{Session: uuid.New(), Source: "houses.csv", Analysis: &failed}

	var text bytes.Buffer
	require.NoError(t, New(&text, FormatText).Render(rep))
	assert.Contains(t, text.String(), "held-out evaluation failed: ")
	assert.NotContains(t, text.String(), "Held-out evaluation\n")
	assert.Contains(t, text.String(), "Durbin-Watson")

	var js bytes.Buffer
	require.NoError(t, New(&js, FormatJSON).Render(rep))
	var got map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &got))
	analysis := got["analysis"].(map[string]any)
	assert.Contains(t, analysis["evaluation_error"], "unseen level")
	assert.NotContains(t, analysis, "evaluation")
}

func TestRenderANOVAPostHocFailure(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewNumeric("y", []float64{1, 1, 2, 2}),
		dataset.NewCategorical("g", []string{"a", "a", "b", "b"}),
	)
	require.NoError(t, err)

	a, err := lmkit.FitANOVA(ds, "g", "y")
	require.NoError(t, err)
	require.Nil(t, a.PostHoc)

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Render(&ANOVAReport{Analysis: a}))
	assert.Contains(t, buf.String(), "post-hoc comparison failed")
	assert.Contains(t, buf.String(), "Inf")

	// F is +Inf: JSON carries null
	buf.Reset()
	require.NoError(t, New(&buf, FormatJSON).Render(&ANOVAReport{Analysis: a}))
	assert.Contains(t, buf.String(), `"f_statistic": null`)
}

func TestRenderCorrelation(t *testing.T) {
	m, err := lmkit.Correlate(houses(t))
	require.NoError(t, err)

	rep := &CorrelationReport{Session: uuid.New(), Source: "houses.csv", Matrix: m.Table()}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Render(rep))
	assert.Contains(t, buf.String(), "Strongest pairs")
	assert.Contains(t, buf.String(), "price ~ area")
	assert.Contains(t, buf.String(), "1.00")
}

func TestRenderBatch(t *testing.T) {
	ds := houses(t)
	ra, err := lmkit.FitRegression(ds, "price", []string{"area"}, 1, 1)
	require.NoError(t, err)
	m, err := lmkit.Correlate(ds)
	require.NoError(t, err)
	tbl := m.Table()

	rep := &BatchReport{
		Session: uuid.New(),
		Source:  "houses.csv",
		Jobs: []JobReport{
			{Name: "fit", Kind: "regression", Regression: ra},
			{Name: "corr", Kind: "correlation", Correlation: &tbl},
			{Name: "bad", Kind: "anova", Error: "invalid spec: factor \"zip\" not found"},
		},
	}
	assert.Equal(t, 1, rep.Failed())

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatText).Render(rep))

	out := buf.String()
	assert.Contains(t, out, "[regression] fit")
	assert.Contains(t, out, "[correlation] corr")
	assert.Contains(t, out, "failed: invalid spec")
	assert.Contains(t, out, "1 of 3 jobs failed")
}

func TestNum(t *testing.T) {
	assert.Equal(t, "NA", num(math.NaN()))
	assert.Equal(t, "Inf", num(math.Inf(1)))
	assert.Equal(t, "0", num(0))
	assert.Equal(t, "1.5000", num(1.5))
	assert.Equal(t, "1.230e-05", num(0.0000123))
	assert.Equal(t, "<1e-4", pval(1e-9))
	assert.Equal(t, "***", stars(1e-9))
	assert.Equal(t, "", stars(0.5))
}
