package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"ridepulse/internal/dataprocessing"
)

// Outcome is the result class of a hypothesis test.
type Outcome string

const (
	OutcomeInsufficientData Outcome = "insufficient_data"
	OutcomeSampleTooSmall   Outcome = "sample_too_small"
	OutcomeZeroVariance     Outcome = "zero_variance"
	OutcomeRejectNull       Outcome = "reject_null"
	OutcomeFailToReject     Outcome = "fail_to_reject"
)

// Tested reports whether a test statistic was computed.
func (o Outcome) Tested() bool {
	return o == OutcomeRejectNull || o == OutcomeFailToReject
}

// HypothesisConfig describes the two groups being compared.
type HypothesisConfig struct {
	Field  dataprocessing.Field
	GroupA []string
	GroupB []string
	LabelA string
	LabelB string
	Alpha  float64
}

// DefaultHypothesisConfig compares the ride distance of completed rides
// with that of cancelled and incomplete rides at the given significance
// level.
func DefaultHypothesisConfig(alpha float64) HypothesisConfig {
	return HypothesisConfig{
		Field:  dataprocessing.FieldRideDistance,
		GroupA: []string{dataprocessing.StatusCompleted},
		GroupB: []string{
			dataprocessing.StatusCancelledByCustomer,
			dataprocessing.StatusCancelledByDriver,
			dataprocessing.StatusIncomplete,
		},
		LabelA: "Completed",
		LabelB: "Cancelled",
		Alpha:  alpha,
	}
}

// GroupSummary describes one sample.
type GroupSummary struct {
	Label    string  `json:"label"`
	N        int     `json:"n"`
	Mean     Measure `json:"mean"`
	Variance Measure `json:"variance"`
}

// TestResult is the outcome of a Welch two-sample t-test. Statistic,
// PValue, DF and the confidence interval are only valid when the outcome is
// tested.
type TestResult struct {
	Field      dataprocessing.Field `json:"field"`
	Outcome    Outcome              `json:"outcome"`
	Conclusion string               `json:"conclusion"`
	Alpha      float64              `json:"alpha"`
	GroupA     GroupSummary         `json:"group_a"`
	GroupB     GroupSummary         `json:"group_b"`
	Statistic  Measure              `json:"t_statistic"`
	PValue     Measure              `json:"p_value"`
	DF         Measure              `json:"degrees_of_freedom"`
	Difference Measure              `json:"mean_difference"`
	CILow      Measure              `json:"ci_low"`
	CIHigh     Measure              `json:"ci_high"`
	Confidence float64              `json:"confidence"`
}

// WelchTest partitions t into the two configured status groups and
// compares the means of the configured field.
func WelchTest(t *dataprocessing.Table, cfg HypothesisConfig) (TestResult, error) {
	if !cfg.Field.Numeric() {
		return TestResult{}, fmt.Errorf("%w: %s", ErrNotNumeric, cfg.Field)
	}
	groupA, groupB := toSet(cfg.GroupA), toSet(cfg.GroupB)

	var a, b []float64
	t.Each(func(_ int, r *dataprocessing.Record) {
		v, ok := r.Number(cfg.Field)
		if !ok {
			return
		}
		status := r.Status()
		if _, in := groupA[status]; in {
			a = append(a, v)
		} else if _, in := groupB[status]; in {
			b = append(b, v)
		}
	})

	res := Compare(a, b, cfg.Alpha)
	res.Field = cfg.Field
	res.GroupA.Label = cfg.LabelA
	res.GroupB.Label = cfg.LabelB
	return res, nil
}

// Compare runs a two-tailed Welch t-test on two samples. The null
// hypothesis of equal means is rejected when the p-value is below alpha.
func Compare(a, b []float64, alpha float64) TestResult {
	res := TestResult{
		Alpha:      alpha,
		Confidence: 1 - alpha,
		GroupA:     summarize(a),
		GroupB:     summarize(b),
	}

	switch {
	case len(a) == 0 || len(b) == 0:
		res.Outcome = OutcomeInsufficientData
		res.Conclusion = "Insufficient data for the test. Adjust the filters."
		return res
	case len(a) < 2 || len(b) < 2:
		res.Outcome = OutcomeSampleTooSmall
		res.Conclusion = "Sample too small: each group needs at least two observations."
		return res
	}

	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)
	res.Difference = Of(ma - mb)
	if va == 0 && vb == 0 {
		res.Outcome = OutcomeZeroVariance
		res.Conclusion = "Both groups have zero variance; the test cannot be computed."
		return res
	}

	na, nb := float64(len(a)), float64(len(b))
	sa, sb := va/na, vb/nb
	se := math.Sqrt(sa + sb)
	tStat := (ma - mb) / se
	df := (sa + sb) * (sa + sb) / (sa*sa/(na-1) + sb*sb/(nb-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(tStat))
	margin := dist.Quantile(1-alpha/2) * se

	res.Statistic = Of(tStat)
	res.PValue = Of(math.Min(p, 1))
	res.DF = Of(df)
	res.CILow = Of(ma - mb - margin)
	res.CIHigh = Of(ma - mb + margin)

	if p < alpha {
		res.Outcome = OutcomeRejectNull
		res.Conclusion = fmt.Sprintf("Reject the null hypothesis: p-value %.4f is below %.2f, so the mean difference is statistically significant at %.0f%% confidence.", p, alpha, res.Confidence*100)
	} else {
		res.Outcome = OutcomeFailToReject
		res.Conclusion = fmt.Sprintf("Fail to reject the null hypothesis: p-value %.4f is not below %.2f, so there is no significant difference at %.0f%% confidence.", p, alpha, res.Confidence*100)
	}
	return res
}

func summarize(values []float64) GroupSummary {
	g := GroupSummary{N: len(values)}
	if len(values) > 0 {
		g.Mean = Of(stat.Mean(values, nil))
	}
	if len(values) > 1 {
		g.Variance = Of(stat.Variance(values, nil))
	}
	return g
}
