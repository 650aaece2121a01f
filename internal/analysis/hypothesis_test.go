package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/dataprocessing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		outcome Outcome
	}{
		{"clear difference", []float64{10, 12, 11, 13, 12}, []float64{4, 5, 6, 4, 5}, OutcomeRejectNull},
		{"overlapping groups", []float64{5, 6, 7, 5, 6}, []float64{6, 5, 7, 6, 5}, OutcomeFailToReject},
		{"empty group", nil, []float64{1, 2, 3}, OutcomeInsufficientData},
		{"single observation", []float64{12}, []float64{4, 5, 6, 4, 5}, OutcomeSampleTooSmall},
		{"constant groups", []float64{3, 3, 3}, []float64{5, 5}, OutcomeZeroVariance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compare(tt.a, tt.b, 0.10)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.NotEmpty(t, res.Conclusion)
			assert.Equal(t, tt.outcome.Tested(), res.PValue.Valid)
			assert.Equal(t, tt.outcome.Tested(), res.Statistic.Valid)
		})
	}
}

func TestCompare_WelchStatistics(t *testing.T) {
	res := Compare([]float64{10, 12, 11, 13, 12}, []float64{4, 5, 6, 4, 5}, 0.10)
	require.Equal(t, OutcomeRejectNull, res.Outcome)

	assert.InDelta(t, 11.6, res.GroupA.Mean.Value, 1e-9)
	assert.InDelta(t, 4.8, res.GroupB.Mean.Value, 1e-9)
	assert.InDelta(t, 1.3, res.GroupA.Variance.Value, 1e-9)
	assert.InDelta(t, 0.7, res.GroupB.Variance.Value, 1e-9)
	assert.InDelta(t, 10.7517, res.Statistic.Value, 1e-4)
	assert.InDelta(t, 7.3394, res.DF.Value, 1e-4)
	assert.Less(t, res.PValue.Value, 0.10)
	assert.Less(t, res.PValue.Value, 0.001)
	assert.InDelta(t, 6.8, res.Difference.Value, 1e-9)
	assert.Less(t, res.CILow.Value, 6.8)
	assert.Greater(t, res.CIHigh.Value, 6.8)
	assert.Greater(t, res.CILow.Value, 0.0)
	assert.InDelta(t, 0.90, res.Confidence, 1e-9)
	assert.Contains(t, res.Conclusion, "Reject the null hypothesis")
}

func TestCompare_SampleTooSmallSkipsStatistics(t *testing.T) {
	res := Compare([]float64{12}, []float64{4, 5, 6, 4, 5}, 0.10)
	assert.Equal(t, OutcomeSampleTooSmall, res.Outcome)
	assert.Equal(t, 1, res.GroupA.N)
	assert.Equal(t, 5, res.GroupB.N)
	assert.False(t, res.DF.Valid)
	assert.False(t, res.Difference.Valid)
}

func TestWelchTest_PartitionsByStatus(t *testing.T) {
	var specs []rideSpec
	for _, d := range []float64{10, 12, 11, 13, 12} {
		specs = append(specs, rideSpec{status: dataprocessing.StatusCompleted, vehicle: "Auto", date: "2024-03-01", distance: d})
	}
	specs = append(specs,
		rideSpec{status: dataprocessing.StatusCancelledByCustomer, vehicle: "Auto", date: "2024-03-01", distance: 4, reason: "r"},
		rideSpec{status: dataprocessing.StatusCancelledByDriver, vehicle: "Auto", date: "2024-03-01", distance: 5, reason: "r"},
		rideSpec{status: dataprocessing.StatusIncomplete, vehicle: "Auto", date: "2024-03-01", distance: 6, reason: "r"},
		rideSpec{status: dataprocessing.StatusCancelledByCustomer, vehicle: "Auto", date: "2024-03-01", distance: 4, reason: "r"},
		rideSpec{status: dataprocessing.StatusCancelledByDriver, vehicle: "Auto", date: "2024-03-01", distance: 5, reason: "r"},
		rideSpec{status: dataprocessing.StatusNoDriverFound, vehicle: "Auto", date: "2024-03-01", distance: 500},
	)

	res, err := WelchTest(table(specs...), DefaultHypothesisConfig(0.10))
	require.NoError(t, err)
	assert.Equal(t, dataprocessing.FieldRideDistance, res.Field)
	assert.Equal(t, 5, res.GroupA.N)
	assert.Equal(t, 5, res.GroupB.N, "no driver found belongs to neither group")
	assert.Equal(t, "Completed", res.GroupA.Label)
	assert.Equal(t, OutcomeRejectNull, res.Outcome)

	cfg := DefaultHypothesisConfig(0.10)
	cfg.Field = dataprocessing.FieldPaymentMethod
	_, err = WelchTest(table(specs...), cfg)
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestWelchTest_EmptySelection(t *testing.T) {
	res, err := WelchTest(dataprocessing.NewTable(nil), DefaultHypothesisConfig(0.10))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInsufficientData, res.Outcome)
}
