package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ridepulse/internal/dataprocessing"
)

// Count returns the number of rows in t.
func Count(t *dataprocessing.Table) int { return t.Len() }

// CountStatus returns the number of rows whose booking status is status.
func CountStatus(t *dataprocessing.Table, status string) int {
	n := 0
	t.Each(func(_ int, r *dataprocessing.Record) {
		if r.Status() == status {
			n++
		}
	})
	return n
}

// StatusShare returns the percentage of rows with the given status.
func StatusShare(t *dataprocessing.Table, status string) Measure {
	if t.Len() == 0 {
		return NA
	}
	return Of(float64(CountStatus(t, status)) / float64(t.Len()) * 100)
}

// CompletionRate returns the percentage of completed bookings.
func CompletionRate(t *dataprocessing.Table) Measure {
	return StatusShare(t, dataprocessing.StatusCompleted)
}

func numbers(t *dataprocessing.Table, f dataprocessing.Field) ([]float64, error) {
	if !f.Numeric() {
		return nil, fmt.Errorf("%w: %s", ErrNotNumeric, f)
	}
	return t.Numbers(f), nil
}

// Sum returns the total of a numeric column.
func Sum(t *dataprocessing.Table, f dataprocessing.Field) (Measure, error) {
	values, err := numbers(t, f)
	if err != nil || len(values) == 0 {
		return NA, err
	}
	return Of(floats.Sum(values)), nil
}

// Mean returns the arithmetic mean of a numeric column.
func Mean(t *dataprocessing.Table, f dataprocessing.Field) (Measure, error) {
	values, err := numbers(t, f)
	if err != nil || len(values) == 0 {
		return NA, err
	}
	return Of(stat.Mean(values, nil)), nil
}

// StdDev returns the sample standard deviation of a numeric column. At least
// two values are required.
func StdDev(t *dataprocessing.Table, f dataprocessing.Field) (Measure, error) {
	values, err := numbers(t, f)
	if err != nil || len(values) < 2 {
		return NA, err
	}
	return Of(stat.StdDev(values, nil)), nil
}

// Correlation returns the Pearson correlation between two numeric columns
// over the rows where both are present.
func Correlation(t *dataprocessing.Table, x, y dataprocessing.Field) (Measure, error) {
	if !x.Numeric() {
		return NA, fmt.Errorf("%w: %s", ErrNotNumeric, x)
	}
	if !y.Numeric() {
		return NA, fmt.Errorf("%w: %s", ErrNotNumeric, y)
	}

	xs := make([]float64, 0, t.Len())
	ys := make([]float64, 0, t.Len())
	t.Each(func(_ int, r *dataprocessing.Record) {
		xv, xok := r.Number(x)
		yv, yok := r.Number(y)
		if xok && yok {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	})
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return NA, nil
	}
	return Of(stat.Correlation(xs, ys, nil)), nil
}

// GroupCount is the number of rows sharing a key.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CountBy counts rows per distinct value of a categorical column, ordered
// by count descending and then key ascending.
func CountBy(t *dataprocessing.Table, f dataprocessing.Field) ([]GroupCount, error) {
	if !f.Categorical() {
		return nil, fmt.Errorf("%w: %s", ErrNotCategorical, f)
	}
	counts := make(map[string]int)
	t.Each(func(_ int, r *dataprocessing.Record) {
		if v, ok := r.Text(f); ok {
			counts[v]++
		}
	})
	return sortedCounts(counts), nil
}

// TopN returns the n most frequent values of a categorical column.
func TopN(t *dataprocessing.Table, f dataprocessing.Field, n int) ([]GroupCount, error) {
	counts, err := CountBy(t, f)
	if err != nil {
		return nil, err
	}
	if n >= 0 && n < len(counts) {
		counts = counts[:n]
	}
	return counts, nil
}

// CancellationReasons counts the values of a reason column over the rows
// whose status matches that column: customer reasons for customer
// cancellations, driver reasons for driver cancellations and incomplete
// reasons for incomplete rides.
func CancellationReasons(t *dataprocessing.Table, f dataprocessing.Field) ([]GroupCount, error) {
	var status string
	switch f {
	case dataprocessing.FieldCustomerCancelReason:
		status = dataprocessing.StatusCancelledByCustomer
	case dataprocessing.FieldDriverCancelReason:
		status = dataprocessing.StatusCancelledByDriver
	case dataprocessing.FieldIncompleteReason:
		status = dataprocessing.StatusIncomplete
	default:
		return nil, fmt.Errorf("%w: %s is not a cancellation reason", ErrNotCategorical, f)
	}
	subset := t.Select(func(r *dataprocessing.Record) bool { return r.Status() == status })
	return CountBy(subset, f)
}

func sortedCounts(counts map[string]int) []GroupCount {
	out := make([]GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// HourCount is the number of bookings in one hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// CountByHour counts rows per hour of day in ascending hour order. Hours
// with no bookings are omitted.
func CountByHour(t *dataprocessing.Table) []HourCount {
	var counts [24]int
	seen := false
	t.Each(func(_ int, r *dataprocessing.Record) {
		if r.Hour.Valid && r.Hour.Int32 >= 0 && r.Hour.Int32 < 24 {
			counts[r.Hour.Int32]++
			seen = true
		}
	})
	if !seen {
		return nil
	}
	var out []HourCount
	for h, n := range counts {
		if n > 0 {
			out = append(out, HourCount{Hour: h, Count: n})
		}
	}
	return out
}

// DayCount is the number of bookings on one calendar date.
type DayCount struct {
	Date  time.Time `json:"-"`
	Day   string    `json:"date"`
	Count int       `json:"count"`
}

// CountByDay counts rows per calendar date in ascending date order.
func CountByDay(t *dataprocessing.Table) []DayCount {
	counts := make(map[time.Time]int)
	t.Each(func(_ int, r *dataprocessing.Record) {
		if day, ok := r.Day(); ok {
			counts[day]++
		}
	})
	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Date: day, Day: day.Format(dataprocessing.DateLayout), Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Histogram is a binned distribution of a numeric column. Edges has one
// more entry than Counts; bin i covers [Edges[i], Edges[i+1]) and the last
// bin is closed on the right.
type Histogram struct {
	Column dataprocessing.Field `json:"column"`
	Edges  []float64            `json:"edges"`
	Counts []int                `json:"counts"`
}

// NewHistogram bins a numeric column into the given number of equal-width
// bins. An empty column gives an empty histogram; a constant column gives a
// single bin.
func NewHistogram(t *dataprocessing.Table, f dataprocessing.Field, bins int) (Histogram, error) {
	values, err := numbers(t, f)
	if err != nil {
		return Histogram{}, err
	}
	h := Histogram{Column: f}
	if len(values) == 0 {
		return h, nil
	}
	if bins < 1 {
		bins = 1
	}

	sort.Float64s(values)
	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		h.Edges = []float64{lo, hi}
		h.Counts = []int{len(values)}
		return h, nil
	}

	h.Edges = floats.Span(make([]float64, bins+1), lo, hi)
	dividers := append([]float64(nil), h.Edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)
	h.Counts = make([]int, bins)
	for i, c := range counts {
		h.Counts[i] = int(c)
	}
	return h, nil
}

// BoxStats summarises a numeric column for a box plot. Whiskers extend to
// the most extreme values within 1.5 IQR of the quartiles; values beyond
// them are outliers.
type BoxStats struct {
	Column       dataprocessing.Field `json:"column"`
	N            int                  `json:"n"`
	Min          float64              `json:"min"`
	Q1           float64              `json:"q1"`
	Median       float64              `json:"median"`
	Q3           float64              `json:"q3"`
	Max          float64              `json:"max"`
	LowerWhisker float64              `json:"lower_whisker"`
	UpperWhisker float64              `json:"upper_whisker"`
	Outliers     []float64            `json:"outliers"`
}

// linearQuantile interpolates between the order statistics around rank
// p*(n-1) of sorted. This is the default quartile method of the dashboard's
// box plots; gonum's LinInterp ranks on p*n and gives narrower boxes on
// small samples.
func linearQuantile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// NewBoxStats computes box plot statistics. ok is false for an empty column.
func NewBoxStats(t *dataprocessing.Table, f dataprocessing.Field) (box BoxStats, ok bool, err error) {
	values, err := numbers(t, f)
	if err != nil || len(values) == 0 {
		return BoxStats{}, false, err
	}
	sort.Float64s(values)

	box = BoxStats{
		Column: f,
		N:      len(values),
		Min:    values[0],
		Q1:     linearQuantile(values, 0.25),
		Median: dataprocessing.Median(values),
		Q3:     linearQuantile(values, 0.75),
		Max:    values[len(values)-1],
	}

	iqr := box.Q3 - box.Q1
	lowFence, highFence := box.Q1-1.5*iqr, box.Q3+1.5*iqr
	box.LowerWhisker, box.UpperWhisker = box.Max, box.Min
	box.Outliers = []float64{}
	for _, v := range values {
		if v < lowFence || v > highFence {
			box.Outliers = append(box.Outliers, v)
			continue
		}
		box.LowerWhisker = math.Min(box.LowerWhisker, v)
		box.UpperWhisker = math.Max(box.UpperWhisker, v)
	}
	return box, true, nil
}
