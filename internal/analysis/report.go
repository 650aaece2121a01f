package analysis

import (
	"fmt"
	"sort"
	"time"

	"ridepulse/internal/dataprocessing"
)

// Section wraps one part of a report. A section that could not be computed
// carries a message instead of data and does not affect its siblings.
type Section[T any] struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
	Data      *T     `json:"data,omitempty"`
}

// Compute runs fn and captures its result, error or panic as a section.
func Compute[T any](fn func() (T, error)) (s Section[T]) {
	defer func() {
		if r := recover(); r != nil {
			s = Section[T]{Message: fmt.Sprintf("section failed: %v", r)}
		}
	}()
	v, err := fn()
	if err != nil {
		return Section[T]{Message: err.Error()}
	}
	return Section[T]{Available: true, Data: &v}
}

// KPIs are the headline numbers of a selection.
type KPIs struct {
	TotalBookings       int     `json:"total_bookings"`
	Completed           int     `json:"completed"`
	CancelledByCustomer int     `json:"cancelled_by_customer"`
	CancelledByDriver   int     `json:"cancelled_by_driver"`
	Incomplete          int     `json:"incomplete"`
	NoDriverFound       int     `json:"no_driver_found"`
	CompletionRate      Measure `json:"completion_rate"`
	AvgBookingValue     Measure `json:"avg_booking_value"`
	AvgRideDistance     Measure `json:"avg_ride_distance"`
	AvgDriverRating     Measure `json:"avg_driver_rating"`
	AvgCustomerRating   Measure `json:"avg_customer_rating"`
	Revenue             Measure `json:"revenue"`
}

// ComputeKPIs summarises t. An empty table yields zero counts and
// not-applicable rates and means.
func ComputeKPIs(t *dataprocessing.Table) KPIs {
	k := KPIs{
		TotalBookings:       Count(t),
		Completed:           CountStatus(t, dataprocessing.StatusCompleted),
		CancelledByCustomer: CountStatus(t, dataprocessing.StatusCancelledByCustomer),
		CancelledByDriver:   CountStatus(t, dataprocessing.StatusCancelledByDriver),
		Incomplete:          CountStatus(t, dataprocessing.StatusIncomplete),
		NoDriverFound:       CountStatus(t, dataprocessing.StatusNoDriverFound),
		CompletionRate:      CompletionRate(t),
	}
	k.AvgBookingValue, _ = Mean(t, dataprocessing.FieldBookingValue)
	k.AvgRideDistance, _ = Mean(t, dataprocessing.FieldRideDistance)
	k.AvgDriverRating, _ = Mean(t, dataprocessing.FieldDriverRating)
	k.AvgCustomerRating, _ = Mean(t, dataprocessing.FieldCustomerRating)

	completed := t.Select(func(r *dataprocessing.Record) bool { return r.Status() == dataprocessing.StatusCompleted })
	k.Revenue, _ = Sum(completed, dataprocessing.FieldBookingValue)
	return k
}

// Breakdowns are the grouped counts behind the dashboard bar and pie
// charts.
type Breakdowns struct {
	Status                []GroupCount `json:"status"`
	Vehicle               []GroupCount `json:"vehicle"`
	Payment               []GroupCount `json:"payment"`
	TopPickup             []GroupCount `json:"top_pickup"`
	CustomerCancelReasons []GroupCount `json:"customer_cancel_reasons"`
	DriverCancelReasons   []GroupCount `json:"driver_cancel_reasons"`
	IncompleteReasons     []GroupCount `json:"incomplete_reasons"`
	Hourly                []HourCount  `json:"hourly"`
	Daily                 []DayCount   `json:"daily"`
}

// ComputeBreakdowns groups t by its categorical columns, hour and day.
// Payment methods are counted over completed rides only.
func ComputeBreakdowns(t *dataprocessing.Table, topN int) (Breakdowns, error) {
	if t.Len() == 0 {
		return Breakdowns{}, ErrEmptySelection
	}
	var (
		b   Breakdowns
		err error
	)
	if b.Status, err = CountBy(t, dataprocessing.FieldBookingStatus); err != nil {
		return b, err
	}
	if b.Vehicle, err = CountBy(t, dataprocessing.FieldVehicleType); err != nil {
		return b, err
	}
	completed := t.Select(func(r *dataprocessing.Record) bool { return r.Status() == dataprocessing.StatusCompleted })
	if b.Payment, err = CountBy(completed, dataprocessing.FieldPaymentMethod); err != nil {
		return b, err
	}
	if b.TopPickup, err = TopN(t, dataprocessing.FieldPickupLocation, topN); err != nil {
		return b, err
	}
	if b.CustomerCancelReasons, err = CancellationReasons(t, dataprocessing.FieldCustomerCancelReason); err != nil {
		return b, err
	}
	if b.DriverCancelReasons, err = CancellationReasons(t, dataprocessing.FieldDriverCancelReason); err != nil {
		return b, err
	}
	if b.IncompleteReasons, err = CancellationReasons(t, dataprocessing.FieldIncompleteReason); err != nil {
		return b, err
	}
	b.Hourly = CountByHour(t)
	b.Daily = CountByDay(t)
	return b, nil
}

// Distributions holds the histograms of the continuous and rating columns.
type Distributions struct {
	BookingValue   Histogram `json:"booking_value"`
	RideDistance   Histogram `json:"ride_distance"`
	DriverRating   Histogram `json:"driver_rating"`
	CustomerRating Histogram `json:"customer_rating"`
}

// ComputeDistributions bins the numeric columns shown as histograms.
func ComputeDistributions(t *dataprocessing.Table, bins int) (Distributions, error) {
	if t.Len() == 0 {
		return Distributions{}, ErrEmptySelection
	}
	var (
		d   Distributions
		err error
	)
	if d.BookingValue, err = NewHistogram(t, dataprocessing.FieldBookingValue, bins); err != nil {
		return d, err
	}
	if d.RideDistance, err = NewHistogram(t, dataprocessing.FieldRideDistance, bins); err != nil {
		return d, err
	}
	if d.DriverRating, err = NewHistogram(t, dataprocessing.FieldDriverRating, bins); err != nil {
		return d, err
	}
	d.CustomerRating, err = NewHistogram(t, dataprocessing.FieldCustomerRating, bins)
	return d, err
}

// Dispersion reports spread and association of booking value.
type Dispersion struct {
	BookingValueStdDev Measure  `json:"booking_value_std_dev"`
	RideDistanceStdDev Measure  `json:"ride_distance_std_dev"`
	ValueDistanceCorr  Measure  `json:"value_distance_correlation"`
	BookingValueBox    BoxStats `json:"booking_value_box"`
}

// ComputeDispersion computes standard deviations, the value/distance
// correlation and the booking value box plot.
func ComputeDispersion(t *dataprocessing.Table) (Dispersion, error) {
	if t.Len() == 0 {
		return Dispersion{}, ErrEmptySelection
	}
	var (
		d   Dispersion
		err error
	)
	if d.BookingValueStdDev, err = StdDev(t, dataprocessing.FieldBookingValue); err != nil {
		return d, err
	}
	if d.RideDistanceStdDev, err = StdDev(t, dataprocessing.FieldRideDistance); err != nil {
		return d, err
	}
	if d.ValueDistanceCorr, err = Correlation(t, dataprocessing.FieldBookingValue, dataprocessing.FieldRideDistance); err != nil {
		return d, err
	}
	d.BookingValueBox, _, err = NewBoxStats(t, dataprocessing.FieldBookingValue)
	return d, err
}

// Sample is the leading rows of a table rendered as text, in schema column
// order.
type Sample struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// TakeSample renders at most n leading rows of t.
func TakeSample(t *dataprocessing.Table, n int) Sample {
	cols := dataprocessing.Columns()
	s := Sample{
		Columns: make([]string, len(cols)),
		Rows:    [][]string{},
		Total:   t.Len(),
	}
	for i, c := range cols {
		s.Columns[i] = c.Name
	}
	t.Head(n).Each(func(_ int, r *dataprocessing.Record) {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = r.Format(c.Field)
		}
		s.Rows = append(s.Rows, row)
	})
	return s
}

// ReportOptions tunes report generation.
type ReportOptions struct {
	Alpha         float64
	HistogramBins int
	SampleRows    int
	TopN          int
}

// Report is every analysis of one selection.
type Report struct {
	GeneratedAt   time.Time              `json:"generated_at"`
	Filter        Predicate              `json:"filter"`
	TotalRows     int                    `json:"total_rows"`
	FilteredRows  int                    `json:"filtered_rows"`
	KPIs          Section[KPIs]          `json:"kpis"`
	Breakdowns    Section[Breakdowns]    `json:"breakdowns"`
	Distributions Section[Distributions] `json:"distributions"`
	Dispersion    Section[Dispersion]    `json:"dispersion"`
	Hypothesis    Section[TestResult]    `json:"hypothesis"`
	Sample        Section[Sample]        `json:"sample"`
}

// BuildReport filters clean with p and runs every analysis over the
// result. Each section is computed independently.
func BuildReport(clean *dataprocessing.Table, p Predicate, opts ReportOptions) *Report {
	filtered := Apply(clean, p)
	return &Report{
		GeneratedAt:  time.Now().UTC(),
		Filter:       p,
		TotalRows:    clean.Len(),
		FilteredRows: filtered.Len(),
		KPIs: Compute(func() (KPIs, error) {
			return ComputeKPIs(filtered), nil
		}),
		Breakdowns: Compute(func() (Breakdowns, error) {
			return ComputeBreakdowns(filtered, opts.TopN)
		}),
		Distributions: Compute(func() (Distributions, error) {
			return ComputeDistributions(filtered, opts.HistogramBins)
		}),
		Dispersion: Compute(func() (Dispersion, error) {
			return ComputeDispersion(filtered)
		}),
		Hypothesis: Compute(func() (TestResult, error) {
			return WelchTest(filtered, DefaultHypothesisConfig(opts.Alpha))
		}),
		Sample: Compute(func() (Sample, error) {
			return TakeSample(filtered, opts.SampleRows), nil
		}),
	}
}

// Unavailable lists the names of sections that could not be computed, in
// alphabetical order.
func (r *Report) Unavailable() []string {
	var out []string
	for name, ok := range map[string]bool{
		"kpis":          r.KPIs.Available,
		"breakdowns":    r.Breakdowns.Available,
		"distributions": r.Distributions.Available,
		"dispersion":    r.Dispersion.Available,
		"hypothesis":    r.Hypothesis.Available,
		"sample":        r.Sample.Available,
	} {
		if !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
