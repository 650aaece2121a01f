package charts

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"

	"ridepulse/internal/analysis"
	"ridepulse/internal/config"
	"ridepulse/internal/dataprocessing"
)

// Chart names accepted by Build, Render and the /charts/{name} route.
const (
	StatusPie             = "status"
	VehicleBar            = "vehicle"
	BookingValueHist      = "booking_value_hist"
	RideDistanceHist      = "ride_distance_hist"
	DriverRatingHist      = "driver_rating_hist"
	CustomerRatingHist    = "customer_rating_hist"
	CustomerCancelReasons = "customer_cancel_reasons"
	DriverCancelReasons   = "driver_cancel_reasons"
	HourlyBar             = "hourly"
	DailyLine             = "daily"
	PaymentPie            = "payment"
	ValueDistanceScatter  = "value_vs_distance"
	BookingValueBox       = "booking_value_box"
	TopPickups            = "top_pickups"
	GroupMeans            = "group_means"
)

// maxScatterPoints caps the scatter series. Larger selections are thinned
// by taking every k-th ride, so the plot still spans the whole selection.
const maxScatterPoints = 5000

var (
	// ErrUnknownChart is returned for a chart name that is not registered.
	ErrUnknownChart = errors.New("unknown chart")

	// ErrNoData is returned when a static chart has nothing to plot.
	ErrNoData = errors.New("no data to plot")
)

// Palette is the series colour cycle shared by every chart.
var Palette = []string{"#2A9D8F", "#E9C46A", "#F4A261", "#E76F51", "#264653"}

// Group colours of the t-test comparison chart.
const (
	colorGroupA = "#2A9D8F"
	colorGroupB = "#E76F51"
)

// Input is the data a chart is drawn from: the report of a selection and
// the filtered rows behind it.
type Input struct {
	Report   *analysis.Report
	Filtered *dataprocessing.Table
}

// Chart is a renderable go-echarts chart.
type Chart interface {
	components.Charter
	render.Renderer
}

type builder func(in Input) Chart

var registry = map[string]builder{
	StatusPie:             statusPie,
	VehicleBar:            vehicleBar,
	BookingValueHist:      histogram(BookingValueHist),
	RideDistanceHist:      histogram(RideDistanceHist),
	DriverRatingHist:      histogram(DriverRatingHist),
	CustomerRatingHist:    histogram(CustomerRatingHist),
	CustomerCancelReasons: cancelReasons(CustomerCancelReasons),
	DriverCancelReasons:   cancelReasons(DriverCancelReasons),
	HourlyBar:             hourlyBar,
	DailyLine:             dailyLine,
	PaymentPie:            paymentPie,
	ValueDistanceScatter:  valueDistanceScatter,
	BookingValueBox:       bookingValueBox,
	TopPickups:            topPickups,
	GroupMeans:            groupMeans,
}

// dashboard order
var order = []string{
	StatusPie, VehicleBar,
	BookingValueHist, RideDistanceHist, DriverRatingHist, CustomerRatingHist,
	CustomerCancelReasons, DriverCancelReasons,
	HourlyBar, DailyLine, PaymentPie,
	ValueDistanceScatter, BookingValueBox,
	TopPickups, GroupMeans,
}

// Names returns the registered chart names in dashboard order.
func Names() []string {
	return append([]string(nil), order...)
}

// Known reports whether name is a registered chart.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Build creates the named chart. Charts whose report section is
// unavailable are still built, empty, with the reason as subtitle.
func Build(name string, in Input) (Chart, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if in.Report == nil {
		in.Report = &analysis.Report{}
	}
	if in.Filtered == nil {
		in.Filtered = dataprocessing.NewTable(nil)
	}
	return b(in), nil
}

// Render writes the named chart as a standalone HTML page.
func Render(w io.Writer, name string, in Input) error {
	c, err := Build(name, in)
	if err != nil {
		return err
	}
	return c.Render(w)
}

// Dashboard writes every chart on one HTML page.
func Dashboard(w io.Writer, in Input) error {
	page := components.NewPage()
	page.SetPageTitle(config.AppName + " Dashboard")
	page.SetLayout(components.PageFlexLayout)
	for _, name := range order {
		c, err := Build(name, in)
		if err != nil {
			return err
		}
		page.AddCharts(c)
	}
	return page.Render(w)
}

func globals(title, subtitle string, extra ...charts.GlobalOpts) []charts.GlobalOpts {
	base := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: config.AppName + " - " + title,
			Width:     "900px",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithColorsOpts(opts.Colors(Palette)),
	}
	return append(base, extra...)
}

// subtitle describes the selection, or why the section is missing.
func subtitle[T any](in Input, s analysis.Section[T]) string {
	if !s.Available {
		if s.Message == "" {
			return "No data"
		}
		return "No data: " + s.Message
	}
	return fmt.Sprintf("%d of %d rides", in.Report.FilteredRows, in.Report.TotalRows)
}

func countBars(title, axis string, sub string, counts []analysis.GroupCount) *charts.Bar {
	keys := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		keys[i] = c.Key
		data[i] = opts.BarData{Name: c.Key, Value: c.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globals(title, sub,
		charts.WithXAxisOpts(opts.XAxis{Name: axis}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rides"}),
	)...)
	bar.SetXAxis(keys).AddSeries("Rides", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func countPie(title, sub string, counts []analysis.GroupCount) *charts.Pie {
	data := make([]opts.PieData, len(counts))
	for i, c := range counts {
		data[i] = opts.PieData{Name: c.Key, Value: c.Count}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(globals(title, sub,
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)...)
	pie.AddSeries(title, data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}))
	return pie
}

func breakdowns(in Input) (analysis.Breakdowns, string) {
	s := in.Report.Breakdowns
	sub := subtitle(in, s)
	if s.Data == nil {
		return analysis.Breakdowns{}, sub
	}
	return *s.Data, sub
}

func statusPie(in Input) Chart {
	b, sub := breakdowns(in)
	return countPie("Booking Status", sub, b.Status)
}

func vehicleBar(in Input) Chart {
	b, sub := breakdowns(in)
	return countBars("Bookings by Vehicle Type", "Vehicle", sub, b.Vehicle)
}

func paymentPie(in Input) Chart {
	b, sub := breakdowns(in)
	return countPie("Payment Method (completed rides)", sub, b.Payment)
}

func topPickups(in Input) Chart {
	b, sub := breakdowns(in)
	// Horizontal bars read top-down, so the largest count goes last.
	counts := append([]analysis.GroupCount(nil), b.TopPickup...)
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count < counts[j].Count })

	bar := countBars("Top Pickup Locations", "Rides", sub, counts)
	bar.XYReversal()
	return bar
}

func cancelReasons(name string) builder {
	return func(in Input) Chart {
		b, sub := breakdowns(in)
		if name == CustomerCancelReasons {
			return countBars("Customer Cancellation Reasons", "Reason", sub, b.CustomerCancelReasons)
		}
		return countBars("Driver Cancellation Reasons", "Reason", sub, b.DriverCancelReasons)
	}
}

func hourlyBar(in Input) Chart {
	b, sub := breakdowns(in)
	hours := make([]string, len(b.Hourly))
	data := make([]opts.BarData, len(b.Hourly))
	for i, h := range b.Hourly {
		hours[i] = fmt.Sprintf("%02d", h.Hour)
		data[i] = opts.BarData{Value: h.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globals("Bookings by Hour", sub,
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rides"}),
	)...)
	bar.SetXAxis(hours).AddSeries("Rides", data)
	return bar
}

func dailyLine(in Input) Chart {
	b, sub := breakdowns(in)
	days := make([]string, len(b.Daily))
	data := make([]opts.LineData, len(b.Daily))
	for i, d := range b.Daily {
		days[i] = d.Day
		data[i] = opts.LineData{Value: d.Count}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globals("Bookings per Day", sub,
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rides"}),
	)...)
	line.SetXAxis(days).AddSeries("Rides", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

var histogramTitles = map[string]string{
	BookingValueHist:   "Booking Value Distribution",
	RideDistanceHist:   "Ride Distance Distribution",
	DriverRatingHist:   "Driver Rating Distribution",
	CustomerRatingHist: "Customer Rating Distribution",
}

func pickHistogram(d analysis.Distributions, name string) analysis.Histogram {
	switch name {
	case BookingValueHist:
		return d.BookingValue
	case RideDistanceHist:
		return d.RideDistance
	case DriverRatingHist:
		return d.DriverRating
	default:
		return d.CustomerRating
	}
}

func histogram(name string) builder {
	return func(in Input) Chart {
		s := in.Report.Distributions
		var h analysis.Histogram
		if s.Data != nil {
			h = pickHistogram(*s.Data, name)
		}

		labels := make([]string, len(h.Counts))
		data := make([]opts.BarData, len(h.Counts))
		for i, n := range h.Counts {
			labels[i] = fmt.Sprintf("%.1f-%.1f", h.Edges[i], h.Edges[i+1])
			data[i] = opts.BarData{Value: n}
		}

		bar := charts.NewBar()
		bar.SetGlobalOptions(globals(histogramTitles[name], subtitle(in, s),
			charts.WithXAxisOpts(opts.XAxis{Name: h.Column.String()}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Rides"}),
		)...)
		bar.SetXAxis(labels).AddSeries("Rides", data,
			charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}))
		return bar
	}
}

// scatterPoints returns (distance, value) pairs of t, thinned to at most
// maxScatterPoints.
func scatterPoints(t *dataprocessing.Table) []opts.ScatterData {
	stride := 1
	if t.Len() > maxScatterPoints {
		stride = (t.Len() + maxScatterPoints - 1) / maxScatterPoints
	}

	var data []opts.ScatterData
	t.Each(func(i int, r *dataprocessing.Record) {
		if i%stride != 0 {
			return
		}
		x, okX := r.Number(dataprocessing.FieldRideDistance)
		y, okY := r.Number(dataprocessing.FieldBookingValue)
		if okX && okY {
			data = append(data, opts.ScatterData{Value: []interface{}{x, y}})
		}
	})
	return data
}

func valueDistanceScatter(in Input) Chart {
	data := scatterPoints(in.Filtered)

	sub := fmt.Sprintf("%d points", len(data))
	if s := in.Report.Dispersion; s.Data != nil {
		sub += ", r = " + s.Data.ValueDistanceCorr.String()
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(globals("Booking Value vs Ride Distance", sub,
		charts.WithXAxisOpts(opts.XAxis{Name: "Ride Distance", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Booking Value", Type: "value"}),
	)...)
	scatter.AddSeries("Rides", data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}

func bookingValueBox(in Input) Chart {
	s := in.Report.Dispersion
	sub := subtitle(in, s)

	var data []opts.BoxPlotData
	if s.Data != nil && s.Data.BookingValueBox.N > 0 {
		b := s.Data.BookingValueBox
		data = append(data, opts.BoxPlotData{
			Name:  "Booking Value",
			Value: []float64{b.LowerWhisker, b.Q1, b.Median, b.Q3, b.UpperWhisker},
		})
		sub = fmt.Sprintf("n = %d, median %.2f, %d outliers", b.N, b.Median, len(b.Outliers))
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(globals("Booking Value Spread", sub,
		charts.WithYAxisOpts(opts.YAxis{Name: "Booking Value"}),
	)...)
	box.SetXAxis([]string{"Booking Value"}).AddSeries("Booking Value", data)
	return box
}

func groupMeans(in Input) Chart {
	s := in.Report.Hypothesis
	sub := subtitle(in, s)

	labels := []string{"Group A", "Group B"}
	var data []opts.BarData
	if s.Data != nil {
		r := s.Data
		labels = []string{r.GroupA.Label, r.GroupB.Label}
		data = []opts.BarData{
			meanBar(r.GroupA, colorGroupA),
			meanBar(r.GroupB, colorGroupB),
		}
		sub = r.Conclusion
		if r.PValue.Valid {
			sub += fmt.Sprintf(" (p = %.4f)", r.PValue.Value)
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globals("Mean Ride Distance by Group", sub,
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean Ride Distance"}),
	)...)
	bar.SetXAxis(labels).AddSeries("Mean", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func meanBar(g analysis.GroupSummary, color string) opts.BarData {
	d := opts.BarData{Name: g.Label, ItemStyle: &opts.ItemStyle{Color: color}}
	if g.Mean.Valid {
		d.Value = g.Mean.Value
	} else {
		// echarts renders "-" as an empty bar
		d.Value = "-"
	}
	return d
}
