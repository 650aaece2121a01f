// Package charts draws the dashboard charts of a ride selection.
//
// Interactive charts are go-echarts HTML pages built from an
// analysis.Report; Dashboard puts all of them on one page. Histograms and
// the booking value box plot can also be drawn as PNG images with
// gonum/plot from the filtered rows.
package charts
