package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"ridepulse/internal/dataprocessing"
)

const (
	pngWidth  = 8 * vg.Inch
	pngHeight = 5 * vg.Inch
)

var pngFields = map[string]dataprocessing.Field{
	BookingValueHist:   dataprocessing.FieldBookingValue,
	RideDistanceHist:   dataprocessing.FieldRideDistance,
	DriverRatingHist:   dataprocessing.FieldDriverRating,
	CustomerRatingHist: dataprocessing.FieldCustomerRating,
	BookingValueBox:    dataprocessing.FieldBookingValue,
}

// HasPNG reports whether name can be rendered as a static image.
func HasPNG(name string) bool {
	_, ok := pngFields[name]
	return ok
}

// RenderPNG draws the named histogram or box plot of the filtered rows as
// a PNG image.
func RenderPNG(w io.Writer, name string, t *dataprocessing.Table, bins int) error {
	field, ok := pngFields[name]
	if !ok {
		return fmt.Errorf("%w: %q has no static rendering", ErrUnknownChart, name)
	}
	var values plotter.Values
	if t != nil {
		values = t.Numbers(field)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: %s", ErrNoData, field)
	}

	var (
		p   *plot.Plot
		err error
	)
	if name == BookingValueBox {
		p, err = boxPlot(field, values)
	} else {
		p, err = histPlot(name, field, values, bins)
	}
	if err != nil {
		return err
	}

	canvas := vgimg.New(pngWidth, pngHeight)
	p.Draw(draw.New(canvas))
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func histPlot(name string, field dataprocessing.Field, values plotter.Values, bins int) (*plot.Plot, error) {
	if bins < 1 {
		bins = 1
	}
	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", field, err)
	}
	h.FillColor = hexColor(Palette[0])
	h.LineStyle.Color = hexColor(Palette[4])

	p := plot.New()
	p.Title.Text = histogramTitles[name]
	p.X.Label.Text = field.String()
	p.Y.Label.Text = "Rides"
	p.Add(h)
	return p, nil
}

func boxPlot(field dataprocessing.Field, values plotter.Values) (*plot.Plot, error) {
	b, err := plotter.NewBoxPlot(vg.Points(60), 0, values)
	if err != nil {
		return nil, fmt.Errorf("box plot %s: %w", field, err)
	}
	b.FillColor = hexColor(Palette[1])

	p := plot.New()
	p.Title.Text = "Booking Value Spread"
	p.Y.Label.Text = field.String()
	p.Add(b)
	p.NominalX(field.String())
	return p, nil
}

// hexColor parses a #RRGGBB colour; anything else is black.
func hexColor(s string) color.RGBA {
	c := color.RGBA{A: 0xff}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}
