package analysis

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridepulse/internal/dataprocessing"
)

func day(s string) time.Time {
	d, err := time.Parse(dataprocessing.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDefaultPredicate(t *testing.T) {
	p := DefaultPredicate(week())
	assert.Equal(t, day("2024-03-01"), p.From)
	assert.Equal(t, day("2024-03-05"), p.To)
	assert.ElementsMatch(t, []string{"Auto", "Go Sedan", "Bike", "eBike"}, p.Vehicles)
	assert.Len(t, p.Statuses, 5)
}

func TestApply_DefaultIsIdentity(t *testing.T) {
	tbl := week()
	got := Apply(tbl, DefaultPredicate(tbl))
	if diff := cmp.Diff(tbl.Records(), got.Records()); diff != "" {
		t.Errorf("default predicate changed the table (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	tbl := week()
	all := DefaultPredicate(tbl)

	tests := []struct {
		name string
		mod  func(p *Predicate)
		want int
	}{
		{"inclusive date range", func(p *Predicate) { p.From, p.To = day("2024-03-02"), day("2024-03-03") }, 3},
		{"single day", func(p *Predicate) { p.From, p.To = day("2024-03-05"), day("2024-03-05") }, 1},
		{"inverted range", func(p *Predicate) { p.From, p.To = day("2024-03-05"), day("2024-03-01") }, 0},
		{"only from bound drops dates", func(p *Predicate) { p.From, p.To = day("2024-03-05"), time.Time{} }, 7},
		{"only to bound drops dates", func(p *Predicate) { p.From, p.To = time.Time{}, day("2024-03-01") }, 7},
		{"vehicle subset", func(p *Predicate) { p.Vehicles = []string{"Auto"} }, 4},
		{"status subset", func(p *Predicate) { p.Statuses = []string{"Completed"} }, 3},
		{"empty vehicle set", func(p *Predicate) { p.Vehicles = nil }, 0},
		{"empty status set", func(p *Predicate) { p.Statuses = []string{} }, 0},
		{"unknown vehicle", func(p *Predicate) { p.Vehicles = []string{"Rickshaw"} }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := all
			tt.mod(&p)
			got := Apply(tbl, p)
			assert.Equal(t, tt.want, got.Len())
			assert.LessOrEqual(t, got.Len(), tbl.Len())
		})
	}
}

func TestApply_NarrowingNeverGrows(t *testing.T) {
	tbl := week()
	p := DefaultPredicate(tbl)

	steps := []struct {
		name   string
		narrow func(p *Predicate)
	}{
		{"first four days", func(p *Predicate) { p.From, p.To = day("2024-03-01"), day("2024-03-04") }},
		{"range inside range", func(p *Predicate) { p.From, p.To = day("2024-03-02"), day("2024-03-04") }},
		{"narrower still", func(p *Predicate) { p.From, p.To = day("2024-03-02"), day("2024-03-03") }},
		{"two vehicles", func(p *Predicate) { p.Vehicles = []string{"Auto", "Bike"} }},
		{"vehicle inside subset", func(p *Predicate) { p.Vehicles = []string{"Auto"} }},
		{"two statuses", func(p *Predicate) { p.Statuses = []string{"Completed", "Cancelled by Customer"} }},
		{"status inside subset", func(p *Predicate) { p.Statuses = []string{"Completed"} }},
	}

	prev := Apply(tbl, p)
	for _, step := range steps {
		step.narrow(&p)
		got := Apply(tbl, p)

		assert.LessOrEqual(t, got.Len(), prev.Len(), step.name)
		// every row kept by the narrower predicate was kept by the wider one
		if diff := cmp.Diff(got.Records(), Apply(prev, p).Records()); diff != "" {
			t.Errorf("%s: rows outside the previous selection (-full +nested):\n%s", step.name, diff)
		}
		prev = got
	}
}

func TestApply_PreservesOrderAndIsDeterministic(t *testing.T) {
	tbl := week()
	p := DefaultPredicate(tbl)
	p.Vehicles = []string{"Auto"}

	first := Apply(tbl, p)
	second := Apply(tbl, p)
	require.Equal(t, first.Len(), second.Len())
	if diff := cmp.Diff(first.Records(), second.Records()); diff != "" {
		t.Errorf("repeated filtering differed:\n%s", diff)
	}

	var dates []string
	first.Each(func(_ int, r *dataprocessing.Record) { dates = append(dates, r.Format(dataprocessing.FieldDate)) })
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-04", "2024-03-05"}, dates)
}
