package api

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterQueryFrom(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  FilterQuery
	}{
		{
			name:  "absent params select everything",
			query: "",
			want:  FilterQuery{},
		},
		{
			name:  "repeated values",
			query: "from=2024-03-01&to=2024-03-31&vehicle=Auto&vehicle=Bike&status=Completed",
			want: FilterQuery{
				From:     "2024-03-01",
				To:       "2024-03-31",
				Vehicles: []string{"Auto", "Bike"},
				Statuses: []string{"Completed"},
			},
		},
		{
			name:  "empty value selects nothing",
			query: "vehicle=&status=Completed&status=",
			want: FilterQuery{
				Vehicles: []string{},
				Statuses: []string{"Completed"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got := FilterQueryFrom(q)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterQueryFrom mismatch (-want +got):\n%s", diff)
			}
			if tt.want.Vehicles != nil && got.Vehicles == nil {
				t.Error("empty vehicle set collapsed to nil")
			}
		})
	}
}
