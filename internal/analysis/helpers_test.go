package analysis

import (
	"database/sql"
	"time"

	"ridepulse/internal/dataprocessing"
)

type rideSpec struct {
	status   string
	vehicle  string
	date     string
	hour     int
	value    float64
	distance float64
	reason   string
}

func text(s string) sql.NullString     { return sql.NullString{String: s, Valid: s != ""} }
func number(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

func record(s rideSpec) dataprocessing.Record {
	day, err := time.Parse(dataprocessing.DateLayout, s.date)
	if err != nil {
		panic(err)
	}
	r := dataprocessing.Record{
		Date:           sql.NullTime{Time: day, Valid: true},
		Time:           text(time.Date(0, 1, 1, s.hour, 0, 0, 0, time.UTC).Format(dataprocessing.ClockLayout)),
		Hour:           sql.NullInt32{Int32: int32(s.hour), Valid: true},
		BookingID:      text("CNR"),
		BookingStatus:  text(s.status),
		CustomerID:     text("CID"),
		VehicleType:    text(s.vehicle),
		PickupLocation: text("Saket"),
		DropLocation:   text("Jhilmil"),
		AvgVTAT:        number(8),
		AvgCTAT:        number(25),
		BookingValue:   number(s.value),
		RideDistance:   number(s.distance),
		DriverRating:   number(4.5),
		CustomerRating: number(4.6),
		PaymentMethod:  text("UPI"),
	}
	switch s.status {
	case dataprocessing.StatusCancelledByCustomer:
		r.CustomerCancelReason = text(s.reason)
	case dataprocessing.StatusCancelledByDriver:
		r.DriverCancelReason = text(s.reason)
	case dataprocessing.StatusIncomplete:
		r.IncompleteReason = text(s.reason)
	}
	return r
}

func table(specs ...rideSpec) *dataprocessing.Table {
	records := make([]dataprocessing.Record, len(specs))
	for i, s := range specs {
		records[i] = record(s)
	}
	return dataprocessing.NewTable(records)
}

// week is a small mixed selection spanning five days.
func week() *dataprocessing.Table {
	return table(
		rideSpec{status: "Completed", vehicle: "Auto", date: "2024-03-01", hour: 8, value: 250, distance: 10.5},
		rideSpec{status: "Completed", vehicle: "Go Sedan", date: "2024-03-01", hour: 9, value: 300, distance: 12},
		rideSpec{status: "Cancelled by Customer", vehicle: "Auto", date: "2024-03-02", hour: 18, value: 410, distance: 3, reason: "Change of plans"},
		rideSpec{status: "Cancelled by Driver", vehicle: "Bike", date: "2024-03-02", hour: 18, value: 410, distance: 4, reason: "Customer related issue"},
		rideSpec{status: "Incomplete", vehicle: "eBike", date: "2024-03-03", hour: 7, value: 120, distance: 3.2, reason: "Vehicle Breakdown"},
		rideSpec{status: "No Driver Found", vehicle: "Auto", date: "2024-03-04", hour: 22, value: 410, distance: 23},
		rideSpec{status: "Completed", vehicle: "Auto", date: "2024-03-05", hour: 8, value: 180, distance: 8},
	)
}
