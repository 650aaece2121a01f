package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RideHeader is the header row of the ride bookings export.
var RideHeader = []string{
	"Date", "Time", "Booking ID", "Booking Status", "Customer ID",
	"Vehicle Type", "Pickup Location", "Drop Location", "Avg VTAT", "Avg CTAT",
	"Cancelled Rides by Customer", "Reason for cancelling by Customer",
	"Cancelled Rides by Driver", "Driver Cancellation Reason",
	"Incomplete Rides", "Incomplete Rides Reason", "Booking Value",
	"Ride Distance", "Driver Ratings", "Customer Rating", "Payment Method",
}

// Ride is one line of the export as text. Empty fields are written as
// empty cells.
type Ride struct {
	Date                 string
	Time                 string
	BookingID            string
	Status               string
	CustomerID           string
	VehicleType          string
	Pickup               string
	Drop                 string
	AvgVTAT              string
	AvgCTAT              string
	CancelledByCustomer  string
	CustomerCancelReason string
	CancelledByDriver    string
	DriverCancelReason   string
	IncompleteRides      string
	IncompleteReason     string
	BookingValue         string
	RideDistance         string
	DriverRating         string
	CustomerRating       string
	PaymentMethod        string
}

// Row returns the ride in header order.
func (r Ride) Row() []string {
	return []string{
		r.Date, r.Time, r.BookingID, r.Status, r.CustomerID,
		r.VehicleType, r.Pickup, r.Drop, r.AvgVTAT, r.AvgCTAT,
		r.CancelledByCustomer, r.CustomerCancelReason,
		r.CancelledByDriver, r.DriverCancelReason,
		r.IncompleteRides, r.IncompleteReason, r.BookingValue,
		r.RideDistance, r.DriverRating, r.CustomerRating, r.PaymentMethod,
	}
}

// CompletedRide builds a completed booking with every numeric column set.
func CompletedRide(id, date, clock, vehicle, value, distance string) Ride {
	return Ride{
		Date: date, Time: clock, BookingID: id, Status: "Completed",
		CustomerID: "CID" + id, VehicleType: vehicle,
		Pickup: "Palam Vihar", Drop: "Jhilmil",
		AvgVTAT: "8.5", AvgCTAT: "26.2",
		BookingValue: value, RideDistance: distance,
		DriverRating: "4.5", CustomerRating: "4.8", PaymentMethod: "UPI",
	}
}

// SampleRides returns a small dataset covering every booking status. Each
// column has at least one present value so the set survives imputation.
func SampleRides() []Ride {
	return []Ride{
		CompletedRide("CNR0001", "2024-03-01", "08:15:00", "Auto", "250", "10.5"),
		{
			Date: "2024-03-01", Time: "09:30:00", BookingID: "CNR0002", Status: "Completed",
			CustomerID: "CID0002", VehicleType: "Go Sedan", Pickup: "Saket", Drop: "Dwarka Mor",
			AvgVTAT: "6.1", AvgCTAT: "31.0", BookingValue: "300", RideDistance: "12",
			DriverRating: "4.1", CustomerRating: "4.6", PaymentMethod: "Cash",
		},
		{
			Date: "2024-03-02", Time: "18:45:00", BookingID: "CNR0003", Status: "Cancelled by Customer",
			CustomerID: "CID0003", VehicleType: "Auto", Pickup: "Palam Vihar", Drop: "Saket",
			AvgVTAT: "12.4", CancelledByCustomer: "1",
			CustomerCancelReason: "Driver is not moving towards pickup location",
		},
		{
			Date: "2024-03-02", Time: "19:05:00", BookingID: "CNR0004", Status: "Cancelled by Driver",
			CustomerID: "CID0004", VehicleType: "Bike", Pickup: "Jhilmil", Drop: "Palam Vihar",
			AvgVTAT: "9.0", CancelledByDriver: "1",
			DriverCancelReason: "Personal & Car related issues",
		},
		{
			Date: "2024-03-03", Time: "07:10:00", BookingID: "CNR0005", Status: "Incomplete",
			CustomerID: "CID0005", VehicleType: "eBike", Pickup: "Saket", Drop: "Jhilmil",
			AvgVTAT: "7.7", AvgCTAT: "18.3", IncompleteRides: "1", IncompleteReason: "Vehicle Breakdown",
			BookingValue: "120", RideDistance: "3.2", PaymentMethod: "UPI",
		},
		{
			Date: "2024-03-03", Time: "22:40:00", BookingID: "CNR0006", Status: "No Driver Found",
			CustomerID: "CID0006", VehicleType: "Go Mini", Pickup: "Dwarka Mor", Drop: "Saket",
		},
		CompletedRide("CNR0007", "2024-03-04", "08:55:00", "Auto", "180", "8"),
		CompletedRide("CNR0008", "2024-03-05", "13:20:00", "Premier Sedan", "640", "25.4"),
	}
}

// RideCSV renders rides as CSV text with the standard header.
func RideCSV(rides ...Ride) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(RideHeader)
	for _, r := range rides {
		_ = w.Write(r.Row())
	}
	w.Flush()
	return buf.String()
}

// WriteRideCSV writes rides to a file in a per-test temp directory and
// returns its path.
func WriteRideCSV(t testing.TB, rides ...Ride) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rides.csv")
	if err := os.WriteFile(path, []byte(RideCSV(rides...)), 0o644); err != nil {
		t.Fatalf("write ride fixture: %v", err)
	}
	return path
}

// CreateCorruptedRideFile writes a broken dataset of the given kind to path.
// Kinds: "empty", "ragged", "bad_quote", "missing_column".
func CreateCorruptedRideFile(path, kind string) error {
	var content string
	switch kind {
	case "empty":
		content = ""
	case "ragged":
		content = strings.Join(RideHeader, ",") + "\n2024-03-01,08:15:00,CNR0001\n"
	case "bad_quote":
		content = strings.Join(RideHeader, ",") + "\n\"2024-03-01,08:15:00\"x,CNR0001\n"
	case "missing_column":
		content = strings.Join(RideHeader[:len(RideHeader)-1], ",") + "\n"
	default:
		return fmt.Errorf("unknown corruption kind %q", kind)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
