package dataprocessing

// Measurement is the statistical measurement class of a variable.
type Measurement string

const (
	MeasurementNominal    Measurement = "Qualitative (Nominal)"
	MeasurementDiscrete   Measurement = "Quantitative (Discrete)"
	MeasurementContinuous Measurement = "Quantitative (Continuous)"
)

// Classification explains how a column is treated in the analysis.
type Classification struct {
	Variable      string      `json:"variable"`
	Type          Measurement `json:"type"`
	Justification string      `json:"justification"`
}

var classifications = map[Field]Classification{
	FieldDate:                 {Type: MeasurementContinuous, Justification: "Dates map onto a numeric time scale and can be compared and subtracted."},
	FieldTime:                 {Type: MeasurementNominal, Justification: "Used as a label to group rides rather than measured."},
	FieldBookingID:            {Type: MeasurementNominal, Justification: "Identifies a booking; carries no order or magnitude."},
	FieldBookingStatus:        {Type: MeasurementNominal, Justification: "Categorises the outcome of a booking, such as Completed or Cancelled."},
	FieldCustomerID:           {Type: MeasurementNominal, Justification: "Identifies a customer; carries no order or magnitude."},
	FieldVehicleType:          {Type: MeasurementNominal, Justification: "Groups vehicles into categories with no ranking between them."},
	FieldPickupLocation:       {Type: MeasurementNominal, Justification: "Place names are unordered categories."},
	FieldDropLocation:         {Type: MeasurementNominal, Justification: "Place names are unordered categories."},
	FieldAvgVTAT:              {Type: MeasurementContinuous, Justification: "An average duration, which can take any fractional value."},
	FieldAvgCTAT:              {Type: MeasurementContinuous, Justification: "An average duration, which can take any fractional value."},
	FieldCancelledByCustomer:  {Type: MeasurementDiscrete, Justification: "A whole-number count of cancellation events."},
	FieldCustomerCancelReason: {Type: MeasurementNominal, Justification: "Cancellation reasons are categorical labels."},
	FieldCancelledByDriver:    {Type: MeasurementDiscrete, Justification: "A whole-number count of cancellation events."},
	FieldDriverCancelReason:   {Type: MeasurementNominal, Justification: "Driver cancellation reasons are categorical labels."},
	FieldIncompleteRides:      {Type: MeasurementDiscrete, Justification: "A whole-number count of incomplete rides."},
	FieldIncompleteReason:     {Type: MeasurementNominal, Justification: "Incomplete ride reasons are unordered labels."},
	FieldBookingValue:         {Type: MeasurementContinuous, Justification: "A monetary amount that can have decimal places."},
	FieldRideDistance:         {Type: MeasurementContinuous, Justification: "Distance travelled is a measure that can be subdivided."},
	FieldDriverRating:         {Type: MeasurementDiscrete, Justification: "Star ratings on a fixed scale form a countable set."},
	FieldCustomerRating:       {Type: MeasurementDiscrete, Justification: "Star ratings on a fixed scale form a countable set."},
	FieldPaymentMethod:        {Type: MeasurementNominal, Justification: "Payment types are distinct categories with no hierarchy."},
	FieldHour:                 {Type: MeasurementDiscrete, Justification: "An integer hour of day derived from the booking time."},
}

// Classify returns the classification of every schema column in order.
func Classify() []Classification {
	out := make([]Classification, 0, fieldCount)
	for _, c := range Columns() {
		cl := classifications[c.Field]
		cl.Variable = c.Name
		out = append(out, cl)
	}
	return out
}
