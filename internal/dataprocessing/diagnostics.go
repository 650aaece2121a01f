package dataprocessing

// ColumnDiagnostics compares one column before and after cleaning.
type ColumnDiagnostics struct {
	Column        string      `json:"column"`
	RawType       LiteralType `json:"raw_type"`
	CleanKind     Kind        `json:"clean_kind"`
	MissingBefore int         `json:"missing_before"`
	MissingAfter  int         `json:"missing_after"`
}

// Diagnostics summarises what the cleaning pipeline did to the file.
type Diagnostics struct {
	RawRows    int                 `json:"raw_rows"`
	CleanRows  int                 `json:"clean_rows"`
	Columns    []ColumnDiagnostics `json:"columns"`
	Extra      []string            `json:"extra_columns,omitempty"`
	Imputation *ImputationReport   `json:"imputation"`
}

// Diagnose builds the before/after view for raw and clean. Derived columns
// report zero missing cells before cleaning since they did not exist yet.
func Diagnose(raw *RawTable, clean *Table, report *ImputationReport) *Diagnostics {
	literal := raw.LiteralTypes()
	before := raw.MissingCounts()

	d := &Diagnostics{
		RawRows:    raw.Len(),
		CleanRows:  clean.Len(),
		Imputation: report,
	}

	known := make(map[string]struct{})
	for _, c := range Columns() {
		known[c.Name] = struct{}{}
		rawType := literal[c.Name]
		if c.Derived {
			rawType = ""
		}
		d.Columns = append(d.Columns, ColumnDiagnostics{
			Column:        c.Name,
			RawType:       rawType,
			CleanKind:     c.Kind,
			MissingBefore: before[c.Name],
			MissingAfter:  clean.MissingCount(c.Field),
		})
	}

	for _, h := range raw.Header {
		if _, ok := known[h]; !ok {
			d.Extra = append(d.Extra, h)
		}
	}
	return d
}

// Complete reports whether no column has a missing value after cleaning.
func (d *Diagnostics) Complete() bool {
	for _, c := range d.Columns {
		if c.MissingAfter != 0 {
			return false
		}
	}
	return true
}
