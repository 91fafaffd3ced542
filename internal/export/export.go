// Package export renders registrations as flat CSV for spreadsheets and state
// reporting. Column order and flag text are a stable contract.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"districtops/internal/flags"
	"districtops/internal/model"
)

// Header is the fixed column order.
var Header = []string{
	"id",
	"student_name",
	"date_of_birth",
	"grade",
	"school",
	"address_line",
	"city",
	"state",
	"zip",
	"school_year",
	"iep",
	"section_504",
	"mckinney_vento",
	"foster_care",
	"boundary_check",
	"status",
	"document_count",
	"flags",
	"created_at",
}

// FlagSeparator joins flags inside the flags column.
const FlagSeparator = ";"

// Row is one registration with its derived fields.
type Row struct {
	Registration  model.Registration
	DocumentCount int
	Flags         []flags.Flag
}

// Record renders r in Header order.
func Record(r Row) []string {
	reg := r.Registration
	return []string{
		reg.ID,
		reg.StudentName,
		formatDate(reg.DateOfBirth),
		reg.Grade,
		reg.School,
		reg.Address.Line,
		reg.Address.City,
		reg.Address.State,
		reg.Address.Zip,
		reg.SchoolYear,
		strconv.FormatBool(reg.Programs.IEP),
		strconv.FormatBool(reg.Programs.Section504),
		strconv.FormatBool(reg.Programs.McKinneyVento),
		strconv.FormatBool(reg.Programs.FosterCare),
		strconv.FormatBool(reg.DistrictBoundaryCheck),
		string(reg.Status),
		strconv.Itoa(r.DocumentCount),
		strings.Join(flags.Strings(r.Flags), FlagSeparator),
		reg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
