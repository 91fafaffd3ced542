package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SchoolYear identifies an academic year by its starting calendar year.
// It is computed once at the request boundary and passed down explicitly.
type SchoolYear struct {
	Start int
}

// SchoolYearAt returns the school year containing t. Dates in or after the
// cutover month belong to the year starting that calendar year.
func SchoolYearAt(t time.Time, cutoverMonth time.Month) SchoolYear {
	if t.Month() >= cutoverMonth {
		return SchoolYear{Start: t.Year()}
	}
	return SchoolYear{Start: t.Year() - 1}
}

// ParseSchoolYear reads the "2025-2026" form.
func ParseSchoolYear(s string) (SchoolYear, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return SchoolYear{}, fmt.Errorf("school year %q must look like 2025-2026", s)
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return SchoolYear{}, fmt.Errorf("school year %q: %w", s, err)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return SchoolYear{}, fmt.Errorf("school year %q: %w", s, err)
	}
	if end != start+1 {
		return SchoolYear{}, fmt.Errorf("school year %q must span consecutive years", s)
	}
	return SchoolYear{Start: start}, nil
}

func (y SchoolYear) String() string {
	return fmt.Sprintf("%d-%d", y.Start, y.Start+1)
}

// Next returns the following school year.
func (y SchoolYear) Next() SchoolYear {
	return SchoolYear{Start: y.Start + 1}
}
