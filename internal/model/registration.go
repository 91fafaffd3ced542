package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Address is a normalized postal address.
type Address struct {
	Line  string `json:"line"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// Normalize trims and collapses whitespace and upper-cases the state code.
func (a Address) Normalize() Address {
	return Address{
		Line:  collapse(a.Line),
		City:  collapse(a.City),
		State: strings.ToUpper(collapse(a.State)),
		Zip:   collapse(a.Zip),
	}
}

// Key is the case-insensitive line+city+zip identity used to spot shared addresses.
func (a Address) Key() string {
	n := a.Normalize()
	return strings.ToLower(n.Line + "|" + n.City + "|" + n.Zip)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ProgramFlags are the protected-program designations on a registration.
type ProgramFlags struct {
	IEP           bool `json:"iep"`
	Section504    bool `json:"section_504"`
	McKinneyVento bool `json:"mckinney_vento"`
	FosterCare    bool `json:"foster_care"`
}

// Registration is a student's request for transportation tied to a residency claim.
type Registration struct {
	ID                    string       `json:"id"`
	DistrictID            string       `json:"district_id"`
	StudentName           string       `json:"student_name"`
	DateOfBirth           time.Time    `json:"date_of_birth"`
	Grade                 string       `json:"grade"`
	School                string       `json:"school"`
	Address               Address      `json:"address"`
	SchoolYear            string       `json:"school_year"`
	Programs              ProgramFlags `json:"programs"`
	DistrictBoundaryCheck bool         `json:"district_boundary_check"`
	Status                ReviewStatus `json:"status"`
	PriorRegistrationID   string       `json:"prior_registration_id,omitempty"`
	Version               int64        `json:"-"`
	CreatedAt             time.Time    `json:"created_at"`
}

// NextGrade advances a grade level by one. Graduating seniors have no next grade.
func NextGrade(grade string) (string, error) {
	g := strings.ToUpper(strings.TrimSpace(grade))
	switch g {
	case "PK":
		return "K", nil
	case "K":
		return "1", nil
	}
	n, err := strconv.Atoi(g)
	if err != nil || n < 1 {
		return "", fmt.Errorf("unrecognized grade %q", grade)
	}
	if n >= 12 {
		return "", fmt.Errorf("grade %s has no following grade", g)
	}
	return strconv.Itoa(n + 1), nil
}
