package model

import "time"

// StateReport is a filing submitted to the state for a school year.
type StateReport struct {
	ID          string    `json:"id"`
	DistrictID  string    `json:"district_id"`
	ReportType  string    `json:"report_type"`
	SchoolYear  string    `json:"school_year"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TrainingRecord tracks a required training program.
type TrainingRecord struct {
	ID          string     `json:"id"`
	DistrictID  string     `json:"district_id"`
	Program     string     `json:"program"`
	DueDate     time.Time  `json:"due_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Overdue reports whether the due date has passed without completion.
func (r TrainingRecord) Overdue(now time.Time) bool {
	return !r.Completed && r.DueDate.Before(now)
}

// ProtectedStudentRecord tracks transport for a McKinney-Vento student.
type ProtectedStudentRecord struct {
	ID                     string    `json:"id"`
	DistrictID             string    `json:"district_id"`
	StudentName            string    `json:"student_name"`
	SchoolOfOrigin         string    `json:"school_of_origin"`
	TransportationProvided bool      `json:"transportation_provided"`
	IdentifiedAt           time.Time `json:"identified_at"`
}

// DataSharingAgreement tracks a vendor's student-data agreement.
type DataSharingAgreement struct {
	ID         string     `json:"id"`
	DistrictID string     `json:"district_id"`
	VendorName string     `json:"vendor_name"`
	Signed     bool       `json:"signed"`
	SignedAt   *time.Time `json:"signed_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// BreachRecord tracks a student-data breach incident.
type BreachRecord struct {
	ID              string     `json:"id"`
	DistrictID      string     `json:"district_id"`
	VendorName      string     `json:"vendor_name"`
	Description     string     `json:"description"`
	DiscoveredAt    time.Time  `json:"discovered_at"`
	ParentsNotified bool       `json:"parents_notified"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

// Unresolved reports whether the breach still needs action.
func (b BreachRecord) Unresolved() bool {
	return b.ResolvedAt == nil || !b.ParentsNotified
}

// ComplianceSnapshot is everything readiness needs for one district.
type ComplianceSnapshot struct {
	StateReports      []StateReport
	Trainings         []TrainingRecord
	ProtectedStudents []ProtectedStudentRecord
	Agreements        []DataSharingAgreement
	Breaches          []BreachRecord
}
