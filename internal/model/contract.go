package model

import "time"

// ContractStatus is the lifecycle of a contractor contract.
type ContractStatus string

const (
	ContractPending  ContractStatus = "pending"
	ContractActive   ContractStatus = "active"
	ContractExpiring ContractStatus = "expiring"
	ContractExpired  ContractStatus = "expired"
	ContractDisputed ContractStatus = "disputed"
)

// Contract is a transportation contractor agreement.
type Contract struct {
	ID             string         `json:"id"`
	DistrictID     string         `json:"district_id"`
	ContractorName string         `json:"contractor_name"`
	ContactName    string         `json:"contact_name"`
	ContactEmail   string         `json:"contact_email"`
	ContactPhone   string         `json:"contact_phone"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	AnnualValue    float64        `json:"annual_value"`
	RouteCount     int            `json:"route_count"`
	RatePerRoute   float64        `json:"rate_per_route"`
	RatePerMile    float64        `json:"rate_per_mile"`
	Status         ContractStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// EffectiveStatus derives expiring/expired from the end date for active
// contracts. The stored status is never rewritten.
func (c Contract) EffectiveStatus(now time.Time, horizon time.Duration) ContractStatus {
	if c.Status != ContractActive {
		return c.Status
	}
	if c.EndDate.Before(now) {
		return ContractExpired
	}
	if !c.EndDate.After(now.Add(horizon)) {
		return ContractExpiring
	}
	return ContractActive
}

// InvoiceStatus is the review lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoiceApproved InvoiceStatus = "approved"
	InvoiceDisputed InvoiceStatus = "disputed"
)

// Invoice is a contractor's claim for payment.
type Invoice struct {
	ID             string        `json:"id"`
	ContractID     string        `json:"contract_id"`
	DistrictID     string        `json:"district_id"`
	InvoiceNumber  string        `json:"invoice_number"`
	InvoiceDate    time.Time     `json:"invoice_date"`
	InvoicedAmount float64       `json:"invoiced_amount"`
	VerifiedAmount *float64      `json:"verified_amount,omitempty"`
	GPSVerified    bool          `json:"gps_verified"`
	Status         InvoiceStatus `json:"status"`
	ReviewedBy     string        `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time    `json:"reviewed_at,omitempty"`
	Version        int64         `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Reconciled reports whether a verified amount has been recorded.
func (i Invoice) Reconciled() bool {
	return i.VerifiedAmount != nil
}

// Discrepancy is invoiced minus verified. It is signed: negative means the
// contractor under-billed. ok is false until the invoice is reconciled.
func (i Invoice) Discrepancy() (amount float64, ok bool) {
	if i.VerifiedAmount == nil {
		return 0, false
	}
	return i.InvoicedAmount - *i.VerifiedAmount, true
}

// PerformanceSample is one month of contractor performance. Samples are immutable.
type PerformanceSample struct {
	ID              string    `json:"id"`
	ContractID      string    `json:"contract_id"`
	Period          string    `json:"period"` // YYYY-MM
	OnTimePct       float64   `json:"on_time_pct"`
	Complaints      int       `json:"complaints"`
	SafetyIncidents int       `json:"safety_incidents"`
	RoutesCompleted int       `json:"routes_completed"`
	RoutesMissed    int       `json:"routes_missed"`
	CreatedAt       time.Time `json:"created_at"`
}

// InsuranceStatus is derived from the expiration date.
type InsuranceStatus string

const (
	InsuranceActive   InsuranceStatus = "active"
	InsuranceExpiring InsuranceStatus = "expiring"
	InsuranceExpired  InsuranceStatus = "expired"
)

// InsuranceRecord is a contractor's policy on file.
type InsuranceRecord struct {
	ID             string    `json:"id"`
	ContractID     string    `json:"contract_id"`
	PolicyNumber   string    `json:"policy_number"`
	Provider       string    `json:"provider"`
	CoverageAmount float64   `json:"coverage_amount"`
	ExpirationDate time.Time `json:"expiration_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// Status derives the policy state relative to now.
func (r InsuranceRecord) Status(now time.Time, horizon time.Duration) InsuranceStatus {
	if r.ExpirationDate.Before(now) {
		return InsuranceExpired
	}
	if !r.ExpirationDate.After(now.Add(horizon)) {
		return InsuranceExpiring
	}
	return InsuranceActive
}
