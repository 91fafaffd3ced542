package model

import "time"

// SolicitationStatus is the lifecycle of a bid solicitation.
type SolicitationStatus string

const (
	SolicitationDraft   SolicitationStatus = "draft"
	SolicitationOpen    SolicitationStatus = "open"
	SolicitationClosed  SolicitationStatus = "closed"
	SolicitationAwarded SolicitationStatus = "awarded"
)

// solicitationFlow lists the single legal successor of each status.
var solicitationFlow = map[SolicitationStatus]SolicitationStatus{
	SolicitationDraft:  SolicitationOpen,
	SolicitationOpen:   SolicitationClosed,
	SolicitationClosed: SolicitationAwarded,
}

// CanAdvanceTo reports whether s may move to next.
func (s SolicitationStatus) CanAdvanceTo(next SolicitationStatus) bool {
	return solicitationFlow[s] == next
}

// BidSolicitation is a district request for contractor bids.
type BidSolicitation struct {
	ID            string             `json:"id"`
	DistrictID    string             `json:"district_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	RouteSpec     string             `json:"route_spec"`
	OpenDate      time.Time          `json:"open_date"`
	CloseDate     time.Time          `json:"close_date"`
	Status        SolicitationStatus `json:"status"`
	ReferenceRate float64            `json:"reference_rate"`
	CreatedAt     time.Time          `json:"created_at"`
}

// BidResponseStatus is the review state of a contractor's response.
type BidResponseStatus string

const (
	BidSubmitted   BidResponseStatus = "submitted"
	BidShortlisted BidResponseStatus = "shortlisted"
	BidAwarded     BidResponseStatus = "awarded"
	BidRejected    BidResponseStatus = "rejected"
)

// BidResponse is a contractor's priced proposal.
type BidResponse struct {
	ID             string            `json:"id"`
	SolicitationID string            `json:"solicitation_id"`
	ContractorName string            `json:"contractor_name"`
	ProposedRate   float64           `json:"proposed_rate"`
	FleetDetails   string            `json:"fleet_details"`
	SafetyRecord   string            `json:"safety_record"`
	TotalScore     float64           `json:"total_score"`
	Status         BidResponseStatus `json:"status"`
	SubmittedAt    time.Time         `json:"submitted_at"`
}
