package model

import "time"

// EntityKind names a reviewable entity type. It also selects the backing table.
type EntityKind string

const (
	KindRegistration EntityKind = "registration"
	KindInvoice      EntityKind = "invoice"
	KindSafetyReport EntityKind = "safety_report"
	KindDriverReport EntityKind = "driver_report"
)

// Valid reports whether k is a known reviewable kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindRegistration, KindInvoice, KindSafetyReport, KindDriverReport:
		return true
	}
	return false
}

// ReviewStatus is the shared lifecycle of registrations and reports.
type ReviewStatus string

const (
	StatusPending     ReviewStatus = "pending"
	StatusApproved    ReviewStatus = "approved"
	StatusDenied      ReviewStatus = "denied"
	StatusUnderReview ReviewStatus = "under_review"
)

// Action is an admin-triggered review action.
type Action string

const (
	ActionApprove     Action = "approve"
	ActionDeny        Action = "deny"
	ActionFlag        Action = "flag"
	ActionRequestInfo Action = "request_info"

	// Invoice-only actions.
	ActionDispute   Action = "dispute"
	ActionReconcile Action = "reconcile"
)

// EntityRef identifies one reviewable entity.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// Snapshot is the versioned status of an entity as read from storage.
type Snapshot struct {
	Ref        EntityRef
	DistrictID string
	Status     string
	Version    int64
}

// AuditEntry is an immutable record of an action taken against an entity.
type AuditEntry struct {
	ID         string     `json:"id"`
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   string     `json:"entity_id"`
	DistrictID string     `json:"district_id"`
	ActorID    string     `json:"actor_id"`
	Action     Action     `json:"action"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Role is the capability the identity collaborator vouches for.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
	RoleStaff    Role = "staff"
)

// Actor is the authenticated caller as supplied by the identity collaborator.
type Actor struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	DistrictID string `json:"district_id"`
}

// CanReview reports whether the actor may invoke review actions.
func (a Actor) CanReview() bool {
	return a.Role == RoleAdmin || a.Role == RoleReviewer
}

// InDistrict reports whether the actor may touch entities of districtID.
// An actor without a district is not scoped.
func (a Actor) InDistrict(districtID string) bool {
	return a.DistrictID == "" || a.DistrictID == districtID
}

// Report is a reviewable safety or driver report filed against a contractor.
type Report struct {
	ID         string       `json:"id"`
	Kind       EntityKind   `json:"kind"`
	DistrictID string       `json:"district_id"`
	ContractID string       `json:"contract_id,omitempty"`
	Title      string       `json:"title"`
	Details    string       `json:"details"`
	Status     ReviewStatus `json:"status"`
	Version    int64        `json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
}
