package model

import "time"

// ResidencyDocument is proof-of-residency evidence attached to a registration.
// The file content lives in the object store; only its key is kept here.
type ResidencyDocument struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	DocumentType   string    `json:"document_type"`
	Filename       string    `json:"filename"`
	StoragePath    string    `json:"storage_path"`
	Size           int64     `json:"size"`
	ContentType    string    `json:"content_type"`
	CreatedAt      time.Time `json:"created_at"`
}

// Attestation is the signed residency statement for one registration and cycle.
type Attestation struct {
	RegistrationID string    `json:"registration_id"`
	SchoolYear     string    `json:"school_year"`
	Statement      string    `json:"statement"`
	SignerName     string    `json:"signer_name"`
	SignedAt       time.Time `json:"signed_at"`
}
