package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"districtops/internal/apperr"
	"districtops/internal/export"
	"districtops/internal/flags"
	"districtops/internal/metrics"
	"districtops/internal/model"
	"districtops/internal/repository"
	"districtops/internal/storage"
)

// ErrReaderNil is returned when a document upload has no body.
var ErrReaderNil = apperr.Validation("document content is required")

// RegistrationView is a registration with its read-time flags.
type RegistrationView struct {
	model.Registration
	DocumentCount int          `json:"document_count"`
	Flags         []flags.Flag `json:"flags"`
}

// RegistrationFilter selects registrations of one district and school year.
// Status and Flag are optional.
type RegistrationFilter struct {
	DistrictID string
	SchoolYear model.SchoolYear
	Status     model.ReviewStatus
	Flag       flags.Flag
}

// DocumentUpload is one residency document to attach.
type DocumentUpload struct {
	Reader       io.Reader
	Filename     string
	ContentType  string
	Size         int64
	DocumentType string
}

// DocumentView is a stored document with a time-limited retrieval link.
type DocumentView struct {
	model.ResidencyDocument
	URL string `json:"url"`
}

// RegistrationService covers intake, flagged listing and export of registrations.
type RegistrationService interface {
	// Submit validates and stores a new pending registration. An empty
	// SchoolYear on reg defaults to year.
	Submit(ctx context.Context, districtID string, year model.SchoolYear, reg model.Registration) (*model.Registration, error)

	// Get returns a registration with its flags recomputed. Registrations of
	// another district are refused.
	Get(ctx context.Context, actor model.Actor, id string) (*RegistrationView, error)

	// List returns flagged registrations matching f.
	List(ctx context.Context, f RegistrationFilter) ([]RegistrationView, error)

	// AttachDocument uploads the content to the document store and records it.
	// The stored object is removed again when the record cannot be saved.
	AttachDocument(ctx context.Context, registrationID string, up DocumentUpload) (*model.ResidencyDocument, error)

	// ListDocuments returns the registration's documents with presigned links.
	ListDocuments(ctx context.Context, registrationID string) ([]DocumentView, error)

	// SignAttestation stores the canonical attestation for the registration's
	// school year, replacing an earlier one.
	SignAttestation(ctx context.Context, registrationID string, att model.Attestation) (*model.Attestation, error)

	// Reapply clones a registration into the next school year and grade. A
	// registration can be carried forward once.
	Reapply(ctx context.Context, registrationID string) (*model.Registration, error)

	// Export writes the filtered registrations as CSV.
	Export(ctx context.Context, w io.Writer, f RegistrationFilter) error
}

type registrationService struct {
	repo          repository.RegistrationRepository
	docs          storage.Storage
	detector      *flags.Detector
	metrics       *metrics.Metrics
	presignExpiry time.Duration
	now           func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo repository.RegistrationRepository, docs storage.Storage, detector *flags.Detector, mt *metrics.Metrics, presignExpiry time.Duration) RegistrationService {
	if detector == nil {
		detector = flags.NewDetector(flags.DefaultMultiRegistrationThreshold)
	}
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &registrationService{
		repo:          repo,
		docs:          docs,
		detector:      detector,
		metrics:       mt,
		presignExpiry: presignExpiry,
		now:           utcNow,
	}
}

func (s *registrationService) Submit(ctx context.Context, districtID string, year model.SchoolYear, reg model.Registration) (*model.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.Submit")
	defer span.End()

	if reg.SchoolYear != "" {
		parsed, err := model.ParseSchoolYear(reg.SchoolYear)
		if err != nil {
			return nil, fail(span, apperr.Validation("%v", err))
		}
		year = parsed
	}
	reg.SchoolYear = year.String()
	reg.DistrictID = districtID
	reg.Address = reg.Address.Normalize()
	if err := validateRegistration(reg); err != nil {
		return nil, fail(span, err)
	}

	reg.ID = newID()
	reg.Status = model.StatusPending
	reg.PriorRegistrationID = ""
	reg.CreatedAt = s.now()

	stored, err := s.repo.Create(ctx, &reg)
	if err != nil {
		return nil, fail(span, translate(err, "registration", reg.ID, "create"))
	}
	span.SetAttributes(attribute.String("registration.id", stored.ID))
	return stored, nil
}

func validateRegistration(reg model.Registration) error {
	if err := firstErr(
		required("district_id", reg.DistrictID),
		required("student_name", reg.StudentName),
		required("grade", reg.Grade),
		required("school", reg.School),
		required("address.line", reg.Address.Line),
		required("address.city", reg.Address.City),
		required("address.zip", reg.Address.Zip),
	); err != nil {
		return err
	}
	if reg.DateOfBirth.IsZero() {
		return apperr.Validation("date_of_birth is required")
	}
	if reg.Grade != "12" {
		if _, err := model.NextGrade(reg.Grade); err != nil {
			return apperr.Validation("%v", err)
		}
	}
	return nil
}

func (s *registrationService) Get(ctx context.Context, actor model.Actor, id string) (*RegistrationView, error) {
	ctx, span := tracer.Start(ctx, "registration.Get")
	defer span.End()

	if id == "" {
		return nil, fail(span, apperr.Validation("id is required"))
	}
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, translate(err, "registration", id, "load"))
	}
	if !actor.InDistrict(reg.DistrictID) {
		return nil, fail(span, apperr.OutsideDistrict("registration", id))
	}
	siblings, err := s.repo.ListBySchoolYear(ctx, reg.DistrictID, reg.SchoolYear)
	if err != nil {
		return nil, fail(span, translate(err, "registration", id, "list"))
	}
	views, err := s.flag(ctx, siblings)
	if err != nil {
		return nil, fail(span, err)
	}
	for i := range views {
		if views[i].ID == id {
			return &views[i], nil
		}
	}
	// Concurrently moved out of its school year; flag it alongside the old siblings.
	views, err = s.flag(ctx, append(siblings, *reg))
	if err != nil {
		return nil, fail(span, err)
	}
	return &views[len(views)-1], nil
}

func (s *registrationService) List(ctx context.Context, f RegistrationFilter) ([]RegistrationView, error) {
	ctx, span := tracer.Start(ctx, "registration.List")
	defer span.End()

	if f.DistrictID == "" {
		return nil, fail(span, apperr.Validation("district_id is required"))
	}
	regs, err := s.repo.ListBySchoolYear(ctx, f.DistrictID, f.SchoolYear.String())
	if err != nil {
		return nil, fail(span, translate(err, "registration", f.DistrictID, "list"))
	}
	views, err := s.flag(ctx, regs)
	if err != nil {
		return nil, fail(span, err)
	}

	out := make([]RegistrationView, 0, len(views))
	for _, v := range views {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.Flag != "" && !flags.Has(v.Flags, f.Flag) {
			continue
		}
		out = append(out, v)
	}
	span.SetAttributes(attribute.Int("registration.count", len(out)))
	return out, nil
}

// flag computes flags for every registration in regs against regs as the
// sibling population.
func (s *registrationService) flag(ctx context.Context, regs []model.Registration) ([]RegistrationView, error) {
	ids := make([]string, len(regs))
	for i, r := range regs {
		ids[i] = r.ID
	}
	docCounts := map[string]int{}
	if len(ids) > 0 {
		var err error
		docCounts, err = s.repo.CountDocuments(ctx, ids)
		if err != nil {
			return nil, apperr.Internal("failed to count residency documents", err)
		}
	}

	counts := flags.AddressCounts(regs)
	views := make([]RegistrationView, len(regs))
	for i, r := range regs {
		fs := s.detector.Detect(r, docCounts[r.ID], counts)
		for _, f := range fs {
			s.metrics.ObserveFlag(string(f))
		}
		views[i] = RegistrationView{Registration: r, DocumentCount: docCounts[r.ID], Flags: fs}
	}
	return views, nil
}

func (s *registrationService) AttachDocument(ctx context.Context, registrationID string, up DocumentUpload) (*model.ResidencyDocument, error) {
	ctx, span := tracer.Start(ctx, "registration.AttachDocument")
	defer span.End()

	if up.Reader == nil {
		return nil, fail(span, ErrReaderNil)
	}
	if err := required("document type", up.DocumentType); err != nil {
		return nil, fail(span, err)
	}
	if _, err := s.repo.FindByID(ctx, registrationID); err != nil {
		return nil, fail(span, translate(err, "registration", registrationID, "load"))
	}

	docID := newID()
	key := storage.DocumentKey(registrationID, docID, up.Filename)
	info, err := s.docs.Put(ctx, key, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata: map[string]string{
			"original-filename": up.Filename,
			"document-type":     up.DocumentType,
		},
	})
	if err != nil {
		return nil, fail(span, apperr.Internal("failed to upload residency document", fmt.Errorf("upload to storage: %w", err)))
	}

	doc := &model.ResidencyDocument{
		ID:             docID,
		RegistrationID: registrationID,
		DocumentType:   up.DocumentType,
		Filename:       up.Filename,
		StoragePath:    info.Key,
		Size:           info.Size,
		ContentType:    info.ContentType,
		CreatedAt:      s.now(),
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		if delErr := s.docs.Delete(ctx, key); delErr != nil {
			err = fmt.Errorf("db save failed: %v; rollback delete failed: %w", err, delErr)
		}
		return nil, fail(span, translate(err, "registration", registrationID, "record document for"))
	}
	return doc, nil
}

func (s *registrationService) ListDocuments(ctx context.Context, registrationID string) ([]DocumentView, error) {
	ctx, span := tracer.Start(ctx, "registration.ListDocuments")
	defer span.End()

	if _, err := s.repo.FindByID(ctx, registrationID); err != nil {
		return nil, fail(span, translate(err, "registration", registrationID, "load"))
	}
	docs, err := s.repo.ListDocuments(ctx, registrationID)
	if err != nil {
		return nil, fail(span, translate(err, "registration", registrationID, "list documents for"))
	}
	out := make([]DocumentView, len(docs))
	for i, d := range docs {
		url, err := s.docs.PresignGet(ctx, d.StoragePath, s.presignExpiry)
		if err != nil {
			return nil, fail(span, apperr.Internal("failed to presign residency document", err))
		}
		out[i] = DocumentView{ResidencyDocument: d, URL: url}
	}
	return out, nil
}

func (s *registrationService) SignAttestation(ctx context.Context, registrationID string, att model.Attestation) (*model.Attestation, error) {
	ctx, span := tracer.Start(ctx, "registration.SignAttestation")
	defer span.End()

	if err := firstErr(required("signer_name", att.SignerName), required("statement", att.Statement)); err != nil {
		return nil, fail(span, err)
	}
	reg, err := s.repo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, fail(span, translate(err, "registration", registrationID, "load"))
	}

	att.RegistrationID = reg.ID
	att.SchoolYear = reg.SchoolYear
	att.SignedAt = s.now()
	if err := s.repo.UpsertAttestation(ctx, &att); err != nil {
		return nil, fail(span, translate(err, "registration", registrationID, "sign attestation for"))
	}
	return &att, nil
}

func (s *registrationService) Reapply(ctx context.Context, registrationID string) (*model.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.Reapply")
	defer span.End()

	prior, err := s.repo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, fail(span, translate(err, "registration", registrationID, "load"))
	}
	year, err := model.ParseSchoolYear(prior.SchoolYear)
	if err != nil {
		return nil, fail(span, apperr.Internal("stored registration has an invalid school year", err))
	}
	grade, err := model.NextGrade(prior.Grade)
	if err != nil {
		return nil, fail(span, apperr.Validation("registration %s cannot reapply: %v", prior.ID, err))
	}

	next := model.Registration{
		ID:                    newID(),
		DistrictID:            prior.DistrictID,
		StudentName:           prior.StudentName,
		DateOfBirth:           prior.DateOfBirth,
		Grade:                 grade,
		School:                prior.School,
		Address:               prior.Address,
		SchoolYear:            year.Next().String(),
		Programs:              prior.Programs,
		DistrictBoundaryCheck: prior.DistrictBoundaryCheck,
		Status:                model.StatusPending,
		PriorRegistrationID:   prior.ID,
		CreatedAt:             s.now(),
	}
	stored, err := s.repo.Create(ctx, &next)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, fail(span, apperr.Validation("registration %s has already been reapplied", prior.ID))
	}
	if err != nil {
		return nil, fail(span, translate(err, "registration", next.ID, "create"))
	}
	return stored, nil
}

func (s *registrationService) Export(ctx context.Context, w io.Writer, f RegistrationFilter) error {
	views, err := s.List(ctx, f)
	if err != nil {
		return err
	}
	rows := make([]export.Row, len(views))
	for i, v := range views {
		rows[i] = export.Row{Registration: v.Registration, DocumentCount: v.DocumentCount, Flags: v.Flags}
	}
	if err := export.WriteCSV(w, rows); err != nil {
		return apperr.Internal("failed to write registration export", err)
	}
	return nil
}
