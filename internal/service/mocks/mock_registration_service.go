package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
	"districtops/internal/service"
)

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Submit(ctx context.Context, districtID string, year model.SchoolYear, reg model.Registration) (*model.Registration, error) {
	args := m.Called(ctx, districtID, year, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationService) Get(ctx context.Context, actor model.Actor, id string) (*service.RegistrationView, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegistrationView), args.Error(1)
}

func (m *MockRegistrationService) List(ctx context.Context, f service.RegistrationFilter) ([]service.RegistrationView, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RegistrationView), args.Error(1)
}

func (m *MockRegistrationService) AttachDocument(ctx context.Context, registrationID string, up service.DocumentUpload) (*model.ResidencyDocument, error) {
	args := m.Called(ctx, registrationID, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResidencyDocument), args.Error(1)
}

func (m *MockRegistrationService) ListDocuments(ctx context.Context, registrationID string) ([]service.DocumentView, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentView), args.Error(1)
}

func (m *MockRegistrationService) SignAttestation(ctx context.Context, registrationID string, att model.Attestation) (*model.Attestation, error) {
	args := m.Called(ctx, registrationID, att)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attestation), args.Error(1)
}

func (m *MockRegistrationService) Reapply(ctx context.Context, registrationID string) (*model.Registration, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationService) Export(ctx context.Context, w io.Writer, f service.RegistrationFilter) error {
	args := m.Called(ctx, w, f)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}
