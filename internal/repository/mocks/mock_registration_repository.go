package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
)

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id string) (*model.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListBySchoolYear(ctx context.Context, districtID, schoolYear string) ([]model.Registration, error) {
	args := m.Called(ctx, districtID, schoolYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) AddDocument(ctx context.Context, doc *model.ResidencyDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRegistrationRepository) ListDocuments(ctx context.Context, registrationID string) ([]model.ResidencyDocument, error) {
	args := m.Called(ctx, registrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ResidencyDocument), args.Error(1)
}

func (m *MockRegistrationRepository) CountDocuments(ctx context.Context, registrationIDs []string) (map[string]int, error) {
	args := m.Called(ctx, registrationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockRegistrationRepository) UpsertAttestation(ctx context.Context, att *model.Attestation) error {
	args := m.Called(ctx, att)
	return args.Error(0)
}

func (m *MockRegistrationRepository) FindAttestation(ctx context.Context, registrationID, schoolYear string) (*model.Attestation, error) {
	args := m.Called(ctx, registrationID, schoolYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attestation), args.Error(1)
}
