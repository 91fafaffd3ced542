package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
	"districtops/internal/review"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ApplyAction(ctx context.Context, actor model.Actor, ref model.EntityRef, action model.Action, notes string) (*review.Result, error) {
	args := m.Called(ctx, actor, ref, action, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Result), args.Error(1)
}

func (m *MockReviewService) CreateReport(ctx context.Context, districtID string, rep model.Report) (*model.Report, error) {
	args := m.Called(ctx, districtID, rep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReviewService) ListReports(ctx context.Context, districtID string, kind model.EntityKind) ([]model.Report, error) {
	args := m.Called(ctx, districtID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}
