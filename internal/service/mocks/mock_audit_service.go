package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
	"districtops/internal/service"
)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) ForEntity(ctx context.Context, actor model.Actor, ref model.EntityRef) ([]model.AuditEntry, error) {
	args := m.Called(ctx, actor, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}

func (m *MockAuditService) ForDistrict(ctx context.Context, districtID string, limit, offset int) (*service.AuditPage, error) {
	args := m.Called(ctx, districtID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuditPage), args.Error(1)
}
