package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
)

// MockReviewRepository stands in for the versioned status store.
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Load(ctx context.Context, ref model.EntityRef) (model.Snapshot, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(model.Snapshot), args.Error(1)
}

func (m *MockReviewRepository) Commit(ctx context.Context, snap model.Snapshot, status string, entry model.AuditEntry) error {
	args := m.Called(ctx, snap, status, entry)
	return args.Error(0)
}
