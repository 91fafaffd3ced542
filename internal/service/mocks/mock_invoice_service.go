package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
	"districtops/internal/repository"
	"districtops/internal/review"
	"districtops/internal/service"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, districtID string, inv model.Invoice) (*service.InvoiceView, error) {
	args := m.Called(ctx, districtID, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, id string) (*service.InvoiceView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, f repository.InvoiceFilter) ([]service.InvoiceView, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) Reconcile(ctx context.Context, actor model.Actor, id string, rec service.Reconciliation) (*service.InvoiceView, error) {
	args := m.Called(ctx, actor, id, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) Approve(ctx context.Context, actor model.Actor, id, notes string) (*review.Result, error) {
	args := m.Called(ctx, actor, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Result), args.Error(1)
}

func (m *MockInvoiceService) Dispute(ctx context.Context, actor model.Actor, id, notes string) (*review.Result, error) {
	args := m.Called(ctx, actor, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Result), args.Error(1)
}

func (m *MockInvoiceService) BulkApprove(ctx context.Context, actor model.Actor, ids []string, notes string) (*service.BatchReport, error) {
	args := m.Called(ctx, actor, ids, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchReport), args.Error(1)
}

func (m *MockInvoiceService) Summary(ctx context.Context, districtID string) (*service.InvoiceSummary, error) {
	args := m.Called(ctx, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceSummary), args.Error(1)
}
