package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
	"districtops/internal/service"
)

type MockBidService struct {
	mock.Mock
}

func (m *MockBidService) CreateSolicitation(ctx context.Context, districtID string, sol model.BidSolicitation) (*model.BidSolicitation, error) {
	args := m.Called(ctx, districtID, sol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BidSolicitation), args.Error(1)
}

func (m *MockBidService) GetSolicitation(ctx context.Context, id string) (*model.BidSolicitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BidSolicitation), args.Error(1)
}

func (m *MockBidService) AdvanceSolicitation(ctx context.Context, id string, to model.SolicitationStatus) (*model.BidSolicitation, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BidSolicitation), args.Error(1)
}

func (m *MockBidService) SubmitResponse(ctx context.Context, solicitationID string, resp model.BidResponse) (*model.BidResponse, error) {
	args := m.Called(ctx, solicitationID, resp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BidResponse), args.Error(1)
}

func (m *MockBidService) RankResponses(ctx context.Context, solicitationID string) ([]service.RankedResponse, error) {
	args := m.Called(ctx, solicitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RankedResponse), args.Error(1)
}

func (m *MockBidService) SetResponseStatus(ctx context.Context, solicitationID, responseID string, status model.BidResponseStatus) (*model.BidResponse, error) {
	args := m.Called(ctx, solicitationID, responseID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BidResponse), args.Error(1)
}
