package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
	"districtops/internal/performance"
	"districtops/internal/service"
)

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) Create(ctx context.Context, districtID string, c model.Contract) (*model.Contract, error) {
	args := m.Called(ctx, districtID, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contract), args.Error(1)
}

func (m *MockContractService) Get(ctx context.Context, id string, now time.Time) (*service.ContractView, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ContractView), args.Error(1)
}

func (m *MockContractService) List(ctx context.Context, districtID string, now time.Time) ([]service.ContractView, error) {
	args := m.Called(ctx, districtID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ContractView), args.Error(1)
}

func (m *MockContractService) AddInsurance(ctx context.Context, contractID string, r model.InsuranceRecord) (*model.InsuranceRecord, error) {
	args := m.Called(ctx, contractID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InsuranceRecord), args.Error(1)
}

func (m *MockContractService) ListInsurance(ctx context.Context, contractID string, now time.Time) ([]service.InsuranceView, error) {
	args := m.Called(ctx, contractID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.InsuranceView), args.Error(1)
}

func (m *MockContractService) RecordPerformance(ctx context.Context, contractID string, smp model.PerformanceSample) (*model.PerformanceSample, error) {
	args := m.Called(ctx, contractID, smp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PerformanceSample), args.Error(1)
}

func (m *MockContractService) Rankings(ctx context.Context, districtID string) ([]performance.Rollup, error) {
	args := m.Called(ctx, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]performance.Rollup), args.Error(1)
}

func (m *MockContractService) Benchmark(ctx context.Context, districtID string) (*service.BenchmarkReport, error) {
	args := m.Called(ctx, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BenchmarkReport), args.Error(1)
}
