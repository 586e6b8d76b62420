package mocks

import (
	"context"

	"docflow/internal/model"
	"docflow/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockValidationFlowRepository struct {
	mock.Mock
}

var _ repository.ValidationFlowRepository = (*MockValidationFlowRepository)(nil)

func (m *MockValidationFlowRepository) Create(ctx context.Context, flow *model.ValidationFlow) error {
	args := m.Called(ctx, flow)
	return args.Error(0)
}

func (m *MockValidationFlowRepository) FindByID(ctx context.Context, id string) (*model.ValidationFlow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValidationFlow), args.Error(1)
}

func (m *MockValidationFlowRepository) Update(ctx context.Context, flow *model.ValidationFlow) error {
	args := m.Called(ctx, flow)
	return args.Error(0)
}

// MockTransactor runs the callback against Repos unless an error is configured
// for WithinTx.
type MockTransactor struct {
	mock.Mock
	Repos repository.Repositories
}

var _ repository.Transactor = (*MockTransactor)(nil)

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Repos)
}
