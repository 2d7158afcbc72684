package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockDonorRepository struct {
	mock.Mock
}

func (m *MockDonorRepository) GetByID(ctx context.Context, donorID int64) (*domain.Donor, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) CreateWithInstallments(ctx context.Context, plan *domain.PaymentPlan, installments []*domain.PlanInstallment) error {
	args := m.Called(ctx, plan, installments)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, planID uuid.UUID) (*domain.PaymentPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentPlan), args.Error(1)
}

func (m *MockPlanRepository) GetInstallments(ctx context.Context, planID uuid.UUID) ([]*domain.PlanInstallment, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PlanInstallment), args.Error(1)
}

func (m *MockPlanRepository) UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error {
	args := m.Called(ctx, planID, status)
	return args.Error(0)
}

func (m *MockPlanRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanRepository) GetUpcomingInstallments(ctx context.Context, from, to time.Time) ([]*domain.UpcomingInstallment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UpcomingInstallment), args.Error(1)
}

func (m *MockPlanRepository) MarkReminded(ctx context.Context, installmentID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, installmentID, at)
	return args.Error(0)
}

func (m *MockPlanRepository) CountCreatedByAgent(ctx context.Context, agentID int64, from, to time.Time) (int, error) {
	args := m.Called(ctx, agentID, from, to)
	return args.Int(0), args.Error(1)
}

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) GetByKey(ctx context.Context, key string) (*domain.MessageTemplate, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageTemplate), args.Error(1)
}

type MockCallQueueRepository struct {
	mock.Mock
}

func (m *MockCallQueueRepository) List(ctx context.Context, filter domain.QueueFilter, now time.Time) ([]*domain.CallQueueEntry, error) {
	args := m.Called(ctx, filter, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CallQueueEntry), args.Error(1)
}

func (m *MockCallQueueRepository) GetByID(ctx context.Context, entryID int64) (*domain.CallQueueEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CallQueueEntry), args.Error(1)
}

func (m *MockCallQueueRepository) RecordCall(ctx context.Context, entry *domain.CallQueueEntry, log *domain.CallLog) error {
	args := m.Called(ctx, entry, log)
	return args.Error(0)
}

func (m *MockCallQueueRepository) CountOpen(ctx context.Context, agentID int64) (int, error) {
	args := m.Called(ctx, agentID)
	return args.Int(0), args.Error(1)
}

func (m *MockCallQueueRepository) CountCallbacksDue(ctx context.Context, agentID int64, from, to time.Time) (int, error) {
	args := m.Called(ctx, agentID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockCallQueueRepository) OutcomeCounts(ctx context.Context, agentID int64, from, to time.Time) ([]domain.OutcomeCount, error) {
	args := m.Called(ctx, agentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutcomeCount), args.Error(1)
}

type MockMessageLogRepository struct {
	mock.Mock
}

func (m *MockMessageLogRepository) Create(ctx context.Context, log *domain.MessageLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
