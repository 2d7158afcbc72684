package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCallCenterService struct {
	mock.Mock
}

func (m *MockCallCenterService) PreviewSchedule(ctx context.Context, request *domain.CreatePaymentPlanRequest) (*domain.SchedulePreviewResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulePreviewResponse), args.Error(1)
}

func (m *MockCallCenterService) CreatePaymentPlan(ctx context.Context, request *domain.CreatePaymentPlanRequest) (*domain.CreatePaymentPlanResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatePaymentPlanResponse), args.Error(1)
}

func (m *MockCallCenterService) CancelPaymentPlan(ctx context.Context, planID uuid.UUID) (*domain.PaymentPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentPlan), args.Error(1)
}

func (m *MockCallCenterService) PreviewNotification(ctx context.Context, templateKey string, donorID int64) (*domain.NotificationPreview, error) {
	args := m.Called(ctx, templateKey, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationPreview), args.Error(1)
}

func (m *MockCallCenterService) SendNotification(ctx context.Context, request *domain.SendNotificationRequest) (*domain.SendNotificationResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SendNotificationResponse), args.Error(1)
}

func (m *MockCallCenterService) GetCallQueue(ctx context.Context, filter domain.QueueFilter) ([]*domain.CallQueueEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CallQueueEntry), args.Error(1)
}

func (m *MockCallCenterService) RecordCall(ctx context.Context, request *domain.RecordCallRequest) (*domain.RecordCallResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordCallResponse), args.Error(1)
}

func (m *MockCallCenterService) GetAgentDashboard(ctx context.Context, agentID int64, day string) (*domain.AgentDashboard, error) {
	args := m.Called(ctx, agentID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentDashboard), args.Error(1)
}
