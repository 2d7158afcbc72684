package mocks

import (
	"context"

	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) IsWhatsAppAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockDispatcher) SendFromTemplate(ctx context.Context, req domain.SendRequest) *domain.SendResult {
	args := m.Called(ctx, req)
	return args.Get(0).(*domain.SendResult)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTransport) Send(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}
