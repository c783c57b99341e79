package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zekariasasaminew/campusEx/internal/telemetry"
)

// AuditPublisherMock stands in for the audit transport in emitter tests.
type AuditPublisherMock struct {
	mock.Mock
}

func (m *AuditPublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *AuditPublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ telemetry.Publisher = (*AuditPublisherMock)(nil)
