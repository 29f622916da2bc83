package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestrateiq/internal/common/config"
	commonerrors "orchestrateiq/internal/common/errors"
	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/models"
)

type fakeEmail struct {
	from, to, subject, body string
	calls                   int
	err                     error
}

func (f *fakeEmail) SendSimpleEmail(ctx context.Context, from, to, subject, body string) error {
	f.calls++
	f.from, f.to, f.subject, f.body = from, to, subject, body
	return f.err
}

type fakeSNS struct {
	topic, subject, message string
	calls                   int
	err                     error
}

func (f *fakeSNS) PublishToTopic(ctx context.Context, topicARN, subject, message string) error {
	f.calls++
	f.topic, f.subject, f.message = topicARN, subject, message
	return f.err
}

func notifyConfig(email, sns bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = email
	cfg.Email.FromEmail = "agent@example.com"
	cfg.Email.ToEmail = "ops@example.com"
	cfg.SNS.Enabled = sns
	cfg.SNS.TopicARN = "arn:aws:sns:us-east-1:123456789012:actions"
	return cfg
}

func sampleActions() []models.Action {
	return []models.Action{
		models.NewAction("escalate_ticket", "ticket: T001", map[string]interface{}{"ticket_id": "T001"}),
		models.NewAction("approve_invoice", "invoice: INV-1", map[string]interface{}{"invoice_id": "INV-1"}),
	}
}

func TestNotifyActionsEmail(t *testing.T) {
	email := &fakeEmail{}
	s := NewSender(notifyConfig(true, false), email, nil, logger.NewNoOpLogger())

	err := s.NotifyActions(context.Background(), "approve invoices", sampleActions())
	require.NoError(t, err)

	assert.Equal(t, 1, email.calls)
	assert.Equal(t, "agent@example.com", email.from)
	assert.Equal(t, "ops@example.com", email.to)
	assert.Equal(t, "2 action(s) triggered", email.subject)
	assert.Contains(t, email.body, "Query: approve invoices")
	assert.Contains(t, email.body, "- escalate_ticket (ticket: T001)")
	assert.Contains(t, email.body, "- approve_invoice (invoice: INV-1)")
}

func TestNotifyActionsBothChannels(t *testing.T) {
	email := &fakeEmail{}
	sns := &fakeSNS{}
	s := NewSender(notifyConfig(true, true), email, sns, logger.NewNoOpLogger())

	err := s.NotifyActions(context.Background(), "q", sampleActions())
	require.NoError(t, err)

	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, sns.calls)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:actions", sns.topic)
}

func TestNotifyActionsEmailFailureStillPublishes(t *testing.T) {
	email := &fakeEmail{err: errors.New("throttled")}
	sns := &fakeSNS{}
	s := NewSender(notifyConfig(true, true), email, sns, logger.NewNoOpLogger())

	err := s.NotifyActions(context.Background(), "q", sampleActions())
	require.Error(t, err)
	assert.Equal(t, 1, sns.calls)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeNotificationSendFailed, stdErr.Code)
}

func TestNotifyActionsNoActions(t *testing.T) {
	email := &fakeEmail{}
	s := NewSender(notifyConfig(true, false), email, nil, logger.NewNoOpLogger())

	err := s.NotifyActions(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, email.calls)
}

func TestNewDisabledReturnsNil(t *testing.T) {
	s, err := New(context.Background(), notifyConfig(false, false), logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Nil(t, s)
}
