// Package notify delivers an out-of-band digest of the actions a workflow
// triggered. Both channels are disabled by default; the agent works fully
// without them.
package notify

import (
	"context"
	"fmt"
	"strings"

	"orchestrateiq/internal/common/aws"
	"orchestrateiq/internal/common/config"
	commonerrors "orchestrateiq/internal/common/errors"
	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/models"
)

// EmailSender is the SES surface the sender needs.
type EmailSender interface {
	SendSimpleEmail(ctx context.Context, from, to, subject, body string) error
}

// TopicPublisher is the SNS surface the sender needs.
type TopicPublisher interface {
	PublishToTopic(ctx context.Context, topicARN, subject, message string) error
}

// Sender fans an action digest out to the enabled channels.
type Sender struct {
	cfg    config.NotificationConfig
	email  EmailSender
	sns    TopicPublisher
	logger logger.Logger
}

// NewSender wires a sender from existing channel clients. Either client may
// be nil; a nil client disables that channel regardless of configuration.
func NewSender(cfg config.NotificationConfig, email EmailSender, sns TopicPublisher, log logger.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		email:  email,
		sns:    sns,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// New builds a sender with real AWS clients for the enabled channels.
// Returns nil when no channel is enabled.
func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Sender, error) {
	if !cfg.Email.Enabled && !cfg.SNS.Enabled {
		return nil, nil
	}

	var email EmailSender
	if cfg.Email.Enabled {
		c, err := aws.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		email = c
	}

	var sns TopicPublisher
	if cfg.SNS.Enabled {
		c, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		sns = c
	}

	return NewSender(cfg, email, sns, log), nil
}

// NotifyActions sends the digest to every enabled channel. A channel failure
// is reported but does not stop the other channel.
func (s *Sender) NotifyActions(ctx context.Context, query string, actions []models.Action) error {
	if len(actions) == 0 {
		return nil
	}

	subject := fmt.Sprintf("%d action(s) triggered", len(actions))
	body := buildDigest(query, actions)

	var firstErr error
	if s.cfg.Email.Enabled && s.email != nil {
		if err := s.email.SendSimpleEmail(ctx, s.cfg.Email.FromEmail, s.cfg.Email.ToEmail, subject, body); err != nil {
			s.logger.Warn("email digest failed", map[string]interface{}{"error": err.Error()})
			firstErr = commonerrors.NewNotificationSendFailedError("email", err)
		}
	}
	if s.cfg.SNS.Enabled && s.sns != nil {
		if err := s.sns.PublishToTopic(ctx, s.cfg.SNS.TopicARN, subject, body); err != nil {
			s.logger.Warn("sns digest failed", map[string]interface{}{"error": err.Error()})
			if firstErr == nil {
				firstErr = commonerrors.NewNotificationSendFailedError("sns", err)
			}
		}
	}
	return firstErr
}

// buildDigest renders the plain-text body listing each action.
func buildDigest(query string, actions []models.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nTriggered actions:\n", query)
	for _, a := range actions {
		fmt.Fprintf(&b, "- %s (%s) at %s\n", a.ActionType, a.Target, a.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}
