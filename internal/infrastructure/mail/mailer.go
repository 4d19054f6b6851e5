package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/paintball-league/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/paintball-league/internal/platform/logging"
	"github.com/riskibarqy/paintball-league/internal/usecase"
)

// SendVerificationJobPath is the internal endpoint queued mails are delivered to.
const SendVerificationJobPath = "/v1/internal/jobs/send-verification"

// LogMailer records that a verification mail was issued without sending it.
// It is for local development; the link and token are never logged.
type LogMailer struct {
	logger *logging.Logger
}

func NewLogMailer(logger *logging.Logger) *LogMailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogMailer{logger: logger.Named("mail")}
}

func (m *LogMailer) SendVerification(ctx context.Context, mail usecase.VerificationMail) error {
	m.logger.InfoContext(ctx, "verification email not sent (log driver)",
		"user_id", mail.UserID,
		"to_domain", recipientDomain(mail.To),
	)
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, job jobqueue.Job) error
}

// QueueMailer defers delivery to a job queue that calls back
// SendVerificationJobPath.
type QueueMailer struct {
	publisher Publisher
}

func NewQueueMailer(publisher Publisher) *QueueMailer {
	return &QueueMailer{publisher: publisher}
}

func (m *QueueMailer) SendVerification(ctx context.Context, mail usecase.VerificationMail) error {
	err := m.publisher.Publish(ctx, jobqueue.Job{
		Path:            SendVerificationJobPath,
		Payload:         mail,
		DeduplicationID: "verify-" + mail.Token,
	})
	if err != nil {
		return fmt.Errorf("queue verification mail: %w", err)
	}
	return nil
}

func recipientDomain(addr string) string {
	if _, domain, ok := strings.Cut(strings.TrimSpace(addr), "@"); ok {
		return strings.ToLower(domain)
	}
	return ""
}
