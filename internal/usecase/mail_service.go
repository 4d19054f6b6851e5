package usecase

import (
	"context"
	"fmt"
	"strings"
)

// MailDeliveryService hands queued verification mails to the delivery mailer.
type MailDeliveryService struct {
	delivery VerificationMailer
}

func NewMailDeliveryService(delivery VerificationMailer) *MailDeliveryService {
	return &MailDeliveryService{delivery: delivery}
}

func (s *MailDeliveryService) DeliverVerification(ctx context.Context, mail VerificationMail) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MailDeliveryService.DeliverVerification")
	defer span.End()

	if strings.TrimSpace(mail.To) == "" || strings.TrimSpace(mail.Token) == "" {
		return fmt.Errorf("%w: to and token are required", ErrInvalidInput)
	}
	if err := s.delivery.SendVerification(ctx, mail); err != nil {
		return fmt.Errorf("%w: deliver verification: %v", ErrDependencyUnavailable, err)
	}
	return nil
}
