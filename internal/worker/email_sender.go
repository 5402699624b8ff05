package worker

import (
	"context"
	"fmt"

	"github.com/firetrack/backend/internal/config"
	emailProvider "github.com/firetrack/backend/pkg/email"
	"github.com/firetrack/backend/pkg/logger"

	"go.uber.org/zap"
)

const activationEmailSubject = "Activate your Firetrack account"

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type activationEmailInput struct {
	ActivationCode string
}

func (s *emailSender) SendActivationEmail(ctx context.Context, email string, activationCode string) error {
	if !s.config.Enabled {
		logger.Debug("email delivery disabled, activation email skipped", zap.String("email", email))
		return nil
	}

	templateInput := activationEmailInput{activationCode}
	sendInput := emailProvider.SendEmailInput{Subject: activationEmailSubject, To: email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.Activation, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
