package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/firetrack/backend/internal/config"
	emailProvider "github.com/firetrack/backend/pkg/email"
	mock_email "github.com/firetrack/backend/pkg/email/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func withTemplates(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "activation.html"), []byte("code {{.ActivationCode}}"), 0o600))

	prev := emailProvider.TemplatesDir
	emailProvider.TemplatesDir = dir
	t.Cleanup(func() { emailProvider.TemplatesDir = prev })
}

func enabledEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		Enabled:   true,
		Templates: config.EmailTemplates{Activation: "activation.html"},
	}
}

func TestEmailSender_SendActivationEmail(t *testing.T) {
	withTemplates(t)

	provider := &mock_email.EmailSender{}
	provider.On("Send", emailProvider.SendEmailInput{
		To:      "user@example.com",
		Subject: activationEmailSubject,
		Body:    "code 482913",
	}).Return(nil).Once()

	s := newEmailSender(provider, enabledEmailConfig())
	require.NoError(t, s.SendActivationEmail(context.Background(), "user@example.com", "482913"))
	provider.AssertExpectations(t)
}

func TestEmailSender_Disabled(t *testing.T) {
	provider := &mock_email.EmailSender{}

	s := newEmailSender(provider, config.EmailConfig{Enabled: false})
	require.NoError(t, s.SendActivationEmail(context.Background(), "user@example.com", "482913"))
	provider.AssertNotCalled(t, "Send", mock.Anything)
}

func TestEmailSender_ProviderError(t *testing.T) {
	withTemplates(t)

	sendErr := errors.New("smtp down")
	provider := &mock_email.EmailSender{}
	provider.On("Send", mock.Anything).Return(sendErr)

	s := newEmailSender(provider, enabledEmailConfig())
	assert.ErrorIs(t, s.SendActivationEmail(context.Background(), "user@example.com", "482913"), sendErr)
}

func TestEmailSender_MissingTemplate(t *testing.T) {
	withTemplates(t)

	provider := &mock_email.EmailSender{}
	cfg := enabledEmailConfig()
	cfg.Templates.Activation = "missing.html"

	s := newEmailSender(provider, cfg)
	assert.Error(t, s.SendActivationEmail(context.Background(), "user@example.com", "482913"))
	provider.AssertNotCalled(t, "Send", mock.Anything)
}
