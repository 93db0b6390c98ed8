package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"gopkg.in/gomail.v2"

	"forumregistrations/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SMTPConfig holds configuration for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
	SMTP        SMTPConfig
}

// NewMailer creates a mailer from config. Provider "ses" sends provider-side
// templates through AWS SES, "smtp" renders the embedded templates and sends
// them over SMTP; "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		if config.FromAddress == "" {
			return nil, fmt.Errorf("ses mailer: from address is required")
		}
		awsCfg := aws.Config{
			Region: config.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SES.AccessKeyID,
					config.SES.SecretAccessKey,
					"",
				),
			),
		}
		return &sesMailer{
			client: ses.NewFromConfig(awsCfg),
			source: formatAddress(config.FromAddress, config.FromName),
		}, nil
	case "smtp":
		if config.SMTP.Host == "" {
			return nil, fmt.Errorf("smtp mailer: host is required")
		}
		return &smtpMailer{
			dialer:      gomail.NewDialer(config.SMTP.Host, config.SMTP.Port, config.SMTP.User, config.SMTP.Password),
			renderer:    NewTemplateRenderer(),
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
		}, nil
	case "noop":
		return &noopMailer{}, nil
	default:
		log.Printf("[MAILER] Unknown email provider %q, using noop", config.Provider)
		return &noopMailer{}, nil
	}
}

func formatAddress(address, name string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

// sesAPI is the subset of the SES client used here.
type sesAPI interface {
	SendTemplatedEmail(ctx context.Context, params *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error)
}

type sesMailer struct {
	client sesAPI
	source string
}

func (s *sesMailer) SendTemplate(ctx context.Context, msg domain.TemplateMessage) error {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("encode template data: %w", err)
	}
	input := &ses.SendTemplatedEmailInput{
		Source: aws.String(s.source),
		Destination: &types.Destination{
			ToAddresses: []string{formatAddress(msg.To, msg.ToName)},
		},
		Template:     aws.String(msg.TemplateID),
		TemplateData: aws.String(string(data)),
	}
	result, err := s.client.SendTemplatedEmail(ctx, input)
	if err != nil {
		return &domain.ProviderError{Provider: "ses", Op: "send templated email", Message: err.Error()}
	}
	log.Printf("[MAILER] Email sent via SES. MessageID: %s", aws.ToString(result.MessageId))
	return nil
}

// smtpSender is satisfied by *gomail.Dialer.
type smtpSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpMailer struct {
	dialer      smtpSender
	renderer    domain.EmailTemplateRenderer
	fromAddress string
	fromName    string
}

func (s *smtpMailer) SendTemplate(_ context.Context, msg domain.TemplateMessage) error {
	subject, htmlBody, textBody, err := s.renderer.Render(msg.TemplateName, msg.Data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", msg.TemplateName, err)
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromAddress, s.fromName)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return &domain.ProviderError{Provider: "smtp", Op: "send email", Message: err.Error()}
	}
	log.Printf("[MAILER] Email sent via SMTP to %s (%s)", msg.To, msg.TemplateName)
	return nil
}

type noopMailer struct{}

func (n *noopMailer) SendTemplate(_ context.Context, msg domain.TemplateMessage) error {
	log.Println("[MAILER] Email would be sent (noop)", "to", msg.To, "template", msg.TemplateID)
	return nil
}
