// Package mailer delivers transactional email. Transports are pluggable:
// AWS SES in production, a logging no-op everywhere else.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/pkordes/trip-planner/backend/internal/logx"
)

// Provider names accepted by NewTransport.
const (
	ProviderSES  = "ses"
	ProviderNoop = "noop"
)

// Message is one fully rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport sends a rendered Message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SESConfig holds the AWS credentials for the SES transport.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Config selects and configures a Transport.
type Config struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig

	// LogBody makes the noop transport log the plain-text body, invite link
	// included. Never set it in production.
	LogBody bool
}

// NewTransport builds the Transport named by cfg.Provider.
func NewTransport(cfg Config, log *slog.Logger) (Transport, error) {
	switch cfg.Provider {
	case ProviderSES:
		if cfg.SES.Region == "" || cfg.SES.AccessKeyID == "" || cfg.SES.SecretAccessKey == "" {
			return nil, fmt.Errorf("mailer.NewTransport: ses requires region and credentials")
		}
		awsCfg := aws.Config{
			Region: cfg.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, ""),
			),
		}
		return newSESTransport(ses.NewFromConfig(awsCfg), cfg.FromAddress, cfg.FromName), nil
	case ProviderNoop, "":
		return &noopTransport{log: log, logBody: cfg.LogBody}, nil
	default:
		return nil, fmt.Errorf("mailer.NewTransport: unknown provider %q", cfg.Provider)
	}
}

// sesAPI is the slice of *ses.Client the transport uses.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesTransport struct {
	client sesAPI
	source string
}

func newSESTransport(client sesAPI, fromAddress, fromName string) *sesTransport {
	source := fromAddress
	if fromName != "" {
		source = fmt.Sprintf("%s <%s>", fromName, fromAddress)
	}
	return &sesTransport{client: client, source: source}
}

func (s *sesTransport) Send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Source:      aws.String(s.source),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: utf8Content(msg.Subject),
			Body:    &types.Body{},
		},
	}
	if msg.HTML != "" {
		input.Message.Body.Html = utf8Content(msg.HTML)
	}
	if msg.Text != "" {
		input.Message.Body.Text = utf8Content(msg.Text)
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("mailer.ses.Send: %w", err)
	}
	logx.FromContext(ctx).InfoContext(ctx, "email sent", "provider", ProviderSES, "message_id", aws.ToString(out.MessageId))
	return nil
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

type noopTransport struct {
	log     *slog.Logger
	logBody bool
}

func (n *noopTransport) Send(ctx context.Context, msg Message) error {
	log := n.log
	if log == nil {
		log = logx.FromContext(ctx)
	}
	attrs := []any{"to", msg.To, "subject", msg.Subject}
	if n.logBody {
		attrs = append(attrs, "body", msg.Text)
	}
	log.InfoContext(ctx, "email not sent (noop transport)", attrs...)
	return nil
}
