package email

import "context"

// Attachment is an inline file attached to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string, attachments []Attachment) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string, attachments []Attachment) error {
	return nil
}
