package mailer

import (
	"context"
	"fmt"
	"time"
)

// InviteEmail is the data rendered into the invite templates.
type InviteEmail struct {
	To           string
	TripTitle    string
	InviterEmail string
	Link         string
	ExpiresAt    time.Time
}

// InviteMailer renders and sends collaborator invites.
type InviteMailer struct {
	transport Transport
	renderer  *Renderer
}

// NewInviteMailer returns an InviteMailer sending through t.
func NewInviteMailer(t Transport) *InviteMailer {
	return &InviteMailer{transport: t, renderer: NewRenderer()}
}

// SendInvite renders the "invite" templates for e and hands them to the transport.
func (m *InviteMailer) SendInvite(ctx context.Context, e InviteEmail) error {
	data := struct {
		InviteEmail
		ExpiresOn string
	}{
		InviteEmail: e,
		ExpiresOn:   e.ExpiresAt.UTC().Format("January 2, 2006"),
	}

	subject, html, text, err := m.renderer.Render("invite", data)
	if err != nil {
		return fmt.Errorf("mailer.InviteMailer.SendInvite: %w", err)
	}
	if err := m.transport.Send(ctx, Message{To: e.To, Subject: subject, HTML: html, Text: text}); err != nil {
		return fmt.Errorf("mailer.InviteMailer.SendInvite: %w", err)
	}
	return nil
}
