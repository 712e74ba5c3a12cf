package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/models"
)

const unknownSenderReply = "This number is not linked to a tiffin account. Please contact us to register it."

// ErrUnknownSender is what a Dispatcher returns for numbers it cannot match
// to a client. It is answered with a registration hint instead of failing.
var ErrUnknownSender = errors.New("unknown sender")

// WebhookService handles the Meta webhook callbacks.
type WebhookService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
}

// Dispatcher answers a client command.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

var _ WebhookService = (*MetaWhatsAppService)(nil)

// WithDispatcher enables replies to inbound messages.
func (s *MetaWhatsAppService) WithDispatcher(d Dispatcher) *MetaWhatsAppService {
	s.dispatcher = d
	return s
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}
	if s.cfg.VerifyToken == "" || verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

// HandleWebhook answers every inbound message of payload. Status callbacks
// carry no messages and are ignored. The first failure is returned after all
// messages have been tried.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}
	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := strings.TrimSpace(msg.Body())
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		return nil
	}
	if s.dispatcher == nil {
		s.logger.Warn("inbound message dropped, no dispatcher", zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case errors.Is(err, ErrUnknownSender):
		reply = unknownSenderReply
	case err != nil:
		return fmt.Errorf("dispatch %s: %w", cmd.Type, err)
	}

	return s.send(ctx, msg.From, reply, false)
}
