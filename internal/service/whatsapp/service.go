package whatsapp

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/config"
	"github.com/mamadbah2/paintstock/internal/domain/models"
	client "github.com/mamadbah2/paintstock/pkg/clients/whatsapp"
)

// MessagingService describes the outbound messaging the scheduler and the
// HTTP layer rely on.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	SendReport(ctx context.Context, report string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg    config.WhatsAppConfig
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendReport delivers a report to the configured recipient.
func (s *MetaWhatsAppService) SendReport(ctx context.Context, report string) error {
	if s.cfg.ReportRecipient == "" {
		return errors.New("report recipient not configured")
	}
	return s.SendOutbound(ctx, models.OutboundMessageRequest{To: s.cfg.ReportRecipient, Message: report})
}

// SendOutbound sends a message, split into several when it exceeds the API limit.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	for i, part := range splitMessage(req.Message, client.MaxBodyLength) {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
		resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
			To:         req.To,
			Body:       part,
			PreviewURL: req.PreviewURL,
		})
		cancel()
		if err != nil {
			return err
		}

		fields := []zap.Field{zap.String("to", req.To), zap.Int("part", i+1)}
		if resp != nil && len(resp.Messages) > 0 {
			fields = append(fields, zap.String("message_id", resp.Messages[0].ID))
		}
		s.logger.Info("whatsapp message sent", fields...)
	}
	return nil
}

// splitMessage cuts text on line boundaries into chunks of at most limit
// runes. Single lines longer than limit are hard-wrapped.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var parts []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, strings.TrimRight(string(current), "\n"))
			current = current[:0]
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		if len(current)+len(runes) > limit {
			flush()
		}
		current = append(current, runes...)
	}
	flush()

	return parts
}
