package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/metrics"
)

var messageTracer = otel.Tracer("message-service")

// MessageService persists inbound chat messages and hands them to the router.
// Persistence happens-before fan-out: no recipient ever sees a message the
// store has not acknowledged.
type MessageService struct {
	repo         domain.MessageRepository
	router       *Router
	storeTimeout time.Duration
	historyLimit int
	log          *slog.Logger
}

func NewMessageService(log *slog.Logger, repo domain.MessageRepository, router *Router, storeTimeout time.Duration, historyLimit int) *MessageService {
	return &MessageService{
		log:          log,
		repo:         repo,
		router:       router,
		storeTimeout: storeTimeout,
		historyLimit: historyLimit,
	}
}

// Send builds a message from the inbound request, persists it, and fans the
// stored form out. A store failure is fatal to this operation only and is
// reported to the caller; nothing is delivered.
func (s *MessageService) Send(ctx context.Context, sender *domain.User, req domain.ChatMessageRequest) (*domain.StoredMessage, error) {
	ctx, span := messageTracer.Start(ctx, "MessageService.Send", trace.WithAttributes(
		attribute.String("sender_id", sender.ID.String()),
	))
	defer span.End()

	msg, err := buildMessage(sender, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	stored, err := s.repo.Append(storeCtx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		metrics.StoreErrorsTotal.WithLabelValues("append").Inc()
		s.log.ErrorContext(ctx, "messages - append failed", "sender_id", sender.ID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	metrics.MessagesPersistedTotal.WithLabelValues(string(stored.Kind)).Inc()
	span.SetAttributes(attribute.String("message_id", stored.ID.String()))

	s.router.DeliverMessage(ctx, stored)
	return stored, nil
}

// History returns the most recent messages in ascending timestamp order,
// bounded by the configured replay limit and the store timeout.
func (s *MessageService) History(ctx context.Context) ([]domain.StoredMessage, error) {
	ctx, span := messageTracer.Start(ctx, "MessageService.History")
	defer span.End()
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	msgs, err := s.repo.Recent(storeCtx, s.historyLimit)
	if err != nil {
		span.RecordError(err)
		metrics.StoreErrorsTotal.WithLabelValues("recent").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	span.SetAttributes(attribute.Int("message_count", len(msgs)))
	return msgs, nil
}

// buildMessage applies the kind defaulting the original clients rely on:
// an explicit kind wins, otherwise a file URL means a file message and a bare
// body means text.
func buildMessage(sender *domain.User, req domain.ChatMessageRequest) (*domain.Message, error) {
	kind := req.Kind
	if kind == "" {
		if req.FileURL != "" {
			kind = domain.KindFile
		} else {
			kind = domain.KindText
		}
	}
	switch kind {
	case domain.KindText:
		return domain.NewTextMessage(sender, req.ReceiverID, req.Body)
	case domain.KindFile:
		return domain.NewFileMessage(sender, req.ReceiverID, req.FileURL)
	case domain.KindAudio:
		return domain.NewAudioMessage(sender, req.ReceiverID, req.FileURL)
	default:
		return nil, domain.ErrInvalidMessageKind
	}
}
