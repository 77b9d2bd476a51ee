package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

// eventSink publica eventos después del Commit. Un fallo de publicación no revierte la operación; solo se registra.
type eventSink struct {
	pub EventPublisher
	log *logger.Logger
}

func (s eventSink) emit(ctx context.Context, typ string, entityID, actorID int64, data map[string]any) {
	if s.pub == nil {
		return
	}
	ev := entity.WorkflowEvent{
		ID:         uuid.New().String(),
		Type:       typ,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	if err := s.pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Str("event", typ).Int64("entity_id", entityID).Msg("no se pudo publicar el evento")
	}
}
