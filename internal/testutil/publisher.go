package testutil

import (
	"context"
	"sync"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
)

// RecordingPublisher guarda los eventos publicados. Si Err no es nil, Publish lo devuelve.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []entity.WorkflowEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, ev entity.WorkflowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, ev)
	return nil
}

// Types devuelve los tipos de evento en orden de publicación.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// Events copia de los eventos publicados.
func (p *RecordingPublisher) Events() []entity.WorkflowEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.WorkflowEvent(nil), p.events...)
}
