package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cicidi/product-sales-prediction/internal/memory"
	"github.com/cicidi/product-sales-prediction/internal/tools"
)

// ConversationStore opens persisted conversations by session id.
type ConversationStore interface {
	GetOrCreate(id string) (*memory.Conversation, error)
}

// Pool hands out one Orchestrator per session. All orchestrators share the
// reasoner, judge and tool set; each owns its conversation and thought log.
type Pool struct {
	store    ConversationStore
	reasoner Reasoner
	judge    Judge
	toolset  *tools.Set
	sink     memory.ThoughtSink
	logger   *slog.Logger
	opts     []Option

	mu       sync.Mutex
	sessions map[string]*Orchestrator
}

// NewPool creates a Pool. sink may be nil.
func NewPool(store ConversationStore, reasoner Reasoner, judge Judge, toolset *tools.Set, sink memory.ThoughtSink, logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		store:    store,
		reasoner: reasoner,
		judge:    judge,
		toolset:  toolset,
		sink:     sink,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*Orchestrator),
	}
}

// Get returns the orchestrator for sessionID, creating it on first use.
func (p *Pool) Get(sessionID string) (*Orchestrator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if o, ok := p.sessions[sessionID]; ok {
		return o, nil
	}
	conv, err := p.store.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	thoughts := memory.NewThoughtLog(sessionID, p.sink, p.logger)
	o := NewOrchestrator(conv, thoughts, p.reasoner, p.judge, p.toolset, p.logger, p.opts...)
	p.sessions[sessionID] = o
	return o, nil
}

// Run processes one turn for sessionID.
func (p *Pool) Run(ctx context.Context, sessionID, input string) (string, error) {
	o, err := p.Get(sessionID)
	if err != nil {
		return "", err
	}
	return o.Run(ctx, input), nil
}
