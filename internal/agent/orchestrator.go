// Package agent runs one user turn: reasoning with the current tools, a
// missing-context check, at most one history-enriched retry, and persistence
// of the final reply.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/cicidi/product-sales-prediction/internal/memory"
	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/tools"
)

// Orchestrator drives the turns of one session. Turns are processed one at a
// time; independent sessions use independent orchestrators.
type Orchestrator struct {
	conv     *memory.Conversation
	thoughts *memory.ThoughtLog
	reasoner Reasoner
	judge    Judge
	toolset  *tools.Set
	builtins []schema.Tool
	window   int
	locale   string
	observer Observer
	logger   *slog.Logger

	mu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWindow sets how many recent turns the first reasoning pass sees.
func WithWindow(n int) Option { return func(o *Orchestrator) { o.window = n } }

// WithLocale selects the apology language ("en", "zh").
func WithLocale(locale string) Option { return func(o *Orchestrator) { o.locale = locale } }

// WithObserver registers a state transition hook.
func WithObserver(fn Observer) Option { return func(o *Orchestrator) { o.observer = fn } }

// WithBuiltinTools adds tools offered on every turn next to the registry tools.
func WithBuiltinTools(ts ...schema.Tool) Option {
	return func(o *Orchestrator) { o.builtins = append(o.builtins, ts...) }
}

// NewOrchestrator wires a session's conversation and thought log to the
// reasoning engine. A nil judge disables enrichment; a nil toolset means no
// tools.
func NewOrchestrator(
	conv *memory.Conversation,
	thoughts *memory.ThoughtLog,
	reasoner Reasoner,
	judge Judge,
	toolset *tools.Set,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if judge == nil {
		judge = NeverJudge{}
	}
	if toolset == nil {
		toolset = tools.NewSet(nil)
	}
	if thoughts == nil {
		thoughts = memory.NewThoughtLog(conv.SessionID(), nil, logger)
	}
	o := &Orchestrator{
		conv:     conv,
		thoughts: thoughts,
		reasoner: reasoner,
		judge:    judge,
		toolset:  toolset,
		window:   10,
		locale:   "en",
		logger:   logger.With("session", conv.SessionID()),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Conversation returns the session's persisted history.
func (o *Orchestrator) Conversation() *memory.Conversation { return o.conv }

// Thoughts returns the session's thought log.
func (o *Orchestrator) Thoughts() *memory.ThoughtLog { return o.thoughts }

// Run processes input and returns the reply shown to the user. It never
// fails: errors become a localized apology that is also stored as the reply.
func (o *Orchestrator) Run(ctx context.Context, input string) string {
	reply, _ := o.Turn(ctx, input)
	return reply
}

// Turn is Run that also reports the failure behind an apology reply. The
// error, when non-nil, matches schema.ErrOrchestration.
func (o *Orchestrator) Turn(ctx context.Context, input string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// Both snapshots are taken before this turn is recorded.
	window := o.conv.RecentWindow(o.window)
	full := o.conv.FullHistory()

	ctx = tools.WithTurn(ctx, tools.TurnContext{SessionID: o.conv.SessionID(), History: o.conv})

	reply, err := o.converse(ctx, input, window, full)
	if err != nil {
		o.thoughts.Add("Error: " + err.Error())
		o.logger.Error("turn failed", "err", err)
		reply = apology(o.locale, err)
		err = fmt.Errorf("%w: %w", schema.ErrOrchestration, err)
	}

	o.transition(StateDone, false)
	if _, perr := o.conv.AddInteraction(input, reply); perr != nil {
		o.logger.Error("failed to persist turn", "err", perr)
	}
	o.transition(StateIdle, false)

	return reply, err
}

func (o *Orchestrator) converse(ctx context.Context, input string, window, full []memory.Turn) (string, error) {
	list := o.toolset.Current()
	if len(o.builtins) > 0 {
		list = list.With(o.builtins...)
	}

	o.thoughts.Add("Initial query: " + input)

	o.transition(StateReasoning, false)
	reply, err := o.reason(ctx, window, input, list)
	if err != nil {
		return "", err
	}
	o.thoughts.Add("Initial response: " + reply)

	o.transition(StateContextCheck, false)
	if o.check(ctx, reply) != Insufficient {
		return reply, nil
	}

	o.thoughts.Add("Context missing detected. Enhancing input with conversation history.")
	enhanced := enrichedInput(full, input, reply)
	o.thoughts.Add("Enhanced input created: " + prefix(enhanced, 100) + "...")

	// The enriched input already carries the full history.
	o.transition(StateReasoning, true)
	reply, err = o.reason(ctx, nil, enhanced, list)
	if err != nil {
		return "", err
	}
	o.thoughts.Add("Response with enhanced context: " + reply)
	return reply, nil
}

func (o *Orchestrator) reason(ctx context.Context, history []memory.Turn, input string, list *tools.ToolList) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic during reasoning", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return o.reasoner.Reason(ctx, history, input, list)
}

func (o *Orchestrator) check(ctx context.Context, reply string) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("panic in missing-context judge", "panic", r)
			v = Sufficient
		}
	}()
	v = o.judge.Judge(ctx, reply)
	o.logger.Debug("context check", "verdict", v)
	return v
}

func (o *Orchestrator) transition(s State, enriched bool) {
	if o.observer != nil {
		o.observer(s, enriched)
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
