// Package dependency wires salesbot services using go.uber.org/dig.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/dig"

	"github.com/cicidi/product-sales-prediction/internal/agent"
	"github.com/cicidi/product-sales-prediction/internal/config"
	agentcfg "github.com/cicidi/product-sales-prediction/internal/config/agent"
	"github.com/cicidi/product-sales-prediction/internal/invoker"
	"github.com/cicidi/product-sales-prediction/internal/memory"
	"github.com/cicidi/product-sales-prediction/internal/providers"
	"github.com/cicidi/product-sales-prediction/internal/refresh"
	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/session"
	"github.com/cicidi/product-sales-prediction/internal/tools"
	"github.com/cicidi/product-sales-prediction/internal/toolschema"
)

// ServiceContainer holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type ServiceContainer struct {
	d        *dig.Container
	cfg      *config.Config
	logger   *slog.Logger
	client   *registry.Client
	loader   *toolschema.Loader
	toolset  *tools.Set
	sessions *session.Manager
	thoughts *memory.ThoughtDB
	refresh  *refresh.Service
}

func (c *ServiceContainer) Config() *config.Config           { return c.cfg }
func (c *ServiceContainer) Logger() *slog.Logger             { return c.logger }
func (c *ServiceContainer) Registry() *registry.Client       { return c.client }
func (c *ServiceContainer) Loader() *toolschema.Loader       { return c.loader }
func (c *ServiceContainer) ToolSet() *tools.Set              { return c.toolset }
func (c *ServiceContainer) Sessions() *session.Manager       { return c.sessions }
func (c *ServiceContainer) ThoughtDB() *memory.ThoughtDB     { return c.thoughts }
func (c *ServiceContainer) RefreshService() *refresh.Service { return c.refresh }

// LLMModel is a named string type so dig can distinguish it from plain
// strings when injecting the effective model name.
type LLMModel string

// JudgeCompleter is the completer used by the missing-context judge; it may
// be a different model from the reasoning engine.
type JudgeCompleter struct{ schema.Completer }

// New builds and wires all services from cfg. Nothing touches the network;
// the reasoning engine is resolved lazily by Pool.
func New(cfg *config.Config, logger *slog.Logger) (*ServiceContainer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := dig.New()

	ctors := []any{
		func() *config.Config { return cfg },
		func() *slog.Logger { return logger },
		newRegistryClient,
		newInvoker,
		newBuilder,
		newLoader,
		newToolSet,
		newSessionManager,
		newThoughtDB,
		newRefreshService,
		newModel,
		resolveLLMModel,
		newJudgeCompleter,
		newJudge,
		newReasoner,
		newPool,
	}
	for _, p := range ctors {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	result := &ServiceContainer{d: d}
	err := d.Invoke(func(
		cfg *config.Config,
		logger *slog.Logger,
		client *registry.Client,
		loader *toolschema.Loader,
		toolset *tools.Set,
		sessions *session.Manager,
		thoughts *memory.ThoughtDB,
		refreshSvc *refresh.Service,
	) {
		result.cfg = cfg
		result.logger = logger
		result.client = client
		result.loader = loader
		result.toolset = toolset
		result.sessions = sessions
		result.thoughts = thoughts
		result.refresh = refreshSvc
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LoadTools reads the registry into the shared tool set. On failure the set
// holds an empty list and the error is returned for reporting.
func (c *ServiceContainer) LoadTools(ctx context.Context) error {
	list, err := c.loader.Load(ctx, true)
	c.toolset.Replace(list)
	return err
}

// Pool resolves the reasoning engine and returns the per-session
// orchestrator pool. It fails when no model provider is configured.
func (c *ServiceContainer) Pool() (*agent.Pool, error) {
	var pool *agent.Pool
	err := c.d.Invoke(func(p *agent.Pool) { pool = p })
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return pool, nil
}

// Close releases the thought store.
func (c *ServiceContainer) Close() error {
	if c.thoughts != nil {
		return c.thoughts.Close()
	}
	return nil
}

func newRegistryClient(cfg *config.Config, logger *slog.Logger) *registry.Client {
	return registry.New(cfg.Registry.BaseURL, logger,
		registry.WithTimeout(time.Duration(cfg.Registry.TimeoutSeconds)*time.Second),
		registry.WithConcurrency(cfg.Registry.DetailConcurrency),
	)
}

func newInvoker(cfg *config.Config, logger *slog.Logger) *invoker.Invoker {
	return invoker.New(cfg.Registry.BaseURL, time.Duration(cfg.Registry.TimeoutSeconds)*time.Second, logger)
}

func newBuilder(inv *invoker.Invoker, logger *slog.Logger) *toolschema.Builder {
	return toolschema.NewBuilder(inv, logger)
}

func newLoader(client *registry.Client, b *toolschema.Builder, logger *slog.Logger) *toolschema.Loader {
	return toolschema.NewLoader(client, b, logger)
}

func newToolSet() *tools.Set {
	return tools.NewSet(nil)
}

func newSessionManager(cfg *config.Config, logger *slog.Logger) (*session.Manager, error) {
	return session.NewManager(cfg.SessionsDir(), logger)
}

// newThoughtDB returns nil when the thought store is not configured.
func newThoughtDB(cfg *config.Config) (*memory.ThoughtDB, error) {
	path := cfg.ThoughtDBPath()
	if path == "" {
		return nil, nil
	}
	return memory.OpenThoughtDB(path)
}

func newRefreshService(cfg *config.Config, loader *toolschema.Loader, set *tools.Set, logger *slog.Logger) *refresh.Service {
	return refresh.NewService(cfg.Registry.RefreshCron, loader, set, logger)
}

func newModel(cfg *config.Config, logger *slog.Logger) (providers.Model, error) {
	return buildModel(cfg, cfg.Agents.Defaults.Model, logger)
}

func buildModel(cfg *config.Config, model string, logger *slog.Logger) (providers.Model, error) {
	result := cfg.MatchProvider(model)
	if result.Provider == nil || result.Provider.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for model %q: edit %s or set the provider's API key variable", model, config.ConfigPath())
	}
	return providers.New(providers.Params{
		APIKey:       result.Provider.APIKey,
		APIBase:      result.Provider.APIBase,
		ExtraHeaders: result.Provider.ExtraHeaders,
		DefaultModel: result.Model,
		ProviderName: result.Name,
	}, logger), nil
}

func resolveLLMModel(cfg *config.Config) LLMModel {
	return LLMModel(cfg.MatchProvider(cfg.Agents.Defaults.Model).Model)
}

func newJudgeCompleter(cfg *config.Config, main providers.Model, logger *slog.Logger) (JudgeCompleter, error) {
	if cfg.Judge.Model == "" {
		return JudgeCompleter{main}, nil
	}
	m, err := buildModel(cfg, cfg.Judge.Model, logger)
	if err != nil {
		return JudgeCompleter{}, err
	}
	return JudgeCompleter{m}, nil
}

func newJudge(cfg *config.Config, c JudgeCompleter, logger *slog.Logger) agent.Judge {
	kind := cfg.Judge.Kind
	if kind == "" {
		kind = agentcfg.JudgeLLM
	}
	return agent.NewJudge(kind, c.Completer, logger)
}

func newReasoner(cfg *config.Config, p providers.Model, m LLMModel, logger *slog.Logger) agent.Reasoner {
	d := cfg.Agents.Defaults
	settings := schema.NewAgentSettings(string(m), d.MaxToolIter, d.Temperature, d.MaxTokens)
	return agent.NewLoopRunner(p, settings, d.SystemPrompt, logger)
}

func newPool(
	cfg *config.Config,
	sessions *session.Manager,
	reasoner agent.Reasoner,
	judge agent.Judge,
	set *tools.Set,
	db *memory.ThoughtDB,
	logger *slog.Logger,
) *agent.Pool {
	var sink memory.ThoughtSink
	if db != nil {
		sink = db
	}
	return agent.NewPool(sessions, reasoner, judge, set, sink, logger,
		agent.WithWindow(cfg.Agents.Defaults.MemoryWindow),
		agent.WithLocale(cfg.Agents.Defaults.Locale),
		agent.WithBuiltinTools(tools.NewChatHistoryTool()),
	)
}
