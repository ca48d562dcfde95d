package toolschema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/schema"
	"github.com/cicidi/product-sales-prediction/internal/tools"
)

// Source is the registry surface the loader needs.
type Source interface {
	Status(ctx context.Context) (registry.Status, error)
	Descriptors(ctx context.Context, refresh bool) ([]registry.ToolDescriptor, error)
}

// Loader reads the registry and produces the tool snapshot.
type Loader struct {
	source  Source
	builder *Builder
	logger  *slog.Logger
}

func NewLoader(src Source, b *Builder, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: src, builder: b, logger: logger}
}

// Load probes the registry, then lists and binds its tools. Registry failures
// return an empty, usable list together with the error.
func (l *Loader) Load(ctx context.Context, refresh bool) (*tools.ToolList, error) {
	st, err := l.source.Status(ctx)
	if err != nil {
		l.logger.Warn("tool registry status check failed", "err", err)
		return tools.NewToolList(), err
	}
	l.logger.Debug("tool registry online", "status", st.Status, "version", st.Version, "tools", st.ToolCount)

	descs, err := l.source.Descriptors(ctx, refresh)
	if err != nil {
		l.logger.Warn("tool registry load failed", "err", err)
		return tools.NewToolList(), err
	}

	bound := l.builder.BuildAll(descs)
	list := tools.NewToolList()
	for _, t := range bound {
		list.Add(t)
	}
	l.logger.Info("tools bound", "tools", list.Len(), "skipped", len(descs)-list.Len())
	return list, nil
}

// Reload loads a fresh snapshot into set. On failure the current snapshot is
// kept and the error returned.
func (l *Loader) Reload(ctx context.Context, set *tools.Set) error {
	list, err := l.Load(ctx, true)
	if err != nil {
		return fmt.Errorf("reload tools: %w", err)
	}
	set.Replace(list)
	return nil
}

// BoundTools returns the registry-backed tools in list, skipping built-ins.
func BoundTools(list *tools.ToolList) []*BoundTool {
	var out []*BoundTool
	for _, t := range list.All() {
		if bt, ok := t.(*BoundTool); ok {
			out = append(out, bt)
		}
	}
	return out
}

var _ Source = (*registry.Client)(nil)

// invokerFunc adapts a function to Invoker.
type invokerFunc func(ctx context.Context, toolName string, args map[string]any) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, toolName string, args map[string]any) (string, error) {
	return f(ctx, toolName, args)
}

// errNoInvoker is returned by tools built without an Invoker.
var errNoInvoker = fmt.Errorf("%w: no invoker configured", schema.ErrToolExecution)
