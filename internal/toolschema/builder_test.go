package toolschema

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cicidi/product-sales-prediction/internal/invoker"
	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/registry/registrytest"
	"github.com/cicidi/product-sales-prediction/internal/schema"
)

// recordingInvoker captures calls instead of hitting the network.
type recordingInvoker struct {
	mu    sync.Mutex
	calls []recordedCall
}

type recordedCall struct {
	tool string
	args map[string]any
}

func (r *recordingInvoker) Invoke(_ context.Context, toolName string, args map[string]any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{tool: toolName, args: args})
	return `{"ok":true}`, nil
}

func (r *recordingInvoker) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func productsDescriptor() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "get_products",
		OperationID: "getProducts",
		DisplayName: "Product List",
		Description: "Lists products in a category",
		Parameters: []registry.ToolParameter{
			{Name: "category", Type: "string", Required: true, Description: "Product category", Example: "electronics"},
			{Name: "limit", Type: "integer", DefaultValue: float64(20), Description: "Page size"},
			{Name: "sellerId", Type: "string", Description: "Filter by seller"},
			{Name: "inStock", Type: "boolean", Description: "Only items in stock"},
		},
	}
}

func TestBuild_MissingRequiredParameterMakesNoCall(t *testing.T) {
	t.Parallel()
	inv := &recordingInvoker{}
	tool, err := NewBuilder(inv, nil).Build(productsDescriptor())
	require.NoError(t, err)

	for _, args := range []map[string]any{nil, {}, {"category": nil}, {"limit": 5}} {
		out, err := tool.Execute(context.Background(), args)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrMissingRequiredParameter)

		var missing *schema.MissingParameterError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "category", missing.Param)
		assert.Contains(t, out, `missing required parameter "category"`)
	}
	assert.Zero(t, inv.count())
}

func TestPrepare_OptionalWithoutDefaultIsDropped(t *testing.T) {
	t.Parallel()
	inv := &recordingInvoker{}
	tool, err := NewBuilder(inv, nil).Build(productsDescriptor())
	require.NoError(t, err)

	_, err = tool.Execute(context.Background(), map[string]any{"category": "books"})
	require.NoError(t, err)

	require.Equal(t, 1, inv.count())
	call := inv.calls[0]
	assert.Equal(t, "get_products", call.tool, "execute uses the registry name")
	assert.Equal(t, map[string]any{"category": "books", "limit": int64(20)}, call.args)
	assert.NotContains(t, call.args, "sellerId")
	assert.NotContains(t, call.args, "inStock")
}

func TestPrepare_CoercesAndValidates(t *testing.T) {
	t.Parallel()
	tool, err := NewBuilder(&recordingInvoker{}, nil).Build(productsDescriptor())
	require.NoError(t, err)

	out, err := tool.Prepare(map[string]any{"category": "books", "limit": "5", "inStock": "true", "color": "red"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"category": "books", "limit": int64(5), "inStock": true}, out)

	_, err = tool.Prepare(map[string]any{"category": "books", "limit": 2.5})
	assert.ErrorIs(t, err, schema.ErrInvalidArgument)

	_, err = tool.Prepare(map[string]any{"category": []any{"a"}})
	assert.ErrorIs(t, err, schema.ErrInvalidArgument)
}

func TestBuild_ZeroParametersSendsEmptyArguments(t *testing.T) {
	t.Parallel()
	inv := &recordingInvoker{}
	tool, err := NewBuilder(inv, nil).Build(registry.ToolDescriptor{
		Name: "list_categories", OperationID: "listCategories",
		DisplayName: "Categories", Description: "All product categories",
	})
	require.NoError(t, err)
	assert.Equal(t, "Categories: All product categories", tool.Description())

	_, err = tool.Execute(context.Background(), map[string]any{"input": "whatever the engine sends"})
	require.NoError(t, err)
	require.Equal(t, 1, inv.count())
	assert.Empty(t, inv.calls[0].args)
	assert.NotNil(t, inv.calls[0].args)
}

func TestBuild_Description(t *testing.T) {
	t.Parallel()
	tool, err := NewBuilder(nil, nil).Build(productsDescriptor())
	require.NoError(t, err)

	want := "Product List: Lists products in a category\n\nParameters:\n" +
		"- category (required, example: electronics): Product category\n" +
		"- limit (optional, default: 20): Page size\n" +
		"- sellerId (optional): Filter by seller\n" +
		"- inStock (optional): Only items in stock"
	assert.Equal(t, want, tool.Description())
}

func TestBuild_ParameterSchema(t *testing.T) {
	t.Parallel()
	tool, err := NewBuilder(nil, nil).Build(productsDescriptor())
	require.NoError(t, err)
	assert.Equal(t, "getProducts", tool.Name())

	var doc struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(tool.Parameters(), &doc))
	assert.Equal(t, "object", doc.Type)
	assert.Equal(t, []string{"category"}, doc.Required)
	assert.JSONEq(t, `{"type":"integer","description":"Page size","default":20}`, string(doc.Properties["limit"]))
	assert.JSONEq(t, `{"type":"string","description":"Product category","examples":["electronics"]}`, string(doc.Properties["category"]))
}

func TestBuild_UnknownTypeIsText(t *testing.T) {
	t.Parallel()
	tool, err := NewBuilder(nil, nil).Build(registry.ToolDescriptor{
		Name: "sales_between",
		Parameters: []registry.ToolParameter{
			{Name: "from", Type: "date", Required: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, tool.Params(), 1)
	assert.Equal(t, KindText, tool.Params()[0].Kind)
	assert.Equal(t, "sales_between", tool.Name(), "falls back to the registry name without operationId")

	out, err := tool.Prepare(map[string]any{"from": 20240101})
	require.NoError(t, err)
	assert.Equal(t, "20240101", out["from"])
}

func TestBuild_RequiredParameterIgnoresDefault(t *testing.T) {
	t.Parallel()
	tool, err := NewBuilder(&recordingInvoker{}, nil).Build(registry.ToolDescriptor{
		Name: "predict",
		Parameters: []registry.ToolParameter{
			{Name: "productId", Type: "string", Required: true, DefaultValue: "P1"},
		},
	})
	require.NoError(t, err)

	_, err = tool.Prepare(map[string]any{})
	assert.ErrorIs(t, err, schema.ErrMissingRequiredParameter)
	assert.NotContains(t, tool.Description(), "default")
}

func TestBuild_MalformedDescriptor(t *testing.T) {
	t.Parallel()
	b := NewBuilder(nil, nil)

	_, err := b.Build(registry.ToolDescriptor{OperationID: "orphan"})
	assert.ErrorIs(t, err, schema.ErrMalformedDescriptor)

	_, err = b.Build(registry.ToolDescriptor{Name: "销售"})
	assert.ErrorIs(t, err, schema.ErrMalformedDescriptor)
}

func TestBuildAll_SkipsBadAndDuplicateTools(t *testing.T) {
	t.Parallel()
	descs := []registry.ToolDescriptor{
		productsDescriptor(),
		{OperationID: "noName"},
		{Name: "get_products_v2", OperationID: "getProducts"},
		{Name: "predict_sales", OperationID: "predict sales"},
	}

	built := NewBuilder(nil, nil).BuildAll(descs)
	require.Len(t, built, 2)
	assert.Equal(t, "getProducts", built[0].Name())
	assert.Equal(t, "predict_sales", built[1].Name())
}

func TestBuild_NoInvokerFailsAtExecute(t *testing.T) {
	t.Parallel()
	tool, err := NewBuilder(nil, nil).Build(registry.ToolDescriptor{Name: "ping"})
	require.NoError(t, err)

	_, err = tool.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, schema.ErrToolExecution)
}

// A registry exposing getProducts with required category: the call without
// category must fail before any execute request reaches the registry.
func TestEndToEnd_RequiredParameterCheckedBeforeExecute(t *testing.T) {
	t.Parallel()
	srv := registrytest.New(t, registrytest.Tool{
		Summary: registry.ToolSummary{
			Name: "getProducts", OperationID: "getProducts",
			DisplayName: "Products", Description: "Product search",
		},
		Parameters: []registry.ToolParameter{
			{Name: "category", Type: "string", Required: true},
		},
		Result: map[string]any{"status": "success", "data": []any{}},
	})

	client := registry.New(srv.URL, nil)
	loader := NewLoader(client, NewBuilder(invoker.New(srv.URL, 0, nil), nil), nil)
	list, err := loader.Load(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, list.Len())

	tool := list.Get("getProducts")
	require.NotNil(t, tool)

	_, err = tool.Execute(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, schema.ErrMissingRequiredParameter)
	assert.Empty(t, srv.Executions())

	out, err := tool.Execute(context.Background(), map[string]any{"category": "toys"})
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "success"`)
	require.Len(t, srv.Executions(), 1)
	assert.Equal(t, map[string]any{"category": "toys"}, srv.Executions()[0].Parameters)
}

func TestLoader_RegistryFailureYieldsEmptyList(t *testing.T) {
	t.Parallel()
	srv := registrytest.New(t, registrytest.Tool{Summary: registry.ToolSummary{Name: "a"}})
	srv.FailList(http.StatusInternalServerError)

	loader := NewLoader(registry.New(srv.URL, nil), NewBuilder(nil, nil), nil)
	list, err := loader.Load(context.Background(), true)
	assert.ErrorIs(t, err, schema.ErrRegistryUnavailable)
	require.NotNil(t, list)
	assert.Equal(t, 0, list.Len())
}

func TestBuild_DefaultIsCoercedOnceOrDropped(t *testing.T) {
	t.Parallel()
	inv := &recordingInvoker{}
	tool, err := NewBuilder(inv, nil).Build(registry.ToolDescriptor{
		Name: "top_sellers",
		Parameters: []registry.ToolParameter{
			{Name: "limit", Type: "integer", DefaultValue: "all"},
			{Name: "days", Type: "integer", DefaultValue: "30"},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, tool.Description(), "default: all")
	assert.Contains(t, tool.Description(), "- days (optional, default: 30)")

	out, err := tool.Prepare(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"days": int64(30)}, out)

	_, err = tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, inv.count())
	assert.Equal(t, map[string]any{"days": int64(30)}, inv.calls[0].args)
}
