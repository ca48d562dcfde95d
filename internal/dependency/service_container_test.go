package dependency_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cicidi/product-sales-prediction/internal/config"
	"github.com/cicidi/product-sales-prediction/internal/dependency"
	"github.com/cicidi/product-sales-prediction/internal/registry"
	"github.com/cicidi/product-sales-prediction/internal/registry/registrytest"
	"github.com/cicidi/product-sales-prediction/internal/schema"
)

func testConfig(t *testing.T, registryURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Registry.BaseURL = registryURL
	cfg.Memory.Dir = filepath.Join(t.TempDir(), "sessions")
	return &cfg
}

func TestNew_LoadsToolsIntoSharedSet(t *testing.T) {
	t.Parallel()
	srv := registrytest.New(t, registrytest.Tool{
		Summary:    registry.ToolSummary{Name: "get_products", OperationID: "getProducts", DisplayName: "Products"},
		Parameters: []registry.ToolParameter{{Name: "category", Type: "string", Required: true}},
	})

	c, err := dependency.New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	assert.Equal(t, 0, c.ToolSet().Current().Len())
	require.NoError(t, c.LoadTools(context.Background()))
	assert.Equal(t, []string{"getProducts"}, c.ToolSet().Current().Names())
	assert.Nil(t, c.ThoughtDB())
	assert.NoError(t, c.RefreshService().Validate())
}

func TestLoadTools_RegistryDownLeavesEmptySet(t *testing.T) {
	t.Parallel()
	srv := registrytest.New(t)
	srv.FailList(500)

	c, err := dependency.New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)

	err = c.LoadTools(context.Background())
	assert.ErrorIs(t, err, schema.ErrRegistryUnavailable)
	assert.Equal(t, 0, c.ToolSet().Current().Len())
}

func TestPool_RequiresAPIKey(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, "http://127.0.0.1:1")

	c, err := dependency.New(cfg, nil)
	require.NoError(t, err)
	_, err = c.Pool()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key configured")
}

func TestPool_ResolvesWithKeyAndThoughtStore(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Judge.Model = "anthropic/claude-3-5-haiku-latest"
	cfg.Providers.Anthropic.APIKey = "ak-test"
	cfg.Memory.ThoughtDB = filepath.Join(t.TempDir(), "thoughts.db")

	c, err := dependency.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NotNil(t, c.ThoughtDB())

	pool, err := c.Pool()
	require.NoError(t, err)
	o, err := pool.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", o.Conversation().SessionID())
}
