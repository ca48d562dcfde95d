package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	agentcfg "github.com/cicidi/product-sales-prediction/internal/config/agent"
)

func TestLLMJudge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
		err    error
		want   Verdict
	}{
		{"true", "True", nil, Insufficient},
		{"padded lowercase", "  true\n", nil, Insufficient},
		{"false", "False", nil, Sufficient},
		{"explained true", "True, it asks for the seller", nil, Sufficient},
		{"error", "", errors.New("rate limited"), Sufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var prompt string
			j := NewLLMJudge(completerFunc(func(_ context.Context, p string) (string, error) {
				prompt = p
				return tt.answer, tt.err
			}), nil)

			assert.Equal(t, tt.want, j.Judge(context.Background(), "Which seller do you mean?"))
			assert.Contains(t, prompt, `Response: "Which seller do you mean?"`)
			assert.Contains(t, prompt, `reply with "True". Otherwise, reply with "False".`)
		})
	}
}

func TestKeywordJudge(t *testing.T) {
	t.Parallel()
	j := NewKeywordJudge()
	ctx := context.Background()

	assert.Equal(t, Insufficient, j.Judge(ctx, "I need to know which seller you mean"))
	assert.Equal(t, Insufficient, j.Judge(ctx, "Could you please provide the product ID?"))
	assert.Equal(t, Sufficient, j.Judge(ctx, "Seller S1 sold 40 units."))

	custom := NewKeywordJudge("Hmm")
	assert.Equal(t, Insufficient, custom.Judge(ctx, "hmm, not sure"))
	assert.Equal(t, Sufficient, custom.Judge(ctx, "I need to know more"))
}

func TestNewJudge(t *testing.T) {
	t.Parallel()
	c := completerFunc(func(context.Context, string) (string, error) { return "false", nil })

	assert.IsType(t, NeverJudge{}, NewJudge(agentcfg.JudgeOff, c, nil))
	assert.IsType(t, &KeywordJudge{}, NewJudge(agentcfg.JudgeKeyword, c, nil))
	assert.IsType(t, &LLMJudge{}, NewJudge(agentcfg.JudgeLLM, c, nil))
	assert.IsType(t, &KeywordJudge{}, NewJudge(agentcfg.JudgeLLM, nil, nil))
}

func TestApology(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	assert.Equal(t, "Sorry, something went wrong: boom", apology("en", err))
	assert.Equal(t, "出错了：boom", apology("zh", err))
	assert.Equal(t, "Sorry, something went wrong: boom", apology("", err))
}
