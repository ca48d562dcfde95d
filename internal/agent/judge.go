package agent

import (
	"context"
	"log/slog"
	"strings"

	agentcfg "github.com/cicidi/product-sales-prediction/internal/config/agent"
	"github.com/cicidi/product-sales-prediction/internal/schema"
)

// Verdict is the missing-context classification of a reply.
type Verdict int

const (
	Sufficient Verdict = iota
	Insufficient
)

func (v Verdict) String() string {
	if v == Insufficient {
		return "insufficient"
	}
	return "sufficient"
}

// Judge decides whether a reply signals that the assistant lacked context.
// Implementations never fail: anything they cannot classify is Sufficient.
type Judge interface {
	Judge(ctx context.Context, reply string) Verdict
}

// LLMJudge asks a language model the fixed classification question.
type LLMJudge struct {
	completer schema.Completer
	logger    *slog.Logger
}

func NewLLMJudge(completer schema.Completer, logger *slog.Logger) *LLMJudge {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMJudge{completer: completer, logger: logger}
}

func (j *LLMJudge) Judge(ctx context.Context, reply string) Verdict {
	answer, err := j.completer.Complete(ctx, judgePrompt(reply))
	if err != nil {
		j.logger.Warn("missing-context check failed, treating reply as sufficient", "err", err)
		return Sufficient
	}
	if strings.ToLower(strings.TrimSpace(answer)) == "true" {
		return Insufficient
	}
	return Sufficient
}

// defaultMissingContextPhrases are lowercase fragments that usually mean the
// assistant is asking the user for more input.
var defaultMissingContextPhrases = []string{
	"i need to know",
	"i need more information",
	"could you please provide",
	"could you provide",
	"can you provide",
	"please provide",
	"please specify",
	"could you specify",
	"could you clarify",
	"which seller",
	"which product",
	"which category",
	"i don't know",
	"i do not know",
	"not sure which",
}

// KeywordJudge is a deterministic judge matching reply text against phrases.
type KeywordJudge struct {
	phrases []string
}

// NewKeywordJudge returns a judge using phrases, or the built-in list when
// none are given. Matching is case-insensitive.
func NewKeywordJudge(phrases ...string) *KeywordJudge {
	if len(phrases) == 0 {
		phrases = defaultMissingContextPhrases
	}
	lower := make([]string, len(phrases))
	for i, p := range phrases {
		lower[i] = strings.ToLower(p)
	}
	return &KeywordJudge{phrases: lower}
}

func (j *KeywordJudge) Judge(_ context.Context, reply string) Verdict {
	text := strings.ToLower(reply)
	for _, p := range j.phrases {
		if strings.Contains(text, p) {
			return Insufficient
		}
	}
	return Sufficient
}

// NeverJudge always answers Sufficient, disabling enrichment.
type NeverJudge struct{}

func (NeverJudge) Judge(context.Context, string) Verdict { return Sufficient }

// NewJudge builds the judge selected by kind. The llm kind needs a completer
// and falls back to the keyword judge without one.
func NewJudge(kind string, completer schema.Completer, logger *slog.Logger) Judge {
	switch kind {
	case agentcfg.JudgeOff:
		return NeverJudge{}
	case agentcfg.JudgeKeyword:
		return NewKeywordJudge()
	default:
		if completer == nil {
			return NewKeywordJudge()
		}
		return NewLLMJudge(completer, logger)
	}
}
