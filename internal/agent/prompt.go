package agent

import (
	"fmt"
	"strings"

	"github.com/cicidi/product-sales-prediction/internal/memory"
)

// DefaultSystemPrompt is used when the config leaves agents.defaults.systemPrompt empty.
const DefaultSystemPrompt = `You are a sales assistant for an e-commerce platform.
You answer questions about products, sellers, orders and sales forecasts by calling the available tools.

Remember to:
- Pick the tool whose description matches the request and pass every required parameter.
- If a tool reports a missing or invalid parameter, correct the arguments and try again.
- If the request cannot be served by the available tools, say so and suggest an alternative.

Always respond in a helpful, clear manner.`

const judgePromptTemplate = `Analyze the following response and determine if it indicates that the agent is missing context or asking for more information.:
Response: "%s"
If the response suggests missing context or asking more information, reply with "True". Otherwise, reply with "False".`

func judgePrompt(reply string) string {
	return fmt.Sprintf(judgePromptTemplate, reply)
}

// enrichedInput builds the second-pass input: the whole conversation before
// this turn, the current query and the first reply under review.
func enrichedInput(history []memory.Turn, input, reply string) string {
	var b strings.Builder

	b.WriteString("\n\n===== CONVERSATION HISTORY =====\n")
	for _, t := range history {
		fmt.Fprintf(&b, "User: %s\n", t.User)
		fmt.Fprintf(&b, "Assistant: %s\n\n", t.Reply)
	}
	b.WriteString("\n===== CURRENT QUERY =====\n")
	fmt.Fprintf(&b, "User: %s\n\n", input)

	b.WriteString("As an AI assistant, you are provided with the full conversation history above. " +
		"Use this context to determine whether you still need to ask the user any follow-up questions in order to complete the current task. " +
		"Try to infer your next action based on the entire conversation.\n\n")
	b.WriteString("Note: You may have previously asked the user to provide some information. " +
		"Now that the user has responded, make sure you remember what your original goal or task was, and continue accordingly.\n")
	fmt.Fprintf(&b, "### Proposed Answer: %s ###\n\n", reply)

	b.WriteString("Instructions:\n")
	b.WriteString("- If the conversation history already provides sufficient information to complete the task, proceed accordingly.\n")
	b.WriteString("- If the necessary information is missing or unclear, explicitly respond with 'I don't know' or ask the user for the specific information required.\n")
	b.WriteString("- Do NOT fabricate or assume any information that is not clearly present in the conversation history.\n")
	return b.String()
}

// apology renders the user-visible reply for a failed turn.
func apology(locale string, err error) string {
	switch strings.ToLower(locale) {
	case "zh", "zh-cn", "zh_cn":
		return fmt.Sprintf("出错了：%v", err)
	default:
		return fmt.Sprintf("Sorry, something went wrong: %v", err)
	}
}
