package cmdutils

import "fmt"

const Logo = "📈"

// PrintResponse prints an assistant reply under the bot banner.
func PrintResponse(text string) {
	if text == "" {
		return
	}

	fmt.Printf("\n%s salesbot\n%s\n\n", Logo, text)
}
