package domain

import "fmt"

// TriviaInstruction is sent verbatim as the single user message of every cycle.
const TriviaInstruction = `Generate a random trivia fact. Make it either:
    - Sarcastically humorous with a dark twist
    - Surprisingly informative with a niche fact
    Keep it concise (15-25 words).`

const (
	DefaultTextModel   = "deepseek-chat"
	DefaultTemperature = 0.8
)

// ImagePrompt derives the background prompt from a trivia statement.
func ImagePrompt(trivia string) string {
	return fmt.Sprintf("Minimalistic abstract background representing: %s. No text, subtle patterns, soft colors.", trivia)
}
