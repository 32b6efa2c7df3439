package chat

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/trek/pkg/model"
)

// MaxPromptTurns bounds how many transcript turns are replayed into one
// prompt. The transcript itself is kept whole; only the prompt is windowed.
const MaxPromptTurns = 50

// BuildPrompt concatenates the transcript into a single role-prefixed block,
// one "{role}: {content}" line per turn, in chronological order.
func BuildPrompt(transcript []model.ChatTurn) string {
	if len(transcript) > MaxPromptTurns {
		transcript = transcript[len(transcript)-MaxPromptTurns:]
	}

	lines := make([]string, 0, len(transcript))
	for _, turn := range transcript {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}

	return strings.Join(lines, "\n")
}
