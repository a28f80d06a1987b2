package services

import (
	"fmt"
	"strings"
	"time"
)

const dialogueSystemPrompt = `You are roleplaying a houseguest in a reality-show social game.
Stay in character, keep responses under three sentences, and never
mention being an AI. Speak in the first person.`

const decisionSystemPrompt = `You are the strategic mind of a houseguest in a reality-show social
game. You will be given a situation and a list of options. Respond with
only a JSON object: {"selected_option": "<one of the options verbatim>",
"reasoning": "<one sentence>"}.`

// buildMessages renders a DialogueRequest into a system prompt and a
// user prompt, shared by the HTTP-backed generators.
func buildMessages(req DialogueRequest) (system string, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Character profile: %s\n", req.PlayerProfile)
	fmt.Fprintf(&b, "Current phase: %s\n", req.Phase)
	fmt.Fprintf(&b, "Situation: %s\n", req.Situation)
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.Context)
	}

	if len(req.RecentMemory) > 0 {
		b.WriteString("Recent memories, most vivid first:\n")
		now := time.Now()
		for _, e := range req.RecentMemory {
			fmt.Fprintf(&b, "- week %d (%s, freshness %.0f): %s\n",
				e.Week, e.Impact, e.Freshness(now), e.Description)
		}
	}

	if req.ResponseType == ResponseTypeDecision {
		b.WriteString("Options:\n")
		for _, opt := range req.Options {
			fmt.Fprintf(&b, "- %s\n", opt)
		}
		return decisionSystemPrompt, b.String()
	}

	if req.IncludeEmotion {
		b.WriteString("End your response with a line of the form EMOTION: <one word>.\n")
	}
	return dialogueSystemPrompt, b.String()
}

// parseDialogueText splits an optional trailing EMOTION: tag off a
// dialogue completion.
func parseDialogueText(raw string) (text, emotion string) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if after, ok := strings.CutPrefix(last, "EMOTION:"); ok {
		emotion = strings.ToLower(strings.TrimSpace(after))
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), emotion
}
