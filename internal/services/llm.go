package services

import (
	"context"

	"github.com/jwebster45206/house-engine/pkg/house"
)

// Response types for dialogue generation.
const (
	ResponseTypeDialogue = "dialogue"
	ResponseTypeDecision = "decision"
)

// DialogueRequest describes one AI houseguest generation call: either
// freeform dialogue for the current situation, or a decision among the
// listed options.
type DialogueRequest struct {
	PlayerProfile  string              `json:"player_profile"`
	Phase          string              `json:"phase"`
	Situation      string              `json:"situation"`
	Context        string              `json:"context,omitempty"`
	RecentMemory   []house.MemoryEntry `json:"recent_memory,omitempty"`
	ResponseType   string              `json:"response_type"` // dialogue or decision
	Options        []string            `json:"options,omitempty"`
	IncludeEmotion bool                `json:"include_emotion"`
}

// DialogueResponse is the generator's answer. Dialogue requests fill
// Text (and Emotion when asked); decision requests fill SelectedOption
// and Reasoning.
type DialogueResponse struct {
	Text           string `json:"text,omitempty"`
	Emotion        string `json:"emotion,omitempty"`
	SelectedOption string `json:"selected_option,omitempty"`
	Reasoning      string `json:"reasoning,omitempty"`
}

// DialogueGenerator is the external text-generation collaborator.
// Failures must degrade: callers fall back to a deterministic default
// choice rather than stalling the game.
type DialogueGenerator interface {
	// InitModel prepares the backing model on startup.
	InitModel(ctx context.Context, modelName string) error

	// Generate produces dialogue or a decision for one AI houseguest.
	Generate(ctx context.Context, req DialogueRequest) (*DialogueResponse, error)
}
