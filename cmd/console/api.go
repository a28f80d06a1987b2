package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/session"
)

type createGameRequest struct {
	Mode     game.Mode        `json:"mode"`
	Identity session.Identity `json:"identity"`
}

type actionRequest struct {
	Type          string   `json:"type"`
	PlayerID      string   `json:"player_id,omitempty"`
	NomineeIDs    []string `json:"nominee_ids,omitempty"`
	Used          bool     `json:"used,omitempty"`
	SavedID       string   `json:"saved_id,omitempty"`
	ReplacementID string   `json:"replacement_id,omitempty"`
	VoterID       string   `json:"voter_id,omitempty"`
	NomineeID     string   `json:"nominee_id,omitempty"`
	JurorID       string   `json:"juror_id,omitempty"`
	FinalistID    string   `json:"finalist_id,omitempty"`
	NewNominees   []string `json:"new_nominees,omitempty"`
}

type readyRequest struct {
	Phase    game.Phase `json:"phase"`
	PlayerID string     `json:"player_id"`
}

func createGame(client *http.Client, baseURL string) (*game.GameState, error) {
	req := createGameRequest{
		Mode: game.ModeSingle,
		Identity: session.Identity{
			IsAuthenticated: true,
			PlayerID:        "console",
			Name:            "Player",
		},
	}
	var gs game.GameState
	if err := postJSON(client, baseURL+"/v1/games", req, &gs); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &gs, nil
}

func getGame(client *http.Client, baseURL string, gameID uuid.UUID) (*game.GameState, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s", baseURL, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var gs game.GameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse game response: %w", err)
	}
	return &gs, nil
}

func postAction(client *http.Client, baseURL string, gameID uuid.UUID, req actionRequest) (*game.GameState, error) {
	var gs game.GameState
	url := fmt.Sprintf("%s/v1/games/%s/actions", baseURL, gameID)
	if err := postJSON(client, url, req, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

type competitionResult struct {
	WinnerID string          `json:"winner_id"`
	Game     *game.GameState `json:"game"`
}

func postCompetition(client *http.Client, baseURL string, gameID uuid.UUID) (*competitionResult, error) {
	var result competitionResult
	url := fmt.Sprintf("%s/v1/games/%s/actions", baseURL, gameID)
	if err := postJSON(client, url, actionRequest{Type: "run_competition"}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func postAdvance(client *http.Client, baseURL string, gameID uuid.UUID) (*game.GameState, error) {
	var gs game.GameState
	url := fmt.Sprintf("%s/v1/games/%s/advance", baseURL, gameID)
	if err := postJSON(client, url, struct{}{}, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func postReady(client *http.Client, baseURL string, gameID uuid.UUID, phase game.Phase, playerID string) error {
	url := fmt.Sprintf("%s/v1/games/%s/ready", baseURL, gameID)
	var snapshot game.ProgressSnapshot
	return postJSON(client, url, readyRequest{Phase: phase, PlayerID: playerID}, &snapshot)
}

func postJSON(client *http.Client, url string, req interface{}, out interface{}) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, body)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func apiError(status int, body []byte) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}
