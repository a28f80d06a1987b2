package director

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

// PlayTurn resolves every pending AI input for the game's current
// phase: nominations when an AI holds HoH, the veto decision when an AI
// holds the veto, and outstanding eviction or jury votes from AI
// players. Human inputs are never supplied. Generator failures degrade
// to the engine's deterministic fallback, so a turn cannot wedge a
// phase.
func (e *Engine) PlayTurn(ctx context.Context, m *game.Machine, gs *game.GameState) error {
	switch gs.Phase {
	case game.PhaseNomination:
		return e.playNomination(ctx, m, gs)
	case game.PhaseVetoCeremony:
		return e.playVetoCeremony(ctx, m, gs)
	case game.PhaseEvictionVoting:
		return e.playEvictionVotes(ctx, m, gs)
	case game.PhaseJuryVoting:
		return e.playJuryVotes(ctx, m, gs)
	}
	return nil
}

func (e *Engine) playNomination(ctx context.Context, m *game.Machine, gs *game.GameState) error {
	if gs.HoH == "" || len(gs.Nominees) > 0 {
		return nil
	}
	hoh, err := gs.Roster.Get(gs.HoH)
	if err != nil {
		return err
	}
	if hoh.IsHuman {
		return nil
	}

	pool := nominationPool(gs)
	if len(pool) < 2 {
		return fmt.Errorf("need 2 nomination candidates, have %d", len(pool))
	}

	first, err := e.choose(ctx, hoh, game.PhaseNomination,
		"Choose your first nominee for eviction.", affinityContext(gs, hoh, pool), pool)
	if err != nil {
		return err
	}
	rest := make([]*house.Player, 0, len(pool)-1)
	for _, p := range pool {
		if p.ID != first.ID {
			rest = append(rest, p)
		}
	}
	second, err := e.choose(ctx, hoh, game.PhaseNomination,
		fmt.Sprintf("You nominated %s. Choose your second nominee.", first.Name),
		affinityContext(gs, hoh, rest), rest)
	if err != nil {
		return err
	}
	return m.Nominate(gs, []string{first.ID, second.ID})
}

func (e *Engine) playVetoCeremony(ctx context.Context, m *game.Machine, gs *game.GameState) error {
	if gs.Veto == "" || gs.VetoDecided {
		return nil
	}
	holder, err := gs.Roster.Get(gs.Veto)
	if err != nil {
		return err
	}
	if holder.IsHuman {
		return nil
	}

	// A nominated holder always pulls themselves off the block.
	if gs.IsNominee(holder.ID) {
		return e.useVeto(ctx, m, gs, holder, holder)
	}

	nominees := resolvePlayers(gs, gs.Nominees)
	const keep = "Keep the veto unused"
	options := make([]string, 0, len(nominees)+1)
	options = append(options, keep)
	for _, p := range nominees {
		options = append(options, "Use the veto on "+p.Name)
	}
	d, err := e.RequestDecision(ctx, holder, Situation{
		Phase:   game.PhaseVetoCeremony,
		Prompt:  "Decide whether to use the Power of Veto.",
		Options: options,
		Context: affinityContext(gs, holder, nominees),
	})
	if err != nil {
		return err
	}
	for i, p := range nominees {
		if options[i+1] == d.Selection {
			return e.useVeto(ctx, m, gs, holder, p)
		}
	}
	return m.ResolveVeto(gs, false, "", "")
}

// useVeto completes a veto use: the HoH, when AI, names the
// replacement. With a human HoH the replacement is theirs to pick in
// the UI, so the holder keeps the veto rather than stalling the
// ceremony half-resolved.
func (e *Engine) useVeto(ctx context.Context, m *game.Machine, gs *game.GameState, holder, saved *house.Player) error {
	hoh, err := gs.Roster.Get(gs.HoH)
	if err != nil {
		return err
	}
	pool := replacementPool(gs)
	if hoh.IsHuman || len(pool) == 0 {
		return m.ResolveVeto(gs, false, "", "")
	}
	repl, err := e.choose(ctx, hoh, game.PhaseVetoCeremony,
		fmt.Sprintf("%s is using the veto on %s. Name the replacement nominee.", holder.Name, saved.Name),
		affinityContext(gs, hoh, pool), pool)
	if err != nil {
		return err
	}
	return m.ResolveVeto(gs, true, saved.ID, repl.ID)
}

func (e *Engine) playEvictionVotes(ctx context.Context, m *game.Machine, gs *game.GameState) error {
	targets := make([]*house.Player, 0, len(gs.FinalNominees))
	for _, p := range resolvePlayers(gs, gs.FinalNominees) {
		if !gs.IsImmune(p.ID) {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	for _, voter := range gs.Voters() {
		if voter.IsHuman {
			continue
		}
		if _, voted := gs.Votes[voter.ID]; voted {
			continue
		}
		target, err := e.choose(ctx, voter, game.PhaseEvictionVoting,
			"Vote to evict one of the final nominees.", affinityContext(gs, voter, targets), targets)
		if err != nil {
			return err
		}
		if err := m.CastVote(gs, voter.ID, target.ID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) playJuryVotes(ctx context.Context, m *game.Machine, gs *game.GameState) error {
	finalists := resolvePlayers(gs, gs.Finalists)
	if len(finalists) == 0 {
		return nil
	}
	for _, p := range gs.Roster.Players {
		if p.Status != house.StatusJuror || p.IsHuman {
			continue
		}
		if _, voted := gs.JuryVotes[p.ID]; voted {
			continue
		}
		pick, err := e.choose(ctx, p, game.PhaseJuryVoting,
			"Cast your jury vote for the houseguest who should win the game.",
			affinityContext(gs, p, finalists), finalists)
		if err != nil {
			return err
		}
		if err := m.CastJuryVote(gs, p.ID, pick.ID); err != nil {
			return err
		}
	}
	return nil
}

// choose runs one decision over a candidate list and maps the selection
// back to a player. An unrecognized selection falls back to the first
// candidate, mirroring the decision fallback.
func (e *Engine) choose(ctx context.Context, actor *house.Player, phase game.Phase, prompt, hint string, candidates []*house.Player) (*house.Player, error) {
	options := make([]string, len(candidates))
	for i, p := range candidates {
		options[i] = p.Name
	}
	d, err := e.RequestDecision(ctx, actor, Situation{
		Phase:   phase,
		Prompt:  prompt,
		Options: options,
		Context: hint,
	})
	if err != nil {
		return nil, err
	}
	for i, opt := range options {
		if opt == d.Selection {
			return candidates[i], nil
		}
	}
	return candidates[0], nil
}

func nominationPool(gs *game.GameState) []*house.Player {
	var out []*house.Player
	for _, p := range gs.Roster.InHouse() {
		if p.ID == gs.HoH || gs.IsImmune(p.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func replacementPool(gs *game.GameState) []*house.Player {
	var out []*house.Player
	for _, p := range gs.Roster.InHouse() {
		if p.ID == gs.HoH || p.ID == gs.Veto || gs.IsNominee(p.ID) || gs.IsImmune(p.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func resolvePlayers(gs *game.GameState, ids []string) []*house.Player {
	out := make([]*house.Player, 0, len(ids))
	for _, id := range ids {
		if p, err := gs.Roster.Get(id); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// affinityContext renders the actor's read on each candidate for the
// generator prompt.
func affinityContext(gs *game.GameState, actor *house.Player, candidates []*house.Player) string {
	parts := make([]string, 0, len(candidates))
	for _, p := range candidates {
		parts = append(parts, fmt.Sprintf("%s %+d", p.Name, gs.Roster.Affinity(actor.ID, p.ID)))
	}
	return "Your affinity toward each candidate: " + strings.Join(parts, ", ")
}
