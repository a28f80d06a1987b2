package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/house"
)

const PlaceHolderText = "Type a command (/help for the list)..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameState    *game.GameState
	feed         []string
	feedViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool
}

type actionResultMsg struct {
	gameState *game.GameState
	note      string
	err       error
}

type gameStateMsg struct {
	gameState *game.GameState
	err       error
}

var (
	feedPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	hohStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

	nomineeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	feedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, gs *game.GameState) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	feedVp := viewport.New(50, 20)
	feedVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		gameState:    gs,
		textarea:     ta,
		feedViewport: feedVp,
		metaViewport: metaVp,
		feed: []string{
			"Welcome to the house! " + gs.StatusMessage,
			"Use /comp to run the first Head of Household competition.",
		},
	}
}

func (m *ConsoleUI) writeFeedContent() {
	feedWidth := m.feedViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("HOUSE ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(feedWidth-6, 1))) + "\n\n")

	for _, line := range m.feed {
		content.WriteString(feedStyle.Render(wordwrap.String(line, feedWidth)) + "\n\n")
	}
	if m.loading {
		content.WriteString("Working...\n")
	}

	m.feedViewport.SetContent(content.String())
	m.feedViewport.GotoBottom()
}

func writeMetadata(gs *game.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString(fmt.Sprintf("Week %d · Day %d\n", gs.Week, gs.DayCount))
	content.WriteString(gs.Phase.Display() + "\n\n")

	content.WriteString("Houseguests:\n")
	if gs.Roster != nil {
		for _, p := range gs.Roster.Players {
			content.WriteString(formatPlayerLine(gs, p))
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• /help: Full list\n")
	content.WriteString("• /comp: Run competition\n")
	content.WriteString("• /advance: Next phase\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func formatPlayerLine(gs *game.GameState, p *house.Player) string {
	name := p.Name
	switch {
	case p.ID == gs.HoH:
		name = hohStyle.Render(name + " (HoH)")
	case gs.IsNominee(p.ID):
		name = nomineeStyle.Render(name + " (nom)")
	case p.ID == gs.Veto:
		name += " (veto)"
	case !p.Status.InHouse():
		name += " (" + string(p.Status) + ")"
	}
	return "• " + name + "\n"
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.feedViewport, vpCmd = m.feedViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		feedWidth := int(float64(m.width)*0.70) - 4
		metaWidth := m.width - feedWidth - 6

		m.feedViewport.Width = feedWidth - 2
		m.feedViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(feedWidth - 4)

		m.ready = true
		m.writeFeedContent()
		m.metaViewport.SetContent(writeMetadata(m.gameState))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleCommand(input)
		}

	case actionResultMsg:
		m.loading = false
		if msg.err != nil {
			m.feed = append(m.feed, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			if msg.gameState != nil {
				m.gameState = msg.gameState
				m.metaViewport.SetContent(writeMetadata(m.gameState))
			}
			if msg.note != "" {
				m.feed = append(m.feed, msg.note)
			}
			if msg.gameState != nil && msg.gameState.StatusMessage != "" {
				m.feed = append(m.feed, msg.gameState.StatusMessage)
			}
		}
		m.writeFeedContent()
		return m, nil

	case gameStateMsg:
		if msg.err == nil && msg.gameState != nil {
			m.gameState = msg.gameState
			m.metaViewport.SetContent(writeMetadata(m.gameState))
			m.writeFeedContent()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.feedViewport, vpCmd = m.feedViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

const helpText = `
Commands:
• /comp - Run the current competition
• /hoh <name> - Crown a Head of Household directly
• /nom <name> <name> - Nominate two houseguests
• /veto <name> - Award the veto directly
• /useveto <saved> <replacement> - Use the veto
• /noveto - Leave nominations unchanged
• /vote <voter> <nominee> - Cast an eviction vote
• /jury <juror> <finalist> - Cast a jury vote
• /power <name> [new noms...] - Play a powerup
• /advance - Advance to the next phase
• /ready - Mark yourself ready
• /copy - Copy the game ID to the clipboard
• /help - Show this help
• Ctrl+C - Quit
`

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help":
		m.feed = append(m.feed, titleStyle.Render("Help:")+helpText)
		m.writeFeedContent()
		return m, nil

	case "/copy":
		if err := clipboard.WriteAll(m.gameState.ID.String()); err != nil {
			m.feed = append(m.feed, errorStyle.Render("Error: "+err.Error()))
		} else {
			m.feed = append(m.feed, "Game ID copied to clipboard.")
		}
		m.writeFeedContent()
		return m, nil

	case "/comp":
		m.loading = true
		m.writeFeedContent()
		gameID := m.gameState.ID
		return m, func() tea.Msg {
			result, err := postCompetition(m.client, m.config.APIBaseURL, gameID)
			if err != nil {
				return actionResultMsg{err: err}
			}
			return actionResultMsg{gameState: result.Game, note: "Competition winner: " + result.WinnerID}
		}

	case "/hoh":
		id, err := m.playerID(args, 0)
		if err != nil {
			return m.feedError(err)
		}
		return m.dispatch(actionRequest{Type: "assign_hoh", PlayerID: id}, "")

	case "/nom":
		if len(args) != 2 {
			return m.feedError(fmt.Errorf("usage: /nom <name> <name>"))
		}
		a, err := m.playerID(args, 0)
		if err != nil {
			return m.feedError(err)
		}
		b, err := m.playerID(args, 1)
		if err != nil {
			return m.feedError(err)
		}
		return m.dispatch(actionRequest{Type: "nominate", NomineeIDs: []string{a, b}}, "")

	case "/veto":
		id, err := m.playerID(args, 0)
		if err != nil {
			return m.feedError(err)
		}
		return m.dispatch(actionRequest{Type: "assign_veto", PlayerID: id}, "")

	case "/useveto":
		if len(args) != 2 {
			return m.feedError(fmt.Errorf("usage: /useveto <saved> <replacement>"))
		}
		saved, err := m.playerID(args, 0)
		if err != nil {
			return m.feedError(err)
		}
		repl, err := m.playerID(args, 1)
		if err != nil {
			return m.feedError(err)
		}
		return m.dispatch(actionRequest{Type: "resolve_veto", Used: true, SavedID: saved, ReplacementID: repl}, "")

	case "/noveto":
		return m.dispatch(actionRequest{Type: "resolve_veto", Used: false}, "The veto goes unused.")

	case "/vote":
		if len(args) != 2 {
			return m.feedError(fmt.Errorf("usage: /vote <voter> <nominee>"))
		}
		voter, err := m.playerID(args, 0)
		if err != nil {
			return m.feedError(err)
		}
		nominee, err := m.playerID(args, 1)
		if err != nil {
			return m.feedError(err)
		}
		return m.dispatch(actionRequest{Type: "cast_vote", VoterID: voter, NomineeID: nominee}, "")

	case "/jury":
		if len(args) != 2 {
			return m.feedError(fmt.Errorf("usage: /jury <juror> <finalist>"))
		}
		juror, err := m.playerID(args, 0)
		if err != nil {
			return m.feedError(err)
		}
		finalist, err := m.playerID(args, 1)
		if err != nil {
			return m.feedError(err)
		}
		return m.dispatch(actionRequest{Type: "jury_vote", JurorID: juror, FinalistID: finalist}, "")

	case "/power":
		if len(args) < 1 {
			return m.feedError(fmt.Errorf("usage: /power <name> [new noms...]"))
		}
		id, err := m.playerID(args, 0)
		if err != nil {
			return m.feedError(err)
		}
		var noms []string
		for i := 1; i < len(args); i++ {
			nid, err := m.playerID(args, i)
			if err != nil {
				return m.feedError(err)
			}
			noms = append(noms, nid)
		}
		return m.dispatch(actionRequest{Type: "use_powerup", PlayerID: id, NewNominees: noms}, "")

	case "/advance":
		m.loading = true
		m.writeFeedContent()
		return m, func() tea.Msg {
			gs, err := postAdvance(m.client, m.config.APIBaseURL, m.gameState.ID)
			return actionResultMsg{gameState: gs, err: err}
		}

	case "/ready":
		m.loading = true
		m.writeFeedContent()
		gameID, phase := m.gameState.ID, m.gameState.Phase
		return m, func() tea.Msg {
			if err := postReady(m.client, m.config.APIBaseURL, gameID, phase, "console"); err != nil {
				return actionResultMsg{err: err}
			}
			gs, err := getGame(m.client, m.config.APIBaseURL, gameID)
			return actionResultMsg{gameState: gs, note: "Marked ready.", err: err}
		}

	default:
		return m.feedError(fmt.Errorf("unknown command %s, try /help", cmd))
	}
}

func (m ConsoleUI) dispatch(req actionRequest, note string) (tea.Model, tea.Cmd) {
	m.loading = true
	m.writeFeedContent()
	gameID := m.gameState.ID
	return m, func() tea.Msg {
		gs, err := postAction(m.client, m.config.APIBaseURL, gameID, req)
		return actionResultMsg{gameState: gs, note: note, err: err}
	}
}

func (m ConsoleUI) feedError(err error) (tea.Model, tea.Cmd) {
	m.feed = append(m.feed, errorStyle.Render("Error: "+err.Error()))
	m.writeFeedContent()
	return m, nil
}

// playerID resolves a name or ID argument to a player ID.
func (m ConsoleUI) playerID(args []string, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing player name")
	}
	arg := args[i]
	if m.gameState.Roster != nil {
		for _, p := range m.gameState.Roster.Players {
			if strings.EqualFold(p.Name, arg) || p.ID == arg {
				return p.ID, nil
			}
		}
	}
	return "", fmt.Errorf("no houseguest named %q", arg)
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(key.String()) {
		case "y", "enter":
			return m, tea.Quit
		case "n", "esc":
			m.showQuitModal = false
			return m, nil
		}
	}
	return m, nil
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.showQuitModal {
		modal := modalStyle.Render(titleStyle.Render("Quit?") + "\n\nLeave the house? (y/n)")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}

	feedPanel := feedPanelStyle.Render(
		m.feedViewport.View() + "\n\n" + m.textarea.View(),
	)
	metaPanel := metaPanelStyle.Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, feedPanel, metaPanel)
}
