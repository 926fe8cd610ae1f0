package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
	"github.com/muesli/reflow/wordwrap"
)

const (
	PlaceHolderText = "What do you do? (/help for commands)"
	maxLogEntries   = 500
)

type entryKind int

const (
	entryNarration entryKind = iota
	entryUser
	entryCombat
	entryError
	entrySystem
)

type logEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config      *ConsoleConfig
	api         *APIClient
	player      *actor.PlayerSpec
	room        *game.RoomView
	inventory   []game.ItemView
	enemy       *actor.Enemy
	entries     []logEntry
	logViewport viewport.Model
	metaView    viewport.Model
	textarea    textarea.Model
	ready       bool
	width       int
	height      int
	err         error
	loading     bool

	// Character selection state
	showCharacterModal bool
	characters         []actor.Character
	selectedCharacter  int
	loadingCharacters  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type charactersLoadedMsg struct {
	characters []actor.Character
	err        error
}

type characterSelectedMsg struct {
	name string
	err  error
}

// actionMsg carries the outcome of one game command.
type actionMsg struct {
	entries []logEntry
	room    *game.RoomView
	enemy   *actor.Enemy
	// clearEnemy ends the combat display.
	clearEnemy bool
	err        error
}

type playerMsg struct {
	player    *actor.PlayerSpec
	inventory []game.ItemView
	err       error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
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

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	combatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // orange

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	healthStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, api *APIClient, player *actor.PlayerSpec) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:             cfg,
		api:                api,
		player:             player,
		textarea:           ta,
		logViewport:        logVp,
		metaView:           metaVp,
		showCharacterModal: true,
		loadingCharacters:  true,
		entries: []logEntry{
			{entrySystem, fmt.Sprintf("Welcome, %s. Choose a character to begin.", player.Name)},
		},
	}
}

// Command is one parsed line of player input.
type Command struct {
	Verb string
	ID   int
	Arg  string
}

var verbAliases = map[string]string{
	"go": "enter", "enter": "enter", "move": "enter",
	"take": "take", "get": "take", "pickup": "take",
	"fight": "fight", "engage": "fight",
	"attack": "attack", "a": "attack",
	"skill": "skill", "s": "skill",
	"inventory": "inventory", "inv": "inventory", "i": "inventory",
	"look": "look", "l": "look",
	"score": "score",
	"end": "end", "finish": "end",
	"reset": "reset",
	"/help": "help", "help": "help",
	"/copy": "copy",
	"/roll": "roll",
	"/quit": "quit", "quit": "quit",
}

var verbsWithID = map[string]bool{"enter": true, "take": true, "fight": true}

// ParseCommand turns "go 2" or "take 3" into a Command.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return Command{}, errors.New("say something")
	}
	verb, ok := verbAliases[fields[0]]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q, try /help", fields[0])
	}
	cmd := Command{Verb: verb}
	if len(fields) > 1 {
		cmd.Arg = fields[1]
	}
	if verbsWithID[verb] {
		if cmd.Arg == "" {
			return Command{}, fmt.Errorf("%s what? give a number, e.g. %q", verb, verb+" 1")
		}
		id, err := strconv.Atoi(strings.TrimPrefix(cmd.Arg, "#"))
		if err != nil || id <= 0 {
			return Command{}, fmt.Errorf("%q is not a valid number", cmd.Arg)
		}
		cmd.ID = id
	}
	return cmd, nil
}

// ParseDice reads "2d6", "d20" or "" (one d6).
func ParseDice(arg string) (count, sides int, err error) {
	if arg == "" {
		return 1, 6, nil
	}
	left, right, ok := strings.Cut(arg, "d")
	if !ok {
		return 0, 0, fmt.Errorf("dice must look like 2d6, got %q", arg)
	}
	count = 1
	if left != "" {
		if count, err = strconv.Atoi(left); err != nil {
			return 0, 0, fmt.Errorf("bad dice count %q", left)
		}
	}
	if sides, err = strconv.Atoi(right); err != nil {
		return 0, 0, fmt.Errorf("bad dice sides %q", right)
	}
	return count, sides, nil
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadCharacters()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showCharacterModal {
		return m.updateCharacterModal(msg)
	}
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
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.metaView, mvCmd = m.metaView.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.render()

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
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			m.addEntry(entryUser, "> "+input)
			return m.handleInput(input)
		}

	case actionMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, msg.err.Error())
		}
		for _, e := range msg.entries {
			m.addEntry(e.kind, e.text)
		}
		if msg.room != nil {
			m.room = msg.room
		}
		if msg.enemy != nil {
			m.enemy = msg.enemy
		}
		if msg.clearEnemy {
			m.enemy = nil
		}
		m.render()
		return m, m.refreshPlayer()

	case playerMsg:
		if msg.err == nil {
			m.player = msg.player
			m.inventory = msg.inventory
			m.render()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.render()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaView, mvCmd = m.metaView.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6
	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 7
	m.metaView.Width = metaWidth - 2
	m.metaView.Height = m.height - 4
	m.textarea.SetWidth(logWidth - 4)
}

func (m *ConsoleUI) addEntry(kind entryKind, text string) {
	m.entries = append(m.entries, logEntry{kind, text})
	if len(m.entries) > maxLogEntries {
		m.entries = m.entries[len(m.entries)-maxLogEntries:]
	}
}

// handleInput runs a parsed command. Local commands finish immediately;
// game commands run as a tea.Cmd against the API.
func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	cmd, err := ParseCommand(input)
	if err != nil {
		m.addEntry(entryError, err.Error())
		m.render()
		return m, nil
	}

	switch cmd.Verb {
	case "help":
		m.addEntry(entrySystem, helpText)
		m.render()
		return m, nil
	case "quit":
		m.showQuitModal = true
		return m, nil
	case "copy":
		if err := clipboard.WriteAll(m.plainLog()); err != nil {
			m.addEntry(entryError, "Could not copy to clipboard: "+err.Error())
		} else {
			m.addEntry(entrySystem, "Adventure log copied to clipboard.")
		}
		m.render()
		return m, nil
	}

	m.loading = true
	m.progressTick = 0
	m.render()
	return m, tea.Batch(m.runAction(cmd), progressTick())
}

const helpText = `Commands:
• enter N / go N    walk into room N
• look              describe the current room
• take N            pick up item N here
• fight N           engage enemy N here
• attack / skill    one round of combat
• inv, score        your belongings and points
• end               finish the game in the final room
• reset             start a brand new run
• /roll 2d6         roll dice on the server
• /copy             copy this log to the clipboard
• Ctrl+C            quit`

func (m ConsoleUI) runAction(cmd Command) tea.Cmd {
	api := m.api
	playerID := m.player.ID
	roomID := m.player.RoomID
	timeout := m.config.Timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		switch cmd.Verb {
		case "enter", "look":
			target := cmd.ID
			if cmd.Verb == "look" {
				if roomID == 0 {
					return actionMsg{err: errors.New("you stand outside the dungeon; try 'enter 1'")}
				}
				target = roomID
			}
			v, err := api.EnterRoom(ctx, playerID, target)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{room: v, entries: describeRoom(v)}

		case "take":
			res, err := api.PickUp(ctx, playerID, roomID, cmd.ID)
			if err != nil {
				return actionMsg{err: err}
			}
			entries := []logEntry{{entryNarration, res.Message}}
			if res.PointsAwarded > 0 {
				entries = append(entries, logEntry{entrySystem, fmt.Sprintf("+%d points", res.PointsAwarded)})
			}
			if res.EffectApplied {
				entries = append(entries, logEntry{entryNarration, res.EffectDescription})
			}
			v, err := api.EnterRoom(ctx, playerID, roomID)
			if err != nil {
				return actionMsg{entries: entries}
			}
			return actionMsg{entries: entries, room: v}

		case "fight":
			res, err := api.StartCombat(ctx, playerID, cmd.ID)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{
				enemy:   res.Enemy,
				entries: []logEntry{{entryCombat, res.Message + " It is your turn."}},
			}

		case "attack", "skill":
			action := combat.ActionAttack
			if cmd.Verb == "skill" {
				action = combat.ActionSkill
			}
			res, err := api.Attack(ctx, playerID, action)
			if err != nil {
				return actionMsg{err: err}
			}
			out := actionMsg{}
			for _, line := range res.CombatLog {
				out.entries = append(out.entries, logEntry{entryCombat, line})
			}
			if res.IsCombatOver {
				out.clearEnemy = true
				if res.Winner == combat.WinnerPlayer {
					out.entries = append(out.entries, logEntry{entrySystem, fmt.Sprintf("Victory! +%d points", res.ScoreAwarded)})
				} else {
					out.entries = append(out.entries, logEntry{entryError, "You were defeated and crawl away to recover."})
				}
				if v, err := api.EnterRoom(ctx, playerID, res.RoomID); err == nil {
					out.room = v
				}
			} else {
				out.entries = append(out.entries, logEntry{entrySystem,
					fmt.Sprintf("You: %d HP   Enemy: %d HP", res.PlayerHealth, res.EnemyHealth)})
			}
			return out

		case "inventory":
			inv, err := api.Inventory(ctx, playerID)
			if err != nil {
				return actionMsg{err: err}
			}
			if len(inv.Items) == 0 {
				return actionMsg{entries: []logEntry{{entrySystem, "Your pack is empty."}}}
			}
			var b strings.Builder
			b.WriteString("You carry:")
			for _, it := range inv.Items {
				fmt.Fprintf(&b, "\n• %s: %s", it.Name, it.Description)
			}
			return actionMsg{entries: []logEntry{{entrySystem, b.String()}}}

		case "score":
			s, err := api.Score(ctx, playerID)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{entries: []logEntry{{entrySystem, fmt.Sprintf("Score: %d", s.FinalScore)}}}

		case "end":
			res, err := api.EndGame(ctx, playerID)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{entries: []logEntry{
				{entryNarration, res.Message},
				{entryNarration, res.Description},
				{entrySystem, res.ScoreMessage},
			}}

		case "reset":
			if err := api.FullReset(ctx, playerID); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{
				clearEnemy: true,
				room:       &game.RoomView{},
				entries:    []logEntry{{entrySystem, "The dungeon resets around you. Type 'enter 1' to begin again."}},
			}

		case "roll":
			count, sides, err := ParseDice(cmd.Arg)
			if err != nil {
				return actionMsg{err: err}
			}
			rolls, err := api.Roll(ctx, sides, count)
			if err != nil {
				return actionMsg{err: err}
			}
			total := 0
			parts := make([]string, len(rolls))
			for i, r := range rolls {
				total += r
				parts[i] = strconv.Itoa(r)
			}
			return actionMsg{entries: []logEntry{{entrySystem,
				fmt.Sprintf("Rolled %dd%d: %s (total %d)", count, sides, strings.Join(parts, ", "), total)}}}
		}
		return actionMsg{err: fmt.Errorf("unhandled command %q", cmd.Verb)}
	}
}

func describeRoom(v *game.RoomView) []logEntry {
	entries := []logEntry{{entryNarration, fmt.Sprintf("%s\n%s", v.RoomName, v.Description)}}
	if v.Unlocked {
		entries = append(entries, logEntry{entrySystem, "Your key turns in the lock."})
	}
	for _, it := range v.Items {
		entries = append(entries, logEntry{entryNarration, fmt.Sprintf("You see %s (#%d).", it.Name, it.ID)})
	}
	for _, e := range v.Enemies {
		entries = append(entries, logEntry{entryCombat, fmt.Sprintf("%s (#%d) blocks the way. %d HP.", e.Name, e.ID, e.Health)})
	}
	if v.IsFinalRoom {
		entries = append(entries, logEntry{entrySystem, "This is the heart of the dungeon. Type 'end' once it is safe."})
	}
	return entries
}

func (m ConsoleUI) refreshPlayer() tea.Cmd {
	api := m.api
	playerID := m.player.ID
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := api.GetPlayer(ctx, playerID)
		if err != nil {
			return playerMsg{err: err}
		}
		inv, err := api.Inventory(ctx, playerID)
		if err != nil {
			return playerMsg{err: err}
		}
		return playerMsg{player: p, inventory: inv.Items}
	}
}

func (m ConsoleUI) loadCharacters() tea.Cmd {
	api := m.api
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		chars, err := api.ListCharacters(ctx)
		return charactersLoadedMsg{chars, err}
	}
}

func (m ConsoleUI) selectCharacter(name string) tea.Cmd {
	api := m.api
	playerID := m.player.ID
	timeout := m.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return characterSelectedMsg{name: name, err: api.SelectCharacter(ctx, playerID, name)}
	}
}

func (m ConsoleUI) updateCharacterModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case charactersLoadedMsg:
		m.loadingCharacters = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.characters = msg.characters
		}

	case characterSelectedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.showCharacterModal = false
		m.addEntry(entrySystem, fmt.Sprintf("You are a %s. The dungeon entrance is room 1: type 'enter 1'.", msg.name))
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.ready = true
		m.render()
		m.textarea.Focus()
		return m, tea.Batch(textarea.Blink, m.refreshPlayer())

	case tea.KeyMsg:
		if m.loadingCharacters || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedCharacter > 0 {
				m.selectedCharacter--
			}
		case tea.KeyDown:
			if m.selectedCharacter < len(m.characters)-1 {
				m.selectedCharacter++
			}
		case tea.KeyEnter:
			if len(m.characters) > 0 && !m.loading {
				m.loading = true
				return m, m.selectCharacter(m.characters[m.selectedCharacter].Name)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showCharacterModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

// render rebuilds both panels for the current width.
func (m *ConsoleUI) render() {
	width := m.logViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("DUNGEON ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
	for _, e := range m.entries {
		text := wordwrap.String(e.text, width)
		switch e.kind {
		case entryNarration:
			text = narratorStyle.Render(text)
		case entryUser:
			text = userStyle.Render(text)
		case entryCombat:
			text = combatStyle.Render(text)
		case entryError:
			text = errorStyle.Render(text)
		}
		content.WriteString(text + "\n\n")
	}
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}
	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()

	m.metaView.SetContent(m.writeMetadata())
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	p := m.player
	content.WriteString(titleStyle.Render("ADVENTURER") + "\n\n")
	content.WriteString(p.Name + "\n")
	if p.CharacterName != "" {
		content.WriteString(p.CharacterName + "\n")
	}
	content.WriteString("\n")
	content.WriteString(healthStyle.Render(fmt.Sprintf("HP %d/%d", p.Health, p.MaxHealth)) + "\n")
	content.WriteString(fmt.Sprintf("Damage %d\n", p.Damage))
	content.WriteString(fmt.Sprintf("Score %d\n\n", p.Score))

	content.WriteString("Room:\n")
	switch {
	case m.room != nil && m.room.RoomID != 0:
		content.WriteString(fmt.Sprintf("%s (#%d)\n\n", m.room.RoomName, m.room.RoomID))
	case p.RoomID != 0:
		content.WriteString(fmt.Sprintf("#%d\n\n", p.RoomID))
	default:
		content.WriteString("Outside\n\n")
	}

	if m.enemy != nil {
		content.WriteString(combatStyle.Render("In combat:") + "\n")
		content.WriteString(m.enemy.Name + "\n\n")
	}

	content.WriteString("Inventory:\n")
	if len(m.inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, it := range m.inventory {
		content.WriteString("• " + it.Name + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• /help: Help\n")
	return content.String()
}

// plainLog is the adventure log without styling.
func (m ConsoleUI) plainLog() string {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, e.text)
	}
	return strings.Join(lines, "\n\n")
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the dungeon?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCharacterModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingCharacters:
		content.WriteString(modalTitleStyle.Render("Loading Characters..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Preparing..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Sharpening your blade..."))
	default:
		content.WriteString(modalTitleStyle.Render("Choose a Character"))
		content.WriteString("\n\n")
		for i, c := range m.characters {
			line := fmt.Sprintf("%-8s HP %3d  %s", c.Name, c.HP, c.SkillDescription)
			if i == m.selectedCharacter {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
			} else {
				content.WriteString(modalItemStyle.Render("  " + line))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(70).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showCharacterModal {
		return m.renderCharacterModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(logWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaView.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	usable = min(max(usable, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
