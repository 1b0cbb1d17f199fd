package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/well-escape/internal/core"
	"github.com/vovakirdan/well-escape/internal/engine"
	"github.com/vovakirdan/well-escape/internal/storage"
)

// helpHeight is the number of rows reserved below the playfield.
const helpHeight = 1

// Options configures an interactive session.
type Options struct {
	Game   *engine.Game
	Store  *storage.Store // Optional run history
	Config core.RuntimeConfig
	Logger *log.Logger
	// SnapshotDir receives debug snapshots; empty disables them.
	SnapshotDir string
}

// Model is the Bubble Tea model for an interactive well.
type Model struct {
	game        *engine.Game
	screen      *core.Screen
	store       *storage.Store
	logger      *log.Logger
	config      core.RuntimeConfig
	snapshotDir string
	keys        GameKeyMap
	mapper      *KeyMapper
	help        help.Model
	input       heldInput
	gameState   core.GameState
	quitting    bool
	runSaved    bool // Whether the current life has been recorded
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(opts Options) Model {
	cfg := opts.Config
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	keys := DefaultGameKeyMap()
	h := help.New()
	h.ShowAll = false
	h.Width = cfg.ScreenW

	return Model{
		game:        opts.Game,
		screen:      core.NewScreen(cfg.ScreenW, max(1, cfg.ScreenH-helpHeight)),
		store:       opts.Store,
		logger:      logger,
		config:      cfg,
		snapshotDir: opts.SnapshotDir,
		keys:        keys,
		mapper:      NewKeyMapper(keys),
		help:        h,
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.mapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		m.recordRun()
		return m, tea.Quit
	}
	if action == core.ActionRestart && !m.gameState.GameOver && !m.gameState.Won {
		return m, nil
	}
	m.input.press(action)
	return m, nil
}

// handleResize processes window resize events. The well has a fixed size,
// so the game keeps running.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, max(1, msg.Height-helpHeight))
	m.help.Width = msg.Width
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	frame := m.input.frame()
	restarting := frame.Has(core.ActionRestart) && (m.gameState.GameOver || m.gameState.Won)
	if restarting {
		m.input.release()
	}

	result := m.game.Step(frame)
	m.gameState = result.State

	if restarting {
		m.runSaved = false
		m.logger.Info("restart", "seed", m.game.Seed())
	}
	if m.gameState.GameOver || m.gameState.Won {
		m.recordRun()
	}

	return m, tickCmd(m.config.TickRate)
}

// recordRun stores the current life once it has ended.
func (m *Model) recordRun() {
	if m.runSaved || m.store == nil {
		return
	}
	st := m.game.State()
	if !st.GameOver && !st.Won {
		return
	}
	m.runSaved = true

	stats := m.game.Stats()
	run := storage.Run{
		Difficulty: string(m.game.Preset()),
		Source:     storage.SourcePlay,
		Outcome:    storage.OutcomeGameOver,
		Cause:      string(m.game.Cause()),
		Score:      stats.Score,
		Lines:      stats.Lines,
		Pieces:     stats.Pieces,
		Retargets:  stats.Retargets,
		Sabotages:  stats.Sabotages,
		Ticks:      int64(stats.Ticks),
		Seed:       m.game.Seed(),
		GodMode:    m.game.GodMode(),
	}
	if st.Won {
		run.Outcome = storage.OutcomeEscaped
	}
	if _, err := m.store.SaveRun(run); err != nil {
		m.logger.Error("cannot save run", "err", err)
		return
	}
	m.logger.Info("run saved", "outcome", run.Outcome, "cause", run.Cause, "score", run.Score)

	if m.snapshotDir != "" {
		m.saveSnapshot()
	}
}

// saveSnapshot writes a compressed debug snapshot of the finished run.
func (m *Model) saveSnapshot() {
	if err := os.MkdirAll(m.snapshotDir, 0o755); err != nil {
		m.logger.Error("cannot create snapshot directory", "err", err)
		return
	}
	name := fmt.Sprintf("well_%s.json.zst", time.Now().Format("20060102_150405"))
	path := filepath.Join(m.snapshotDir, name)
	if err := engine.WriteSnapshotFile(path, m.game.Snapshot()); err != nil {
		m.logger.Error("cannot write snapshot", "err", err)
		return
	}
	m.logger.Info("snapshot written", "path", path)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".well", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("well_%s.txt", timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Run starts the Bubble Tea program for an interactive session.
func Run(opts Options) error {
	model := NewModel(opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
