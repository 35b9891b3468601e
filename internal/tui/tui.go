// Package tui provides a Bubble Tea terminal user interface for
// osu-table-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/air-afother/osu-table-downloader/internal/catalog"
	"github.com/air-afother/osu-table-downloader/internal/config"
	"github.com/air-afother/osu-table-downloader/internal/download"
	"github.com/air-afother/osu-table-downloader/internal/extract"
	httpclient "github.com/air-afother/osu-table-downloader/internal/http"
	"github.com/air-afother/osu-table-downloader/internal/inventory"
	"github.com/air-afother/osu-table-downloader/internal/logging"
	"github.com/air-afother/osu-table-downloader/internal/model"
	"github.com/air-afother/osu-table-downloader/internal/pipeline"
)

// levelFloor and levelCeil bound the adjustable level range.
const (
	levelFloor = 0
	levelCeil  = 20
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F1FA8C"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8BE9FD")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateSetup State = iota
	StateEditPath
	StateLoading
	StateConfirm
	StateDownloading
	StateExtractPrompt
	StateExtracting
	StateComplete
	StateError
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	spinner   spinner.Model
	progress  progress.Model
	pathInput textinput.Model
	settings  *config.Settings

	cursor  int
	missing int

	snapshot    model.ProgressSnapshot
	byteWritten int64
	byteTotal   int64
	summary     *pipeline.Summary
	err         error

	// events carries messages from the pipeline goroutine into the
	// Bubble Tea loop; the decision channels carry answers back.
	events    chan tea.Msg
	confirmCh chan bool
	extractCh chan bool

	ctx context.Context

	width  int
	height int
}

// NewModel creates a new TUI model over the given settings.
func NewModel(settings *config.Settings) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ti := textinput.New()
	ti.Placeholder = "download directory"
	ti.CharLimit = 512
	ti.Width = 60

	return Model{
		state:     StateSetup,
		spinner:   sp,
		progress:  prog,
		pathInput: ti,
		settings:  settings,
		events:    make(chan tea.Msg),
		confirmCh: make(chan bool),
		extractCh: make(chan bool),
		ctx:       context.Background(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Message types
type (
	// pipelineStateMsg mirrors an orchestrator state transition.
	pipelineStateMsg struct {
		State pipeline.State
	}

	// progressMsg carries a per-item progress snapshot.
	progressMsg struct {
		Snapshot model.ProgressSnapshot
	}

	// byteMsg carries byte-level progress of the item currently
	// streaming.
	byteMsg struct {
		Written int64
		Total   int64
	}

	// confirmMsg asks the user whether to download the missing maps.
	confirmMsg struct {
		Missing int
	}

	// extractPromptMsg asks whether to extract now (auto-extract off).
	extractPromptMsg struct{}

	// doneMsg is sent when the run finishes or fails.
	doneMsg struct {
		Summary *pipeline.Summary
		Err     error
	}
)

// listen waits for the next event from the pipeline goroutine.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case pipelineStateMsg:
		switch msg.State {
		case pipeline.StateLoading:
			m.state = StateLoading
		case pipeline.StateDownloading:
			m.state = StateDownloading
		case pipeline.StateExtracting:
			m.state = StateExtracting
		}
		cmds = append(cmds, m.listen())

	case progressMsg:
		m.snapshot = msg.Snapshot
		m.byteWritten = 0
		m.byteTotal = 0
		cmds = append(cmds, m.listen())

	case byteMsg:
		m.byteWritten = msg.Written
		m.byteTotal = msg.Total
		cmds = append(cmds, m.listen())

	case confirmMsg:
		m.state = StateConfirm
		m.missing = msg.Missing
		cmds = append(cmds, m.listen())

	case extractPromptMsg:
		m.state = StateExtractPrompt
		cmds = append(cmds, m.listen())

	case doneMsg:
		m.summary = msg.Summary
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses; the third return value reports
// whether the key was consumed.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit, true
	}

	switch m.state {
	case StateSetup:
		return m.handleSetupKey(key)

	case StateEditPath:
		switch key {
		case "enter":
			if path := strings.TrimSpace(m.pathInput.Value()); path != "" {
				m.settings.DownloadDir = path
			}
			m.pathInput.Blur()
			m.state = StateSetup
			return m, nil, true
		case "esc":
			m.pathInput.Blur()
			m.state = StateSetup
			return m, nil, true
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd, true

	case StateConfirm:
		switch key {
		case "y", "Y", "enter":
			go func() { m.confirmCh <- true }()
			return m, nil, true
		case "n", "N", "esc":
			go func() { m.confirmCh <- false }()
			return m, nil, true
		}

	case StateExtractPrompt:
		switch key {
		case "y", "Y", "enter":
			go func() { m.extractCh <- true }()
			return m, nil, true
		case "n", "N", "esc":
			go func() { m.extractCh <- false }()
			return m, nil, true
		}

	case StateComplete, StateError:
		switch key {
		case "q", "esc", "enter":
			return m, tea.Quit, true
		case "r":
			m.state = StateSetup
			m.summary = nil
			m.err = nil
			m.snapshot = model.ProgressSnapshot{}
			return m, nil, true
		}
	}

	return m, nil, false
}

// handleSetupKey edits table selection and ranges on the setup screen.
func (m Model) handleSetupKey(key string) (tea.Model, tea.Cmd, bool) {
	tables := m.settings.Tables

	switch key {
	case "esc", "q":
		return m, tea.Quit, true

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil, true

	case "down", "j":
		if m.cursor < len(tables)-1 {
			m.cursor++
		}
		return m, nil, true

	case " ":
		tables[m.cursor].Enabled = !tables[m.cursor].Enabled
		return m, nil, true

	case "-":
		if tables[m.cursor].MinLevel > levelFloor {
			tables[m.cursor].MinLevel--
		}
		return m, nil, true

	case "+", "=":
		if tables[m.cursor].MinLevel < tables[m.cursor].MaxLevel {
			tables[m.cursor].MinLevel++
		}
		return m, nil, true

	case "[":
		if tables[m.cursor].MaxLevel > tables[m.cursor].MinLevel {
			tables[m.cursor].MaxLevel--
		}
		return m, nil, true

	case "]":
		if tables[m.cursor].MaxLevel < levelCeil {
			tables[m.cursor].MaxLevel++
		}
		return m, nil, true

	case "a":
		m.settings.AutoExtract = !m.settings.AutoExtract
		return m, nil, true

	case "o":
		m.pathInput.SetValue(m.settings.DownloadDir)
		m.pathInput.Focus()
		m.state = StateEditPath
		return m, textinput.Blink, true

	case "enter":
		if len(m.settings.EnabledTables()) == 0 {
			return m, nil, true
		}
		m.state = StateLoading
		return m, tea.Batch(m.startRun(), m.listen(), m.spinner.Tick), true
	}

	return m, nil, false
}

// startRun launches the pipeline on its own goroutine. Decision points
// and progress flow back through the model's channels.
func (m Model) startRun() tea.Cmd {
	events := m.events
	confirmCh := m.confirmCh
	extractCh := m.extractCh
	settings := m.settings
	ctx := m.ctx

	return func() tea.Msg {
		store, err := inventory.Open(settings.DatabasePath)
		if err != nil {
			return doneMsg{Err: err}
		}
		defer store.Close()

		client := httpclient.NewClient()
		logger := logging.Discard()

		engine := download.NewEngine(client, settings.DownloadBaseURL, logger)
		engine.SetByteProgress(func(written, total int64) {
			// Dropping updates is fine, blocking the stream is not.
			select {
			case events <- byteMsg{Written: written, Total: total}:
			default:
			}
		})

		o := pipeline.New(store, catalog.NewFetcher(client), engine, extract.New(logger), logger)
		o.OnState = func(s pipeline.State) {
			events <- pipelineStateMsg{State: s}
		}
		o.OnProgress = func(p model.ProgressSnapshot) {
			events <- progressMsg{Snapshot: p}
		}
		o.Confirm = func(missing int) bool {
			events <- confirmMsg{Missing: missing}
			return <-confirmCh
		}
		if !settings.AutoExtract {
			o.ExtractPrompt = func() bool {
				events <- extractPromptMsg{}
				return <-extractCh
			}
		}

		summary, err := o.Run(ctx, pipeline.Request{
			Tables:      settings.EnabledTables(),
			TargetDir:   settings.DownloadDir,
			AutoExtract: settings.AutoExtract,
		})
		return doneMsg{Summary: summary, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("osu!mania table downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Reconcile local songs against the difficulty tables"))
	b.WriteString("\n\n")

	switch m.state {
	case StateSetup:
		b.WriteString(m.viewSetup())
	case StateEditPath:
		b.WriteString(m.viewEditPath())
	case StateLoading:
		b.WriteString(m.viewLoading())
	case StateConfirm:
		b.WriteString(m.viewConfirm())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateExtractPrompt:
		b.WriteString(m.viewExtractPrompt())
	case StateExtracting:
		b.WriteString(m.viewExtracting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewSetup() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Select tables to download:"))
	b.WriteString("\n\n")

	for i, table := range m.settings.Tables {
		check := "[ ]"
		if table.Enabled {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %-8s  level %2d..%-2d", check, table.Name, table.MinLevel, table.MaxLevel)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	autoCheck := "[ ]"
	if m.settings.AutoExtract {
		autoCheck = "[x]"
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s Automatically extract and delete .osz files\n", autoCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadDir)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Song database: %s", m.settings.DatabasePath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewEditPath() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Download directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewLoading() string {
	return m.spinner.View() + " " + subtitleStyle.Render("Loading song database and table catalogs...") + "\n"
}

func (m Model) viewConfirm() string {
	var b strings.Builder
	b.WriteString(infoStyle.Render(fmt.Sprintf("%d maps missing.", m.missing)))
	b.WriteString("\n\n")
	b.WriteString("Download now? (y/n)\n")
	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.progress.ViewAs(m.snapshot.Fraction()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(m.snapshot.String()))
	b.WriteString("\n")

	if m.byteWritten > 0 {
		current := humanize.Bytes(uint64(m.byteWritten))
		if m.byteTotal > 0 {
			current += " / " + humanize.Bytes(uint64(m.byteTotal))
		}
		b.WriteString(dimStyle.Render("current map: " + current))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewExtractPrompt() string {
	return "Do you want to extract downloaded .osz files now? (y/n)\n"
}

func (m Model) viewExtracting() string {
	return m.spinner.View() + " " + subtitleStyle.Render("Extracting archives...") + "\n"
}

func (m Model) viewComplete() string {
	if m.summary == nil {
		return successStyle.Render("Done.") + "\n"
	}

	if m.summary.NothingToDo {
		return boxStyle.Render("All maps in the selected range are already present.")
	}
	if m.summary.Cancelled {
		return boxStyle.Render("Cancelled.")
	}

	status := fmt.Sprintf("Download complete!\n\n%s", model.FormatOutcomes(m.summary.Outcomes))
	if m.summary.Extracted {
		status += "\narchives extracted"
	}
	return boxStyle.Render(status)
}

func (m Model) viewError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Error:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error())
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateSetup:
		return "space: toggle table • -/+: min level • [/]: max level • a: auto-extract • o: path • enter: start • esc: quit"
	case StateEditPath:
		return "enter: save • esc: cancel"
	case StateConfirm, StateExtractPrompt:
		return "y: yes • n: no"
	case StateLoading, StateDownloading, StateExtracting:
		return "running..."
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
