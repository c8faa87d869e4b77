package picker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/beacon/internal/result"
)

// defaultDebounce is the delay after the last keystroke before a search
// is issued, when no delay is configured.
const defaultDebounce = 150 * time.Millisecond

// pickerState is the picker's state machine.
type pickerState int

const (
	stateIdle      pickerState = iota // Empty query, nothing to show
	stateLoading                      // Search in flight
	stateLoaded                       // Results displayed
	stateEmpty                        // Search succeeded with no rows
	stateError                        // Search failed
	stateCancelled                    // User cancelled (Esc / Ctrl+C)
)

// searchDoneMsg is sent when an async Searcher.Search completes.
type searchDoneMsg struct {
	requestID uint64
	results   []result.Result
	err       error
}

// debounceMsg fires after the debounce timer expires.
type debounceMsg struct {
	id uint64 // Must match current debounceID to be accepted
}

// initMsg triggers the initial search through Update so state mutations
// are visible to the Bubble Tea runtime.
type initMsg struct{}

// Model is the Bubble Tea model for the launcher picker.
type Model struct {
	input     textinput.Model
	state     pickerState
	results   []result.Result
	selection int // Index into results; -1 when empty
	err       error

	requestID uint64 // Monotonic counter for stale detection
	searcher  Searcher
	debounce  time.Duration

	width  int
	height int

	// choice holds the activated result after the user presses Enter.
	choice *result.Result

	// cancelSearch cancels the in-flight Searcher.Search context.
	cancelSearch context.CancelFunc

	// debounceID tracks the latest debounce timer; only a matching
	// debounceMsg triggers a search.
	debounceID uint64
}

// Option configures a Model.
type Option func(*Model)

// WithDebounce overrides the keystroke debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.debounce = d
		}
	}
}

// WithInitialQuery seeds the query input and triggers an initial search.
func WithInitialQuery(query string) Option {
	return func(m *Model) {
		m.input.SetValue(query)
		m.input.CursorEnd()
	}
}

// NewModel creates a picker Model over the given searcher.
func NewModel(searcher Searcher, opts ...Option) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = promptStyle
	input.Placeholder = "Search apps, files, math, web..."
	input.Focus()

	m := Model{
		input:     input,
		state:     stateIdle,
		selection: -1,
		searcher:  searcher,
		debounce:  defaultDebounce,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Choice returns the activated result, or nil if the picker was
// cancelled.
func (m Model) Choice() *result.Result {
	return m.choice
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return initMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case debounceMsg:
		return m.handleDebounce(msg)

	case initMsg:
		if m.input.Value() == "" {
			return m, nil
		}
		return m, m.startSearch()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input. Navigation keys are consumed;
// everything else feeds the query input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.state = stateCancelled
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyEnter:
		if m.selection >= 0 && m.selection < len(m.results) {
			chosen := m.results[m.selection]
			m.choice = &chosen
		}
		m.cancelInflight()
		return m, tea.Quit

	case tea.KeyUp, tea.KeyCtrlP:
		if m.selection > 0 {
			m.selection--
		}
		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		if m.selection < len(m.results)-1 {
			m.selection++
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() == before {
		return m, cmd
	}

	if m.input.Value() == "" {
		// Empty query clears the list immediately, no search round-trip.
		m.cancelInflight()
		m.state = stateIdle
		m.results = nil
		m.selection = -1
		return m, cmd
	}

	return m, tea.Batch(cmd, m.startDebounce())
}

// handleSearchDone processes the result of an async search.
func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	// Discard stale responses.
	if msg.requestID != m.requestID {
		return m, nil
	}

	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		m.results = nil
		m.selection = -1
		return m, nil
	}

	m.results = msg.results
	if len(m.results) == 0 {
		m.state = stateEmpty
		m.selection = -1
	} else {
		m.state = stateLoaded
		m.selection = 0
	}

	return m, nil
}

// handleDebounce fires the search if the timer is still current.
func (m Model) handleDebounce(msg debounceMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.debounceID {
		return m, nil // Stale timer; a newer keystroke superseded it.
	}
	return m, m.startSearch()
}

// startDebounce increments the debounce counter and returns a tea.Tick
// that fires after the debounce delay.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id := m.debounceID
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// startSearch cancels any in-flight search, increments requestID, and
// returns a tea.Cmd that calls the searcher.
func (m *Model) startSearch() tea.Cmd {
	m.cancelInflight()
	m.requestID++
	m.state = stateLoading

	reqID := m.requestID
	query := m.input.Value()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSearch = cancel

	s := m.searcher
	return func() tea.Msg {
		results, err := s.Search(ctx, query)
		if err != nil {
			return searchDoneMsg{requestID: reqID, err: err}
		}
		return searchDoneMsg{requestID: reqID, results: results}
	}
}

// cancelInflight cancels any in-progress search context.
func (m *Model) cancelInflight() {
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}
}

// listHeight returns the number of visible result rows.
func (m Model) listHeight() int {
	// 1 row for the query line, 1 for the status line.
	const chrome = 2
	h := m.height - chrome
	if h < 1 {
		h = 10 // Before the first WindowSizeMsg
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteRune('\n')
	b.WriteString(m.viewContent())

	return b.String()
}

// viewContent renders the result list or a status message.
func (m Model) viewContent() string {
	switch m.state {
	case stateIdle:
		return dimStyle.Render("Type to search")

	case stateLoading:
		return dimStyle.Render("Searching...")

	case stateEmpty:
		return dimStyle.Render("No results")

	case stateError:
		msg := "Error"
		if m.err != nil {
			msg = fmt.Sprintf("Error: %s", m.err)
		}
		return errorStyle.Render(msg)

	case stateCancelled:
		return dimStyle.Render("Cancelled")

	case stateLoaded:
		return m.viewList()

	default:
		return ""
	}
}

// viewList renders the results with a selection marker and kind badge.
func (m Model) viewList() string {
	var b strings.Builder
	maxRows := m.listHeight()
	for i, res := range m.results {
		if i >= maxRows {
			break
		}
		line := renderRow(res, i == m.selection, m.width)
		b.WriteString(line)
		if i < len(m.results)-1 && i < maxRows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
