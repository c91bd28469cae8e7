package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/imageposter/internal/dtf"
	"github.com/five82/imageposter/internal/logtail"
	"github.com/five82/imageposter/internal/prefs"
	"github.com/five82/imageposter/internal/state"
)

// Backend is what the TUI asks of the session layer.
type Backend interface {
	Restore(ctx context.Context) (dtf.Account, bool, error)
	Login(ctx context.Context, email, password string) (dtf.Account, error)
	LoginWithToken(ctx context.Context, token string) (dtf.Account, error)
	Publish(ctx context.Context, source, title string, watermark bool) (string, error)
	Logout() error
	Open(url string) error
}

// Screen is the active page.
type Screen int

const (
	ScreenRestoring Screen = iota
	ScreenLogin
	ScreenCompose
	ScreenProgress
	ScreenResult
)

const (
	logPaneLines = 8
	fieldWidth   = 60
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   Backend
	Store     *state.Store
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	LogPath   string
	Source    string
	Title     string
	Email     string
	Watermark bool
	NoBrowser bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	backend   Backend
	store     *state.Store
	prefsPath string
	logPath   string
	pollTick  time.Duration
	autoOpen  bool

	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	bar      progress.Model
	logo     string
	width    int
	height   int
	showHelp bool
	showLogs bool

	screen   Screen
	account  dtf.Account
	busy     bool
	status   string
	isError  bool
	draftURL string
	lastErr  error
	cancel   context.CancelFunc

	tokenMode bool
	login     form // email, password
	token     form // token
	compose   form // source, title
	watermark bool

	snapshot state.Snapshot
	logLines []string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 250 * time.Millisecond
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	email := newInput("Email", "you@example.com", false)
	email.SetValue(opts.Email)
	source := newInput("Images", "directory, or files separated by \", \"", false)
	source.SetValue(opts.Source)
	title := newInput("Title", "post title", false)
	title.SetValue(opts.Title)

	m := Model{
		ctx:       ctx,
		backend:   opts.Backend,
		store:     store,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		autoOpen:  !opts.NoBrowser,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		logo:      createLogo(),
		screen:    ScreenRestoring,
		login:     newForm(email, newInput("Password", "", true)),
		token:     newForm(newInput("Token", "osnova-remember cookie value", true)),
		compose:   newForm(source, title),
		watermark: opts.Watermark,
	}
	m.bar.Width = fieldWidth
	m.login.blur()
	m.token.blur()
	m.compose.blur()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		m.spinner.Tick,
		restoreCmd(m.ctx, m.backend),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := min(fieldWidth, max(20, msg.Width-16))
		m.bar.Width = w
		m.login.setWidth(w)
		m.token.setWidth(w)
		m.compose.setWidth(w)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case logLinesMsg:
		m.logLines = msg
		return m, nil

	case restoreMsg:
		m.busy = false
		if msg.err != nil {
			m.setError("Saved session could not be checked: " + errorText(msg.err))
		}
		if msg.ok {
			return m.enterCompose(msg.account)
		}
		return m.enterLogin()

	case loginMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(errorText(msg.err))
			return m, nil
		}
		m.clearStatus()
		return m.enterCompose(msg.account)

	case publishMsg:
		m.busy = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.screen = ScreenResult
		m.snapshot = m.store.Snapshot()
		m.draftURL = msg.url
		m.lastErr = msg.err
		if msg.err != nil {
			m.setError(errorText(msg.err))
			return m, nil
		}
		m.setInfo("Draft saved")
		if m.autoOpen {
			return m, openCmd(m.backend, msg.url)
		}
		return m, nil

	case openMsg:
		if msg.err != nil {
			m.setError(errorText(msg.err))
		}
		return m, nil

	case logoutMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(errorText(msg.err))
		} else {
			m.setInfo("Logged out")
		}
		m.account = dtf.Account{}
		return m.enterLogin()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.screen {
	case ScreenLogin, ScreenCompose:
		return m.handleFormKey(msg)
	case ScreenProgress:
		return m.handleProgressKey(msg)
	case ScreenResult:
		return m.handleResultKey(msg)
	default:
		if key.Matches(msg, m.keys.FormQuit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FormQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.FormHelp):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.FormTheme):
		m.cycleTheme()
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	f := m.activeForm()
	switch {
	case key.Matches(msg, m.keys.Next):
		return m, f.move(1)
	case key.Matches(msg, m.keys.Prev):
		return m, f.move(-1)
	case key.Matches(msg, m.keys.Submit):
		if !f.atLast() {
			return m, f.move(1)
		}
		if m.screen == ScreenLogin {
			return m.submitLogin()
		}
		return m.submitCompose()
	case m.screen == ScreenLogin && key.Matches(msg, m.keys.ToggleMode):
		m.tokenMode = !m.tokenMode
		m.login.blur()
		m.token.blur()
		return m, m.activeForm().setFocus(0)
	case m.screen == ScreenCompose && key.Matches(msg, m.keys.ToggleMark):
		m.watermark = !m.watermark
		return m, nil
	case m.screen == ScreenCompose && key.Matches(msg, m.keys.Logout):
		m.busy = true
		return m, logoutCmd(m.backend)
	}
	return m, f.update(msg)
}

func (m Model) handleProgressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FormQuit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		if m.cancel != nil {
			m.cancel()
			m.setInfo("Cancelling...")
		}
	case key.Matches(msg, m.keys.ToggleLogPane):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, readLogCmd(m.logPath)
		}
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	}
	return m, nil
}

func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Open):
		if m.draftURL != "" {
			return m, openCmd(m.backend, m.draftURL)
		}
	case key.Matches(msg, m.keys.NewPost), key.Matches(msg, m.keys.Back):
		m.clearStatus()
		m.store.Reset()
		return m.enterCompose(m.account)
	case key.Matches(msg, m.keys.Logout):
		m.busy = true
		return m, logoutCmd(m.backend)
	case key.Matches(msg, m.keys.ToggleLogPane):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, readLogCmd(m.logPath)
		}
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	}
	return m, nil
}

func (m *Model) activeForm() *form {
	switch {
	case m.screen == ScreenCompose:
		return &m.compose
	case m.tokenMode:
		return &m.token
	default:
		return &m.login
	}
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.tokenMode {
		token := m.token.value(0)
		if token == "" {
			m.setError("Paste the osnova-remember cookie value")
			return m, nil
		}
		m.busy = true
		m.setInfo("Checking token...")
		return m, tokenLoginCmd(m.ctx, m.backend, token)
	}
	email := m.login.value(0)
	password := m.login.inputs[1].Value()
	if email == "" || password == "" {
		m.setError("Email and password are required")
		return m, nil
	}
	m.busy = true
	m.setInfo("Logging in...")
	return m, loginCmd(m.ctx, m.backend, email, password)
}

func (m Model) submitCompose() (tea.Model, tea.Cmd) {
	source := m.compose.value(0)
	if source == "" {
		m.setError("Choose a directory or list the files to upload")
		return m, nil
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.busy = true
	m.screen = ScreenProgress
	m.draftURL = ""
	m.lastErr = nil
	m.compose.blur()
	m.clearStatus()
	return m, tea.Batch(
		publishCmd(ctx, m.backend, source, m.compose.value(1), m.watermark),
		fetchSnapshotCmd(m.store),
	)
}

func (m Model) enterLogin() (tea.Model, tea.Cmd) {
	m.screen = ScreenLogin
	m.compose.blur()
	m.login.inputs[1].SetValue("")
	m.token.inputs[0].SetValue("")
	m.login.blur()
	m.token.blur()
	return m, m.activeForm().setFocus(0)
}

func (m Model) enterCompose(account dtf.Account) (tea.Model, tea.Cmd) {
	m.account = account
	m.screen = ScreenCompose
	m.login.blur()
	m.token.blur()
	return m, m.compose.setFocus(0)
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	name := m.theme.Name
	_, _ = prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name })
}

func (m *Model) setError(text string) {
	m.status = text
	m.isError = true
}

func (m *Model) setInfo(text string) {
	m.status = text
	m.isError = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.isError = false
}

// handleTick refreshes the job snapshot and, when shown, the log pane.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.store), tickCmd(m.pollTick)}
	if m.showLogs && m.logPath != "" {
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

// errorText turns an error into a line for the status bar.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	if e, ok := dtf.AsError(err); ok {
		if e.Message != "" {
			return e.Message
		}
		if e.Kind == dtf.KindInvalidCredentials {
			return "Login rejected by dtf.ru"
		}
	}
	return err.Error()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logLinesMsg []string

type restoreMsg struct {
	account dtf.Account
	ok      bool
	err     error
}

type loginMsg struct {
	account dtf.Account
	err     error
}

type publishMsg struct {
	url string
	err error
}

type openMsg struct{ err error }

type logoutMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, logPaneLines)
		if err != nil {
			return logLinesMsg{"log unavailable: " + err.Error()}
		}
		return logLinesMsg(lines)
	}
}

func restoreCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		account, ok, err := b.Restore(ctx)
		return restoreMsg{account: account, ok: ok, err: err}
	}
}

func loginCmd(ctx context.Context, b Backend, email, password string) tea.Cmd {
	return func() tea.Msg {
		account, err := b.Login(ctx, email, password)
		return loginMsg{account: account, err: err}
	}
}

func tokenLoginCmd(ctx context.Context, b Backend, token string) tea.Cmd {
	return func() tea.Msg {
		account, err := b.LoginWithToken(ctx, token)
		return loginMsg{account: account, err: err}
	}
}

func publishCmd(ctx context.Context, b Backend, source, title string, watermark bool) tea.Cmd {
	return func() tea.Msg {
		url, err := b.Publish(ctx, source, title, watermark)
		return publishMsg{url: url, err: err}
	}
}

func openCmd(b Backend, url string) tea.Cmd {
	return func() tea.Msg {
		return openMsg{err: b.Open(url)}
	}
}

func logoutCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: b.Logout()}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
