package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// DefaultRefreshInterval is how often the dashboard re-reads engine state.
const DefaultRefreshInterval = time.Second

// recentCycles is the number of history rows shown.
const recentCycles = 5

// App is the dashboard model following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	help    help.Model
	spinner spinner.Model
	bar     *status.Bar

	// refresh is the polling period for engine state.
	refresh time.Duration

	status  domain.SchedulerStatus
	config  *domain.Config
	recent  []domain.CycleRecord
	syncing bool

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a dashboard with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingScheduler)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	h := help.New()
	h.Styles.ShortKey = s.Help
	h.Styles.ShortDesc = s.Muted

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		help:    h,
		spinner: sp,
		bar:     status.NewBar(s, km),
		refresh: DefaultRefreshInterval,
		status:  ports.Scheduler.Status(),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithRefreshInterval overrides the polling period.
func (a *App) WithRefreshInterval(d time.Duration) *App {
	if d > 0 {
		a.refresh = d
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("fanslysync"),
		a.load(),
		a.spinner.Tick,
		a.tick(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case messages.Tick:
		return a, tea.Batch(a.load(), a.tick())

	case messages.SnapshotLoaded:
		if msg.Err != nil {
			a.bar.SetError(msg.Err)
			return a, nil
		}
		a.status = msg.Status
		a.config = msg.Config
		a.recent = msg.Recent
		a.bar.SetState(msg.Status.State)
		return a, nil

	case messages.SyncFinished:
		a.syncing = false
		switch {
		case errors.Is(msg.Err, domain.ErrSyncInProgress):
			a.bar.SetMessage("a cycle is already running")
		case msg.Err != nil:
			a.bar.SetError(msg.Err)
		case msg.Result == nil:
			a.bar.Clear()
		case msg.Result.ReauthRequired:
			a.bar.SetError(errors.New("token rejected, run: fanslysync token set"))
		case !msg.Result.Success():
			a.bar.SetError(msg.Result.Err)
		default:
			a.bar.SetMessage("sync complete: " + msg.Result.Delta.Summary())
		}
		return a, a.load()

	case messages.AutoSyncToggled:
		if msg.Err != nil {
			a.bar.SetError(msg.Err)
			return a, nil
		}
		if msg.Enabled {
			a.bar.SetMessage("auto sync enabled")
		} else {
			a.bar.SetMessage("auto sync disabled")
		}
		return a, a.load()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, a.keymap.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil
	case key.Matches(msg, a.keymap.Sync):
		if a.syncing {
			return nil
		}
		a.syncing = true
		a.bar.SetMessage("syncing...")
		return a.syncNow()
	case key.Matches(msg, a.keymap.ToggleAuto):
		return a.toggleAuto()
	case key.Matches(msg, a.keymap.Refresh):
		return a.load()
	}
	return nil
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.refresh, func(time.Time) tea.Msg {
		return messages.Tick{}
	})
}

// load reads the scheduler status, the stored Config and recent history.
func (a *App) load() tea.Cmd {
	ports := a.ports
	ctx := a.ctx
	return func() tea.Msg {
		cfg, err := ports.Config.Load(ctx)
		if err != nil {
			return messages.SnapshotLoaded{Err: err}
		}
		loaded := messages.SnapshotLoaded{
			Status: ports.Scheduler.Status(),
			Config: cfg,
		}
		if ports.History != nil {
			recent, err := ports.History.Recent(ctx, recentCycles)
			if err == nil {
				loaded.Recent = recent
			}
		}
		return loaded
	}
}

func (a *App) syncNow() tea.Cmd {
	scheduler := a.ports.Scheduler
	ctx := a.ctx
	return func() tea.Msg {
		result, err := scheduler.SyncNow(ctx)
		return messages.SyncFinished{Result: result, Err: err}
	}
}

func (a *App) toggleAuto() tea.Cmd {
	ports := a.ports
	ctx := a.ctx
	return func() tea.Msg {
		cfg, err := ports.Config.Update(ctx, func(c *domain.Config) error {
			c.AutoSyncEnabled = !c.AutoSyncEnabled
			return nil
		})
		if err != nil {
			return messages.AutoSyncToggled{Err: err}
		}
		if err := ports.Scheduler.Reconfigure(ctx); err != nil {
			return messages.AutoSyncToggled{Enabled: cfg.AutoSyncEnabled, Err: err}
		}
		return messages.AutoSyncToggled{Enabled: cfg.AutoSyncEnabled}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("fanslysync dashboard"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Box.Render(strings.Join(a.summaryRows(), "\n")))
	b.WriteString("\n\n")

	b.WriteString(a.styles.Subtitle.Render("Recent cycles"))
	b.WriteString("\n")
	if len(a.recent) == 0 {
		b.WriteString(a.styles.Muted.Render("  no cycles yet"))
		b.WriteString("\n")
	}
	for _, rec := range a.recent {
		b.WriteString("  ")
		b.WriteString(a.cycleLine(rec))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.help.View(a.keymap))
	b.WriteString("\n")
	b.WriteString(a.bar.View())
	return b.String()
}

func (a *App) summaryRows() []string {
	state := a.styles.State(a.status.State).Render(a.status.State.String())
	if a.status.State.InFlight() || a.syncing {
		state = a.spinner.View() + " " + state
	}

	rows := []string{a.styles.Row("State", state)}
	if a.config != nil {
		rows = append(rows,
			a.styles.Row("Auto sync", a.onOff(a.config.AutoSyncEnabled)),
			a.styles.Row("Interval", a.config.Interval().String()),
			a.styles.Row("Last sync", formatTime(a.config.LastSyncTime())),
			a.styles.Row("Followers", fmt.Sprintf("%d", len(a.config.LastSyncData.Followers))),
			a.styles.Row("Subscribers", fmt.Sprintf("%d", len(a.config.LastSyncData.Subscribers))),
		)
	}
	if !a.status.NextRun.IsZero() {
		rows = append(rows, a.styles.Row("Next run", formatTime(a.status.NextRun)))
	}
	if a.status.ConsecutiveFailures > 0 {
		rows = append(rows, a.styles.Row("Failures",
			a.styles.Warning.Render(fmt.Sprintf("%d", a.status.ConsecutiveFailures))))
	}
	if a.status.ReauthRequired {
		rows = append(rows, a.styles.Row("Token", a.styles.Error.Render("rejected")))
	}
	return rows
}

func (a *App) onOff(v bool) string {
	if v {
		return a.styles.Success.Render("enabled")
	}
	return a.styles.Warning.Render("disabled")
}

func (a *App) cycleLine(rec domain.CycleRecord) string {
	when := formatTime(rec.EndedAt)
	trigger := a.styles.Muted.Render(string(rec.Trigger))
	switch {
	case rec.Success:
		return fmt.Sprintf("%s %s %s %s", a.styles.Success.Render("ok    "), when, trigger, rec.Summary)
	case rec.ReauthRequired:
		return fmt.Sprintf("%s %s %s", a.styles.Error.Render("auth  "), when, trigger)
	default:
		return fmt.Sprintf("%s %s %s %s", a.styles.Error.Render("failed"), when, trigger, rec.Error)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// Status returns the last scheduler status the dashboard loaded.
func (a *App) Status() domain.SchedulerStatus {
	return a.status
}

// Config returns the last Config the dashboard loaded.
func (a *App) Config() *domain.Config {
	return a.config
}

// Recent returns the history rows on display.
func (a *App) Recent() []domain.CycleRecord {
	return a.recent
}

// Syncing reports whether a manual cycle started from the dashboard is running.
func (a *App) Syncing() bool {
	return a.syncing
}

// Bar returns the status bar.
func (a *App) Bar() *status.Bar {
	return a.bar
}

// Ready returns whether the app has received its window size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.bar.SetWidth(width)
	a.help.Width = width
}
