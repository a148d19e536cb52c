// Package tui is the terminal workout player: a catalog browser, a workout
// preview, the live session player and a completion summary.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/models"
	"github.com/meltforce/pulsefit/internal/session"
)

// Recorder stores a finished session. *storage.DB satisfies it.
type Recorder interface {
	ApplySession(ctx context.Context, rec models.SessionRecord) (models.SessionRecord, error)
}

type screen int

const (
	screenList screen = iota
	screenPreview
	screenPlayer
	screenComplete
)

// tickMsg carries the generation of the tick chain that scheduled it. A
// pause or close bumps the generation so ticks already in flight are dropped.
type tickMsg struct{ gen int }

type recordedMsg struct {
	rec models.SessionRecord
	err error
}

// Options configures a Model.
type Options struct {
	Catalog  *catalog.Catalog
	Recorder Recorder
	Log      *slog.Logger
	// Sound rings the terminal bell on Bell at interval boundaries.
	Sound bool
	Bell  io.Writer
	// WorkoutID opens the preview of that workout instead of the list.
	WorkoutID string
	// Interval between ticks; one second when zero.
	Interval time.Duration
	Now      func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	opts Options

	screen   screen
	tabs     []models.Category
	tab      int
	cursor   int
	selected models.Workout

	ctrl      *session.Controller
	gen       int
	startedAt time.Time
	final     session.Snapshot

	keys    keyMap
	help    help.Model
	overall progress.Model
	current progress.Model
	status  string
	failed  bool
	width   int
}

// New builds the model. Catalog is required.
func New(opts Options) Model {
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := Model{
		opts:    opts,
		tabs:    append([]models.Category{""}, models.Categories...),
		keys:    defaultKeys(),
		help:    help.New(),
		overall: progress.New(progress.WithSolidFill(string(Sapphire)), progress.WithoutPercentage()),
		current: progress.New(progress.WithSolidFill(string(Peach)), progress.WithoutPercentage()),
		status:  "ready",
	}
	if opts.WorkoutID != "" {
		m.selected = opts.Catalog.GetOrDefault(opts.WorkoutID)
		m.screen = screenPreview
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) visible() []models.Workout {
	return m.opts.Catalog.ByCategory(m.tabs[m.tab])
}

func (m Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.opts.Interval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		barWidth := min(max(msg.Width-12, 10), 60)
		m.overall.Width = barWidth
		m.current.Width = barWidth
		return m, nil

	case tickMsg:
		return m.onTick(msg)

	case recordedMsg:
		m.failed = msg.err != nil
		if msg.err != nil {
			m.status = "saving session failed: " + msg.err.Error()
			m.opts.Log.Error("recording session", "error", msg.err)
		} else {
			m.status = fmt.Sprintf("saved %s: %s, %d kcal",
				msg.rec.WorkoutTitle, clock(msg.rec.ElapsedSeconds), msg.rec.CaloriesBurned)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenList:
			return m.updateList(msg)
		case screenPreview:
			return m.updatePreview(msg)
		case screenPlayer:
			return m.updatePlayer(msg)
		case screenComplete:
			return m.updateComplete(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % len(m.tabs)
		m.cursor = 0
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + len(m.tabs) - 1) % len(m.tabs)
		m.cursor = 0
	case key.Matches(msg, m.keys.Open):
		if ws := m.visible(); len(ws) > 0 {
			m.selected = ws[m.cursor]
			m.screen = screenPreview
		}
	}
	return m, nil
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Toggle):
		return m.startSession()
	case key.Matches(msg, m.keys.Back):
		m.screen = screenList
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) startSession() (tea.Model, tea.Cmd) {
	fb := session.Multi{
		bell{w: m.opts.Bell, enabled: m.opts.Sound},
		session.LogFeedback{Log: m.opts.Log, WorkoutID: m.selected.ID},
	}
	ctrl, err := session.New(m.selected, fb)
	if err != nil {
		m.status, m.failed = err.Error(), true
		return m, nil
	}
	m.ctrl = ctrl
	m.failed = false
	m.startedAt = m.opts.Now()
	m.screen = screenPlayer
	m.opts.Log.Info("session started", "workout", m.selected.ID)
	return m.command(ctrl.Start)
}

// command applies a controller transition and starts or stops the tick
// chain to match the playing state.
func (m Model) command(apply func()) (tea.Model, tea.Cmd) {
	wasPlaying := m.ctrl.State().IsPlaying
	apply()
	playing := m.ctrl.State().IsPlaying
	switch {
	case playing && !wasPlaying:
		m.gen++
		return m, m.tickCmd()
	case !playing && wasPlaying:
		m.gen++
	}
	return m, nil
}

func (m Model) onTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if m.screen != screenPlayer || m.ctrl == nil || msg.gen != m.gen || !m.ctrl.State().IsPlaying {
		return m, nil
	}
	m.ctrl.Tick()
	if m.ctrl.State().IsComplete {
		m.gen++
		m.final = m.ctrl.Snapshot()
		m.screen = screenComplete
		m.opts.Log.Info("session complete", "workout", m.selected.ID, "elapsed", m.final.TotalElapsedSeconds)
		return m, nil
	}
	return m, m.tickCmd()
}

func (m Model) updatePlayer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		return m.command(m.ctrl.Toggle)
	case key.Matches(msg, m.keys.Next):
		return m.command(m.ctrl.SkipToNext)
	case key.Matches(msg, m.keys.Previous):
		return m.command(m.ctrl.SkipToPrevious)
	case key.Matches(msg, m.keys.Close):
		return m.closeSession()
	}
	return m, nil
}

func (m Model) updateComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Open) || key.Matches(msg, m.keys.Close) {
		return m.closeSession()
	}
	return m, nil
}

// closeSession discards the controller, returns to the list and records the
// session when any time was played.
func (m Model) closeSession() (tea.Model, tea.Cmd) {
	m.ctrl.Close()
	m.gen++
	snap := m.ctrl.Snapshot()
	m.ctrl = nil
	m.screen = screenList

	if snap.TotalElapsedSeconds == 0 || m.opts.Recorder == nil {
		m.status = "session discarded"
		return m, nil
	}
	rec := session.Record(m.selected, snap, m.startedAt, m.opts.Now())
	recorder := m.opts.Recorder
	m.status = "saving session…"
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		saved, err := recorder.ApplySession(ctx, rec)
		return recordedMsg{rec: saved, err: err}
	}
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenPreview:
		body = m.viewPreview()
	case screenPlayer:
		body = m.viewPlayer()
	case screenComplete:
		body = m.viewComplete()
	default:
		body = m.viewList()
	}
	status := mutedStyle.Render(m.status)
	if m.failed {
		status = errorStyle.Render(m.status)
	}
	footer := status + "\n" + m.help.View(m.keys.forScreen(m.screen))
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body, "", footer))
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PulseFit") + "  ")
	for i, c := range m.tabs {
		label := string(c)
		if c == "" {
			label = "All"
		}
		if i == m.tab {
			b.WriteString(hotStyle.Render(" " + label + " "))
		} else {
			b.WriteString(mutedStyle.Render(" " + label + " "))
		}
	}
	b.WriteString("\n\n")

	ws := m.visible()
	if len(ws) == 0 {
		b.WriteString(mutedStyle.Render("No workouts in this category."))
		return b.String()
	}
	for i, w := range ws {
		line := fmt.Sprintf("%-18s %3d min  %-6s  %s", w.Title, w.TotalDurationMinutes, w.Intensity, w.Category)
		if w.IsNew {
			line += "  " + hotStyle.Render("NEW")
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewPreview() string {
	w := m.selected
	var b strings.Builder
	b.WriteString(titleStyle.Render(w.Title) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s · %d min", w.Category, w.Intensity, w.TotalDurationMinutes)) + "\n\n")
	b.WriteString(fmt.Sprintf("%d exercises · %d sets · about %s with rests\n",
		w.TotalExercises(), w.TotalSets(), clock(w.PlannedSeconds())))
	if len(w.MuscleGroups) > 0 {
		b.WriteString(mutedStyle.Render("Targets: "+strings.Join(w.MuscleGroups, ", ")) + "\n")
	}
	if len(w.Equipment) > 0 {
		b.WriteString(mutedStyle.Render("Equipment: "+strings.Join(w.Equipment, ", ")) + "\n")
	}
	b.WriteString("\n")
	for i, ex := range w.Exercises {
		b.WriteString(fmt.Sprintf("%2d. %-22s %d × %ds\n", i+1, ex.Name, ex.Sets, ex.DurationSeconds))
	}
	return paneStyle.Render(b.String())
}

func (m Model) viewPlayer() string {
	s := m.ctrl.Snapshot()
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.WorkoutTitle))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("   exercise %d/%d", s.ExerciseIndex+1, s.ExerciseCount)) + "\n\n")

	if s.IsResting {
		b.WriteString(restStyle.Render("REST") + mutedStyle.Render("  up next: "+s.ExerciseName) + "\n")
	} else {
		b.WriteString(hotStyle.Render(strings.ToUpper(s.ExerciseName)) + "\n")
	}
	b.WriteString(countdown.Render(clock(s.TimeRemainingSeconds)))
	if !s.IsPlaying {
		b.WriteString(mutedStyle.Render("  paused"))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Set %d of %d\n\n", s.CurrentSet, s.ExerciseSets))

	b.WriteString(m.current.ViewAs(s.ExerciseProgressPercent/100) + "\n")
	b.WriteString(m.overall.ViewAs(s.OverallProgressPercent/100))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %3.0f%% · %s elapsed", s.OverallProgressPercent, clock(s.TotalElapsedSeconds))) + "\n\n")
	b.WriteString(mutedStyle.Render("Next: ") + s.NextExerciseName)
	return paneStyle.Render(b.String())
}

func (m Model) viewComplete() string {
	s := m.final
	var b strings.Builder
	b.WriteString(restStyle.Render("Workout complete!") + "\n\n")
	b.WriteString(titleStyle.Render(s.WorkoutTitle) + "\n")
	b.WriteString(fmt.Sprintf("Time: %s\n", clock(s.TotalElapsedSeconds)))
	b.WriteString(fmt.Sprintf("Exercises: %d\n", s.ExerciseCount))
	return paneStyle.Render(b.String())
}

// clock formats seconds as m:ss.
func clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
