package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/wdtable/internal/client"
	"github.com/raphaelgruber/wdtable/internal/service"
)

const pollInterval = 250 * time.Millisecond

// Theme holds the color scheme for the terminal output.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// jobState is the part of a refresh job the progress display shows. It is
// filled from local and remote jobs alike.
type jobState struct {
	ID       string
	Lang     string
	Status   string
	Progress int
	Total    int
	Elements int
	Nuclides int
	Error    string
}

func (s jobState) done() bool {
	return s.Status == string(service.JobStatusCompleted) || s.Status == string(service.JobStatusFailed)
}

// jobFetcher returns the current state of the watched job.
type jobFetcher func(ctx context.Context) (jobState, error)

// localJob watches a refresh running in this process.
func localJob(job *service.Job) jobFetcher {
	return func(ctx context.Context) (jobState, error) {
		return stateOf(job.Snapshot()), nil
	}
}

func stateOf(j *service.Job) jobState {
	return jobState{
		ID:       j.ID,
		Lang:     j.Lang,
		Status:   string(j.Status),
		Progress: j.Progress,
		Total:    j.Total,
		Elements: j.Elements,
		Nuclides: j.Nuclides,
		Error:    j.Error,
	}
}

// remoteJob watches a refresh running on a server.
func remoteJob(c *client.Client, id string) jobFetcher {
	return func(ctx context.Context) (jobState, error) {
		job, err := c.GetJob(ctx, id)
		if err != nil {
			return jobState{}, err
		}
		if job == nil {
			return jobState{}, fmt.Errorf("job not found: %s", id)
		}
		return remoteState(job), nil
	}
}

func remoteState(j *client.Job) jobState {
	return jobState{
		ID:       j.ID,
		Lang:     j.Lang,
		Status:   j.Status,
		Progress: j.Progress,
		Total:    j.Total,
		Elements: j.Elements,
		Nuclides: j.Nuclides,
		Error:    j.Error,
	}
}

// tickMsg triggers polling the job status
type tickMsg time.Time

// jobUpdateMsg carries the updated job data
type jobUpdateMsg struct {
	job jobState
	err error
}

// progressModel is the bubbletea model for job progress.
type progressModel struct {
	fetch    jobFetcher
	job      jobState
	remote   bool // a remote job keeps running when the UI quits
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model.
func newProgressModel(fetch jobFetcher, job jobState, remote bool) progressModel {
	// Create progress bar with color blend
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		fetch:    fetch,
		job:      job,
		remote:   remote,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start polling).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		// Fetch job status
		return m, m.fetchJob()

	case jobUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch job status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}

		m.job = msg.job

		// Check for terminal states
		switch m.job.Status {
		case string(service.JobStatusCompleted):
			m.done = true
			return m, tea.Quit
		case string(service.JobStatusFailed):
			m.done = true
			m.err = jobError(m.job)
			return m, tea.Quit
		}

		// Continue polling for running jobs
		return m, tickCmd()

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func jobError(job jobState) error {
	if job.Error != "" {
		return errors.New(job.Error)
	}
	return errors.New("job failed with unknown error")
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	// Calculate progress percentage
	var pct float64
	if m.job.Total > 0 {
		pct = float64(m.job.Progress) / float64(m.job.Total)
	}

	// Status line with color
	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))

	// Progress bar with counts
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d steps", m.job.Progress, m.job.Total)

	hint := "Press Ctrl+C to abort"
	if m.remote {
		hint = "Press Ctrl+C to continue in background"
	}

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, m.theme.hintStyle().Render(hint))
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		if !m.remote {
			return m.theme.hintStyle().Render("\nRefresh aborted.\n")
		}
		msg := fmt.Sprintf("\nJob %s continues in background.\nUse 'wdtable jobs %s' to check status.\n",
			m.job.ID, m.job.ID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Job failed: %s\n", m.err))
	}

	return summary(m.job, m.theme)
}

// summary renders the result of a completed refresh.
func summary(job jobState, t Theme) string {
	var b strings.Builder
	b.WriteString(t.completedStyle().Render("✓ Completed") + "\n\n")
	fmt.Fprintf(&b, "  Language:  %s\n", job.Lang)
	fmt.Fprintf(&b, "  Elements:  %d\n", job.Elements)
	fmt.Fprintf(&b, "  Nuclides:  %d\n", job.Nuclides)
	return b.String()
}

// fetchJob fetches the current job status.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m progressModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		job, err := m.fetch(ctx)
		return jobUpdateMsg{job: job, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runJobProgress runs the interactive progress UI for a job.
// Returns nil on success or when a remote job is left running, an error on
// job failure or when a local refresh is aborted.
func runJobProgress(fetch jobFetcher, job jobState, remote bool) error {
	model := newProgressModel(fetch, job, remote)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	// Check final state
	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			if m.remote {
				return nil
			}
			return errors.New("refresh aborted")
		}
		// If job failed, return the error
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
