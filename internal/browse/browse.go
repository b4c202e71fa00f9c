// Package browse renders the interactive feed browser: a scrolling job list
// with cycling job-type filters and a per-job detail view.
package browse

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	descDividerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	descBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Favoriter persists favorite toggles made from the detail view.
type Favoriter interface {
	SaveFavorite(ctx context.Context, id string, job model.Job) error
	RemoveFavorite(ctx context.Context, id, guid string) error
}

// favoriteToggledMsg is sent when an async favorite save/remove completes.
type favoriteToggledMsg struct {
	guid     string
	favorite bool
	err      error
}

type browseModel struct {
	allJobs   []model.Job
	visible   []model.Job // allJobs restricted to the active type filter
	types     []model.JobType
	typeIdx   int // 0 means no filter; otherwise types[typeIdx-1]
	favorites map[string]bool

	viewport viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool

	view           viewState
	detailJob      model.Job
	detailViewport viewport.Model

	favoriter    Favoriter
	subscriberID string
	statusError  string
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case favoriteToggledMsg:
		if msg.err != nil {
			m.statusError = fmt.Sprintf("favorite update failed: %v", msg.err)
		} else {
			m.statusError = ""
			m.favorites[msg.guid] = msg.favorite
		}
		if m.view == viewDetail {
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "f":
		m.cycleTypeFilter(1)
		return m, nil
	case "F":
		m.cycleTypeFilter(-1)
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the viewport.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detailJob.Link)
		return m, nil
	case "v":
		if m.favoriter != nil {
			return m, m.toggleFavoriteCmd(m.detailJob)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m browseModel) toggleFavoriteCmd(job model.Job) tea.Cmd {
	fav := m.favoriter
	id := m.subscriberID
	makeFavorite := !m.favorites[job.GUID]
	return func() tea.Msg {
		var err error
		if makeFavorite {
			err = fav.SaveFavorite(context.Background(), id, job)
		} else {
			err = fav.RemoveFavorite(context.Background(), id, job.GUID)
		}
		return favoriteToggledMsg{guid: job.GUID, favorite: makeFavorite, err: err}
	}
}

func (m *browseModel) cycleTypeFilter(delta int) {
	n := len(m.types) + 1 // the extra slot is "all"
	m.typeIdx = ((m.typeIdx+delta)%n + n) % n
	m.applyTypeFilter()
	m.cursor = 0
	m.recalcContent()
	m.viewport.SetYOffset(0)
}

func (m *browseModel) applyTypeFilter() {
	if m.typeIdx == 0 {
		m.visible = m.allJobs
		return
	}
	want := m.types[m.typeIdx-1]
	var filtered []model.Job
	for _, job := range m.allJobs {
		if job.Type == want {
			filtered = append(filtered, job)
		}
	}
	m.visible = filtered
}

func (m browseModel) activeTypeLabel() string {
	if m.typeIdx == 0 {
		return "all"
	}
	return string(m.types[m.typeIdx-1])
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.visible)-1, 0))
}

func (m *browseModel) ensureCursorVisible() {
	cursorTop := m.cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < m.viewport.YOffset {
		m.viewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(cursorBottom - m.viewport.Height + 1)
	}
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.visible) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detailJob = m.visible[m.cursor]
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) recalcLayout() {
	paneWidth := max(m.width-2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.viewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.viewport.Width = paneWidth
		m.viewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.viewport.SetContent(m.renderJobs())
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf(" Jobs (%d) — filter: %s", len(m.visible), m.activeTypeLabel()))
	pane := borderStyle.Width(m.viewport.Width).Render(m.viewport.View())

	statusText := " ↑/↓ cursor  f filter type  Enter detail  q quit"
	if m.statusError != "" {
		statusText = " " + m.statusError
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	statusText := " o open link  v favorite  esc/backspace back  ↑/↓ scroll  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	j := m.detailJob
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company)
	addField("Job Type", string(j.Type))
	if !j.PublishedAt.IsZero() {
		addField("Published", j.PublishedAt.Format("2006-01-02 15:04 MST"))
	}
	addField("Link", j.Link)

	if m.favorites[j.GUID] {
		b.WriteByte('\n')
		b.WriteString(favoriteStyle.Render("★ favorite") + "\n")
	}

	if m.statusError != "" {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+m.statusError) + "\n")
	}

	if j.CleanDescription != "" {
		wrapWidth := max(m.width-8, 20)
		fill := strings.Repeat("─", max(wrapWidth-len("── Description "), 3))
		b.WriteByte('\n')
		b.WriteString(descDividerStyle.Render("── Description "+fill) + "\n\n")
		b.WriteString(descBodyStyle.Render(wordWrap(j.CleanDescription, wrapWidth)) + "\n")
	}

	return b.String()
}

func (m browseModel) renderJobs() string {
	if len(m.visible) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, j := range m.visible {
		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if i == m.cursor {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		title := j.Title
		if m.favorites[j.GUID] {
			title = "★ " + title
		}
		b.WriteString(prefix)
		b.WriteString(titleSt.Render(title))
		b.WriteByte('\n')

		published := "n/a"
		if !j.PublishedAt.IsZero() {
			published = j.PublishedAt.Format("2006-01-02")
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", j.Company, j.Type, published)))
		b.WriteByte('\n')

		if i < len(m.visible)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// jobTypesPresent returns the distinct job types found in jobs, in taxonomy
// order as strings sort them.
func jobTypesPresent(jobs []model.Job) []model.JobType {
	seen := make(map[model.JobType]bool)
	var types []model.JobType
	for _, j := range jobs {
		if !seen[j.Type] {
			seen[j.Type] = true
			types = append(types, j.Type)
		}
	}
	sort.Slice(types, func(i, k int) bool { return types[i] < types[k] })
	return types
}

func sortJobsByDate(jobs []model.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].PublishedAt.After(jobs[j].PublishedAt)
	})
}

func wordWrap(text string, width int) string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				lines = append(lines, line)
				line = w
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive feed browser over jobs. favorites holds the
// subscriber's saved jobs keyed by guid; favoriter may be nil, which disables
// the favorite toggle.
func Run(jobs []model.Job, favorites map[string]model.Job, subscriberID string, favoriter Favoriter) error {
	sortJobsByDate(jobs)

	favSet := make(map[string]bool, len(favorites))
	for guid := range favorites {
		favSet[guid] = true
	}

	m := browseModel{
		allJobs:      jobs,
		visible:      jobs,
		types:        jobTypesPresent(jobs),
		favorites:    favSet,
		favoriter:    favoriter,
		subscriberID: subscriberID,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
