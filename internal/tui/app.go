// Package tui provides the interactive Bubble Tea browser for detected
// subscriptions.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/recur/internal/cli"
	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/pipeline"
	"github.com/theirongolddev/recur/internal/recurrence"
	"github.com/theirongolddev/recur/internal/tui/components"
	"github.com/theirongolddev/recur/internal/tui/theme"
)

// Options configures a TUI session.
type Options struct {
	InputDir        string
	Days            int // history window, 0 = all
	Currency        string
	Detect          recurrence.Options
	IncludeReviewed bool
	NeedSetup       bool
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	now  func() time.Time

	// Data
	loaded     bool
	loadErr    error
	loadTime   time.Duration
	fileErrors int
	subs       []model.DetectedSubscription
	visible    []model.DetectedSubscription
	amounts    map[string]float64 // transaction ID -> absolute amount
	stats      model.SummaryStats

	// UI state
	width     int
	height    int
	table     table.Model
	filter    textinput.Model
	filtering bool
	query     string
	showHelp  bool
	notice    string

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues

	// Loading
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 72
	splitWidth       = 110
	chromeHeight     = 9 // header cards + status bar
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		opts:    opts,
		now:     time.Now,
		table:   newTable(),
		filter:  newFilterInput(),
		spinner: sp,
		loadSub: make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.opts.NeedSetup {
		return func() tea.Msg { return startSetupMsg{} }
	}
	return tea.Batch(a.spinner.Tick, loadDataCmd(a.opts, a.loadSub))
}

type startSetupMsg struct{}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.layoutTable()
		return a, nil

	case startSetupMsg:
		a.setupVals = defaultSetupValues(a.opts.InputDir)
		a.setupForm = newSetupForm(&a.setupVals)
		if a.width > 0 {
			a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
		}
		return a, a.setupForm.Init()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if !a.loaded {
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		}
		if a.filtering {
			return a.updateFilter(msg)
		}
		return a.updateKeys(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case DataLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		a.loadTime = msg.LoadTime
		a.fileErrors = msg.FileErrors
		a.subs = msg.Subscriptions
		a.amounts = msg.Amounts
		a.stats = pipeline.Summarize(a.subs)
		a.recompute()
		return a, nil

	case reviewedMsg:
		if msg.err != nil {
			a.notice = "review failed: " + msg.err.Error()
			return a, nil
		}
		a.notice = "marked " + msg.key + " reviewed"
		if !a.opts.IncludeReviewed {
			a.subs = dropKey(a.subs, msg.key)
			a.stats = pipeline.Summarize(a.subs)
			a.recompute()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "/":
		a.filtering = true
		a.filter.SetValue(a.query)
		return a, a.filter.Focus()
	case "esc":
		if a.query != "" {
			a.query = ""
			a.recompute()
		}
		return a, nil
	case "r":
		sub, ok := a.selected()
		if !ok {
			return a, nil
		}
		return a, reviewCmd(sub.RecipientName)
	case "R":
		a.loaded = false
		a.progress, a.progressMax = 0, 0
		a.notice = ""
		return a, tea.Batch(a.spinner.Tick, loadDataCmd(a.opts, a.loadSub))
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.query = strings.TrimSpace(a.filter.Value())
		a.filtering = false
		a.filter.Blur()
		a.recompute()
		return a, nil
	case "esc":
		a.filtering = false
		a.filter.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.filter, cmd = a.filter.Update(msg)
	return a, cmd
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := saveSetup(a.setupVals); err != nil {
			a.notice = "could not save config: " + err.Error()
		}
		a.opts.InputDir = config.ExpandHome(strings.TrimSpace(a.setupVals.InputDir))
		a.opts.Currency = a.setupVals.Currency
		a.opts.NeedSetup = false
		a.setupForm = nil
		return a, tea.Batch(a.spinner.Tick, loadDataCmd(a.opts, a.loadSub))
	case huh.StateAborted:
		a.opts.NeedSetup = false
		a.setupForm = nil
		return a, tea.Batch(a.spinner.Tick, loadDataCmd(a.opts, a.loadSub))
	}

	return a, cmd
}

// recompute rebuilds the visible rows from the current filter.
func (a *App) recompute() {
	a.visible = pipeline.FilterByMerchant(a.subs, a.query)

	rows := make([]table.Row, len(a.visible))
	for i, s := range a.visible {
		rows[i] = table.Row{
			s.RecipientName,
			cli.FormatAmount(s.AverageAmount, a.opts.Currency),
			string(s.BillingFrequency),
			cli.FormatDate(s.NextExpectedDate),
			fmt.Sprintf("%d %s", s.Confidence, s.ConfidenceLevel),
		}
	}
	a.table.SetRows(rows)
	if a.table.Cursor() >= len(rows) {
		a.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (a App) selected() (model.DetectedSubscription, bool) {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.visible) {
		return model.DetectedSubscription{}, false
	}
	return a.visible[i], true
}

func (a *App) layoutTable() {
	if a.width == 0 {
		return
	}
	w := a.width
	if w >= splitWidth {
		w = a.width * 3 / 5
	}
	a.table.SetWidth(w - 4)
	a.table.SetColumns(tableColumns(w - 4))

	h := a.height - chromeHeight - 2
	if a.width < splitWidth {
		h = (a.height - chromeHeight) / 2
	}
	a.table.SetHeight(max(h, 3))
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  recur needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logo.Render("◈ recur"))
	b.WriteString(sub.Render(" · recurring charges"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	if a.progressMax > 0 {
		b.WriteString(sub.Render(" Parsing statements\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), min(40, a.width-30)))
		b.WriteString("\n")
		b.WriteString(sub.Render(fmt.Sprintf("%s / %s files",
			cli.FormatNumber(int64(a.progress)), cli.FormatNumber(int64(a.progressMax)))))
	} else {
		b.WriteString(sub.Render(" Scanning " + a.opts.InputDir))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()))
}

func (a App) viewHelp() string {
	t := theme.Active
	key := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Width(10)
	desc := lipgloss.NewStyle().Foreground(t.TextPrimary)

	lines := []struct{ k, d string }{
		{"j/k ↑/↓", "move selection"},
		{"/", "filter by merchant"},
		{"esc", "clear filter"},
		{"r", "mark selected merchant reviewed"},
		{"R", "reload statements"},
		{"?", "toggle help"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(key.Render(l.k) + desc.Render(l.d) + "\n")
	}

	card := components.ContentCard("Keys", strings.TrimRight(b.String(), "\n"), 48, true)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewMain() string {
	t := theme.Active
	cur := a.opts.Currency

	header := components.MetricRow([]components.Metric{
		{Label: "Subscriptions", Value: cli.FormatNumber(int64(a.stats.Subscriptions)),
			Hint: fmt.Sprintf("%d high · %d medium · %d low", a.stats.High, a.stats.Medium, a.stats.Low)},
		{Label: "Monthly", Value: cli.FormatAmount(a.stats.MonthlyCost, cur),
			Hint: fmt.Sprintf("%d fixed · %d variable", a.stats.Fixed, a.stats.Variable)},
		{Label: "Yearly", Value: cli.FormatAmount(a.stats.YearlyCost, cur),
			Hint: fmt.Sprintf("%d charges", a.stats.Charges)},
	}, a.width)

	listTitle := "Detected"
	if a.query != "" {
		listTitle = fmt.Sprintf("Detected · filter %q", a.query)
	}
	listBody := a.table.View()
	if len(a.visible) == 0 {
		listBody = lipgloss.NewStyle().Foreground(t.TextDim).Render("No recurring charges found.")
	}
	if a.filtering {
		listBody = a.filter.View() + "\n" + listBody
	}

	var body string
	if a.width >= splitWidth {
		listW := a.width * 3 / 5
		list := components.ContentCard(listTitle, listBody, listW, !a.filtering)
		detail := components.ContentCard("Detail", a.renderDetail(components.CardInnerWidth(a.width-listW)), a.width-listW, false)
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	} else {
		list := components.ContentCard(listTitle, listBody, a.width, !a.filtering)
		detail := components.ContentCard("Detail", a.renderDetail(components.CardInnerWidth(a.width)), a.width, false)
		body = lipgloss.JoinVertical(lipgloss.Left, list, detail)
	}

	status := a.notice
	switch {
	case a.loadErr != nil:
		status = "load failed: " + a.loadErr.Error()
	case status == "":
		status = fmt.Sprintf("loaded in %s", a.loadTime.Round(time.Millisecond))
		if a.fileErrors > 0 {
			status += fmt.Sprintf(" · %d unreadable files", a.fileErrors)
		}
	}
	bar := components.RenderStatusBar(a.width, "[/]filter [r]eviewed [R]eload [?]help [q]uit", status)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, bar)
}

func (a App) renderDetail(width int) string {
	t := theme.Active
	s, ok := a.selected()
	if !ok {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("Nothing selected.")
	}

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Width(12)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary)
	row := func(k, v string) string { return label.Render(k) + value.Render(v) + "\n" }
	cur := a.opts.Currency

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render(s.RecipientName))
	b.WriteString("  ")
	b.WriteString(lipgloss.NewStyle().Foreground(t.Level(s.ConfidenceLevel)).Render(
		fmt.Sprintf("%d %s", s.Confidence, s.ConfidenceLevel)))
	b.WriteString("\n\n")

	amount := cli.FormatAmount(s.AverageAmount, cur)
	if s.AmountType == model.AmountVariable {
		amount += fmt.Sprintf(" (%s – %s)", cli.FormatAmount(s.MinAmount, cur), cli.FormatAmount(s.MaxAmount, cur))
	}
	b.WriteString(row("Amount", amount))
	b.WriteString(row("Type", fmt.Sprintf("%s · %.1f%% variance", s.AmountType, s.AmountVariance)))
	b.WriteString(row("Cadence", fmt.Sprintf("%s on the %s", s.BillingFrequency,
		cli.FormatBillingDay(s.ExpectedBillingDay, s.BillingFrequency))))
	b.WriteString(row("Charges", fmt.Sprintf("%d since %s", s.OccurrenceCount, cli.FormatDate(s.FirstSeen))))
	b.WriteString(row("Next", fmt.Sprintf("%s (%s)", cli.FormatDate(s.NextExpectedDate),
		cli.FormatRelativeDays(s.NextExpectedDate, a.now()))))
	b.WriteString(row("Monthly", cli.FormatAmount(pipeline.MonthlyCost(s), cur)))
	b.WriteString("\n")

	barW := max(width-24, 8)
	sb := s.ScoreBreakdown
	b.WriteString(components.ScoreBar("Amount", sb.Amount, 30, 10, barW) + "\n")
	b.WriteString(components.ScoreBar("Timing", sb.Timing, 30, 10, barW) + "\n")
	b.WriteString(components.ScoreBar("Occurrence", sb.Occurrence, 20, 10, barW) + "\n")
	b.WriteString(components.ScoreBar("Clarity", sb.Clarity, 20, 10, barW) + "\n")

	if history := a.history(s); len(history) > 1 {
		b.WriteString("\n")
		b.WriteString(label.Render("History"))
		b.WriteString(components.TailSparkline(history, width-12, t.Accent))
	}

	return strings.TrimRight(b.String(), "\n")
}

// history returns the charged amounts of s in date order.
func (a App) history(s model.DetectedSubscription) []float64 {
	out := make([]float64, 0, len(s.TransactionIDs))
	for _, id := range s.TransactionIDs {
		if v, ok := a.amounts[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func newTable() table.Model {
	t := theme.Active
	tbl := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.Accent).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(true)
	tbl.SetStyles(st)
	return tbl
}

// tableColumns sizes the merchant column to whatever the fixed columns leave.
func tableColumns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "Amount", Width: 14},
		{Title: "Cadence", Width: 10},
		{Title: "Next", Width: 11},
		{Title: "Score", Width: 10},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 2
	}
	merchant := table.Column{Title: "Merchant", Width: max(width-used-2, 12)}
	return append([]table.Column{merchant}, fixed...)
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "merchant"
	ti.CharLimit = 64
	return ti
}

func dropKey(subs []model.DetectedSubscription, key string) []model.DetectedSubscription {
	out := make([]model.DetectedSubscription, 0, len(subs))
	for _, s := range subs {
		if s.RecipientName != key {
			out = append(out, s)
		}
	}
	return out
}

// Run starts the program on the alternate screen.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
