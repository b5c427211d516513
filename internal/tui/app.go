package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/internal/notify"
	"github.com/wealthwise/wealthwise/pkg/client"
	"github.com/wealthwise/wealthwise/pkg/dashboard"
	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/listing"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// noticeTTL is how long a notice stays on the status line.
const noticeTTL = 5 * time.Second

type view int

const (
	viewDashboard view = iota
	viewTransactions
	viewRecurring
)

// noticeMsg delivers one notice from the bus.
type noticeMsg notify.Notice

// clearNoticeMsg expires the notice published at the given time.
type clearNoticeMsg time.Time

// Deps are the collaborators the TUI drives.
type Deps struct {
	Transactions listing.Resource[domain.Transaction]
	Recurring    listing.Resource[domain.RecurringTransaction]
	Details      TransactionSource
	Dashboard    dashboard.Source

	Bus      *notify.Bus
	Logger   *log.Logger
	PageSize int
	Month    string // YYYY-MM; empty for the current month
	Version  string
}

// ClientDeps wires every data source to c.
func ClientDeps(c *client.Client) Deps {
	return Deps{
		Transactions: c.Transactions(),
		Recurring:    c.Recurring(),
		Details:      c,
		Dashboard:    c,
	}
}

// App is the root Bubbletea model.
type App struct {
	view         view
	dashboard    dashboardModel
	transactions listModel[domain.Transaction]
	recurring    listModel[domain.RecurringTransaction]
	mounted      map[view]bool

	bus      *notify.Bus
	logger   *log.Logger
	notice   *notify.Notice
	helpOpen bool
	version  string
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(d Deps) App {
	if d.Bus == nil {
		d.Bus = notify.NewBus(0)
	}
	if d.Logger == nil {
		d.Logger = log.Nop()
	}
	logger := d.Logger.WithComponent(log.ComponentTUI)
	page := query.DefaultPage()
	if d.PageSize > 0 {
		page.Size = d.PageSize
	}

	txCtrl := listing.New(d.Transactions, domain.Transaction.EntityID, listing.Options{
		Insert:   listing.Append,
		Page:     page,
		Notifier: d.Bus,
		Messages: listing.TransactionMessages,
		Logger:   logger,
	})
	rtCtrl := listing.New(d.Recurring, domain.RecurringTransaction.EntityID, listing.Options{
		Insert:   listing.Prepend,
		Page:     page,
		Notifier: d.Bus,
		Messages: listing.RecurringMessages,
		Logger:   logger,
	})

	return App{
		dashboard:    newDashboardModel(dashboard.New(d.Dashboard, logger), d.Month),
		transactions: newListModel(transactionTable(d.Details), txCtrl, d.Bus),
		recurring:    newListModel(recurringTable(), rtCtrl, d.Bus),
		mounted:      map[view]bool{viewDashboard: true},
		bus:          d.Bus,
		logger:       logger,
		version:      d.Version,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.dashboard.Init(), shimmerTickCmd(), waitForNotice(a.bus))
}

// waitForNotice blocks on the bus and delivers the next notice.
func waitForNotice(b *notify.Bus) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-b.C())
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.transactions, _ = a.transactions.Update(bodyMsg)
		a.recurring, _ = a.recurring.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case noticeMsg:
		n := notify.Notice(msg)
		a.notice = &n
		if n.Severity == notify.Error || n.Severity == notify.Warning {
			a.logger.Info("notice", "severity", string(n.Severity), "message", n.Message)
		}
		at := n.At
		return a, tea.Batch(waitForNotice(a.bus), tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return clearNoticeMsg(at)
		}))

	case clearNoticeMsg:
		if a.notice != nil && a.notice.At.Equal(time.Time(msg)) {
			a.notice = nil
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.isEditing() {
			switch msg.String() {
			case "?":
				a.helpOpen = true
				return a, nil
			case "q":
				return a, tea.Quit
			case "x":
				a.notice = nil
				return a, nil
			case "1":
				return a.switchTo(viewDashboard)
			case "2":
				return a.switchTo(viewTransactions)
			case "3":
				return a.switchTo(viewRecurring)
			}
		}
		var cmd tea.Cmd
		switch a.view {
		case viewDashboard:
			a.dashboard, cmd = a.dashboard.Update(msg)
		case viewTransactions:
			a.transactions, cmd = a.transactions.Update(msg)
		case viewRecurring:
			a.recurring, cmd = a.recurring.Update(msg)
		}
		return a, cmd
	}

	// Results and ticks go to every view; each ignores what it did not start.
	var c1, c2, c3 tea.Cmd
	a.dashboard, c1 = a.dashboard.Update(msg)
	a.transactions, c2 = a.transactions.Update(msg)
	a.recurring, c3 = a.recurring.Update(msg)
	return a, tea.Batch(c1, c2, c3)
}

// switchTo changes tab, mounting the view on its first visit.
func (a App) switchTo(v view) (App, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	if a.mounted[v] {
		return a, nil
	}
	a.mounted[v] = true
	switch v {
	case viewTransactions:
		return a, a.transactions.Init()
	case viewRecurring:
		return a, a.recurring.Init()
	}
	return a, nil
}

func (a App) isEditing() bool {
	switch a.view {
	case viewTransactions:
		return a.transactions.editing()
	case viewRecurring:
		return a.recurring.editing()
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo + "\n"
	if a.version != "" {
		v := metaStyle.Render(a.version)
		if pad := (a.width - lipgloss.Width(v)) / 2; pad > 0 {
			header += strings.Repeat(" ", pad)
		}
		header += v
	}

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Dashboard", viewDashboard},
		{"2", "Transactions", viewTransactions},
		{"3", "Recurring", viewRecurring},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewDashboard:
		body, help = a.dashboard.View(), a.dashboard.helpKeys()
	case viewTransactions:
		body, help = a.transactions.View(), a.transactions.helpKeys()
	case viewRecurring:
		body, help = a.recurring.View(), a.recurring.helpKeys()
	}
	if a.helpOpen {
		body = helpView()
		help = helpBar(helpEntry("esc", "close"), helpEntry("q", "quit"))
	}

	status := ""
	if a.notice != nil {
		status = " " + SeverityStyle(a.notice.Severity).Render(a.notice.Message) + "  " + metaStyle.Render("x dismiss")
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}
