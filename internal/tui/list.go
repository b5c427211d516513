package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/wealthwise/wealthwise/internal/browser"
	"github.com/wealthwise/wealthwise/internal/notify"
	"github.com/wealthwise/wealthwise/pkg/client"
	"github.com/wealthwise/wealthwise/pkg/domain"
	"github.com/wealthwise/wealthwise/pkg/listing"
	"github.com/wealthwise/wealthwise/pkg/query"
)

// pageSizes are the sizes +/- step through.
var pageSizes = []int{5, 10, 20, 50}

// noReceiptMessage is the empty state for a transaction without a receipt.
const noReceiptMessage = "No receipt found for this transaction."

type column[T any] struct {
	title string
	width int
	right bool
	cell  func(T) string
	style func(T) lipgloss.Style
}

type detailField[T any] struct {
	label string
	value func(T) string
}

// listConfig describes one entity table.
type listConfig[T any] struct {
	title   string
	noun    string // "transaction", used in prompts
	entity  query.Entity
	idOf    func(T) domain.ID
	nameOf  func(T) string
	columns []column[T]
	fields  []detailField[T]

	// reload refetches the row when the detail view opens. Optional.
	reload func(ctx context.Context, row T) (T, error)
	// receipt loads the attachment shown in the detail view. Optional.
	receipt func(ctx context.Context, id domain.ID) (*domain.Receipt, error)
	// toggle returns the row with its active flag flipped. Optional.
	toggle func(row T) T
}

type pageLoadedMsg[T any] struct {
	req listing.Request
	res domain.PageResult[T]
	err error
}

type deletedMsg[T any] struct {
	id  domain.ID
	err error
}

type updatedMsg[T any] struct {
	id  domain.ID
	row T
	err error
}

type detailLoadedMsg[T any] struct {
	id  domain.ID
	row T
	err error
}

type receiptLoadedMsg[T any] struct {
	id      domain.ID
	receipt *domain.Receipt
	err     error
}

type receiptOpenedMsg[T any] struct {
	path string
	err  error
}

// listModel is a paged, filterable table over a listing.Controller.
type listModel[T any] struct {
	cfg      listConfig[T]
	ctrl     *listing.Controller[T]
	notifier notify.Notifier
	copyText func(string) error
	openPath func(string) error

	filter  filterForm
	spinner spinner.Model
	cursor  int
	confirm bool
	width   int
	height  int

	detail        bool
	detailRow     T
	detailLoading bool
	detailErr     error
	receipt       *domain.Receipt
	receiptState  listing.State
}

func newListModel[T any](cfg listConfig[T], ctrl *listing.Controller[T], n notify.Notifier) listModel[T] {
	if n == nil {
		n = notify.Discard
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return listModel[T]{
		cfg:      cfg,
		ctrl:     ctrl,
		notifier: n,
		copyText: clipboard.WriteAll,
		openPath: browser.Open,
		filter:   newFilterForm(cfg.entity),
		spinner:  sp,
	}
}

// Init mounts the controller and starts the first fetch.
func (m listModel[T]) Init() tea.Cmd {
	return m.load(m.ctrl.Mount())
}

// editing reports whether keys should go to a text field.
func (m listModel[T]) editing() bool {
	return m.filter.open
}

func (m listModel[T]) load(req listing.Request) tea.Cmd {
	ctrl := m.ctrl
	fetch := func() tea.Msg {
		res, err := ctrl.Fetch(context.Background(), req)
		return pageLoadedMsg[T]{req: req, res: res, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

func (m listModel[T]) Update(msg tea.Msg) (listModel[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Snapshot().State != listing.Loading && !m.detailLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg[T]:
		m.ctrl.Apply(msg.req, msg.res, msg.err)
		if n := len(m.ctrl.Snapshot().Rows); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, nil

	case deletedMsg[T]:
		if msg.err != nil {
			return m, nil
		}
		m.detail = false
		snap := m.ctrl.Snapshot()
		if m.cursor >= len(snap.Rows) {
			m.cursor = max(len(snap.Rows)-1, 0)
		}
		// Deleting the last row of a later page falls back a page.
		if len(snap.Rows) == 0 && snap.Page.Page > 0 {
			if req, ok := m.ctrl.PrevPage(); ok {
				return m, m.load(req)
			}
		}
		return m, nil

	case updatedMsg[T]:
		if msg.err == nil && m.detail && m.cfg.idOf(m.detailRow) == msg.id {
			m.detailRow = msg.row
		}
		return m, nil

	case detailLoadedMsg[T]:
		if !m.detail || m.cfg.idOf(m.detailRow) != msg.id {
			return m, nil
		}
		m.detailLoading = false
		m.detailErr = msg.err
		if msg.err == nil {
			m.detailRow = msg.row
		}
		return m, nil

	case receiptLoadedMsg[T]:
		if !m.detail || m.cfg.idOf(m.detailRow) != msg.id {
			return m, nil
		}
		if msg.err != nil || msg.receipt == nil || len(msg.receipt.Data) == 0 {
			// Any preview failure is shown as the empty state.
			m.receipt = nil
			m.receiptState = listing.Error
			return m, nil
		}
		m.receipt = msg.receipt
		m.receiptState = listing.Loaded
		return m, nil

	case receiptOpenedMsg[T]:
		if msg.err != nil {
			m.notifier.Notify(fmt.Sprintf("Could not open receipt: %v", msg.err), notify.Error)
		} else {
			m.notifier.Notify("Receipt saved to "+msg.path, notify.Info)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.filter.open:
			return m.updateFilter(msg)
		case m.confirm:
			return m.updateConfirm(msg)
		case m.detail:
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m listModel[T]) updateFilter(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	var submitted bool
	var cmd tea.Cmd
	m.filter, submitted, cmd = m.filter.Update(msg)
	if submitted {
		return m.search()
	}
	return m, cmd
}

func (m listModel[T]) updateConfirm(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	m.confirm = false
	if msg.String() != "y" && msg.String() != "Y" {
		return m, nil
	}
	row, ok := m.current()
	if m.detail {
		row, ok = m.detailRow, true
	}
	if !ok {
		return m, nil
	}
	id := m.cfg.idOf(row)
	ctrl := m.ctrl
	return m, func() tea.Msg {
		return deletedMsg[T]{id: id, err: ctrl.Delete(context.Background(), id)}
	}
}

func (m listModel[T]) updateList(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	snap := m.ctrl.Snapshot()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(snap.Rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if row, ok := m.current(); ok {
			return m.openDetail(row)
		}
	case "/":
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Open()
		return m, cmd
	case "s":
		return m.search()
	case "r":
		m.filter = m.filter.Clear()
		m.cursor = 0
		return m, m.load(m.ctrl.Reset())
	case "h", "left":
		if req, ok := m.ctrl.PrevPage(); ok {
			m.cursor = 0
			return m, m.load(req)
		}
	case "l", "right":
		if req, ok := m.ctrl.NextPage(); ok {
			m.cursor = 0
			return m, m.load(req)
		}
	case "+", "=":
		if size := stepSize(snap.Page.Size, 1); size != snap.Page.Size {
			m.cursor = 0
			return m, m.load(m.ctrl.SetSize(size))
		}
	case "-", "_":
		if size := stepSize(snap.Page.Size, -1); size != snap.Page.Size {
			m.cursor = 0
			return m, m.load(m.ctrl.SetSize(size))
		}
	case "d":
		if _, ok := m.current(); ok {
			m.confirm = true
		}
	case "c":
		return m, m.copyID()
	case "a":
		if row, ok := m.current(); ok {
			return m, m.toggle(row)
		}
	}
	return m, nil
}

// toggle flips the active flag of row on the server. The controller patches
// the list row; the detail view picks up the result from updatedMsg.
func (m listModel[T]) toggle(row T) tea.Cmd {
	if m.cfg.toggle == nil {
		return nil
	}
	id := m.cfg.idOf(row)
	next := m.cfg.toggle(row)
	ctrl := m.ctrl
	return func() tea.Msg {
		updated, err := ctrl.Update(context.Background(), id, next)
		return updatedMsg[T]{id: id, row: updated, err: err}
	}
}

func (m listModel[T]) updateDetail(msg tea.KeyMsg) (listModel[T], tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.detail = false
	case "d":
		m.confirm = true
	case "c":
		return m, m.copyID()
	case "a":
		return m, m.toggle(m.detailRow)
	case "o":
		if m.receipt != nil {
			return m, m.openReceipt(*m.receipt, m.cfg.idOf(m.detailRow))
		}
	}
	return m, nil
}

func (m listModel[T]) search() (listModel[T], tea.Cmd) {
	f := m.filter.Filters()
	if err := f.Validate(m.cfg.entity); err != nil {
		m.notifier.Notify(client.Message(err), notify.Warning)
		return m, nil
	}
	m.cursor = 0
	return m, m.load(m.ctrl.Search(f))
}

func (m listModel[T]) openDetail(row T) (listModel[T], tea.Cmd) {
	m.detail = true
	m.detailRow = row
	m.detailErr = nil
	m.receipt = nil
	m.receiptState = listing.Idle

	id := m.cfg.idOf(row)
	var cmds []tea.Cmd
	if reload := m.cfg.reload; reload != nil {
		m.detailLoading = true
		cmds = append(cmds, func() tea.Msg {
			fresh, err := reload(context.Background(), row)
			return detailLoadedMsg[T]{id: id, row: fresh, err: err}
		}, m.spinner.Tick)
	}
	if view := m.cfg.receipt; view != nil {
		m.receiptState = listing.Loading
		cmds = append(cmds, func() tea.Msg {
			r, err := view(context.Background(), id)
			return receiptLoadedMsg[T]{id: id, receipt: r, err: err}
		})
	}
	return m, tea.Batch(cmds...)
}

func (m listModel[T]) copyID() tea.Cmd {
	row, ok := m.current()
	if m.detail {
		row, ok = m.detailRow, true
	}
	if !ok {
		return nil
	}
	id := m.cfg.idOf(row).String()
	copyText, n := m.copyText, m.notifier
	return func() tea.Msg {
		if err := copyText(id); err != nil {
			n.Notify(fmt.Sprintf("Copy failed: %v", err), notify.Error)
		} else {
			n.Notify("Copied "+id, notify.Info)
		}
		return nil
	}
}

func (m listModel[T]) openReceipt(r domain.Receipt, id domain.ID) tea.Cmd {
	open := m.openPath
	return func() tea.Msg {
		path, err := writeReceipt(r, id)
		if err == nil {
			err = open(path)
		}
		return receiptOpenedMsg[T]{path: path, err: err}
	}
}

// writeReceipt stores r in the temp dir so an external viewer can open it.
func writeReceipt(r domain.Receipt, id domain.ID) (string, error) {
	ext := ".bin"
	switch {
	case r.IsPDF():
		ext = ".pdf"
	case r.IsImage():
		ext = "." + strings.TrimPrefix(strings.SplitN(r.ContentType, ";", 2)[0], "image/")
	}
	f, err := os.CreateTemp("", "wealthwise-receipt-"+id.String()+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	if _, err := f.Write(r.Data); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return f.Name(), nil
}

func (m listModel[T]) current() (T, bool) {
	rows := m.ctrl.Snapshot().Rows
	if m.cursor < 0 || m.cursor >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[m.cursor], true
}

// stepSize returns the next larger (dir > 0) or smaller page size, or size
// itself at either end.
func stepSize(size, dir int) int {
	if dir > 0 {
		for _, s := range pageSizes {
			if s > size {
				return s
			}
		}
		return size
	}
	for i := len(pageSizes) - 1; i >= 0; i-- {
		if pageSizes[i] < size {
			return pageSizes[i]
		}
	}
	return size
}

// helpKeys lists the keys for the current state.
func (m listModel[T]) helpKeys() string {
	switch {
	case m.filter.open:
		return helpBar(helpEntry("tab", "next"), helpEntry("enter", "search"), helpEntry("esc", "close"))
	case m.confirm:
		return helpBar(helpEntry("y", "delete"), helpEntry("any", "cancel"))
	case m.detail:
		entries := []string{helpEntry("esc", "back"), helpEntry("c", "copy id"), helpEntry("d", "delete")}
		if m.cfg.toggle != nil {
			entries = append(entries, helpEntry("a", "active"))
		}
		if m.receipt != nil {
			entries = append(entries, helpEntry("o", "open receipt"))
		}
		return helpBar(entries...)
	}
	return helpBar(
		helpEntry("1-3", "tabs"), helpEntry("j/k", "nav"), helpEntry("enter", "open"),
		helpEntry("/", "filter"), helpEntry("s", "search"), helpEntry("r", "reset"),
		helpEntry("h/l", "page"), helpEntry("+/-", "size"), helpEntry("d", "delete"),
		helpEntry("c", "copy"), helpEntry("?", "help"), helpEntry("q", "quit"),
	)
}

func (m listModel[T]) View() string {
	if m.filter.open {
		return m.filter.View()
	}
	if m.detail {
		return m.viewDetail()
	}
	return m.viewTable()
}

func (m listModel[T]) viewTable() string {
	snap := m.ctrl.Snapshot()
	var b strings.Builder

	// Title line: mode, filters and paging.
	title := " " + selectedStyle.Render(m.cfg.title)
	if snap.Mode == listing.SearchMode {
		title += "  " + searchStyle.Render("search")
		if s := summarizeFilters(snap.Filters); s != "" {
			title += " " + dimStyle.Render(truncStr(s, max(m.width-40, 20)))
		}
	}
	pages := snap.TotalPages
	if pages < 1 {
		pages = 1
	}
	title += "  " + metaStyle.Render(fmt.Sprintf("page %d/%d · %d per page", snap.Page.Page+1, pages, snap.Page.Size))
	if snap.State == listing.Loading {
		title += "  " + m.spinner.View()
	}
	b.WriteString(title + "\n\n")

	if snap.State == listing.Error {
		b.WriteString("  " + rejectStyle.Render(client.UserMessage(snap.Err)) + "\n\n")
	}

	// Header.
	var header strings.Builder
	header.WriteString("   ")
	for _, c := range m.cfg.columns {
		header.WriteString(alignCell(c.title, c.width, c.right) + "  ")
	}
	b.WriteString(sectionHeaderStyle.Render(header.String()) + "\n")

	if len(snap.Rows) == 0 && snap.State != listing.Loading {
		b.WriteString("\n  " + dimStyle.Render(fmt.Sprintf("No %ss found.", m.cfg.noun)) + "\n")
	}

	for i, row := range snap.Rows {
		var line strings.Builder
		for _, c := range m.cfg.columns {
			cell := alignCell(c.cell(row), c.width, c.right)
			st := normalStyle
			if c.style != nil {
				st = c.style(row)
			}
			line.WriteString(st.Render(cell) + "  ")
		}
		if i == m.cursor {
			b.WriteString(" " + accentStyle.Render("▸") + " " + selectedRowBg.Render(line.String()) + "\n")
		} else {
			b.WriteString("   " + line.String() + "\n")
		}
	}

	if m.confirm {
		if row, ok := m.current(); ok {
			b.WriteString("\n  " + goldStyle.Render(fmt.Sprintf("Delete %s %q? (y/N)", m.cfg.noun, m.cfg.nameOf(row))) + "\n")
		}
	}
	return b.String()
}

func (m listModel[T]) viewDetail() string {
	row := m.detailRow
	var b strings.Builder

	head := " " + selectedStyle.Render(m.cfg.nameOf(row))
	if m.detailLoading {
		head += "  " + m.spinner.View()
	}
	b.WriteString(head + "\n")
	b.WriteString(" " + metaStyle.Render(m.cfg.noun+" #"+m.cfg.idOf(row).String()) + "\n\n")

	if m.detailErr != nil {
		b.WriteString("  " + rejectStyle.Render(client.UserMessage(m.detailErr)) + "\n\n")
	}

	for _, f := range m.cfg.fields {
		b.WriteString("  " + dimStyle.Render(padRight(f.label, 16)) + normalStyle.Render(orDash(f.value(row))) + "\n")
	}

	if m.cfg.receipt != nil {
		b.WriteString("\n  " + sectionHeaderStyle.Render("Receipt") + "\n")
		switch m.receiptState {
		case listing.Loading:
			b.WriteString("  " + dimStyle.Render("loading...") + "\n")
		case listing.Loaded:
			r := m.receipt
			parts := []string{r.ContentType, humanize.Bytes(uint64(len(r.Data)))}
			if r.Filename != "" {
				parts = append(parts, r.Filename)
			}
			b.WriteString("  " + normalStyle.Render(strings.Join(parts, " · ")) + "\n")
		default:
			b.WriteString("  " + dimStyle.Render(noReceiptMessage) + "\n")
		}
	}

	if m.confirm {
		b.WriteString("\n  " + goldStyle.Render(fmt.Sprintf("Delete %s %q? (y/N)", m.cfg.noun, m.cfg.nameOf(row))) + "\n")
	}
	return b.String()
}

// alignCell fits s into width, right-aligned when right is set.
func alignCell(s string, width int, right bool) string {
	s = truncStr(s, width)
	if right {
		if n := lipgloss.Width(s); n < width {
			return strings.Repeat(" ", width-n) + s
		}
		return s
	}
	return padRight(s, width)
}
