package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wealthwise/wealthwise/internal/notify"
	"github.com/wealthwise/wealthwise/pkg/domain"
)

func recurringPages() *fakeResource[domain.RecurringTransaction] {
	return &fakeResource[domain.RecurringTransaction]{pages: [][]domain.RecurringTransaction{{
		{
			RecurringTransactionID:   "7",
			RecurringTransactionName: "Gym",
			Amount:                   domain.AmountFromFloat(35),
			Frequency:                domain.FrequencyMonthly,
			NextOccurrence:           "2026-04-01",
			TransactionType:          domain.TransactionExpense,
			IsActive:                 true,
		},
	}}}
}

func newTestApp() App {
	a := NewApp(Deps{
		Transactions: threePages(),
		Recurring:    recurringPages(),
		Details:      fakeDetails{},
		Dashboard:    sampleDashboard(),
		Bus:          notify.NewBus(8),
		Month:        "2026-03",
		Version:      "v1.2.3",
	})
	a.width = 100
	a.height = 40
	return a
}

// step sends msg to the app and applies the results of the returned command.
func step(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	model, cmd := a.Update(msg)
	a = model.(App)
	for _, m := range collect(t, cmd) {
		switch m.(type) {
		case shimmerTickMsg, noticeMsg, clearNoticeMsg:
			continue
		}
		a = step(t, a, m)
	}
	return a
}

func TestAppStartsOnDashboard(t *testing.T) {
	a := newTestApp()
	if a.view != viewDashboard {
		t.Fatalf("initial view = %d, want dashboard", a.view)
	}
	view := a.View()
	for _, want := range []string{"Dashboard", "Transactions", "Recurring", "v1.2.3"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
		wantBody string
	}{
		{"2", viewTransactions, "Coffee"},
		{"3", viewRecurring, "Gym"},
		{"1", viewDashboard, "Income"},
	}

	a := newTestApp()
	for _, msg := range collect(t, a.dashboard.Init()) {
		a = step(t, a, msg)
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			a = step(t, a, key(tc.key))
			if a.view != tc.wantView {
				t.Errorf("after key %q: view = %d, want %d", tc.key, a.view, tc.wantView)
			}
			if !strings.Contains(a.View(), tc.wantBody) {
				t.Errorf("after key %q: View() missing %q:\n%s", tc.key, tc.wantBody, a.View())
			}
		})
	}
}

func TestAppMountsTabOnce(t *testing.T) {
	a := newTestApp()
	model, cmd := a.Update(key("2"))
	a = model.(App)
	if cmd == nil {
		t.Fatal("first visit to transactions did not fetch")
	}
	model, _ = a.Update(key("1"))
	a = model.(App)
	_, cmd = a.Update(key("2"))
	if cmd != nil {
		t.Error("second visit to transactions fetched again")
	}
}

func TestAppQuit(t *testing.T) {
	a := newTestApp()
	_, cmd := a.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestAppEditingBlocksGlobalKeys(t *testing.T) {
	a := newTestApp()
	a = step(t, a, key("2"))
	a = step(t, a, key("/"))
	if !a.isEditing() {
		t.Fatal("expected the filter form to be open")
	}

	model, _ := a.Update(key("3"))
	a = model.(App)
	model, cmd := a.Update(key("q"))
	a = model.(App)

	if a.view != viewTransactions {
		t.Errorf("view changed while editing: %d", a.view)
	}
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("q quit while editing")
		}
	}
	if got := a.transactions.filter.Filters()["transactionName"]; got != "3q" {
		t.Errorf("typed filter = %q, want 3q", got)
	}
}

func TestAppNoticeStatusLine(t *testing.T) {
	a := newTestApp()
	at := time.Now()
	model, _ := a.Update(noticeMsg{Message: "Transaction added successfully!", Severity: notify.Success, At: at})
	a = model.(App)
	if !strings.Contains(a.View(), "Transaction added successfully!") {
		t.Fatalf("View() missing notice:\n%s", a.View())
	}

	// An expiry for some other notice leaves this one alone.
	model, _ = a.Update(clearNoticeMsg(at.Add(-time.Second)))
	a = model.(App)
	if a.notice == nil {
		t.Fatal("notice cleared by a stale expiry")
	}

	model, _ = a.Update(clearNoticeMsg(at))
	a = model.(App)
	if strings.Contains(a.View(), "Transaction added successfully!") {
		t.Error("notice still shown after expiry")
	}
}

func TestAppNoticeDismiss(t *testing.T) {
	a := newTestApp()
	model, _ := a.Update(noticeMsg{Message: "Deletion failed.", Severity: notify.Error, At: time.Now()})
	a = model.(App)
	model, _ = a.Update(key("x"))
	a = model.(App)
	if a.notice != nil {
		t.Error("x did not dismiss the notice")
	}
}

func TestAppNoticesFromControllersReachTheBus(t *testing.T) {
	a := newTestApp()
	a = step(t, a, key("2"))
	a = step(t, a, key("d"))
	a = step(t, a, key("y"))

	notices := a.bus.Drain()
	if len(notices) == 0 || notices[len(notices)-1].Message != "Transaction deleted successfully!" {
		t.Errorf("bus notices = %+v", notices)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a := newTestApp()
	model, _ := a.Update(key("?"))
	a = model.(App)
	if !a.helpOpen || !strings.Contains(a.View(), "Keys") {
		t.Fatal("? did not open help")
	}
	model, _ = a.Update(key("esc"))
	a = model.(App)
	if a.helpOpen {
		t.Error("esc did not close help")
	}
}

func TestAppWindowSizeReachesViews(t *testing.T) {
	a := newTestApp()
	model, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	a = model.(App)
	if a.transactions.height != 45 || a.dashboard.width != 120 {
		t.Errorf("body size = %dx%d, want 120x45", a.dashboard.width, a.transactions.height)
	}
}
