package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type MatchLedger interface {
	ListMatches(ctx context.Context, filter ledger.ListFilter) ([]*ledger.MatchRecord, error)
	Reverse(ctx context.Context, id uuid.UUID) (*ledger.MatchRecord, error)
}

type matchRow struct {
	match *ledger.MatchRecord
	tx    *transaction.Transaction
	rc    *receipt.Receipt
}

type matchesState int

const (
	matchesStateBrowse matchesState = iota
	matchesStateConfirm
)

type MatchesModel struct {
	CommonModel
	ledger       MatchLedger
	transactions TransactionGetter
	receipts     ReceiptGetter

	state matchesState
	table table.Model
	rows  []matchRow
	form  *huh.Form

	// Filter cycling
	showReversed  bool
	dateFilterIdx int

	filter  ledger.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	confirmReverse *bool
}

func NewMatchesModel(l MatchLedger, txs TransactionGetter, receipts ReceiptGetter) MatchesModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Counterparty", Width: 26},
		{Title: "Vendor", Width: 22},
		{Title: "Amount", Width: 16},
		{Title: "Tier", Width: 16},
		{Title: "Score", Width: 6},
		{Title: "State", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return MatchesModel{
		ledger:         l,
		transactions:   txs,
		receipts:       receipts,
		table:          t,
		filter:         ledger.ListFilter{ActiveOnly: true},
		loading:        true,
		confirmReverse: new(false),
	}
}

func (m MatchesModel) Title() string { return "Matches" }

func (m MatchesModel) ShortHelp() string {
	if m.state == matchesStateConfirm {
		return "←/→: choose | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | x: reverse | a: toggle reversed | d: date filter | r: refresh"
}

func (m MatchesModel) Init() tea.Cmd {
	return m.loadMatchesCmd()
}

func (m MatchesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadMatchesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.rows
		m.refreshTable()

		return m, nil

	case reverseResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error reversing: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Reversed match %s", msg.id.String()[:8])
		}

		m.state = matchesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadMatchesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case matchesStateBrowse:
		return m.updateBrowse(msg)
	case matchesStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m MatchesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadMatchesCmd()
		case "x":
			return m.enterConfirmMode()
		case "a":
			m.showReversed = !m.showReversed
			m.applyFilter(time.Now())

			return m, m.loadMatchesCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter(time.Now())

			return m, m.loadMatchesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MatchesModel) selected() *matchRow {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}

	return &m.rows[idx]
}

func (m MatchesModel) enterConfirmMode() (tea.Model, tea.Cmd) {
	row := m.selected()
	if row == nil {
		return m, nil
	}

	if row.match.Reversed {
		m.status = "Match is already reversed"
		return m, nil
	}

	*m.confirmReverse = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("reverse").
				Title("Reverse this match?").
				Description(fmt.Sprintf("%s  %s ↔ %s\nBoth sides go back to unmatched.",
					FormatDate(row.tx.Date), row.tx.Counterparty, row.rc.Vendor)).
				Affirmative("Reverse").
				Negative("Keep").
				Value(m.confirmReverse),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = matchesStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m MatchesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m.cancelConfirm()
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirmReverse {
		return m.cancelConfirm()
	}

	return m, m.reverseCmd(m.selected().match.ID)
}

func (m MatchesModel) cancelConfirm() (tea.Model, tea.Cmd) {
	m.state = matchesStateBrowse
	m.form = nil
	m.table.Focus()

	return m, nil
}

func (m MatchesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading matches...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	stateLabel := "Active"
	if m.showReversed {
		stateLabel = "All"
	}

	dateLabels := []string{"All Time", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"Filter: [a] Show: %s | [d] Created: %s",
		activeStyle(stateLabel),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == matchesStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *MatchesModel) applyFilter(now time.Time) {
	m.filter.ActiveOnly = !m.showReversed

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.CreatedFrom = &s
		m.filter.CreatedTo = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.CreatedFrom = &s
		m.filter.CreatedTo = &e
	default:
		m.filter.CreatedFrom = nil
		m.filter.CreatedTo = nil
	}
}

func (m *MatchesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))

	for _, r := range m.rows {
		state := "active"
		if r.match.Reversed {
			state = "reversed"
		}

		rows = append(rows, table.Row{
			FormatDate(r.tx.Date),
			r.tx.Counterparty,
			r.rc.Vendor,
			FormatAmount(r.tx.Amount, r.tx.Currency, r.tx.Direction),
			string(r.match.Tier),
			fmt.Sprintf("%.2f", r.match.Score),
			state,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadMatchesMsg struct {
	rows []matchRow
	err  error
}

func (m MatchesModel) loadMatchesCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.ledger.ListMatches(ctx, filter)
		if err != nil {
			return loadMatchesMsg{err: err}
		}

		rows := make([]matchRow, 0, len(records))

		for _, rec := range records {
			tx, err := m.transactions.Get(ctx, rec.TransactionID)
			if err != nil {
				return loadMatchesMsg{err: fmt.Errorf("loading transaction %s: %w", rec.TransactionID, err)}
			}

			rc, err := m.receipts.Get(ctx, rec.ReceiptID)
			if err != nil {
				return loadMatchesMsg{err: fmt.Errorf("loading receipt %s: %w", rec.ReceiptID, err)}
			}

			rows = append(rows, matchRow{match: rec, tx: tx, rc: rc})
		}

		return loadMatchesMsg{rows: rows}
	}
}

type reverseResultMsg struct {
	id  uuid.UUID
	err error
}

func (m MatchesModel) reverseCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.ledger.Reverse(ctx, id)

		return reverseResultMsg{id: id, err: err}
	}
}
