package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/reconcile"
)

const syncTimeout = 5 * time.Minute

type Syncer interface {
	Run(ctx context.Context, req reconcile.SyncRequest) (*reconcile.Summary, error)
}

type syncState int

const (
	syncStateTimeframe syncState = iota
	syncStateMode
	syncStateRunning
	syncStateResult
)

type SyncModel struct {
	CommonModel
	syncer Syncer

	state           syncState
	timeframePicker TimeframePicker
	rng             period.Range

	form *huh.Form
	// dryRun is shared with the form, which outlives model copies.
	dryRun  *bool
	spinner spinner.Model

	summary *reconcile.Summary
	err     error
}

func NewSyncModel(s Syncer) SyncModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SyncModel{
		syncer:          s,
		state:           syncStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek),
		dryRun:          new(true),
		spinner:         sp,
	}
}

func (m SyncModel) Title() string { return "Run Sync" }

func (m SyncModel) ShortHelp() string {
	switch m.state {
	case syncStateResult:
		return "Esc: back to menu | r: run again"
	case syncStateRunning:
		return "Matching..."
	}

	return "Esc: back | Enter: confirm"
}

func (m SyncModel) Init() tea.Cmd {
	return nil
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.rng = tfMsg.Range
		m.form = m.buildModeForm()
		m.state = syncStateMode

		return m, m.form.Init()
	}

	switch m.state {
	case syncStateTimeframe:
		return m.updateTimeframe(msg)
	case syncStateMode:
		return m.updateMode(msg)
	case syncStateRunning:
		return m.updateRunning(msg)
	case syncStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m SyncModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m SyncModel) updateMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = syncStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m.start()
}

func (m SyncModel) start() (tea.Model, tea.Cmd) {
	m.state = syncStateRunning
	m.err = nil
	m.summary = nil

	return m, tea.Batch(m.spinner.Tick, m.runSyncCmd(reconcile.SyncRequest{Range: m.rng, DryRun: *m.dryRun}))
}

func (m SyncModel) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(syncResultMsg); ok {
		m.state = syncStateResult
		m.summary = result.summary
		m.err = result.err

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m SyncModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		return m.start()
	}

	return m, nil
}

func (m SyncModel) buildModeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bool]().
				Key("mode").
				Title(fmt.Sprintf("Sync %s", m.rng)).
				Options(
					huh.NewOption("Preview only (dry run)", true),
					huh.NewOption("Commit matches", false),
				).
				Value(m.dryRun),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SyncModel) View() string {
	switch m.state {
	case syncStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case syncStateMode:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case syncStateRunning:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Matching transactions for %s...", m.spinner.View(), m.rng),
		)

	case syncStateResult:
		return m.viewResult()
	}

	return ""
}

func (m SyncModel) viewResult() string {
	var sb strings.Builder

	if m.err != nil {
		sb.WriteString(errorStyle(fmt.Sprintf("Error: %v", m.err)))
		sb.WriteString("\n\n")
	}

	if sum := m.summary; sum != nil {
		title := "Sync Complete"
		if sum.DryRun {
			title = "Dry Run"
		}

		sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render(title))
		fmt.Fprintf(&sb, "  %s\n\n", sum.Range)
		fmt.Fprintf(&sb, "Transactions:    %d\n", sum.Transactions)
		fmt.Fprintf(&sb, "Receipts:        %d\n", sum.Receipts)
		fmt.Fprintf(&sb, "Auto matched:    %s\n", activeStyle(fmt.Sprint(sum.AutoMatched)))
		fmt.Fprintf(&sb, "AI resolved:     %d\n", sum.AIResolved)
		fmt.Fprintf(&sb, "Human review:    %d\n", sum.HumanReview)
		fmt.Fprintf(&sb, "No match:        %d\n", sum.NoMatch)
		fmt.Fprintf(&sb, "Already matched: %d\n", sum.AlreadyMatched)

		if sum.PostFailures > 0 {
			fmt.Fprintf(&sb, "Post failures:   %s\n", errorStyle(fmt.Sprint(sum.PostFailures)))
		}

		for _, e := range sum.Errors {
			sb.WriteString(errorStyle("! "+e.Error()) + "\n")
		}

		if sum.DryRun {
			sb.WriteString("\n")

			for _, o := range sum.Outcomes {
				tx := o.Decision.Transaction
				fmt.Fprintf(&sb, "%s  %-28.28s %14s  %s\n",
					FormatDate(tx.Date), tx.Counterparty, FormatAmount(tx.Amount, tx.Currency, tx.Direction), tierLabel(o))
			}
		}
	}

	sb.WriteString("\n(Esc to go back, r to run again)")

	return lipgloss.NewStyle().Padding(1).Render(sb.String())
}

func tierLabel(o escalation.Outcome) string {
	label := fmt.Sprintf("%s %.2f", o.Tier, o.Score)
	if o.Reason != "" {
		label += " (" + string(o.Reason) + ")"
	}

	return label
}

type syncResultMsg struct {
	summary *reconcile.Summary
	err     error
}

func (m SyncModel) runSyncCmd(req reconcile.SyncRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		sum, err := m.syncer.Run(ctx, req)

		return syncResultMsg{summary: sum, err: err}
	}
}
