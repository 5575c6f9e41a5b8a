package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type ReviewLedger interface {
	ListReviews(ctx context.Context, status *ledger.ReviewStatus) ([]*ledger.ReviewItem, error)
	DismissReview(ctx context.Context, id uuid.UUID) error
}

type ReviewConfirmer interface {
	ConfirmReview(ctx context.Context, reviewID, receiptID uuid.UUID, note string) (*ledger.MatchRecord, error)
}

type TransactionGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
}

type ReceiptGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error)
}

// reviewCase is a pending item with both sides loaded.
type reviewCase struct {
	item       *ledger.ReviewItem
	tx         *transaction.Transaction
	candidates []*receipt.Receipt
}

type ReviewModel struct {
	CommonModel
	reviews      ReviewLedger
	confirmer    ReviewConfirmer
	transactions TransactionGetter
	receipts     ReceiptGetter

	queue   []reviewCase
	current *reviewCase
	cursor  int

	noteInput textinput.Model

	status     string
	loading    bool
	totalCount int
	confirmed  int
	dismissed  int
}

func NewReviewModel(reviews ReviewLedger, confirmer ReviewConfirmer, txs TransactionGetter, receipts ReceiptGetter) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Note (optional)"
	ti.Width = 50

	return ReviewModel{
		reviews:      reviews,
		confirmer:    confirmer,
		transactions: txs,
		receipts:     receipts,
		noteInput:    ti,
		loading:      true,
		status:       "Loading review queue...",
	}
}

func (m ReviewModel) Title() string { return "Review Queue" }

func (m ReviewModel) ShortHelp() string {
	return "↑/↓: pick receipt | Enter: confirm | ctrl+d: dismiss | Tab: skip | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadQueueCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}

			return m, nil
		case tea.KeyDown:
			if m.current != nil && m.cursor < len(m.current.candidates)-1 {
				m.cursor++
			}

			return m, nil
		case tea.KeyTab:
			if m.current != nil {
				m.nextCase()
				return m, textinput.Blink
			}
		case tea.KeyCtrlD:
			if m.current != nil {
				return m, m.dismissCmd(m.current.item.ID)
			}
		case tea.KeyEnter:
			if m.current != nil && len(m.current.candidates) > 0 {
				r := m.current.candidates[m.cursor]
				return m, m.confirmCmd(m.current.item.ID, r.ID, m.noteInput.Value())
			}
		}

	case loadQueueMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading queue: %v", msg.err)
			break
		}

		m.queue = msg.cases
		m.totalCount = len(m.queue)

		if len(m.queue) > 0 {
			m.nextCase()
			return m, textinput.Blink
		}

		m.status = "Nothing waiting for review."

	case reviewResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			break
		}

		if msg.confirmed {
			m.confirmed++
		} else {
			m.dismissed++
		}

		m.nextCase()

		return m, textinput.Blink
	}

	if m.current != nil {
		m.noteInput, cmd = m.noteInput.Update(msg)
	}

	return m, cmd
}

func (m *ReviewModel) nextCase() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = fmt.Sprintf("All done! %d confirmed, %d dismissed.", m.confirmed, m.dismissed)
		m.noteInput.Blur()

		return
	}

	c := m.queue[0]
	m.queue = m.queue[1:]
	m.current = &c
	m.cursor = suggestedIndex(c)

	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)
	m.noteInput.SetValue("")
	m.noteInput.Focus()
}

// suggestedIndex positions the cursor on the suggested receipt, if any.
func suggestedIndex(c reviewCase) int {
	if c.item.SuggestedReceiptID == nil {
		return 0
	}

	for i, r := range c.candidates {
		if r.ID == *c.item.SuggestedReceiptID {
			return i
		}
	}

	return 0
}

func (m ReviewModel) View() string {
	if m.loading || m.current == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to back)")
	}

	tx := m.current.tx
	item := m.current.item

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n\n", m.status)
	fmt.Fprintf(&sb, "Date:         %s\n", FormatDate(tx.Date))
	fmt.Fprintf(&sb, "Counterparty: %s\n", tx.Counterparty)
	fmt.Fprintf(&sb, "Amount:       %s\n", FormatAmount(tx.Amount, tx.Currency, tx.Direction))
	fmt.Fprintf(&sb, "Description:  %s\n", tx.Description)
	fmt.Fprintf(&sb, "Reason:       %s (score %.2f)\n\n", activeStyle(item.Reason), item.Score)

	if len(m.current.candidates) == 0 {
		sb.WriteString("No candidate receipts are still open.\n")
	}

	for i, r := range m.current.candidates {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		mark := ""
		if item.SuggestedReceiptID != nil && *item.SuggestedReceiptID == r.ID {
			mark = activeStyle(" (suggested)")
		}

		fmt.Fprintf(&sb, "%s%s  %-28.28s %14s%s\n",
			cursor, FormatDate(r.Date), r.Vendor, FormatAmount(r.Amount, r.Currency, r.Direction), mark)
	}

	fmt.Fprintf(&sb, "\n%s\n\n(%s)", m.noteInput.View(), m.ShortHelp())

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}

type loadQueueMsg struct {
	cases []reviewCase
	err   error
}

func (m ReviewModel) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.reviews.ListReviews(ctx, new(ledger.ReviewPending))
		if err != nil {
			return loadQueueMsg{err: err}
		}

		cases := make([]reviewCase, 0, len(items))

		for _, item := range items {
			tx, err := m.transactions.Get(ctx, item.TransactionID)
			if err != nil {
				return loadQueueMsg{err: err}
			}

			c := reviewCase{item: item, tx: tx}

			// Receipts matched elsewhere since the item was queued are left out.
			for _, id := range item.CandidateIDs {
				r, err := m.receipts.Get(ctx, id)
				if err != nil || r.Status != receipt.StatusUnmatched {
					continue
				}

				c.candidates = append(c.candidates, r)
			}

			cases = append(cases, c)
		}

		return loadQueueMsg{cases: cases}
	}
}

type reviewResultMsg struct {
	confirmed bool
	err       error
}

func (m ReviewModel) confirmCmd(reviewID, receiptID uuid.UUID, note string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.confirmer.ConfirmReview(ctx, reviewID, receiptID, note)

		return reviewResultMsg{confirmed: true, err: err}
	}
}

func (m ReviewModel) dismissCmd(reviewID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return reviewResultMsg{err: m.reviews.DismissReview(ctx, reviewID)}
	}
}
