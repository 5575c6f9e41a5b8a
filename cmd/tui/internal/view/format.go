package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders minor units with the currency code, signed by direction.
func FormatAmount(minor int64, currency string, dir transaction.Direction) string {
	s := money.FormatCurrency(minor, currency)
	if dir == transaction.DirectionIncoming {
		return "+" + s
	}

	return "-" + s
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}

func successStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(s)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}
