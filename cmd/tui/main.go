package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/receiptmatch/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/receiptmatch/internal/app"
	"github.com/MrJamesThe3rd/receiptmatch/internal/config"
)

type model struct {
	app *app.App

	currentView View

	importView  view.ImportModel
	syncView    view.SyncModel
	reviewView  view.ReviewModel
	matchesView view.MatchesModel
	exportView  view.ExportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewImport  View = 1
	ViewSync    View = 2
	ViewReview  View = 3
	ViewMatches View = 4
	ViewExport  View = 5
)

func initialModel(a *app.App) model {
	return model{
		app:         a,
		currentView: ViewMenu,
		importView:  view.NewImportModel(a.Transactions, a.Receipts, a.Import),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "2":
				m.currentView = ViewSync
				m.syncView = view.NewSyncModel(m.app.Sync)

				return m, m.syncView.Init()
			case "3":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.app.Ledger, m.app.Sync, m.app.Transactions, m.app.Receipts)

				return m, m.reviewView.Init()
			case "4":
				m.currentView = ViewMatches
				m.matchesView = view.NewMatchesModel(m.app.Ledger, m.app.Transactions, m.app.Receipts)

				return m, m.matchesView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewSync:
		var newModel tea.Model
		newModel, cmd = m.syncView.Update(msg)
		m.syncView = newModel.(view.SyncModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewMatches:
		var newModel tea.Model
		newModel, cmd = m.matchesView.Update(msg)
		m.matchesView = newModel.(view.MatchesModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Receiptmatch\n\n" +
				"1. Import Statements & Receipts\n" +
				"2. Run Sync\n" +
				"3. Review Queue\n" +
				"4. Matches\n" +
				"5. Export Matched Receipts\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewSync:
		return m.syncView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewMatches:
		return m.matchesView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile("receiptmatch-tui.log", "tui")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := app.NewLoggerTo(logFile, cfg)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
