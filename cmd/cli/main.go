package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shiro-Vs/EVA-sub001/internal/analytics"
	"github.com/Shiro-Vs/EVA-sub001/internal/dashboard"
	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/logger"
	"github.com/Shiro-Vs/EVA-sub001/internal/store/inmemory"
	"github.com/Shiro-Vs/EVA-sub001/internal/tips"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "snapshot":
		runSnapshot(log)
	case "tip":
		runTip(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Dashboard CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  snapshot  Compute a dashboard snapshot from a JSON fixture and print it")
	fmt.Println("  tip       Compute a snapshot from a fixture and print a saving tip")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// fixture is the JSON input shape for the one-shot commands. Dates are
// strings and go through the same tolerant coercion as production reads.
type fixture struct {
	UserID       string              `json:"userId"`
	Transactions []fixtureTx         `json:"transactions"`
	Services     []domain.Service    `json:"services"`
	Subscribers  []fixtureSubscriber `json:"subscribers"`
}

type fixtureTx struct {
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
	Category string  `json:"categoryName"`
}

type fixtureSubscriber struct {
	ServiceID string        `json:"serviceId"`
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Debts     []fixtureDebt `json:"debts"`
}

type fixtureDebt struct {
	Amount float64 `json:"amount"`
	Month  string  `json:"month"`
	Status string  `json:"status"`
}

func runSnapshot(log zerolog.Logger) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	file := fs.String("file", "", "Path to the JSON fixture")
	fs.Parse(os.Args[2:])

	snap := computeSnapshot(log, *file)

	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode snapshot")
	}
	fmt.Println(string(out))
}

func runTip(log zerolog.Logger) {
	fs := flag.NewFlagSet("tip", flag.ExitOnError)
	file := fs.String("file", "", "Path to the JSON fixture")
	model := fs.String("model", "", "Gemini model (empty uses rule-based tips)")
	fs.Parse(os.Args[2:])

	snap := computeSnapshot(log, *file)

	var provider tips.Provider = tips.Static{}
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		provider = tips.NewGemini(*model, log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tip, err := provider.Generate(ctx, snap)
	if err != nil {
		log.Fatal().Err(err).Msg("Tip generation failed")
	}
	fmt.Println(tip.Text)
}

// computeSnapshot loads the fixture, runs it through the full engine over the
// in-memory store, and returns the composed snapshot.
func computeSnapshot(log zerolog.Logger, file string) *domain.DashboardSnapshot {
	if file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read fixture")
	}

	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse fixture")
	}
	if fx.UserID == "" {
		fx.UserID = "local"
	}

	st := inmemory.NewStore()
	for _, sub := range fx.Subscribers {
		if sub.ID == "" {
			sub.ID = sub.Name
		}
		existing, _ := st.ListSubscribers(context.Background(), fx.UserID, sub.ServiceID)
		st.SetSubscribers(sub.ServiceID, append(existing, domain.Subscriber{ID: sub.ID, Name: sub.Name}))

		debts := make([]domain.Debt, 0, len(sub.Debts))
		for _, d := range sub.Debts {
			debts = append(debts, domain.Debt{Amount: d.Amount, Month: d.Month, Status: domain.DebtStatus(d.Status)})
		}
		st.SetDebts(sub.ServiceID, sub.ID, debts)
	}

	engine := dashboard.New(st, logger.WithUser(log, fx.UserID))
	defer engine.Close()

	if err := engine.Start(context.Background(), fx.UserID); err != nil {
		log.Fatal().Err(err).Msg("Failed to start engine")
	}

	txs := make([]domain.Transaction, 0, len(fx.Transactions))
	for _, t := range fx.Transactions {
		tx := domain.Transaction{
			Amount:   t.Amount,
			Type:     domain.TransactionType(t.Type),
			Category: t.Category,
		}
		if date, ok := analytics.CoerceDate(t.Date); ok {
			tx.Date = date
		}
		txs = append(txs, tx)
	}

	// In-memory feed callbacks fire synchronously, so both halves are
	// composed by the time the pushes return.
	st.PushServices(fx.UserID, fx.Services)
	st.PushTransactions(fx.UserID, txs)

	return engine.Snapshot()
}
