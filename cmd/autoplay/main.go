// Package main - autoplay
// Headless batch player for balance tuning. Runs full games against the
// simulation engine with a random policy and reports aggregate outcomes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/mzhirov/moneyrace/server/internal/deck"
	"github.com/mzhirov/moneyrace/server/internal/engine"
	"github.com/mzhirov/moneyrace/server/internal/journal"
	"github.com/mzhirov/moneyrace/server/internal/platform/logger"
	"github.com/mzhirov/moneyrace/server/internal/scenario"
)

// Config for the autoplay batch.
type Config struct {
	NumGames      int
	Seed          int64
	MovesPerMonth int
	TotalMonths   int
	FinancialGoal int64
	SkipChance    float64
}

// Stats aggregates outcomes across the batch.
type Stats struct {
	GamesWon      int
	GamesLost     int
	TotalMoves    int
	TotalMonths   int
	Shortfalls    int
	FinalNetWorth []int64
}

func main() {
	numGames := flag.Int("games", 100, "Number of games to play")
	seed := flag.Int64("seed", 0, "Random seed (0 = current time)")
	movesPerMonth := flag.Int("moves", 4, "Moves per month")
	months := flag.Int("months", 0, "Horizon override in months (0 = scenario default)")
	goal := flag.Int64("goal", 0, "Financial goal override (0 = scenario default)")
	skipChance := flag.Float64("skip", 0.2, "Probability of skipping a card instead of accepting it")
	flag.Parse()

	config := Config{
		NumGames:      *numGames,
		Seed:          *seed,
		MovesPerMonth: *movesPerMonth,
		TotalMonths:   *months,
		FinancialGoal: *goal,
		SkipChance:    *skipChance,
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	fmt.Println("=========================================")
	fmt.Println("MoneyRace Autoplay - Balance Tuning Tool")
	fmt.Println("=========================================")
	fmt.Printf("Games: %d\n", config.NumGames)
	fmt.Printf("Seed: %d\n", config.Seed)
	fmt.Printf("Moves/month: %d\n", config.MovesPerMonth)
	fmt.Println("=========================================")

	stats, err := runBatch(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "autoplay failed:", err)
		os.Exit(1)
	}

	printResults(stats, config)
}

func runBatch(config Config) (*Stats, error) {
	rng := rand.New(rand.NewSource(config.Seed))

	appLogger := logger.NewLogger()
	appLogger.SetLevel("error")

	catalog := deck.NewCatalog(rng)
	eng, err := engine.New(scenario.Default(), catalog, journal.NewLog(nil), appLogger, config.MovesPerMonth)
	if err != nil {
		return nil, err
	}

	var overrides engine.Overrides
	if config.FinancialGoal != 0 {
		overrides.FinancialGoal = &config.FinancialGoal
	}
	if config.TotalMonths != 0 {
		overrides.TotalMonths = &config.TotalMonths
	}

	stats := &Stats{FinalNetWorth: make([]int64, 0, config.NumGames)}

	for i := 0; i < config.NumGames; i++ {
		if i > 0 || config.FinancialGoal != 0 || config.TotalMonths != 0 {
			eng.NewGame(overrides)
		}
		playGame(eng, rng, config, stats)

		g := eng.Game()
		if g.Status == engine.StatusWon {
			stats.GamesWon++
		} else {
			stats.GamesLost++
		}
		stats.TotalMoves += g.CurrentMove
		stats.TotalMonths += len(g.MonthlyReports)
		stats.FinalNetWorth = append(stats.FinalNetWorth, g.NetWorth())
	}

	return stats, nil
}

// playGame drives one game to a terminal state with a random policy: resolve
// every drawn card, then advance.
func playGame(eng *engine.Engine, rng *rand.Rand, config Config, stats *Stats) {
	g := eng.Game()
	for g.Status == engine.StatusPlaying {
		if g.CurrentCard != nil {
			eng.ResolveEvent(pickAction(*g.CurrentCard, rng, config.SkipChance))
		}

		before := g.RevolvingLiability().Balance
		eng.AdvanceMove()
		if g.RevolvingLiability().Balance > before {
			stats.Shortfalls++
		}
	}
}

func pickAction(card deck.Card, rng *rand.Rand, skipChance float64) engine.Action {
	if rng.Float64() < skipChance {
		return engine.ActionSkip
	}
	switch card.Outcome.(type) {
	case deck.Windfall:
		return engine.ActionAcceptIncome
	case deck.Expense:
		return engine.ActionAcceptExpense
	case deck.Opportunity:
		return engine.ActionBuy
	case deck.Sale:
		return engine.ActionSell
	default:
		return engine.ActionSkip
	}
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("AUTOPLAY RESULTS")
	fmt.Println("=========================================")

	total := stats.GamesWon + stats.GamesLost
	fmt.Printf("Games Played:   %d\n", total)
	fmt.Printf("Games Won:      %d (%.1f%%)\n", stats.GamesWon, float64(stats.GamesWon)/float64(total)*100)
	fmt.Printf("Games Lost:     %d\n", stats.GamesLost)
	fmt.Printf("Shortfalls:     %d\n", stats.Shortfalls)
	fmt.Printf("Avg Moves/Game: %.1f\n", float64(stats.TotalMoves)/float64(total))
	fmt.Printf("Avg Months:     %.1f\n", float64(stats.TotalMonths)/float64(total))

	if len(stats.FinalNetWorth) > 0 {
		var sum, min, max int64
		min, max = stats.FinalNetWorth[0], stats.FinalNetWorth[0]
		for _, nw := range stats.FinalNetWorth {
			sum += nw
			if nw < min {
				min = nw
			}
			if nw > max {
				max = nw
			}
		}
		fmt.Printf("\nFinal Net Worth:\n")
		fmt.Printf("  Min: %d\n", min)
		fmt.Printf("  Avg: %d\n", sum/int64(len(stats.FinalNetWorth)))
		fmt.Printf("  Max: %d\n", max)
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"games_won":  stats.GamesWon,
		"games_lost": stats.GamesLost,
		"shortfalls": stats.Shortfalls,
		"config": map[string]interface{}{
			"games": config.NumGames,
			"seed":  config.Seed,
			"moves": config.MovesPerMonth,
		},
	}
	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("autoplay_results.json", jsonData, 0644)
	fmt.Println("\nResults saved to autoplay_results.json")
}
