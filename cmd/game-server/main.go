// Package main is the entry point for the MoneyRace game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mzhirov/moneyrace/server/internal/deck"
	"github.com/mzhirov/moneyrace/server/internal/engine"
	"github.com/mzhirov/moneyrace/server/internal/infra/storage"
	"github.com/mzhirov/moneyrace/server/internal/journal"
	"github.com/mzhirov/moneyrace/server/internal/network"
	"github.com/mzhirov/moneyrace/server/internal/platform/config"
	"github.com/mzhirov/moneyrace/server/internal/platform/logger"
	"github.com/mzhirov/moneyrace/server/internal/platform/metrics"
	"github.com/mzhirov/moneyrace/server/internal/scenario"
)

// SQLitePersisterAdapter translates journal events to storage records. It also
// maintains the games and monthly_reports read tables from the event stream.
type SQLitePersisterAdapter struct {
	events  *storage.SQLiteEventRepository
	reports *storage.SQLiteReportRepository
	games   *storage.SQLiteGameRepository
	logger  *logger.Logger

	mu      sync.Mutex
	current storage.GameRecord
}

func (a *SQLitePersisterAdapter) Append(event journal.SimEvent) error {
	start := time.Now()
	err := a.append(event)
	metrics.Get().RecordEventWrite(time.Since(start), err)
	return err
}

func (a *SQLitePersisterAdapter) append(event journal.SimEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		a.logger.Error("Failed to marshal payload of %s event %s: %v", event.Type, event.ID, err)
	}
	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payloadBytes, &payloadMap); err != nil {
		a.logger.Error("Failed to decode payload of %s event %s: %v", event.Type, event.ID, err)
	}

	ctx := context.Background()
	record := storage.SimEventRecord{
		ID:        event.ID,
		GameID:    event.GameID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Month:     event.Month,
		Move:      event.Move,
		Payload:   payloadMap,
	}
	if err := a.events.Append(ctx, record); err != nil {
		return err
	}

	switch event.Type {
	case journal.EventGameStarted:
		a.mu.Lock()
		a.current = storage.GameRecord{
			GameID:    event.GameID,
			Status:    string(engine.StatusPlaying),
			StartedAt: event.Timestamp,
		}
		if goal, ok := payloadMap["financial_goal"].(float64); ok {
			a.current.FinancialGoal = int64(goal)
		}
		if months, ok := payloadMap["total_months"].(float64); ok {
			a.current.TotalMonths = int(months)
		}
		if baseline, ok := payloadMap["initial_net_worth"].(float64); ok {
			a.current.InitialNetWorth = int64(baseline)
		}
		record := a.current
		a.mu.Unlock()
		return a.games.Upsert(ctx, record)

	case journal.EventGameWon, journal.EventGameLost:
		a.mu.Lock()
		if event.Type == journal.EventGameWon {
			a.current.Status = string(engine.StatusWon)
		} else {
			a.current.Status = string(engine.StatusLost)
		}
		record := a.current
		a.mu.Unlock()
		return a.games.Upsert(ctx, record)

	case journal.EventMonthSettled:
		if report, ok := event.Payload.(engine.MonthlyReport); ok {
			return a.reports.Upsert(ctx, storage.ReportRecord{
				GameID:           event.GameID,
				Month:            report.Month,
				Income:           report.Income,
				Expenses:         report.Expenses,
				CashFlow:         report.CashFlow,
				Cash:             report.Cash,
				NetWorth:         report.NetWorth,
				AssetsValue:      report.AssetsValue,
				LiabilitiesValue: report.LiabilitiesValue,
				Timestamp:        report.Timestamp,
			})
		}
	}
	return nil
}

func main() {
	cfg := config.Load()

	appLogger := logger.NewLogger()
	appLogger.SetLevel(cfg.LogLevel)
	appLogger.Info("Initializing MoneyRace authoritative server...")

	appLogger.Info("Initializing SQLite database %q...", cfg.DBPath)
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	persister := &SQLitePersisterAdapter{
		events:  storage.NewSQLiteEventRepository(db),
		reports: storage.NewSQLiteReportRepository(db),
		games:   storage.NewSQLiteGameRepository(db),
		logger:  appLogger,
	}

	appLogger.Info("Bootstrapping journal...")
	simJournal := journal.NewLog(persister)

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	catalog := deck.NewCatalog(rand.New(rand.NewSource(seed)))

	appLogger.Info("Bootstrapping simulation engine...")
	eng, err := engine.New(scenario.Default(), catalog, simJournal, appLogger, cfg.MovesPerMonth)
	if err != nil {
		appLogger.Error("Failed to initialize engine: %v", err)
		os.Exit(1)
	}
	sim := engine.NewServer(eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(sim, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, simJournal)

	router := mux.NewRouter()
	registerRoutes(router, sim, hub, appLogger)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		appLogger.Info("HTTP API & WS server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown: %v", err)
	}
	if err := db.Close(); err != nil {
		appLogger.Error("Database close: %v", err)
	}
}

func registerRoutes(router *mux.Router, sim *engine.Server, hub *network.Hub, appLogger *logger.Logger) {
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	router.HandleFunc("/api/game/new", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FinancialGoal *int64 `json:"financial_goal"`
			TotalMonths   *int   `json:"total_months"`
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}
		snap := sim.NewGame(engine.Overrides{
			FinancialGoal: req.FinancialGoal,
			TotalMonths:   req.TotalMonths,
		})
		hub.BroadcastSnapshot(snap)
		writeJSON(w, snap)
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/game/move", func(w http.ResponseWriter, r *http.Request) {
		snap := sim.AdvanceMove()
		hub.BroadcastSnapshot(snap)
		writeJSON(w, snap)
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/game/resolve", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action engine.Action `json:"action"`
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}
		if req.Action == "" {
			req.Action = engine.ActionSkip
		}
		snap := sim.ResolveEvent(req.Action)
		hub.BroadcastSnapshot(snap)
		writeJSON(w, snap)
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/game/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sim.Snapshot())
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/game/journal", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sim.JournalEntries())
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/game/chart", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, sim.ProgressChart())
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler()).Methods(http.MethodGet)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow cross-origin requests for the frontend dev server
		},
	}
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			appLogger.Error("Failed to upgrade websocket connection")
			return
		}
		hub.ServeWS(conn)
	})
}
