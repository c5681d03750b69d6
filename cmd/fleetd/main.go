package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/frotadev/fleet-manager/internal/auth"
	"github.com/frotadev/fleet-manager/internal/db"
	"github.com/frotadev/fleet-manager/internal/handlers"
	"github.com/frotadev/fleet-manager/internal/middleware"
	"github.com/frotadev/fleet-manager/internal/notify"
	"github.com/frotadev/fleet-manager/internal/state"
)

const snapshotSaveTimeout = 10 * time.Second

// requireByMethod picks the permission to enforce from the request method:
// reads need the view action, POST the create action, and everything else
// the update action.
func requireByMethod(am *middleware.AuthMiddleware, viewAction, createAction, updateAction string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var action string
			switch r.Method {
			case http.MethodGet:
				action = viewAction
			case http.MethodPost:
				action = createAction
			default:
				action = updateAction
			}
			am.RequirePermission(action)(next).ServeHTTP(w, r)
		})
	}
}

// requireOperationAction guards the operation routes. Closing an operation
// via POST .../finish needs finish_operation rather than create_operation.
func requireOperationAction(am *middleware.AuthMiddleware) func(http.Handler) http.Handler {
	byMethod := requireByMethod(am, "view_operations", "create_operation", "update_operation")
	return func(next http.Handler) http.Handler {
		guarded := byMethod(next)
		finish := am.RequirePermission("finish_operation")(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/finish") {
				finish.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

func newLogger() *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func main() {
	_ = godotenv.Load()
	logger := newLogger()

	manager := state.NewManager(logger)

	client, err := db.ConnectMongo()
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	database := client.Database(db.DatabaseName())
	snapshots := &db.MongoSnapshotCollection{Collection: database.Collection("snapshots")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	loadCtx, cancel := context.WithTimeout(context.Background(), snapshotSaveTimeout)
	persisted, err := snapshots.LoadSnapshot(loadCtx)
	cancel()
	switch {
	case err == nil:
		manager.LoadSnapshot(persisted)
		logger.WithField("last_update", persisted.LastUpdate).Info("Fleet state restored from snapshot")
	case errors.Is(err, db.ErrNoSnapshot):
		logger.Info("No snapshot found, starting with an empty fleet")
	default:
		logger.WithError(err).Fatal("Failed to load fleet snapshot")
	}

	authService, err := auth.NewService()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create auth service")
	}

	metricsMW := middleware.NewMetricsMiddleware()
	authMW := middleware.NewAuthMiddleware(authService)
	rateMW := middleware.NewRateLimitMiddleware()

	var publisher *notify.Publisher
	if pub, err := notify.NewPublisher(logger); err != nil {
		logger.WithError(err).Warn("MQTT unavailable, change events will not be published")
	} else {
		publisher = pub
		defer publisher.Close()
	}

	manager.OnCommit(func(ev state.Event) {
		metricsMW.SetChangeToken(ev.Token)
		ctx, cancel := context.WithTimeout(context.Background(), snapshotSaveTimeout)
		defer cancel()
		if err := snapshots.SaveSnapshot(ctx, manager.ExportSnapshot()); err != nil {
			logger.WithError(err).Error("Failed to persist fleet snapshot")
		}
		if publisher != nil {
			publisher.PublishChange(ev)
		}
	})

	fleet := handlers.NewFleetHandler(manager, logger)
	authHandler := handlers.NewAuthHandler(authService, users, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			authHandler.UpdateProfile(w, r)
			return
		}
		authHandler.GetProfile(w, r)
	})

	handleEntity := func(pattern string, collection, byID http.HandlerFunc, guard func(http.Handler) http.Handler) {
		mux.Handle(pattern, guard(collection))
		mux.Handle(pattern+"/", guard(byID))
	}
	handleEntity("/api/forklifts", fleet.Forklifts, fleet.ForkliftByID,
		requireByMethod(authMW, "view_fleet", "manage_fleet", "manage_fleet"))
	handleEntity("/api/operators", fleet.Operators, fleet.OperatorByID,
		requireByMethod(authMW, "view_fleet", "manage_fleet", "manage_fleet"))
	handleEntity("/api/operations", fleet.Operations, fleet.OperationByID,
		requireOperationAction(authMW))
	handleEntity("/api/maintenance-orders", fleet.MaintenanceOrders, fleet.MaintenanceOrderByID,
		requireByMethod(authMW, "view_maintenance", "create_maintenance", "update_maintenance"))
	handleEntity("/api/fuel-supplies", fleet.FuelSupplies, fleet.FuelSupplyByID,
		requireByMethod(authMW, "view_fuel_supplies", "create_fuel_supply", "create_fuel_supply"))

	mux.Handle("/api/metrics", authMW.RequirePermission("view_metrics")(http.HandlerFunc(fleet.Metrics)))
	mux.Handle("/api/alerts", authMW.RequirePermission("view_alerts")(http.HandlerFunc(fleet.Alerts)))
	mux.Handle("/api/state/token", authMW.RequirePermission("view_metrics")(http.HandlerFunc(fleet.StateToken)))

	mux.Handle("/metrics", metricsMW.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	handler := metricsMW.Instrument(rateMW.RateLimit(120, time.Minute)(authMW.Authenticate(mux)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.WithField("port", port).Info("Fleet manager listening")
	logger.Fatal(http.ListenAndServe(":"+port, handler))
}
