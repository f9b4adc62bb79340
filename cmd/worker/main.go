package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/freshcart-api/internal/app/api"
	platformobservability "github.com/Apurer/freshcart-api/internal/platform/observability"
	orderactivities "github.com/Apurer/freshcart-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/freshcart-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "freshcart-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stores := api.OpenStores(ctx, cfg, logger)
	defer stores.Close()
	if stores.DB == nil {
		logger.Warn("worker is using in-memory stores; orders written here are invisible to the API")
	}
	_, accounts := api.NewAccounts(stores, cfg, instruments)
	activities := orderactivities.NewActivities(api.NewPlacement(stores, accounts, logger))

	temporalClient, err := api.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderPlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderPlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderPlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.SyncProfile, activity.RegisterOptions{Name: orderactivities.SyncProfileActivityName})
	w.RegisterActivityWithOptions(activities.CreateOrder, activity.RegisterOptions{Name: orderactivities.CreateOrderActivityName})
	w.RegisterActivityWithOptions(activities.CreateOrderLines, activity.RegisterOptions{Name: orderactivities.CreateOrderLinesActivityName})
	w.RegisterActivityWithOptions(activities.DeleteOrder, activity.RegisterOptions{Name: orderactivities.DeleteOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderPlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
