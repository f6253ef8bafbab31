package ksm_catalog_sync

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"

	"keepersecurity.com/ksm-catalog-sync/internal/app"
	"keepersecurity.com/ksm-catalog-sync/internal/config"
	"keepersecurity.com/ksm-catalog-sync/internal/logging"
	"keepersecurity.com/ksm-catalog-sync/provider"
)

func init() {
	functions.HTTP("CatalogSyncHttp", catalogSyncHttp)
	functions.CloudEvent("CatalogSyncPubSub", catalogSyncPubSub)
}

// runCatalogSync runs one sync cycle with configuration from the environment.
// Cloud Scheduler provides the recurrence when deployed as a function.
func runCatalogSync(ctx context.Context) (result *provider.SyncResult, err error) {
	var cfg *config.Config
	if cfg, err = config.Load(""); err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		return
	}
	logging.Init(cfg.Logging)

	if cfg.Sync.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Sync.Timeout)
		defer cancel()
	}

	var p = app.NewProvider(cfg)
	var sink, er1 = app.NewSink(cfg)
	if er1 != nil {
		err = er1
		logging.Error().Err(err).Msg("failed to create catalog sink")
		return
	}
	result = p.Connect(ctx, sink)
	err = result.Err
	return
}

func printStatistics(w io.Writer, result *provider.SyncResult) {
	if result == nil {
		return
	}
	if result.Ok() {
		_, _ = fmt.Fprintf(w, "Sync Success:\n")
	} else {
		_, _ = fmt.Fprintf(w, "Sync Failure:\n")
	}
	_, _ = fmt.Fprintf(w, "\tProvider: %s\n", result.Provider)
	_, _ = fmt.Fprintf(w, "\tStage: %s\n", result.Stage)
	_, _ = fmt.Fprintf(w, "\tGroups: %d\n", result.Groups)
	_, _ = fmt.Fprintf(w, "\tUsers: %d\n", result.Users)
	_, _ = fmt.Fprintf(w, "\tDuration: %s\n", result.Duration)
	if result.Err != nil {
		_, _ = fmt.Fprintf(w, "\tError: %s\n", result.Err)
	}
}

// catalogSyncHttp is the HTTP trigger.
func catalogSyncHttp(w http.ResponseWriter, r *http.Request) {
	var result, err = runCatalogSync(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		if result == nil {
			_, _ = fmt.Fprintf(w, "Sync Failure:\n\tError: %s\n", err)
			return
		}
	}
	printStatistics(w, result)
}

// catalogSyncPubSub consumes the Pub/Sub CloudEvent published by Cloud Scheduler.
func catalogSyncPubSub(ctx context.Context, _ event.Event) (err error) {
	_, err = runCatalogSync(ctx)
	return
}
