package provider

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"keepersecurity.com/ksm-catalog-sync/catalog"
)

var (
	ErrNotConnected   = errors.New("provider is not connected to a catalog sink")
	ErrSyncInProgress = errors.New("sync cycle already in progress")
)

// Stage is the step a sync cycle reached. A failed cycle keeps the stage it failed in.
type Stage string

const (
	StageIdle           Stage = "idle"
	StageFetchingGroups Stage = "fetching-groups"
	StageFetchingUsers  Stage = "fetching-users"
	StageMapping        Stage = "mapping"
	StageEmitting       Stage = "emitting"
	StageDone           Stage = "done"
)

type IEntityProvider interface {
	Name() string
	Connect(ctx context.Context, sink catalog.Sink) *SyncResult
	RunSync(ctx context.Context) *SyncResult
	LastResult() *SyncResult
}

type SyncResult struct {
	Provider      string
	CorrelationId string
	Stage         Stage
	Groups        int
	Users         int
	StartedAt     time.Time
	Duration      time.Duration
	Err           error
}

func (r *SyncResult) Ok() bool {
	return r != nil && r.Err == nil && r.Stage == StageDone
}

// Skipped reports a cycle that did not run because another one was in flight.
func (r *SyncResult) Skipped() bool {
	return r != nil && errors.Is(r.Err, ErrSyncInProgress)
}

type syncResultJson struct {
	Provider      string    `json:"provider"`
	CorrelationId string    `json:"correlation_id,omitempty"`
	Stage         Stage     `json:"stage"`
	Success       bool      `json:"success"`
	Groups        int       `json:"groups"`
	Users         int       `json:"users"`
	StartedAt     time.Time `json:"started_at"`
	DurationMs    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

func (r *SyncResult) MarshalJSON() ([]byte, error) {
	var rj = syncResultJson{
		Provider:      r.Provider,
		CorrelationId: r.CorrelationId,
		Stage:         r.Stage,
		Success:       r.Ok(),
		Groups:        r.Groups,
		Users:         r.Users,
		StartedAt:     r.StartedAt,
		DurationMs:    r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		rj.Error = r.Err.Error()
	}
	return json.Marshal(rj)
}
