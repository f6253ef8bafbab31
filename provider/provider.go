package provider

import (
	"context"
	"sync"
	"time"

	"keepersecurity.com/ksm-catalog-sync/authentik"
	"keepersecurity.com/ksm-catalog-sync/catalog"
	"keepersecurity.com/ksm-catalog-sync/internal/logging"
	"keepersecurity.com/ksm-catalog-sync/internal/metrics"
)

const (
	ProviderName = "authentik"
	// LocationKey tags every entity of a mutation; the sink replaces all entities
	// previously published under it.
	LocationKey = "authentik-provider"
)

// EntityProvider publishes a full snapshot of the directory's groups and users
// to a catalog sink on every RunSync.
type EntityProvider struct {
	directory authentik.IDirectory
	mapper    *catalog.Mapper

	mu      sync.Mutex
	sink    catalog.Sink
	running bool
	last    *SyncResult
}

func NewEntityProvider(directory authentik.IDirectory, mapper *catalog.Mapper) *EntityProvider {
	return &EntityProvider{
		directory: directory,
		mapper:    mapper,
	}
}

func (p *EntityProvider) Name() string {
	return ProviderName
}

// Connect attaches the sink and runs the first sync cycle synchronously.
func (p *EntityProvider) Connect(ctx context.Context, sink catalog.Sink) *SyncResult {
	p.mu.Lock()
	p.sink = sink
	p.mu.Unlock()
	return p.RunSync(ctx)
}

// LastResult returns the outcome of the last cycle that ran, or nil.
func (p *EntityProvider) LastResult() *SyncResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// RunSync fetches groups then users, maps them and emits one full mutation.
// Failures are logged and reported in the result; the sink is left untouched.
func (p *EntityProvider) RunSync(ctx context.Context) (result *SyncResult) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	result = &SyncResult{
		Provider:      ProviderName,
		CorrelationId: logging.CorrelationIDFromContext(ctx),
		Stage:         StageIdle,
		StartedAt:     time.Now(),
	}

	p.mu.Lock()
	var sink = p.sink
	if sink == nil {
		p.mu.Unlock()
		result.Err = ErrNotConnected
		logging.Ctx(ctx).Error().Err(result.Err).Str("provider", ProviderName).Msg("sync cycle not started")
		return
	}
	if p.running {
		p.mu.Unlock()
		result.Err = ErrSyncInProgress
		metrics.SyncCycles.WithLabelValues(ProviderName, "skipped").Inc()
		logging.Ctx(ctx).Warn().Str("provider", ProviderName).Msg("sync cycle skipped: previous cycle still running")
		return
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		result.Duration = time.Since(result.StartedAt)
		p.finish(ctx, result)
		p.mu.Lock()
		p.running = false
		p.last = result
		p.mu.Unlock()
	}()

	logging.Ctx(ctx).Info().Str("provider", ProviderName).Msg("sync cycle started")

	var err error
	var groups []*authentik.Group
	result.Stage = StageFetchingGroups
	if groups, err = p.directory.Groups(ctx); err != nil {
		result.Err = err
		return
	}

	var users []*authentik.User
	result.Stage = StageFetchingUsers
	if users, err = p.directory.Users(ctx); err != nil {
		result.Err = err
		return
	}

	result.Stage = StageMapping
	var entities = make([]catalog.DeferredEntity, 0, len(groups)+len(users))
	for _, g := range groups {
		var e *catalog.Entity
		if e, err = p.mapper.GroupToEntity(g); err != nil {
			result.Err = err
			return
		}
		entities = append(entities, catalog.DeferredEntity{Entity: e, LocationKey: LocationKey})
	}
	for _, u := range users {
		entities = append(entities, catalog.DeferredEntity{
			Entity:      p.mapper.UserToEntity(u, groups),
			LocationKey: LocationKey,
		})
	}

	result.Stage = StageEmitting
	if err = sink.ApplyMutation(ctx, &catalog.Mutation{
		Type:     catalog.FullMutation,
		Entities: entities,
	}); err != nil {
		result.Err = err
		return
	}

	result.Groups = len(groups)
	result.Users = len(users)
	result.Stage = StageDone
	return
}

func (p *EntityProvider) finish(ctx context.Context, result *SyncResult) {
	metrics.SyncDuration.WithLabelValues(ProviderName).Observe(result.Duration.Seconds())
	if result.Err != nil {
		metrics.SyncCycles.WithLabelValues(ProviderName, "failure").Inc()
		metrics.SyncFailures.WithLabelValues(ProviderName, string(result.Stage)).Inc()
		logging.Ctx(ctx).Error().Err(result.Err).
			Str("provider", ProviderName).
			Str("stage", string(result.Stage)).
			Dur("duration", result.Duration).
			Msg("error fetching entities from Authentik")
		return
	}
	metrics.SyncCycles.WithLabelValues(ProviderName, "success").Inc()
	metrics.SyncEntities.WithLabelValues(ProviderName, catalog.KindGroup).Set(float64(result.Groups))
	metrics.SyncEntities.WithLabelValues(ProviderName, catalog.KindUser).Set(float64(result.Users))
	metrics.SyncLastSuccess.WithLabelValues(ProviderName).Set(float64(time.Now().Unix()))
	logging.Ctx(ctx).Info().
		Str("provider", ProviderName).
		Int("groups", result.Groups).
		Int("users", result.Users).
		Dur("duration", result.Duration).
		Msg("sync cycle completed")
}
