package catalog

import (
	"context"
	"sync"
)

type MutationType string

// FullMutation replaces every entity previously published under the same location key.
const FullMutation MutationType = "full"

type DeferredEntity struct {
	Entity      *Entity `json:"entity" yaml:"entity"`
	LocationKey string  `json:"locationKey" yaml:"locationKey"`
}

type Mutation struct {
	Type     MutationType     `json:"type"`
	Entities []DeferredEntity `json:"entities"`
}

// Sink receives catalog mutations. Implementations must apply a full
// mutation atomically: either the whole set replaces the old one or nothing changes.
type Sink interface {
	ApplyMutation(ctx context.Context, mutation *Mutation) error
}

// MemorySink keeps every applied mutation; used for dry runs and tests.
type MemorySink struct {
	mu        sync.Mutex
	mutations []*Mutation
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) ApplyMutation(_ context.Context, mutation *Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations = append(s.mutations, mutation)
	return nil
}

func (s *MemorySink) Mutations() []*Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result = make([]*Mutation, len(s.mutations))
	copy(result, s.mutations)
	return result
}

// Last returns the most recent mutation or nil.
func (s *MemorySink) Last() *Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.mutations) == 0 {
		return nil
	}
	return s.mutations[len(s.mutations)-1]
}
