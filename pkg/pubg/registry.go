package pubg

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Object is a typed domain object built from a payload fragment.
type Object interface {
	ObjectType() string
	ObjectID() string
}

// Constructor builds a domain object from a resource and the document it was
// found in, which gives access to included resources.
type Constructor func(doc *Document, res *ResourceObject) (Object, error)

// Registry dispatches resource objects to constructors by their type field.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry holding every built-in resource type.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(TypePlayer, newPlayer)
		defaultRegistry.Register(TypeMatch, newMatch)
		defaultRegistry.Register(TypeSeason, newSeason)
		defaultRegistry.Register(TypePlayerSeason, newPlayerSeason)
		defaultRegistry.Register(TypeSample, newSample)
		defaultRegistry.Register(TypeStatus, newStatus)
		defaultRegistry.Register(TypeTournament, newTournament)
		defaultRegistry.Register(TypeLeaderboard, newLeaderboard)
	})

	return defaultRegistry
}

// Register binds a resource type to a constructor, replacing any earlier one.
func (r *Registry) Register(resourceType string, constructor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[resourceType] = constructor
}

// Types returns the number of registered resource types.
func (r *Registry) Types() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.constructors)
}

// Instance builds the domain object for the single resource held in doc.Data.
func (r *Registry) Instance(doc *Document) (Object, error) {
	if !doc.HasData() {
		return nil, fmt.Errorf("%w: document has no data", ErrDecode)
	}

	var res ResourceObject

	err := json.Unmarshal(doc.Data, &res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	r.mu.RLock()
	constructor, ok := r.constructors[res.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResourceType, res.Type)
	}

	return constructor(doc, &res)
}
