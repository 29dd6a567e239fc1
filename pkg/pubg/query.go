package pubg

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Requester performs a GET against an endpoint and returns the decoded
// payload. The authenticated gateway in internal/http implements it.
type Requester interface {
	Request(ctx context.Context, endpoint *Endpoint) (*Document, error)
}

// Query is a lazy, cacheable request against one resource collection.
//
// Filter, Sort and Paginate derive new Queries; they never touch the receiver.
// All, Index and Len fetch at most once and reuse the cached payload until
// Invalidate or Get. Get always goes to the network.
//
// A Query is safe for concurrent use: concurrent first accesses share one
// network call, and a caller that gives up does not cancel it for the others.
type Query struct {
	requester Requester
	registry  *Registry

	mu       sync.Mutex
	endpoint *Endpoint
	doc      *Document
	// generation advances on Invalidate and Get; a fetch started under an
	// older generation does not store its result.
	generation uint64

	flight singleflight.Group
}

// NewQuery creates a Query over a copy of endpoint. A nil registry selects
// DefaultRegistry.
func NewQuery(requester Requester, endpoint *Endpoint, registry *Registry) *Query {
	if registry == nil {
		registry = DefaultRegistry()
	}

	return &Query{
		requester: requester,
		registry:  registry,
		endpoint:  endpoint.Copy(),
	}
}

// derive returns a new Query with an empty cache over the endpoint produced
// by mutate from a copy of the current one.
func (q *Query) derive(mutate func(*Endpoint) *Endpoint) *Query {
	q.mu.Lock()
	endpoint := mutate(q.endpoint.Copy())
	q.mu.Unlock()

	return &Query{
		requester: q.requester,
		registry:  q.registry,
		endpoint:  endpoint,
	}
}

// Filter returns a new Query with filter[name] set to the comma-joined values.
func (q *Query) Filter(name string, values ...string) *Query {
	return q.derive(func(e *Endpoint) *Endpoint {
		return e.WithFilter(name, values...)
	})
}

// Sort returns a new Query sorted by key. Prefix key with "-" to sort in
// descending order.
func (q *Query) Sort(key string) *Query {
	return q.derive(func(e *Endpoint) *Endpoint {
		return e.WithSort(key)
	})
}

// Paginate returns a new Query requesting the given page.
func (q *Query) Paginate(page Page) *Query {
	return q.derive(func(e *Endpoint) *Endpoint {
		return e.WithPage(page)
	})
}

// Fetch performs the network call unless a payload is already cached. A failed
// fetch leaves the cache empty.
func (q *Query) Fetch(ctx context.Context) error {
	_, err := q.ensure(ctx)

	return err
}

func (q *Query) ensure(ctx context.Context) (*Document, error) {
	q.mu.Lock()
	doc, generation := q.doc, q.generation
	q.mu.Unlock()

	if doc != nil {
		return doc, nil
	}

	// The shared request outlives any single caller; the gateway timeout
	// still bounds it.
	shared := context.WithoutCancel(ctx)
	results := q.flight.DoChan(strconv.FormatUint(generation, 10), func() (any, error) {
		return q.fetch(shared, generation)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching %s: %w", strings.Join(q.endpointSegments(), "/"), ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return nil, fmt.Errorf("fetching %s: %w", strings.Join(q.endpointSegments(), "/"), result.Err)
		}

		doc, _ = result.Val.(*Document)

		return doc, nil
	}
}

func (q *Query) fetch(ctx context.Context, generation uint64) (*Document, error) {
	q.mu.Lock()
	if q.doc != nil && q.generation == generation {
		cached := q.doc
		q.mu.Unlock()

		return cached, nil
	}

	endpoint := q.endpoint.Copy()
	q.mu.Unlock()

	fetched, err := q.requester.Request(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	if q.generation == generation {
		q.doc = fetched
	}
	q.mu.Unlock()

	return fetched, nil
}

// All fetches if needed and returns the collection as a lazy sequence of
// domain objects. The sequence may be ranged over any number of times; every
// pass reads the same cached payload.
func (q *Query) All(ctx context.Context) (iter.Seq2[Object, error], error) {
	doc, err := q.ensure(ctx)
	if err != nil {
		return nil, err
	}

	elements, err := doc.Elements()
	if err != nil {
		return nil, err
	}

	return func(yield func(Object, error) bool) {
		for _, element := range elements {
			obj, err := q.registry.Instance(doc.Element(element))
			if !yield(obj, err) {
				return
			}
		}
	}, nil
}

// Index fetches if needed and returns the element at index i of the cached
// collection.
func (q *Query) Index(ctx context.Context, i int) (Object, error) {
	doc, err := q.ensure(ctx)
	if err != nil {
		return nil, err
	}

	elements, err := doc.Elements()
	if err != nil {
		return nil, err
	}

	if i < 0 || i >= len(elements) {
		return nil, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, i, len(elements))
	}

	return q.registry.Instance(doc.Element(elements[i]))
}

// Len fetches if needed and returns the number of elements in the collection.
func (q *Query) Len(ctx context.Context) (int, error) {
	doc, err := q.ensure(ctx)
	if err != nil {
		return 0, err
	}

	elements, err := doc.Elements()
	if err != nil {
		return 0, err
	}

	return len(elements), nil
}

// Get discards the cache and fetches again. A non-empty id is appended to the
// endpoint path for the duration of the call only; the endpoint is restored
// before Get returns, whether or not the request succeeded. The result is
// built from the whole payload.
//
// Get holds the Query's lock for the whole request, so other methods on the
// same Query wait for it (up to the gateway timeout) and never observe the
// transient path segment.
func (q *Query) Get(ctx context.Context, id string) (Object, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.doc = nil
	q.generation++

	if id != "" {
		restore := q.endpoint.push(id)
		defer restore()
	}

	doc, err := q.requester.Request(ctx, q.endpoint)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", strings.Join(q.endpoint.segments, "/"), err)
	}

	q.doc = doc

	return q.registry.Instance(doc)
}

// Invalidate discards the cached payload so the next access fetches again.
func (q *Query) Invalidate() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.doc = nil
	q.generation++
}

// Cached reports whether a payload is cached.
func (q *Query) Cached() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.doc != nil
}

// Document returns the cached payload, or nil.
func (q *Query) Document() *Document {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.doc
}

// Endpoint returns a copy of the query's endpoint.
func (q *Query) Endpoint() *Endpoint {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.endpoint.Copy()
}

func (q *Query) endpointSegments() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.endpoint.Segments()
}
