package pubg_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

var errTransport = errors.New("transport failed")

func newPlayersQuery(t *testing.T, requester pubg.Requester) *pubg.Query {
	t.Helper()

	return pubg.NewQuery(requester, mustEndpoint(t, "shards", "steam", "players"), nil)
}

func collect(t *testing.T, query *pubg.Query) []pubg.Object {
	t.Helper()

	seq, err := query.All(context.Background())
	require.NoError(t, err)

	var objects []pubg.Object

	for obj, err := range seq {
		require.NoError(t, err)

		objects = append(objects, obj)
	}

	return objects
}

func TestQuery_AllFetchesOnce(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, pathIs("shards", "steam", "players")).
		Return(parseDocument(t, playersPayload), nil)

	query := newPlayersQuery(t, requester)

	first := collect(t, query)
	second := collect(t, query)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	requester.AssertNumberOfCalls(t, "Request", 1)

	player, ok := first[0].(*pubg.Player)
	require.True(t, ok)
	assert.Equal(t, "account.1", player.ID)
	assert.Equal(t, "alpha", player.Name)
	assert.Equal(t, []string{"m1", "m2"}, player.MatchIDs)
}

func TestQuery_SequenceIsRestartable(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).Return(parseDocument(t, playersPayload), nil)

	seq, err := newPlayersQuery(t, requester).All(context.Background())
	require.NoError(t, err)

	count := func() int {
		n := 0
		for range seq {
			n++
		}

		return n
	}

	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
	requester.AssertNumberOfCalls(t, "Request", 1)
}

func TestQuery_IndexUsesCache(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).Return(parseDocument(t, playersPayload), nil)

	query := newPlayersQuery(t, requester)
	ctx := context.Background()

	first, err := query.Index(ctx, 1)
	require.NoError(t, err)

	again, err := query.Index(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "account.2", first.ObjectID())
	assert.Equal(t, first, again)

	length, err := query.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, length)

	requester.AssertNumberOfCalls(t, "Request", 1)
}

func TestQuery_IndexOutOfRange(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).Return(parseDocument(t, playersPayload), nil)

	query := newPlayersQuery(t, requester)

	_, err := query.Index(context.Background(), 2)
	require.ErrorIs(t, err, pubg.ErrIndexOutOfRange)

	_, err = query.Index(context.Background(), -1)
	require.ErrorIs(t, err, pubg.ErrIndexOutOfRange)

	assert.True(t, query.Cached())
}

func TestQuery_IndexOnSingleResource(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).Return(parseDocument(t, matchPayload), nil)

	query := pubg.NewQuery(requester, mustEndpoint(t, "shards", "steam", "matches"), nil)

	_, err := query.Index(context.Background(), 0)
	require.ErrorIs(t, err, pubg.ErrNotCollection)
}

func TestQuery_GetAlwaysFetches(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, pathIs("shards", "steam", "matches", "m1")).
		Return(parseDocument(t, matchPayload), nil)

	query := pubg.NewQuery(requester, mustEndpoint(t, "shards", "steam", "matches"), nil)
	ctx := context.Background()

	for range 3 {
		obj, err := query.Get(ctx, "m1")
		require.NoError(t, err)

		match, ok := obj.(*pubg.Match)
		require.True(t, ok)
		assert.Equal(t, "m1", match.ID)
	}

	requester.AssertNumberOfCalls(t, "Request", 3)
	assert.Equal(t, []string{"shards", "steam", "matches"}, query.Endpoint().Segments())
	assert.True(t, query.Cached())
}

func TestQuery_GetWithoutID(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, pathIs("status")).
		Return(parseDocument(t, `{"data": {"type": "status", "id": "pubg-api", "attributes": {"version": "v1.0"}}}`), nil)

	query := pubg.NewQuery(requester, mustEndpoint(t, "status"), nil)

	obj, err := query.Get(context.Background(), "")
	require.NoError(t, err)

	status, ok := obj.(*pubg.Status)
	require.True(t, ok)
	assert.Equal(t, "v1.0", status.Version)
}

func TestQuery_GetRestoresEndpointOnError(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, pathIs("shards", "steam", "matches", "missing")).
		Return(nil, pubg.ErrorForStatus(http.StatusNotFound, nil, nil))

	query := pubg.NewQuery(requester, mustEndpoint(t, "shards", "steam", "matches"), nil)

	_, err := query.Get(context.Background(), "missing")
	require.ErrorIs(t, err, pubg.ErrNotFound)

	assert.Equal(t, []string{"shards", "steam", "matches"}, query.Endpoint().Segments())
	assert.False(t, query.Cached())
}

func TestQuery_GetDiscardsCache(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, pathIs("shards", "steam", "players")).
		Return(parseDocument(t, playersPayload), nil).Once()
	requester.On("Request", mock.Anything, pathIs("shards", "steam", "players", "account.9")).
		Return(nil, errTransport).Once()

	query := newPlayersQuery(t, requester)

	require.NoError(t, query.Fetch(context.Background()))
	require.True(t, query.Cached())

	_, err := query.Get(context.Background(), "account.9")
	require.ErrorIs(t, err, errTransport)
	assert.False(t, query.Cached())

	requester.AssertExpectations(t)
}

func TestQuery_FailedFetchLeavesCacheEmpty(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).
		Return(nil, pubg.ErrorForStatus(http.StatusNotFound, nil, nil)).Once()
	requester.On("Request", mock.Anything, mock.Anything).
		Return(parseDocument(t, playersPayload), nil).Once()

	query := newPlayersQuery(t, requester)

	_, err := query.All(context.Background())
	require.ErrorIs(t, err, pubg.ErrNotFound)
	assert.False(t, query.Cached())
	assert.Nil(t, query.Document())

	objects := collect(t, query)
	assert.Len(t, objects, 2)
	requester.AssertNumberOfCalls(t, "Request", 2)
}

func TestQuery_FetchIsNoOpWhenCached(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).Return(parseDocument(t, playersPayload), nil)

	query := newPlayersQuery(t, requester)

	require.NoError(t, query.Fetch(context.Background()))
	require.NoError(t, query.Fetch(context.Background()))
	requester.AssertNumberOfCalls(t, "Request", 1)

	query.Invalidate()
	require.NoError(t, query.Fetch(context.Background()))
	requester.AssertNumberOfCalls(t, "Request", 2)
}

func TestQuery_DerivedQueries(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).Return(parseDocument(t, playersPayload), nil)

	parent := newPlayersQuery(t, requester)
	require.NoError(t, parent.Fetch(context.Background()))

	filtered := parent.Filter("name", "x")
	overridden := filtered.Filter("name", "y")
	sorted := parent.Sort("-createdAt")
	paged := parent.Paginate(pubg.Page{Limit: 5})

	assert.True(t, parent.Cached())
	assert.False(t, filtered.Cached())
	assert.False(t, sorted.Cached())
	assert.False(t, paged.Cached())

	assert.Empty(t, parent.Endpoint().Param("filter[name]"))
	assert.Equal(t, "x", filtered.Endpoint().Param("filter[name]"))
	assert.Equal(t, "y", overridden.Endpoint().Param("filter[name]"))
	assert.Equal(t, "-createdAt", sorted.Endpoint().Param(pubg.ParamSort))
	assert.Equal(t, "5", paged.Endpoint().Param(pubg.ParamPageLimit))
	assert.Empty(t, parent.Endpoint().Param(pubg.ParamSort))
}

func TestQuery_FilterSendsParams(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.MatchedBy(func(endpoint *pubg.Endpoint) bool {
		return endpoint.Param("filter[playerNames]") == "alpha,bravo"
	})).Return(parseDocument(t, playersPayload), nil)

	query := newPlayersQuery(t, requester).Filter(pubg.FilterPlayerNames, "alpha", "bravo")

	assert.Len(t, collect(t, query), 2)
	requester.AssertExpectations(t)
}

func TestQuery_ConcurrentFirstAccess(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).
		Return(parseDocument(t, playersPayload), nil).
		After(50 * time.Millisecond)

	query := newPlayersQuery(t, requester)

	var wg sync.WaitGroup

	errs := make(chan error, 10)

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := query.Index(context.Background(), 0)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	requester.AssertNumberOfCalls(t, "Request", 1)
}

func TestQuery_CancelledCallerLeavesSharedFetchRunning(t *testing.T) {
	t.Parallel()

	requester := newGatedRequester(t, playersPayload)
	query := newPlayersQuery(t, requester)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	errA := make(chan error, 1)
	errB := make(chan error, 1)

	go func() { errA <- query.Fetch(ctxA) }()

	assert.Equal(t, "shards/steam/players", <-requester.started)

	go func() { errB <- query.Fetch(context.Background()) }()

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(requester.release)
	require.NoError(t, <-errB)

	assert.True(t, query.Cached())
	assert.Empty(t, requester.started)
}

func TestQuery_InvalidateDuringFetch(t *testing.T) {
	t.Parallel()

	requester := newGatedRequester(t, playersPayload)
	query := newPlayersQuery(t, requester)

	done := make(chan error, 1)

	go func() { done <- query.Fetch(context.Background()) }()

	<-requester.started
	query.Invalidate()
	close(requester.release)

	require.NoError(t, <-done)
	assert.False(t, query.Cached())
}

func TestQuery_GetDuringFetchKeepsFreshPayload(t *testing.T) {
	t.Parallel()

	requester := newGatedRequester(t, matchPayload)
	query := pubg.NewQuery(requester, mustEndpoint(t, "shards", "steam", "matches"), nil)

	fetched := make(chan error, 1)
	got := make(chan error, 1)

	go func() { fetched <- query.Fetch(context.Background()) }()

	assert.Equal(t, "shards/steam/matches", <-requester.started)

	go func() {
		_, err := query.Get(context.Background(), "m1")
		got <- err
	}()

	assert.Equal(t, "shards/steam/matches/m1", <-requester.started)
	close(requester.release)

	require.NoError(t, <-got)
	require.NoError(t, <-fetched)

	require.NotNil(t, requester.servedFor("shards/steam/matches/m1"))
	assert.Same(t, requester.servedFor("shards/steam/matches/m1"), query.Document())
}

func TestQuery_GetHidesTransientSegment(t *testing.T) {
	t.Parallel()

	requester := newGatedRequester(t, matchPayload)
	query := pubg.NewQuery(requester, mustEndpoint(t, "shards", "steam", "matches"), nil)

	got := make(chan error, 1)

	go func() {
		_, err := query.Get(context.Background(), "m1")
		got <- err
	}()

	assert.Equal(t, "shards/steam/matches/m1", <-requester.started)

	segments := make(chan []string, 1)

	go func() { segments <- query.Endpoint().Segments() }()

	assert.Never(t, func() bool { return len(segments) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	close(requester.release)
	require.NoError(t, <-got)
	assert.Equal(t, []string{"shards", "steam", "matches"}, <-segments)
}

func TestQuery_UnknownResourceType(t *testing.T) {
	t.Parallel()

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).
		Return(parseDocument(t, `{"data": [{"type": "weapon", "id": "w1"}]}`), nil)

	query := newPlayersQuery(t, requester)

	_, err := query.Index(context.Background(), 0)
	require.ErrorIs(t, err, pubg.ErrUnknownResourceType)

	seq, err := query.All(context.Background())
	require.NoError(t, err)

	for obj, err := range seq {
		assert.Nil(t, obj)
		require.ErrorIs(t, err, pubg.ErrUnknownResourceType)
	}
}

func TestQuery_CustomRegistry(t *testing.T) {
	t.Parallel()

	type weapon struct {
		pubg.Resource
	}

	registry := pubg.NewRegistry()
	registry.Register("weapon", func(_ *pubg.Document, res *pubg.ResourceObject) (pubg.Object, error) {
		return &weapon{Resource: pubg.Resource{Type: res.Type, ID: res.ID}}, nil
	})

	requester := &MockRequester{}
	requester.On("Request", mock.Anything, mock.Anything).
		Return(parseDocument(t, `{"data": [{"type": "weapon", "id": "w1"}]}`), nil)

	query := pubg.NewQuery(requester, mustEndpoint(t, "weapons"), registry)

	obj, err := query.Index(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "w1", obj.ObjectID())
	assert.Equal(t, 1, registry.Types())
}
