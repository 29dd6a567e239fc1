package pubg_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// MockRequester implements pubg.Requester for testing.
type MockRequester struct {
	mock.Mock
}

func (m *MockRequester) Request(ctx context.Context, endpoint *pubg.Endpoint) (*pubg.Document, error) {
	args := m.Called(ctx, endpoint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	doc, _ := args.Get(0).(*pubg.Document)

	return doc, args.Error(1)
}

// gatedRequester holds every request until release is closed or the request
// context ends. Each call decodes raw afresh, so payloads of different calls
// are distinct values.
type gatedRequester struct {
	raw     string
	started chan string
	release chan struct{}

	mu     sync.Mutex
	served map[string]*pubg.Document
}

func newGatedRequester(t *testing.T, raw string) *gatedRequester {
	t.Helper()

	return &gatedRequester{
		raw:     raw,
		started: make(chan string, 8),
		release: make(chan struct{}),
		served:  make(map[string]*pubg.Document),
	}
}

func (g *gatedRequester) Request(ctx context.Context, endpoint *pubg.Endpoint) (*pubg.Document, error) {
	path := strings.Join(endpoint.Segments(), "/")
	g.started <- path

	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var doc pubg.Document

	err := json.Unmarshal([]byte(g.raw), &doc)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.served[path] = &doc
	g.mu.Unlock()

	return &doc, nil
}

// servedFor returns the payload handed out for path.
func (g *gatedRequester) servedFor(path string) *pubg.Document {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.served[path]
}

// pathIs matches an endpoint by its segments at call time.
func pathIs(segments ...string) interface{} {
	return mock.MatchedBy(func(endpoint *pubg.Endpoint) bool {
		got := endpoint.Segments()
		if len(got) != len(segments) {
			return false
		}

		for i := range got {
			if got[i] != segments[i] {
				return false
			}
		}

		return true
	})
}

func parseDocument(t *testing.T, raw string) *pubg.Document {
	t.Helper()

	var doc pubg.Document

	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	return &doc
}

const playersPayload = `{
  "data": [
    {
      "type": "player",
      "id": "account.1",
      "attributes": {"name": "alpha", "shardId": "steam"},
      "relationships": {"matches": {"data": [{"type": "match", "id": "m1"}, {"type": "match", "id": "m2"}]}}
    },
    {
      "type": "player",
      "id": "account.2",
      "attributes": {"name": "bravo", "shardId": "steam"},
      "relationships": {"matches": {"data": []}}
    }
  ],
  "links": {"self": "https://api.pubg.com/shards/steam/players"}
}`

const matchPayload = `{
  "data": {
    "type": "match",
    "id": "m1",
    "attributes": {
      "createdAt": "2024-01-01T10:00:00Z",
      "duration": 1800,
      "gameMode": "squad-fpp",
      "mapName": "Baltic_Main",
      "shardId": "steam"
    },
    "relationships": {
      "rosters": {"data": [{"type": "roster", "id": "r1"}, {"type": "roster", "id": "r2"}]},
      "assets": {"data": [{"type": "asset", "id": "a1"}]}
    }
  },
  "included": [
    {
      "type": "roster",
      "id": "r1",
      "attributes": {"won": "true", "stats": {"rank": 1, "teamId": 4}},
      "relationships": {"participants": {"data": [{"type": "participant", "id": "p1"}]}}
    },
    {
      "type": "roster",
      "id": "r2",
      "attributes": {"won": "false", "stats": {"rank": 2, "teamId": 7}},
      "relationships": {"participants": {"data": [{"type": "participant", "id": "p2"}]}}
    },
    {
      "type": "participant",
      "id": "p1",
      "attributes": {"stats": {"name": "alpha", "playerId": "account.1", "kills": 5, "winPlace": 1}}
    },
    {
      "type": "participant",
      "id": "p2",
      "attributes": {"stats": {"name": "bravo", "playerId": "account.2", "kills": 2, "winPlace": 2}}
    },
    {
      "type": "asset",
      "id": "a1",
      "attributes": {
        "name": "telemetry",
        "URL": "https://telemetry-cdn.playbattlegrounds.com/bluehole-pubg/steam/2024/01/01/0/0/m1-telemetry.json"
      }
    }
  ]
}`
