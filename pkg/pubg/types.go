package pubg

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Shard is the platform/region partition the API serves data from.
type Shard string

// Known shards.
const (
	ShardSteam      Shard = "steam"
	ShardKakao      Shard = "kakao"
	ShardConsole    Shard = "console"
	ShardPSN        Shard = "psn"
	ShardXbox       Shard = "xbox"
	ShardStadia     Shard = "stadia"
	ShardTournament Shard = "tournament"
)

// Shards returns all known shards.
func Shards() []Shard {
	return []Shard{ShardSteam, ShardKakao, ShardConsole, ShardPSN, ShardXbox, ShardStadia, ShardTournament}
}

// Valid reports whether s is a known shard.
func (s Shard) Valid() bool {
	return slices.Contains(Shards(), s)
}

// Filter names accepted by filter[...] parameters.
const (
	FilterPlayerNames    = "playerNames"
	FilterPlayerIDs      = "playerIds"
	FilterGamerTag       = "gamerTag"
	FilterCreatedAtStart = "createdAt-start"
	FilterCreatedAtEnd   = "createdAt-end"
)

// FilterParam returns the query parameter name for a filter.
func FilterParam(name string) string {
	return "filter[" + name + "]"
}

// GameMode names a queue type used by leaderboards and season stats.
type GameMode string

// Game modes.
const (
	GameModeSolo     GameMode = "solo"
	GameModeSoloFPP  GameMode = "solo-fpp"
	GameModeDuo      GameMode = "duo"
	GameModeDuoFPP   GameMode = "duo-fpp"
	GameModeSquad    GameMode = "squad"
	GameModeSquadFPP GameMode = "squad-fpp"
)

// GameModes returns every game mode.
func GameModes() []GameMode {
	return []GameMode{GameModeSolo, GameModeSoloFPP, GameModeDuo, GameModeDuoFPP, GameModeSquad, GameModeSquadFPP}
}

// Links represents resource links.
type Links map[string]string

// Document is a JSON:API response body. Data holds either a single resource
// object or an array of them and is left raw until a constructor needs it.
type Document struct {
	Data     json.RawMessage   `json:"data"               yaml:"-"`
	Included []json.RawMessage `json:"included,omitempty" yaml:"-"`
	Links    Links             `json:"links,omitempty"    yaml:"links,omitempty"`
	Meta     map[string]any    `json:"meta,omitempty"     yaml:"meta,omitempty"`
}

// HasData reports whether the document carries a data member.
func (d *Document) HasData() bool {
	return d != nil && len(d.Data) > 0 && string(d.Data) != "null"
}

// Elements splits a collection payload into its elements.
func (d *Document) Elements() ([]json.RawMessage, error) {
	if !d.HasData() {
		return nil, ErrNotCollection
	}

	var elements []json.RawMessage

	err := json.Unmarshal(d.Data, &elements)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotCollection, err)
	}

	return elements, nil
}

// Element returns a document whose data is the given element and which shares
// the parent's included resources.
func (d *Document) Element(data json.RawMessage) *Document {
	return &Document{
		Data:     data,
		Included: d.Included,
	}
}

// ResourceObject is a single JSON:API resource.
type ResourceObject struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    json.RawMessage         `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         Links                   `json:"links,omitempty"`
}

// Relationship is a to-one or to-many relationship.
type Relationship struct {
	Data json.RawMessage `json:"data"`
}

// Identifier is a resource linkage.
type Identifier struct {
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id"   yaml:"id"`
}

// Identifiers returns the linkages of a relationship, whether it is to-one or
// to-many.
func (r Relationship) Identifiers() []Identifier {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}

	var many []Identifier
	if err := json.Unmarshal(r.Data, &many); err == nil {
		return many
	}

	var one Identifier
	if err := json.Unmarshal(r.Data, &one); err == nil && one.ID != "" {
		return []Identifier{one}
	}

	return nil
}

// RelatedIDs returns the ids linked through the named relationship.
func (o *ResourceObject) RelatedIDs(name string) []string {
	rel, ok := o.Relationships[name]
	if !ok {
		return nil
	}

	identifiers := rel.Identifiers()
	ids := make([]string, 0, len(identifiers))

	for _, identifier := range identifiers {
		ids = append(ids, identifier.ID)
	}

	return ids
}

// DecodeAttributes unmarshals the attributes into v.
func (o *ResourceObject) DecodeAttributes(v any) error {
	if len(o.Attributes) == 0 {
		return nil
	}

	err := json.Unmarshal(o.Attributes, v)
	if err != nil {
		return fmt.Errorf("decoding %s attributes: %w", o.Type, err)
	}

	return nil
}

// includedIndex decodes the included resources once, keyed by type and id.
func includedIndex(doc *Document) (map[Identifier]*ResourceObject, error) {
	index := make(map[Identifier]*ResourceObject, len(doc.Included))

	for _, raw := range doc.Included {
		var obj ResourceObject

		err := json.Unmarshal(raw, &obj)
		if err != nil {
			return nil, fmt.Errorf("%w: included resource: %w", ErrDecode, err)
		}

		index[Identifier{Type: obj.Type, ID: obj.ID}] = &obj
	}

	return index, nil
}
