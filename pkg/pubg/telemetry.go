package pubg

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"
)

// Common telemetry event types.
const (
	EventMatchDefinition = "LogMatchDefinition"
	EventMatchStart      = "LogMatchStart"
	EventMatchEnd        = "LogMatchEnd"
	EventPlayerKill      = "LogPlayerKillV2"
	EventPlayerPosition  = "LogPlayerPosition"
	EventPlayerTakeDmg   = "LogPlayerTakeDamage"
	EventItemPickup      = "LogItemPickup"
	EventGameStatePeriod = "LogGameStatePeriodic"
)

// TelemetryEvent is one entry of a telemetry document. The event body is kept
// raw; Decode unmarshals it into an event-specific struct.
type TelemetryEvent struct {
	Type      string          `json:"_T" yaml:"type"`
	Timestamp time.Time       `json:"_D" yaml:"timestamp"`
	Raw       json.RawMessage `json:"-"  yaml:"-"`
}

// UnmarshalJSON keeps the raw event next to its discriminators.
func (e *TelemetryEvent) UnmarshalJSON(data []byte) error {
	var head struct {
		Type      string    `json:"_T"`
		Timestamp time.Time `json:"_D"`
	}

	err := json.Unmarshal(data, &head)
	if err != nil {
		return fmt.Errorf("decoding telemetry event: %w", err)
	}

	e.Type = head.Type
	e.Timestamp = head.Timestamp
	e.Raw = slices.Clone(data)

	return nil
}

// Decode unmarshals the full event into v.
func (e *TelemetryEvent) Decode(v any) error {
	err := json.Unmarshal(e.Raw, v)
	if err != nil {
		return fmt.Errorf("decoding %s event: %w", e.Type, err)
	}

	return nil
}

// Telemetry is a parsed match event log.
type Telemetry struct {
	Events []TelemetryEvent `json:"events" yaml:"events"`
}

// ParseTelemetry parses a telemetry document, a JSON array of events.
func ParseTelemetry(data []byte) (*Telemetry, error) {
	var events []TelemetryEvent

	err := json.Unmarshal(data, &events)
	if err != nil {
		return nil, fmt.Errorf("%w: telemetry: %w", ErrDecode, err)
	}

	return &Telemetry{Events: events}, nil
}

// Filter returns the events whose type is one of types, in document order.
func (t *Telemetry) Filter(types ...string) []TelemetryEvent {
	var events []TelemetryEvent

	for _, event := range t.Events {
		if slices.Contains(types, event.Type) {
			events = append(events, event)
		}
	}

	return events
}

// Counts returns the number of events per type.
func (t *Telemetry) Counts() map[string]int {
	counts := make(map[string]int)

	for _, event := range t.Events {
		counts[event.Type]++
	}

	return counts
}

// Types returns the distinct event types, sorted.
func (t *Telemetry) Types() []string {
	counts := t.Counts()
	types := make([]string, 0, len(counts))

	for eventType := range counts {
		types = append(types, eventType)
	}

	sort.Strings(types)

	return types
}

// TelemetryCharacter is the player snapshot embedded in many events.
type TelemetryCharacter struct {
	Name      string  `json:"name"      yaml:"name"`
	TeamID    int     `json:"teamId"    yaml:"team_id"`
	Health    float64 `json:"health"    yaml:"health"`
	Ranking   int     `json:"ranking"   yaml:"ranking"`
	AccountID string  `json:"accountId" yaml:"account_id"`
}

// PlayerKillEvent is the body of LogPlayerKillV2.
type PlayerKillEvent struct {
	AttackID         int                 `json:"attackId"     yaml:"attack_id"`
	Victim           *TelemetryCharacter `json:"victim"       yaml:"victim"`
	Killer           *TelemetryCharacter `json:"killer"       yaml:"killer"`
	Finisher         *TelemetryCharacter `json:"finisher"     yaml:"finisher"`
	IsSuicide        bool                `json:"isSuicide"    yaml:"is_suicide"`
	VictimWeapon     string              `json:"victimWeapon" yaml:"victim_weapon"`
	KillerDamageInfo struct {
		DamageCauserName string  `json:"damageCauserName" yaml:"damage_causer_name"`
		Distance         float64 `json:"distance"         yaml:"distance"`
	} `json:"killerDamageInfo" yaml:"killer_damage_info"`
}

// Kills decodes every LogPlayerKillV2 event.
func (t *Telemetry) Kills() ([]PlayerKillEvent, error) {
	events := t.Filter(EventPlayerKill)
	kills := make([]PlayerKillEvent, 0, len(events))

	for _, event := range events {
		var kill PlayerKillEvent

		err := event.Decode(&kill)
		if err != nil {
			return nil, err
		}

		kills = append(kills, kill)
	}

	return kills, nil
}
