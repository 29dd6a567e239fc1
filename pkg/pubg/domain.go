package pubg

import (
	"strings"
	"time"
)

// Resource types served by the API.
const (
	TypePlayer       = "player"
	TypeMatch        = "match"
	TypeRoster       = "roster"
	TypeParticipant  = "participant"
	TypeAsset        = "asset"
	TypeSeason       = "season"
	TypePlayerSeason = "playerSeason"
	TypeSample       = "sample"
	TypeStatus       = "status"
	TypeTournament   = "tournament"
	TypeLeaderboard  = "leaderboard"
)

// Resource holds the identity shared by every domain object.
type Resource struct {
	Type  string `json:"type"            yaml:"type"`
	ID    string `json:"id"              yaml:"id"`
	Links Links  `json:"links,omitempty" yaml:"links,omitempty"`
}

// ObjectType implements Object.
func (r Resource) ObjectType() string { return r.Type }

// ObjectID implements Object.
func (r Resource) ObjectID() string { return r.ID }

func resourceOf(res *ResourceObject) Resource {
	return Resource{Type: res.Type, ID: res.ID, Links: res.Links}
}

// Player is an account on one shard.
type Player struct {
	Resource

	Name         string   `json:"name"          yaml:"name"`
	ShardID      string   `json:"shardId"       yaml:"shard_id"`
	PatchVersion string   `json:"patchVersion"  yaml:"patch_version"`
	TitleID      string   `json:"titleId"       yaml:"title_id"`
	BanType      string   `json:"banType"       yaml:"ban_type"`
	ClanID       string   `json:"clanId"        yaml:"clan_id"`
	MatchIDs     []string `json:"matchIds"      yaml:"match_ids"`
}

func newPlayer(_ *Document, res *ResourceObject) (Object, error) {
	player := &Player{Resource: resourceOf(res)}

	err := res.DecodeAttributes(player)
	if err != nil {
		return nil, err
	}

	player.MatchIDs = res.RelatedIDs("matches")

	return player, nil
}

// Match is a finished game with its rosters, participants and assets.
type Match struct {
	Resource

	CreatedAt     time.Time `json:"createdAt"     yaml:"created_at"`
	Duration      int       `json:"duration"      yaml:"duration"`
	GameMode      string    `json:"gameMode"      yaml:"game_mode"`
	MapName       string    `json:"mapName"       yaml:"map_name"`
	MatchType     string    `json:"matchType"     yaml:"match_type"`
	IsCustomMatch bool      `json:"isCustomMatch" yaml:"is_custom_match"`
	SeasonState   string    `json:"seasonState"   yaml:"season_state"`
	ShardID       string    `json:"shardId"       yaml:"shard_id"`
	TitleID       string    `json:"titleId"       yaml:"title_id"`

	Rosters []*Roster `json:"rosters" yaml:"rosters"`
	Assets  []*Asset  `json:"assets"  yaml:"assets"`
}

// Roster is a team within a match.
type Roster struct {
	Resource

	Won          bool           `json:"won"          yaml:"won"`
	Rank         int            `json:"rank"         yaml:"rank"`
	TeamID       int            `json:"teamId"       yaml:"team_id"`
	Participants []*Participant `json:"participants" yaml:"participants"`
}

// Participant is one player's result in a match.
type Participant struct {
	Resource

	Stats ParticipantStats `json:"stats" yaml:"stats"`
}

// ParticipantStats are the per-match statistics of a participant.
type ParticipantStats struct {
	Name          string  `json:"name"          yaml:"name"`
	PlayerID      string  `json:"playerId"      yaml:"player_id"`
	DBNOs         int     `json:"DBNOs"         yaml:"dbnos"`
	Assists       int     `json:"assists"       yaml:"assists"`
	Boosts        int     `json:"boosts"        yaml:"boosts"`
	DamageDealt   float64 `json:"damageDealt"   yaml:"damage_dealt"`
	DeathType     string  `json:"deathType"     yaml:"death_type"`
	HeadshotKills int     `json:"headshotKills" yaml:"headshot_kills"`
	Heals         int     `json:"heals"         yaml:"heals"`
	KillPlace     int     `json:"killPlace"     yaml:"kill_place"`
	Kills         int     `json:"kills"         yaml:"kills"`
	LongestKill   float64 `json:"longestKill"   yaml:"longest_kill"`
	Revives       int     `json:"revives"       yaml:"revives"`
	RideDistance  float64 `json:"rideDistance"  yaml:"ride_distance"`
	TimeSurvived  float64 `json:"timeSurvived"  yaml:"time_survived"`
	WalkDistance  float64 `json:"walkDistance"  yaml:"walk_distance"`
	WinPlace      int     `json:"winPlace"      yaml:"win_place"`
}

// Asset is a downloadable artifact of a match, such as its telemetry.
type Asset struct {
	Resource

	Name        string    `json:"name"        yaml:"name"`
	URL         string    `json:"URL"         yaml:"url"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt"   yaml:"created_at"`
}

// TelemetryURL returns the URL of the match telemetry asset.
func (m *Match) TelemetryURL() (string, error) {
	for _, asset := range m.Assets {
		if strings.EqualFold(asset.Name, "telemetry") && asset.URL != "" {
			return asset.URL, nil
		}
	}

	for _, asset := range m.Assets {
		if asset.URL != "" {
			return asset.URL, nil
		}
	}

	return "", ErrNoTelemetryAsset
}

// Participants returns every participant of the match, roster by roster.
func (m *Match) Participants() []*Participant {
	var participants []*Participant

	for _, roster := range m.Rosters {
		participants = append(participants, roster.Participants...)
	}

	return participants
}

// Winners returns the rosters that won the match.
func (m *Match) Winners() []*Roster {
	var winners []*Roster

	for _, roster := range m.Rosters {
		if roster.Won {
			winners = append(winners, roster)
		}
	}

	return winners
}

type rosterAttributes struct {
	Won   string `json:"won"`
	Stats struct {
		Rank   int `json:"rank"`
		TeamID int `json:"teamId"`
	} `json:"stats"`
}

type participantAttributes struct {
	Stats ParticipantStats `json:"stats"`
}

func newMatch(doc *Document, res *ResourceObject) (Object, error) {
	match := &Match{Resource: resourceOf(res)}

	err := res.DecodeAttributes(match)
	if err != nil {
		return nil, err
	}

	included, err := includedIndex(doc)
	if err != nil {
		return nil, err
	}

	for _, rosterID := range res.RelatedIDs("rosters") {
		obj, ok := included[Identifier{Type: TypeRoster, ID: rosterID}]
		if !ok {
			continue
		}

		roster, err := buildRoster(obj, included)
		if err != nil {
			return nil, err
		}

		match.Rosters = append(match.Rosters, roster)
	}

	for _, assetID := range res.RelatedIDs("assets") {
		obj, ok := included[Identifier{Type: TypeAsset, ID: assetID}]
		if !ok {
			continue
		}

		asset := &Asset{Resource: resourceOf(obj)}

		err := obj.DecodeAttributes(asset)
		if err != nil {
			return nil, err
		}

		match.Assets = append(match.Assets, asset)
	}

	return match, nil
}

func buildRoster(obj *ResourceObject, included map[Identifier]*ResourceObject) (*Roster, error) {
	var attrs rosterAttributes

	err := obj.DecodeAttributes(&attrs)
	if err != nil {
		return nil, err
	}

	roster := &Roster{
		Resource: resourceOf(obj),
		Won:      attrs.Won == "true",
		Rank:     attrs.Stats.Rank,
		TeamID:   attrs.Stats.TeamID,
	}

	for _, participantID := range obj.RelatedIDs("participants") {
		participantObj, ok := included[Identifier{Type: TypeParticipant, ID: participantID}]
		if !ok {
			continue
		}

		var pattrs participantAttributes

		err := participantObj.DecodeAttributes(&pattrs)
		if err != nil {
			return nil, err
		}

		roster.Participants = append(roster.Participants, &Participant{
			Resource: resourceOf(participantObj),
			Stats:    pattrs.Stats,
		})
	}

	return roster, nil
}

// Season is a ranked season.
type Season struct {
	Resource

	IsCurrentSeason bool `json:"isCurrentSeason" yaml:"is_current_season"`
	IsOffseason     bool `json:"isOffseason"     yaml:"is_offseason"`
}

func newSeason(_ *Document, res *ResourceObject) (Object, error) {
	season := &Season{Resource: resourceOf(res)}

	err := res.DecodeAttributes(season)
	if err != nil {
		return nil, err
	}

	return season, nil
}

// GameModeStats are aggregated statistics for one game mode in a season.
type GameModeStats struct {
	Assists          int     `json:"assists"         yaml:"assists"`
	Boosts           int     `json:"boosts"          yaml:"boosts"`
	DBNOs            int     `json:"dBNOs"           yaml:"dbnos"`
	DamageDealt      float64 `json:"damageDealt"     yaml:"damage_dealt"`
	HeadshotKills    int     `json:"headshotKills"   yaml:"headshot_kills"`
	Kills            int     `json:"kills"           yaml:"kills"`
	Losses           int     `json:"losses"          yaml:"losses"`
	RoundsPlayed     int     `json:"roundsPlayed"    yaml:"rounds_played"`
	Top10s           int     `json:"top10s"          yaml:"top10s"`
	Wins             int     `json:"wins"            yaml:"wins"`
	LongestKill      float64 `json:"longestKill"     yaml:"longest_kill"`
	TimeSurvived     float64 `json:"timeSurvived"    yaml:"time_survived"`
	MostSurvivalTime float64 `json:"mostSurvivalTime" yaml:"most_survival_time"`
}

// PlayerSeason holds a player's statistics for one season.
type PlayerSeason struct {
	Resource

	PlayerID      string                   `json:"playerId"      yaml:"player_id"`
	SeasonID      string                   `json:"seasonId"      yaml:"season_id"`
	GameModeStats map[string]GameModeStats `json:"gameModeStats" yaml:"game_mode_stats"`
}

func newPlayerSeason(_ *Document, res *ResourceObject) (Object, error) {
	stats := &PlayerSeason{Resource: resourceOf(res)}

	err := res.DecodeAttributes(stats)
	if err != nil {
		return nil, err
	}

	if ids := res.RelatedIDs("player"); len(ids) > 0 {
		stats.PlayerID = ids[0]
	}

	if ids := res.RelatedIDs("season"); len(ids) > 0 {
		stats.SeasonID = ids[0]
	}

	return stats, nil
}

// Sample is a random set of recent match ids.
type Sample struct {
	Resource

	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	ShardID   string    `json:"shardId"   yaml:"shard_id"`
	TitleID   string    `json:"titleId"   yaml:"title_id"`
	MatchIDs  []string  `json:"matchIds"  yaml:"match_ids"`
}

func newSample(_ *Document, res *ResourceObject) (Object, error) {
	sample := &Sample{Resource: resourceOf(res)}

	err := res.DecodeAttributes(sample)
	if err != nil {
		return nil, err
	}

	sample.MatchIDs = res.RelatedIDs("matches")

	return sample, nil
}

// Status reports the API version.
type Status struct {
	Resource

	ReleasedAt time.Time `json:"releasedAt" yaml:"released_at"`
	Version    string    `json:"version"    yaml:"version"`
}

func newStatus(_ *Document, res *ResourceObject) (Object, error) {
	status := &Status{Resource: resourceOf(res)}

	err := res.DecodeAttributes(status)
	if err != nil {
		return nil, err
	}

	return status, nil
}

// Tournament is an esports tournament and, when fetched singly, its matches.
type Tournament struct {
	Resource

	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	MatchIDs  []string  `json:"matchIds"  yaml:"match_ids"`
}

func newTournament(_ *Document, res *ResourceObject) (Object, error) {
	tournament := &Tournament{Resource: resourceOf(res)}

	err := res.DecodeAttributes(tournament)
	if err != nil {
		return nil, err
	}

	tournament.MatchIDs = res.RelatedIDs("matches")

	return tournament, nil
}

// Leaderboard ranks the top players of a game mode in a season.
type Leaderboard struct {
	Resource

	ShardID  string              `json:"shardId"  yaml:"shard_id"`
	GameMode string              `json:"gameMode" yaml:"game_mode"`
	SeasonID string              `json:"seasonId" yaml:"season_id"`
	Players  []LeaderboardPlayer `json:"players"  yaml:"players"`
}

// LeaderboardPlayer is one ranked entry of a leaderboard.
type LeaderboardPlayer struct {
	ID    string `json:"id"   yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Rank  int    `json:"rank" yaml:"rank"`
	Stats struct {
		RankPoints    float64 `json:"rankPoints"    yaml:"rank_points"`
		Wins          int     `json:"wins"          yaml:"wins"`
		Games         int     `json:"games"         yaml:"games"`
		Kills         int     `json:"kills"         yaml:"kills"`
		AverageDamage float64 `json:"averageDamage" yaml:"average_damage"`
	} `json:"stats" yaml:"stats"`
}

func newLeaderboard(doc *Document, res *ResourceObject) (Object, error) {
	board := &Leaderboard{Resource: resourceOf(res)}

	err := res.DecodeAttributes(board)
	if err != nil {
		return nil, err
	}

	included, err := includedIndex(doc)
	if err != nil {
		return nil, err
	}

	for _, playerID := range res.RelatedIDs("players") {
		obj, ok := included[Identifier{Type: TypePlayer, ID: playerID}]
		if !ok {
			continue
		}

		entry := LeaderboardPlayer{ID: obj.ID}

		err := obj.DecodeAttributes(&entry)
		if err != nil {
			return nil, err
		}

		board.Players = append(board.Players, entry)
	}

	return board, nil
}
