package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIKey          = errors.New("no API key configured, use --api-key or PUBG_API_KEY")
	ErrInvalidShard      = errors.New("invalid shard")
	ErrInvalidOutput     = errors.New("invalid output format")
	ErrInvalidConcurrent = errors.New("concurrency must be between 1 and 10")
)

// Command argument errors.
var (
	ErrPlayerFilterRequired = errors.New("one of --names or --ids is required")
	ErrTooManyPlayers       = errors.New("at most 10 player names or ids may be given")
)
