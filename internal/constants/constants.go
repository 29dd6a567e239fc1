package constants

import "time"

// API endpoints and media types.
const (
	// APIBaseURL is the root of the PUBG developer API.
	APIBaseURL = "https://api.pubg.com/"

	// MediaTypeJSONAPI is the Accept header value required by the API.
	MediaTypeJSONAPI = "application/vnd.api+json"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "pubg-go"
)

// TelemetryHosts lists the CDN hosts telemetry documents may be fetched from.
var TelemetryHosts = []string{
	"telemetry-cdn.playbattlegrounds.com",
}

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout bounds every request made by the gateways.
	DefaultHTTPTimeout = 30 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent query fetches.
	DefaultConcurrencyLimit = 3

	// MaxConcurrencyLimit caps user supplied concurrency.
	MaxConcurrencyLimit = 10
)

// Pagination limits.
const (
	// DefaultPageLimit is the page[limit] used by the CLI when none is given.
	DefaultPageLimit = 10

	// MaxPlayerFilterValues is the API's cap on playerNames/playerIds values.
	MaxPlayerFilterValues = 10
)

// DefaultTelemetryTTL is how long cached telemetry documents stay valid.
const DefaultTelemetryTTL = 24 * time.Hour

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"
)

// Format constants.
const (
	// FormatAuto picks table on a terminal and JSON otherwise.
	FormatAuto = "auto"

	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)
