package pubg

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrNoHostInURL     = errors.New("no host specified in URL")
)

// Query parameter names understood by the API.
const (
	ParamSort       = "sort"
	ParamPageLimit  = "page[limit]"
	ParamPageOffset = "page[offset]"
	ParamPageCursor = "page[cursor]"
)

// Page holds pagination parameters. Zero fields are left unset.
type Page struct {
	Limit  int
	Offset int
	Cursor string
}

// Endpoint is a request target that has not been sent yet: a base URL, an
// ordered list of path segments and a set of single-valued query parameters.
//
// Every With*/Append method returns a new Endpoint and leaves the receiver
// untouched, so an Endpoint may be shared by several Queries.
type Endpoint struct {
	base     url.URL
	segments []string
	params   map[string]string
}

// NewEndpoint creates an Endpoint rooted at baseURL with the given path
// segments appended to the base path.
func NewEndpoint(baseURL string, segments ...string) (*Endpoint, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoHostInURL, baseURL)
	}

	base := *parsed
	base.RawQuery = ""
	base.Fragment = ""
	base.Path = "/" + strings.Trim(base.Path, "/")
	base.RawPath = ""

	return &Endpoint{
		base:     base,
		segments: slices.Clone(segments),
		params:   make(map[string]string),
	}, nil
}

// ParseEndpoint turns an absolute URL, as found in upstream payloads, into an
// Endpoint. The URL path becomes the segment list and the query string the
// parameter set.
func ParseEndpoint(rawURL string) (*Endpoint, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoHostInURL, rawURL)
	}

	var segments []string

	for _, segment := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	params := make(map[string]string)
	for name, values := range parsed.Query() {
		if len(values) > 0 {
			params[name] = values[len(values)-1]
		}
	}

	return &Endpoint{
		base:     url.URL{Scheme: parsed.Scheme, User: parsed.User, Host: parsed.Host, Path: "/"},
		segments: segments,
		params:   params,
	}, nil
}

// Copy returns an independent clone.
func (e *Endpoint) Copy() *Endpoint {
	params := make(map[string]string, len(e.params))
	for name, value := range e.params {
		params[name] = value
	}

	return &Endpoint{
		base:     e.base,
		segments: slices.Clone(e.segments),
		params:   params,
	}
}

// AppendSegment returns a new Endpoint with value appended to the path.
func (e *Endpoint) AppendSegment(value string) *Endpoint {
	clone := e.Copy()
	clone.segments = append(clone.segments, value)

	return clone
}

// WithParam returns a new Endpoint with the query parameter name set to value,
// replacing any earlier value.
func (e *Endpoint) WithParam(name, value string) *Endpoint {
	clone := e.Copy()
	clone.params[name] = value

	return clone
}

// WithFilter sets filter[name] to the comma-joined values.
func (e *Endpoint) WithFilter(name string, values ...string) *Endpoint {
	return e.WithParam(FilterParam(name), strings.Join(values, ","))
}

// WithSort sets the sort key. A leading "-" requests descending order.
func (e *Endpoint) WithSort(key string) *Endpoint {
	return e.WithParam(ParamSort, key)
}

// WithPage sets the non-zero fields of page.
func (e *Endpoint) WithPage(page Page) *Endpoint {
	clone := e.Copy()

	if page.Limit > 0 {
		clone.params[ParamPageLimit] = strconv.Itoa(page.Limit)
	}

	if page.Offset > 0 {
		clone.params[ParamPageOffset] = strconv.Itoa(page.Offset)
	}

	if page.Cursor != "" {
		clone.params[ParamPageCursor] = page.Cursor
	}

	return clone
}

// push appends value in place and returns a function restoring the previous
// segment list. It is only used for the transient id lookup in Query.Get.
func (e *Endpoint) push(value string) func() {
	saved := e.segments
	e.segments = append(slices.Clip(saved), value)

	return func() {
		e.segments = saved
	}
}

// Segments returns a copy of the path segments.
func (e *Endpoint) Segments() []string {
	return slices.Clone(e.segments)
}

// Param returns the value of a query parameter, or "" when unset.
func (e *Endpoint) Param(name string) string {
	return e.params[name]
}

// Params returns the query parameters as url.Values.
func (e *Endpoint) Params() url.Values {
	values := make(url.Values, len(e.params))
	for name, value := range e.params {
		values.Set(name, value)
	}

	return values
}

// Host returns the host name without port.
func (e *Endpoint) Host() string {
	return e.base.Hostname()
}

// URL returns the fully serialized URL.
func (e *Endpoint) URL() *url.URL {
	target := e.base

	escaped := make([]string, 0, len(e.segments))
	for _, segment := range e.segments {
		escaped = append(escaped, url.PathEscape(segment))
	}

	basePath := strings.TrimSuffix(e.base.Path, "/")
	if len(escaped) > 0 {
		target.Path = basePath + "/" + strings.Join(e.segments, "/")
		target.RawPath = basePath + "/" + strings.Join(escaped, "/")
	} else {
		target.Path = basePath + "/"
	}

	target.RawQuery = encodeParams(e.params)

	return &target
}

// String implements fmt.Stringer.
func (e *Endpoint) String() string {
	return e.URL().String()
}

// encodeParams encodes params sorted by name, keeping the brackets of
// filter[...] and page[...] readable.
func encodeParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	slices.Sort(names)

	var builder strings.Builder

	for i, name := range names {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(escapeParamName(name))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(params[name]))
	}

	return builder.String()
}

func escapeParamName(name string) string {
	escaped := url.QueryEscape(name)
	escaped = strings.ReplaceAll(escaped, "%5B", "[")

	return strings.ReplaceAll(escaped, "%5D", "]")
}
