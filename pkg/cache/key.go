package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key identifies one cacheable unit of work.
// Two requests with the same endpoint and query parameters share a Key.
// Key is comparable and can be used directly as a map key.
type Key struct {
	// Endpoint is the API path without leading or trailing slashes (e.g. "kills")
	Endpoint string

	// Query is the canonical encoding of the query parameters (sorted by name)
	Query string
}

// NewKey builds a deterministic Key from an endpoint and its query parameters.
// Parameter names are sorted and each parameter's values keep their order,
// so the same logical request always produces the same Key.
func NewKey(endpoint string, params url.Values) Key {
	return Key{
		Endpoint: strings.Trim(endpoint, "/"),
		Query:    canonicalQuery(params),
	}
}

// ParseKey builds a Key from an endpoint and a raw "k=v&k2=v2" query string.
func ParseKey(endpoint, rawQuery string) (Key, error) {
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Key{}, err
	}
	return NewKey(endpoint, params), nil
}

// Values decodes the canonical query back into url.Values.
func (k Key) Values() url.Values {
	params, err := url.ParseQuery(k.Query)
	if err != nil {
		// Query is produced by canonicalQuery and always parses.
		return url.Values{}
	}
	return params
}

// String renders the key for logs and shard hashing.
// Format: bfj:endpoint:param1=val1:param2=val2
//
// Example:
//
//	bfj:kills:uuid=86dc8a9f-238e-4502-8021-1d488095fd8a
func (k Key) String() string {
	parts := []string{"bfj"}
	if k.Endpoint != "" {
		parts = append(parts, k.Endpoint)
	}
	if k.Query != "" {
		parts = append(parts, strings.ReplaceAll(k.Query, "&", ":"))
	}
	return strings.Join(parts, ":")
}

// canonicalQuery encodes params with names in sorted order.
// url.Values.Encode already sorts by name, but empty names and nil slices
// are dropped here so equivalent inputs collapse to the same string.
func canonicalQuery(params url.Values) string {
	if len(params) == 0 {
		return ""
	}

	names := make([]string, 0, len(params))
	for name, values := range params {
		if name == "" || len(values) == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		for _, value := range params[name] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}
