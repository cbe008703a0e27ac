// Package session holds the client-side connection state: the active
// catalog and schema, the debug flag, and any extra connection parameters.
// State values are immutable; every change produces a new value, so an
// executor bound to an old state can never observe a half-applied switch.
package session

import "github.com/HackShare/presto/internal/quoting"

// State is an immutable snapshot of the session. An empty Catalog or Schema
// means unset. Properties carries connection parameters (server, user,
// engine, dsn, source) and is copied on every change, never shared.
type State struct {
	Catalog    string
	Schema     string
	Debug      bool
	Properties map[string]string
}

// New creates the initial session state. The properties map is copied.
func New(catalog, schema string, debug bool, properties map[string]string) State {
	s := State{Catalog: catalog, Schema: schema, Debug: debug}
	s.Properties = copyProperties(properties)
	return s
}

// Property returns the named connection parameter, or "" when unset.
func (s State) Property(key string) string {
	return s.Properties[key]
}

// WithCatalog returns a copy with the catalog replaced and the schema
// cleared. A schema name is only meaningful inside the catalog that defines
// it, so retaining it would leave the session pointing at a schema that may
// not exist.
func (s State) WithCatalog(catalog string) State {
	next := s.clone()
	next.Catalog = catalog
	next.Schema = ""
	return next
}

// WithSchema returns a copy with only the schema replaced.
func (s State) WithSchema(schema string) State {
	next := s.clone()
	next.Schema = schema
	return next
}

// WithCatalogAndSchema returns a copy with both replaced.
func (s State) WithCatalogAndSchema(catalog, schema string) State {
	next := s.clone()
	next.Catalog = catalog
	next.Schema = schema
	return next
}

func (s State) clone() State {
	next := s
	next.Properties = copyProperties(s.Properties)
	return next
}

func copyProperties(properties map[string]string) map[string]string {
	out := make(map[string]string, len(properties))
	for k, v := range properties {
		out[k] = v
	}
	return out
}

// String renders the active catalog/schema pair for transcripts.
func (s State) String() string {
	switch {
	case s.Catalog == "" && s.Schema == "":
		return "(no catalog)"
	case s.Schema == "":
		return quoting.QuoteIfNeeded(s.Catalog)
	case s.Catalog == "":
		return quoting.QuoteIfNeeded(s.Schema)
	}
	return quoting.QuoteIfNeeded(s.Catalog) + "." + quoting.QuoteIfNeeded(s.Schema)
}
