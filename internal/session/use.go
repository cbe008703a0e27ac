package session

import (
	"strings"

	"github.com/HackShare/presto/internal/quoting"
)

// Target selects which part of the session a USE statement rewrites.
type Target int

const (
	// TargetCatalog replaces the catalog and clears the schema.
	TargetCatalog Target = iota
	// TargetSchema replaces only the schema.
	TargetSchema
	// TargetCatalogSchema replaces both from a qualified name.
	TargetCatalogSchema
)

// UseStatement is the parsed form of a catalog/schema switch.
type UseStatement struct {
	Target  Target
	Catalog string
	Schema  string
}

// ParseUse classifies statement text. Recognized forms, identifiers
// optionally double-quoted:
//
//	USE <catalog>.<schema>
//	USE CATALOG <name>
//	USE SCHEMA <name>
//	USE <schema>
//
// It returns false for anything else; such statements pass through to the
// backend untouched. Classification is purely syntactic and never requires
// a server round trip.
func ParseUse(text string) (UseStatement, bool) {
	fields := tokenize(text)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "use") {
		return UseStatement{}, false
	}

	switch {
	case len(fields) == 3 && strings.EqualFold(fields[1], "catalog"):
		name, ok := identifier(fields[2])
		if !ok {
			return UseStatement{}, false
		}
		return UseStatement{Target: TargetCatalog, Catalog: name}, true

	case len(fields) == 3 && strings.EqualFold(fields[1], "schema"):
		name, ok := identifier(fields[2])
		if !ok {
			return UseStatement{}, false
		}
		return UseStatement{Target: TargetSchema, Schema: name}, true

	case len(fields) == 2:
		parts := splitQualified(fields[1])
		switch len(parts) {
		case 1:
			name, ok := identifier(parts[0])
			if !ok {
				return UseStatement{}, false
			}
			return UseStatement{Target: TargetSchema, Schema: name}, true
		case 2:
			catalog, okC := identifier(parts[0])
			schema, okS := identifier(parts[1])
			if !okC || !okS {
				return UseStatement{}, false
			}
			return UseStatement{Target: TargetCatalogSchema, Catalog: catalog, Schema: schema}, true
		}
	}
	return UseStatement{}, false
}

// Apply produces the next session state for this switch.
func (u UseStatement) Apply(s State) State {
	switch u.Target {
	case TargetCatalog:
		return s.WithCatalog(u.Catalog)
	case TargetSchema:
		return s.WithSchema(u.Schema)
	default:
		return s.WithCatalogAndSchema(u.Catalog, u.Schema)
	}
}

// String renders the switch in canonical form.
func (u UseStatement) String() string {
	switch u.Target {
	case TargetCatalog:
		return "USE CATALOG " + quoting.QuoteIfNeeded(u.Catalog)
	case TargetSchema:
		return "USE SCHEMA " + quoting.QuoteIfNeeded(u.Schema)
	default:
		return "USE " + quoting.QuoteIfNeeded(u.Catalog) + "." + quoting.QuoteIfNeeded(u.Schema)
	}
}

// tokenize splits text on whitespace runs that are outside double quotes,
// so `"my catalog"` stays one token.
func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case !inQuote && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// splitQualified splits a possibly-qualified name on dots that are outside
// double quotes, so `"a.b".c` splits into `"a.b"` and `c`.
func splitQualified(s string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
			cur.WriteByte(s[i])
		case s[i] == '.' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// identifier validates one name component and strips quoting. Bare names
// must look like SQL identifiers; quoted names may contain anything.
func identifier(s string) (string, bool) {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		name := quoting.Unquote(s)
		return name, name != ""
	}
	if quoting.NeedsQuoting(s) {
		return "", false
	}
	return s, true
}
