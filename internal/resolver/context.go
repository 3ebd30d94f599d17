package resolver

import (
	"path"
	"strings"
)

// Directions.
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// Template document names.
const (
	MappingFile = "mapping.yaml"
	EnrichFile  = "enrich.yaml"
	RouteFile   = "route.yaml"
	SchemaFile  = "schema.cue"
)

// Context is the fully resolved description of one cartridge request.
// It is a plain value and compares with ==.
type Context struct {
	Provider    string
	CartridgeID string
	Currency    string
	Direction   string
	FlowID      string
	InputFormat string
	FromFormat  string
	ToFormat    string
	MappingPath string
	EnrichPath  string
	RoutePath   string
	SchemaPath  string
}

// TemplateDir returns the directory the document paths were resolved under.
func (c Context) TemplateDir() string {
	return path.Dir(c.MappingPath)
}

// IsInbound reports whether direction selects the inbound flow.
func IsInbound(direction string) bool {
	return strings.EqualFold(direction, DirectionInbound)
}

// NormalizeDirection returns DirectionOutbound for an empty direction.
func NormalizeDirection(direction string) string {
	if strings.TrimSpace(direction) == "" {
		return DirectionOutbound
	}

	return direction
}

type contextKey struct {
	cartridgeID string
	currency    string
	direction   string
}

func newContext(provider, cartridgeID, currency, direction, flowID, inputFormat, from, to, dir string) Context {
	return Context{
		Provider:    provider,
		CartridgeID: cartridgeID,
		Currency:    currency,
		Direction:   direction,
		FlowID:      flowID,
		InputFormat: inputFormat,
		FromFormat:  from,
		ToFormat:    to,
		MappingPath: path.Join(dir, MappingFile),
		EnrichPath:  path.Join(dir, EnrichFile),
		RoutePath:   path.Join(dir, RouteFile),
		SchemaPath:  path.Join(dir, SchemaFile),
	}
}
