package catalog

import (
	"maps"
	"slices"
)

// Document file names, relative to the configuration root.
const (
	CartridgeMasterFile = "cartridge-master.yaml"
	SchemaMasterFile    = "schema-master.yaml"
	FlowMappingFile     = "schema-flow-mapping.yaml"
	FlowMasterFile      = "transformation-flow-master.yaml"
)

// Provider is an entry of the provider registry.
type Provider struct {
	Name       string   `yaml:"name"`
	Cartridges []string `yaml:"cartridges"`
}

// CartridgeSchema describes one cartridge in the schema registry.
type CartridgeSchema struct {
	ID          string `yaml:"-"`
	Description string `yaml:"description"`
	Provider    string `yaml:"provider"`
	InputFormat string `yaml:"inputFormat"`
}

// FlowDirection points at a flow definition.
type FlowDirection struct {
	FlowID string `yaml:"flowId"`
}

// CartridgeFlow holds the flow ids for both directions of a cartridge.
type CartridgeFlow struct {
	Outbound *FlowDirection `yaml:"outbound"`
	Inbound  *FlowDirection `yaml:"inbound"`
}

// FlowDefinition describes the formats a flow converts between.
type FlowDefinition struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type cartridgeMasterDoc struct {
	Providers map[string]Provider `yaml:"providers"`
}

type schemaMasterDoc struct {
	Cartridges map[string]CartridgeSchema `yaml:"cartridges"`
}

type flowMappingDoc struct {
	CartridgeFlows map[string]CartridgeFlow `yaml:"cartridgeFlows"`
}

type flowMasterDoc struct {
	Flows map[string]FlowDefinition `yaml:"flows"`
}

// Snapshot is an immutable view of the four master documents.
type Snapshot struct {
	providers  map[string]Provider
	cartridges map[string]CartridgeSchema
	flows      map[string]CartridgeFlow
	flowDefs   map[string]FlowDefinition
}

// NewSnapshot builds a snapshot from already-decoded documents.
// The maps are copied; later changes by the caller are not observed.
func NewSnapshot(
	providers map[string]Provider,
	cartridges map[string]CartridgeSchema,
	flows map[string]CartridgeFlow,
	flowDefs map[string]FlowDefinition,
) *Snapshot {
	s := &Snapshot{
		providers:  maps.Clone(providers),
		cartridges: make(map[string]CartridgeSchema, len(cartridges)),
		flows:      maps.Clone(flows),
		flowDefs:   maps.Clone(flowDefs),
	}

	for id, cs := range cartridges {
		cs.ID = id
		s.cartridges[id] = cs
	}

	return s
}

// Provider returns the provider registry entry.
func (s *Snapshot) Provider(name string) (Provider, bool) {
	p, ok := s.providers[name]
	return p, ok
}

// ProviderNames returns all provider keys in sorted order.
func (s *Snapshot) ProviderNames() []string {
	return slices.Sorted(maps.Keys(s.providers))
}

// Cartridge returns the schema registry entry for id.
func (s *Snapshot) Cartridge(id string) (CartridgeSchema, bool) {
	cs, ok := s.cartridges[id]
	return cs, ok
}

// CartridgeIDs returns all cartridge ids in sorted order.
func (s *Snapshot) CartridgeIDs() []string {
	return slices.Sorted(maps.Keys(s.cartridges))
}

// Flow returns the flow mapping for a cartridge.
func (s *Snapshot) Flow(cartridgeID string) (CartridgeFlow, bool) {
	f, ok := s.flows[cartridgeID]
	return f, ok
}

// FlowDefinition returns the formats of a flow.
func (s *Snapshot) FlowDefinition(flowID string) (FlowDefinition, bool) {
	f, ok := s.flowDefs[flowID]
	return f, ok
}

// Counts returns the number of entries per document, in file order.
func (s *Snapshot) Counts() (providers, cartridges, flows, flowDefs int) {
	return len(s.providers), len(s.cartridges), len(s.flows), len(s.flowDefs)
}
