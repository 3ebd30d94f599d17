// Package catalog loads the four master configuration documents that describe
// every cartridge the engine knows about:
//
//	cartridge-master.yaml           providers and the cartridges they own
//	schema-master.yaml              cartridgeId -> provider, input format, description
//	schema-flow-mapping.yaml        cartridgeId -> outbound/inbound flow ids
//	transformation-flow-master.yaml flowId -> from/to formats
//
// The documents are read once into an immutable Snapshot. Reload re-reads all
// four and swaps the snapshot in one step, so readers never see a mix of old
// and new documents. A failed reload keeps the previous snapshot.
package catalog
