// Package resolver turns a (cartridgeId, currency, direction) triple into a
// Context: the provider, the flow formats and the concrete document paths of
// the template directory chosen for the request.
//
// A currency-specific template directory (<base>/<currency>) is preferred
// when it holds a mapping document; otherwise the base directory is used.
//
// Three caches back the resolver: base path per cartridge (built eagerly from
// the catalog), template existence per directory (negative results included)
// and the resolved context per triple. All are populate-once-per-key; a
// concurrent miss may compute the same entry twice, which is harmless since
// resolution only reads immutable configuration.
package resolver
