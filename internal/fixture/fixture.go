// Package fixture provides an in-memory configuration tree with a handful of
// cartridges, used by tests across the engine.
package fixture

import (
	"maps"

	"cartridge-engine/internal/resource"
)

// Roots used by the fixture tree.
const (
	ConfigRoot     = "config"
	CartridgesRoot = "cartridges"
)

// Cartridge ids present in the fixture.
const (
	Visa       = "VISA-SENDPAYOUT"
	Swift      = "SWIFT-MT103"
	NoTemplate = "ACME-NOTEMPLATE"
	NoFlow     = "ACME-NOFLOW"
)

// Base returns the documents of the four master configuration files.
func Base() map[string]string {
	return map[string]string{
		"config/cartridge-master.yaml": `
providers:
  visa:
    name: Visa
    cartridges: [VISA-SENDPAYOUT]
  swift:
    name: SWIFT
    cartridges: [SWIFT-MT103]
  acme:
    name: Acme
    cartridges: [ACME-NOTEMPLATE, ACME-NOFLOW]
`,
		"config/schema-master.yaml": `
cartridges:
  VISA-SENDPAYOUT:
    description: Visa Direct send payout
    provider: visa
    inputFormat: cjson
  SWIFT-MT103:
    description: SWIFT MT103 customer transfer
    provider: swift
    inputFormat: cjson
  ACME-NOTEMPLATE:
    provider: acme
    inputFormat: cjson
  ACME-NOFLOW:
    provider: acme
    inputFormat: cjson
`,
		"config/schema-flow-mapping.yaml": `
cartridgeFlows:
  VISA-SENDPAYOUT:
    outbound:
      flowId: CJSON_TO_VISA
    inbound:
      flowId: VISA_TO_CJSON
  SWIFT-MT103:
    outbound:
      flowId: CJSON_TO_MT103
  ACME-NOTEMPLATE:
    outbound:
      flowId: CJSON_TO_VISA
`,
		"config/transformation-flow-master.yaml": `
flows:
  CJSON_TO_VISA:
    from: cjson
    to: visa-json
  VISA_TO_CJSON:
    from: visa-json
    to: cjson
  CJSON_TO_MT103:
    from: cjson
    to: mt103-xml
`,
	}
}

// Templates returns the cartridge template documents.
func Templates() map[string]string {
	return map[string]string{
		"cartridges/visa/VISA-SENDPAYOUT/mapping.yaml": `
cartridgeId: VISA-SENDPAYOUT
output: json
validations:
  - path: $.paymentId
    required: true
  - path: $.amount
    required: true
    min: 0.01
  - path: $.currency
    required: true
    pattern: "[A-Z]{3}"
mappings:
  - source: $.paymentId
    target: transactionIdentifier
    required: true
  - source: $.amount
    target: amount
  - source: $.currency
    target: currencyCode
  - source: $.payee.name
    target: recipient.name
    defaultValue: UNKNOWN
  - source: $.riskLevel
    target: risk.level
  - source: $.channel
    target: channel
`,
		"cartridges/visa/VISA-SENDPAYOUT/enrich.yaml": `
cartridgeId: VISA-SENDPAYOUT
rules:
  - set:
      target: channel
      value: VISA_DIRECT
  - call:
      bean: paymentEnrichmentFunctions
      method: calculateRiskScore
`,
		"cartridges/visa/VISA-SENDPAYOUT/USD/mapping.yaml": `
cartridgeId: VISA-SENDPAYOUT
output:
  type: json
validations:
  - path: $.amount
    required: true
mappings:
  - source: $.paymentId
    target: id
  - source: $.amount
    target: usdAmount
`,
		"cartridges/swift/SWIFT-MT103/mapping.yaml": `
cartridgeId: SWIFT-MT103
output:
  type: xml
  root: mt103
validations:
  - path: $.items[].code
    required: true
mappings:
  - source: $.paymentId
    target: reference
    required: true
  - source: $.amount
    target: amount
`,
	}
}

// Docs returns the master configuration and every template document.
func Docs() map[string]string {
	docs := Base()
	maps.Copy(docs, Templates())

	return docs
}

// Memory returns a fresh counting loader over Docs.
func Memory() *resource.Memory {
	return resource.NewMemory(Docs())
}
