package diagnostic

// Code is a stable machine-readable error identifier.
type Code string

// Generic codes.
const (
	CodeGenericFunctional Code = "generic.functional"
	CodeGenericTechnical  Code = "generic.technical"
)

// Mapping document codes.
const (
	CodeMappingNotFound          Code = "mapping.notFound"
	CodeMappingEmpty             Code = "mapping.empty"
	CodeMappingReadFailed        Code = "mapping.readFailed"
	CodeMappingDefinitionMissing Code = "mapping.definitionMissing"
	CodeMappingSourceMissing     Code = "mapping.sourceMissing"
)

// Request codes.
const (
	CodeRequestBodyType           Code = "request.bodyType"
	CodeRequestCartridgeIDMissing Code = "request.cartridgeIdMissing"
)

// Enrichment codes.
const (
	CodeEnrichRuleInvalid Code = "enrich.ruleInvalid"
	CodeEnrichCallMissing Code = "enrich.callMissing"
	CodeEnrichCallNotMap  Code = "enrich.callNotMap"
	CodeEnrichCallFailed  Code = "enrich.callFailed"
	CodeEnrichReadFailed  Code = "enrich.readFailed"
)

// Validation codes.
const (
	CodeValidationRequired  Code = "validation.required"
	CodeValidationEquals    Code = "validation.equals"
	CodeValidationMinLength Code = "validation.minLength"
	CodeValidationMaxLength Code = "validation.maxLength"
	CodeValidationPattern   Code = "validation.pattern"
	CodeValidationNumber    Code = "validation.number"
	CodeValidationMin       Code = "validation.min"
	CodeValidationMax       Code = "validation.max"
	CodeValidationSchema    Code = "validation.schema"
)

// Configuration codes.
const (
	CodeConfigNotFound   Code = "config.notFound"
	CodeConfigEmpty      Code = "config.empty"
	CodeConfigReadFailed Code = "config.readFailed"
)

// Cartridge resolution codes.
const (
	CodeCartridgeNotFound         Code = "cartridge.notFound"
	CodeCartridgeFlowNotFound     Code = "cartridge.flowNotFound"
	CodeCartridgeTemplateNotFound Code = "cartridge.templateNotFound"
)

// Output codes.
const (
	CodeOutputSerializeFailed Code = "output.serializeFailed"
)

// registry lists every code the engine may emit.
var registry = map[Code]struct{}{
	CodeGenericFunctional:         {},
	CodeGenericTechnical:          {},
	CodeMappingNotFound:           {},
	CodeMappingEmpty:              {},
	CodeMappingReadFailed:         {},
	CodeMappingDefinitionMissing:  {},
	CodeMappingSourceMissing:      {},
	CodeRequestBodyType:           {},
	CodeRequestCartridgeIDMissing: {},
	CodeEnrichRuleInvalid:         {},
	CodeEnrichCallMissing:         {},
	CodeEnrichCallNotMap:          {},
	CodeEnrichCallFailed:          {},
	CodeEnrichReadFailed:          {},
	CodeValidationRequired:        {},
	CodeValidationEquals:          {},
	CodeValidationMinLength:       {},
	CodeValidationMaxLength:       {},
	CodeValidationPattern:         {},
	CodeValidationNumber:          {},
	CodeValidationMin:             {},
	CodeValidationMax:             {},
	CodeValidationSchema:          {},
	CodeConfigNotFound:            {},
	CodeConfigEmpty:               {},
	CodeConfigReadFailed:          {},
	CodeCartridgeNotFound:         {},
	CodeCartridgeFlowNotFound:     {},
	CodeCartridgeTemplateNotFound: {},
	CodeOutputSerializeFailed:     {},
}

// IsRegistered returns true if the code belongs to the fixed registry.
func (c Code) IsRegistered() bool {
	_, ok := registry[c]
	return ok
}
