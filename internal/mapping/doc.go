// Package mapping provides the mapping document schema, its loader, the
// compiler that turns a document into an executable Plan, and the Engine that
// validates an input and remaps it into a new output structure.
//
// # Document Overview
//
//	cartridgeId: VISA-SENDPAYOUT
//	output:
//	  type: xml          # json (default) or xml; "output: json" also works
//	  root: payout       # xml root element, defaults to "message"
//	validations:
//	  - path: $.amount
//	    required: true
//	    min: 0.01
//	  - path: $.currency
//	    pattern: "[A-Z]{3}"
//	  - path: $.items[].code      # applies to every element of $.items
//	    required: true
//	  - path: $.payee.bic
//	    whenPath: $.paymentType
//	    whenEquals: WIRE
//	    minLength: 8
//	mappings:
//	  - source: $.paymentId
//	    target: transactionIdentifier
//	    required: true
//	  - source: $.payee.name
//	    target: recipient.name
//	    defaultValue: UNKNOWN
//
// # Validation
//
// Rules run in declaration order and stop at the first failure. A rule may be
// guarded by whenPath combined with whenEquals or whenExists; when both are
// set, either one holding applies the rule. whenExists: false holds when the
// value is missing or blank. Checks other
// than required only apply when the value is present. Patterns must match the
// whole stringified value.
//
// # Mapping
//
// Each mapping reads source and writes the value at target, creating nested
// objects as needed. A missing or blank source falls back to defaultValue,
// fails when the rule is required, and is skipped otherwise. The input is
// never modified.
//
// # Plans
//
// A document is compiled once into a Plan. Plans are cached by a fingerprint
// of the document content, so reloading an identical document reuses the
// existing plan.
package mapping
