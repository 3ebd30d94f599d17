// Package enrich applies ordered, conditional enrichment rules to a record
// before it is mapped.
//
// An enrichment document looks like:
//
//	cartridgeId: VISA-SENDPAYOUT
//	rules:
//	  - set:
//	      target: channel
//	      value: MOBILE
//	  - when:
//	      path: $.amount
//	      equals: "50"
//	    set:
//	      target: requestId
//	      value: ${uuid}
//	  - copy:
//	      source: $.payer.name
//	      target: debtor.name
//	  - call:
//	      bean: paymentEnrichmentFunctions
//	      method: calculateRiskScore
//
// Each rule carries exactly one action. Guards are evaluated against the
// output built so far, so earlier rules can enable later ones. A call invokes
// a function from the Registry; a map result without a target is merged into
// the output, any other result needs a target.
//
// The input map is never modified: rules run on a deep copy.
package enrich
