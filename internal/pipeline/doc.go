// Package pipeline runs requests through the transformation stages.
//
// A request is checked, split into records, resolved to a cartridge
// template and then every record goes through:
//
//   - schema validation against the template's optional schema.cue,
//   - enrichment with the template's optional enrich.yaml,
//   - transformation with the template's mapping.yaml, whose validations
//     run first against the enriched record.
//
// A single object fails fast and the first error aborts the request. A list
// body, or an object carrying a paymentData.txInf list, is a bulk request:
// each record is processed on its own and every record yields exactly one
// result, ordered by index. Records never see each other's state.
//
// The Service owns every cache used on the way (resolved contexts, mapping
// and enrichment documents, compiled plans and schemas) and can drop or
// rebuild them at runtime.
package pipeline
