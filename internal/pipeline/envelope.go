package pipeline

import (
	"cartridge-engine/internal/common"
	"cartridge-engine/internal/diagnostic"
)

// Envelope keys of an implicit batch.
const (
	keyHeader      = "header"
	keyPaymentData = "paymentData"
	keyTxInf       = "txInf"
	keyGrpHdr      = "grpHdr"
	keyBulk        = "bulk"
)

// split turns a request body into records. bulk is true for list bodies and
// for implicit batch envelopes. Malformed list elements become failed
// records so that their siblings still run.
func split(body any) (records []*Record, bulk bool, err error) {
	switch b := body.(type) {
	case []any:
		records = make([]*Record, len(b))
		for i, item := range b {
			records[i] = listRecord(i, item, "JSON object")
		}

		return records, true, nil
	case []map[string]any:
		records = make([]*Record, len(b))
		for i, item := range b {
			records[i] = listRecord(i, item, "JSON object")
		}

		return records, true, nil
	case map[string]any:
		entries, ok := envelopeEntries(b)
		if !ok {
			return []*Record{{Index: 0, Input: b}}, false, nil
		}

		return expand(b, entries), true, nil
	default:
		return nil, false, diagnostic.Functional(diagnostic.CodeRequestBodyType, diagnostic.StepValidation, "",
			"request body must be a JSON object or list but got: %s", describe(body))
	}
}

func listRecord(i int, item any, what string) *Record {
	m, ok := item.(map[string]any)
	if ok {
		return &Record{Index: i, Input: m}
	}

	return &Record{
		Index: i,
		Err: diagnostic.Functional(diagnostic.CodeGenericFunctional, diagnostic.StepValidation, "",
			"expected %s at index %d but got: %s", what, i, describe(item)),
	}
}

// envelopeEntries returns paymentData.txInf when body is a batch envelope.
func envelopeEntries(body map[string]any) ([]any, bool) {
	data, ok := body[keyPaymentData].(map[string]any)
	if !ok {
		return nil, false
	}

	entries, ok := data[keyTxInf].([]any)

	return entries, ok
}

// expand merges the envelope's shared blocks into every txInf entry. Entry
// fields win over shared ones.
func expand(body map[string]any, entries []any) []*Record {
	data, _ := body[keyPaymentData].(map[string]any)

	shared := make(map[string]any, 3)
	if h, ok := body[keyHeader].(map[string]any); ok {
		shared[keyHeader] = h
	}

	if g, ok := firstMap(data[keyGrpHdr]); ok {
		shared[keyGrpHdr] = g
	}

	if b, ok := firstMap(data[keyBulk]); ok {
		shared[keyBulk] = b
	}

	records := make([]*Record, len(entries))
	for i, item := range entries {
		rec := listRecord(i, item, "txInf JSON object")
		if rec.Failed() {
			records[i] = rec
			continue
		}

		merged := common.CopyMap(rec.Input)
		for k, v := range shared {
			if _, exists := merged[k]; !exists {
				merged[k] = common.DeepCopy(v)
			}
		}

		rec.Input = merged
		records[i] = rec
	}

	return records
}

// firstMap returns v's first element when v is a list starting with an object.
func firstMap(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}

	first, ok := common.First(list)
	if !ok {
		return nil, false
	}

	m, ok := first.(map[string]any)

	return m, ok
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return common.UnknownStr
	}
}
