package pipeline

import (
	"cartridge-engine/internal/common"
)

// requestID picks the id used to correlate audit entries:
// header.correlationId, then paymentId, then the first txInf entry's
// paymentId. ok is false when the body carries none of them, which is
// always the case for list bodies.
func requestID(body any) (id string, ok bool) {
	root, isMap := body.(map[string]any)
	if !isMap {
		return "", false
	}

	if header, found := root[keyHeader].(map[string]any); found {
		if id, ok = idValue(header["correlationId"]); ok {
			return id, true
		}
	}

	if id, ok = idValue(root["paymentId"]); ok {
		return id, true
	}

	entries, found := envelopeEntries(root)
	if !found {
		return "", false
	}

	first, found := common.First(entries)
	if !found {
		return "", false
	}

	if entry, isEntry := first.(map[string]any); isEntry {
		return idValue(entry["paymentId"])
	}

	return "", false
}

func idValue(v any) (string, bool) {
	if common.IsMissing(v) {
		return "", false
	}

	return common.Stringify(v), true
}
