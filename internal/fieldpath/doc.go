// Package fieldpath reads and writes nested JSON-like structures
// (map[string]any and []any) with two small path dialects.
//
// # Read paths
//
// Read paths start with "$" and address map keys or list indices:
//
//	$              the whole root
//	$.msgId        root["msgId"]
//	$.payee.bic    root["payee"]["bic"]
//	$.items.0.code root["items"][0]["code"]
//
// Segments that do not resolve (missing key, non-numeric segment against a list,
// out-of-range index, traversal through a scalar) yield nil. Reads never fail.
//
// # Write paths
//
// Write paths are plain dot-separated keys ("payee.account.iban"). Missing
// intermediates are created as maps; an intermediate holding a non-map value
// is replaced by a new map (last write wins).
//
// # Array markers
//
// Validation rules may address every element of a list with "[]":
// "$.items[].code". SplitArray separates such a path into the list path and
// the element path.
//
// Parsed paths are cached by their literal string. Splitting is a byte scan.
package fieldpath
