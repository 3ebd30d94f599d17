package mapping

import (
	"encoding/json"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartridge-engine/internal/diagnostic"
)

const payoutMapping = `
cartridgeId: VISA-SENDPAYOUT
validations:
  - path: $.paymentId
    required: true
mappings:
  - source: $.paymentId
    target: transactionIdentifier
    required: true
  - source: $.amount
    target: payment.amount
  - source: $.currency
    target: payment.currency
  - source: $.payee.name
    target: recipient.name
    defaultValue: UNKNOWN
  - source: $.memo
    target: memo
`

func TestEngine_Map(t *testing.T) {
	doc, err := Parse([]byte(payoutMapping))
	require.NoError(t, err)

	input := map[string]any{
		"paymentId": "P-1",
		"amount":    125.5,
		"currency":  "USD",
		"payee":     map[string]any{"name": "  "},
	}

	out, err := NewEngine().Map(input, doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"transactionIdentifier", "payment", "recipient"}, out.Keys(), spew.Sdump(out))
	assert.Equal(t, map[string]any{
		"transactionIdentifier": "P-1",
		"payment":               map[string]any{"amount": 125.5, "currency": "USD"},
		"recipient":             map[string]any{"name": "UNKNOWN"},
	}, out.ToMap())

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transactionIdentifier":"P-1","payment":{"amount":125.5,"currency":"USD"},"recipient":{"name":"UNKNOWN"}}`, string(data))
	assert.Equal(t, `{"transactionIdentifier":"P-1","payment":{"amount":125.5,"currency":"USD"},"recipient":{"name":"UNKNOWN"}}`, string(data))
}

func TestEngine_MapDoesNotMutateInput(t *testing.T) {
	doc, err := Parse([]byte(payoutMapping))
	require.NoError(t, err)

	input := map[string]any{"paymentId": "P-1", "payee": map[string]any{}}

	_, err = NewEngine().Map(input, doc)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"paymentId": "P-1", "payee": map[string]any{}}, input)
}

func TestEngine_MapErrors(t *testing.T) {
	doc, err := Parse([]byte(`
mappings:
  - source: $.id
    target: id
    required: true
  - source: $.never
    target: never
`))
	require.NoError(t, err)

	_, err = NewEngine().Map(map[string]any{"id": ""}, doc)
	require.Error(t, err)

	derr, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostic.CodeMappingSourceMissing, derr.Code)
	assert.Equal(t, diagnostic.StepTransform, derr.Step)
	assert.Equal(t, "$.id", derr.Field)
	assert.Contains(t, derr.Message, "$.id -> id")
}

func TestEngine_MapDefaultBeatsRequired(t *testing.T) {
	doc, err := Parse([]byte(`
mappings:
  - source: $.status
    target: status
    required: true
    defaultValue: PENDING
`))
	require.NoError(t, err)

	out, err := NewEngine().Map(map[string]any{}, doc)
	require.NoError(t, err)

	v, _ := out.Get("status")
	assert.Equal(t, "PENDING", v)
}

func TestEngine_ValidationBeforeMapping(t *testing.T) {
	doc, err := Parse([]byte(payoutMapping))
	require.NoError(t, err)

	_, err = NewEngine().Map(map[string]any{}, doc)

	derr, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostic.CodeValidationRequired, derr.Code)
	assert.Equal(t, diagnostic.StepValidation, derr.Step)
}

func TestEngine_TransformJSON(t *testing.T) {
	doc, err := Parse([]byte(payoutMapping))
	require.NoError(t, err)

	res, err := NewEngine().Transform(map[string]any{"paymentId": "P-1"}, doc)
	require.NoError(t, err)

	assert.Equal(t, ContentTypeJSON, res.ContentType)
	require.IsType(t, &OrderedMap{}, res.Body)
}

func TestEngine_TransformXML(t *testing.T) {
	doc, err := Parse([]byte(`
output:
  type: xml
  root: payout
mappings:
  - source: $.id
    target: id
  - source: $.amount
    target: amount.value
  - source: $.tags
    target: tag
  - source: $.note
    target: note
`))
	require.NoError(t, err)

	res, err := NewEngine().Transform(map[string]any{
		"id":     "A&B",
		"amount": 50.0,
		"tags":   []any{"x", "y"},
	}, doc)
	require.NoError(t, err)

	assert.Equal(t, ContentTypeXML, res.ContentType)
	assert.Equal(t, "<payout><id>A&amp;B</id><amount><value>50</value></amount><tag>x</tag><tag>y</tag></payout>", res.Body)
}

func TestEngine_TransformXMLDefaultRoot(t *testing.T) {
	doc, err := Parse([]byte("output: xml\nmappings:\n  - source: $.id\n    target: id\n"))
	require.NoError(t, err)

	res, err := NewEngine().Transform(map[string]any{"id": 1.0}, doc)
	require.NoError(t, err)
	assert.Equal(t, "<message><id>1</id></message>", res.Body)
}

func TestEngine_TransformXMLInvalidName(t *testing.T) {
	doc, err := Parse([]byte("output: xml\nmappings:\n  - source: $.id\n    target: 1st\n"))
	require.NoError(t, err)

	_, err = NewEngine().Transform(map[string]any{"id": "x"}, doc)
	require.Error(t, err)

	derr, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, diagnostic.CodeOutputSerializeFailed, derr.Code)
	assert.True(t, derr.IsTechnical())
}

func TestPlanCache_ContentAddressed(t *testing.T) {
	e := NewEngine()

	first, err := Parse([]byte(payoutMapping))
	require.NoError(t, err)

	second, err := Parse([]byte(payoutMapping))
	require.NoError(t, err)
	require.NotSame(t, first, second)

	p1, err := e.Plan(first)
	require.NoError(t, err)

	p2, err := e.Plan(second)
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, 1, e.Plans().Len())

	other, err := Parse([]byte("mappings:\n  - source: $.x\n    target: x\n"))
	require.NoError(t, err)

	_, err = e.Plan(other)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Plans().Len())

	e.Plans().Clear()
	assert.Equal(t, 0, e.Plans().Len())
}

func TestPlanCache_FingerprintsDocumentOnce(t *testing.T) {
	var cache PlanCache

	doc, err := Parse([]byte(payoutMapping))
	require.NoError(t, err)

	first, err := cache.Get(doc)
	require.NoError(t, err)

	// A cached document is looked up by identity, so later edits are not rehashed.
	doc.Mappings = append(doc.Mappings, MappingRule{Source: "$.extra", Target: "extra"})

	again, err := cache.Get(doc)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, cache.Len())

	cache.Clear()

	rebuilt, err := cache.Get(doc)
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	assert.Len(t, first.mappings, 5)
	assert.Len(t, rebuilt.mappings, 6)
}

func TestOrderedMap_Put(t *testing.T) {
	m := NewOrderedMap(0)
	m.Put([]string{"a", "b"}, 1)
	m.Put([]string{"c"}, 2)
	m.Put([]string{"a", "d"}, 3)
	m.Put([]string{"c", "e"}, 4)
	m.Put(nil, 5)

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": 1, "d": 3},
		"c": map[string]any{"e": 4},
	}, m.ToMap())
}
