package enrich

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/resource"
)

func mustParse(t *testing.T, yaml string) *Document {
	t.Helper()

	doc, err := Parse([]byte(yaml))
	require.NoError(t, err)

	return doc
}

func requireCode(t *testing.T, err error, code diagnostic.Code, kind diagnostic.Kind) {
	t.Helper()

	require.Error(t, err)

	derr, ok := diagnostic.As(err)
	require.True(t, ok)
	assert.Equal(t, code, derr.Code)
	assert.Equal(t, kind, derr.Kind)
	assert.Equal(t, diagnostic.StepEnrichment, derr.Step)
}

func TestApply_RulesInOrder(t *testing.T) {
	doc := mustParse(t, `
rules:
  - set:
      target: channel
      value: MOBILE
  - when:
      path: $.channel
      equals: MOBILE
    set:
      target: meta.source
      value: app
  - when:
      path: $.amount
      equals: "50"
    set:
      target: amount
      value: 100
  - copy:
      source: $.payer.name
      target: debtor.name
  - when:
      path: $.missing
      exists: true
    set:
      target: never
      value: x
`)

	out, err := NewEngine(nil).Apply(map[string]any{
		"amount": 50.0,
		"payer":  map[string]any{"name": "Ada"},
	}, doc)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"amount":  100,
		"channel": "MOBILE",
		"meta":    map[string]any{"source": "app"},
		"payer":   map[string]any{"name": "Ada"},
		"debtor":  map[string]any{"name": "Ada"},
	}, out)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	doc := mustParse(t, `
rules:
  - set:
      target: payer.name
      value: Bob
  - set:
      target: currency
      value: EUR
`)

	input := map[string]any{
		"payer":    map[string]any{"name": "Ada"},
		"currency": "usd",
	}

	out, err := NewEngine(nil).Enrich(input, doc)
	require.NoError(t, err)

	assert.Equal(t, "Bob", out["payer"].(map[string]any)["name"])
	assert.Equal(t, map[string]any{
		"payer":    map[string]any{"name": "Ada"},
		"currency": "usd",
	}, input)
}

func TestApply_NilDocumentCopies(t *testing.T) {
	input := map[string]any{"a": map[string]any{"b": 1.0}}

	out, err := NewEngine(nil).Apply(input, nil)
	require.NoError(t, err)
	assert.Equal(t, input, out)

	out["a"].(map[string]any)["b"] = 2.0
	assert.Equal(t, 1.0, input["a"].(map[string]any)["b"])
}

func TestApply_Tokens(t *testing.T) {
	doc := mustParse(t, `
rules:
  - set:
      target: id
      value: ${uuid}
  - set:
      target: at
      value: ${now}
  - set:
      target: channel
      value: WEB
`)

	e := NewEngine(nil)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 5, time.FixedZone("X", 3600)) }

	first, err := e.Apply(map[string]any{}, doc)
	require.NoError(t, err)

	second, err := e.Apply(map[string]any{}, doc)
	require.NoError(t, err)

	assert.NotEqual(t, first["id"], second["id"])
	assert.Len(t, first["id"], 36)
	assert.Equal(t, first["channel"], second["channel"])
	assert.Equal(t, "2024-05-01T09:00:00.000000005Z", first["at"])
}

func TestApply_Calls(t *testing.T) {
	reg := Builtins()
	reg.Register("test", "scalar", func(map[string]any) (any, error) { return 7, nil })
	reg.Register("test", "fails", func(map[string]any) (any, error) { return nil, errors.New("boom") })
	reg.Register("test", "panics", func(map[string]any) (any, error) { panic("bad") })

	e := NewEngine(reg)

	out, err := e.Apply(map[string]any{"amount": "50"}, mustParse(t, `
rules:
  - call:
      bean: exampleEnrichmentFunctions
      method: bumpAmount
  - call:
      bean: test
      method: scalar
      target: score.value
`))
	require.NoError(t, err)
	assert.Equal(t, 100, out["amount"])
	assert.Equal(t, map[string]any{"value": 7}, out["score"])

	tests := []struct {
		name string
		yaml string
		code diagnostic.Code
		kind diagnostic.Kind
	}{
		{
			name: "scalar without target",
			yaml: "rules:\n  - call: {bean: test, method: scalar}\n",
			code: diagnostic.CodeEnrichCallNotMap,
			kind: diagnostic.KindFunctional,
		},
		{
			name: "missing method",
			yaml: "rules:\n  - call: {bean: test}\n",
			code: diagnostic.CodeEnrichCallMissing,
			kind: diagnostic.KindFunctional,
		},
		{
			name: "unknown function",
			yaml: "rules:\n  - call: {bean: test, method: nope}\n",
			code: diagnostic.CodeEnrichCallFailed,
			kind: diagnostic.KindTechnical,
		},
		{
			name: "function error",
			yaml: "rules:\n  - call: {bean: test, method: fails}\n",
			code: diagnostic.CodeEnrichCallFailed,
			kind: diagnostic.KindTechnical,
		},
		{
			name: "function panic",
			yaml: "rules:\n  - call: {bean: test, method: panics}\n",
			code: diagnostic.CodeEnrichCallFailed,
			kind: diagnostic.KindTechnical,
		},
		{
			name: "no action",
			yaml: "rules:\n  - when: {path: $.a}\n",
			code: diagnostic.CodeEnrichRuleInvalid,
			kind: diagnostic.KindFunctional,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Apply(map[string]any{}, mustParse(t, tt.yaml))
			requireCode(t, err, tt.code, tt.kind)
		})
	}
}

func TestApply_CallErrorNamesFunction(t *testing.T) {
	_, err := NewEngine(nil).Apply(map[string]any{}, mustParse(t, "rules:\n  - call: {bean: risk, method: score}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk.score")
}

func TestNormalize(t *testing.T) {
	m := map[string]any{"currency": " usd ", "bic": " DEUTDEFF "}
	Normalize(m)
	assert.Equal(t, map[string]any{"currency": "USD", "bic": "DEUTDEFF"}, m)

	m = map[string]any{"currency": "  ", "bic": 42.0}
	Normalize(m)
	assert.Equal(t, map[string]any{"currency": "  ", "bic": 42.0}, m)
}

func TestLoader_NegativeCache(t *testing.T) {
	mem := resource.NewMemory(map[string]string{
		"a/enrich.yaml":      "rules:\n  - set: {target: x, value: 1}\n",
		"empty/enrich.yaml":  "",
		"broken/enrich.yaml": "rules: {",
	})
	l := NewLoader(mem)

	doc, ok, err := l.LoadOptional("a/enrich.yaml")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, doc.Rules, 1)

	for range 3 {
		doc, ok, err = l.LoadOptional("missing/enrich.yaml")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, doc)
	}

	assert.Equal(t, 1, mem.ExistsChecks("missing/enrich.yaml"))

	_, ok, err = l.LoadOptional("empty/enrich.yaml")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = l.LoadOptional("broken/enrich.yaml")
	requireCode(t, err, diagnostic.CodeEnrichReadFailed, diagnostic.KindTechnical)

	assert.Equal(t, 3, l.Len())

	l.Clear()
	assert.Equal(t, 0, l.Len())
}

func TestLint(t *testing.T) {
	doc := mustParse(t, `
rules:
  - set: {target: a, value: 1}
  - copy: {source: nodollar, target: b}
  - call: {bean: paymentEnrichmentFunctions, method: calculateRiskScore}
  - call: {bean: paymentEnrichmentFunctions, method: unknown}
  - call: {method: x}
  - when: {path: $.a}
`)

	errs := Lint(doc, Builtins())
	require.Len(t, errs, 4)

	assert.Equal(t, diagnostic.CodeEnrichRuleInvalid, errs[0].Code)
	assert.Equal(t, diagnostic.CodeEnrichCallFailed, errs[1].Code)
	assert.Equal(t, diagnostic.CodeEnrichCallMissing, errs[2].Code)
	assert.Equal(t, diagnostic.CodeEnrichRuleInvalid, errs[3].Code)

	assert.Empty(t, Lint(nil, nil))
}

func TestLint_SuggestsRegisteredFunction(t *testing.T) {
	doc := mustParse(t, `
rules:
  - call: {bean: paymentEnrichmentFunctions, method: calculateRiskScor}
`)

	errs := Lint(doc, Builtins())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "(did you mean paymentEnrichmentFunctions.calculateRiskScore?)")
}
