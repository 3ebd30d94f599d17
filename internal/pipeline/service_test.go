package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartridge-engine/internal/audit"
	"cartridge-engine/internal/catalog"
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/enrich"
	"cartridge-engine/internal/fixture"
	"cartridge-engine/internal/mapping"
	"cartridge-engine/internal/resource"
	"cartridge-engine/internal/workpool"
)

const visaMappingPath = "cartridges/visa/VISA-SENDPAYOUT/mapping.yaml"

func newService(t *testing.T, opts Options) (*Service, *resource.Memory) {
	t.Helper()

	mem := fixture.Memory()

	store, err := catalog.Load(mem, fixture.ConfigRoot)
	require.NoError(t, err)

	return New(store, mem, fixture.CartridgesRoot, opts), mem
}

func payout(id string) map[string]any {
	return map[string]any{
		"paymentId": id,
		"amount":    100.0,
		"currency":  " usd ",
		"payee":     map[string]any{"name": "Alice"},
	}
}

func bodyMap(t *testing.T, body any) map[string]any {
	t.Helper()

	om, ok := body.(*mapping.OrderedMap)
	require.True(t, ok, spew.Sdump(body))

	return om.ToMap()
}

func requireCode(t *testing.T, err error, code diagnostic.Code) *diagnostic.Error {
	t.Helper()

	de, ok := diagnostic.As(err)
	require.True(t, ok, "not a diagnostic error: %v", err)
	require.Equal(t, code, de.Code, de.Error())

	return de
}

func TestProcess_Single(t *testing.T) {
	svc, _ := newService(t, Options{})

	resp, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)

	assert.False(t, resp.Bulk)
	assert.Equal(t, "P-1", resp.RequestID)
	assert.Equal(t, mapping.ContentTypeJSON, resp.ContentType)
	assert.Equal(t, map[string]any{
		"transactionIdentifier": "P-1",
		"amount":                100.0,
		"currencyCode":          "USD",
		"recipient":             map[string]any{"name": "Alice"},
		"risk":                  map[string]any{"level": "LOW"},
		"channel":               "VISA_DIRECT",
	}, bodyMap(t, resp.Body))
}

func TestProcess_DoesNotModifyInput(t *testing.T) {
	svc, _ := newService(t, Options{})

	body := payout("P-1")
	_, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: body})
	require.NoError(t, err)

	assert.Equal(t, payout("P-1"), body)
}

func TestProcess_CurrencyTemplate(t *testing.T) {
	svc, _ := newService(t, Options{})

	resp, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Currency: "USD", Body: payout("P-1")})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"id": "P-1", "usdAmount": 100.0}, bodyMap(t, resp.Body))
}

func TestProcess_XMLOutput(t *testing.T) {
	svc, _ := newService(t, Options{})

	resp, err := svc.Process(context.Background(), Request{
		CartridgeID: fixture.Swift,
		Body: map[string]any{
			"paymentId": "S-1",
			"amount":    5.0,
			"items":     []any{map[string]any{"code": "A"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, mapping.ContentTypeXML, resp.ContentType)
	body, ok := resp.Body.(string)
	require.True(t, ok)
	assert.Contains(t, body, "<mt103>")
	assert.Contains(t, body, "<reference>S-1</reference>")
}

func TestProcess_SingleFailsFast(t *testing.T) {
	svc, _ := newService(t, Options{})

	body := payout("P-1")
	delete(body, "paymentId")

	_, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: body})

	de := requireCode(t, err, diagnostic.CodeValidationRequired)
	assert.True(t, de.IsFunctional())
	assert.Equal(t, diagnostic.StepValidation, de.Step)
	assert.Equal(t, "$.paymentId", de.Field)
}

func TestProcess_RequestErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		code diagnostic.Code
		step diagnostic.Step
	}{
		{
			name: "scalar body",
			req:  Request{CartridgeID: fixture.Visa, Body: "text"},
			code: diagnostic.CodeRequestBodyType,
			step: diagnostic.StepValidation,
		},
		{
			name: "missing cartridge id",
			req:  Request{CartridgeID: " ", Body: payout("P-1")},
			code: diagnostic.CodeRequestCartridgeIDMissing,
			step: diagnostic.StepValidation,
		},
		{
			name: "unknown cartridge",
			req:  Request{CartridgeID: "NOPE", Body: payout("P-1")},
			code: diagnostic.CodeCartridgeNotFound,
			step: diagnostic.StepResolve,
		},
		{
			name: "no template",
			req:  Request{CartridgeID: fixture.NoTemplate, Body: payout("P-1")},
			code: diagnostic.CodeCartridgeTemplateNotFound,
			step: diagnostic.StepResolve,
		},
		{
			name: "undeclared direction",
			req:  Request{CartridgeID: fixture.Swift, Direction: "INBOUND", Body: payout("P-1")},
			code: diagnostic.CodeCartridgeFlowNotFound,
			step: diagnostic.StepResolve,
		},
		{
			name: "bulk request fails as a whole when resolution fails",
			req:  Request{CartridgeID: "NOPE", Body: []any{payout("P-1")}},
			code: diagnostic.CodeCartridgeNotFound,
			step: diagnostic.StepResolve,
		},
	}

	svc, _ := newService(t, Options{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(context.Background(), tt.req)

			de := requireCode(t, err, tt.code)
			assert.True(t, de.IsFunctional())
			assert.Equal(t, tt.step, de.Step)
		})
	}
}

func TestProcess_BulkIsolation(t *testing.T) {
	pools := map[string]workpool.Pool{
		"sequential": workpool.Sequential{},
		"bounded":    workpool.NewBounded(4),
	}

	for name, pool := range pools {
		t.Run(name, func(t *testing.T) {
			svc, _ := newService(t, Options{Pool: pool})

			missing := payout("ignored")
			delete(missing, "paymentId")

			resp, err := svc.Process(context.Background(), Request{
				CartridgeID: fixture.Visa,
				Body:        []any{payout("P-0"), "oops", missing},
			})
			require.NoError(t, err)

			assert.True(t, resp.Bulk)
			assert.Equal(t, mapping.ContentTypeJSON, resp.ContentType)
			require.Len(t, resp.Results, 3)
			assert.Equal(t, resp.Results, resp.Body)

			ok := resp.Results[0]
			assert.Equal(t, 0, ok.Index)
			assert.True(t, ok.Success)
			assert.Nil(t, ok.Error)
			assert.Equal(t, mapping.ContentTypeJSON, ok.ContentType)
			assert.Equal(t, "P-0", bodyMap(t, ok.Body)["transactionIdentifier"])

			malformed := resp.Results[1]
			assert.Equal(t, 1, malformed.Index)
			assert.False(t, malformed.Success)
			require.NotNil(t, malformed.Error)
			assert.Equal(t, diagnostic.CodeGenericFunctional, malformed.Error.Code)
			assert.Equal(t, diagnostic.KindFunctional, malformed.Error.Type)
			assert.Equal(t, diagnostic.StepValidation, malformed.Error.Step)

			invalid := resp.Results[2]
			assert.Equal(t, 2, invalid.Index)
			assert.False(t, invalid.Success)
			require.NotNil(t, invalid.Error)
			assert.Equal(t, diagnostic.CodeValidationRequired, invalid.Error.Code)
			assert.Equal(t, "$.paymentId", invalid.Error.Field)
			assert.Equal(t, diagnostic.StepValidation, invalid.Error.Step)
		})
	}
}

func TestProcess_BulkOrdering(t *testing.T) {
	svc, _ := newService(t, Options{Pool: workpool.NewBounded(8)})

	const n = 64

	body := make([]any, n)
	for i := range body {
		body[i] = payout(fmt.Sprintf("P-%d", i))
	}

	resp, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: body})
	require.NoError(t, err)
	require.Len(t, resp.Results, n)

	for i, res := range resp.Results {
		assert.Equal(t, i, res.Index)
		require.True(t, res.Success, spew.Sdump(res))
		assert.Equal(t, fmt.Sprintf("P-%d", i), bodyMap(t, res.Body)["transactionIdentifier"])
	}
}

func TestProcess_Envelope(t *testing.T) {
	svc, mem := newService(t, Options{})
	mem.Put(visaMappingPath, `
cartridgeId: VISA-SENDPAYOUT
mappings:
  - source: $.paymentId
    target: id
  - source: $.header.correlationId
    target: correlationId
  - source: $.grpHdr.msgId
    target: batch.msgId
  - source: $.bulk.batchRef
    target: batch.ref
`)

	resp, err := svc.Process(context.Background(), Request{
		CartridgeID: fixture.Visa,
		Body: map[string]any{
			"header": map[string]any{"correlationId": "C-9"},
			"paymentData": map[string]any{
				"grpHdr": []any{map[string]any{"msgId": "M-1"}},
				"bulk":   []any{map[string]any{"batchRef": "B-1"}},
				"txInf": []any{
					map[string]any{"paymentId": "T-1"},
					map[string]any{"paymentId": "T-2", "header": map[string]any{"correlationId": "OWN"}},
					42.0,
				},
			},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Bulk)
	assert.Equal(t, "C-9", resp.RequestID)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, map[string]any{
		"id":            "T-1",
		"correlationId": "C-9",
		"batch":         map[string]any{"msgId": "M-1", "ref": "B-1"},
	}, bodyMap(t, resp.Results[0].Body))
	assert.Equal(t, "OWN", bodyMap(t, resp.Results[1].Body)["correlationId"])

	require.NotNil(t, resp.Results[2].Error)
	assert.Equal(t, "expected txInf JSON object at index 2 but got: number", resp.Results[2].Error.Message)
}

func TestProcess_EnrichmentFailure(t *testing.T) {
	reg := enrich.NewRegistry()
	reg.Register(enrich.PaymentFunctions, "calculateRiskScore", func(map[string]any) (any, error) {
		return nil, errors.New("scoring offline")
	})

	svc, _ := newService(t, Options{Registry: reg})

	_, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: payout("P-1")})

	de := requireCode(t, err, diagnostic.CodeEnrichCallFailed)
	assert.True(t, de.IsTechnical())
	assert.Equal(t, diagnostic.StepEnrichment, de.Step)

	resp, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: []any{payout("P-1")}})
	require.NoError(t, err)
	require.NotNil(t, resp.Results[0].Error)
	assert.Equal(t, diagnostic.KindTechnical, resp.Results[0].Error.Type)
	assert.Equal(t, diagnostic.StepEnrichment, resp.Results[0].Error.Step)
}

func TestProcess_Schema(t *testing.T) {
	svc, mem := newService(t, Options{})
	mem.Put("cartridges/visa/VISA-SENDPAYOUT/schema.cue", `
paymentId: string & !=""
amount:    number & >0
`)

	body := payout("P-1")
	body["amount"] = -5.0

	_, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: body})

	de := requireCode(t, err, diagnostic.CodeValidationSchema)
	assert.True(t, de.IsFunctional())
	assert.Equal(t, diagnostic.StepValidation, de.Step)

	_, err = svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: payout("P-2")})
	require.NoError(t, err)
}

type brokenPool struct{}

func (brokenPool) Run(int, func(int)) error { return errors.New("pool down") }

func (brokenPool) Width() int { return 1 }

func TestProcess_PoolFailure(t *testing.T) {
	svc, _ := newService(t, Options{Pool: brokenPool{}})

	_, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: []any{payout("P-1")}})

	de := requireCode(t, err, diagnostic.CodeGenericTechnical)
	assert.True(t, de.IsTechnical())
}

func TestProcess_Audit(t *testing.T) {
	sink := &audit.Memory{}
	svc, _ := newService(t, Options{Sink: sink})
	svc.newID = func() string { return "generated" }

	_, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)

	invalid := payout("")
	_, err = svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: invalid})
	require.Error(t, err)

	_, err = svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, RequestID: "fixed", Body: []any{}})
	require.NoError(t, err)

	entries := sink.Entries()
	require.Len(t, entries, 6)

	assert.Equal(t, audit.KindRaw, entries[0].Kind)
	assert.Equal(t, "P-1", entries[0].RequestID)
	assert.Equal(t, audit.StatusReceived, entries[0].Status)
	assert.Equal(t, audit.KindTransformed, entries[1].Kind)
	assert.Equal(t, audit.StatusTransformed, entries[1].Status)
	assert.Contains(t, entries[1].Payload, `"transactionIdentifier":"P-1"`)

	assert.Equal(t, "generated", entries[2].RequestID)
	assert.Equal(t, audit.StatusFailed, entries[3].Status)
	assert.Contains(t, entries[3].Payload, string(diagnostic.CodeValidationRequired))

	assert.Equal(t, "fixed", entries[4].RequestID)
	assert.Equal(t, "[]", entries[5].Payload)
}

type failingSink struct{}

func (failingSink) StoreRaw(context.Context, string, any, string) error {
	return errors.New("disk full")
}

func (failingSink) StoreTransformed(context.Context, string, any, string) error {
	return errors.New("disk full")
}

func TestProcess_AuditFailureIgnored(t *testing.T) {
	svc, _ := newService(t, Options{Sink: failingSink{}})

	resp, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)
	assert.Equal(t, "P-1", bodyMap(t, resp.Body)["transactionIdentifier"])
}

func TestService_ClearCaches(t *testing.T) {
	svc, mem := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.Process(ctx, Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)

	mem.Put(visaMappingPath, `
cartridgeId: VISA-SENDPAYOUT
mappings:
  - source: $.paymentId
    target: ref
`)

	resp, err := svc.Process(ctx, Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)
	assert.Contains(t, bodyMap(t, resp.Body), "transactionIdentifier")

	svc.ClearCaches()

	resp, err = svc.Process(ctx, Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ref": "P-1"}, bodyMap(t, resp.Body))
}

func TestService_Reload(t *testing.T) {
	svc, mem := newService(t, Options{})
	ctx := context.Background()

	const schemaMaster = "config/schema-master.yaml"

	original := fixture.Base()[schemaMaster]

	mem.Delete(schemaMaster)
	require.Error(t, svc.Reload())

	_, err := svc.Process(ctx, Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)

	mem.Put(schemaMaster, original)
	mem.Put(visaMappingPath, `
cartridgeId: VISA-SENDPAYOUT
mappings:
  - source: $.paymentId
    target: ref
`)
	require.NoError(t, svc.Reload())

	resp, err := svc.Process(ctx, Request{CartridgeID: fixture.Visa, Body: payout("P-1")})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ref": "P-1"}, bodyMap(t, resp.Body))
}

func TestProcess_Concurrent(t *testing.T) {
	svc, mem := newService(t, Options{Pool: workpool.NewBounded(4)})

	_, err := svc.Process(context.Background(), Request{CartridgeID: fixture.Visa, Body: payout("P-first")})
	require.NoError(t, err)

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			id := fmt.Sprintf("P-%d", i)

			resp, err := svc.Process(context.Background(), Request{
				CartridgeID: fixture.Visa,
				Body:        []any{payout(id), payout(id)},
			})
			assert.NoError(t, err)
			assert.Len(t, resp.Results, 2)
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, mem.Reads(visaMappingPath))
}
