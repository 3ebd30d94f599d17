package resolver

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartridge-engine/internal/catalog"
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/fixture"
	"cartridge-engine/internal/resource"
)

func newResolver(t *testing.T) (*Resolver, *resource.Memory) {
	t.Helper()

	mem := fixture.Memory()

	store, err := catalog.Load(mem, fixture.ConfigRoot)
	require.NoError(t, err)

	return New(store, mem, fixture.CartridgesRoot), mem
}

func TestResolve_Base(t *testing.T) {
	r, _ := newResolver(t)

	ctx, err := r.Resolve(fixture.Visa, "", "")
	require.NoError(t, err)

	assert.Equal(t, Context{
		Provider:    "visa",
		CartridgeID: fixture.Visa,
		Direction:   DirectionOutbound,
		FlowID:      "CJSON_TO_VISA",
		InputFormat: "cjson",
		FromFormat:  "cjson",
		ToFormat:    "visa-json",
		MappingPath: "cartridges/visa/VISA-SENDPAYOUT/mapping.yaml",
		EnrichPath:  "cartridges/visa/VISA-SENDPAYOUT/enrich.yaml",
		RoutePath:   "cartridges/visa/VISA-SENDPAYOUT/route.yaml",
		SchemaPath:  "cartridges/visa/VISA-SENDPAYOUT/schema.cue",
	}, ctx)
	assert.Equal(t, "cartridges/visa/VISA-SENDPAYOUT", ctx.TemplateDir())
}

func TestResolve_CurrencyTemplatePreferred(t *testing.T) {
	r, _ := newResolver(t)

	ctx, err := r.Resolve(fixture.Visa, "USD", DirectionOutbound)
	require.NoError(t, err)

	assert.Equal(t, "USD", ctx.Currency)
	assert.Equal(t, "cartridges/visa/VISA-SENDPAYOUT/USD/mapping.yaml", ctx.MappingPath)
	assert.Equal(t, "cartridges/visa/VISA-SENDPAYOUT/USD/enrich.yaml", ctx.EnrichPath)
}

func TestResolve_FallsBackToBase(t *testing.T) {
	r, _ := newResolver(t)

	ctx, err := r.Resolve(fixture.Swift, "USD", DirectionOutbound)
	require.NoError(t, err)

	assert.Equal(t, "cartridges/swift/SWIFT-MT103/mapping.yaml", ctx.MappingPath)
	assert.Equal(t, "mt103-xml", ctx.ToFormat)
}

func TestResolve_Inbound(t *testing.T) {
	r, _ := newResolver(t)

	for _, dir := range []string{"inbound", "INBOUND", "Inbound"} {
		ctx, err := r.Resolve(fixture.Visa, "", dir)
		require.NoError(t, err)
		assert.Equal(t, "VISA_TO_CJSON", ctx.FlowID, dir)
		assert.Equal(t, "visa-json", ctx.FromFormat, dir)
	}
}

func TestResolve_Errors(t *testing.T) {
	r, _ := newResolver(t)

	tests := []struct {
		name      string
		cartridge string
		direction string
		code      diagnostic.Code
	}{
		{name: "unknown cartridge", cartridge: "NOPE", code: diagnostic.CodeCartridgeNotFound},
		{name: "no flow entry", cartridge: fixture.NoFlow, code: diagnostic.CodeCartridgeFlowNotFound},
		{name: "no directional flow", cartridge: fixture.Swift, direction: DirectionInbound, code: diagnostic.CodeCartridgeFlowNotFound},
		{name: "no template", cartridge: fixture.NoTemplate, code: diagnostic.CodeCartridgeTemplateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.cartridge, "", tt.direction)
			require.Error(t, err)

			derr, ok := diagnostic.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, derr.Code)
			assert.True(t, derr.IsFunctional())
			assert.Equal(t, diagnostic.StepResolve, derr.Step)
		})
	}
}

func TestResolve_NotFoundSuggestsCartridge(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.Resolve("visa_sendpayout", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cartridge not found: visa_sendpayout (did you mean VISA-SENDPAYOUT?)")

	_, err = r.Resolve("NOPE", "", "")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestResolve_Idempotent(t *testing.T) {
	r, mem := newResolver(t)

	first, err := r.Resolve(fixture.Visa, "EUR", DirectionOutbound)
	require.NoError(t, err)

	accesses := mem.TotalAccesses()

	second, err := r.Resolve(fixture.Visa, "EUR", DirectionOutbound)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, accesses, mem.TotalAccesses(), "second resolve must not touch the resource store")
}

func TestResolve_TemplateExistenceCached(t *testing.T) {
	r, mem := newResolver(t)

	_, err := r.Resolve(fixture.Visa, "EUR", DirectionOutbound)
	require.NoError(t, err)

	_, err = r.Resolve(fixture.Visa, "EUR", DirectionInbound)
	require.NoError(t, err)

	assert.Equal(t, 1, mem.ExistsChecks("cartridges/visa/VISA-SENDPAYOUT/EUR/mapping.yaml"))
	assert.Equal(t, 1, mem.ExistsChecks("cartridges/visa/VISA-SENDPAYOUT/mapping.yaml"))
}

func TestCartridgeExists(t *testing.T) {
	r, _ := newResolver(t)

	assert.True(t, r.CartridgeExists(fixture.Visa))
	assert.True(t, r.CartridgeExists(fixture.NoTemplate))
	assert.False(t, r.CartridgeExists("NOPE"))
}

func TestCurrencyTemplateExists(t *testing.T) {
	r, _ := newResolver(t)

	assert.True(t, r.CurrencyTemplateExists(fixture.Visa, "USD"))
	assert.False(t, r.CurrencyTemplateExists(fixture.Visa, "GBP"))
	assert.False(t, r.CurrencyTemplateExists(fixture.Visa, ""))
	assert.False(t, r.CurrencyTemplateExists("NOPE", "USD"))
}

func TestClearCache(t *testing.T) {
	r, mem := newResolver(t)

	_, err := r.Resolve(fixture.Swift, "", "")
	require.NoError(t, err)

	mem.Delete("cartridges/swift/SWIFT-MT103/mapping.yaml")

	_, err = r.Resolve(fixture.Swift, "", "")
	require.NoError(t, err, "stale context served from cache")

	r.ClearCache()

	_, err = r.Resolve(fixture.Swift, "", "")
	require.Error(t, err)
}

func TestRebuild_AfterReload(t *testing.T) {
	mem := fixture.Memory()

	store, err := catalog.Load(mem, fixture.ConfigRoot)
	require.NoError(t, err)

	r := New(store, mem, fixture.CartridgesRoot)
	assert.False(t, r.CartridgeExists("MC-PAYOUT"))

	mem.Put("config/schema-master.yaml", `
cartridges:
  MC-PAYOUT:
    provider: mastercard
    inputFormat: cjson
`)
	require.NoError(t, store.Reload())

	r.Rebuild()

	assert.True(t, r.CartridgeExists("MC-PAYOUT"))
	assert.False(t, r.CartridgeExists(fixture.Visa))
}

func TestResolve_Concurrent(t *testing.T) {
	r, _ := newResolver(t)

	want, err := r.Resolve(fixture.Visa, "USD", "")
	require.NoError(t, err)

	r.ClearCache()

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			got, err := r.Resolve(fixture.Visa, "USD", "")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}

	wg.Wait()
}
