package action

import (
	"testing"

	"savbot/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBuiltins(t *testing.T) {
	catalog := NewCatalog(nil)
	require.NoError(t, catalog.Register(Builtin(config.LifecycleConfig{})...))

	def, ok := catalog.ByCode(CodeKeep)
	require.True(t, ok)
	assert.Equal(t, "Keep", def.Caption)
	assert.Equal(t, HandlerKeep, def.Handler)

	assert.True(t, catalog.Knows(CodeBack))
	assert.False(t, catalog.Knows("NOPE"))
}

func TestRegisterRejectsDuplicateCode(t *testing.T) {
	catalog := NewCatalog(nil)
	require.NoError(t, catalog.Register(Definition{Code: "YTDL", Caption: "Video", Order: 150, Handler: HandlerCustomTask}))

	err := catalog.Register(Definition{Code: "YTDL", Caption: "Other", Order: 160, Handler: HandlerCustomTask})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate action code")

	// the original registration must survive
	def, ok := catalog.ByCode("YTDL")
	require.True(t, ok)
	assert.Equal(t, "Video", def.Caption)
}

func TestRegisterValidatesHandlerNames(t *testing.T) {
	known := map[string]struct{}{HandlerKeep: {}}
	catalog := NewCatalog(known)

	require.NoError(t, catalog.Register(Definition{Code: "A", Handler: HandlerKeep}))
	err := catalog.Register(Definition{Code: "B", Handler: "does_not_exist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown handler")
}

func TestCustomKeepsRegistrationOrder(t *testing.T) {
	catalog := NewCatalog(nil)
	require.NoError(t, catalog.Register(
		Definition{Code: "B_ACT", Order: 300, Handler: HandlerCustomTask, Matcher: &Matcher{Pattern: WildcardPattern}},
		Definition{Code: "A_ACT", Order: 150, Handler: HandlerCustomTask, Matcher: &Matcher{Pattern: WildcardPattern}},
	))

	custom := catalog.Custom()
	require.Len(t, custom, 2)
	assert.Equal(t, "B_ACT", custom[0].Code)
	assert.Equal(t, "A_ACT", custom[1].Code)
}

func TestSortStableOrdersByOrderWithStableTies(t *testing.T) {
	defs := []Definition{
		{Code: "DELN", Order: 1},
		{Code: "DEL", Order: 0},
		{Code: "DFC", Order: 1},
	}
	SortStable(defs)

	assert.Equal(t, []string{"DEL", "DELN", "DFC"}, []string{defs[0].Code, defs[1].Code, defs[2].Code})
}
