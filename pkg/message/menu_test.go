package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(m Menu) []string {
	out := make([]string, 0, len(m))
	for code := range m {
		out = append(out, code)
	}
	return out
}

func TestMutateCreatesFirstLevel(t *testing.T) {
	var stack MenuStack

	changed := stack.Mutate(Menu{"KEEP": {}, "DEL": {}}, nil, nil)

	assert.True(t, changed)
	require.Equal(t, 1, stack.Depth())
	assert.ElementsMatch(t, []string{"KEEP", "DEL"}, codes(stack.Current()))
	assert.NotContains(t, stack.Current(), "BACK")
}

func TestPushSecondLevelMovesBackEntry(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"KEEP": {}, "DEL": {}}, nil, nil)

	changed := stack.Mutate(nil, nil, Menu{"DEL1": {}, "DELN": {}})

	assert.True(t, changed)
	require.Equal(t, 2, stack.Depth())
	assert.Contains(t, stack.Current(), "BACK")
	assert.NotContains(t, stack[0], "BACK")
}

func TestThirdLevelKeepsSingleBackEntry(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"KEEP": {}}, nil, nil)
	stack.Mutate(nil, nil, Menu{"DEL1": {}})
	stack.Mutate(nil, nil, Menu{"TSK_ST": {}, "TSK_AB": {}})

	require.Equal(t, 3, stack.Depth())
	backLevels := 0
	for _, level := range stack {
		if _, ok := level["BACK"]; ok {
			backLevels++
		}
	}
	assert.Equal(t, 1, backLevels)
	assert.Contains(t, stack.Current(), "BACK")
}

func TestPopRestoresPreviousLevel(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"KEEP": {}, "DEL": {}}, nil, nil)
	stack.Mutate(nil, nil, Menu{"DEL1": {}})

	changed := stack.Pop()

	assert.True(t, changed)
	require.Equal(t, 1, stack.Depth())
	assert.ElementsMatch(t, []string{"KEEP", "DEL"}, codes(stack.Current()))
	assert.NotContains(t, stack.Current(), "BACK")
}

func TestEmptyReplacePopsInsteadOfEmptyFrame(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"KEEP": {}}, nil, nil)

	changed := stack.Mutate(nil, nil, Menu{})

	assert.True(t, changed)
	assert.Equal(t, 0, stack.Depth())
	assert.Empty(t, stack.Current())
}

func TestRemoveLastEntryDropsLevel(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"DL": {}}, nil, nil)

	changed := stack.Mutate(nil, []string{"DL"}, nil)

	assert.True(t, changed)
	assert.Equal(t, 0, stack.Depth())
}

func TestUnchangedCodeSetReportsNoChange(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"DL": {}}, nil, nil)

	// same code, new data: the code set is stable, no re-render needed
	changed := stack.Mutate(Menu{"DL": {TaskID: "7"}}, nil, nil)

	assert.False(t, changed)
	assert.Equal(t, "7", stack.Current()["DL"].TaskID)
}

func TestBackInvariantUnderMixedMutations(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"KEEP": {}, "DEL": {}}, nil, nil)
	stack.Mutate(nil, nil, Menu{"DEL1": {}, "DEL2": {}})
	stack.Mutate(Menu{"DELN": {}}, []string{"DEL2"}, nil)
	stack.Mutate(nil, nil, Menu{"TSK_ST": {}})
	stack.Pop()
	stack.Pop()

	// back at the root level: one frame, no BACK anywhere
	require.Equal(t, 1, stack.Depth())
	for _, level := range stack {
		assert.NotContains(t, level, "BACK")
	}
}

func TestClear(t *testing.T) {
	var stack MenuStack
	stack.Mutate(Menu{"KEEP": {}}, nil, nil)

	assert.True(t, stack.Clear())
	assert.Equal(t, 0, stack.Depth())
	assert.False(t, stack.Clear())
}
