package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackRoundTrip(t *testing.T) {
	data := EncodeCallback("KEEP", "abc-123")
	assert.Equal(t, "SVM:KEEP:abc-123", data)

	code, id, err := DecodeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, "KEEP", code)
	assert.Equal(t, "abc-123", id)
}

func TestDecodeCallbackRejectsForeignData(t *testing.T) {
	for _, data := range []string{"", "KEEP:abc", "OTHER:KEEP:abc", "SVM:KEEP", "SVM::abc", "SVM:KEEP:"} {
		_, _, err := DecodeCallback(data)
		assert.Error(t, err, "data %q", data)
	}
}

func TestBuildRowsKeepsBuiltinsTogether(t *testing.T) {
	rows := BuildRows([]Button{
		{Code: "KEEP", Order: 1},
		{Code: "DEL", Order: 2},
		{Code: "DFC", Order: 3},
	})
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 3)
}

func TestBuildRowsGroupsCustomByOrderBand(t *testing.T) {
	rows := BuildRows([]Button{
		{Code: "KEEP", Order: 1},
		{Code: "DEL", Order: 2},
		{Code: "DL", Order: 100},
		{Code: "DLAL", Order: 101},
		{Code: "NOTES", Order: 200},
		{Code: "BACK", Order: 5000},
	})
	require.Len(t, rows, 4)
	assert.Equal(t, "KEEP", rows[0][0].Code)
	assert.Len(t, rows[0], 2)
	assert.Equal(t, []Button{{Code: "DL", Order: 100}, {Code: "DLAL", Order: 101}}, rows[1])
	assert.Equal(t, "NOTES", rows[2][0].Code)
	assert.Equal(t, "BACK", rows[3][0].Code)
}

func TestBuildRowsEmpty(t *testing.T) {
	assert.Empty(t, BuildRows(nil))
}
