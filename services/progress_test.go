package services

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEFrameWriterWireFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewSSEFrameWriter(rec)

	require.NoError(t, w.WriteFrame(newInitFrame(3)))
	require.NoError(t, w.WriteFrame(newProgressFrame(1, 3, 1, 0)))
	require.NoError(t, w.WriteFrame(newCompleteFrame(2, []RowFailure{{Row: 4, Error: "row has no phone number"}})))

	assert.True(t, rec.Flushed)

	// The stream is a log of independent blocks: split on blank lines,
	// strip the data: prefix, parse each payload on its own.
	body := strings.TrimSuffix(rec.Body.String(), "\n\n")
	blocks := strings.Split(body, "\n\n")
	require.Len(t, blocks, 3)

	var payloads []map[string]interface{}
	for _, block := range blocks {
		require.True(t, strings.HasPrefix(block, "data: "), "block %q", block)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(block, "data: ")), &payload))
		payloads = append(payloads, payload)
	}

	assert.Equal(t, "init", payloads[0]["type"])
	assert.Equal(t, float64(3), payloads[0]["total"])

	assert.Equal(t, "progress", payloads[1]["type"])
	assert.Equal(t, float64(1), payloads[1]["current"])
	assert.Equal(t, float64(0), payloads[1]["errorCount"])

	assert.Equal(t, "complete", payloads[2]["type"])
	assert.Equal(t, float64(2), payloads[2]["successCount"])
	errs := payloads[2]["errors"].([]interface{})
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, float64(4), first["row"])
	assert.Equal(t, "row has no phone number", first["error"])
}

func TestCompleteFrameAlwaysHasErrorList(t *testing.T) {
	// A clean import still serializes errors as [], never null, so clients
	// don't need a nil check.
	payload, err := json.Marshal(newCompleteFrame(10, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"complete","successCount":10,"errors":[]}`, string(payload))
}

func TestErrorFrameShape(t *testing.T) {
	payload, err := json.Marshal(newErrorFrame("malformed import file"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"malformed import file"}`, string(payload))
}
