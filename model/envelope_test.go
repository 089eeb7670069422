package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEnvelopeFlattensPayload(t *testing.T) {
	body, err := EncodeEnvelope(BatchUpdateOrderRequest{CategoryID: "c1", IDs: []string{"a", "b"}})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "batchUpdateOrder", got["action"])
	assert.Equal(t, "c1", got["categoryId"])
	assert.Equal(t, []interface{}{"a", "b"}, got["ids"])
}

func TestEncodeEnvelopeEmptyPayload(t *testing.T) {
	body, err := EncodeEnvelope(ListCategoriesRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"get"}`, string(body))
}

func TestPeekAction(t *testing.T) {
	action, err := PeekAction([]byte(`{"action":"add","name":"睡眠"}`))
	require.NoError(t, err)
	assert.Equal(t, "add", action)

	_, err = PeekAction([]byte(`{"name":"x"}`))
	assert.Error(t, err)

	_, err = PeekAction([]byte(`not json`))
	assert.Error(t, err)
}
