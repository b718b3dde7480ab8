package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequest_RoundTrip(t *testing.T) {
	req := NewRequest("req-1", "SpawnBot", []any{"raider", 3})

	data, err := json.Marshal(req)
	require.NoError(t, err)

	parsed, err := ParseRequest(data)
	require.NoError(t, err)

	require.Equal(t, "req-1", parsed.RequestID)
	require.Equal(t, "SpawnBot", parsed.Method())
	require.Len(t, parsed.Args(), 2)
	require.Equal(t, "raider", parsed.Args()[0])
}

func TestRequest_NilArgsEncodeAsEmptyList(t *testing.T) {
	req := NewRequest("req-2", "CanSpawn", nil)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	parsed, err := ParseRequest(data)
	require.NoError(t, err)
	require.NotNil(t, parsed.Args())
	require.Empty(t, parsed.Args())
}

func TestParseRequest_RejectsWrongType(t *testing.T) {
	_, err := ParseRequest([]byte(`{"type":"bot_response","request_id":"x","request":{}}`))
	require.ErrorContains(t, err, "unexpected message type")
}

func TestParseRequest_RejectsMissingID(t *testing.T) {
	_, err := ParseRequest([]byte(`{"type":"bot_request","request":{"method":"Tick"}}`))
	require.ErrorContains(t, err, "request_id")
}

func TestParseRequest_RejectsGarbage(t *testing.T) {
	_, err := ParseRequest([]byte(`not json`))
	require.Error(t, err)
}

func TestReply_Success(t *testing.T) {
	reply := NewSuccessReply("req-3", true)

	data, err := json.Marshal(reply)
	require.NoError(t, err)

	parsed, err := ParseReply(data)
	require.NoError(t, err)

	require.Equal(t, "req-3", parsed.RequestID())
	require.False(t, parsed.IsError())
	require.Equal(t, true, parsed.Result())
	require.Empty(t, parsed.ErrorMessage())
}

func TestReply_Error(t *testing.T) {
	reply := NewErrorReply("req-4", "unknown method")

	data, err := json.Marshal(reply)
	require.NoError(t, err)

	parsed, err := ParseReply(data)
	require.NoError(t, err)

	require.Equal(t, "req-4", parsed.RequestID())
	require.True(t, parsed.IsError())
	require.Equal(t, "unknown method", parsed.ErrorMessage())
}

func TestReply_NilResult(t *testing.T) {
	reply := NewSuccessReply("req-5", nil)

	data, err := json.Marshal(reply)
	require.NoError(t, err)

	parsed, err := ParseReply(data)
	require.NoError(t, err)
	require.Nil(t, parsed.Result())
}

func TestParseReply_RejectsMissingID(t *testing.T) {
	_, err := ParseReply([]byte(`{"type":"bot_response","response":{"subtype":"success"}}`))
	require.ErrorContains(t, err, "request_id")
}
