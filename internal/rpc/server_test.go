package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"billing-agent/internal/tools"
)

func testRegistry() *tools.Registry {
	reg := tools.NewRegistry()
	reg.Register(tools.Definition{
		Name:        "echo",
		Description: "Echo the message argument back.",
		InputSchema: map[string]any{"type": "object"},
		Handler: func(_ context.Context, args map[string]any) (string, error) {
			msg, _ := args["message"].(string)
			return `{"echo":"` + msg + `"}`, nil
		},
	})
	reg.Register(tools.Definition{
		Name:        "boom",
		Description: "Always fails.",
		InputSchema: map[string]any{"type": "object"},
		Handler: func(_ context.Context, _ map[string]any) (string, error) {
			return "", errors.New("store unreachable")
		},
	})
	return reg
}

// serve feeds the input lines through a server and returns one decoded
// response per output line.
func serve(t *testing.T, input string) []Response {
	t.Helper()
	var out bytes.Buffer
	srv := NewServer(testRegistry(), zerolog.Nop(), strings.NewReader(input), &out, "billing-agent", "test")
	require.NoError(t, srv.Run(context.Background()))

	var responses []Response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp Response
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	return responses
}

func resultMap(t *testing.T, resp Response) map[string]any {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

// callText digs the tool payload out of a tools/call response.
func callText(t *testing.T, resp Response) string {
	t.Helper()
	m := resultMap(t, resp)
	content, ok := m["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	require.Equal(t, "text", block["type"])
	return block["text"].(string)
}

func TestServer_Initialize(t *testing.T) {
	responses := serve(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`+"\n")
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	m := resultMap(t, responses[0])
	require.Equal(t, "2024-11-05", m["protocolVersion"])
	info := m["serverInfo"].(map[string]any)
	require.Equal(t, "billing-agent", info["name"])
}

func TestServer_ToolsList(t *testing.T) {
	responses := serve(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`+"\n")
	require.Len(t, responses, 1)

	m := resultMap(t, responses[0])
	list := m["tools"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	require.Equal(t, "echo", first["name"])
	require.Contains(t, first, "inputSchema")
}

func TestServer_ToolsCall(t *testing.T) {
	responses := serve(t, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"message":"bonjour"}}}`+"\n")
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)
	require.JSONEq(t, `{"echo":"bonjour"}`, callText(t, responses[0]))
}

func TestServer_ToolFailureIsNotAProtocolError(t *testing.T) {
	responses := serve(t, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"boom","arguments":{}}}`+"\n")
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error, "tool failures must not surface as JSON-RPC errors")

	var payload struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(callText(t, responses[0])), &payload))
	require.False(t, payload.Success)
	require.Contains(t, payload.Error, "store unreachable")
}

func TestServer_UnknownToolAndMethod(t *testing.T) {
	responses := serve(t,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"nope","arguments":{}}}`+"\n"+
			`{"jsonrpc":"2.0","id":6,"method":"resources/list"}`+"\n")
	require.Len(t, responses, 2)
	for _, resp := range responses {
		require.NotNil(t, resp.Error)
		require.Equal(t, CodeMethodNotFound, resp.Error.Code)
	}
}

func TestServer_ParseError(t *testing.T) {
	responses := serve(t, "{this is not json\n")
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	require.Equal(t, CodeParseError, responses[0].Error.Code)
	require.Equal(t, "null", string(responses[0].ID))
}

func TestServer_NotificationsGetNoReply(t *testing.T) {
	responses := serve(t,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n"+
			"\n"+
			`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`+"\n")
	require.Len(t, responses, 1, "only the id-bearing request gets a response")
	require.Equal(t, "7", string(responses[0].ID))
}

func TestServer_RequestsAnsweredInOrder(t *testing.T) {
	responses := serve(t,
		`{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"echo","arguments":{"message":"a"}}}`+"\n"+
			`{"jsonrpc":"2.0","id":11,"method":"tools/call","params":{"name":"echo","arguments":{"message":"b"}}}`+"\n")
	require.Len(t, responses, 2)
	require.Equal(t, "10", string(responses[0].ID))
	require.Equal(t, "11", string(responses[1].ID))
}
