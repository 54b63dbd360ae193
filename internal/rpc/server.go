package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"billing-agent/internal/tools"
)

// maxLineBytes bounds a single request line. Tool arguments are small; this
// exists to keep a corrupt stream from ballooning the scanner buffer.
const maxLineBytes = 1 << 20

// Server processes one JSON-RPC request per input line, strictly in order.
// A request runs to completion before the next line is read, which is the
// only concurrency control the aggregation layer needs.
type Server struct {
	registry *tools.Registry
	log      zerolog.Logger
	in       io.Reader
	out      io.Writer
	name     string
	version  string
}

func NewServer(registry *tools.Registry, log zerolog.Logger, in io.Reader, out io.Writer, name, version string) *Server {
	return &Server{registry: registry, log: log, in: in, out: out, name: name, version: version}
}

// Run reads lines until EOF or context cancellation. Malformed JSON yields a
// parse-error response; everything else is answered per method.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	enc := json.NewEncoder(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("unparseable request line")
			if err := enc.Encode(Response{
				JSONRPC: Version,
				ID:      json.RawMessage("null"),
				Error:   &Error{Code: CodeParseError, Message: "parse error: " + err.Error()},
			}); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
			continue
		}

		resp := s.handle(ctx, req)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

// handle dispatches a single request. Returns nil for notifications.
func (s *Server) handle(ctx context.Context, req Request) *Response {
	if req.isNotification() {
		// notifications/initialized and friends need no reply.
		return nil
	}
	resp := &Response{JSONRPC: Version, ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = initializeResult{
			ProtocolVersion: "2024-11-05",
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		}

	case "tools/list":
		infos := make([]ToolInfo, 0, len(s.registry.All()))
		for _, t := range s.registry.All() {
			infos = append(infos, ToolInfo{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
		}
		resp.Result = map[string]any{"tools": infos}

	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &Error{Code: CodeInvalidParams, Message: "invalid tools/call params: " + err.Error()}
			break
		}
		tool, ok := s.registry.Get(params.Name)
		if !ok {
			resp.Error = &Error{Code: CodeMethodNotFound, Message: "unknown tool: " + params.Name}
			break
		}
		resp.Result = s.callTool(ctx, tool, params.Arguments)

	default:
		resp.Error = &Error{Code: CodeMethodNotFound, Message: "unknown method: " + req.Method}
	}
	return resp
}

// callTool executes a tool and always produces a well-formed CallResult.
// Failures become {"success":false,"error":…} so the consumer can render
// "no data" instead of crashing on a protocol error.
func (s *Server) callTool(ctx context.Context, tool tools.Definition, args map[string]any) CallResult {
	text, err := tool.Handler(ctx, args)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", tool.Name).Msg("tool call failed")
		failure, _ := json.Marshal(map[string]any{"success": false, "error": err.Error()})
		text = string(failure)
	}
	return CallResult{Content: []TextContent{{Type: "text", Text: text}}}
}
