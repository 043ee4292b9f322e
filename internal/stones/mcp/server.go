// Package mcp serves the planner tools over the Model Context Protocol,
// one JSON-RPC message per line on stdio.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rsned/stone-planner-server/internal/stones/engine"
)

// Version is reported in the initialize handshake.
const Version = "0.1.0"

// maxMessageSize bounds a single request line. plan_batch bodies can be
// far larger than bufio's default token size.
const maxMessageSize = 4 << 20

// MethodHandler answers one JSON-RPC method.
type MethodHandler func(ctx context.Context, params json.RawMessage) (any, error)

type toolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Server dispatches MCP methods to the planning engine.
type Server struct {
	engine  *engine.Engine
	logger  *slog.Logger
	methods map[string]MethodHandler
	tools   map[string]toolFunc
}

// NewServer wires the MCP methods and the planner tools. A nil logger
// writes text to stderr, since stdout carries the protocol.
func NewServer(eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	s := &Server{engine: eng, logger: logger}
	s.methods = map[string]MethodHandler{
		"initialize": s.handleInitialize,
		"ping":       s.handlePing,
		"tools/list": s.handleToolsList,
		"tools/call": s.handleToolsCall,
	}
	s.tools = map[string]toolFunc{
		"plan_build":    s.toolPlanBuild,
		"plan_batch":    s.toolPlanBatch,
		"stone_lookup":  s.toolStoneLookup,
		"resolve_goals": s.toolResolveGoals,
		"plan_history":  s.toolPlanHistory,
	}
	return s
}

// Run serves on stdin and stdout until the client hangs up or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one request per line from r and writes each reply as a line
// on w. It returns nil once r is drained.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	s.logger.Info("mcp server listening", "version", Version)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		resp := s.dispatch(ctx, line)
		if resp == nil {
			continue
		}
		if err := writeLine(w, resp); err != nil {
			s.logger.Error("writing response", "error", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// dispatch decodes one message and runs its method. It returns nil for
// notifications.
func (s *Server) dispatch(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, ErrCodeParse, "Parse error", err.Error())
	}
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch {
	case req.ID == nil && strings.HasPrefix(req.Method, "notifications/"):
		return nil
	case req.Method == "":
		return errorResponse(req.ID, ErrCodeInvalidReq, "Invalid request: missing method", nil)
	}

	handle, ok := s.methods[req.Method]
	if !ok {
		return errorResponse(req.ID, ErrCodeMethodNotFound, "Method not found: "+req.Method, nil)
	}

	result, err := handle(ctx, req.Params)
	if err != nil {
		code := ErrCodeInternal
		var pe *paramsError
		if errors.As(err, &pe) {
			code = ErrCodeInvalidParams
		}
		return errorResponse(req.ID, code, err.Error(), nil)
	}
	return resultResponse(req.ID, result)
}

func writeLine(w io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func (s *Server) handleInitialize(context.Context, json.RawMessage) (any, error) {
	return InitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      ServerInfo{Name: "stone-planner", Version: Version},
		Capabilities:    Capabilities{Tools: &ToolsCapability{}},
	}, nil
}

func (s *Server) handlePing(context.Context, json.RawMessage) (any, error) {
	return struct{}{}, nil
}

func (s *Server) handleToolsList(context.Context, json.RawMessage) (any, error) {
	return ToolsListResult{Tools: GetToolDefinitions()}, nil
}

// handleToolsCall runs one tool. A failing tool still answers with a result,
// flagged IsError; only undecodable params become a protocol error.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var call ToolCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, &paramsError{err: err}
	}
	if len(call.Arguments) == 0 {
		call.Arguments = json.RawMessage("{}")
	}

	tool, ok := s.tools[call.Name]
	if !ok {
		return textResult("unknown tool: "+call.Name, true), nil
	}

	s.logger.Debug("tool call", "name", call.Name)
	out, err := tool(ctx, call.Arguments)
	if err != nil {
		s.logger.Debug("tool error", "name", call.Name, "error", err)
		return textResult(err.Error(), true), nil
	}

	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s result: %w", call.Name, err)
	}
	return textResult(string(body), false), nil
}
