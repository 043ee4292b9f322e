package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/stone-planner-server/internal/stones/db"
	"github.com/rsned/stone-planner-server/internal/stones/engine"
	"github.com/rsned/stone-planner-server/internal/stones/planner"
	"github.com/rsned/stone-planner-server/internal/stones/registry"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	database, err := db.OpenAndInit(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	p := planner.New(registry.Default(), planner.DefaultConfig(), logger)
	return NewServer(engine.New(p, database, engine.DefaultCacheSize, logger), logger)
}

// roundTrip feeds the lines to the server and decodes one response per line
// of output.
func roundTrip(t *testing.T, s *Server, lines ...string) []Response {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out))

	var resps []Response
	sc := bufio.NewScanner(&out)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var r Response
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		resps = append(resps, r)
	}
	return resps
}

// toolText extracts the text block of a tools/call result.
func toolText(t *testing.T, r Response) (string, bool) {
	t.Helper()
	require.Nil(t, r.Error)
	data, err := json.Marshal(r.Result)
	require.NoError(t, err)
	var res ToolCallResult
	require.NoError(t, json.Unmarshal(data, &res))
	require.Len(t, res.Content, 1)
	return res.Content[0].Text, res.IsError
}

func TestInitializeAndList(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	)
	require.Len(t, resps, 2)

	data, err := json.Marshal(resps[1].Result)
	require.NoError(t, err)
	var list ToolsListResult
	require.NoError(t, json.Unmarshal(data, &list))

	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"plan_build", "plan_batch", "stone_lookup", "resolve_goals", "plan_history"}, names)
}

func TestProtocolErrors(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s,
		`not json`,
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":"oops"}`,
	)
	require.Len(t, resps, 3)

	assert.Equal(t, ErrCodeParse, resps[0].Error.Code)
	assert.Equal(t, ErrCodeMethodNotFound, resps[1].Error.Code)
	assert.Equal(t, ErrCodeInvalidParams, resps[2].Error.Code)
}

func TestPlanBuildTool(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"plan_build","arguments":{"goals":[{"stat":"Dodge","value":30},{"stat":"DR","value":20}]}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"plan_history","arguments":{}}}`,
	)
	require.Len(t, resps, 2)

	text, isErr := toolText(t, resps[0])
	require.False(t, isErr, text)
	var res stones.PlanResult
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 5, res.Plan.SocketsUsed)

	text, isErr = toolText(t, resps[1])
	require.False(t, isErr, text)
	var hist stones.PlanHistoryResponse
	require.NoError(t, json.Unmarshal([]byte(text), &hist))
	require.Len(t, hist.Runs, 1)
	assert.Equal(t, res.PlanID, hist.Runs[0].ID)
}

func TestToolErrorsAreResults(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"plan_build","arguments":{"goals":[],"options":{"maxMerges":-2}}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"nope"}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"stone_lookup","arguments":{"stone":"obsidian"}}}`,
	)
	require.Len(t, resps, 3)

	text, isErr := toolText(t, resps[0])
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid plan options")

	text, isErr = toolText(t, resps[1])
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown tool")

	text, isErr = toolText(t, resps[2])
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown stone")
}

func TestStoneLookupAndResolveTools(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"stone_lookup","arguments":{"stone":"yellow"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"resolve_goals","arguments":{"goals":[{"stat":"Zombie Damage Reduction","value":40},{"stat":"Crit","value":3}]}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"plan_batch","arguments":{"requests":[{"goals":[{"stat":"HP","value":300}]},{"goals":[]}]}}}`,
	)
	require.Len(t, resps, 3)

	text, isErr := toolText(t, resps[0])
	require.False(t, isErr, text)
	var lookup stones.StoneLookupResponse
	require.NoError(t, json.Unmarshal([]byte(text), &lookup))
	require.NotNil(t, lookup.Stone)
	assert.Equal(t, "MS", lookup.Stone.DefensiveStat)

	text, isErr = toolText(t, resps[1])
	require.False(t, isErr, text)
	var resolved stones.ResolveGoalsResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resolved))
	assert.Equal(t, map[string]float64{"ZDR": 40}, resolved.Goals)
	assert.Len(t, resolved.Dropped, 1)

	text, isErr = toolText(t, resps[2])
	require.False(t, isErr, text)
	var batch stones.PlanBatchResponse
	require.NoError(t, json.Unmarshal([]byte(text), &batch))
	require.Len(t, batch.Results, 2)
	assert.True(t, batch.Results[0].Success)
	assert.Equal(t, planner.ReasonNoGoals, batch.Results[1].Reason)
}

func TestPingAndBlankLines(t *testing.T) {
	s := newTestServer(t)

	resps := roundTrip(t, s,
		``,
		`{"jsonrpc":"2.0","id":7,"method":"ping"}`,
		`   `,
	)
	require.Len(t, resps, 1)
	assert.Nil(t, resps[0].Error)
	assert.EqualValues(t, 7, resps[0].ID)
}
