// Package funcurl serves the planner behind an AWS Lambda function URL.
package funcurl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/rsned/stone-planner-server/internal/stones/engine"
	"github.com/rsned/stone-planner-server/pkg/stones"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// Handler maps function URL requests onto engine calls. POST / and
// POST /plan take a plan_build body, POST /batch a plan_batch body and
// POST /resolve a resolve_goals body.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a Handler over eng.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// Handle serves one function URL invocation.
func (h *Handler) Handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	if m := event.RequestContext.HTTP.Method; m != "" && m != http.MethodPost {
		return errResp(http.StatusMethodNotAllowed, "use POST")
	}

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(http.StatusBadRequest, "invalid base64 body")
		}
		body = string(decoded)
	}

	var (
		result any
		err    error
	)
	switch strings.TrimSuffix(event.RawPath, "/") {
	case "", "/plan":
		var req stones.PlanBuildRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return errResp(http.StatusBadRequest, "invalid JSON: "+err.Error())
		}
		result, err = h.engine.PlanBuild(ctx, req)
	case "/batch":
		var req stones.PlanBatchRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return errResp(http.StatusBadRequest, "invalid JSON: "+err.Error())
		}
		result, err = h.engine.PlanBatch(ctx, req)
	case "/resolve":
		var req stones.ResolveGoalsRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return errResp(http.StatusBadRequest, "invalid JSON: "+err.Error())
		}
		result, err = h.engine.ResolveGoals(ctx, req)
	default:
		return errResp(http.StatusNotFound, "unknown path "+event.RawPath)
	}

	if err != nil {
		if errors.Is(err, engine.ErrInvalidOptions) {
			return errResp(http.StatusBadRequest, err.Error())
		}
		return errResp(http.StatusInternalServerError, err.Error())
	}

	respJSON, err := json.Marshal(result)
	if err != nil {
		return errResp(http.StatusInternalServerError, "encoding result: "+err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: http.StatusOK, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}
