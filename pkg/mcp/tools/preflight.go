package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/services"
)

// PreflightToolDeps contains dependencies for the preflight tool.
type PreflightToolDeps struct {
	Pipeline services.PipelineService
	Logger   *zap.Logger
}

// RegisterPreflightTool registers the build_preflight MCP tool. The tool
// drives the full preflight stage: state transition, matrix build, writer
// brief rendering and persistence.
func RegisterPreflightTool(s *server.MCPServer, deps *PreflightToolDeps) {
	tool := mcp.NewTool(
		"build_preflight",
		mcp.WithDescription("Builds the preflight matrix and writer brief for a PENDING order and moves it to WRITING"),
		mcp.WithString("order_ref", mcp.Required(), mcp.Description("Order reference")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orderRef, err := req.RequireString("order_ref")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}

		result, err := deps.Pipeline.RunPreflight(ctx, orderRef)
		if err != nil {
			if errResult := NewDomainErrorResult(err); errResult != nil {
				return errResult, nil
			}
			deps.Logger.Error("build_preflight failed", zap.String("order_ref", orderRef), zap.Error(err))
			return nil, fmt.Errorf("failed to build preflight: %w", err)
		}
		return marshalResult(result)
	})
}
