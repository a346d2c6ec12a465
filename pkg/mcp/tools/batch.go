package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/services"
)

// MaxBatchSize is the maximum number of orders allowed per batch call.
const MaxBatchSize = 50

// BatchToolDeps contains dependencies for the batch tool.
type BatchToolDeps struct {
	Pipeline services.PipelineService
	Logger   *zap.Logger
}

// RegisterBatchTool registers the process_batch MCP tool. Items without
// article text run the preflight stage; items with article text run QC.
// Per-order failures never abort the batch.
func RegisterBatchTool(s *server.MCPServer, deps *BatchToolDeps) {
	tool := mcp.NewTool(
		"process_batch",
		mcp.WithDescription(
			"Runs a pipeline stage for multiple orders concurrently. "+
				"Items with article_text run QC validation, items without run preflight. "+
				fmt.Sprintf("Maximum %d items per call.", MaxBatchSize),
		),
		mcp.WithArray(
			"items",
			mcp.Required(),
			mcp.Description("Array of batch items, each with order_ref and optional article_text and auto_fix"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"order_ref":    map[string]any{"type": "string", "description": "Order reference"},
					"article_text": map[string]any{"type": "string", "description": "Markdown article draft; presence selects the QC stage"},
					"auto_fix":     map[string]any{"type": "boolean", "description": "Apply at most one automatic fix before scoring"},
				},
				"required": []string{"order_ref"},
			}),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := parseBatchItems(req)
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		if len(items) == 0 {
			return NewErrorResult("invalid_params", "items array cannot be empty"), nil
		}
		if len(items) > MaxBatchSize {
			return NewErrorResultWithDetails(
				"invalid_params",
				fmt.Sprintf("too many items: maximum %d allowed per call, got %d", MaxBatchSize, len(items)),
				map[string]any{"max_allowed": MaxBatchSize, "received": len(items)},
			), nil
		}

		result := deps.Pipeline.ProcessBatch(ctx, items)
		return marshalResult(result)
	})
}

func parseBatchItems(req mcp.CallToolRequest) ([]services.BatchItem, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid request arguments")
	}
	rawItems, ok := args["items"].([]any)
	if !ok {
		return nil, fmt.Errorf("'items' must be an array")
	}

	items := make([]services.BatchItem, 0, len(rawItems))
	for i, raw := range rawItems {
		itemMap, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item at index %d must be an object", i)
		}
		orderRef, ok := itemMap["order_ref"].(string)
		if !ok || orderRef == "" {
			return nil, fmt.Errorf("item at index %d: 'order_ref' is required and must be a non-empty string", i)
		}
		item := services.BatchItem{OrderRef: orderRef}
		if text, ok := itemMap["article_text"].(string); ok {
			item.ArticleText = text
		}
		if autoFix, ok := itemMap["auto_fix"].(bool); ok {
			item.AutoFix = autoFix
		}
		items = append(items, item)
	}
	return items, nil
}
