package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/services"
)

// QCToolDeps contains dependencies for the QC tool.
type QCToolDeps struct {
	Pipeline services.PipelineService
	Logger   *zap.Logger
}

// qcValidateResult is the tool payload: the validation report plus the
// article text after any applied auto-fix.
type qcValidateResult struct {
	Report      *models.ValidationReport `json:"report"`
	ArticleText string                   `json:"article_text"`
}

// RegisterQCTool registers the qc_validate MCP tool. The tool runs the QC
// stage end to end: the article is scored against the order's preflight
// matrix and the order advances according to the report status.
func RegisterQCTool(s *server.MCPServer, deps *QCToolDeps) {
	tool := mcp.NewTool(
		"qc_validate",
		mcp.WithDescription("Validates a draft article against its preflight matrix and advances the order"),
		mcp.WithString("order_ref", mcp.Required(), mcp.Description("Order reference")),
		mcp.WithString("article_text", mcp.Required(), mcp.Description("Markdown article draft")),
		mcp.WithBoolean("auto_fix", mcp.Description("Apply at most one automatic fix before scoring")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orderRef, err := req.RequireString("order_ref")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		articleText, err := req.RequireString("article_text")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		autoFix := req.GetBool("auto_fix", false)

		report, fixedText, err := deps.Pipeline.RunQC(ctx, orderRef, articleText, autoFix)
		if err != nil {
			if errResult := NewDomainErrorResult(err); errResult != nil {
				return errResult, nil
			}
			deps.Logger.Error("qc_validate failed", zap.String("order_ref", orderRef), zap.Error(err))
			return nil, fmt.Errorf("failed to validate article: %w", err)
		}
		return marshalResult(&qcValidateResult{Report: report, ArticleText: fixedText})
	})
}
