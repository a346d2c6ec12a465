package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
	"github.com/robwestz/mcp-blcwrtr/pkg/services"
)

// PortfolioToolDeps contains dependencies for portfolio tools.
type PortfolioToolDeps struct {
	PortfolioService services.PortfolioService
	PortfolioRepo    repositories.PortfolioRepository
	Logger           *zap.Logger
}

// RegisterPortfolioTools registers anchor portfolio MCP tools.
func RegisterPortfolioTools(s *server.MCPServer, deps *PortfolioToolDeps) {
	registerAnalyzePortfolioTool(s, deps)
	registerRecordPlacementTool(s, deps)
}

func registerAnalyzePortfolioTool(s *server.MCPServer, deps *PortfolioToolDeps) {
	tool := mcp.NewTool(
		"analyze_anchor_portfolio",
		mcp.WithDescription("Simulates adding one anchor of the given type to a target domain's portfolio and reports the risk delta"),
		mcp.WithString("target_domain", mcp.Required(), mcp.Description("Domain the anchors point at")),
		mcp.WithString("anchor_type", mcp.Required(), mcp.Description("Proposed anchor type: exact, partial, brand or generic")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		targetDomain, err := req.RequireString("target_domain")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		rawType, err := req.RequireString("anchor_type")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		anchorType, ok := parseAnchorType(rawType)
		if !ok {
			return NewErrorResult("invalid_params", fmt.Sprintf("unknown anchor type %q", rawType)), nil
		}

		portfolio, err := deps.PortfolioRepo.GetByTargetDomain(ctx, targetDomain)
		if err != nil {
			deps.Logger.Error("analyze_anchor_portfolio failed", zap.String("target_domain", targetDomain), zap.Error(err))
			return nil, fmt.Errorf("failed to load portfolio: %w", err)
		}

		oldMix := portfolio.Counts()
		newMix := portfolio.Counts()
		newMix[anchorType]++

		analysis := deps.PortfolioService.Analyze(targetDomain, oldMix, newMix)
		return marshalResult(analysis)
	})
}

func registerRecordPlacementTool(s *server.MCPServer, deps *PortfolioToolDeps) {
	tool := mcp.NewTool(
		"record_anchor_placement",
		mcp.WithDescription("Records a placed anchor against a target domain's portfolio and recomputes its risk"),
		mcp.WithString("target_domain", mcp.Required(), mcp.Description("Domain the anchor points at")),
		mcp.WithString("anchor_type", mcp.Required(), mcp.Description("Placed anchor type: exact, partial, brand or generic")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		targetDomain, err := req.RequireString("target_domain")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		rawType, err := req.RequireString("anchor_type")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		anchorType, ok := parseAnchorType(rawType)
		if !ok {
			return NewErrorResult("invalid_params", fmt.Sprintf("unknown anchor type %q", rawType)), nil
		}

		portfolio, err := deps.PortfolioService.RecordPlacement(ctx, targetDomain, anchorType)
		if err != nil {
			if result := NewDomainErrorResult(err); result != nil {
				return result, nil
			}
			deps.Logger.Error("record_anchor_placement failed", zap.String("target_domain", targetDomain), zap.Error(err))
			return nil, fmt.Errorf("failed to record placement: %w", err)
		}
		return marshalResult(portfolio)
	})
}

func parseAnchorType(raw string) (models.AnchorType, bool) {
	candidate := models.AnchorType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range models.ValidAnchorTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}
