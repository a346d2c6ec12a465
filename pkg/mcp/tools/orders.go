// Package tools provides the MCP tool surface of the backlink content
// engine.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
	"github.com/robwestz/mcp-blcwrtr/pkg/services"
)

// OrderToolDeps contains dependencies for order tools.
type OrderToolDeps struct {
	OrderService services.OrderService
	Logger       *zap.Logger
}

// RegisterOrderTools registers order lifecycle MCP tools.
func RegisterOrderTools(s *server.MCPServer, deps *OrderToolDeps) {
	registerCreateOrderTool(s, deps)
	registerGetOrderTool(s, deps)
	registerAdvanceOrderTool(s, deps)
}

func registerCreateOrderTool(s *server.MCPServer, deps *OrderToolDeps) {
	tool := mcp.NewTool(
		"create_order",
		mcp.WithDescription("Accepts a new backlink content order in state PENDING"),
		mcp.WithString("order_ref", mcp.Required(), mcp.Description("Unique order reference")),
		mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer reference")),
		mcp.WithString("publication_domain", mcp.Required(), mcp.Description("Domain the article will be published on")),
		mcp.WithString("target_url", mcp.Required(), mcp.Description("URL the anchor links to")),
		mcp.WithString("anchor_text", mcp.Required(), mcp.Description("Requested anchor text")),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Article topic")),
		mcp.WithString("locale", mcp.Description("BCP 47 locale, defaults to sv-SE")),
		mcp.WithNumber("word_count", mcp.Description("Target word count, defaults to 800")),
		mcp.WithString("tone", mcp.Description("Requested tone")),
		mcp.WithString("compliance", mcp.Description("Comma-separated compliance tags, e.g. gambling")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		order := &models.Order{}
		var err error
		if order.OrderRef, err = req.RequireString("order_ref"); err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		if order.CustomerID, err = req.RequireString("customer_id"); err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		if order.PublicationDomain, err = req.RequireString("publication_domain"); err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		if order.TargetURL, err = req.RequireString("target_url"); err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		if order.AnchorText, err = req.RequireString("anchor_text"); err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		if order.Topic, err = req.RequireString("topic"); err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		order.Locale = req.GetString("locale", "")
		order.Constraints.WordCount = int(req.GetFloat("word_count", 0))
		order.Constraints.Tone = req.GetString("tone", "")
		if tags := req.GetString("compliance", ""); tags != "" {
			for _, tag := range strings.Split(tags, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					order.Constraints.Compliance = append(order.Constraints.Compliance, tag)
				}
			}
		}

		if err := deps.OrderService.Create(ctx, order); err != nil {
			if result := NewDomainErrorResult(err); result != nil {
				return result, nil
			}
			deps.Logger.Error("create_order failed", zap.Error(err))
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		return marshalResult(order)
	})
}

func registerGetOrderTool(s *server.MCPServer, deps *OrderToolDeps) {
	tool := mcp.NewTool(
		"get_order",
		mcp.WithDescription("Returns an order with its current lifecycle state"),
		mcp.WithString("order_ref", mcp.Required(), mcp.Description("Order reference")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orderRef, err := req.RequireString("order_ref")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}

		order, err := deps.OrderService.Get(ctx, orderRef)
		if err != nil {
			if result := NewDomainErrorResult(err); result != nil {
				return result, nil
			}
			deps.Logger.Error("get_order failed", zap.String("order_ref", orderRef), zap.Error(err))
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		return marshalResult(order)
	})
}

func registerAdvanceOrderTool(s *server.MCPServer, deps *OrderToolDeps) {
	tool := mcp.NewTool(
		"advance_order",
		mcp.WithDescription("Moves an order to a new lifecycle state; illegal transitions are rejected"),
		mcp.WithString("order_ref", mcp.Required(), mcp.Description("Order reference")),
		mcp.WithString("to_state", mcp.Required(), mcp.Description("Target state, e.g. PREFLIGHT, CANCELLED")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orderRef, err := req.RequireString("order_ref")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}
		toState, err := req.RequireString("to_state")
		if err != nil {
			return NewErrorResult("invalid_params", err.Error()), nil
		}

		order, err := deps.OrderService.Advance(ctx, orderRef, models.OrderState(strings.ToUpper(toState)))
		if err != nil {
			if result := NewDomainErrorResult(err); result != nil {
				return result, nil
			}
			deps.Logger.Error("advance_order failed", zap.String("order_ref", orderRef), zap.Error(err))
			return nil, fmt.Errorf("failed to advance order: %w", err)
		}
		return marshalResult(order)
	})
}

// marshalResult renders any payload as a JSON tool result.
func marshalResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
