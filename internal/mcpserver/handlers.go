package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/model"
)

// Answerer answers one question without failing
type Answerer interface {
	Answer(ctx context.Context, question string) *model.Result
}

// Catalog is the read side of the scheme catalog
type Catalog interface {
	Lookup(name string) (model.SchemeRecord, bool)
	Categories() model.CategoryIndex
	Schemes() []model.SchemeRecord
}

type askInput struct {
	Question string `json:"question"`
}

type listInput struct {
	Category string `json:"category"`
}

type listOutput struct {
	Category   string               `json:"category,omitempty"`
	Schemes    []model.SchemeRecord `json:"schemes"`
	Missing    []string             `json:"missing,omitempty"`
	Categories model.CategoryIndex  `json:"categories,omitempty"`
}

// AskHandler returns the tool handler for ask-financial-assistance
func AskHandler(answerer Answerer, logger *zap.Logger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args askInput
		if err := request.BindArguments(&args); err != nil {
			logger.Error("error binding arguments", zap.String("tool", AskToolName), zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		question := strings.TrimSpace(args.Question)
		if question == "" {
			return mcp.NewToolResultError("question parameter is required"), nil
		}

		res := answerer.Answer(ctx, question)
		details, err := model.DetailsJSON(res.Details)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("serialize details: %v", err)), nil
		}

		logger.Info("tool answered",
			zap.String("tool", AskToolName),
			zap.String("request_id", res.RequestID),
			zap.Bool("degraded", res.Degraded),
		)
		return mcp.NewToolResultText(res.Answer + "\n\nScheme details:\n" + details), nil
	}
}

// ListHandler returns the tool handler for list-financial-schemes
func ListHandler(catalog Catalog, logger *zap.Logger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args listInput
		if err := request.BindArguments(&args); err != nil {
			logger.Error("error binding arguments", zap.String("tool", ListToolName), zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}

		var out listOutput
		if name := strings.TrimSpace(args.Category); name != "" {
			cat, ok := catalog.Categories().Find(name)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown category %q", name)), nil
			}
			out.Category = cat.Name
			out.Schemes = []model.SchemeRecord{}
			for _, scheme := range cat.Schemes {
				if rec, ok := catalog.Lookup(scheme); ok {
					out.Schemes = append(out.Schemes, rec)
				} else {
					out.Missing = append(out.Missing, scheme)
				}
			}
		} else {
			out.Schemes = catalog.Schemes()
			out.Categories = catalog.Categories()
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
