package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool names
const (
	AskToolName  = "ask-financial-assistance"
	ListToolName = "list-financial-schemes"
)

// AskSpec returns the tool specification for ask-financial-assistance
func AskSpec() mcp.Tool {
	return mcp.NewTool(AskToolName,
		mcp.WithDescription(`Answers a student's question about financial assistance schemes.

The question is matched against the scheme catalog, the details of the matching schemes are
looked up, and an answer is written using only those details. The result contains the answer
text followed by the JSON details of the schemes it was based on.`),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The customer question, e.g. \"I need help paying my tuition fees\""),
		),
		mcp.WithTitleAnnotation("Ask about financial assistance"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// ListSpec returns the tool specification for list-financial-schemes
func ListSpec() mcp.Tool {
	return mcp.NewTool(ListToolName,
		mcp.WithDescription(`Lists the financial assistance schemes in the catalog as JSON.

Without arguments every scheme record and the category index are returned. With a category,
only the schemes listed under that category are returned.`),
		mcp.WithString("category",
			mcp.Description("Optional category name to filter by"),
		),
		mcp.WithTitleAnnotation("List financial assistance schemes"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}
