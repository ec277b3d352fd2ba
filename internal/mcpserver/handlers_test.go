package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/catalog"
	"github.com/ppiankov/schemeqa/internal/model"
)

type stubAnswerer struct {
	questions []string
	result    *model.Result
}

func (s *stubAnswerer) Answer(_ context.Context, question string) *model.Result {
	s.questions = append(s.questions, question)
	return s.result
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]model.SchemeRecord{
			{Name: "Tuition Fee Loan", Attributes: []model.Attribute{{Key: "Amount", Value: "$500"}}},
			{Name: "NP Emergency Grant", Attributes: []model.Attribute{{Key: "Amount", Value: "$200"}}},
		},
		model.CategoryIndex{
			{Name: "Loans", Schemes: []string{"Tuition Fee Loan", "Government Study Loan"}},
			{Name: "Grants", Schemes: []string{"NP Emergency Grant"}},
		},
	)
	require.NoError(t, err)
	return cat
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestAskHandler(t *testing.T) {
	cat := testCatalog(t)
	rec, _ := cat.Lookup("Tuition Fee Loan")
	answerer := &stubAnswerer{result: &model.Result{
		RequestID: "req-1",
		Answer:    "The Tuition Fee Loan covers $500.",
		Details:   []model.SchemeRecord{rec},
	}}
	handler := AskHandler(answerer, zap.NewNop())

	result, err := handler(context.Background(), callRequest(map[string]any{"question": "  tuition help  "}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "The Tuition Fee Loan covers $500.")
	assert.Contains(t, text, `"Financial_Scheme": "Tuition Fee Loan"`)
	assert.Equal(t, []string{"tuition help"}, answerer.questions)
}

func TestAskHandler_NoDetails(t *testing.T) {
	answerer := &stubAnswerer{result: &model.Result{Answer: "Nothing found."}}
	result, err := AskHandler(answerer, zap.NewNop())(context.Background(), callRequest(map[string]any{"question": "weather?"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Scheme details:\n[]")
}

func TestAskHandler_MissingQuestion(t *testing.T) {
	answerer := &stubAnswerer{}
	result, err := AskHandler(answerer, zap.NewNop())(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, answerer.questions)
}

func TestListHandler_All(t *testing.T) {
	result, err := ListHandler(testCatalog(t), zap.NewNop())(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		Schemes    []map[string]string `json:"schemes"`
		Categories []model.Category    `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Len(t, out.Schemes, 2)
	assert.Equal(t, "Tuition Fee Loan", out.Schemes[0]["Financial_Scheme"])
	assert.Len(t, out.Categories, 2)
}

func TestListHandler_Category(t *testing.T) {
	result, err := ListHandler(testCatalog(t), zap.NewNop())(context.Background(), callRequest(map[string]any{"category": "Loans"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		Category string              `json:"category"`
		Schemes  []map[string]string `json:"schemes"`
		Missing  []string            `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "Loans", out.Category)
	require.Len(t, out.Schemes, 1)
	assert.Equal(t, "$500", out.Schemes[0]["Amount"])
	assert.Equal(t, []string{"Government Study Loan"}, out.Missing)
}

func TestListHandler_UnknownCategory(t *testing.T) {
	result, err := ListHandler(testCatalog(t), zap.NewNop())(context.Background(), callRequest(map[string]any{"category": "Bursaries"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestNew_RegistersTools(t *testing.T) {
	tools := Tools(&stubAnswerer{}, testCatalog(t), zap.NewNop())
	require.Len(t, tools, 2)
	assert.Equal(t, AskToolName, tools[0].Tool.Name)
	assert.Equal(t, ListToolName, tools[1].Tool.Name)

	s := New("test", &stubAnswerer{}, testCatalog(t), nil)
	assert.NotNil(t, s.MCPServer)
}
