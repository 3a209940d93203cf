package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/nihonto-search/internal/query"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// handleSearchListings handles the search_listings tool invocation
func (s *Server) handleSearchListings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	req, token := requestFromArgs(args)
	resp, err := s.search.Search(ctx, req, token)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"listings":    resp.Listings,
		"total":       resp.Total,
		"page":        resp.Page,
		"total_pages": resp.TotalPages,
		"is_delayed":  resp.IsDelayed,
		"tier":        resp.SubscriptionTier,
	}
	if resp.IsURLSearch {
		response["is_url_search"] = true
	}
	if resp.LastUpdated != nil {
		response["last_updated"] = resp.LastUpdated.Format("2006-01-02T15:04:05Z07:00")
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetFacets handles the get_facets tool invocation
func (s *Server) handleGetFacets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	req, token := requestFromArgs(args)
	req.Limit = 1 // facet callers don't need the page itself

	resp, err := s.search.Search(ctx, req, token)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "facet aggregation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"total":           resp.Total,
		"facets":          resp.Facets,
		"price_histogram": resp.PriceHistogram,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListDealers handles the list_dealers tool invocation
func (s *Server) handleListDealers(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dealers, err := s.search.Dealers(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "dealer listing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"dealers": dealers})), nil
}

// requestFromArgs maps loosely typed tool arguments onto a search request.
// Unknown or mistyped values fall back to defaults, matching the clamping
// behavior of the HTTP surface.
func requestFromArgs(args map[string]interface{}) (query.Request, string) {
	req := query.Request{
		Text:           getStringDefault(args, "query", ""),
		Tab:            query.Tab(getStringDefault(args, "tab", "")),
		Category:       getStringDefault(args, "category", ""),
		ItemTypes:      stringSlice(args, "item_types"),
		Certifications: stringSlice(args, "certifications"),
		Schools:        stringSlice(args, "schools"),
		DealerIDs:      int64Slice(args, "dealer_ids"),
		Periods:        stringSlice(args, "periods"),
		Signatures:     stringSlice(args, "signatures"),
		AskOnly:        getBoolDefault(args, "ask_only", false),
		Sort:           query.Sort(getStringDefault(args, "sort", "")),
		Page:           getIntDefault(args, "page", 1),
		Limit:          getIntDefault(args, "limit", 0),
	}
	if v, ok := args["price_min"].(float64); ok && v >= 0 {
		n := int64(v)
		req.PriceMin = &n
	}
	if v, ok := args["price_max"].(float64); ok && v >= 0 {
		n := int64(v)
		req.PriceMax = &n
	}
	return req, getStringDefault(args, "token", "")
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// stringSlice extracts a string array parameter
func stringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// int64Slice extracts an integer array parameter
func int64Slice(args map[string]interface{}, key string) []int64 {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	var out []int64
	for _, v := range raw {
		if n, ok := v.(float64); ok && n > 0 {
			out = append(out, int64(n))
		}
	}
	return out
}
