package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchListingsTool returns the tool definition for search_listings
func searchListingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_listings",
		Description: "Search aggregated Japanese sword and fitting listings with filters and free text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free text: romaji terms, Japanese text, a maker name, or a pasted dealer URL",
				},
				"tab": map[string]interface{}{
					"type":        "string",
					"description": "Availability scope",
					"enum":        []string{"available", "sold", "all"},
					"default":     "available",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Broad category gate (blades, tosogu, other)",
				},
				"item_types": map[string]interface{}{
					"type":        "array",
					"description": "Item type filter (katana, wakizashi, tanto, tsuba, ...)",
					"items":       map[string]interface{}{"type": "string"},
				},
				"certifications": map[string]interface{}{
					"type":        "array",
					"description": "Certification filter (juyo, tokubetsu hozon, ...)",
					"items":       map[string]interface{}{"type": "string"},
				},
				"schools": map[string]interface{}{
					"type":        "array",
					"description": "School filter",
					"items":       map[string]interface{}{"type": "string"},
				},
				"dealer_ids": map[string]interface{}{
					"type":        "array",
					"description": "Restrict to specific dealer IDs",
					"items":       map[string]interface{}{"type": "integer"},
				},
				"periods": map[string]interface{}{
					"type":        "array",
					"description": "Historical period filter (kamakura, muromachi, edo, ...)",
					"items":       map[string]interface{}{"type": "string"},
				},
				"signatures": map[string]interface{}{
					"type":        "array",
					"description": "Signature status filter (signed, unsigned)",
					"items":       map[string]interface{}{"type": "string"},
				},
				"ask_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only price-on-request items",
					"default":     false,
				},
				"price_min": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum price in JPY",
				},
				"price_max": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum price in JPY",
				},
				"sort": map[string]interface{}{
					"type":        "string",
					"description": "Result ordering",
					"enum":        []string{"newest", "price_asc", "price_desc", "featured"},
					"default":     "newest",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (1-based)",
					"default":     1,
					"minimum":     1,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Results per page (1-100)",
					"default":     24,
					"minimum":     1,
					"maximum":     100,
				},
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Subscription token; omit for the free (delayed) tier",
				},
			},
		},
	}
}

// getFacetsTool returns the tool definition for get_facets
func getFacetsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_facets",
		Description: "Get cross-filtered facet counts and the price histogram for a filter combination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free text applied before counting",
				},
				"tab": map[string]interface{}{
					"type":        "string",
					"description": "Availability scope",
					"enum":        []string{"available", "sold", "all"},
					"default":     "available",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Broad category gate (blades, tosogu, other)",
				},
				"item_types": map[string]interface{}{
					"type":        "array",
					"description": "Item type filter",
					"items":       map[string]interface{}{"type": "string"},
				},
				"certifications": map[string]interface{}{
					"type":        "array",
					"description": "Certification filter",
					"items":       map[string]interface{}{"type": "string"},
				},
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Subscription token; omit for the free (delayed) tier",
				},
			},
		},
	}
}

// listDealersTool returns the tool definition for list_dealers
func listDealersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_dealers",
		Description: "List the dealers whose inventories are aggregated",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
