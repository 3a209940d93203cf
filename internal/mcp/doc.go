// Package mcp implements the Model Context Protocol (MCP) server for
// nihonto-search.
//
// The MCP server exposes three tools to AI assistants:
//   - search_listings: Search aggregated sword and fitting listings
//   - get_facets: Get cross-filtered facet counts and the price histogram
//   - list_dealers: List the aggregated dealers
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Tool: search_listings
//
// Search the aggregated catalog:
//
//	Request:
//	{
//	  "name": "search_listings",
//	  "arguments": {
//	    "query": "juyo katana bizen",
//	    "tab": "available",
//	    "sort": "price_desc",
//	    "page": 1
//	  }
//	}
//
//	Response:
//	{
//	  "listings": [...],
//	  "total": 182,
//	  "page": 1,
//	  "total_pages": 8,
//	  "is_delayed": true,
//	  "tier": "free"
//	}
//
// # Tool: get_facets
//
// Count what each filter bucket would hold under the current filters:
//
//	Request:
//	{
//	  "name": "get_facets",
//	  "arguments": {
//	    "category": "blades",
//	    "certifications": ["juyo"]
//	  }
//	}
//
//	Response:
//	{
//	  "total": 182,
//	  "facets": {"itemTypes": [...], "certifications": [...], ...},
//	  "price_histogram": [...]
//	}
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params"
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (storage, compilation)
//
// # Logging
//
// The MCP server logs to stderr (stdout is reserved for MCP protocol).
package mcp
