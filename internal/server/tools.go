package server

import "github.com/ironsheep/image-modifier-mcp/internal/modifier"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

const (
	toolImageModify = "image_modify"
	toolImageEXIF   = "image_exif"
)

// flexible accepts the text, number or boolean forms a client may send;
// all of them are converted to text before validation.
func flexible(description string, types ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        types,
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: toolImageModify,
			Description: "Load an image, optionally downscale it and convert it to grayscale, then re-encode it as JPEG. " +
				"The result is written to a new file in the cache directory (imageURI) or returned as base64 text (base64String). " +
				"With extractEXIF the EXIF, GPS and TIFF tags of the original image are returned as JSON (exif).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					modifier.FieldPath: map[string]interface{}{
						"type":        "string",
						"description": "File path, file:// URI, content:// handle or data:image/{png,jpeg,jpg};base64,... URI",
					},
					modifier.FieldResizeRatio: flexible(
						"Scale factor strictly between 0 and 1. Other values leave the size unchanged.",
						"number", "string"),
					modifier.FieldGrayscale: flexible(
						"Convert to grayscale using L = 0.3R + 0.59G + 0.11B",
						"boolean", "string"),
					modifier.FieldImageQuality: flexible(
						"JPEG quality between 0 and 1. Default 1.0",
						"number", "string"),
					modifier.FieldBase64: flexible(
						"Return base64 text instead of writing a file. Default false",
						"boolean", "string"),
					modifier.FieldExtractEXIF: flexible(
						"Presence requests metadata extraction; the value is ignored",
						"boolean", "string"),
				},
				"required": []string{modifier.FieldPath},
			},
		},
		{
			Name:        toolImageEXIF,
			Description: "Read the EXIF, GPS and TIFF tags of an image without modifying it. Returns the tags as JSON (exif).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					modifier.FieldPath: map[string]interface{}{
						"type":        "string",
						"description": "File path, file:// URI, content:// handle or data: URI",
					},
				},
				"required": []string{modifier.FieldPath},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
