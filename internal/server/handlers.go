package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke ("image_modify" or "image_exif").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// A failed modification is still a successful call whose result carries
// success:false. Only argument errors and aborted calls return a JSON-RPC
// error, with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case toolImageModify:
		return s.handleImageModify(args)
	case toolImageEXIF:
		return s.handleImageEXIF(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func (s *Server) handleImageModify(args json.RawMessage) (interface{}, error) {
	fields, err := textArguments(args)
	if err != nil {
		return nil, err
	}
	return s.modifier.Modify(fields)
}

type imageEXIFArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageEXIF(args json.RawMessage) (interface{}, error) {
	var a imageEXIFArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	return s.modifier.Metadata(a.Path), nil
}

// textArguments flattens a JSON object into the text mapping the modifier
// expects. Numbers keep their literal spelling, booleans become "true" or
// "false" and null becomes an empty string; the key stays present so that
// presence flags still register.
func textArguments(args json.RawMessage) (map[string]string, error) {
	fields := map[string]string{}
	if len(bytes.TrimSpace(args)) == 0 {
		return fields, nil
	}

	var raw map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	for key, v := range raw {
		switch val := v.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = val
		case bool:
			fields[key] = strconv.FormatBool(val)
		case json.Number:
			fields[key] = val.String()
		default:
			return nil, fmt.Errorf("argument %q must be a string, number or boolean", key)
		}
	}
	return fields, nil
}
