package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-modifier-mcp/internal/modifier"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// toolResult extracts the modifier response from a tools/call result.
func toolResult(t *testing.T, resp *MCPResponse) modifier.Response {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}

	var out modifier.Response
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &out); err != nil {
		t.Fatalf("failed to parse tool result: %v", err)
	}
	return out
}

func TestHandleToolsCall_ImageModifyBase64(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	resp := callTool(t, s, "image_modify", map[string]interface{}{
		"path":        "file://" + imgPath,
		"resizeRatio": 0.5,
		"grayscale":   true,
		"base64":      "true",
	})
	out := toolResult(t, resp)

	if !out.Success {
		t.Fatalf("expected success, got %q", out.ErrorMsg)
	}
	if out.ImageURI != "" {
		t.Errorf("imageURI should be empty, got %s", out.ImageURI)
	}

	data, err := base64.StdEncoding.DecodeString(out.Base64String)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not a JPEG: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 50x40", cfg.Width, cfg.Height)
	}
}

func TestHandleToolsCall_ImageModifyFile(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 20, 10, color.RGBA{0, 255, 0, 255})

	out := toolResult(t, callTool(t, s, "image_modify", map[string]interface{}{
		"path":         imgPath,
		"imageQuality": "0.5",
	}))

	if !out.Success {
		t.Fatalf("expected success, got %q", out.ErrorMsg)
	}
	if !strings.HasPrefix(out.ImageURI, "file://") || !strings.HasSuffix(out.ImageURI, ".JPEG") {
		t.Errorf("imageURI: got %s", out.ImageURI)
	}
	if _, err := os.Stat(strings.TrimPrefix(out.ImageURI, "file://")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestHandleToolsCall_ImageModifyWithEXIF(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 8, 8, color.White)

	out := toolResult(t, callTool(t, s, "image_modify", map[string]interface{}{
		"path":        imgPath,
		"base64":      true,
		"extractEXIF": nil,
	}))

	if !out.Success {
		t.Fatalf("expected success, got %q", out.ErrorMsg)
	}

	var doc map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(out.EXIF), &doc); err != nil {
		t.Fatalf("exif is not JSON: %v", err)
	}
	for _, section := range []string{"EXIF", "GPS", "TIFF"} {
		if _, ok := doc[section]; !ok {
			t.Errorf("exif missing section %s", section)
		}
	}
}

func TestHandleToolsCall_ImageModifyValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{"missing path", map[string]interface{}{"base64": true}, modifier.MsgMissingPathKey},
		{"empty path", map[string]interface{}{"path": ""}, modifier.MsgEmptyPath},
		{"null path", map[string]interface{}{"path": nil}, modifier.MsgEmptyPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := toolResult(t, callTool(t, s, "image_modify", tt.args))
			if out.Success {
				t.Fatal("expected failure")
			}
			if out.ErrorMsg != tt.wantMsg {
				t.Errorf("errorMsg: got %q, want %q", out.ErrorMsg, tt.wantMsg)
			}
		})
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)

	out := toolResult(t, callTool(t, s, "image_modify", map[string]interface{}{
		"path": "/nonexistent/image.png",
	}))
	if out.Success {
		t.Fatal("expected failure for non-existent file")
	}
	if out.ErrorMsg == "" {
		t.Error("errorMsg should describe the failure")
	}
}

func TestHandleToolsCall_ResourceExhausted(t *testing.T) {
	s := New(modifier.New(modifier.Options{CacheDir: t.TempDir(), MaxPixels: 10}))
	imgPath := createTestImageFile(t, 10, 10, color.Black)

	resp := callTool(t, s, "image_modify", map[string]interface{}{"path": imgPath})
	if resp.Error == nil {
		t.Fatal("expected a JSON-RPC error for an oversized image")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_ImageEXIF(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 8, 8, color.White)

	out := toolResult(t, callTool(t, s, "image_exif", map[string]interface{}{"path": imgPath}))
	if !out.Success {
		t.Fatalf("expected success, got %q", out.ErrorMsg)
	}
	if out.EXIF != `{"EXIF":{},"GPS":{},"TIFF":{}}` {
		t.Errorf("exif: got %s", out.EXIF)
	}

	out = toolResult(t, callTool(t, s, "image_exif", map[string]interface{}{}))
	if out.Success || out.ErrorMsg != modifier.MsgEmptyPath {
		t.Errorf("expected validation failure, got %+v", out)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	})
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	for _, name := range []string{"image_modify", "image_exif"} {
		if _, err := s.executeTool(name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("executeTool(%s) should fail for invalid JSON", name)
		}
	}
}

func TestTextArguments(t *testing.T) {
	fields, err := textArguments(json.RawMessage(`{
		"path": "/tmp/a.jpg",
		"resizeRatio": 0.25,
		"imageQuality": 1e-1,
		"grayscale": true,
		"base64": false,
		"extractEXIF": null
	}`))
	if err != nil {
		t.Fatalf("textArguments failed: %v", err)
	}

	want := map[string]string{
		"path":         "/tmp/a.jpg",
		"resizeRatio":  "0.25",
		"imageQuality": "1e-1",
		"grayscale":    "true",
		"base64":       "false",
		"extractEXIF":  "",
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d: %v", len(fields), len(want), fields)
	}
	for k, v := range want {
		if got, ok := fields[k]; !ok || got != v {
			t.Errorf("%s: got %q (present %v), want %q", k, got, ok, v)
		}
	}
}

func TestTextArguments_Rejects(t *testing.T) {
	tests := []string{
		`{"path": ["a", "b"]}`,
		`{"path": {"nested": true}}`,
		`[1, 2]`,
	}

	for _, args := range tests {
		if _, err := textArguments(json.RawMessage(args)); err == nil {
			t.Errorf("textArguments(%s) should fail", args)
		}
	}
}

func TestTextArguments_Empty(t *testing.T) {
	fields, err := textArguments(nil)
	if err != nil {
		t.Fatalf("textArguments failed: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}
