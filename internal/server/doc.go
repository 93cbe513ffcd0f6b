// Package server implements the MCP (Model Context Protocol) server for the image modifier.
//
// This package provides a JSON-RPC 2.0 server that exposes the modifier
// through the MCP protocol so MCP-compatible clients can resize, convert and
// re-encode images and read their EXIF metadata.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_modify: resize, grayscale and re-encode an image, writing a file
//     or returning base64 text, optionally with its metadata
//   - image_exif: return the metadata of an image without modifying it
//
// Tool arguments may use JSON strings, numbers or booleans; they are turned
// into text before validation, so "0.5" and 0.5 behave the same.
//
// # Results and Errors
//
// A tool result is the modifier's response object:
//
//	{"success": true, "imageURI": "file:///tmp/image-modifier/1700000000123.JPEG"}
//	{"success": false, "errorMsg": "URI Path KEY('path') must not be null."}
//
// Failures of the request itself (bad path, undecodable image, file
// collision) are reported inside that object. JSON-RPC errors are reserved
// for:
//   - code: -32602 for unparseable tools/call params
//   - code: -32000 for malformed arguments or an aborted call, such as an
//     image whose dimensions exceed the configured pixel budget
//   - code: -32601 for unknown methods
//
// # Usage
//
//	m := modifier.New(modifier.Options{CacheDir: dir})
//	srv := server.New(m)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
