package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/image-modifier-mcp/internal/imaging"
	"github.com/ironsheep/image-modifier-mcp/internal/modifier"
	"github.com/ironsheep/image-modifier-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-modifier-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-modifier-mcp - MCP server for resizing, grayscaling and re-encoding images")
			fmt.Println()
			fmt.Println("Usage: image-modifier-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  IMAGE_MODIFIER_LOG_LEVEL=debug     Enable debug logging")
			fmt.Println("  IMAGE_MODIFIER_CACHE_DIR=<dir>     Directory for written images")
			fmt.Println("                                     (default: <tmp>/image-modifier)")
			fmt.Println("  IMAGE_MODIFIER_MAX_PIXELS=<n>      Largest image decoded, in pixels")
			fmt.Printf("                                     (default: %d)\n", imaging.DefaultMaxPixels)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("IMAGE_MODIFIER_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Image Modifier MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cacheDir := os.Getenv("IMAGE_MODIFIER_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "image-modifier")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Fatalf("Cannot create cache directory %s: %v", cacheDir, err)
	}

	maxPixels := imaging.DefaultMaxPixels
	if v := os.Getenv("IMAGE_MODIFIER_MAX_PIXELS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid IMAGE_MODIFIER_MAX_PIXELS %q", v)
		}
		maxPixels = n
	}

	if debug {
		log.Printf("Cache directory %s, pixel budget %d", cacheDir, maxPixels)
	}

	server.Version = Version
	m := modifier.New(modifier.Options{
		CacheDir:  cacheDir,
		MaxPixels: maxPixels,
		Debug:     debug,
	})

	srv := server.New(m)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
