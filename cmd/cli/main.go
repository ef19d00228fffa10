package main

import (
	"fmt"
	"os"

	"github.com/DeBrosOfficial/pinner/pkg/cli"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "version":
		fmt.Printf("pinner %s", version)
		if commit != "" {
			fmt.Printf(" (commit %s)", commit)
		}
		if date != "" {
			fmt.Printf(" built %s", date)
		}
		fmt.Println()
		return

	case "upload":
		cli.HandleUploadCommand(args)
	case "retrieve":
		cli.HandleRetrieveCommand(args)
	case "status":
		cli.HandleStatusCommand(args)
	case "recent":
		cli.HandleRecentCommand(args)
	case "health":
		cli.HandleHealthCommand(args)

	case "help", "--help", "-h":
		showHelp()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		showHelp()
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Printf("Pinner CLI - upload files to IPFS with NFT.Storage replication\n\n")
	fmt.Printf("Usage: pinner <command> [args...]\n\n")

	fmt.Printf("📦 Storage:\n")
	fmt.Printf("  upload <file>                 - Upload a file (max 100MB)\n")
	fmt.Printf("  retrieve <cid> [--out file]   - Print the gateway URL; download with --out (- for stdout)\n")
	fmt.Printf("  status <cid>                  - Show replication status for a CID\n")
	fmt.Printf("  recent                        - List recent uploads, newest first\n\n")

	fmt.Printf("🩺 Server:\n")
	fmt.Printf("  health [--format json]        - Check the server and its IPFS node\n\n")

	fmt.Printf("Global flags:\n")
	fmt.Printf("  --api URL                     - API base URL (default $PINNER_API_URL or http://localhost:3000/api)\n\n")

	fmt.Printf("Other:\n")
	fmt.Printf("  version                       - Show version\n")
	fmt.Printf("  help                          - Show this help\n")
}
