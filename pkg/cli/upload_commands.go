package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeBrosOfficial/pinner/pkg/config"
	"github.com/DeBrosOfficial/pinner/pkg/gateway/handlers/storage"
	"github.com/DeBrosOfficial/pinner/pkg/history"
)

// parseArgs splits args into positional arguments and --name value flags.
func parseArgs(args []string, valueFlags ...string) ([]string, map[string]string) {
	known := make(map[string]bool, len(valueFlags))
	for _, f := range valueFlags {
		known[f] = true
	}

	var positional []string
	flags := make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if strings.HasPrefix(arg, "-") && known[name] {
			if !hasValue && i+1 < len(args) {
				value = args[i+1]
				i++
			}
			flags[name] = value
			continue
		}
		positional = append(positional, arg)
	}
	return positional, flags
}

// HandleUploadCommand handles `pinner upload <file> [--api URL]`
func HandleUploadCommand(args []string) {
	positional, flags := parseArgs(args, "api")
	if len(positional) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: pinner upload <file> [--api URL]\n")
		os.Exit(1)
	}
	path := positional[0]

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		fmt.Fprintf(os.Stderr, "❌ %s is a directory\n", path)
		os.Exit(1)
	}
	if info.Size() > config.MaxUploadSize {
		fmt.Fprintf(os.Stderr, "❌ File too large! Maximum size is %dMB.\n", config.MaxUploadSize/(1024*1024))
		os.Exit(1)
	}

	client := NewAPIClient(ResolveAPIBase(flags["api"]), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := NewUploadModel(filepath.Base(path), func() (*storage.UploadResponse, error) {
		return client.Upload(ctx, path)
	})

	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	m := finalModel.(UploadModel)
	switch m.Stage() {
	case StageSucceeded:
		if err := recordUpload(m.Result(), time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Could not save recent uploads: %v\n", err)
		}
	case StageCancelled:
		cancel()
		os.Exit(130)
	default:
		os.Exit(1)
	}
}

// recordUpload pushes a successful upload onto the on-disk history.
func recordUpload(resp *storage.UploadResponse, at time.Time) error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	return appendHistory(path, resp, at)
}

func appendHistory(path string, resp *storage.UploadResponse, at time.Time) error {
	h := history.New(history.DefaultCapacity)
	if err := h.Load(path); err != nil {
		return err
	}
	h.Push(history.Entry{
		CID:       resp.CID,
		Filename:  resp.Filename,
		Size:      resp.Size,
		Timestamp: at.UTC(),
	})
	return h.Save(path)
}

// HandleRetrieveCommand handles `pinner retrieve <cid> [--out file] [--api URL]`
func HandleRetrieveCommand(args []string) {
	positional, flags := parseArgs(args, "api", "out")
	if len(positional) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: pinner retrieve <cid> [--out file] [--api URL]\n")
		os.Exit(1)
	}
	cid := strings.TrimSpace(positional[0])

	fmt.Printf("Gateway URL: %s\n", GatewayURL(cid))

	out := flags["out"]
	if out == "" {
		return
	}

	if err := downloadTo(ResolveAPIBase(flags["api"]), cid, out); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Retrieve failed: %v\n", err)
		os.Exit(1)
	}
}

func downloadTo(apiBase, cid, out string) error {
	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := NewAPIClient(apiBase, nil).Retrieve(context.Background(), cid, w)
	if err != nil {
		if out != "-" {
			os.Remove(out)
		}
		return err
	}
	if out != "-" {
		fmt.Printf("✅ Saved %s (%s)\n", out, formatBytes(n))
	}
	return nil
}

// GatewayURL returns the first configured public gateway URL for cid.
// IPFS_GATEWAYS overrides the built-in list.
func GatewayURL(cid string) string {
	bases := config.DefaultGateways
	if v := strings.TrimSpace(os.Getenv("IPFS_GATEWAYS")); v != "" {
		if first := strings.TrimSpace(strings.Split(v, ",")[0]); first != "" {
			bases = []string{first}
		}
	}
	return bases[0] + cid
}
