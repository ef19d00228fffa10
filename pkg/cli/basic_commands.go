package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/DeBrosOfficial/pinner/pkg/history"
)

// HandleHealthCommand handles `pinner health [--api URL] [--format json]`
func HandleHealthCommand(args []string) {
	_, flags := parseArgs(args, "api", "format")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := NewAPIClient(ResolveAPIBase(flags["api"]), nil).Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get health: %v\n", err)
		os.Exit(1)
	}

	if flags["format"] == "json" {
		printJSON(health)
		return
	}
	fmt.Printf("Status:  %s\n", getStatusEmoji(health.Status)+health.Status)
	fmt.Printf("IPFS:    %s\n", getStatusEmoji(health.IPFS)+health.IPFS)
	fmt.Printf("Pinning: %s\n", health.Pinning)
	if health.Uptime != "" {
		fmt.Printf("Uptime:  %s\n", health.Uptime)
	}
	fmt.Printf("Time:    %s\n", health.Timestamp)
}

// HandleStatusCommand handles `pinner status <cid> [--api URL]`
func HandleStatusCommand(args []string) {
	positional, flags := parseArgs(args, "api")
	if len(positional) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: pinner status <cid> [--api URL]\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := NewAPIClient(ResolveAPIBase(flags["api"]), nil).Status(ctx, positional[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get status: %v\n", err)
		os.Exit(1)
	}
	printJSON(status)
}

// HandleRecentCommand handles `pinner recent`
func HandleRecentCommand(args []string) {
	path, err := history.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	h := history.New(history.DefaultCapacity)
	if err := h.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	printRecent(os.Stdout, h.Entries(), time.Now())
}

func printRecent(w io.Writer, entries []history.Entry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No uploads yet"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\n  CID: %s\n  %s • %s\n",
			titleStyle.Render(e.Filename), cidStyle.Render(e.CID), formatBytes(e.Size), formatAge(e.Timestamp, now))
	}
}

func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(jsonData))
}

func getStatusEmoji(status string) string {
	switch status {
	case "ok", "up":
		return "🟢 "
	case "down":
		return "🔴 "
	default:
		return ""
	}
}

func formatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := 0
	v := float64(n)
	for v >= 1024 && i < len(sizes)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%s %s", trimFloat(math.Round(v*100)/100), sizes[i])
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func formatAge(t, now time.Time) string {
	mins := int(now.Sub(t).Minutes())
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case mins < 1440:
		return fmt.Sprintf("%d hours ago", mins/60)
	default:
		return t.Local().Format("2006-01-02")
	}
}
