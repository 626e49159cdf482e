// Command verdict runs declarative single-command process tests.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/deixis/verdict"
	"github.com/deixis/verdict/internal/config"
	"github.com/deixis/verdict/internal/harness"
	vmcp "github.com/deixis/verdict/internal/mcp"
	"github.com/deixis/verdict/internal/report"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("verdict: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runMain(args)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(verdict.Version)
	case "help", "-h", "--help":
		usage()
	default:
		// A bare case-file path is shorthand for "run <path>".
		err = runMain(os.Args[1:])
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: verdict <command> [flags] <case.yaml>

Commands:
  run         Run a case file and report the verdict
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

A bare case-file path runs it: "verdict case.yaml" equals "verdict run case.yaml".
Use "verdict <command> -h" for command-specific flags.`)
}

// --- run ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "output the run record as JSON")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: verdict run [-json] <case.yaml>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp, err := config.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	// Diagnostics stream to stdout as they are produced; with -json they
	// are only carried on the record, keeping the output parseable.
	var sink io.Writer = os.Stdout
	if *jsonFlag {
		sink = io.Discard
	}

	h := &harness.Harness{}
	rec, err := h.Run(ctx, exp, sink)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return err
		}
	} else if rec.Passed {
		fmt.Println("No errors.")
	} else {
		fmt.Println("Errors.")
	}

	if !rec.Passed {
		os.Exit(1)
	}
	return nil
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(vmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr)
}

func serve(ctx context.Context, httpAddr string) error {
	workdir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}

	disk := report.NewDiskStore()
	store := report.NewLRUStore(5, disk)

	server := vmcp.NewServer(store, workdir)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
