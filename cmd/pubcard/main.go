package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/pubcard"
	"github.com/eringen/pubcard/scaffold"
	"github.com/eringen/pubcard/socialimg"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		configPath := ""
		if len(os.Args) > 2 {
			configPath = os.Args[2]
		}
		if err := runServe(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: pubcard render <content-dir> <slug> <out.png>")
			os.Exit(1)
		}
		if err := runRender(os.Args[2], os.Args[3], os.Args[4]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "init":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: pubcard init <dir> [author]")
			os.Exit(1)
		}
		author := ""
		if len(os.Args) > 3 {
			author = os.Args[3]
		}
		if err := runInit(os.Args[2], author); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("pubcard %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := pubcard.LoadConfig(configPath)
	if err != nil {
		return err
	}
	app := pubcard.New(cfg)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func runRender(dir, slug, out string) error {
	cfg, err := pubcard.LoadConfig(os.Getenv("PUBCARD_CONFIG"))
	if err != nil {
		return err
	}
	img, err := pubcard.RenderCard(context.Background(), cfg, dir, slug)
	if errors.Is(err, socialimg.ErrNotFound) {
		return fmt.Errorf("no published article with slug %q in %s", slug, dir)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, img.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", out, len(img.Data))
	return nil
}

func runInit(dir, author string) error {
	fmt.Printf("Creating new pubcard site: %s\n\n", dir)
	created, err := scaffold.Write(dir, scaffold.NewData(dir, author))
	for _, p := range created {
		fmt.Printf("  created %s\n", p)
	}
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", dir)
	fmt.Println("  pubcard serve pubcard.toml")
	return nil
}

func printUsage() {
	fmt.Println(`pubcard - markdown blog server with social preview cards

Usage:
  pubcard <command> [arguments]

Commands:
  init <dir> [author]               Create a config file and a first article
  serve [config.toml]               Import articles and start the HTTP server
  render <content-dir> <slug> <out> Render one social card to a PNG file
  version                           Print the pubcard version
  help                              Show this help message

Environment:
  SITE_NAME, SITE_URL, SITE_AUTHOR, SITE_DESCRIPTION, ADDR, DATABASE_PATH,
  CONTENT_DIR, WATCH_CONTENT, LOG_FILE, LOG_LEVEL, CARD_RATE_LIMIT override
  the config file.
  PUBCARD_CONFIG names the config file used by render.

Examples:
  pubcard init my-notes "Jane Doe"
  pubcard serve site.toml
  pubcard render articles hello-world hello-world.png`)
}
