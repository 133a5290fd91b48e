package main

import (
	"fmt"
	"os"

	"github.com/Sa-tya/shelf-manager/internal/cli"
	"github.com/Sa-tya/shelf-manager/internal/config"
	"github.com/Sa-tya/shelf-manager/internal/entrypoint"
)

// Set at build time via -ldflags "-X main.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	config.LoadEnv()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		entrypoint.Run(config.NewConfig(), Version)
	case "booklist-commit":
		cmd := cli.NewBooklistCommitCommand(config.NewConfig().API)
		if err := cmd.ParseFlags(args); err != nil {
			return fail(err)
		}
		if err := cmd.Run(); err != nil {
			return fail(err)
		}
	case "version":
		fmt.Printf("shelf-manager %s (%s)\n", Version, Commit)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage()
		return 2
	}
	return 0
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %[1]s [command] [options]

Commands:
  serve            Run the shop server (default)
  booklist-commit  Stage a JSON plan of books per class and save it as booklists
  version          Print the version

Run '%[1]s <command> -h' for the options of a command.
`, os.Args[0])
}
