package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/erraggy/oaskit"
	"github.com/erraggy/oaskit/cmd/oaskit/commands"
)

// commandNames lists the commands suggestCommand may propose.
var commandNames = []string{"resolve", "validate", "examples", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	os.Exit(run(os.Args[1], os.Args[2:]))
}

// run executes command and returns the process exit code.
func run(command string, args []string) int {
	var err error
	switch command {
	case "version", "-v", "--version":
		fmt.Printf("oaskit v%s\n", oaskit.Version())
		fmt.Println(oaskit.BuildInfo())
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "resolve":
		err = commands.HandleResolve(args)
	case "validate":
		err = commands.HandleValidate(args)
	case "examples":
		err = commands.HandleExamples(args)
	case "mcp":
		err = commands.HandleMCP(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		return 1
	}

	if err != nil {
		if !errors.Is(err, commands.ErrFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// suggestCommand returns the command closest to input within an edit
// distance of 2, or "" when none is close enough.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Printf(`oaskit - OpenAPI reference resolution and schema validation

Usage:
  oaskit <command> [flags] [args]

Commands:
  resolve     Resolve every reference of a document and list them
  validate    Validate a data file against a schema of a document
  examples    Validate the examples of every component schema
  mcp         Start an MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  oaskit resolve openapi.yaml
  oaskit validate 'openapi.yaml#/components/schemas/Pet' pet.json
  oaskit examples https://example.com/api/openapi.yaml

Run 'oaskit <command> --help' for more information on a command.
`)
}
