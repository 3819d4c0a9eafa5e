package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oaskit/internal/cliutil"
	"github.com/erraggy/oaskit/internal/mcpserver"
)

// HandleMCP executes the mcp command, serving MCP over stdio until the
// client disconnects or the process is interrupted.
func HandleMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oaskit mcp\n\n")
		cliutil.Writef(fs.Output(), "Start an MCP (Model Context Protocol) server over stdio exposing the\nresolve and validate_value tools.\n\n")
		cliutil.Writef(fs.Output(), "Configuration is read from OASKIT_* environment variables, e.g.:\n")
		cliutil.Writef(fs.Output(), "  OASKIT_CACHE_ENABLED=false     disable the resolved document cache\n")
		cliutil.Writef(fs.Output(), "  OASKIT_ALLOW_PRIVATE_IPS=true   allow URL inputs on private networks\n")
		cliutil.Writef(fs.Output(), "  OASKIT_VALIDATE_FAST_FAIL=true  stop at the first error by default\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}
