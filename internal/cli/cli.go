// Package cli wires the courier command tree.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
)

const longHelp = `
courier performs HTTP requests described as plain data and returns a
normalized envelope: the status code and a JSON body, with non-JSON payloads
wrapped as {"raw": text}.

Run "courier serve" to start the local bridge used by the desktop shell, or
"courier send" to fire a single request from the terminal.`

var exampleUsage = strings.TrimSpace(`
  courier serve --listen 127.0.0.1:7878 --log-format console
  courier send https://httpbin.org/get -q page=2 -H 'Accept: application/json'
  courier send https://httpbin.org/post -X POST -d '{"name": "courier"}'
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// NewRootCommand builds the courier command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "courier",
		Short:         "Send HTTP requests and get normalized JSON envelopes back",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newSendCommand())
	return root
}

// Execute runs the root command against os.Args and returns the exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "courier: %v\n", err)
		return 1
	}
	return 0
}

// changedFlags returns the set of flags given explicitly on the command line.
func changedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}
