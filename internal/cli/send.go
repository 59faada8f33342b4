package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/courier/internal/compose"
	"github.com/raysh454/courier/internal/dispatcher"
	"github.com/raysh454/courier/internal/logging"
)

type sendOptions struct {
	method  string
	headers []string
	params  []string
	body    string
	timeout time.Duration
	verbose bool
}

func newSendCommand() *cobra.Command {
	opts := sendOptions{method: "GET"}

	cmd := &cobra.Command{
		Use:   "send URL",
		Short: "Perform one request and print the response envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := opts.form(args[0])
			if err != nil {
				return err
			}
			payload, err := form.Build()
			if err != nil {
				return err
			}

			level := logging.LevelWarn
			if opts.verbose {
				level = logging.LevelDebug
			}
			logger := logging.NewZerologLogger(cmd.ErrOrStderr(), logging.FormatConsole, level, "courier")

			d := dispatcher.New(dispatcher.Config{Timeout: opts.timeout}, logger, nil)
			defer d.Close()

			resp, err := d.Execute(cmd.Context(), payload)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.method, "method", "X", opts.method, "HTTP method")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	f.StringArrayVarP(&opts.params, "query", "q", nil, "query parameter as key=value (repeatable)")
	f.StringVarP(&opts.body, "data", "d", "", "request body; valid JSON is compacted")
	f.DurationVar(&opts.timeout, "timeout", 0, "request timeout (0 = none)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log the dispatch to stderr")

	return cmd
}

func (o sendOptions) form(url string) (compose.Form, error) {
	form := compose.Form{Method: o.method, URL: url, Body: o.body}
	for _, h := range o.headers {
		p, err := parseHeader(h)
		if err != nil {
			return compose.Form{}, err
		}
		form.Headers = append(form.Headers, p)
	}
	for _, q := range o.params {
		form.Params = append(form.Params, parseParam(q))
	}
	return form, nil
}

// parseHeader splits "Name: value". The value keeps inner spaces.
func parseHeader(s string) (compose.Pair, error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return compose.Pair{}, fmt.Errorf("invalid header %q: expected 'Name: value'", s)
	}
	return compose.Pair{Key: name, Value: strings.TrimSpace(value)}, nil
}

// parseParam splits "key=value"; a bare key gets an empty value.
func parseParam(s string) compose.Pair {
	key, value, _ := strings.Cut(s, "=")
	return compose.Pair{Key: key, Value: value}
}
