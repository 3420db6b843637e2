package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/getmockd/swaggerstub/pkg/config"
	"github.com/getmockd/swaggerstub/pkg/logging"
	"github.com/getmockd/swaggerstub/pkg/session"
)

// ResolveOutput is the JSON result of the resolve command.
type ResolveOutput struct {
	Method string            `json:"method"`
	URL    string            `json:"url"`
	Status int               `json:"status"`
	Header map[string]string `json:"header,omitempty"`
	Body   json.RawMessage   `json:"body,omitempty"`
	Text   string            `json:"text,omitempty"`
}

func newResolveCommand(g *globalFlags) *cobra.Command {
	var (
		data       string
		headers    []string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "resolve [contract] <method> <url>",
		Short: "Show how a request would be answered",
		Long: `Send one request through a stub built from the contract and print the
response. Nothing leaves the process: the URL's scheme and host become the
stub's base URL.

With -f the stub is built from every target of a configuration file instead
and the contract argument is omitted.`,
		Example: `  swaggerstub resolve petstore.yaml GET http://petstore.local/v2/pets/1
  swaggerstub resolve petstore.yaml POST http://petstore.local/v2/pets -d '{"name":"rex"}'
  swaggerstub resolve api.yaml PUT https://api.local/v1/items/3 -H 'X-Trace: 1' --json
  swaggerstub resolve -f swaggerstub.yaml GET http://petstore.local/v2/pets`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" && len(args) != 2 {
				return fmt.Errorf("with -f, expected <method> <url>, got %d arguments", len(args))
			}
			if configFile == "" && len(args) != 3 {
				return fmt.Errorf("expected <contract> <method> <url>, got %d arguments", len(args))
			}
			method, rawURL := strings.ToUpper(args[len(args)-2]), args[len(args)-1]

			u, err := url.Parse(rawURL)
			if err != nil {
				return fmt.Errorf("invalid url %q: %w", rawURL, err)
			}
			if u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid url %q: must be absolute", rawURL)
			}

			hdr, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			var s *session.Session
			if configFile != "" {
				s, err = sessionFromConfig(cmd, g, configFile)
			} else {
				s, err = sessionForURL(g.logger(cmd.ErrOrStderr()), args[0], u)
			}
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			resp, err := send(cmd.Context(), s.Client(), method, u.String(), data, hdr)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}

			out := ResolveOutput{
				Method: method,
				URL:    u.String(),
				Status: resp.StatusCode,
				Header: flattenHeader(resp.Header),
			}
			if json.Valid(body) {
				out.Body = body
			} else {
				out.Text = string(body)
			}

			w := cmd.OutOrStdout()
			return printResult(g, w, out, func() {
				fmt.Fprintf(w, "%s %s\n", statusColor(resp.StatusCode)(resp.StatusCode), http.StatusText(resp.StatusCode))
				if len(body) == 0 {
					return
				}
				var pretty bytes.Buffer
				if json.Indent(&pretty, body, "", "  ") == nil {
					fmt.Fprintln(w, pretty.String())
					return
				}
				fmt.Fprintln(w, string(body))
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "Request body (JSON or form encoded)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Request header as key:value (repeatable)")
	cmd.Flags().StringVarP(&configFile, "config", "f", "", "Build the stub from a config file")
	return cmd
}

// sessionForURL stubs the URL's scheme and host with a single contract.
func sessionForURL(log *slog.Logger, contractPath string, u *url.URL) (*session.Session, error) {
	s := session.New(session.WithLogger(log))
	if _, err := s.Register(contractPath, u.Scheme+"://"+u.Host); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// sessionFromConfig registers every configured target. The config's log
// section applies unless --log-level or --log-format was given.
func sessionFromConfig(cmd *cobra.Command, g *globalFlags, path string) (*session.Session, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	log := g.logger(cmd.ErrOrStderr())
	flags := cmd.Flags()
	if !flags.Changed("log-level") && !flags.Changed("log-format") {
		lc := cfg.LoggingConfig()
		lc.Output = cmd.ErrOrStderr()
		log = logging.New(lc)
	}
	return config.NewSession(cfg, log)
}

func send(ctx context.Context, client *http.Client, method, target, data string, hdr http.Header) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var body io.Reader
	if data != "" {
		body = strings.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header = hdr
	return client.Do(req)
}

func parseHeaders(raw []string) (http.Header, error) {
	h := make(http.Header)
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, kv)
		}
		h.Add(k, strings.TrimSpace(v))
	}
	return h, nil
}

func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func statusColor(code int) func(a ...interface{}) string {
	switch {
	case code >= 500:
		return color.New(color.FgRed).SprintFunc()
	case code >= 400:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}
