package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/nbook/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport string
		host      string
		port      int
		path      string
		tlsCert   string
		tlsKey    string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "serve stored notebooks over the Model Context Protocol",
		Long: `Start an MCP server so assistants can list notebooks and read, add, edit,
move, merge and remove their cells.`,
		Example: `
nbook mcp
nbook mcp --transport stdio
nbook mcp --http-port 0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := service()
			if err != nil {
				return err
			}

			runner := mcp.Runner{
				Service:          svc,
				Name:             "nbook",
				Version:          version,
				Log:              env.log,
				HTTPEndpointPath: mcp.EndpointPath(path),
				HTTPServerCert:   strings.TrimSpace(tlsCert),
				HTTPServerKey:    strings.TrimSpace(tlsKey),
			}

			switch strings.ToLower(strings.TrimSpace(transport)) {
			case "", string(mcp.TransportHTTP):
				if port < 0 || port > 65535 {
					return fmt.Errorf("invalid http-port %d", port)
				}
				h := strings.TrimSpace(host)
				if h == "" {
					h = "127.0.0.1"
				}
				runner.Transport = mcp.TransportHTTP
				runner.HTTPListenAddr = net.JoinHostPort(h, strconv.Itoa(port))
				runner.OnHTTPListening = func(a net.Addr) {
					scheme := "http"
					if runner.HTTPServerCert != "" {
						scheme = "https"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s://%s%s\n", scheme, a, runner.HTTPEndpointPath)
				}
			case string(mcp.TransportStdio):
				runner.Transport = mcp.TransportStdio
			default:
				return fmt.Errorf("unsupported transport %q (expected http or stdio)", transport)
			}

			return runner.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&host, "http-host", "127.0.0.1", "interface for the HTTP transport")
	cmd.Flags().IntVar(&port, "http-port", 8080, "port for the HTTP transport, 0 picks one")
	cmd.Flags().StringVar(&path, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&tlsCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&tlsKey, "http-tls-key", "", "TLS private key file for HTTPS")

	topLevel.AddCommand(cmd)
}
