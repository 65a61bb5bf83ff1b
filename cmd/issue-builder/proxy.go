// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/issue-builder/internal/proxy"
	"github.com/pdiddy/issue-builder/internal/secrets"
	"github.com/pdiddy/issue-builder/pkg/types"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the summarization proxy",
}

var proxyServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the summarization endpoint in front of a chat-completion API",
	Long: `Serve answers summarization requests from build and from the reader front
end. Batch requests (issueId plus articles) are turned into one chat-completion
call whose answer is normalized to {issueId, articles[{id, summary, insight}]}.
Requests carrying messages are forwarded unchanged.

POST / takes the request body directly. POST /invoke takes a function-style
event envelope {headers, requestContext.http.method, body}.

The upstream key comes from --api-key, .secrets/upstream-api-key,
UPSTREAM_API_KEY, or THIRTY_TWO_AI_API_KEY. Variables in --env-file are
loaded first and never override the environment.`,
	RunE: runProxyServe,
}

func runProxyServe(cmd *cobra.Command, args []string) error {
	envFile := stringSetting(cmd, "env-file")
	if err := proxy.LoadEnv(envFile); err != nil {
		return err
	}

	cfg := proxy.ConfigFromEnv(types.ProxyConfig{
		Addr:           stringSetting(cmd, "addr"),
		AllowedOrigins: stringSetting(cmd, "allowed-origins"),
		UpstreamURL:    stringSetting(cmd, "upstream-url"),
		APIKey:         secrets.Resolve(loadedSecrets, stringSetting(cmd, "api-key"), secrets.UpstreamAPIKey),
		DefaultModel:   stringSetting(cmd, "model"),
		Timeout:        durationSetting(cmd, "timeout"),
		CacheTTL:       durationSetting(cmd, "cache-ttl"),
	})
	if cfg.APIKey == "" {
		logger.Warn("no upstream API key configured; summarization requests will fail")
	}

	gin.SetMode(gin.ReleaseMode)
	svc := proxy.NewService(cfg, logger)
	router := proxy.NewRouter(svc, logger)

	fmt.Printf("proxy listening on %s\n", cfg.Addr)
	return proxy.Serve(cmd.Context(), cfg.Addr, router, logger)
}

func init() {
	f := proxyServeCmd.Flags()
	f.String("addr", ":9000", "listen address")
	f.String("env-file", ".env", "dotenv file loaded before reading the environment")
	f.String("allowed-origins", "", "'*' or comma-separated allowed origins (default: $"+proxy.EnvAllowedOrigins+", then any)")
	f.String("upstream-url", "", "chat-completion URL (default: $"+proxy.EnvUpstreamURL+", then "+proxy.DefaultUpstreamURL+")")
	f.String("api-key", "", "upstream API key")
	f.String("model", "", "model used when a request names none (default: $"+proxy.EnvModel+", then "+proxy.DefaultModel+")")
	f.Duration("timeout", proxy.DefaultTimeout, "timeout for one upstream call")
	f.Duration("cache-ttl", 0, "keep parsed batch answers for identical requests (0 disables)")

	proxyCmd.AddCommand(proxyServeCmd)
	rootCmd.AddCommand(proxyCmd)
}
