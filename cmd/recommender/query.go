package recommender

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/soundprediction/recommender"
	"github.com/soundprediction/recommender/pkg/config"
	"github.com/soundprediction/recommender/pkg/server/dto"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a single recommendation without starting the server",
}

var queryGraphCmd = &cobra.Command{
	Use:   "graph <specimen name>",
	Short: "Recommend specimens sharing attributes with the named specimen",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQueryGraph,
}

var querySemanticCmd = &cobra.Command{
	Use:   "semantic <query>",
	Short: "Recommend and describe specimens matching a free-text query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuerySemantic,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryGraphCmd)
	queryCmd.AddCommand(querySemanticCmd)

	addBackendFlags(queryGraphCmd)
	addBackendFlags(querySemanticCmd)
}

func runQueryGraph(cmd *cobra.Command, args []string) error {
	ctx, client, done, err := queryClient(cmd)
	if err != nil {
		return err
	}
	defer done()

	names, err := client.GraphQuery(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return printJSON(cmd, dto.NewGraphRecommendResponse(names))
}

func runQuerySemantic(cmd *cobra.Command, args []string) error {
	ctx, client, done, err := queryClient(cmd)
	if err != nil {
		return err
	}
	defer done()

	resp, err := client.SemanticQuery(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return printJSON(cmd, dto.NewSemanticRecommendResponse(resp.Summary, resp.Results))
}

// queryClient builds a recommender for a one-shot CLI query. done releases
// the backends and flushes telemetry.
func queryClient(cmd *cobra.Command) (ctx context.Context, client *recommender.Client, done func(), err error) {
	cfg, err := loadConfig(func(cfg *config.Config) {
		overrideConfigWithFlags(cmd, cfg)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	log, flushLog := newLogger(cfg)
	ctx = context.WithValue(cmd.Context(), types.ContextKeyRequestSource, "cli")
	client, err = buildRecommender(ctx, cfg, graphFixture, log)
	if err != nil {
		flushLog()
		return nil, nil, nil, err
	}
	return ctx, client, func() {
		if err := client.Close(ctx); err != nil {
			log.Warn("Failed to release backends", "error", err)
		}
		flushLog()
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
