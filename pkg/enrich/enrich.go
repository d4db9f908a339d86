// Package enrich turns retrieved specimen documents into visitor-facing
// text: one summary sentence per query and a description/justification
// pair per result.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soundprediction/recommender/pkg/metrics"
	"github.com/soundprediction/recommender/pkg/nlp"
	"github.com/soundprediction/recommender/pkg/prompts"
	"github.com/soundprediction/recommender/pkg/types"
)

// ErrMalformedOutput is returned when a per-result response cannot be
// parsed into a description and a justification.
var ErrMalformedOutput = errors.New("malformed structured output")

// DefaultConcurrency keeps per-result generation sequential.
const DefaultConcurrency = 1

// Config controls the enrichment fan-out.
type Config struct {
	// Concurrency bounds in-flight per-result generation calls.
	Concurrency int
}

// Enricher runs the generation calls of a semantic query.
type Enricher struct {
	llm         nlp.Client
	prompts     prompts.RecommendPrompt
	concurrency int
	logger      *slog.Logger
}

// NewEnricher creates an Enricher over the given generation client.
func NewEnricher(llm nlp.Client, config Config, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{
		llm:         llm,
		prompts:     prompts.NewRecommendVersions(),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Summarize generates one friendly sentence about the retrieved documents.
func (e *Enricher) Summarize(ctx context.Context, query string, docs []types.Document) (string, error) {
	bodies := make([]string, 0, len(docs))
	for _, doc := range docs {
		bodies = append(bodies, doc.Content)
	}

	messages, err := e.prompts.Summary().Call(map[string]interface{}{
		"query":  query,
		"bodies": bodies,
		"logger": e.logger,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render summary prompt: %w", err)
	}

	start := time.Now()
	resp, err := e.llm.Chat(ctx, messages)
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = nlp.NewEmptyResponseError("summary generation returned no text")
	}
	metrics.RecordUpstream(metrics.StageSummary, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}

	return strings.TrimSpace(nlp.RemoveThinkTags(resp.Content)), nil
}

// Describe generates the description and justification of one result.
func (e *Enricher) Describe(ctx context.Context, query, title, body string) (*prompts.ResultDescription, error) {
	messages, err := e.prompts.Describe().Call(map[string]interface{}{
		"query":  query,
		"title":  title,
		"body":   body,
		"logger": e.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render describe prompt: %w", err)
	}

	start := time.Now()
	resp, err := e.llm.ChatWithStructuredOutput(ctx, messages, prompts.ResultDescriptionSchema)
	if err != nil {
		metrics.RecordUpstream(metrics.StageDescribe, time.Since(start), err)
		return nil, fmt.Errorf("describe generation failed for %q: %w", title, err)
	}

	desc, err := parseDescription(resp.Content)
	metrics.RecordUpstream(metrics.StageDescribe, time.Since(start), err)
	if err != nil {
		e.logger.WarnContext(ctx, "Discarding unparseable describe response",
			"title", title, "repairable", nlp.Repairable(resp.Content), "error", err)
		return nil, fmt.Errorf("describe generation failed for %q: %w", title, err)
	}
	return desc, nil
}

func parseDescription(content string) (*prompts.ResultDescription, error) {
	var desc prompts.ResultDescription
	if err := nlp.DecodeJSONObject(content, &desc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	desc.Description = strings.TrimSpace(desc.Description)
	desc.Justification = strings.TrimSpace(desc.Justification)
	if desc.Description == "" || desc.Justification == "" {
		return nil, fmt.Errorf("%w: description and justification are both required", ErrMalformedOutput)
	}
	return &desc, nil
}

// EnrichAll describes every document, at most Concurrency at a time.
// Results keep the order of docs. The first failure cancels the remaining
// calls and no partial results are returned.
func (e *Enricher) EnrichAll(ctx context.Context, query string, docs []types.Document) ([]types.SemanticResult, error) {
	results := make([]types.SemanticResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			desc, err := e.Describe(gctx, query, doc.Title(), doc.Content)
			if err != nil {
				return err
			}
			results[i] = types.SemanticResult{
				Identifier:    doc.SpecimenName(),
				Name:          doc.Title(),
				Content:       doc.Content,
				Description:   desc.Description,
				Justification: desc.Justification,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
