package recommender

import (
	"fmt"
	"os"

	"github.com/soundprediction/recommender/pkg/config"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/soundprediction/recommender/pkg/vectorstore"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <documents.yaml>",
	Short: "Embed catalog documents into the local badger vector store",
	Long: `Embed catalog documents and store them in a badger vector collection.

The input file lists one entry per specimen:

  documents:
    - id: FOS-001
      specimen_name: Megalodon
      title: Megalodon tooth
      content: A fossilized tooth of the extinct giant shark...

Chroma and Neo4j collections are populated by their own tooling.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var ingestBatchSize int

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 32, "Documents embedded per request")
	ingestCmd.Flags().String("vector-path", "", "Vector store directory (badger)")
	ingestCmd.Flags().String("collection", "specimens", "Vector collection name")
	ingestCmd.Flags().String("embedding-model", "text-embedding-3-small", "Embedding model")
	ingestCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	ingestCmd.Flags().String("embedding-base-url", "", "Embedding base URL")
	ingestCmd.Flags().Int("embedding-dimensions", 1024, "Embedding dimensions")
}

// ingestFile is the YAML layout read by the ingest command.
type ingestFile struct {
	Documents []ingestDocument `yaml:"documents"`
}

type ingestDocument struct {
	ID           string `yaml:"id"`
	SpecimenName string `yaml:"specimen_name"`
	Title        string `yaml:"title"`
	Content      string `yaml:"content"`
}

func (d ingestDocument) document() types.Document {
	metadata := map[string]any{}
	if d.SpecimenName != "" {
		metadata[types.MetadataSpecimenName] = d.SpecimenName
	}
	if d.Title != "" {
		metadata[types.MetadataTitle] = d.Title
	}
	return types.Document{ID: d.ID, Content: d.Content, Metadata: metadata}
}

func readIngestFile(path string) ([]ingestDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var file ingestFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, doc := range file.Documents {
		if doc.ID == "" {
			return nil, fmt.Errorf("document %d has no id", i)
		}
		if doc.Content == "" {
			return nil, fmt.Errorf("document %s has no content", doc.ID)
		}
	}
	return file.Documents, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) {
		cfg.Vector.Provider = string(vectorstore.ProviderBadger)
		overrideConfigWithFlags(cmd, cfg)
	})
	if err != nil {
		return err
	}
	log, flushLog := newLogger(cfg)
	defer flushLog()
	ctx := cmd.Context()

	docs, err := readIngestFile(args[0])
	if err != nil {
		return err
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer emb.Close()

	store, err := vectorstore.OpenBadgerStore(cfg.Vector.Path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	batch := ingestBatchSize
	if batch <= 0 {
		batch = len(docs)
	}
	for start := 0; start < len(docs); start += batch {
		end := min(start+batch, len(docs))

		texts := make([]string, 0, end-start)
		for _, doc := range docs[start:end] {
			texts = append(texts, doc.Content)
		}
		vectors, err := emb.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed documents %d-%d: %w", start, end-1, err)
		}

		records := make([]vectorstore.Record, 0, len(vectors))
		for i, vec := range vectors {
			records = append(records, vectorstore.Record{Document: docs[start+i].document(), Embedding: vec})
		}
		if err := store.Upsert(ctx, cfg.Vector.Collection, records); err != nil {
			return err
		}
		log.Info("Stored documents", "collection", cfg.Vector.Collection, "count", end, "total", len(docs))
	}
	return nil
}
