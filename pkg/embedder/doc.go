// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and an implementation backed by
// any OpenAI-compatible embeddings endpoint.
//
// # Usage
//
//	e := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model:      "text-embedding-3-small",
//	    Dimensions: 1024,
//	})
//
//	vector, err := e.EmbedSingle(ctx, "ancient shark tooth")
//
// The query path issues exactly one embedding request per query; there is
// no batching, caching or retrying.
package embedder
