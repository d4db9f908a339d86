// Package recommender suggests related museum specimens.
//
// Two queries are offered. GraphQuery walks the specimen knowledge graph and
// ranks other specimens by the number of attribute nodes (era, habitat,
// material, taxonomy level and so on) they share with the given one.
// SemanticQuery embeds free text, retrieves the nearest documents from a
// vector collection and has a language model write a short introduction plus
// a description and justification for every hit.
//
// # Basic Usage
//
//	graph, err := driver.NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	emb := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{Dimensions: 1024})
//	store, _ := vectorstore.NewChromaStore(vectorstore.ChromaConfig{URI: "http://localhost:8000"})
//	llm, _ := nlp.NewOpenAIClient(apiKey, nlp.Config{Model: "gpt-4o-mini"})
//
//	client, err := recommender.NewClient(graph, emb, store, llm, &recommender.Config{Collection: "specimens"}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
//	names, err := client.GraphQuery(ctx, "Tyrannosaurus")
//
// # Errors
//
// Every error returned by the client is an *Error carrying a Kind.
// KindValidation errors are safe to show to callers; KindUpstream errors
// wrap backend failures and should be logged, not returned verbatim.
package recommender
