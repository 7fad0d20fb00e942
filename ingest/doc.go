// Package ingest seeds the document store from a JSON corpus: it loads
// corpus entries, embeds their content in concurrent batches with retry,
// normalizes the vectors, and persists the documents.
package ingest
