// Package docstore backs the retrieval interfaces with the seeded
// document store: a DirectoryClient that serves each sub-endpoint from
// its collection with query word overlap scoring, and a SemanticIndex
// over the store's vector scan.
package docstore
