// Package mock provides test double implementations of the ai interfaces.
//
// MockEmbedder implements ai.Embedder without external dependencies. By
// default it returns deterministic vectors derived from a hash of the input
// text, so identical text always embeds identically. Behavior can be replaced
// per-test via the function fields, and CallCount supports assertions about
// how often the provider was invoked (for example, single-flight checks).
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("backend down")
//	}
package mock
