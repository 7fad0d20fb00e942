// Package mock provides test doubles for the retrieval backend interfaces.
//
// MockDirectoryClient and MockSemanticIndex serve fixture candidates without
// any network dependency. Both support behavior injection via function
// fields and expose call counts for assertions about fan-out behavior.
package mock
