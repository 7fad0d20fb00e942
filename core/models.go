package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// Key is a 64-bit content digest. It is the deduplication key for merged
// candidates and the cache key for memoized embeddings.
type Key uint64

// KeyFromContent generates a deterministic Key from text using BLAKE2b hashing.
// Identical content always produces the same key.
func KeyFromContent(text string) Key {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Key(binary.LittleEndian.Uint64(sum))
}

// EmptyContentKey is the key that candidates with empty content collapse to,
// so multiple empty-content candidates still deduplicate to one.
var EmptyContentKey = KeyFromContent("")

// SourceType identifies the connector a candidate originated from.
type SourceType string

const (
	// SourceDirectory marks candidates retrieved from the directory connector.
	SourceDirectory SourceType = "directory"
	// SourceSemantic marks candidates retrieved from the semantic-index connector.
	SourceSemantic SourceType = "semantic"
)

// SensitivityHighlyConfidential is the label gated by
// UserPermissions.HighlyConfidentialAccess.
const SensitivityHighlyConfidential = "HighlyConfidential"

// Candidate is one retrievable unit produced by a connector. Optional fields
// are represented by their zero values; absence never restricts access on its
// own (the trimmer encodes the default-allow rules explicitly).
type Candidate struct {
	Id                 string  // unique per originating connector
	Title              string  // display string, optional
	Content            string  // text body, may be empty
	ModifiedDate       string  // opaque timestamp, display-only
	RelevanceScore     float64 // connector-specific, monotonic within a connector
	SourceType         SourceType
	SourceWeight       float64  // assigned by the merger per SourceType
	SensitivityLabel   string   // e.g. "HighlyConfidential", "Internal"
	Permissions        []string // identity/group tokens explicitly allowed
	InformationBarrier string   // barrier tag restricting visibility
}

// RankScore returns the composite ranking score used by the merger.
func (c *Candidate) RankScore() float64 {
	return c.RelevanceScore * c.SourceWeight
}

// ContentKey returns the deduplication key for the candidate's content.
func (c *Candidate) ContentKey() Key {
	if c.Content == "" {
		return EmptyContentKey
	}
	return KeyFromContent(c.Content)
}

// UserPermissions is the authorization portion of a user context.
type UserPermissions struct {
	Groups                   []string // group tokens the identity belongs to
	HighlyConfidentialAccess bool     // gate for the HighlyConfidential label
	AllowedBarriers          []string // information barriers the identity may cross
}

// UserContext is the requesting identity's authorization envelope plus the
// display fields used for query expansion.
type UserContext struct {
	UserId      string
	Role        string
	Department  string
	CurrentDate string
	Permissions UserPermissions
}

// Metadata captures observational counts at each pipeline stage. Warnings
// carries one entry per retrieval branch or sub-endpoint that failed, so
// partial retrieval failure is distinguishable from "no relevant content".
type Metadata struct {
	RetrievedFromDirectory int
	RetrievedFromSemantic  int
	AfterDedupAndRank      int
	AfterSecurityTrim      int
	Warnings               []string
}

// GroundedResult is the pipeline output: the assembled grounded prompt, the
// surviving sources in final rank order, and the stage metadata.
type GroundedResult struct {
	GroundedPrompt string
	Sources        []*Candidate
	Metadata       Metadata
}
