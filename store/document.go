package store

import (
	"github.com/poiesic/grounder/core"
)

// Collection names for the directory sub-endpoints a document can be served
// from. Every stored document belongs to exactly one collection.
const (
	CollectionSearch   = "search"
	CollectionMessages = "messages"
	CollectionFiles    = "files"
	CollectionLists    = "lists"
)

// Collections lists every known collection in serving order.
func Collections() []string {
	return []string{CollectionSearch, CollectionMessages, CollectionFiles, CollectionLists}
}

// Document is an organizational content item as persisted in the store:
// the content itself, the access control metadata the security trimmer
// evaluates, and optionally the content's embedding vector.
type Document struct {
	Id                 string
	Collection         string
	Title              string
	Content            string
	ModifiedDate       string
	SensitivityLabel   string
	Permissions        []string
	InformationBarrier string
	Vector             []float32
}

// Candidate converts the document into a retrieval candidate carrying the
// given relevance score. Source type and weight are stamped later by the
// connector that serves the candidate.
func (d *Document) Candidate(score float64) *core.Candidate {
	return &core.Candidate{
		Id:                 d.Id,
		Title:              d.Title,
		Content:            d.Content,
		ModifiedDate:       d.ModifiedDate,
		RelevanceScore:     score,
		SensitivityLabel:   d.SensitivityLabel,
		Permissions:        d.Permissions,
		InformationBarrier: d.InformationBarrier,
	}
}
