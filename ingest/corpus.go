package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/grounder/store"
)

// corpusDocument is the JSON shape of one corpus entry.
type corpusDocument struct {
	Id                 string   `json:"id"`
	Collection         string   `json:"collection"`
	Title              string   `json:"title"`
	Content            string   `json:"content"`
	ModifiedDate       string   `json:"modifiedDate"`
	SensitivityLabel   string   `json:"sensitivityLabel"`
	Permissions        []string `json:"permissions"`
	InformationBarrier string   `json:"informationBarrier"`
}

// LoadCorpus reads a JSON corpus file: an array of documents carrying
// content plus access control metadata. Vectors are never part of the
// corpus; the seeder computes them.
func LoadCorpus(path string) ([]*store.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCorpus(data)
}

// ParseCorpus decodes corpus JSON into store documents.
func ParseCorpus(data []byte) ([]*store.Document, error) {
	var entries []corpusDocument
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corpus is not a JSON document array: %w", err)
	}

	docs := make([]*store.Document, len(entries))
	for i, entry := range entries {
		docs[i] = &store.Document{
			Id:                 entry.Id,
			Collection:         entry.Collection,
			Title:              entry.Title,
			Content:            entry.Content,
			ModifiedDate:       entry.ModifiedDate,
			SensitivityLabel:   entry.SensitivityLabel,
			Permissions:        entry.Permissions,
			InformationBarrier: entry.InformationBarrier,
		}
	}
	return docs, nil
}
