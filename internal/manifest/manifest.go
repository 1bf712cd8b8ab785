// Package manifest writes the dataset's JSON manifest, grounded on the
// teacher's internal/metadata "observational only" discipline: the manifest
// is produced purely from Merger's returned counts, nothing here ever feeds
// back into a control-flow decision.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/speakleash/forumscraper/pkg/failure"
)

// Source is one entry in the manifest's sources array.
type Source struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	License string `json:"license"`
}

// Stats carries the real document/character counts plus the zeroed
// placeholder linguistic statistics the schema still requires.
type Stats struct {
	Documents    int `json:"documents"`
	Characters   int `json:"characters"`
	Sentences    int `json:"sentences"`
	Words        int `json:"words"`
	Nouns        int `json:"nouns"`
	Verbs        int `json:"verbs"`
	Punctuations int `json:"punctuations"`
	Symbols      int `json:"symbols"`
	Stopwords    int `json:"stopwords"`
	OOVs         int `json:"oovs"`
}

// Manifest is the full JSON document written to <dataset>.manifest.
type Manifest struct {
	Project     string   `json:"project"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	License     string   `json:"license"`
	Category    string   `json:"category"`
	Language    string   `json:"language"`
	FileSize    int      `json:"file_size"`
	Sources     []Source `json:"sources"`
	Stats       Stats    `json:"stats"`
}

type ManifestErrorCause string

const ErrCauseWriteFailure ManifestErrorCause = "write failed"

type ManifestError struct {
	Message   string
	Retryable bool
	Cause     ManifestErrorCause
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest error: %s: %s", e.Cause, e.Message)
}

func (e *ManifestError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// New builds the manifest for one dataset from the dataset identity fields
// and the Merger's final counts. characterSum doubles as file_size, per the
// schema's "bytes-or-character-sum" note — the corpus is stored compressed,
// so the character sum is the only stable, encoding-independent size figure.
func New(name, description, license, category, datasetURL string, documentCount, characterSum int) Manifest {
	return Manifest{
		Project:     "SpeakLeash",
		Name:        name,
		Description: description,
		License:     license,
		Category:    category,
		Language:    "pl",
		FileSize:    characterSum,
		Sources: []Source{
			{Name: name, URL: datasetURL, License: license},
		},
		Stats: Stats{
			Documents:  documentCount,
			Characters: characterSum,
		},
	}
}

// Write marshals m as indented JSON to path, creating or truncating it.
func Write(path string, m Manifest) failure.ClassifiedError {
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &ManifestError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return &ManifestError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}
	return nil
}
