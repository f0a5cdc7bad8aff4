package runner

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ResultDir returns the content-addressed result directory for a job
// hash under resultsRoot.
func ResultDir(resultsRoot, jobHash string) string {
	return filepath.Join(resultsRoot, jobHash)
}

// CacheHit reports whether a valid cached result already exists for
// jobHash: the directory exists and its result.json parses.
func CacheHit(resultsRoot, jobHash string) bool {
	dir := ResultDir(resultsRoot, jobHash)
	b, err := os.ReadFile(filepath.Join(dir, "result.json"))
	if err != nil {
		return false
	}
	var v any
	return json.Unmarshal(b, &v) == nil
}

// LoadResult reads and parses the cached result.json for jobHash.
func LoadResult(resultsRoot, jobHash string) (ResultDocument, error) {
	var doc ResultDocument
	b, err := os.ReadFile(filepath.Join(ResultDir(resultsRoot, jobHash), "result.json"))
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}
