package evaluate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a free-text query with the keywords that make a document relevant to it.
type Scenario struct {
	Query    string   `yaml:"query"`
	Keywords []string `yaml:"keywords"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// DefaultScenarios returns the built-in Indonesian scenario set.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Query: "wisata alam sejuk", Keywords: []string{"alam", "sejuk", "gunung", "bukit", "hutan", "air terjun", "danau", "sawah"}},
		{Query: "pantai pasir putih", Keywords: []string{"pantai", "laut", "pasir", "pesisir", "samudera", "gili"}},
		{Query: "wisata sejarah candi", Keywords: []string{"candi", "sejarah", "museum", "prasasti", "kuno", "budaya", "purbakala"}},
		{Query: "tempat bermain anak", Keywords: []string{"anak", "bermain", "keluarga", "taman", "kolam", "waterpark", "edukasi"}},
		{Query: "air terjun indah", Keywords: []string{"air terjun", "curug", "coban", "tumpak"}},
	}
}

// LoadScenarios reads a YAML scenario file:
//
//	scenarios:
//	  - query: pantai pasir putih
//	    keywords: [pantai, laut]
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scenarios %s: %w", path, err)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenarios file %s has no scenarios", path)
	}
	for i, s := range f.Scenarios {
		if strings.TrimSpace(s.Query) == "" {
			return nil, fmt.Errorf("scenario %d: query is required", i)
		}
		if len(s.Keywords) == 0 {
			return nil, fmt.Errorf("scenario %q: at least one keyword is required", s.Query)
		}
	}
	return f.Scenarios, nil
}

// relevant reports whether doc contains any keyword, ignoring case.
func (s Scenario) relevant(doc string) bool {
	doc = strings.ToLower(doc)
	for _, k := range s.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(doc, k) {
			return true
		}
	}
	return false
}
