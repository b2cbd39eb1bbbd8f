package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

// seedDocument is the layout of a seed file
type seedDocument struct {
	Articles []*domain.Article `json:"articles" yaml:"articles"`
}

// loadArticles reads and validates the articles in path
func loadArticles(path string) ([]*domain.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var doc seedDocument
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(doc.Articles) == 0 {
		return nil, fmt.Errorf("%s contains no articles", path)
	}

	seen := make(map[string]bool, len(doc.Articles))
	for i, article := range doc.Articles {
		if article == nil {
			return nil, fmt.Errorf("article %d is empty", i)
		}
		if err := article.Validate(); err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		if seen[article.Name] {
			return nil, fmt.Errorf("article %q appears twice", article.Name)
		}
		seen[article.Name] = true

		for j, c := range article.Comments {
			article.Comments[j] = c.Normalize()
		}
		if article.Comments == nil {
			article.Comments = []domain.Comment{}
		}
	}

	return doc.Articles, nil
}
