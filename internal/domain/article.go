package domain

import (
	"encoding/json"
	"strings"
)

// Article represents a blog article keyed by its name
type Article struct {
	Name     string    `json:"name" bson:"name" yaml:"name"`
	Title    string    `json:"title,omitempty" bson:"title,omitempty" yaml:"title"`
	Author   string    `json:"author,omitempty" bson:"author,omitempty" yaml:"author"`
	Body     string    `json:"body,omitempty" bson:"body,omitempty" yaml:"body"`
	Upvotes  int64     `json:"upvotes" bson:"upvotes" yaml:"upvotes"`
	Comments []Comment `json:"comments" bson:"comments" yaml:"comments"`

	// Extra holds descriptive fields the store does not interpret.
	// They are persisted and rendered next to the known fields.
	Extra map[string]interface{} `json:"-" bson:",inline" yaml:",inline"`
}

// Comment is a single reader comment on an article
type Comment struct {
	Username string `json:"username" bson:"username" yaml:"username" validate:"required"`
	Text     string `json:"text" bson:"text" yaml:"text" validate:"required"`
}

// CommentRequest represents the body of an add-comment request
type CommentRequest struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// ToComment converts the request into a trimmed comment
func (r *CommentRequest) ToComment() Comment {
	return Comment{Username: r.Username, Text: r.Text}.Normalize()
}

// Normalize returns the comment with surrounding whitespace removed
func (c Comment) Normalize() Comment {
	return Comment{
		Username: strings.TrimSpace(c.Username),
		Text:     strings.TrimSpace(c.Text),
	}
}

var knownArticleFields = map[string]struct{}{
	"name":     {},
	"title":    {},
	"author":   {},
	"body":     {},
	"upvotes":  {},
	"comments": {},
}

// articleFields has Article's layout without its JSON methods.
type articleFields Article

// MarshalJSON renders the article with its pass-through fields flattened in.
// Comments are always rendered as an array, never null.
func (a Article) MarshalJSON() ([]byte, error) {
	fields := articleFields(a)
	if fields.Comments == nil {
		fields.Comments = []Comment{}
	}

	data, err := json.Marshal(fields)
	if err != nil || len(a.Extra) == 0 {
		return data, err
	}

	merged := make(map[string]json.RawMessage, len(knownArticleFields)+len(a.Extra))
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range a.Extra {
		if _, known := knownArticleFields[key]; known {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

// UnmarshalJSON parses an article, keeping unknown fields in Extra
func (a *Article) UnmarshalJSON(data []byte) error {
	var fields articleFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key := range knownArticleFields {
		delete(all, key)
	}
	if len(all) > 0 {
		fields.Extra = all
	} else {
		fields.Extra = nil
	}

	*a = Article(fields)
	return nil
}

// ToJSON converts article to JSON
func (a *Article) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

// FromJSON parses JSON into article
func FromJSON(data []byte) (*Article, error) {
	var article Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// Validate checks the fields a provisioned article must carry
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	// Lookups trim the requested name, so a padded name could never be reached
	if strings.TrimSpace(a.Name) != a.Name {
		return NewValidationError("name", "must not have surrounding whitespace")
	}
	if a.Upvotes < 0 {
		return NewValidationError("upvotes", "must not be negative")
	}
	return nil
}
