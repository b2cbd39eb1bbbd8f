package validator

import (
	"errors"
	"testing"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

func TestValidateComment(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		in        domain.Comment
		wantField string
		want      domain.Comment
	}{
		{name: "valid", in: domain.Comment{Username: "bob", Text: "nice!"}, want: domain.Comment{Username: "bob", Text: "nice!"}},
		{name: "trimmed", in: domain.Comment{Username: " bob ", Text: " nice! "}, want: domain.Comment{Username: "bob", Text: "nice!"}},
		{name: "empty username", in: domain.Comment{Username: "", Text: "hi"}, wantField: "username"},
		{name: "blank text", in: domain.Comment{Username: "bob", Text: "   "}, wantField: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateComment(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Expected %+v, got %+v", tt.want, got)
				}
				return
			}

			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("Expected ErrInvalidInput, got %v", err)
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected *domain.ValidationError, got %T", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, vErr.Field)
			}
		})
	}
}
