package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/coachhub/coachapi/internal/domain"
)

func TestKind_IsValid(t *testing.T) {
	for _, k := range []domain.Kind{domain.KindWorksheet, domain.KindArticle, domain.KindVideo, domain.KindNote} {
		if !k.IsValid() {
			t.Fatalf("expected %q to be valid", k)
		}
	}
	if domain.Kind("podcast").IsValid() {
		t.Fatal("expected podcast to be invalid")
	}
}

func TestResource_RequiresAccessReason(t *testing.T) {
	tests := []struct {
		name string
		res  *domain.Resource
		want bool
	}{
		{"nil resource", nil, false},
		{"no privacy block", &domain.Resource{}, false},
		{"privacy block, no flags", &domain.Resource{Privacy: &domain.Privacy{}}, false},
		{"explicit flag", &domain.Resource{Privacy: &domain.Privacy{RequireReasonForAccess: true}}, true},
		{"sensitive content", &domain.Resource{Privacy: &domain.Privacy{SensitiveContent: true}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.res.RequiresAccessReason(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestValidationError_Unwraps(t *testing.T) {
	ve := domain.NewValidationError(
		domain.FieldError{Field: "title", Message: "title is a required field"},
		domain.FieldError{Field: "kind", Message: "kind is a required field"},
	)
	wrapped := fmt.Errorf("create resource: %w", ve)

	got, ok := domain.AsValidationError(wrapped)
	if !ok {
		t.Fatal("expected wrapped error to unwrap to *ValidationError")
	}
	if len(got.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(got.Details))
	}
	if _, ok := domain.AsValidationError(errors.New("boom")); ok {
		t.Fatal("plain error must not match")
	}
}
