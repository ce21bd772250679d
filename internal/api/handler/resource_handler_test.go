package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coachhub/coachapi/internal/domain"
)

func TestListFilter(t *testing.T) {
	video := domain.KindVideo

	cases := []struct {
		name string
		in   domain.ListResourcesQuery
		want domain.ListFilter
	}{
		{"defaults", domain.ListResourcesQuery{}, domain.ListFilter{Page: 1, Limit: defaultPageLimit}},
		{"explicit", domain.ListResourcesQuery{Page: "3", Limit: "10"}, domain.ListFilter{Page: 3, Limit: 10}},
		{"limit clamped", domain.ListResourcesQuery{Limit: "1000"}, domain.ListFilter{Page: 1, Limit: maxPageLimit}},
		{"non-positive ignored", domain.ListResourcesQuery{Page: "0", Limit: "-5"}, domain.ListFilter{Page: 1, Limit: defaultPageLimit}},
		{"kind", domain.ListResourcesQuery{Kind: "video"}, domain.ListFilter{Kind: &video, Page: 1, Limit: defaultPageLimit}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, listFilter(tc.in))
		})
	}
}
