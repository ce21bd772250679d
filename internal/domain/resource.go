package domain

import "time"

// Kind classifies a coaching resource.
type Kind string

const (
	KindWorksheet Kind = "worksheet"
	KindArticle   Kind = "article"
	KindVideo     Kind = "video"
	KindNote      Kind = "note"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindWorksheet, KindArticle, KindVideo, KindNote:
		return true
	}
	return false
}

// Privacy holds the flags that gate access to a resource.
// A nil *Privacy means the resource is unrestricted.
type Privacy struct {
	RequireReasonForAccess bool `json:"requireReasonForAccess"`
	SensitiveContent       bool `json:"sensitiveContent"`
}

// Resource is a piece of coaching material a coach shares with clients.
type Resource struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      Kind      `json:"kind"`
	Body      string    `json:"body,omitempty"`
	Privacy   *Privacy  `json:"privacy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RequiresAccessReason reports whether callers must justify reading r.
func (r *Resource) RequiresAccessReason() bool {
	if r == nil || r.Privacy == nil {
		return false
	}
	return r.Privacy.RequireReasonForAccess || r.Privacy.SensitiveContent
}

// ResourceFile is an uploaded attachment. The content itself is only
// loaded on demand and never serialized with the metadata.
type ResourceFile struct {
	ID          string    `json:"id"`
	ResourceID  string    `json:"resourceId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AccessAudit records one justified access to a gated resource.
type AccessAudit struct {
	ID            string    `json:"id"`
	ResourceID    string    `json:"resourceId"`
	Reason        string    `json:"reason"`
	CorrelationID string    `json:"correlationId,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`
	Method        string    `json:"method"`
	Path          string    `json:"path"`
	RemoteAddr    string    `json:"remoteAddr,omitempty"`
	AccessedAt    time.Time `json:"accessedAt"`
}

// CreateResourceRequest is the inbound payload for a new resource.
type CreateResourceRequest struct {
	Title   string   `json:"title" validate:"required,min=3,max=200"`
	Kind    Kind     `json:"kind" validate:"required,oneof=worksheet article video note"`
	Body    string   `json:"body" validate:"max=65536"`
	Privacy *Privacy `json:"privacy"`
}

// ListResourcesQuery is the query-string schema for listing resources.
// Query values arrive as strings, so numeric fields are constrained by tag
// and converted by the handler.
type ListResourcesQuery struct {
	Kind  string `json:"kind" validate:"omitempty,oneof=worksheet article video note"`
	Page  string `json:"page" validate:"omitempty,number"`
	Limit string `json:"limit" validate:"omitempty,number"`
}

// ResourceParams is the path-parameter schema for /resources/{id} routes.
type ResourceParams struct {
	ID string `json:"id" validate:"required,uuid4"`
}

// ListFilter holds query parameters for paginated resource listing.
type ListFilter struct {
	Kind  *Kind
	Page  int
	Limit int
}
