package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/api/respond"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/logging"
)

const (
	HeaderAccessReason = "X-Access-Reason"
	// AccessReasonField is both the query parameter and the body field name.
	AccessReasonField = "reasonForAccess"

	DefaultMinAccessReasonLength = 5
)

// AccessReasonOptions configures RequireAccessReason.
type AccessReasonOptions struct {
	MinLength int
	// OnDenied, when set, is called for every rejected request.
	OnDenied func(r *http.Request)
}

// RequireAccessReason gates resources flagged as requiring a justification.
// It must run after LoadResource. Requests for unflagged resources, or with
// no resource attached, pass through untouched.
//
// The reason is the first non-empty value among the X-Access-Reason header,
// the reasonForAccess query parameter and the reasonForAccess body field.
// After trimming it must be at least MinLength characters long.
func RequireAccessReason(opts AccessReasonOptions) func(http.Handler) http.Handler {
	minLen := opts.MinLength
	if minLen <= 0 {
		minLen = DefaultMinAccessReasonLength
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := ResourceFrom(r.Context())
			if !res.RequiresAccessReason() {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := findAccessReason(r)
			if err != nil {
				respond.MapError(w, err)
				return
			}
			reason := strings.TrimSpace(raw)
			if utf8.RuneCountInString(reason) < minLen {
				logging.FromContext(r.Context()).Info("access reason rejected",
					zap.String("resource_id", res.ID),
					zap.Int("length", utf8.RuneCountInString(reason)),
				)
				if opts.OnDenied != nil {
					opts.OnDenied(r)
				}
				respond.Validation(w, accessReasonError(minLen))
				return
			}

			ctx := context.WithValue(r.Context(), accessReasonKey, reason)
			ctx = logging.With(ctx, zap.String(string(accessReasonKey), reason))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessReasonError(minLen int) *domain.ValidationError {
	return domain.NewValidationError(domain.FieldError{
		Field:   AccessReasonField,
		Message: fmt.Sprintf(
			"a reason for access of at least %d characters is required via the %s header or the %s query or body parameter",
			minLen, HeaderAccessReason, AccessReasonField,
		),
	})
}

func findAccessReason(r *http.Request) (string, error) {
	if v := r.Header.Get(HeaderAccessReason); v != "" {
		return v, nil
	}
	if v := r.URL.Query().Get(AccessReasonField); v != "" {
		return v, nil
	}
	return bodyAccessReason(r)
}

// bodyAccessReason reads reasonForAccess from a JSON, urlencoded or
// multipart body. JSON bodies are restored so handlers can decode them;
// forms stay parsed on r. A body over the size cap is reported as
// domain.ErrPayloadTooLarge, any other unreadable body as no reason.
func bodyAccessReason(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		raw, err := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return "", payloadError(err)
		}
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return "", nil
		}
		s, _ := payload[AccessReasonField].(string)
		return s, nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := ParseForm(r); err != nil {
			return "", payloadError(err)
		}
		return r.PostForm.Get(AccessReasonField), nil
	}
	return "", nil
}

// MultipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const MultipartMemory = 8 << 20

// ParseForm parses an urlencoded or multipart body once, with the shared
// MultipartMemory limit. Later calls are no-ops.
func ParseForm(r *http.Request) error {
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		if r.MultipartForm != nil {
			return nil
		}
		return r.ParseMultipartForm(MultipartMemory)
	}
	if r.PostForm != nil {
		return nil
	}
	return r.ParseForm()
}

// payloadError keeps size-cap violations and drops every other read error.
func payloadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.ErrPayloadTooLarge
	}
	return nil
}
