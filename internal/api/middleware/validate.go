package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"go.uber.org/zap"

	"github.com/coachhub/coachapi/internal/api/respond"
	"github.com/coachhub/coachapi/internal/domain"
	"github.com/coachhub/coachapi/internal/logging"
)

// Source names the part of the request a schema applies to.
type Source string

const (
	SourceBody   Source = "body"
	SourceQuery  Source = "query"
	SourceParams Source = "params"
)

// Validator checks decoded request parts against struct-tag schemas and
// reports every violation, not just the first.
type Validator struct {
	validate  *validator.Validate
	trans     ut.Translator
	onFailure func(r *http.Request, source Source)
}

// NewValidator builds a Validator whose field names follow json tags.
// onFailure may be nil.
func NewValidator(onFailure func(r *http.Request, source Source)) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Sprintf("register validator translations: %v", err))
	}

	return &Validator{validate: v, trans: trans, onFailure: onFailure}
}

// Struct validates s and returns a *domain.ValidationError listing every
// invalid field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	details := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, domain.FieldError{
			Field:   fieldPath(fe),
			Message: fe.Translate(v.trans),
		})
	}
	return domain.NewValidationError(details...)
}

// ValidateBody decodes the JSON body into a T, validates it and stores the
// result for ValidatedBody. Fields not declared by T are dropped.
func ValidateBody[T any](v *Validator) func(http.Handler) http.Handler {
	return validatePart[T](v, SourceBody, decodeBody)
}

// ValidateQuery validates the query string. T should declare string fields.
func ValidateQuery[T any](v *Validator) func(http.Handler) http.Handler {
	return validatePart[T](v, SourceQuery, decodeQuery)
}

// ValidateParams validates chi path parameters. T should declare string fields.
func ValidateParams[T any](v *Validator) func(http.Handler) http.Handler {
	return validatePart[T](v, SourceParams, decodeParams)
}

func ValidatedBody[T any](ctx context.Context) (T, bool) { return validated[T](ctx, SourceBody) }
func ValidatedQuery[T any](ctx context.Context) (T, bool) { return validated[T](ctx, SourceQuery) }
func ValidatedParams[T any](ctx context.Context) (T, bool) { return validated[T](ctx, SourceParams) }

func validated[T any](ctx context.Context, src Source) (T, bool) {
	v, ok := ctx.Value(validatedKey{src}).(T)
	return v, ok
}

func validatePart[T any](v *Validator, src Source, decode func(*http.Request, any) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var dst T
			var details []domain.FieldError

			if err := decode(r, &dst); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					respond.MapError(w, domain.ErrPayloadTooLarge)
					return
				}
				var typeErr *json.UnmarshalTypeError
				if !errors.As(err, &typeErr) {
					v.reject(w, r, src, domain.NewValidationError(domain.FieldError{
						Field:   string(src),
						Message: fmt.Sprintf("%s must be a valid JSON object", src),
					}))
					return
				}
				details = append(details, typeMismatch(typeErr))
			}

			if err := v.Struct(&dst); err != nil {
				ve, ok := domain.AsValidationError(err)
				if !ok {
					respond.MapError(w, err)
					return
				}
				details = mergeDetails(details, ve.Details)
			}

			if len(details) > 0 {
				v.reject(w, r, src, domain.NewValidationError(details...))
				return
			}

			ctx := context.WithValue(r.Context(), validatedKey{src}, dst)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (v *Validator) reject(w http.ResponseWriter, r *http.Request, src Source, ve *domain.ValidationError) {
	logging.FromContext(r.Context()).Info("request validation failed",
		zap.String("source", string(src)),
		zap.Int("violations", len(ve.Details)),
	)
	if v.onFailure != nil {
		v.onFailure(r, src)
	}
	respond.Validation(w, ve)
}

// decodeBody reads the whole body, restores it for later stages and
// unmarshals it into dst. An empty body decodes as {}.
func decodeBody(r *http.Request, dst any) error {
	var raw []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		raw = b
		r.Body = io.NopCloser(bytes.NewReader(raw))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	return json.Unmarshal(raw, dst)
}

func decodeQuery(r *http.Request, dst any) error {
	values := r.URL.Query()
	m := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			m[k] = vs[0]
		} else {
			m[k] = vs
		}
	}
	return remarshal(m, dst)
}

func decodeParams(r *http.Request, dst any) error {
	m := make(map[string]any)
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if k == "*" {
				continue
			}
			m[k] = rctx.URLParams.Values[i]
		}
	}
	return remarshal(m, dst)
}

func remarshal(m map[string]any, dst any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// fieldPath strips the root struct name from a validator namespace, so
// "CreateResourceRequest.privacy.sensitiveContent" becomes
// "privacy.sensitiveContent".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func typeMismatch(e *json.UnmarshalTypeError) domain.FieldError {
	field := e.Field
	if field == "" {
		field = "body"
	}
	return domain.FieldError{
		Field:   field,
		Message: fmt.Sprintf("%s must be of type %s", field, jsonTypeName(e.Type)),
	}
}

func jsonTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// mergeDetails appends extra to base, skipping fields base already reports.
func mergeDetails(base, extra []domain.FieldError) []domain.FieldError {
	seen := make(map[string]struct{}, len(base))
	for _, d := range base {
		seen[d.Field] = struct{}{}
	}
	for _, d := range extra {
		if _, ok := seen[d.Field]; ok {
			continue
		}
		base = append(base, d)
	}
	return base
}
