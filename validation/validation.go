// Package validation checks settings and gallery metadata before they are used.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "hitodl/errors"
	"hitodl/models"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their command-line flag name.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("flag"); name != "" {
			return "--" + name
		}
		return fld.Name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a config error listing every bad field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, e.Field()+" "+friendlyMessage(e))
	}
	sort.Strings(msgs)

	return apperrors.Configf("%s", strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "dir":
		return "must be an existing directory"
	default:
		return "is invalid"
	}
}

// Metadata checks the invariants of gallery metadata before it is persisted:
// every raw list is aligned with its resolved list and the source is set.
func Metadata(meta *models.GalleryMetadata) error {
	for _, c := range models.Categories {
		if c == models.CategoryTags {
			continue
		}
		raw, resolved := meta.Raw(c), meta.Resolved(c)
		if len(raw) != len(resolved) {
			return apperrors.Structuref("%s: %d raw names but %d resolved", c, len(raw), len(resolved))
		}
	}

	if meta.Source.ID == "" || meta.Source.URL == "" {
		return apperrors.Structuref("gallery source is incomplete")
	}
	if strings.TrimSpace(meta.Title) == "" {
		return apperrors.Structuref("gallery title is empty")
	}
	if meta.Language == "" {
		return apperrors.Structuref("gallery language is empty")
	}

	return nil
}
