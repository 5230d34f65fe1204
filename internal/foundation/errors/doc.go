// Package errors provides the classified error primitives used across pagesmith.
//
// Every failure a build can hit is a ClassifiedError with a category, severity,
// retry strategy and structured context. Content errors always carry the
// document path plus the field, layout, reference or route at fault.
//
// Example usage:
//
//	err := errors.ValidationError("title is required").
//		WithPath("content/blog/enums.md").
//		WithContext(errors.ContextField, "title").
//		Build()
package errors
