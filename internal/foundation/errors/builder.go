package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.cause = err
	return b
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithRetry sets the retry strategy.
func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.retry = strategy
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// WithPath records the document path at fault.
func (b *ErrorBuilder) WithPath(path string) *ErrorBuilder {
	return b.WithContext(ContextPath, path)
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Retryable sets the retry strategy to backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	return b.WithRetry(RetryBackoff)
}

// UserAction sets the retry strategy to require user intervention.
func (b *ErrorBuilder) UserAction() *ErrorBuilder {
	return b.WithRetry(RetryUserAction)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		retry:    b.retry,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for common error patterns

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal().UserAction()
}

// BuildError creates a build processing error.
func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Fatal()
}

// RuntimeError creates a runtime error.
func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}

// Content errors. Each one names the document and the part of it at fault.

// InvalidField reports malformed or missing metadata in a document.
func InvalidField(path, field, message string) *ClassifiedError {
	return ValidationError(message).
		WithPath(path).
		WithContext(ContextField, field).
		Build()
}

// LayoutNotFound reports a document whose layout has no template.
func LayoutNotFound(path, layout string) *ClassifiedError {
	return NewError(CategoryLayout, "layout template not found").
		Fatal().
		UserAction().
		WithPath(path).
		WithContext(ContextLayout, layout).
		Build()
}

// BrokenReference reports a reference to a document that does not exist.
func BrokenReference(path, field, target string) *ClassifiedError {
	b := NewError(CategoryReference, "reference target does not exist").
		Fatal().
		UserAction().
		WithPath(path).
		WithContext(ContextReference, target)
	if field != "" {
		b = b.WithContext(ContextField, field)
	}
	return b.Build()
}

// DuplicateSlug reports two documents claiming one slug in a collection.
func DuplicateSlug(path, otherPath, slug string) *ClassifiedError {
	return NewError(CategoryAlreadyExists, "duplicate slug in collection").
		Fatal().
		UserAction().
		WithPath(path).
		WithContext(ContextOther, otherPath).
		WithContext(ContextSlug, slug).
		Build()
}

// RouteCollision reports two documents mapped to one output route.
func RouteCollision(path, otherPath, route string) *ClassifiedError {
	return NewError(CategoryAlreadyExists, "route already claimed").
		Fatal().
		UserAction().
		WithPath(path).
		WithContext(ContextOther, otherPath).
		WithContext(ContextRoute, route).
		Build()
}

// IsValidation reports whether err is a metadata validation failure.
func IsValidation(err error) bool { return HasCategory(err, CategoryValidation) }

// IsLayoutNotFound reports whether err is a missing layout template.
func IsLayoutNotFound(err error) bool { return HasCategory(err, CategoryLayout) }

// IsBrokenReference reports whether err is an unresolved reference.
func IsBrokenReference(err error) bool { return HasCategory(err, CategoryReference) }

// IsUniquenessViolation reports whether err is a slug or route collision.
func IsUniquenessViolation(err error) bool { return HasCategory(err, CategoryAlreadyExists) }
