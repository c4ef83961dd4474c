package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ConvertError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *ConvertError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *ConvertError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Source structure errors

func StructureMismatch(category string, starts, ends int) *ConvertError {
	return New(CategoryStructure, SeverityWarning, "open/close tag count mismatch").
		WithContext("category", category).
		WithContext("starts", starts).
		WithContext("ends", ends)
}

func MissingTags(category string, position int) *ConvertError {
	return New(CategoryStructure, SeverityFatal, "missing closing tag").
		WithContext("category", category).
		WithContext("position", position)
}

func UnrecognizedBlock(offset int) *ConvertError {
	return New(CategoryBlock, SeverityFatal, "tag not owned by any block category").
		WithContext("offset", offset)
}

func UnsupportedKind(label string) *ConvertError {
	return New(CategoryKind, SeverityFatal, "unsupported content kind").
		WithContext("label", label)
}

func UnsupportedOperator(operator string) *ConvertError {
	return New(CategoryOperator, SeverityFatal, "unsupported command operator").
		WithContext("operator", operator)
}

// External system errors

func SourceSyncError(repo string, cause error) *ConvertError {
	return Wrap(cause, CategorySource, SeverityFatal, "source repository sync failed").
		WithContext("repository", repo)
}

func WriteError(path string, cause error) *ConvertError {
	return Wrap(cause, CategoryWrite, SeverityFatal, "output write failed").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *ConvertError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
