package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeInvalidToken = "invalid_token"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Video / series errors
	ErrCodeVideoNotFound  = "video_not_found"
	ErrCodeVideoNotReady  = "video_not_ready"
	ErrCodeSeriesNotFound = "series_not_found"
	ErrCodeNotInSeries    = "not_in_series"

	// Cumulative quiz errors
	ErrCodeNoMembers        = "no_eligible_members"
	ErrCodeGenerationFailed = "generation_failed"
	ErrCodeQuizNotFound     = "quiz_not_found"
	ErrCodeDeleteFailed     = "delete_failed"

	// Quiz generation (individual) errors
	ErrCodeGeneratorUnavailable = "generator_unavailable"
	ErrCodeGeneratorFailed      = "generator_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"

	// Feature availability
	ErrCodeFeatureNotAvailable = "feature_not_available"
)
