package httputil

// Machine-readable error codes returned alongside error messages so
// clients can branch without parsing human-facing text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeValidationFailed   = "validation_failed"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeMissingAuth        = "missing_auth"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeInvalidResetToken  = "invalid_reset_token"
	CodeCooldownActive     = "cooldown_active"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeInternalError      = "internal_error"
)
