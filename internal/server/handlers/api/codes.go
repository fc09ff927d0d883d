package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error

	// Auth errors
	CodeAuthInvalidCredentials = "E_AUTH_INVALID_CREDENTIALS" // session token is invalid, expired, or malformed.

	// Service availability errors
	CodeStoreNotConfigured = "E_STORE_NOT_CONFIGURED" // object store credentials are not configured on this server.
	CodeCryptNotConfigured = "E_CRYPT_NOT_CONFIGURED" // encryption was requested but no master secret is configured.

	// Upload errors
	CodeUploadNotFound    = "E_UPLOAD_NOT_FOUND"    // the referenced upload could not be found.
	CodeUploadWrongStatus = "E_UPLOAD_WRONG_STATUS" // the operation conflicts with the upload's current status.
	CodeUploadIncomplete  = "E_UPLOAD_INCOMPLETE"   // completion was requested while parts are still missing.
	CodeUploadPutFailed   = "E_UPLOAD_PUT_FAILED"   // a failure during the operation to store uploaded content.
)
