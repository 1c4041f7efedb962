package constant

const (
	ERR_VALIDATION_CODE                 = "VALIDATION_ERROR"
	ERR_INVALID_REQUEST_BODY_ERROR_CODE = "INVALID_REQUEST_BODY_ERROR"
	ERR_INTERNAL_SERVER_ERROR_CODE      = "INTERNAL_SERVER_ERROR"
	ERR_INTENRAL_SERVER_ERROR_MESSAGE   = "Something went wrong. If the problem persists, please contact support"
	ERR_INVALID_REQUEST_BODY_MESSAGE    = "The request is invalid or malformed"
	ERR_NOT_FOUND_ERROR                 = "NOT_FOUND_ERROR"
	ERR_UNATHORIZED_ERROR               = "UNAUTHORIEZED_ERROR"
)

const (
	ERR_NOT_AUTHENTICATED = "NOT_AUTHENTICATED"
	ERR_NOT_AUTHORIZED    = "NOT_AUTHORIZED"
	ERR_EVENT_NOT_FOUND   = "EVENT_NOT_FOUND"
	ERR_ALREADY_JOINED    = "ALREADY_JOINED"
	ERR_NOT_JOINED        = "NOT_JOINED"
	ERR_EVENT_FULL        = "EVENT_FULL"
	ERR_HOST_CANNOT_LEAVE = "HOST_CANNOT_LEAVE"
	ERR_STORE_UNAVAILABLE = "STORE_UNAVAILABLE"
)
