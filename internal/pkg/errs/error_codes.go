/*
Package errs provides the custom error type and application-level error code constants.

These codes identify specific business or system failures both internally and in
payloads sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Messaging Business Logic Errors
const (
	// ErrRoomNotFound indicates the referenced chat room does not exist.
	ErrRoomNotFound = 2103

	// ErrMessageContentTooLong indicates the message content exceeded the length limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageContentEmpty indicates an empty or whitespace-only message body.
	ErrMessageContentEmpty = 2202

	// ErrUserBlocked indicates the sender and the target have a block relation
	// in either direction; messaging between them is forbidden.
	ErrUserBlocked = 2301

	// ErrBlockSelf indicates an attempt to block, unblock or report oneself.
	ErrBlockSelf = 2302
)

// 3xxx: Identity and Session Errors
const (
	// ErrUnauthenticated indicates the bearer credential is missing or malformed.
	ErrUnauthenticated = 3101

	// ErrInvalidCredential indicates the credential failed signature or expiry checks.
	ErrInvalidCredential = 3102

	// ErrAccountUnavailable indicates the resolved account does not exist or is deactivated.
	ErrAccountUnavailable = 3103

	// ErrSessionReplaced indicates the connection was closed because the same
	// identity connected elsewhere.
	ErrSessionReplaced = 3104
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrStorageUnavailable indicates the persistence layer failed the operation.
	ErrStorageUnavailable = 5001
)
