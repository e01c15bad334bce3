package achievekit

const (
	// INVALID_ARGUMENT_ERROR_CODE represents an error for invalid input arguments.
	INVALID_ARGUMENT_ERROR_CODE = 3
	// NOT_FOUND_ERROR_CODE represents an error for a resource not being found.
	NOT_FOUND_ERROR_CODE = 5
	// FAILED_PRECONDITION_ERROR_CODE represents an error for a failed precondition.
	FAILED_PRECONDITION_ERROR_CODE = 9
	// UNAVAILABLE_ERROR_CODE represents a transient failure of a remote collaborator.
	UNAVAILABLE_ERROR_CODE = 14
	// RESOURCE_EXHAUSTED_ERROR_CODE represents a throttled operation.
	RESOURCE_EXHAUSTED_ERROR_CODE = 8
	// INTERNAL_ERROR_CODE represents an internal server error.
	INTERNAL_ERROR_CODE = 13
)
