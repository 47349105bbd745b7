package errors

import "fmt"

// BaseError represents a basic error with a message
type BaseError struct {
	Message string
}

func (e BaseError) Error() string {
	return e.Message
}

// DBError represents a failure to reach the store (parse, open, ping)
type DBError struct {
	BaseError
}

// NewDBError creates a new database error
func NewDBError(message string) *DBError {
	return &DBError{
		BaseError: BaseError{
			Message: fmt.Sprintf("Database error: %s", message),
		},
	}
}

// QueryError represents an error during statement execution or row scanning
type QueryError struct {
	BaseError
}

// NewQueryError creates a new query error
func NewQueryError(message string) *QueryError {
	return &QueryError{
		BaseError: BaseError{
			Message: fmt.Sprintf("Query error: %s", message),
		},
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	BaseError
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{
		BaseError: BaseError{
			Message: fmt.Sprintf("Configuration error: %s", message),
		},
	}
}

// ServerError represents a server-related error
type ServerError struct {
	BaseError
}

// NewServerError creates a new server error
func NewServerError(message string) *ServerError {
	return &ServerError{
		BaseError: BaseError{
			Message: fmt.Sprintf("Server error: %s", message),
		},
	}
}

// NotFoundError is returned when a statement keyed on a task id affects no rows.
type NotFoundError struct {
	BaseError
	ID string
}

// NewNotFoundError creates a new not-found error for the given task id
func NewNotFoundError(id string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Message: fmt.Sprintf("Not found: task %s", id),
		},
		ID: id,
	}
}

// InputError represents a request payload that could not be decoded.
type InputError struct {
	BaseError
}

// NewInputError creates a new input error
func NewInputError(message string) *InputError {
	return &InputError{
		BaseError: BaseError{
			Message: fmt.Sprintf("Input error: %s", message),
		},
	}
}
