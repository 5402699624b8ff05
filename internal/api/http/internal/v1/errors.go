package v1

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	InvalidRequestCode       = 1000
	InvalidRequestMessage    = "invalid request"
	UserAlreadyExistsCode    = 1001
	UserAlreadyExistsMessage = "user already exists"
	UserNotFoundCode         = 1002
	UserNotFoundMessage      = "user not found"
	InvalidEmailCode         = 1003
	InvalidEmailMessage      = "invalid email"

	UserAlreadyActivatedCode      = 2001
	UserAlreadyActivatedMessage   = "user already activated"
	ActivationCodeExpiredCode     = 2002
	ActivationCodeExpiredMessage  = "activation code expired"
	InvalidActivationCodeCode     = 2003
	InvalidActivationCodeMessage  = "invalid activation code"
	MaxAttemptsExceededCode       = 2004
	MaxAttemptsExceededMessage    = "maximum number of attempts exceeded"
	ExpirationTimeOverflowCode    = 2005
	ExpirationTimeOverflowMessage = "activation code expiration time overflow"
	ValidationErrorCode           = 6000
	ValidationErrorMessage        = "Validation error"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
}

type InvalidActivationCodeStruct struct {
	ErrorStruct
	RemainingAttempts int `json:"remaining_attempts"`
}

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
}

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

var errorMessages = map[ErrorCode]ErrorMessage{
	InvalidRequestCode:         InvalidRequestMessage,
	UserAlreadyExistsCode:      UserAlreadyExistsMessage,
	UserNotFoundCode:           UserNotFoundMessage,
	InvalidEmailCode:           InvalidEmailMessage,
	UserAlreadyActivatedCode:   UserAlreadyActivatedMessage,
	ActivationCodeExpiredCode:  ActivationCodeExpiredMessage,
	InvalidActivationCodeCode:  InvalidActivationCodeMessage,
	MaxAttemptsExceededCode:    MaxAttemptsExceededMessage,
	ExpirationTimeOverflowCode: ExpirationTimeOverflowMessage,
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	message, ok := errorMessages[code]
	if !ok {
		return &ErrorStruct{
			ErrorCode:    UnknownErrorCode,
			ErrorMessage: UnknownErrorMessage,
		}
	}

	return &ErrorStruct{
		ErrorCode:    code,
		ErrorMessage: message,
	}
}
