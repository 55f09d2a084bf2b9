package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
	ErrCodeMessagingError     ErrorCode = "COMMON_016"
)

// Aliases used across layers.
const (
	CodeUnknown      ErrorCode = ""
	CodeOK           ErrorCode = "OK"
	CodeInternal               = ErrCodeInternal
	CodeInvalidParam           = ErrCodeBadRequest
	CodeUnauthorized           = ErrCodeUnauthorized
	CodeForbidden              = ErrCodeForbidden
	CodeNotFound               = ErrCodeNotFound
	CodeConflict               = ErrCodeConflict
	CodeRateLimit              = ErrCodeTooManyRequests
	CodeValidation             = ErrCodeValidation
	CodeDatabaseError          = ErrCodeDatabaseError
	CodeCacheError             = ErrCodeCacheError
	CodeStorageError           = ErrCodeStorageError
	CodeMessageQueueError      = ErrCodeMessagingError
)

// Exchange Rate Module Error Codes
const (
	ErrCodeProviderUnavailable ErrorCode = "FX_001"
	ErrCodeMissingRate         ErrorCode = "FX_002"
	ErrCodeUnsupportedCurrency ErrorCode = "FX_003"
	ErrCodeRateSnapshotInvalid ErrorCode = "FX_004"
)

// Booking Module Error Codes
const (
	ErrCodeBookingNotFound     ErrorCode = "BKG_001"
	ErrCodeStatusTableInvalid  ErrorCode = "BKG_002"
	ErrCodeBookingAmountAbsent ErrorCode = "BKG_003"
	ErrCodeReservationConflict ErrorCode = "BKG_004"
)

// Revenue Module Error Codes
const (
	ErrCodeRevenueFilterInvalid   ErrorCode = "REV_001"
	ErrCodeRevenueReportFailed    ErrorCode = "REV_002"
	ErrCodeRevenueSourceRetrieval ErrorCode = "REV_003"
)

// Commission Module Error Codes
const (
	ErrCodeCommissionNotFound          ErrorCode = "COM_001"
	ErrCodeCommissionInvalidTransition ErrorCode = "COM_002"
	ErrCodeCommissionFinalized         ErrorCode = "COM_003"
	ErrCodeCommissionRateInvalid       ErrorCode = "COM_004"
)

// Payout Module Error Codes
const (
	ErrCodePayoutNotFound          ErrorCode = "PAY_001"
	ErrCodeInsufficientBalance     ErrorCode = "PAY_002"
	ErrCodePayoutInvalidTransition ErrorCode = "PAY_003"
	ErrCodePayoutAmountInvalid     ErrorCode = "PAY_004"
	ErrCodeReceiptMissing          ErrorCode = "PAY_005"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,

	ErrCodeProviderUnavailable: http.StatusBadGateway,
	ErrCodeMissingRate:         http.StatusUnprocessableEntity,
	ErrCodeUnsupportedCurrency: http.StatusBadRequest,
	ErrCodeRateSnapshotInvalid: http.StatusBadGateway,

	ErrCodeBookingNotFound:     http.StatusNotFound,
	ErrCodeStatusTableInvalid:  http.StatusInternalServerError,
	ErrCodeBookingAmountAbsent: http.StatusUnprocessableEntity,
	ErrCodeReservationConflict: http.StatusConflict,

	ErrCodeRevenueFilterInvalid:   http.StatusBadRequest,
	ErrCodeRevenueReportFailed:    http.StatusInternalServerError,
	ErrCodeRevenueSourceRetrieval: http.StatusInternalServerError,

	ErrCodeCommissionNotFound:          http.StatusNotFound,
	ErrCodeCommissionInvalidTransition: http.StatusConflict,
	ErrCodeCommissionFinalized:         http.StatusConflict,
	ErrCodeCommissionRateInvalid:       http.StatusBadRequest,

	ErrCodePayoutNotFound:          http.StatusNotFound,
	ErrCodeInsufficientBalance:     http.StatusUnprocessableEntity,
	ErrCodePayoutInvalidTransition: http.StatusConflict,
	ErrCodePayoutAmountInvalid:     http.StatusBadRequest,
	ErrCodeReceiptMissing:          http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessagingError:     "message queue error",

	ErrCodeProviderUnavailable: "exchange rate provider unavailable",
	ErrCodeMissingRate:         "exchange rate not available",
	ErrCodeUnsupportedCurrency: "unsupported currency",
	ErrCodeRateSnapshotInvalid: "exchange rate snapshot incomplete",

	ErrCodeBookingNotFound:     "booking not found",
	ErrCodeStatusTableInvalid:  "booking status table incomplete",
	ErrCodeBookingAmountAbsent: "booking has no settled amount",
	ErrCodeReservationConflict: "reservation already exists",

	ErrCodeRevenueFilterInvalid:   "invalid revenue filter",
	ErrCodeRevenueReportFailed:    "revenue report generation failed",
	ErrCodeRevenueSourceRetrieval: "failed to load revenue sources",

	ErrCodeCommissionNotFound:          "commission record not found",
	ErrCodeCommissionInvalidTransition: "invalid commission status transition",
	ErrCodeCommissionFinalized:         "commission record is finalized",
	ErrCodeCommissionRateInvalid:       "invalid commission rate",

	ErrCodePayoutNotFound:          "payout request not found",
	ErrCodeInsufficientBalance:     "insufficient commission balance",
	ErrCodePayoutInvalidTransition: "invalid payout status transition",
	ErrCodePayoutAmountInvalid:     "invalid payout amount",
	ErrCodeReceiptMissing:          "payout receipt not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
