package services

import "errors"

// Error kinds, matching how failures propagate: validation and signature
// errors surface immediately, upstream and persistence errors on
// non-critical side effects are logged and swallowed.
const (
	KindValidation  = "validation"
	KindUpstream    = "upstream"
	KindSignature   = "signature"
	KindPersistence = "persistence"
	KindNotFound    = "not_found"
)

// CodedError carries a stable machine code and a caller-safe message.
// The wrapped cause is for logs only and is never returned to clients.
type CodedError struct {
	Code    string
	Kind    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *CodedError) Unwrap() error { return e.Err }

var (
	ErrEmptyCart = &CodedError{
		Code: "EMPTY_CART", Kind: KindValidation,
		Message: "cart is empty",
	}
	ErrInvalidCartItem = &CodedError{
		Code: "INVALID_CART_ITEM", Kind: KindValidation,
		Message: "cart items must have quantity >= 1 and a positive price",
	}
	ErrInvalidCustomerInfo = &CodedError{
		Code: "INVALID_CUSTOMER_INFO", Kind: KindValidation,
		Message: "customer information is missing or malformed",
	}
	ErrSignatureInvalid = &CodedError{
		Code: "SIGNATURE_INVALID", Kind: KindSignature,
		Message: "webhook signature verification failed",
	}
)

// checkoutFailed wraps a processor-side failure with a sanitized message.
// The raw cause stays attached for logging but callers only see the code.
func checkoutFailed(err error) *CodedError {
	return &CodedError{
		Code: "CHECKOUT_SESSION_FAILED", Kind: KindUpstream,
		Message: "failed to create checkout session, please try again",
		Err:     err,
	}
}

func sessionLookupFailed(err error) *CodedError {
	return &CodedError{
		Code: "SESSION_LOOKUP_FAILED", Kind: KindUpstream,
		Message: "failed to retrieve checkout session",
		Err:     err,
	}
}

func customerInfoRejected(err error) *CodedError {
	return &CodedError{
		Code: "INVALID_CUSTOMER_INFO", Kind: KindValidation,
		Message: "customer information is missing or malformed",
		Err:     err,
	}
}

// orderPersistFailed marks the one persistence failure that must fail the
// webhook response so the processor retries.
func orderPersistFailed(err error) *CodedError {
	return &CodedError{
		Code: "ORDER_PERSIST_FAILED", Kind: KindPersistence,
		Message: "failed to record order",
		Err:     err,
	}
}

func sessionNotFound(err error) *CodedError {
	return &CodedError{
		Code: "SESSION_NOT_FOUND", Kind: KindNotFound,
		Message: "checkout session not found",
		Err:     err,
	}
}

// requestExpired guards the verification and recovery endpoints against
// replayed requests.
var requestExpired = &CodedError{
	Code: "REQUEST_EXPIRED", Kind: KindValidation,
	Message: "request is too old",
}

// AsCoded extracts a CodedError from an error chain, or nil.
func AsCoded(err error) *CodedError {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
