package payment

import "strings"

var declineMessages = map[string]string{
	"card_declined":        "Your card was declined. Please try another payment method.",
	"expired_card":         "Your card has expired. Please use a different card.",
	"incorrect_cvc":        "The card security code (CVC) is incorrect.",
	"insufficient_funds":   "Your card has insufficient funds.",
	"invalid_expiry_month": "The expiration month is invalid.",
	"invalid_expiry_year":  "The expiration year is invalid.",
	"invalid_number":       "The card number is invalid.",
	"processing_error":     "An error occurred while processing your card. Please try again.",
}

// DescribeDeclineCode turns a gateway error code into a message a customer can read.
// An empty code means the gateway gave no classification at all.
func DescribeDeclineCode(code, gatewayMsg string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "Payment processing error: " + gatewayMsg
	}
	if msg, ok := declineMessages[code]; ok {
		return msg
	}
	return "Payment failed: " + gatewayMsg
}

// KnownDeclineCode reports whether code has a dedicated message.
func KnownDeclineCode(code string) bool {
	_, ok := declineMessages[strings.ToLower(code)]
	return ok
}
