package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
)

var Validate *validator.Validate

var currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	_ = Validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyRe.MatchString(fl.Field().String())
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_576 // 1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

// decodeAndValidate writes a 400 itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := readJSON(w, r, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := Validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" "+fe.Tag())
			}
			writeJSONError(w, http.StatusBadRequest, "validation failed: "+strings.Join(fields, ", "))
			return false
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

type errorEnvelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
	Code     string `json:"code,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &errorEnvelope{Message: message})
}

// statusForCategory maps payment error categories to HTTP statuses.
func statusForCategory(c domain.ErrorCategory) int {
	switch c {
	case domain.CategoryInvalidArgument:
		return http.StatusBadRequest
	case domain.CategoryNotFound:
		return http.StatusNotFound
	case domain.CategoryNotRenewable, domain.CategoryConflict:
		return http.StatusConflict
	case domain.CategoryGateway:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError maps sentinel and typed domain errors onto a response.
func writeDomainError(w http.ResponseWriter, err error) {
	var ppe *domain.PaymentProcessingError
	if errors.As(err, &ppe) {
		env := &errorEnvelope{Message: ppe.Message, Category: string(ppe.Category)}
		var ge *domain.GatewayError
		if errors.As(err, &ge) {
			env.Code = ge.Code
		}
		if ppe.Category == domain.CategoryPersistence {
			env.Message = "payment could not be recorded"
		}
		writeJSON(w, statusForCategory(ppe.Category), env)
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSONError(w, http.StatusBadRequest, "invalid argument")
	case errors.Is(err, domain.ErrSubscriptionNotRenewable):
		writeJSONError(w, http.StatusConflict, "subscription is not active")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already exists")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
