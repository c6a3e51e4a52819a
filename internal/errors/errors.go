package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = NewAppError("NOT_FOUND", "Recurso não encontrado", http.StatusNotFound)
	ErrUnauthorized   = NewAppError("UNAUTHORIZED", "Não autorizado", http.StatusUnauthorized)
	ErrForbidden      = NewAppError("FORBIDDEN", "Acesso negado", http.StatusForbidden)
	ErrBadRequest     = NewAppError("BAD_REQUEST", "Requisição inválida", http.StatusBadRequest)
	ErrInternalServer = NewAppError("INTERNAL_SERVER_ERROR", "Erro interno do servidor", http.StatusInternalServerError)
	ErrConflict       = NewAppError("CONFLICT", "Conflito de recursos", http.StatusConflict)
	ErrValidation     = NewAppError("VALIDATION_ERROR", "Erro de validação", http.StatusBadRequest)
	ErrDatabase       = NewAppError("DATABASE_ERROR", "Erro no banco de dados", http.StatusInternalServerError)
	ErrTooManyRequest = NewAppError("RATE_LIMIT_EXCEEDED", "Muitas requisições, tente novamente em instantes", http.StatusTooManyRequests)

	ErrDonorNotFound     = NewAppError("DONOR_NOT_FOUND", "Doador não encontrado", http.StatusNotFound)
	ErrCharityNotFound   = NewAppError("CHARITY_NOT_FOUND", "Instituição não encontrada", http.StatusNotFound)
	ErrCampaignNotFound  = NewAppError("CAMPAIGN_NOT_FOUND", "Campanha não encontrada", http.StatusNotFound)
	ErrDonationNotFound  = NewAppError("DONATION_NOT_FOUND", "Doação não encontrada", http.StatusNotFound)
	ErrResourceNotOwned  = NewAppError("RESOURCE_NOT_OWNED", "Recurso não pertence ao usuário", http.StatusForbidden)
	ErrEmailAlreadyInUse = NewAppError("EMAIL_ALREADY_IN_USE", "Email já cadastrado", http.StatusConflict)

	ErrInvalidStatusTransition = NewAppError("INVALID_STATUS_TRANSITION", "Transição de status inválida", http.StatusConflict)
	ErrCharityNotApproved      = NewAppError("CHARITY_NOT_APPROVED", "Instituição ainda não foi aprovada", http.StatusUnprocessableEntity)
	ErrCampaignNotOpen         = NewAppError("CAMPAIGN_NOT_OPEN", "Campanha não está aberta para doações", http.StatusUnprocessableEntity)
	ErrCampaignHasDonations    = NewAppError("CAMPAIGN_HAS_DONATIONS", "Campanha possui doações confirmadas", http.StatusConflict)
	ErrDonationNotEditable     = NewAppError("DONATION_NOT_EDITABLE", "Doação só pode ser alterada enquanto pendente", http.StatusConflict)
	ErrNotRecurring            = NewAppError("DONATION_NOT_RECURRING", "Doação não é recorrente", http.StatusUnprocessableEntity)
	ErrJobLocked               = NewAppError("JOB_LOCKED", "Tarefa já está em execução", http.StatusConflict)
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is compara pelo codigo, assim clones produzidos por WithError/WithDetails
// continuam casando com o erro predefinido em errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	clone.Details = make(map[string]interface{}, len(details))
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	clone := e.clone()
	clone.Details[key] = value
	return clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func WrapError(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	return &clone
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound.WithError(err)
	}

	if errors.Is(err, context.Canceled) {
		return WrapError(err, "REQUEST_CANCELED", "Requisição cancelada pelo cliente", http.StatusRequestTimeout)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(err, "REQUEST_TIMEOUT", "Tempo limite da requisição excedido", http.StatusGatewayTimeout)
	}

	return WrapError(err, "UNKNOWN_ERROR", "Erro desconhecido", http.StatusInternalServerError)
}

func NewAuthError(code, message string) *AppError {
	return NewAppError(code, message, http.StatusUnauthorized)
}

func NewValidationError(field, message string) *AppError {
	appErr := NewAppError("VALIDATION_ERROR", message, http.StatusBadRequest)
	if field != "" {
		appErr.Details["field"] = translateFieldName(field)
	}
	return appErr
}

func NewDatabaseError(err error) *AppError {
	return WrapError(err, "DATABASE_ERROR", "Erro ao executar operação no banco de dados", http.StatusInternalServerError)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError("NOT_FOUND", fmt.Sprintf("%s não encontrado", resource), http.StatusNotFound).
		WithDetail("resource", resource)
}

func NewStatusTransitionError(from, to string) *AppError {
	return ErrInvalidStatusTransition.WithDetails(map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

func ParseValidationErrors(err error) *AppError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ErrBadRequest.WithError(err)
	}

	fieldErrors := make([]map[string]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, map[string]string{
			"field":   translateFieldName(fieldErr.Field()),
			"message": translateValidationError(fieldErr),
		})
	}

	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Erro de validação nos campos",
		StatusCode: http.StatusBadRequest,
		Details: map[string]interface{}{
			"fields": fieldErrors,
		},
	}
}

var fieldNames = map[string]string{
	"amount":             "valor",
	"goalamount":         "meta",
	"goal_amount":        "meta",
	"charityid":          "instituição",
	"charity_id":         "instituição",
	"campaignid":         "campanha",
	"campaign_id":        "campanha",
	"donorid":            "doador",
	"title":              "título",
	"description":        "descrição",
	"name":               "nome",
	"email":              "email",
	"message":            "mensagem",
	"reason":             "motivo",
	"paymentmethod":      "forma de pagamento",
	"payment_method":     "forma de pagamento",
	"frequency":          "frequência",
	"recurringfrequency": "frequência",
	"recurrencetype":     "tipo de recorrência",
	"recurrenceinterval": "intervalo de recorrência",
	"startdate":          "data de início",
	"enddate":            "data de término",
	"status":             "status",
}

func translateFieldName(field string) string {
	if translated, ok := fieldNames[strings.ToLower(field)]; ok {
		return translated
	}
	return field
}

func translateValidationError(fe validator.FieldError) string {
	fieldName := translateFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fieldName)
	case "email":
		return "Email inválido"
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", fieldName, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", fieldName, fe.Param())
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s", fieldName, fe.Param())
	case "lte":
		return fmt.Sprintf("%s deve ser menor ou igual a %s", fieldName, fe.Param())
	case "gt":
		return fmt.Sprintf("%s deve ser maior que %s", fieldName, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s deve ser um dos valores: %s", fieldName, fe.Param())
	case "len":
		return fmt.Sprintf("%s deve ter exatamente %s caracteres", fieldName, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s deve ser uma data válida (%s)", fieldName, fe.Param())
	default:
		return fmt.Sprintf("Validação '%s' falhou para %s", fe.Tag(), fieldName)
	}
}
