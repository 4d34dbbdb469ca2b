package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iurnickita/ordersync/internal/model"
)

// Результат проверки входящего заказа.
// Value заполнен, если payload удалось разобрать в структуру
type Outcome struct {
	NeedFix       bool
	NeedFixReason string
	Value         *model.Order
}

// Схема входящего заказа
type orderPayload struct {
	ID           *int64          `json:"id" validate:"required"`
	FullName     string          `json:"fullName" validate:"required"`
	Email        string          `json:"email" validate:"required,email"`
	Phone        string          `json:"phone" validate:"required"`
	AddressLine1 string          `json:"addressLine1" validate:"required"`
	AddressLine2 *string         `json:"addressLine2"`
	Company      *string         `json:"company"`
	ZipCode      string          `json:"zipCode" validate:"required"`
	City         string          `json:"city" validate:"required"`
	Country      string          `json:"country"`
	CarrierKey   string          `json:"carrierKey"`
	Status       string          `json:"status"`
	Details      []detailPayload `json:"details" validate:"dive"`
}

type detailPayload struct {
	ProductID *int64  `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	Quantity  *int    `json:"quantity" validate:"required"`
	Weight    float64 `json:"weight"`
	EanCode   string  `json:"eanCode"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	// в сообщениях об ошибках используем имена полей из json
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate проверяет входящий заказ: сначала структура, затем справочники.
// Чистая функция, останавливается на первой ошибке
func Validate(raw []byte) Outcome {
	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Outcome{NeedFix: true, NeedFixReason: err.Error()}
	}

	if err := validate.Struct(payload); err != nil {
		reason := err.Error()
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			reason = violationMessage(verrs[0])
		}
		return Outcome{NeedFix: true, NeedFixReason: reason}
	}

	order := payload.toOrder()

	// Проверка по справочникам: сначала перевозчик, потом страна.
	// Структура разобрана, поэтому Value возвращается
	if _, ok := model.Carriers[payload.CarrierKey]; !ok {
		return Outcome{
			NeedFix:       true,
			NeedFixReason: fmt.Sprintf("Unknown carrierKey %q", payload.CarrierKey),
			Value:         order,
		}
	}
	if _, ok := model.CountryCodes[payload.Country]; !ok {
		return Outcome{
			NeedFix:       true,
			NeedFixReason: fmt.Sprintf("Unknown country %q", payload.Country),
			Value:         order,
		}
	}

	return Outcome{Value: order}
}

func violationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fieldErr.Field())
	case "email":
		return fmt.Sprintf("%q must be a valid email address", fieldErr.Field())
	default:
		return fmt.Sprintf("%q is invalid", fieldErr.Field())
	}
}

func (payload orderPayload) toOrder() *model.Order {
	var order model.Order
	order.Data.ID = *payload.ID
	order.Data.FullName = payload.FullName
	order.Data.Email = payload.Email
	order.Data.Phone = payload.Phone
	order.Data.AddressLine1 = payload.AddressLine1
	if payload.AddressLine2 != nil {
		order.Data.AddressLine2 = *payload.AddressLine2
	}
	if payload.Company != nil {
		order.Data.Company = *payload.Company
	}
	order.Data.ZipCode = payload.ZipCode
	order.Data.City = payload.City
	order.Data.Country = payload.Country
	order.Data.CarrierKey = payload.CarrierKey
	order.Data.Status = payload.Status
	for _, detail := range payload.Details {
		order.Data.Details = append(order.Data.Details, model.Detail{
			ProductID: *detail.ProductID,
			Name:      detail.Name,
			Quantity:  *detail.Quantity,
			Weight:    detail.Weight,
			EanCode:   detail.EanCode,
		})
	}
	return &order
}
