package model

import "time"

// Заказ партнера

type Order struct {
	Code int64 // внутренний идентификатор, назначает БД
	Data OrderData
}
type OrderData struct {
	ID            int64 // номер заказа на стороне партнера
	FullName      string
	Email         string
	Phone         string
	AddressLine1  string
	AddressLine2  string
	Company       string
	ZipCode       string
	City          string
	Country       string
	CarrierKey    string
	Status        string
	Details       []Detail
	State         string
	ReceivedState string // последний статус, полученный от фулфилмента
	NeedFix       bool
	NeedFixReason string
	OrderInput    string // исходный payload, только если не распарсился
	UploadedAt    time.Time
}

type Detail struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Weight    float64 `json:"weight"`
	EanCode   string  `json:"eanCode"`
}

// Жизненный цикл заказа. Состояние двигается только вперед
const (
	OrderStateNew      = "new"
	OrderStateSent     = "sent"
	OrderStateResolved = "resolved"
	OrderStateFinished = "finished"
)

// Терминальный статус заказа на стороне фулфилмента
const FulfillmentStateFinished = "Finished"

// Частичное обновление заказа. Заполненные поля попадают в UPDATE
type OrderPatch struct {
	State         *string
	ReceivedState *string
	NeedFix       *bool
	NeedFixReason *string
}

func (patch OrderPatch) Empty() bool {
	return patch.State == nil &&
		patch.ReceivedState == nil &&
		patch.NeedFix == nil &&
		patch.NeedFixReason == nil
}

func StrPtr(s string) *string { return &s }
func BoolPtr(b bool) *bool    { return &b }

// Справочник перевозчиков: ключ партнера -> ID перевозчика фулфилмента
var Carriers = map[string]int{
	"DPD": 1001,
	"DHL": 1002,
	"UPS": 1003,
	"GLS": 1004,
	"PPL": 1005,
}

// Справочник стран: код партнера -> код страны фулфилмента
var CountryCodes = map[string]string{
	"AT": "AT",
	"BE": "BE",
	"CZ": "CZ",
	"DE": "DE",
	"DK": "DK",
	"ES": "ES",
	"FI": "FI",
	"FR": "FR",
	"GB": "GB",
	"IT": "IT",
	"NL": "NL",
	"PL": "PL",
	"PT": "PT",
	"SE": "SE",
	"SK": "SK",
}
