package fulfillmentclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Тело запроса создания заказа в фулфилменте
type CreateOrderRequest struct {
	OrderID          string    `json:"OrderID"`
	InvoiceSendLater bool      `json:"InvoiceSendLater"`
	Issued           string    `json:"Issued"`
	OrderType        string    `json:"OrderType"`
	Shipping         Shipping  `json:"Shipping"`
	Products         []Product `json:"Products"`
}

type Shipping struct {
	CarrierID       int             `json:"CarrierID"`
	DeliveryAddress DeliveryAddress `json:"DeliveryAddress"`
}

type DeliveryAddress struct {
	AddressLine1 string `json:"AddressLine1"`
	AddressLine2 string `json:"AddressLine2,omitempty"`
	City         string `json:"City"`
	Company      string `json:"Company,omitempty"`
	CountryCode  string `json:"CountryCode"`
	Email        string `json:"Email"`
	PersonName   string `json:"PersonName"`
	Phone        string `json:"Phone"`
	State        string `json:"State"`
	Zip          string `json:"Zip"`
}

type Product struct {
	Barcode      string `json:"Barcode"`
	OPTProductID string `json:"OPTProductID"`
	Qty          int    `json:"Qty"`
}

// Ответ фулфилмента. Ошибка возвращается только при сбое транспорта,
// статусы интерпретирует обработчик этапа
type Result struct {
	StatusCode int
	Body       string
}

// JSON ответ на запрос статуса заказа
type StateResult struct {
	StatusCode int
	State      string
	Body       string
}

type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (Result, error)
	GetOrderState(ctx context.Context, code int64) (StateResult, error)
}

type client struct {
	serviceAddr string
	resty       *resty.Client
}

func NewClient(serviceAddr string, user string, password string) Client {
	return &client{
		serviceAddr: serviceAddr,
		resty:       resty.New().SetBasicAuth(user, password),
	}
}

func (client *client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Result, error) {
	setresp, err := client.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(client.serviceAddr + "/api/orders")
	if err != nil {
		return Result{}, err
	}

	return Result{
		StatusCode: setresp.StatusCode(),
		Body:       string(setresp.Body()),
	}, nil
}

type stateAnswer struct {
	State string `json:"State"`
}

func (client *client) GetOrderState(ctx context.Context, code int64) (StateResult, error) {
	setresp, err := client.resty.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/api/orders/%d/state", client.serviceAddr, code))
	if err != nil {
		return StateResult{}, err
	}

	result := StateResult{
		StatusCode: setresp.StatusCode(),
		Body:       string(setresp.Body()),
	}
	if setresp.StatusCode() == http.StatusOK {
		var answer stateAnswer
		if err := json.Unmarshal(setresp.Body(), &answer); err != nil {
			return StateResult{}, err
		}
		result.State = answer.State
	}
	return result, nil
}
