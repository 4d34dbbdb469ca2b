package stage

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/ordersync/internal/model"
	"github.com/iurnickita/ordersync/internal/service/fulfillmentclient"
)

// Submit передает новые заказы в фулфилмент: new -> sent
type Submit struct {
	fulfillment fulfillmentclient.Client
	zaplog      *zap.Logger
}

func NewSubmit(fulfillment fulfillmentclient.Client, zaplog *zap.Logger) *Submit {
	return &Submit{fulfillment: fulfillment, zaplog: zaplog}
}

func (s *Submit) State() string {
	return model.OrderStateNew
}

func (s *Submit) Process(ctx context.Context, order model.Order) (*model.OrderPatch, bool, error) {
	resp, err := s.fulfillment.CreateOrder(ctx, s.buildRequest(order))
	if err != nil {
		return nil, false, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return &model.OrderPatch{State: model.StrPtr(model.OrderStateSent)}, false, nil

	case resp.StatusCode == http.StatusBadRequest && resp.Body == bodyOrderExists:
		// заказ уже принят фулфилментом (повтор после таймаута) - считаем отправленным
		s.zaplog.Warn("order already exists, mark it as sent",
			zap.Int64("code", order.Code))
		return &model.OrderPatch{State: model.StrPtr(model.OrderStateSent)}, false, nil

	case resp.StatusCode == http.StatusBadRequest && resp.Body == bodyInvalidData:
		s.zaplog.Warn("invalid data, marking order as broken",
			zap.Int64("code", order.Code))
		return &model.OrderPatch{
			NeedFix:       model.BoolPtr(true),
			NeedFixReason: model.StrPtr(resp.Body),
		}, false, nil

	default:
		return nil, false, fmt.Errorf("fulfillment create order status: %d", resp.StatusCode)
	}
}

func (s *Submit) buildRequest(order model.Order) fulfillmentclient.CreateOrderRequest {
	data := order.Data

	products := make([]fulfillmentclient.Product, 0, len(data.Details))
	for _, detail := range data.Details {
		products = append(products, fulfillmentclient.Product{
			Barcode:      detail.EanCode,
			OPTProductID: strconv.FormatInt(detail.ProductID, 10),
			Qty:          detail.Quantity,
		})
	}

	return fulfillmentclient.CreateOrderRequest{
		OrderID:          strconv.FormatInt(order.Code, 10),
		InvoiceSendLater: false,
		Issued:           time.Now().UTC().Format(time.RFC3339),
		OrderType:        "standard",
		Shipping: fulfillmentclient.Shipping{
			CarrierID: model.Carriers[data.CarrierKey],
			DeliveryAddress: fulfillmentclient.DeliveryAddress{
				AddressLine1: data.AddressLine1,
				AddressLine2: data.AddressLine2,
				City:         data.City,
				Company:      data.Company,
				CountryCode:  model.CountryCodes[data.Country],
				Email:        data.Email,
				PersonName:   data.FullName,
				Phone:        data.Phone,
				State:        data.Country,
				Zip:          data.ZipCode,
			},
		},
		Products: products,
	}
}
