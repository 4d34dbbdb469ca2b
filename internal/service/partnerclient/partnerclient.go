package partnerclient

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const headerAPIKey = "X-API-KEY"

// Ответ партнера. Ошибка возвращается только при сбое транспорта
type Result struct {
	StatusCode int
	Body       string
}

type Client interface {
	PatchOrderState(ctx context.Context, partnerOrderID int64, state string) (Result, error)
}

type patchOrderBody struct {
	State string `json:"state"`
}

type client struct {
	serviceAddr string
	resty       *resty.Client
}

func NewClient(serviceAddr string, apiKey string) Client {
	return &client{
		serviceAddr: serviceAddr,
		resty:       resty.New().SetHeader(headerAPIKey, apiKey),
	}
}

func (client *client) PatchOrderState(ctx context.Context, partnerOrderID int64, state string) (Result, error) {
	setresp, err := client.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patchOrderBody{State: state}).
		Patch(fmt.Sprintf("%s/api/orders/%d", client.serviceAddr, partnerOrderID))
	if err != nil {
		return Result{}, err
	}

	return Result{
		StatusCode: setresp.StatusCode(),
		Body:       string(setresp.Body()),
	}, nil
}
