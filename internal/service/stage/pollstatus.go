package stage

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/iurnickita/ordersync/internal/model"
	"github.com/iurnickita/ordersync/internal/service/fulfillmentclient"
)

// PollStatus опрашивает статус заказов в производстве: sent -> resolved
type PollStatus struct {
	fulfillment fulfillmentclient.Client
	zaplog      *zap.Logger
}

func NewPollStatus(fulfillment fulfillmentclient.Client, zaplog *zap.Logger) *PollStatus {
	return &PollStatus{fulfillment: fulfillment, zaplog: zaplog}
}

func (p *PollStatus) State() string {
	return model.OrderStateSent
}

func (p *PollStatus) Process(ctx context.Context, order model.Order) (*model.OrderPatch, bool, error) {
	resp, err := p.fulfillment.GetOrderState(ctx, order.Code)
	if err != nil {
		return nil, false, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// полученный статус сохраняется всегда,
		// переход - только на терминальном статусе фулфилмента
		patch := &model.OrderPatch{ReceivedState: model.StrPtr(resp.State)}
		if resp.State == model.FulfillmentStateFinished {
			patch.State = model.StrPtr(model.OrderStateResolved)
			return patch, true, nil
		}
		return patch, false, nil

	case http.StatusBadRequest, http.StatusNotFound:
		// заказ потерян или сломан на стороне фулфилмента, повтор не поможет
		p.zaplog.Warn("order state check failed, marking order as broken",
			zap.Int64("code", order.Code),
			zap.Int("status", resp.StatusCode))
		return &model.OrderPatch{
			NeedFix:       model.BoolPtr(true),
			NeedFixReason: model.StrPtr(resp.Body),
		}, false, nil

	default:
		return nil, false, fmt.Errorf("fulfillment order state status: %d", resp.StatusCode)
	}
}
