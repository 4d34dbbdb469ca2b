package stage

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/iurnickita/ordersync/internal/model"
	"github.com/iurnickita/ordersync/internal/service/partnerclient"
)

// NotifyPartner сообщает партнеру итоговый статус: resolved -> finished
type NotifyPartner struct {
	partner partnerclient.Client
	zaplog  *zap.Logger
}

func NewNotifyPartner(partner partnerclient.Client, zaplog *zap.Logger) *NotifyPartner {
	return &NotifyPartner{partner: partner, zaplog: zaplog}
}

func (n *NotifyPartner) State() string {
	return model.OrderStateResolved
}

func (n *NotifyPartner) Process(ctx context.Context, order model.Order) (*model.OrderPatch, bool, error) {
	resp, err := n.partner.PatchOrderState(ctx, order.Data.ID, order.Data.ReceivedState)
	if err != nil {
		return nil, false, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return &model.OrderPatch{State: model.StrPtr(model.OrderStateFinished)}, false, nil

	case http.StatusBadRequest:
		n.zaplog.Warn("bad request when finishing order, marking order as broken",
			zap.Int64("code", order.Code))
		return &model.OrderPatch{
			NeedFix:       model.BoolPtr(true),
			NeedFixReason: model.StrPtr(reasonBadRequestFinish),
		}, false, nil

	case http.StatusNotFound:
		n.zaplog.Warn("order does not exist on partner side, marking order as broken",
			zap.Int64("code", order.Code))
		return &model.OrderPatch{
			NeedFix:       model.BoolPtr(true),
			NeedFixReason: model.StrPtr(reasonOrderNotFound),
		}, false, nil

	default:
		return nil, false, fmt.Errorf("partner patch order status: %d", resp.StatusCode)
	}
}
