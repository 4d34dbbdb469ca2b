package stage

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/ordersync/internal/model"
	"github.com/iurnickita/ordersync/internal/service/fulfillmentclient"
	"github.com/iurnickita/ordersync/internal/service/partnerclient"
)

type fakeFulfillment struct {
	createResult fulfillmentclient.Result
	createErr    error
	createCalls  int
	lastCreate   fulfillmentclient.CreateOrderRequest

	stateResult fulfillmentclient.StateResult
	stateErr    error
	stateCalls  int
}

func (f *fakeFulfillment) CreateOrder(ctx context.Context, req fulfillmentclient.CreateOrderRequest) (fulfillmentclient.Result, error) {
	f.createCalls++
	f.lastCreate = req
	return f.createResult, f.createErr
}

func (f *fakeFulfillment) GetOrderState(ctx context.Context, code int64) (fulfillmentclient.StateResult, error) {
	f.stateCalls++
	return f.stateResult, f.stateErr
}

type fakePartner struct {
	result    partnerclient.Result
	err       error
	calls     int
	lastID    int64
	lastState string
}

func (f *fakePartner) PatchOrderState(ctx context.Context, partnerOrderID int64, state string) (partnerclient.Result, error) {
	f.calls++
	f.lastID = partnerOrderID
	f.lastState = state
	return f.result, f.err
}

func testOrder() model.Order {
	var order model.Order
	order.Code = 42
	order.Data.ID = 12345
	order.Data.FullName = "Jan de Vries"
	order.Data.Email = "jan@example.com"
	order.Data.Phone = "+31612345678"
	order.Data.AddressLine1 = "Damrak 1"
	order.Data.ZipCode = "1012LG"
	order.Data.City = "Amsterdam"
	order.Data.Country = "NL"
	order.Data.CarrierKey = "DPD"
	order.Data.State = model.OrderStateNew
	order.Data.Details = []model.Detail{
		{ProductID: 100, Name: "Mug", Quantity: 2, Weight: 0.4, EanCode: "8711234567890"},
	}
	return order
}

// Submit

func TestSubmitOK(t *testing.T) {
	fulfillment := &fakeFulfillment{
		createResult: fulfillmentclient.Result{StatusCode: http.StatusOK},
	}
	submit := NewSubmit(fulfillment, zap.NewNop())

	patch, wake, err := submit.Process(context.Background(), testOrder())

	require.NoError(t, err)
	require.False(t, wake)
	require.NotNil(t, patch)
	require.Equal(t, model.OrderStateSent, *patch.State)
	require.Nil(t, patch.NeedFix)
}

func TestSubmitBuildRequest(t *testing.T) {
	fulfillment := &fakeFulfillment{
		createResult: fulfillmentclient.Result{StatusCode: http.StatusOK},
	}
	submit := NewSubmit(fulfillment, zap.NewNop())

	_, _, err := submit.Process(context.Background(), testOrder())
	require.NoError(t, err)

	req := fulfillment.lastCreate
	require.Equal(t, "42", req.OrderID)
	require.Equal(t, "standard", req.OrderType)
	require.Equal(t, model.Carriers["DPD"], req.Shipping.CarrierID)
	require.Equal(t, "NL", req.Shipping.DeliveryAddress.CountryCode)
	require.Equal(t, "Jan de Vries", req.Shipping.DeliveryAddress.PersonName)
	require.Len(t, req.Products, 1)
	require.Equal(t, "8711234567890", req.Products[0].Barcode)
	require.Equal(t, strconv.FormatInt(100, 10), req.Products[0].OPTProductID)
	require.Equal(t, 2, req.Products[0].Qty)
}

func TestSubmitAlreadyExists(t *testing.T) {
	// повторная отправка после таймаута: фулфилмент уже знает заказ
	fulfillment := &fakeFulfillment{
		createResult: fulfillmentclient.Result{StatusCode: http.StatusBadRequest, Body: "Order already exists."},
	}
	submit := NewSubmit(fulfillment, zap.NewNop())

	// идемпотентность: оба прохода сходятся к sent, не к needFix
	for i := 0; i < 2; i++ {
		patch, wake, err := submit.Process(context.Background(), testOrder())

		require.NoError(t, err)
		require.False(t, wake)
		require.NotNil(t, patch)
		require.Equal(t, model.OrderStateSent, *patch.State)
		require.Nil(t, patch.NeedFix)
	}
}

func TestSubmitInvalidData(t *testing.T) {
	fulfillment := &fakeFulfillment{
		createResult: fulfillmentclient.Result{StatusCode: http.StatusBadRequest, Body: "Invalid data."},
	}
	submit := NewSubmit(fulfillment, zap.NewNop())

	patch, _, err := submit.Process(context.Background(), testOrder())

	require.NoError(t, err)
	require.NotNil(t, patch)
	require.True(t, *patch.NeedFix)
	require.Equal(t, "Invalid data.", *patch.NeedFixReason)
	// состояние не трогаем: заказ остается в new
	require.Nil(t, patch.State)
}

func TestSubmitTransient(t *testing.T) {
	tests := []struct {
		name        string
		fulfillment *fakeFulfillment
	}{
		{
			name:        "network failure",
			fulfillment: &fakeFulfillment{createErr: errors.New("connection refused")},
		},
		{
			name:        "unexpected status",
			fulfillment: &fakeFulfillment{createResult: fulfillmentclient.Result{StatusCode: http.StatusInternalServerError}},
		},
		{
			name:        "other 400 body",
			fulfillment: &fakeFulfillment{createResult: fulfillmentclient.Result{StatusCode: http.StatusBadRequest, Body: "throttled"}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			submit := NewSubmit(test.fulfillment, zap.NewNop())

			patch, _, err := submit.Process(context.Background(), testOrder())

			// временная ошибка: без обновления, заказ повторится следующим циклом
			require.Error(t, err)
			require.Nil(t, patch)
		})
	}
}

// PollStatus

func TestPollStatusFinished(t *testing.T) {
	fulfillment := &fakeFulfillment{
		stateResult: fulfillmentclient.StateResult{StatusCode: http.StatusOK, State: "Finished"},
	}
	poll := NewPollStatus(fulfillment, zap.NewNop())

	order := testOrder()
	order.Data.State = model.OrderStateSent
	patch, wake, err := poll.Process(context.Background(), order)

	require.NoError(t, err)
	require.NotNil(t, patch)
	require.Equal(t, model.OrderStateResolved, *patch.State)
	require.Equal(t, "Finished", *patch.ReceivedState)
	// переход в resolved будит цикл уведомления
	require.True(t, wake)
}

func TestPollStatusInProduction(t *testing.T) {
	fulfillment := &fakeFulfillment{
		stateResult: fulfillmentclient.StateResult{StatusCode: http.StatusOK, State: "Production"},
	}
	poll := NewPollStatus(fulfillment, zap.NewNop())

	order := testOrder()
	order.Data.State = model.OrderStateSent
	patch, wake, err := poll.Process(context.Background(), order)

	require.NoError(t, err)
	require.False(t, wake)
	require.NotNil(t, patch)
	// статус сохраняется всегда, перехода нет
	require.Nil(t, patch.State)
	require.Equal(t, "Production", *patch.ReceivedState)
}

func TestPollStatusBroken(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound} {
		fulfillment := &fakeFulfillment{
			stateResult: fulfillmentclient.StateResult{StatusCode: status, Body: "Order not found."},
		}
		poll := NewPollStatus(fulfillment, zap.NewNop())

		order := testOrder()
		order.Data.State = model.OrderStateSent
		patch, wake, err := poll.Process(context.Background(), order)

		require.NoError(t, err)
		require.False(t, wake)
		require.NotNil(t, patch)
		require.True(t, *patch.NeedFix)
		require.Equal(t, "Order not found.", *patch.NeedFixReason)
		require.Nil(t, patch.State)
	}
}

func TestPollStatusTransient(t *testing.T) {
	fulfillment := &fakeFulfillment{
		stateResult: fulfillmentclient.StateResult{StatusCode: http.StatusServiceUnavailable},
	}
	poll := NewPollStatus(fulfillment, zap.NewNop())

	patch, _, err := poll.Process(context.Background(), testOrder())

	require.Error(t, err)
	require.Nil(t, patch)
}

// NotifyPartner

func TestNotifyPartnerOK(t *testing.T) {
	partner := &fakePartner{result: partnerclient.Result{StatusCode: http.StatusOK}}
	notify := NewNotifyPartner(partner, zap.NewNop())

	order := testOrder()
	order.Data.State = model.OrderStateResolved
	order.Data.ReceivedState = "Finished"
	patch, wake, err := notify.Process(context.Background(), order)

	require.NoError(t, err)
	require.False(t, wake)
	require.NotNil(t, patch)
	require.Equal(t, model.OrderStateFinished, *patch.State)
	// партнеру уходит его номер заказа и последний полученный статус
	require.EqualValues(t, 12345, partner.lastID)
	require.Equal(t, "Finished", partner.lastState)
}

func TestNotifyPartnerBadRequest(t *testing.T) {
	partner := &fakePartner{result: partnerclient.Result{StatusCode: http.StatusBadRequest}}
	notify := NewNotifyPartner(partner, zap.NewNop())

	patch, _, err := notify.Process(context.Background(), testOrder())

	require.NoError(t, err)
	require.NotNil(t, patch)
	require.True(t, *patch.NeedFix)
	require.Equal(t, "Bad request finish order.", *patch.NeedFixReason)
	require.Nil(t, patch.State)
}

func TestNotifyPartnerNotFound(t *testing.T) {
	partner := &fakePartner{result: partnerclient.Result{StatusCode: http.StatusNotFound}}
	notify := NewNotifyPartner(partner, zap.NewNop())

	patch, _, err := notify.Process(context.Background(), testOrder())

	require.NoError(t, err)
	require.NotNil(t, patch)
	require.True(t, *patch.NeedFix)
	require.Equal(t, "Order does not exist but should!", *patch.NeedFixReason)
	require.Nil(t, patch.State)
}

func TestNotifyPartnerTransient(t *testing.T) {
	partner := &fakePartner{err: errors.New("connection reset")}
	notify := NewNotifyPartner(partner, zap.NewNop())

	patch, _, err := notify.Process(context.Background(), testOrder())

	require.Error(t, err)
	require.Nil(t, patch)
}
