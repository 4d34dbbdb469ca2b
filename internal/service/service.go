package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/ordersync/internal/intake"
	"github.com/iurnickita/ordersync/internal/model"
	"github.com/iurnickita/ordersync/internal/service/config"
	"github.com/iurnickita/ordersync/internal/service/fulfillmentclient"
	"github.com/iurnickita/ordersync/internal/service/partnerclient"
	"github.com/iurnickita/ordersync/internal/service/scheduler"
	"github.com/iurnickita/ordersync/internal/service/stage"
	"github.com/iurnickita/ordersync/internal/store"
)

type Service interface {
	SubmitRawOrder(ctx context.Context, raw []byte) error
	Start()
	Stop()
}

type service struct {
	cfg    config.Config
	store  store.Store
	sched  *scheduler.Scheduler
	zaplog *zap.Logger

	submitCycle *scheduler.Cycle
	pollCycle   *scheduler.Cycle
	notifyCycle *scheduler.Cycle
}

func NewService(cfg config.Config, store store.Store, zaplog *zap.Logger) Service {
	fulfillment := fulfillmentclient.NewClient(cfg.FulfillmentAddr, cfg.FulfillmentUser, cfg.FulfillmentPassword)
	partner := partnerclient.NewClient(cfg.PartnerAddr, cfg.PartnerAPIKey)

	service := &service{
		cfg:    cfg,
		store:  store,
		sched:  scheduler.NewScheduler(zaplog),
		zaplog: zaplog,
	}

	// Конвейер: submit (new->sent), pollstatus (sent->resolved),
	// notifypartner (resolved->finished).
	// Переход в resolved будит цикл уведомления без ожидания таймера
	service.submitCycle = service.sched.AddCycle("submit",
		cfg.SubmitDelay, cfg.CyclePeriod,
		service.cycleRun(stage.NewSubmit(fulfillment, zaplog), nil))
	service.pollCycle = service.sched.AddCycle("pollstatus",
		cfg.PollDelay, cfg.CyclePeriod,
		service.cycleRun(stage.NewPollStatus(fulfillment, zaplog), func() { service.notifyCycle.Wake() }))
	service.notifyCycle = service.sched.AddCycle("notifypartner",
		cfg.NotifyDelay, cfg.CyclePeriod,
		service.cycleRun(stage.NewNotifyPartner(partner, zaplog), nil))

	return service
}

func (service *service) Start() {
	service.sched.Start()
}

func (service *service) Stop() {
	service.sched.Stop()
}

// SubmitRawOrder проверяет входящий заказ и записывает его в состоянии new.
// Сломанный заказ тоже записывается: со снимком исходного payload при
// структурной ошибке, со структурой - при ошибке справочников
func (service *service) SubmitRawOrder(ctx context.Context, raw []byte) error {
	outcome := intake.Validate(raw)

	var order model.Order
	if outcome.Value != nil {
		order = *outcome.Value
	}
	order.Data.State = model.OrderStateNew
	order.Data.NeedFix = outcome.NeedFix
	order.Data.NeedFixReason = outcome.NeedFixReason
	order.Data.UploadedAt = time.Now().UTC()
	if outcome.NeedFix && outcome.Value == nil {
		order.Data.OrderInput = string(raw)
	}

	created, err := service.store.OrderPost(ctx, order)
	if err != nil {
		return err
	}

	if outcome.NeedFix {
		service.zaplog.Warn("order needs fix",
			zap.Int64("code", created.Code),
			zap.String("reason", outcome.NeedFixReason))
	}

	service.submitCycle.Wake()
	return nil
}

// cycleRun - одно выполнение цикла: пачка заказов состояния этапа,
// последовательно через обработчик, по одному запросу за раз
func (service *service) cycleRun(processor stage.Processor, wakeNext func()) func(ctx context.Context) {
	return func(ctx context.Context) {
		orders, err := service.store.OrderGetByState(ctx, processor.State(), service.cfg.BatchLimit)
		if err != nil {
			service.zaplog.Error("fetch orders failed",
				zap.String("state", processor.State()),
				zap.Error(err))
			return
		}
		if len(orders) == 0 {
			return
		}

		service.zaplog.Info("processing orders",
			zap.String("state", processor.State()),
			zap.Int("count", len(orders)))

		for _, order := range orders {
			select {
			case <-ctx.Done():
				return
			default:
			}

			patch, wake, err := processor.Process(ctx, order)
			if err != nil {
				// временная ошибка: пропускаем до следующего цикла
				service.zaplog.Warn("order processing skipped",
					zap.Int64("code", order.Code),
					zap.Error(err))
				continue
			}
			if patch != nil {
				if err := service.store.OrderPatch(ctx, order.Code, *patch); err != nil {
					service.zaplog.Error("order update failed",
						zap.Int64("code", order.Code),
						zap.Error(err))
					continue
				}
			}
			if wake && wakeNext != nil {
				wakeNext()
			}
		}
	}
}
