// Пакет stage содержит обработчики этапов конвейера синхронизации.
// Каждый обработчик потребляет заказы одного состояния, строит исходящий
// запрос и интерпретирует ответ внешнего API в частичное обновление заказа.
package stage

import (
	"context"

	"github.com/iurnickita/ordersync/internal/model"
)

// Processor - обработчик одного этапа.
// Process возвращает:
//   - патч заказа (nil - заказ не трогаем);
//   - признак "разбудить следующий цикл";
//   - ошибку только для временных сбоев: заказ остается в своем
//     состоянии и будет повторен следующим выполнением цикла
type Processor interface {
	State() string
	Process(ctx context.Context, order model.Order) (*model.OrderPatch, bool, error)
}

// Точные тексты ответов фулфилмента на создание заказа
const (
	bodyOrderExists = "Order already exists."
	bodyInvalidData = "Invalid data."
)

// Диагностики этапа уведомления партнера
const (
	reasonBadRequestFinish = "Bad request finish order."
	reasonOrderNotFound    = "Order does not exist but should!"
)
