package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iurnickita/ordersync/internal/model"
	"github.com/iurnickita/ordersync/internal/store/config"
)

type Store interface {
	OrderPost(ctx context.Context, order model.Order) (model.Order, error)
	OrderGetByState(ctx context.Context, state string, limit int) ([]model.Order, error)
	OrderPatch(ctx context.Context, code int64, patch model.OrderPatch) error
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrAlreadyExists = errors.New("already exists")
	ErrEmptyPatch    = errors.New("empty patch")
)

type store struct {
	database *sql.DB
}

func NewStore(cfg config.Config) (Store, error) {
	db, err := sql.Open("pgx", cfg.DBDsn)
	if err != nil {
		return nil, err
	}

	// Таблица заказов.
	// Одна строка на заказ, конвейер меняет state/received_state/need_fix.
	// Строки заказов с need_fix исправляет оператор, автоматики нет
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS sync_order (" +
			" code BIGSERIAL PRIMARY KEY," +
			" partner_id BIGINT," +
			" full_name VARCHAR (100) NOT NULL DEFAULT ''," +
			" email VARCHAR (100) NOT NULL DEFAULT ''," +
			" phone VARCHAR (30) NOT NULL DEFAULT ''," +
			" address_line1 VARCHAR (100) NOT NULL DEFAULT ''," +
			" address_line2 VARCHAR (100) NOT NULL DEFAULT ''," +
			" company VARCHAR (100) NOT NULL DEFAULT ''," +
			" zip_code VARCHAR (20) NOT NULL DEFAULT ''," +
			" city VARCHAR (50) NOT NULL DEFAULT ''," +
			" country VARCHAR (10) NOT NULL DEFAULT ''," +
			" carrier_key VARCHAR (10) NOT NULL DEFAULT ''," +
			" status VARCHAR (30) NOT NULL DEFAULT ''," +
			" details JSONB NOT NULL DEFAULT '[]'," +
			" state VARCHAR (10) NOT NULL," +
			" received_state VARCHAR (50) NOT NULL DEFAULT ''," +
			" need_fix BOOLEAN NOT NULL DEFAULT FALSE," +
			" need_fix_reason TEXT NOT NULL DEFAULT ''," +
			" order_input TEXT NOT NULL DEFAULT ''," +
			" uploaded_at TIMESTAMP NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	// Повторная отправка одного и того же заказа партнером
	_, err = db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS sync_order_partner_id" +
			" ON sync_order (partner_id)" +
			" WHERE NOT need_fix;")
	if err != nil {
		return nil, err
	}

	return &store{
		database: db,
	}, nil
}

func (store *store) OrderPost(ctx context.Context, order model.Order) (model.Order, error) {
	details, err := json.Marshal(order.Data.Details)
	if err != nil {
		return model.Order{}, err
	}

	// Запись нового заказа
	row := store.database.QueryRowContext(ctx,
		"INSERT INTO sync_order (partner_id, full_name, email, phone,"+
			" address_line1, address_line2, company, zip_code, city, country,"+
			" carrier_key, status, details, state, received_state,"+
			" need_fix, need_fix_reason, order_input, uploaded_at)"+
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,"+
			" $11, $12, $13, $14, $15, $16, $17, $18, $19)"+
			" RETURNING code",
		order.Data.ID,
		order.Data.FullName,
		order.Data.Email,
		order.Data.Phone,
		order.Data.AddressLine1,
		order.Data.AddressLine2,
		order.Data.Company,
		order.Data.ZipCode,
		order.Data.City,
		order.Data.Country,
		order.Data.CarrierKey,
		order.Data.Status,
		details,
		order.Data.State,
		order.Data.ReceivedState,
		order.Data.NeedFix,
		order.Data.NeedFixReason,
		order.Data.OrderInput,
		order.Data.UploadedAt)

	err = row.Scan(&order.Code)
	if err != nil {
		// Проверка: уже существует
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return model.Order{}, ErrAlreadyExists
			}
		}
		return model.Order{}, err
	}

	return order, nil
}

func (store *store) OrderGetByState(ctx context.Context, state string, limit int) ([]model.Order, error) {
	// Выборка пачки заказов для цикла. Заказы с need_fix не участвуют
	rows, err := store.database.QueryContext(ctx,
		"SELECT code, partner_id, full_name, email, phone,"+
			" address_line1, address_line2, company, zip_code, city, country,"+
			" carrier_key, status, details, state, received_state,"+
			" need_fix, need_fix_reason, order_input, uploaded_at"+
			" FROM sync_order"+
			" WHERE state = $1"+
			"   AND NOT need_fix"+
			" ORDER BY code"+
			" LIMIT $2",
		state,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var orderRow model.Order
		var details []byte
		err := rows.Scan(&orderRow.Code,
			&orderRow.Data.ID,
			&orderRow.Data.FullName,
			&orderRow.Data.Email,
			&orderRow.Data.Phone,
			&orderRow.Data.AddressLine1,
			&orderRow.Data.AddressLine2,
			&orderRow.Data.Company,
			&orderRow.Data.ZipCode,
			&orderRow.Data.City,
			&orderRow.Data.Country,
			&orderRow.Data.CarrierKey,
			&orderRow.Data.Status,
			&details,
			&orderRow.Data.State,
			&orderRow.Data.ReceivedState,
			&orderRow.Data.NeedFix,
			&orderRow.Data.NeedFixReason,
			&orderRow.Data.OrderInput,
			&orderRow.Data.UploadedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &orderRow.Data.Details); err != nil {
			return nil, err
		}
		orders = append(orders, orderRow)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (store *store) OrderPatch(ctx context.Context, code int64, patch model.OrderPatch) error {
	if patch.Empty() {
		return ErrEmptyPatch
	}

	// Обновление только заполненных полей
	set, args := patchSQL(patch)
	args = append(args, code)
	_, err := store.database.ExecContext(ctx,
		fmt.Sprintf("UPDATE sync_order SET %s WHERE code = $%d", set, len(args)),
		args...)
	if err != nil {
		return err
	}
	return nil
}

// patchSQL собирает SET-часть запроса из заполненных полей патча
func patchSQL(patch model.OrderPatch) (string, []any) {
	var set []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.ReceivedState != nil {
		add("received_state", *patch.ReceivedState)
	}
	if patch.NeedFix != nil {
		add("need_fix", *patch.NeedFix)
	}
	if patch.NeedFixReason != nil {
		add("need_fix_reason", *patch.NeedFixReason)
	}

	return strings.Join(set, ", "), args
}
