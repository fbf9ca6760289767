package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"realestate-trade-map/internal/models"
)

// DB reads trade rows from PostgreSQL. It never writes.
type DB struct {
	conn  *sql.DB
	table string
}

func NewDB(host, port, user, password, dbname, sslmode, table string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return NewDBFromConn(conn, table), nil
}

// NewDBFromConn wraps an open connection pool.
func NewDBFromConn(conn *sql.DB, table string) *DB {
	if table == "" {
		table = models.Trade{}.TableName()
	}
	return &DB{conn: conn, table: table}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func tradesQuery(table string) string {
	return `
		SELECT id, dataset, COALESCE(building_name, ''), COALESCE(address, ''),
			   COALESCE(housing_type, ''), COALESCE(deal_type, ''),
			   deal_amount, deposit, monthly_rent, area_m2, floor,
			   COALESCE(contract_ym, ''), contract_day,
			   COALESCE(sido, ''), COALESCE(gusi, ''), COALESCE(dong, ''),
			   lat, lng
		FROM ` + pq.QuoteIdentifier(table) + `
		WHERE dataset = $1
		ORDER BY id ASC
	`
}

func datasetsQuery(table string) string {
	return `SELECT DISTINCT dataset FROM ` + pq.QuoteIdentifier(table) + ` ORDER BY dataset ASC`
}

// Features returns every row of dataset as a point feature, in id order.
func (db *DB) Features(ctx context.Context, dataset string) ([]models.Feature, error) {
	rows, err := db.conn.QueryContext(ctx, tradesQuery(db.table), dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		err := rows.Scan(
			&t.ID, &t.Dataset, &t.BuildingName, &t.Address,
			&t.HousingType, &t.DealType,
			&t.DealAmount, &t.Deposit, &t.MonthlyRent, &t.AreaM2, &t.Floor,
			&t.ContractYM, &t.ContractDay,
			&t.Sido, &t.Gusi, &t.Dong,
			&t.Lat, &t.Lng,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	return toFeatures(trades), nil
}

// Datasets lists the distinct dataset names in the table.
func (db *DB) Datasets(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, datasetsQuery(db.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
