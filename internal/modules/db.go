package modules

import (
	"database/sql"
	"fmt"
	"stack/internal/engine"
	"stack/internal/object"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	nextHandle     atomic.Int64
	dbConnections  = map[int64]*sql.DB{}
	dbTransactions = map[int64]*sql.Tx{}
)

// Db exports database access over database/sql. Connections are integer
// handles; queries run inside the handle's open transaction when one
// exists.
func Db() *engine.Module {
	return engine.NewModule("db").
		AddFunc("connect", func(rt engine.Runtime) error {
			driver, err := popString(rt, "db:connect")
			if err != nil {
				return err
			}
			dsn, err := popString(rt, "db:connect")
			if err != nil {
				return err
			}

			db, err := sql.Open(driver, dsn)
			if err != nil {
				return fmt.Errorf("db:connect failed to open connection: %w", err)
			}
			if err := db.Ping(); err != nil {
				return fmt.Errorf("db:connect failed to ping database: %w", err)
			}

			id := nextHandle.Add(1)
			dbConnections[id] = db
			rt.StackPush(&object.Integer{Value: id})
			return nil
		}).
		AddFunc("query", func(rt engine.Runtime) error {
			query, err := popString(rt, "db:query")
			if err != nil {
				return err
			}
			id, err := popInteger(rt, "db:query")
			if err != nil {
				return err
			}
			db, ok := dbConnections[id]
			if !ok {
				return fmt.Errorf("db:query invalid connection handle %d", id)
			}

			var rows *sql.Rows
			if tx, isTx := dbTransactions[id]; isTx {
				rows, err = tx.Query(query)
			} else {
				rows, err = db.Query(query)
			}
			if err != nil {
				return fmt.Errorf("db:query failed: %w", err)
			}
			defer rows.Close()

			rt.StackPush(renderRows(rows))
			return nil
		}).
		AddFunc("exec", func(rt engine.Runtime) error {
			query, err := popString(rt, "db:exec")
			if err != nil {
				return err
			}
			id, err := popInteger(rt, "db:exec")
			if err != nil {
				return err
			}
			db, ok := dbConnections[id]
			if !ok {
				return fmt.Errorf("db:exec invalid connection handle %d", id)
			}

			var result sql.Result
			if tx, isTx := dbTransactions[id]; isTx {
				result, err = tx.Exec(query)
			} else {
				result, err = db.Exec(query)
			}
			if err != nil {
				return fmt.Errorf("db:exec failed: %w", err)
			}

			affected, _ := result.RowsAffected()
			lastID, _ := result.LastInsertId()
			out := object.NewRecord()
			out.Pairs["rows-affected"] = &object.Integer{Value: affected}
			out.Pairs["last-insert-id"] = &object.Integer{Value: lastID}
			rt.StackPush(out)
			return nil
		}).
		AddFunc("begin", func(rt engine.Runtime) error {
			id, err := popInteger(rt, "db:begin")
			if err != nil {
				return err
			}
			db, ok := dbConnections[id]
			if !ok {
				return fmt.Errorf("db:begin invalid connection handle %d", id)
			}
			tx, err := db.Begin()
			if err != nil {
				return fmt.Errorf("db:begin failed: %w", err)
			}
			dbTransactions[id] = tx
			rt.StackPush(&object.Integer{Value: id})
			return nil
		}).
		AddFunc("commit", func(rt engine.Runtime) error {
			id, err := popInteger(rt, "db:commit")
			if err != nil {
				return err
			}
			tx, ok := dbTransactions[id]
			if !ok {
				return fmt.Errorf("db:commit invalid transaction handle %d", id)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("db:commit failed: %w", err)
			}
			delete(dbTransactions, id)
			rt.StackPush(&object.Integer{Value: id})
			return nil
		}).
		AddFunc("rollback", func(rt engine.Runtime) error {
			id, err := popInteger(rt, "db:rollback")
			if err != nil {
				return err
			}
			tx, ok := dbTransactions[id]
			if !ok {
				return fmt.Errorf("db:rollback invalid transaction handle %d", id)
			}
			if err := tx.Rollback(); err != nil {
				return fmt.Errorf("db:rollback failed: %w", err)
			}
			delete(dbTransactions, id)
			rt.StackPush(&object.Integer{Value: id})
			return nil
		}).
		AddFunc("close", func(rt engine.Runtime) error {
			id, err := popInteger(rt, "db:close")
			if err != nil {
				return err
			}
			if tx, ok := dbTransactions[id]; ok {
				tx.Rollback()
				delete(dbTransactions, id)
			}
			if db, ok := dbConnections[id]; ok {
				db.Close()
				delete(dbConnections, id)
			}
			rt.StackPush(object.NIL)
			return nil
		})
}

func renderRows(rows *sql.Rows) object.Expr {
	columns, _ := rows.Columns()
	var resultRows []object.Expr

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		rows.Scan(pointers...)

		row := object.NewRecord()
		for i, col := range columns {
			row.Pairs[col] = mapValue(values[i])
		}
		resultRows = append(resultRows, row)
	}
	return &object.List{Exprs: resultRows}
}

func mapValue(v interface{}) object.Expr {
	if v == nil {
		return object.NIL
	}
	switch x := v.(type) {
	case int64:
		return &object.Integer{Value: x}
	case float64:
		return &object.Float{Value: x}
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case bool:
		return object.BooleanFor(x)
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}
