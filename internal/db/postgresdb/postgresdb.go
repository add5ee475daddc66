// Package postgresdb provides a PostgreSQL-based implementation of the user
// record store. The schema is managed by goose migrations embedded in the binary.
package postgresdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/usersweb/internal/models"
	"github.com/patric-chuzhbe/usersweb/internal/user"
)

//go:embed migrations/*.sql
var migrations embed.FS

// tables dropped by WithDBPreReset, goose bookkeeping included.
var managedTables = []string{"users", "goose_db_version"}

// PostgresDB is a PostgreSQL-backed user store.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops the managed tables before migrating. Meant for tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to the database and applies the embedded migrations.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	return newWithDatabase(ctx, database, connectionTimeout, options)
}

// newWithDatabase takes ownership of database and closes it when the store cannot be set up.
func newWithDatabase(
	ctx context.Context,
	database *sql.DB,
	connectionTimeout time.Duration,
	options *initOptions,
) (*PostgresDB, error) {
	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.init(ctx, options); err != nil {
		_ = database.Close()
		return nil, err
	}

	return result, nil
}

func (db *PostgresDB) init(ctx context.Context, options *initOptions) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/init(): error while `db.Ping()` calling: %w",
			err,
		)
	}

	if options.DBPreReset {
		if err := db.resetDB(ctx); err != nil {
			return fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/init(): error while `db.resetDB()` calling: %w",
				err,
			)
		}
	}

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/init(): error while `goose.SetDialect()` calling: %w",
			err,
		)
	}

	if err := goose.UpContext(ctx, db.database, "migrations"); err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/init(): error while `goose.UpContext()` calling: %w",
			err,
		)
	}

	return nil
}

// ListUsers returns every user in creation order.
func (db *PostgresDB) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, name, email, password FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []user.User{}
	for rows.Next() {
		var usr user.User
		err = rows.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.Password)
		if err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CreateUser inserts usr and returns the ID assigned by the database.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
		usr.Name,
		usr.Email,
		usr.Password,
	)
	var userIDFromDB string
	err := row.Scan(&userIDFromDB)
	if err != nil {
		return "", err
	}

	return userIDFromDB, nil
}

// GetUserByID fetches a user by UUID. A missing record, or an ID that is
// not a UUID, yields nil without error.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	if !isUUID(userID) {
		return nil, nil
	}

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, name, email, password FROM users WHERE id = $1`,
		userID,
	)
	var usr user.User
	err := row.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &usr, nil
}

// UpdateUser overwrites the non-nil fields of update in a single statement.
func (db *PostgresDB) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error {
	if !isUUID(userID) || update.IsEmpty() {
		return nil
	}

	assignments := []string{}
	args := []interface{}{}
	addAssignment := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addAssignment("name", update.Name)
	addAssignment("email", update.Email)
	addAssignment("password", update.Password)
	args = append(args, userID)

	_, err := db.database.ExecContext(
		ctx,
		fmt.Sprintf(
			`UPDATE users SET %s WHERE id = $%d`,
			strings.Join(assignments, ", "),
			len(args),
		),
		args...,
	)

	return err
}

// DeleteUser removes a user. Deleting a missing record is not an error.
func (db *PostgresDB) DeleteUser(ctx context.Context, userID string) error {
	if !isUUID(userID) {
		return nil
	}

	_, err := db.database.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)

	return err
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	for _, table := range managedTables {
		_, err := db.database.ExecContext(
			ctx,
			`DROP TABLE IF EXISTS `+pq.QuoteIdentifier(table)+` CASCADE`,
		)
		if err != nil {
			return fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/resetDB(): error while dropping %s: %w",
				table,
				err,
			)
		}
	}

	return nil
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
