package db

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // Import Postgres driver.
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	connectTries = 15
	connectWait  = 4 * time.Second
)

var theOneBun *bun.DB

// PgDB represents a Postgres database connection. The type definition is needed to define methods.
type PgDB struct {
	sql *sqlx.DB
}

// ConnectPostgres connects to a Postgres database.
func ConnectPostgres(url string) (*PgDB, error) {
	numTries := 0
	for {
		conn, err := sqlx.Connect("pgx", url)
		if err == nil {
			initTheOneBun(conn.DB)
			return &PgDB{sql: conn}, nil
		}
		numTries++
		if numTries >= connectTries {
			return nil, errors.Wrapf(err, "could not connect to database after %v tries", numTries)
		}
		log.WithError(err).Warnf("failed to connect to postgres, trying again in %s", connectWait)
		time.Sleep(connectWait)
	}
}

func initTheOneBun(db *sql.DB) {
	if theOneBun != nil {
		log.Warn("detected re-initialization of Bun that should never occur outside of tests")
	}
	theOneBun = bun.NewDB(db, pgdialect.New())
	if log.IsLevelEnabled(log.TraceLevel) {
		theOneBun.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.WithWriter(log.StandardLogger().WriterLevel(log.TraceLevel)),
		))
	}
}

// Bun returns the singleton database connection through the bun library.
func Bun() *bun.DB {
	if theOneBun == nil {
		panic("the bun connection has not been initialized")
	}
	return theOneBun
}

// Close closes the underlying connection.
func (db *PgDB) Close() error {
	return db.sql.Close()
}
