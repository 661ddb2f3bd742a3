package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-kit/log/level"
	"gitlab.com/dirk.krummacker/contact-details/internal/config"
	"gitlab.com/dirk.krummacker/contact-details/internal/logging"
	"gitlab.com/dirk.krummacker/contact-details/internal/store/mongostore"
	"gitlab.com/dirk.krummacker/contact-details/internal/store/sqlstore"
)

// Usage examples on the command line:
// > DBHOST=localhost DBUSER=dirk DBPWD=secret go run main.go -store=mysql -file=../../scripts/contacts.sql
// > MONGO_URI=mongodb://localhost:27017 go run main.go -store=mongo
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.Logging.Format, cfg.Logging.Level)

	storePtr := flag.String("store", cfg.Store.Kind, "the store to migrate: mysql or mongo")
	filePtr := flag.String("file", "scripts/contacts.sql", "the sql file to execute (mysql only)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch *storePtr {
	case config.StoreMySQL:
		err = migrateMySQL(ctx, cfg.Store.MySQL, *filePtr)
	case config.StoreMongo:
		err = migrateMongo(ctx, cfg.Store.Mongo)
	default:
		err = fmt.Errorf("nothing to migrate for store %q", *storePtr)
	}
	if err != nil {
		level.Error(logger).Log("msg", "migration failed", "store", *storePtr, "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "migration done", "store", *storePtr)
}

func migrateMySQL(ctx context.Context, cfg config.MySQLConfig, file string) error {
	sqlDB, err := sql.Open("mysql", sqlstore.DSN(cfg.User, cfg.Password, cfg.Host, cfg.Database))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	readFile, err := os.Open(file) // nosemgrep
	if err != nil {
		return err
	}
	defer readFile.Close()

	_, err = sqlstore.Migrate(ctx, sqlDB, readFile)
	return err
}

func migrateMongo(ctx context.Context, cfg config.MongoConfig) error {
	s, err := mongostore.Connect(ctx, cfg.URI, cfg.Database, cfg.Collection)
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	_, err = s.EnsureIndex(ctx)
	return err
}
