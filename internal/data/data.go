package data

import (
	"context"
	"fmt"
	"time"

	"dday/internal/biz"
	"dday/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewTransaction,
	NewMovieRepo,
	NewUserDDayRepo,
	NewRankingRepo,
	NewCatalogClient,
	NewTitleNormalizer,
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// Data encapsulates database and cache connections
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	log *log.Helper
}

// NewData creates Data instance with database and Redis connections
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(logger)

	dialector, dialect, err := openDialector(c.Database)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger),
	})
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}

	if c.Database.AutoMigrate {
		if err := migrate(context.Background(), sqlDB, dialect, l); err != nil {
			l.Errorf("failed to migrate database: %v", err)
			_ = sqlDB.Close()
			return nil, nil, err
		}
	}

	// Configure connection pool
	if dialect == driverSQLite {
		// one writer keeps in-memory and file databases free of lock errors
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	l.Infof("database connected successfully (%s)", dialect)

	data := &Data{
		db:  db,
		rdb: openRedis(c.Redis, l),
		log: l,
	}

	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if sqlDB != nil {
			if err := sqlDB.Close(); err != nil {
				l.Errorf("failed to close database: %v", err)
			}
		}
	}

	return data, cleanup, nil
}

func openDialector(c *conf.Data_Database) (gorm.Dialector, string, error) {
	if c == nil || c.Source == "" {
		return nil, "", fmt.Errorf("database source is not configured")
	}
	switch c.Driver {
	case "", driverPostgres:
		return postgres.Open(c.Source), driverPostgres, nil
	case driverSQLite, "sqlite3":
		return sqlite.Open(c.Source), driverSQLite, nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// openRedis returns nil when redis is not configured or unreachable; it is optional.
func openRedis(c *conf.Data_Redis, l *log.Helper) *redis.Client {
	if c == nil || c.Addr == "" {
		l.Info("redis not configured, rankings and counters use the database")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           int(c.Db),
		ReadTimeout:  c.ReadTimeout.AsDuration(),
		WriteTimeout: c.WriteTimeout.AsDuration(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Warnf("failed to connect to redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	l.Info("redis connected successfully")
	return rdb
}

type contextTxKey struct{}

// InTx runs fn in a transaction; repositories pick it up through DB(ctx).
func (d *Data) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, contextTxKey{}, tx))
	})
}

// DB returns the transaction carried by ctx, or the pool.
func (d *Data) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// NewTransaction exposes Data as the biz transaction manager.
func NewTransaction(d *Data) biz.Transaction {
	return d
}

func newGormLogger(l log.Logger) logger.Interface {
	return logger.New(gormWriter{log.NewHelper(log.With(l, "module", "gorm"))}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

type gormWriter struct {
	h *log.Helper
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.h.Warnf(format, args...)
}
