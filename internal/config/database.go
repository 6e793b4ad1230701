package config

import "time"

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

type Database struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"pgx"`
	DSN             string        `env:"DB_DSN,notEmpty" json:"-"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	// файлы схемы, применяемые при старте; нужны для sqlite в памяти
	Migrations []string `env:"DB_MIGRATIONS" envSeparator:","`
}
