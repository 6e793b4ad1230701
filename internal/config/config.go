package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	Log      Log
	HTTP     HTTP
	Probe    Probe
	Metrics  Metrics
	Database Database
	Redis    Redis
	Bot      Bot
	Postal   Postal
	Cache    Cache
	Comments Comments
	Worker   Worker
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"geo-feedback"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	// максимальная длина тела запроса и ответа в логе
	LogFieldMaxLen int `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"2048"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
}

type Redis struct {
	Address        string `env:"REDIS_ADDRESS"`
	Username       string `env:"REDIS_USERNAME"`
	Password       string `env:"REDIS_PASSWORD" json:"-"`
	DatabaseNumber int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize       int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns   int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	MaxIdleConns   int    `env:"REDIS_MAX_IDLE_CONNS" envDefault:"5"`
	Queue          string `env:"REDIS_TASK_QUEUE" envDefault:"default"`
	Tasks          bool   `env:"REDIS_TASKS" envDefault:"true"`
}

// Enabled redis необязателен: без него нет внешнего кеша и очереди задач.
func (r Redis) Enabled() bool {
	return r.Address != ""
}

type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID"`

	// пустой список открывает бота для всех
	AllowedChats []int64 `env:"BOT_ALLOWED_CHATS" envSeparator:","`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

type Postal struct {
	CSVPath     string `env:"POSTAL_CSV_PATH" envDefault:"moscow_postal_codes.csv"`
	Windows1251 bool   `env:"POSTAL_CSV_WINDOWS1251" envDefault:"false"`
}

type Cache struct {
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"10m"`
	NearbyTTL   time.Duration `env:"NEARBY_CACHE_TTL" envDefault:"5m"`
}

type Comments struct {
	StrictAuth bool `env:"COMMENTS_STRICT_AUTH" envDefault:"false"`
}

type Worker struct {
	RefreshSpec string `env:"WORKER_REFRESH_SPEC" envDefault:"@every 10m"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	return Parse()
}

// Parse читает конфигурацию только из окружения процесса.
func Parse() (Config, error) {
	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	config.Database.DSN = correctNewlines(config.Database.DSN)

	return config, nil
}

func correctNewlines(s string) string {
	return strings.NewReplacer(`"`, "", `\n`, "\n").Replace(s)
}
