package config

import (
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"SMETA_ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`

	AdminLogin string `yaml:"admin_login" env:"SMETA_ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"SMETA_ADMIN_PASS"`

	CORSOrigins []string `yaml:"cors_origins" env:"SMETA_CORS_ORIGINS" env-separator:","`
	SearchLimit int      `yaml:"search_limit" env:"SMETA_SEARCH_LIMIT" env-default:"100"`
	ErrorLog    string   `yaml:"error_log" env-default:"errors.log"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"SMETA_HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Database struct {
	User      string `yaml:"user" env:"SMETA_DB_USER" env-required:"true"`
	Password  string `yaml:"password" env:"SMETA_DB_PASSWORD"`
	Host      string `yaml:"host" env:"SMETA_DB_HOST" env-default:"localhost"`
	Port      int    `yaml:"port" env:"SMETA_DB_PORT" env-default:"3306"`
	Name      string `yaml:"name" env:"SMETA_DB_NAME" env-required:"true"`
	ParseTime bool   `yaml:"parse_time" env-default:"true"`
}

// DSN собирает строку подключения драйвера MySQL.
func (d Database) DSN() string {
	c := mysql.NewConfig()
	c.User = d.User
	c.Passwd = d.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	c.DBName = d.Name
	c.ParseTime = d.ParseTime
	return c.FormatDSN()
}

// Load читает конфиг из path; переменные окружения перекрывают файл.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", path)
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}
