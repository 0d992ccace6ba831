package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/library-lending/pkg/auth"
	"github.com/Astemirdum/library-lending/pkg/kafka"
	"github.com/Astemirdum/library-lending/pkg/logger"
	"github.com/Astemirdum/library-lending/pkg/mail"
	"github.com/Astemirdum/library-lending/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"10s"`
	RateLimit    float64       `yaml:"rateLimit" envconfig:"HTTP_RPS" default:"100"`
}

type Redis struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB" default:"0"`
	Enable   bool   `yaml:"enable" envconfig:"REDIS_ENABLE" default:"false"`
}

// Lending holds the loan rules.
type Lending struct {
	BorrowDays         int     `yaml:"borrowDays" envconfig:"BORROW_DAYS_DEFAULT" default:"14"`
	ReminderDaysBefore int     `yaml:"reminderDaysBefore" envconfig:"REMINDER_DAYS_BEFORE" default:"3"`
	FinePerDay         float64 `yaml:"finePerDay" envconfig:"FINE_PER_DAY" default:"0.5"`
	PerPage            int     `yaml:"perPage" envconfig:"PER_PAGE" default:"20"`
}

type Schedule struct {
	ReminderCron string        `yaml:"reminderCron" envconfig:"REMINDER_CRON" default:"0 9 * * *"`
	OverdueCron  string        `yaml:"overdueCron" envconfig:"OVERDUE_CRON" default:"30 9 * * *"`
	TimeZone     string        `yaml:"timeZone" envconfig:"SCHEDULE_TZ" default:"Local"`
	RunTimeout   time.Duration `yaml:"runTimeout" envconfig:"SCHEDULE_RUN_TIMEOUT" default:"10m"`
	Enable       bool          `yaml:"enable" envconfig:"SCHEDULE_ENABLE" default:"true"`
}

// Location resolves TimeZone. Job dates are calendar dates in this zone.
func (s Schedule) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("schedule timezone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

type Config struct {
	Server   HTTPServer  `yaml:"server"`
	Database postgres.DB `yaml:"db"`
	Log      logger.Log  `yaml:"log"`
	Kafka    kafka.Config
	Redis    Redis
	Mail     mail.Config
	Auth     auth.Config
	Lending  Lending
	Schedule Schedule
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment. Options override what was read.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	cfg.Database.Password = "***"
	cfg.Redis.Password = "***"
	cfg.Mail.Password = "***"
	cfg.Auth.Secret = "***"
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
