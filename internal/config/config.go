package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// SchedulerConfig 为模拟退火参数的默认值，请求中未指定的参数使用这里的值
type SchedulerConfig struct {
	InitialTemperature float64 `env:"INITIAL_TEMPERATURE" envDefault:"1000"`
	CoolingRate        float64 `env:"COOLING_RATE" envDefault:"0.995"`
	Iterations         int32   `env:"ITERATIONS" envDefault:"5000"`
	DiversityPenalty   float64 `env:"DIVERSITY_PENALTY" envDefault:"0"`
}

// GameConfig 为新建比赛时的默认参数
type GameConfig struct {
	Innings           int32  `env:"INNINGS" envDefault:"6"`
	MaxPrimaryOnField int32  `env:"MAX_PRIMARY_ON_FIELD" envDefault:"7"`
	Mode              string `env:"MODE" envDefault:"regular"`
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"60"` // 自动排阵可能比较耗时
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"主教练"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 14 天，单位为小时
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD,required"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"10"`
		LineupLockTTL    int    `env:"LINEUP_LOCK_TTL" envDefault:"120"` // 单位为秒，应大于一次排阵的最长耗时
	} `envPrefix:"REDIS_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Scheduler SchedulerConfig `envPrefix:"SCHEDULER_"`
	Game      GameConfig      `envPrefix:"GAME_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

// LoadSchedulerConfig 只读取排阵相关的配置，命令行工具不需要数据库等其它配置
func LoadSchedulerConfig() (*SchedulerConfig, *GameConfig, error) {
	sc := &SchedulerConfig{}
	if err := env.ParseWithOptions(sc, env.Options{Prefix: "SCHEDULER_"}); err != nil {
		return nil, nil, firstError(err)
	}

	gc := &GameConfig{}
	if err := env.ParseWithOptions(gc, env.Options{Prefix: "GAME_"}); err != nil {
		return nil, nil, firstError(err)
	}

	return sc, gc, nil
}

// 只返回第一个错误使得日志更清晰
func firstError(err error) error {
	aggErr := env.AggregateError{}
	if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
		return aggErr.Errors[0]
	}
	return err
}
