package webapp

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must
// implement. Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	healthCheckPath() string
	logLevel() zapcore.Level
	defaultHeaders() string
}

// BaseEnvironment contains the required environment variables. Embed this in
// your custom environment struct.
type BaseEnvironment struct {
	Port            int           `env:"RESPOND_PORT,required"`
	ServiceName     string        `env:"RESPOND_SERVICE_NAME,required"`
	HealthCheckPath string        `env:"RESPOND_HEALTH_CHECK_PATH" envDefault:"/healthz"`
	LogLevel        zapcore.Level `env:"RESPOND_LOG_LEVEL" envDefault:"info"`
	// DefaultHeaders is a JSON object of header name to value, applied to
	// every response before the handler runs (e.g. `{"Server":"demo"}`).
	DefaultHeaders string `env:"RESPOND_DEFAULT_HEADERS"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) healthCheckPath() string {
	return e.HealthCheckPath
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) defaultHeaders() string {
	return e.DefaultHeaders
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
