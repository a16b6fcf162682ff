package tracking

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Logger is the minimal logging interface required by the tracking module.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Deps aggregates runtime dependencies for the tracking module.
type Deps struct {
	DB     *sql.DB
	Redis  *redis.Client // optional, enables the city coordinate cache
	Logger Logger
	Config Config
}

// Validate ensures that the deps struct contains the essentials before bootstrapping services.
func (d *Deps) Validate() error {
	if d == nil {
		return fmt.Errorf("tracking deps are nil")
	}
	if d.DB == nil {
		return fmt.Errorf("tracking deps DB is required")
	}
	if d.Logger == nil {
		return fmt.Errorf("tracking deps Logger is required")
	}
	return nil
}
