package main

import (
	"database/sql"
	"log"

	"github.com/redis/go-redis/v9"

	"rastreioBack/internal/tracking"
)

type application struct {
	errorLog    *log.Logger
	infoLog     *log.Logger
	db          *sql.DB
	tracking    *tracking.Services
	trackingCfg tracking.Config
}

// appLogger adapts the stdlib logger pair to the interfaces the tracking
// module expects.
type appLogger struct {
	info  *log.Logger
	error *log.Logger
}

func (l appLogger) Infof(format string, args ...interface{})  { l.info.Printf(format, args...) }
func (l appLogger) Errorf(format string, args ...interface{}) { l.error.Printf(format, args...) }

func initializeApp(db *sql.DB, rdb *redis.Client, errorLog, infoLog *log.Logger) (*application, error) {
	trackingCfg, err := tracking.LoadConfig()
	if err != nil {
		return nil, err
	}

	services, err := tracking.Bootstrap(tracking.Deps{
		DB:     db,
		Redis:  rdb,
		Logger: appLogger{info: infoLog, error: errorLog},
		Config: trackingCfg,
	})
	if err != nil {
		return nil, err
	}

	return &application{
		errorLog:    errorLog,
		infoLog:     infoLog,
		db:          db,
		tracking:    services,
		trackingCfg: trackingCfg,
	}, nil
}
