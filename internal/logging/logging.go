// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/gdg-garage/wordstreak-api/internal/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup applies the configured level and output. When LOG_FILE is set, output
// goes to both stdout and a rotating file. The returned closer flushes the
// file sink and is safe to call when no file is configured.
func Setup(cfg *config.Config) io.Closer {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFile == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    orDefault(cfg.LogMaxSizeMB, 100),
		MaxBackups: orDefault(cfg.LogMaxBackups, 3),
		MaxAge:     orDefault(cfg.LogMaxAgeDays, 7),
	}
	log.SetOutput(io.MultiWriter(os.Stdout, lj))
	return lj
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
