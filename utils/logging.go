package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"subhub/config"
)

// TeeLog sends the standard logger to stdout and to the rotating file named in
// cfg. With no file configured the logger is left alone and the returned
// closer is a no-op.
func TeeLog(cfg config.LogConfig) (io.Closer, error) {
	if cfg.File == "" {
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return rotating, nil
}
