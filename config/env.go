package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（可用 ENV_FILE 指定路径）。文件不存在不是错误，已设置的环境变量不会被覆盖。
func LoadEnv() {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		slog.Warn("load env file failed", slog.String("path", path), slog.Any("err", err))
	}
}

// Get returns the trimmed value of key, or def when unset.
func Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// CSV splits a comma separated env value, dropping blanks.
func CSV(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
