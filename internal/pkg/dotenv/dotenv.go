package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const defaultFile = ".env"

// Load читает файлы из ENV_FILE (через запятую) или .env.
// Отсутствующие файлы пропускаются, уже заданные переменные окружения не перезаписываются.
func Load() ([]string, error) {
	files := []string{defaultFile}
	if raw := os.Getenv("ENV_FILE"); raw != "" {
		files = files[:0]
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				files = append(files, name)
			}
		}
	}

	loaded := make([]string, 0, len(files))
	for _, name := range files {
		if _, err := os.Stat(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat %s: %w", name, err)
		}
		if err := godotenv.Load(name); err != nil {
			return loaded, fmt.Errorf("load %s: %w", name, err)
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}
