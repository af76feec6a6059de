package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSearchEndpoint = "https://api.bing.microsoft.com/"
	maxSearchResults      = 5
)

type Config struct {
	TelegramToken  string
	AdminUserIDs   []int64
	AllowedUserIDs []int64

	SearchAPIKey    string
	SearchEndpoint  string
	SearchMarket    string
	SearchCount     int
	SearchSafe      string
	SearchMinWidth  int
	SearchMinHeight int
	SearchMaxWidth  int
	SearchMaxHeight int

	OpenAIKey    string
	OpenAIURL    string
	Model        string
	ImageModel   string
	ImageSize    string
	ImageQuality string

	FontDir           string
	JPEGQuality       int
	MaxImageDimension int
	MaxDownloadBytes  int64
	HTTPTimeout       time.Duration
	SessionTTL        time.Duration
	HTTPAddr          string
}

// OpenAIEnabled reports whether caption suggestions and image generation
// can be offered.
func (c Config) OpenAIEnabled() bool {
	return c.OpenAIKey != ""
}

func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("could not read %s: %v", path, err)
	}

	cfg := Config{
		SearchEndpoint:    getenvDefault("END_POINT", defaultSearchEndpoint),
		SearchMarket:      getenvDefault("SEARCH_MARKET", "en-US"),
		SearchCount:       clamp(getenvIntDefault("SEARCH_RESULT_COUNT", maxSearchResults), 1, maxSearchResults),
		SearchSafe:        getenvDefault("SEARCH_SAFE_SEARCH", "Moderate"),
		SearchMinWidth:    getenvIntDefault("SEARCH_MIN_WIDTH", 120),
		SearchMinHeight:   getenvIntDefault("SEARCH_MIN_HEIGHT", 120),
		SearchMaxWidth:    getenvIntDefault("SEARCH_MAX_WIDTH", 1024),
		SearchMaxHeight:   getenvIntDefault("SEARCH_MAX_HEIGHT", 1024),
		OpenAIURL:         os.Getenv("OPENAI_BASE_URL"),
		Model:             getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ImageModel:        getenvDefault("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		ImageSize:         getenvDefault("OPENAI_IMAGE_SIZE", "1024x1024"),
		ImageQuality:      getenvDefault("OPENAI_IMAGE_QUALITY", "low"),
		FontDir:           os.Getenv("FONT_DIR"),
		JPEGQuality:       clamp(getenvIntDefault("JPEG_QUALITY", 90), 1, 100),
		MaxImageDimension: getenvIntDefault("MAX_IMAGE_DIMENSION", 1024),
		MaxDownloadBytes:  int64(getenvIntDefault("MAX_DOWNLOAD_BYTES", 10<<20)),
		HTTPTimeout:       time.Duration(getenvIntDefault("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,
		SessionTTL:        time.Duration(getenvIntDefault("SESSION_TTL_MINUTES", 720)) * time.Minute,
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
	}

	if !strings.HasSuffix(cfg.SearchEndpoint, "/") {
		cfg.SearchEndpoint += "/"
	}

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.SearchAPIKey = os.Getenv("BS_API_KEY")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.SearchAPIKey == "" || cfg.TelegramToken == "" {
		return cfg, errors.New("search api key and telegram token are required")
	}

	cfg.AdminUserIDs = parseIDs(os.Getenv("ADMIN_USER_IDS"))
	cfg.AllowedUserIDs = parseIDs(os.Getenv("ALLOWED_TELEGRAM_USER_IDS"))

	return cfg, nil
}

func parseIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Printf("skipping user id %q: %v", p, err)
			continue
		}
		ids = append(ids, v)
	}
	return ids
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
