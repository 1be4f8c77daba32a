// Package config initializes the application's configuration. It uses the
// Viper library to read settings from a config file and environment
// variables, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ganbold/unegui-scraper/internal/logging"
)

// InitConfig initializes the application's configuration using Viper. It sets
// up default values, defines configuration search paths, and enables reading
// from environment variables. Designed to be called once at startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/unegui-scraper/")
	viper.AddConfigPath("$HOME/.unegui-scraper")

	setDefaults(viper.GetViper())

	// e.g. UNEGUI_SCRAPER_MAX_WORKERS=30
	viper.SetEnvPrefix("UNEGUI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logging.L.Info("config file not found; using defaults and environment variables")
		} else {
			logging.L.Error("error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}

func setDefaults(v *viper.Viper) {
	const defaultUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	v.SetDefault("logging.environment", "production")
	v.SetDefault("logging.level", "info")

	v.SetDefault("scraper.user_agent", defaultUA)
	v.SetDefault("scraper.site_origin", "https://www.unegui.mn")
	v.SetDefault("scraper.request_timeout", "10s")
	v.SetDefault("scraper.max_workers", 20)

	v.SetDefault("render.enabled", false)
	v.SetDefault("render.timeout", "15s")
	v.SetDefault("render.max_concurrency", 2)

	// Raw page archive: "" disables, or one of local/gcs/memory.
	v.SetDefault("archive.backend", "")
	v.SetDefault("archive.base_dir", "data/pages")
	v.SetDefault("archive.bucket", "")

	// Completion events go to Pub/Sub only when both fields are set.
	v.SetDefault("publish.project_id", "")
	v.SetDefault("publish.topic", "")

	// Postgres mirror for scraped records. Empty DSN skips it.
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.table", "listings")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", "30m")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.queue_depth", 64)
	v.SetDefault("server.concurrency", 1)

	v.SetDefault("progress.log_enabled", true)
	v.SetDefault("progress.prometheus_enabled", true)

	v.SetDefault("output.dir", "data/exports")

	v.SetDefault("categories", defaultCategories())
}

// defaultCategories is the fixed unegui.mn real-estate listing table; a
// config file may override or extend it.
func defaultCategories() []map[string]string {
	return []map[string]string{
		{
			"key":   "apartments",
			"label": "Орон сууц зарна",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/oron-suuts-zarna/",
		},
		{
			"key":   "land",
			"label": "Газар зарна",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/gazar/",
		},
		{
			"key":   "commercial",
			"label": "Худалдаа үйлчилгээний талбай",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/hudaldaa-jlchilgeenij-talbaj-zarna/",
		},
		{
			"key":   "houses",
			"label": "АОС, хаус, зуслан",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/a-o-s-hauszuslan/",
		},
		{
			"key":   "factory_warehouse",
			"label": "Үйлдвэр, агуулах, объект",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/obekt/",
		},
		{
			"key":   "ger_fenced",
			"label": "Хашаа байшин, гэр",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/hashaa-bajshin/",
		},
		{
			"key":   "office",
			"label": "Ажлын байр, оффис",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/azhlyin-bajroffis-zarna/",
		},
		{
			"key":   "garage_storage",
			"label": "Гараж, склад, контейнер",
			"url":   "https://www.unegui.mn/l-hdlh/l-hdlh-zarna/garazhskladkont-r/",
		},
	}
}
