package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/hoopmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DataPath, convey.ShouldEqual, "NBA_career_stats.csv")
			convey.So(cfg.MaxSimilar, convey.ShouldEqual, 5)
			convey.So(cfg.DefaultSimilar, convey.ShouldEqual, 3)
			convey.So(cfg.TopLimit, convey.ShouldEqual, 10)
			convey.So(cfg.KeyStats, convey.ShouldResemble, []string{"pts", "reb", "ast", "fg_pct"})
			convey.So(cfg.KeyStatsLimit, convey.ShouldEqual, 3)
			convey.So(cfg.MCPPath, convey.ShouldEqual, "/mcp")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then data paths should list the primary path first", func() {
			convey.So(cfg.DataPaths(), convey.ShouldResemble, []string{"NBA_career_stats.csv", "data/NBA_career_stats.csv"})
		})
	})
}

func TestConfig_DelimiterRune(t *testing.T) {
	convey.Convey("Given delimiter settings", t, func() {
		cfg := config.New(context.Background())

		convey.So(cfg.DelimiterRune(), convey.ShouldEqual, rune(0))
		cfg.Delimiter = ";"
		convey.So(cfg.DelimiterRune(), convey.ShouldEqual, ';')
		cfg.Delimiter = `\t`
		convey.So(cfg.DelimiterRune(), convey.ShouldEqual, '\t')
		cfg.Delimiter = "tab"
		convey.So(cfg.DelimiterRune(), convey.ShouldEqual, '\t')
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"empty data path", func(c *config.Config) { c.DataPath = " " }},
			{"zero max similar", func(c *config.Config) { c.MaxSimilar = 0 }},
			{"default above max", func(c *config.Config) { c.DefaultSimilar = 6 }},
			{"top limit above max", func(c *config.Config) { c.TopLimit = 101 }},
			{"negative key stat limit", func(c *config.Config) { c.KeyStatsLimit = -1 }},
			{"long delimiter", func(c *config.Config) { c.Delimiter = ";;" }},
			{"relative mcp path", func(c *config.Config) { c.MCPPath = "mcp" }},
		}

		for _, tc := range cases {
			cfg := config.New(context.Background())
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" should be rejected", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
