package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/mentor/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TopN, convey.ShouldEqual, 5)
			convey.So(cfg.NormalizeOverall, convey.ShouldBeFalse)
			convey.So(cfg.DefaultMetricWeight, convey.ShouldEqual, 0.1)
			convey.So(cfg.TrendingWindow, convey.ShouldEqual, 30*24*time.Hour)
			convey.So(cfg.TrendingDivisor, convey.ShouldEqual, 10)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = "" },
			"zero top_n":          func(c *config.Config) { c.TopN = 0 },
			"max below top":       func(c *config.Config) { c.MaxTopN = 1; c.TopN = 2 },
			"negative weight":     func(c *config.Config) { c.DefaultMetricWeight = -1 },
			"zero weekly hours":   func(c *config.Config) { c.WeeklyPracticeHours = 0 },
			"zero divisor":        func(c *config.Config) { c.TrendingDivisor = 0 },
			"burst missing":       func(c *config.Config) { c.RateLimit = 5; c.RateLimitBurst = 0 },
			"negative skill item": func(c *config.Config) { c.SkillWeights["Cooking"] = map[string]float64{"knife_skills": -0.2} },
		}
		for name, mutate := range cases {
			convey.Convey("When "+name, func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("When the rate limiter is disabled the burst is ignored", func() {
			cfg := config.New()
			cfg.RateLimit = 0
			cfg.RateLimitBurst = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
