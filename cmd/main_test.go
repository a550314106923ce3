package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/mentor/internal/config"
	"github.com/okian/mentor/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const testCorpus = `
experts:
  - id: chef-a
    name: Chef A
    domain: Cooking
    patterns:
      - skill_type: Cooking
        confidence: 1.0
        metrics: {knife_skills: 0.9, plating: 0.9}
`

func TestMainApplicationSetup(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		t.Setenv("MENTOR_ADDR", ":8181")
		t.Setenv("MENTOR_TOP_N", "3")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
		convey.So(cfg.TopN, convey.ShouldEqual, 3)

		convey.Convey("When the service and routes are built", func() {
			svc, err := newService(cfg, logger.Discard())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop(ctx)

			h := newHandler(ctx, cfg, svc, logger.Discard())

			convey.Convey("Then docs, health and business routes answer", func() {
				for _, path := range []string{"/healthz", "/openapi.yaml", "/api-docs", "/experts", "/skills"} {
					rec := httptest.NewRecorder()
					h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}

func TestCorpusFromDisk(t *testing.T) {
	convey.Convey("Given a corpus file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "corpus.yaml")
		convey.So(os.WriteFile(path, []byte(testCorpus), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.CorpusPath = path

		convey.Convey("When the service starts", func() {
			ctx := context.Background()
			svc, err := newService(cfg, logger.Discard())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop(ctx)

			convey.Convey("Then only the file's experts are served", func() {
				experts, err := svc.Experts(ctx, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(experts, convey.ShouldHaveLength, 1)
				convey.So(experts[0].ID, convey.ShouldEqual, "chef-a")
			})
		})

		convey.Convey("When the corpus path does not exist", func() {
			cfg.CorpusPath = filepath.Join(dir, "missing.yaml")
			_, err := newService(cfg, logger.Discard())

			convey.Convey("Then building the service fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the skills path does not exist", func() {
			cfg.SkillsPath = filepath.Join(dir, "missing-skills.yaml")
			_, err := newService(cfg, logger.Discard())

			convey.Convey("Then building the service fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestInvalidConfiguration(t *testing.T) {
	convey.Convey("Given a zero top_n in the environment", t, func() {
		t.Setenv("MENTOR_TOP_N", "0")

		convey.Convey("Then run refuses to start", func() {
			err := run(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a context that expires", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns without panicking", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
