package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/okian/mentor/internal/adapters/http/api"
	service "github.com/okian/mentor/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

const kitchenCorpus = `
experts:
  - id: chef-a
    name: Chef A
    domain: Cooking
    patterns:
      - skill_type: Cooking
        confidence: 1.0
        metrics: {knife_skills: 0.9, plating: 0.9}
  - id: chef-b
    name: Chef B
    domain: Cooking
    patterns:
      - skill_type: Cooking
        confidence: 1.0
        metrics: {knife_skills: 0.5, plating: 0.5}
`

// execute runs the command tree with args and stdin, returning stdout.
func execute(stdin string, args ...string) (string, error) {
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeOutput(raw string) map[string]any {
	var m map[string]any
	So(json.Unmarshal([]byte(raw), &m), ShouldBeNil)
	return m
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		root := NewRootCommand()

		Convey("Then every subcommand is registered", func() {
			names := make(map[string]bool)
			for _, c := range root.Commands() {
				names[c.Name()] = true
			}
			for _, want := range []string{"analyze", "compare", "match", "recommend", "classify", "experts", "skills", "loadtest"} {
				So(names[want], ShouldBeTrue)
			}
		})

		Convey("Then the shared flags have defaults", func() {
			So(root.PersistentFlags().Lookup("input").DefValue, ShouldEqual, "-")
			So(root.PersistentFlags().Lookup("log-level").DefValue, ShouldEqual, "warn")
		})
	})
}

func TestReferenceCommands(t *testing.T) {
	Convey("Given the built-in corpus", t, func() {
		Convey("When skills are listed", func() {
			out, err := execute("", "skills")

			Convey("Then the table includes public speaking", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, `"Public Speaking"`)
			})
		})

		Convey("When experts are filtered by skill", func() {
			out, err := execute("", "experts", "--skill", "Public Speaking")

			Convey("Then seeded speakers are listed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "martin-luther-king-jr")
			})
		})

		Convey("When one expert is requested", func() {
			out, err := execute("", "experts", "barack-obama")

			Convey("Then patterns and insights are included", func() {
				So(err, ShouldBeNil)
				m := decodeOutput(out)
				So(m["id"], ShouldEqual, "barack-obama")
				So(m["patterns"], ShouldNotBeEmpty)
			})
		})

		Convey("When an unknown expert is requested", func() {
			_, err := execute("", "experts", "nobody")

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestEngineCommands(t *testing.T) {
	Convey("Given a corpus file", t, func() {
		path := filepath.Join(t.TempDir(), "kitchen.yaml")
		So(os.WriteFile(path, []byte(kitchenCorpus), 0o600), ShouldBeNil)

		Convey("When metrics are compared against an expert", func() {
			out, err := execute(`{"expert_id":"chef-b","skill_type":"Cooking","metrics":{"knife_skills":0.5,"plating":0.5}}`,
				"--corpus", path, "compare")

			Convey("Then the comparison and feedback are printed", func() {
				So(err, ShouldBeNil)
				m := decodeOutput(out)
				So(m["comparison"], ShouldNotBeNil)
				So(m["feedback"], ShouldNotBeNil)
			})
		})

		Convey("When matches are requested", func() {
			out, err := execute(`{"skill_type":"Cooking","metrics":{"knife_skills":0.5,"plating":0.5},"top_n":1}`,
				"--corpus", path, "match")

			Convey("Then the closest expert is first", func() {
				So(err, ShouldBeNil)
				var matches []map[string]any
				So(json.Unmarshal([]byte(out), &matches), ShouldBeNil)
				So(matches, ShouldHaveLength, 1)
				So(out, ShouldContainSubstring, "chef-b")
			})
		})

		Convey("When a request file is given", func() {
			req := filepath.Join(t.TempDir(), "req.json")
			So(os.WriteFile(req, []byte(`{"learner_id":"amy","skill_type":"Cooking","metrics":{"knife_skills":0.4}}`), 0o600), ShouldBeNil)
			out, err := execute("", "--corpus", path, "--input", req, "recommend")

			Convey("Then recommendations are printed", func() {
				So(err, ShouldBeNil)
				m := decodeOutput(out)
				So(m["skill_type"], ShouldEqual, "Cooking")
				So(m["recommendations"], ShouldNotBeEmpty)
			})
		})

		Convey("When the request is missing required fields", func() {
			_, err := execute(`{"skill_type":"Cooking"}`, "--corpus", path, "compare")

			Convey("Then validation fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid request")
			})
		})

		Convey("When the request is not JSON", func() {
			_, err := execute(`nope`, "--corpus", path, "match")

			Convey("Then decoding fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestClassifyCommand(t *testing.T) {
	Convey("Given a live sample", t, func() {
		out, err := execute(`{"skill_type":"Public Speaking","metrics":{"eye_contact":40,"confidence_score":90}}`, "classify")

		Convey("Then the classification is printed", func() {
			So(err, ShouldBeNil)
			m := decodeOutput(out)
			So(m["skill_type"], ShouldEqual, "Public Speaking")
			So(m["suggestions"], ShouldNotBeEmpty)
		})
	})
}

func TestLoadTestCommand(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)
		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When the load test command runs", func() {
			out, err := execute("", "loadtest", "--url", srv.URL,
				"--analyses", "10", "--learners", "2", "--workers", "2", "--top", "2", "--duplicates", "0.2", "--seed", "1")

			Convey("Then run statistics are printed", func() {
				So(err, ShouldBeNil)
				m := decodeOutput(out)
				So(m["Successful"], ShouldEqual, float64(10))
				So(m["Duplicate"], ShouldEqual, float64(2))
				So(m["SuccessRate"], ShouldEqual, float64(100))
			})
		})
	})
}
