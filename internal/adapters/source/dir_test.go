package source_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/sentinela/internal/adapters/source"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const examJSON = `{
  "id_paciente": "P-%d",
  "resultados_hemograma": {"rdw_cv_percent": 15.1},
  "dados_demograficos": {"localidade": {"bairro": "Pina"}}
}`

func TestDirSourceLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a directory with object, array and broken files", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "b.json", `{"id_paciente": "B", "n": 1}`)
		writeFile(t, dir, "a.json", `[{"id_paciente": "A0"}, 7, {"id_paciente": "A2"}]`)
		writeFile(t, dir, "c.json", `{"id_paciente": `)
		writeFile(t, dir, "d.json", `"just a string"`)
		writeFile(t, dir, "notes.txt", `ignored`)
		So(os.Mkdir(filepath.Join(dir, "sub.json"), 0o700), ShouldBeNil)

		Convey("When loading with several workers", func() {
			b, err := source.NewDirSource(dir, source.WithWorkers(4)).Load(ctx)

			Convey("Then records come back in file then element order", func() {
				So(err, ShouldBeNil)
				So(b.Files, ShouldEqual, 4)
				So(b.FilesFailed, ShouldEqual, 2)
				So(b.Records, ShouldHaveLength, 3)
				So(b.Records[0].Origin, ShouldEqual, "a.json[0]")
				So(b.Records[1].Origin, ShouldEqual, "a.json[2]")
				So(b.Records[2].Origin, ShouldEqual, "b.json")
				So(b.Records[2].Raw["id_paciente"], ShouldEqual, "B")
			})

			Convey("Then numbers are kept as json.Number", func() {
				So(b.Records[2].Raw["n"], ShouldEqual, json.Number("1"))
			})

			Convey("Then unusable inputs are reported as failures", func() {
				So(b.Failures, ShouldHaveLength, 3)
				So(b.Failures[0].Origin, ShouldEqual, "a.json[1]")
				So(errors.Is(b.Failures[0].Err, source.ErrNotAnObject), ShouldBeTrue)
				So(b.Failures[1].Origin, ShouldEqual, "c.json")
				So(errors.Is(b.Failures[1].Err, source.ErrMalformedFile), ShouldBeTrue)
				So(b.Failures[2].Origin, ShouldEqual, "d.json")
				So(errors.Is(b.Failures[2].Err, source.ErrNotAnObject), ShouldBeTrue)
			})
		})

		Convey("When loading with a custom pattern", func() {
			b, err := source.NewDirSource(dir, source.WithPattern("b*.json")).Load(ctx)

			Convey("Then only matching files are read", func() {
				So(err, ShouldBeNil)
				So(b.Files, ShouldEqual, 1)
				So(b.Records, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given many files loaded repeatedly", t, func() {
		dir := t.TempDir()
		for i := 0; i < 40; i++ {
			writeFile(t, dir, fmt.Sprintf("exam-%03d.json", i), fmt.Sprintf(examJSON, i))
		}

		Convey("Then the order never depends on scheduling", func() {
			first, err := source.NewDirSource(dir, source.WithWorkers(8)).Load(ctx)
			So(err, ShouldBeNil)
			for run := 0; run < 5; run++ {
				again, err := source.NewDirSource(dir, source.WithWorkers(3)).Load(ctx)
				So(err, ShouldBeNil)
				So(len(again.Records), ShouldEqual, len(first.Records))
				for i := range first.Records {
					So(again.Records[i].Origin, ShouldEqual, first.Records[i].Origin)
				}
			}
		})
	})

	Convey("Given a path that does not exist", t, func() {
		_, err := source.NewDirSource(filepath.Join(t.TempDir(), "missing")).Load(ctx)

		Convey("Then the source is unavailable", func() {
			So(errors.Is(err, source.ErrSourceUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given a path that is a file", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "x.json", `{}`)
		_, err := source.NewDirSource(filepath.Join(dir, "x.json")).Load(ctx)

		Convey("Then the source is unavailable", func() {
			So(errors.Is(err, source.ErrSourceUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given an empty directory", t, func() {
		src := source.NewDirSource(t.TempDir())
		_, err := src.Load(ctx)

		Convey("Then no records are found", func() {
			So(errors.Is(err, source.ErrNoRecordsFound), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "a.json", `{}`)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := source.NewDirSource(dir).Load(cctx)

		Convey("Then the load is aborted", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestWatch(t *testing.T) {
	Convey("Given a watched directory", t, func() {
		dir := t.TempDir()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		changed := make(chan struct{}, 4)
		done := make(chan error, 1)
		go func() {
			done <- source.Watch(ctx, dir, 50*time.Millisecond, func(context.Context) {
				changed <- struct{}{}
			})
		}()

		Convey("When files are written in a burst", func() {
			// Give the watcher time to register the directory.
			time.Sleep(100 * time.Millisecond)
			for i := 0; i < 3; i++ {
				writeFile(t, dir, "burst.json", fmt.Sprintf(examJSON, i))
			}

			Convey("Then onChange fires after the burst settles", func() {
				fired := false
				select {
				case <-changed:
					fired = true
				case <-ctx.Done():
				}
				cancel()
				So(fired, ShouldBeTrue)
				So(<-done, ShouldBeNil)
			})
		})
	})

	Convey("Given a directory that does not exist", t, func() {
		err := source.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), time.Millisecond, func(context.Context) {})

		Convey("Then watching fails as unavailable", func() {
			So(errors.Is(err, source.ErrSourceUnavailable), ShouldBeTrue)
		})
	})
}
