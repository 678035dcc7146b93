package sink_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/sentinela/internal/adapters/sink"
	"github.com/okian/sentinela/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func analysis() *model.Analysis {
	return &model.Analysis{
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Source:      "./dados/",
		Thresholds:  model.DefaultThresholds(),
		Ingest: model.IngestStats{
			Files: 3, RecordsLoaded: 4, RecordsAccepted: 3, RecordsRejected: 1,
			RejectionsByReason: map[string]int{"wrong_type": 1},
		},
		Report: model.ClassifiedReport{
			Alerts: []model.GroupSummary{{
				GroupKey: "A", ExamCount: 2, MeanRDW: 15.5, ElevatedCount: 2, ElevatedPercent: 100,
				MinRDW: 15, MaxRDW: 16, Status: model.StatusElevated,
			}},
			Normals: []model.GroupSummary{{
				GroupKey: "B", ExamCount: 1, MeanRDW: 13, MinRDW: 13, MaxRDW: 13, Status: model.StatusNormal,
			}},
			TotalGroups: 2, TotalAlerts: 1, TotalExams: 3, AlertRatePercent: 50,
		},
		Overview: model.Overview{
			Exams: 3, Groups: 2, MeanRDW: 14.67, ElevatedCount: 2, ElevatedPercent: 66.67,
		},
		Distribution: []model.Bin{{Lower: 13, Upper: 13.5, Count: 1, Percent: 33.33}},
		Demographics: model.Demographics{
			AgeBands:   []model.Band{{Label: "18-29", Count: 2, MeanRDW: 15.5}},
			Sex:        []model.Band{{Label: "Feminino", Count: 3, MeanRDW: 14.67}},
			UnknownAge: 1,
		},
		Timeline: []model.DatePoint{{Date: "2025-03-01", Count: 3, MeanRDW: 14.67}},
	}
}

func TestNew(t *testing.T) {
	Convey("Given the supported formats", t, func() {
		for _, f := range []string{"text", "json", "yaml", "JSON", ""} {
			s, err := sink.New(f, &bytes.Buffer{})
			So(err, ShouldBeNil)
			So(s, ShouldNotBeNil)
		}
	})

	Convey("Given an unsupported format", t, func() {
		_, err := sink.New("xml", &bytes.Buffer{})

		Convey("Then it should be rejected", func() {
			So(errors.Is(err, sink.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}

func TestTextSink(t *testing.T) {
	ctx := context.Background()

	Convey("Given an analysis with alert and normal groups", t, func() {
		var buf bytes.Buffer
		s, err := sink.New(sink.FormatText, &buf)
		So(err, ShouldBeNil)

		So(s.Render(ctx, analysis()), ShouldBeNil)
		out := buf.String()

		Convey("Then the alert section lists the alert group", func() {
			So(out, ShouldContainSubstring, "RELATÓRIO DE VIGILÂNCIA NUTRICIONAL - SENTINELA RDW")
			So(out, ShouldContainSubstring, "ÁREAS DE ALERTA NUTRICIONAL IDENTIFICADAS")
			So(out, ShouldContainSubstring, "[ALERTA] Bairro: A\n")
			So(out, ShouldContainSubstring, "  RDW Médio: 15.50%\n")
			So(out, ShouldContainSubstring, "  Exames com RDW > 14.5%: 100.00%\n")
		})

		Convey("Then the general section lists normal groups", func() {
			So(out, ShouldContainSubstring, "--- ANÁLISE GERAL DOS BAIRROS ---")
			So(out, ShouldContainSubstring, "Bairro: B\n")
			So(out, ShouldContainSubstring, "  RDW Médio: 13.00%\n")
		})

		Convey("Then the summary shows totals and the alert rate", func() {
			So(out, ShouldContainSubstring, "  • Total de bairros analisados: 2\n")
			So(out, ShouldContainSubstring, "  • Áreas em alerta nutricional: 1\n")
			So(out, ShouldContainSubstring, "  • Total de exames processados: 3\n")
			So(out, ShouldContainSubstring, "  • Taxa de alerta: 50.0%\n")
			So(out, ShouldContainSubstring, "4 carregados, 3 aceitos, 1 rejeitados, 0 duplicados")
			So(out, ShouldContainSubstring, "  • RDW médio geral: 14.67%\n")
			So(out, ShouldContainSubstring, "  • Exames com RDW > 14.5%: 2 (66.67%)\n")
		})

		Convey("Then the demographic profile is listed", func() {
			So(out, ShouldContainSubstring, "PERFIL DEMOGRÁFICO:")
			So(out, ShouldContainSubstring, "  • Faixa etária 18-29: 2 exames, RDW médio 15.50%\n")
			So(out, ShouldContainSubstring, "  • Sexo Feminino: 3 exames, RDW médio 14.67%\n")
			So(out, ShouldContainSubstring, "Sem idade: 1, sem sexo: 0")
		})

		Convey("Then redirected output has no escape codes", func() {
			So(out, ShouldNotContainSubstring, "\x1b[")
		})
	})

	Convey("Given an analysis without demographic data", t, func() {
		a := analysis()
		a.Demographics = model.Demographics{}

		var buf bytes.Buffer
		s, _ := sink.New(sink.FormatText, &buf)
		So(s.Render(ctx, a), ShouldBeNil)

		So(buf.String(), ShouldNotContainSubstring, "PERFIL DEMOGRÁFICO")
	})

	Convey("Given an analysis without alerts grouped by city", t, func() {
		a := analysis()
		a.Report.Alerts = nil
		a.Report.TotalAlerts = 0
		a.Report.AlertRatePercent = 0

		var buf bytes.Buffer
		s, _ := sink.New(sink.FormatText, &buf, sink.WithGroupLabel("Cidade"))
		So(s.Render(ctx, a), ShouldBeNil)
		out := buf.String()

		Convey("Then the no-alert line and the label are used", func() {
			So(out, ShouldContainSubstring, "NENHUMA ÁREA DE ALERTA NUTRICIONAL IDENTIFICADA")
			So(out, ShouldNotContainSubstring, "[ALERTA]")
			So(out, ShouldContainSubstring, "--- ANÁLISE GERAL DOS CIDADES ---")
			So(out, ShouldContainSubstring, "Cidade: B\n")
			So(out, ShouldContainSubstring, "  • Taxa de alerta: 0.0%\n")
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s, _ := sink.New(sink.FormatText, &bytes.Buffer{})

		So(errors.Is(s.Render(cctx, analysis()), context.Canceled), ShouldBeTrue)
	})
}

func TestEncodedSinks(t *testing.T) {
	ctx := context.Background()

	Convey("Given the JSON sink", t, func() {
		var buf bytes.Buffer
		s, _ := sink.New(sink.FormatJSON, &buf)
		So(s.Render(ctx, analysis()), ShouldBeNil)

		Convey("Then the output decodes back to the same report", func() {
			var got model.Analysis
			So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
			So(got.RunID, ShouldEqual, "run-1")
			So(got.Report.Alerts[0].GroupKey, ShouldEqual, "A")
			So(got.Report.AlertRatePercent, ShouldEqual, 50.0)
			So(got.Ingest.RejectionsByReason["wrong_type"], ShouldEqual, 1)
			So(buf.String(), ShouldContainSubstring, `"mean_rdw": 15.5`)
		})

		Convey("Then the overview, demographics and timeline are included", func() {
			var got model.Analysis
			So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
			So(got.Overview.MeanRDW, ShouldEqual, 14.67)
			So(got.Demographics.AgeBands[0].Label, ShouldEqual, "18-29")
			So(got.Timeline, ShouldHaveLength, 1)
		})
	})

	Convey("Given the JSON sink and a huge but finite mean", t, func() {
		a := analysis()
		a.Report.Alerts[0].MeanRDW = 1.7e308
		a.Report.Alerts[0].MaxRDW = 1.7e308
		a.Overview.MeanRDW = 1.7e308

		var buf bytes.Buffer
		s, _ := sink.New(sink.FormatJSON, &buf)

		Convey("Then it still renders", func() {
			So(s.Render(ctx, a), ShouldBeNil)
			var got model.Analysis
			So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
			So(got.Report.Alerts[0].MeanRDW, ShouldEqual, 1.7e308)
		})
	})

	Convey("Given the YAML sink", t, func() {
		var buf bytes.Buffer
		s, _ := sink.New(sink.FormatYAML, &buf)
		So(s.Render(ctx, analysis()), ShouldBeNil)

		Convey("Then the output uses snake_case keys", func() {
			out := buf.String()
			So(out, ShouldContainSubstring, "run_id: run-1")
			So(out, ShouldContainSubstring, "alert_rate_percent: 50")
			So(out, ShouldContainSubstring, "age_bands:")
			So(out, ShouldContainSubstring, "timeline:")

			var got map[string]any
			So(yaml.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
			So(got["source"], ShouldEqual, "./dados/")
		})
	})
}
