package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/okian/sentinela/internal/domain/model"
)

const bannerWidth = 60

// textSink prints the console report. Styles are bound to a renderer for the
// destination writer, so redirected output carries no escape codes.
type textSink struct {
	w     io.Writer
	label string

	title   lipgloss.Style
	alert   lipgloss.Style
	ok      lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
}

func newTextSink(w io.Writer, s settings) *textSink {
	r := lipgloss.NewRenderer(w)
	return &textSink{
		w:       w,
		label:   s.groupLabel,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		alert:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("46")),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (s *textSink) Render(ctx context.Context, a *model.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bw := bufio.NewWriter(s.w)
	banner := strings.Repeat("=", bannerWidth)
	critical := strconv.FormatFloat(a.Thresholds.CriticalRDW, 'f', -1, 64)
	plural := strings.ToLower(s.label) + "s"
	rep := a.Report

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, banner)
	fmt.Fprintln(bw, s.title.Render("RELATÓRIO DE VIGILÂNCIA NUTRICIONAL - SENTINELA RDW"))
	fmt.Fprintln(bw, banner)

	if len(rep.Alerts) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, s.alert.Render("🚨 ÁREAS DE ALERTA NUTRICIONAL IDENTIFICADAS 🚨"))
		fmt.Fprintln(bw)
		for _, g := range rep.Alerts {
			fmt.Fprintf(bw, "%s %s: %s\n", s.alert.Render("[ALERTA]"), s.label, g.GroupKey)
			s.writeGroup(bw, g, critical)
		}
	} else {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, s.ok.Render("✅ NENHUMA ÁREA DE ALERTA NUTRICIONAL IDENTIFICADA"))
	}

	if len(rep.Normals) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, s.section.Render("--- ANÁLISE GERAL DOS "+strings.ToUpper(plural)+" ---"))
		fmt.Fprintln(bw)
		for _, g := range rep.Normals {
			fmt.Fprintf(bw, "%s: %s\n", s.label, g.GroupKey)
			s.writeGroup(bw, g, critical)
		}
	}
	fmt.Fprintln(bw, banner)

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, s.section.Render("📈 RESUMO DA ANÁLISE:"))
	fmt.Fprintf(bw, "  • Total de %s analisados: %d\n", plural, rep.TotalGroups)
	fmt.Fprintf(bw, "  • Áreas em alerta nutricional: %d\n", rep.TotalAlerts)
	fmt.Fprintf(bw, "  • Total de exames processados: %d\n", rep.TotalExams)
	fmt.Fprintf(bw, "  • Taxa de alerta: %.1f%%\n", rep.AlertRatePercent)
	if ov := a.Overview; ov.Exams > 0 {
		fmt.Fprintf(bw, "  • RDW médio geral: %.2f%%\n", ov.MeanRDW)
		fmt.Fprintf(bw, "  • Exames com RDW > %s%%: %d (%.2f%%)\n", critical, ov.ElevatedCount, ov.ElevatedPercent)
	}

	in := a.Ingest
	fmt.Fprintln(bw, s.muted.Render(fmt.Sprintf(
		"  • Registros: %d carregados, %d aceitos, %d rejeitados, %d duplicados (%d arquivos, %d com falha)",
		in.RecordsLoaded, in.RecordsAccepted, in.RecordsRejected, in.Duplicates, in.Files, in.FilesFailed)))

	s.writeDemographics(bw, a.Demographics)

	return bw.Flush()
}

// writeDemographics prints the age and sex profile; nothing when no exam
// carried either attribute.
func (s *textSink) writeDemographics(w io.Writer, d model.Demographics) {
	if len(d.AgeBands) == 0 && len(d.Sex) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.section.Render("👥 PERFIL DEMOGRÁFICO:"))
	for _, b := range d.AgeBands {
		fmt.Fprintf(w, "  • Faixa etária %s: %d exames, RDW médio %.2f%%\n", b.Label, b.Count, b.MeanRDW)
	}
	for _, b := range d.Sex {
		fmt.Fprintf(w, "  • Sexo %s: %d exames, RDW médio %.2f%%\n", b.Label, b.Count, b.MeanRDW)
	}
	if d.UnknownAge > 0 || d.UnknownSex > 0 {
		fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("  • Sem idade: %d, sem sexo: %d", d.UnknownAge, d.UnknownSex)))
	}
}

func (s *textSink) writeGroup(w io.Writer, g model.GroupSummary, critical string) {
	fmt.Fprintf(w, "  Exames Processados: %d\n", g.ExamCount)
	fmt.Fprintf(w, "  RDW Médio: %.2f%%\n", g.MeanRDW)
	fmt.Fprintf(w, "  Exames com RDW > %s%%: %.2f%%\n", critical, g.ElevatedPercent)
	fmt.Fprintln(w)
}
