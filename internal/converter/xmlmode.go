package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/complement"
	"github.com/ginjaninja78/survey-xml-converter/internal/csvparser"
	"github.com/ginjaninja78/survey-xml-converter/internal/pipeline"
	"github.com/ginjaninja78/survey-xml-converter/internal/progress"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
	"github.com/ginjaninja78/survey-xml-converter/internal/validation"
	"github.com/ginjaninja78/survey-xml-converter/internal/xmlwriter"
	"github.com/ginjaninja78/survey-xml-converter/pkg/utils"
)

// Complement summaries of an XML run.
const (
	msgXMLTwoComplements   = "✅(XML) com dois complementos gerado com sucesso! Agora é só fazer o download do zip!"
	msgXMLThreeComplements = "✅(XML) com três complementos gerado com sucesso! Agora é só fazer o download do zip!"
	msgXMLEmptyCells       = "⚠️(ERRO) no CSV na coluna do [%s], existem células que estão vazias. Todas as células da coluna %s devem ser preenchidas para gerar o xml com %d complementos."
)

// advisoryInterval is the row interval of the complement advisory log. The
// first row is always logged.
const advisoryInterval = 10

// =============================================================================
// XML MODE
// =============================================================================

// runXML classifies the table and writes one <edificio> document per row
// into a zip named after the supplying station of the first row.
func (c *Converter) runXML(ctx context.Context, input, outDir string) (res progress.Result, err error) {
	c.report(progress.Update{Message: "🔧 Gerando documentos XML...", Progress: progress.PctStrategy})

	data, err := csvparser.Parse(input, c.cfg.CSV)
	if err != nil {
		return progress.Result{}, fmt.Errorf("failed to read %s: %w", filepath.Base(input), err)
	}
	if err := checkColumns(data.Headers); err != nil {
		return progress.Result{}, err
	}

	ref, err := c.loadReference()
	if err != nil {
		return progress.Result{}, err
	}

	table := data.Table()
	c.warnRows(table, 1)
	p := pipeline.New(ref, pipeline.OptionsFromConfig(c.cfg.Processing))
	out := p.Process(table)

	station := strings.TrimSpace(table.Rows[0][types.ColEstacao])
	if station == "" {
		station = c.cfg.XML.Defaults.Estacao
	}
	name, err := utils.ReserveFile(outDir, utils.GenerateOutputFileName(zipNameFormat, map[string]string{"station": station}))
	if err != nil {
		return progress.Result{}, err
	}

	zw, err := utils.NewZipWriter(filepath.Join(outDir, name), "")
	if err != nil {
		utils.RemoveIfExists(filepath.Join(outDir, name))
		return progress.Result{}, err
	}
	defer func() {
		if err != nil {
			zw.Abort()
		}
	}()

	opts := xmlwriter.EdificioOptions{
		Settings:           c.cfg.XML,
		IncludeComplement3: !out.ColumnIsEmpty(types.ColComplemento3),
		Now:                c.now(),
	}

	total := out.Len()
	c.report(progress.Update{
		Message:  fmt.Sprintf("📦 Gerando %d documentos XML...", total),
		Progress: progress.PctChunksStart,
		Total:    total,
	})

	flagged := 0
	for i, row := range out.Rows {
		n := i + 1
		doc := xmlwriter.Marshal(xmlwriter.BuildEdificio(row, opts))
		warned, err := c.checkDocument(n, doc)
		if err != nil {
			return progress.Result{}, err
		}
		if warned {
			flagged++
		}
		if err := zw.Add(n, doc); err != nil {
			return progress.Result{}, err
		}

		if n == 1 || n%advisoryInterval == 0 {
			c.logAdvisory(n, row, opts.IncludeComplement3)
			if err := ctx.Err(); err != nil {
				return progress.Result{}, err
			}
			c.report(progress.Update{Progress: progress.ChunkProgress(n, total), Current: n})
		}
	}

	c.report(progress.Update{Message: "💾 Salvando arquivo zip...", Progress: progress.PctSave, Current: total})
	if err := zw.Close(); err != nil {
		return progress.Result{}, err
	}

	message, complete := complementSummary(out, opts.IncludeComplement3)
	if !complete {
		c.log.Warn("%s", message)
	} else {
		c.log.Info("%s", message)
	}

	stats := p.Stats()
	c.logStats(stats)
	sum := summary(stats)
	sum["documents"] = zw.Count()
	sum["documents_with_warnings"] = flagged

	return progress.Result{
		Message: message,
		File:    name,
		Rows:    zw.Count(),
		Summary: sum,
	}, nil
}

// checkDocument validates the structure and complements of document n.
// A structural error fails the run; complement findings are logged and
// reported through the bool.
func (c *Converter) checkDocument(n int, doc []byte) (bool, error) {
	if check := validation.ValidateXML(doc); !check.IsValid {
		return false, fmt.Errorf("document %d is invalid: %s", n,
			strings.Join(check.Messages(validation.SeverityError), "; "))
	}

	check := validation.ValidateXMLComplements(doc)
	for _, msg := range check.Messages(validation.SeverityWarning) {
		c.log.Debug("moradia%d: %s", n, msg)
	}
	return check.WarningCount > 0, nil
}

// logAdvisory logs the decoded complements of row n.
func (c *Converter) logAdvisory(n int, row types.Record, withThird bool) {
	c.log.Info("Registro %d:", n)
	c.log.Info("%s", advisoryLine(1, row[types.ColComplemento]))
	c.log.Info("%s", advisoryLine(2, row[types.ColComplemento2]))
	if withThird {
		c.log.Info("%s", advisoryLine(3, row[types.ColResultado]))
	}
	c.log.Info("%s", strings.Repeat("-", 50))
}

func advisoryLine(i int, text string) string {
	pair := complement.Decode(text)
	return fmt.Sprintf("  COMP%d(\"%s\" → código:%s argumento:\"%s\")", i, text, pair.Code, pair.Argument)
}

// complementColumn is a complement column checked by complementSummary.
type complementColumn struct {
	name  string
	label string
	count int
}

// complementSummary describes which complements the documents carry. The
// second result is false when a required complement column has empty cells;
// the documents are still written in that case. The third complement is
// checked on RESULTADO, the value the documents carry.
func complementSummary(t types.Table, withThird bool) (string, bool) {
	columns := []complementColumn{
		{types.ColComplemento, "COMPLEMENTO1", 2},
		{types.ColComplemento2, "COMPLEMENTO2", 2},
	}
	if withThird {
		columns = append(columns, complementColumn{types.ColResultado, "COMPLEMENTO3", 3})
	}

	for _, col := range columns {
		for _, row := range t.Rows {
			if strings.TrimSpace(row[col.name]) == "" {
				return fmt.Sprintf(msgXMLEmptyCells, col.label, col.label, col.count), false
			}
		}
	}

	if withThird {
		return msgXMLThreeComplements, true
	}
	return msgXMLTwoComplements, true
}
