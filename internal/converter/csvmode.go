package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ginjaninja78/survey-xml-converter/internal/csvparser"
	"github.com/ginjaninja78/survey-xml-converter/internal/pipeline"
	"github.com/ginjaninja78/survey-xml-converter/internal/progress"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
	"github.com/ginjaninja78/survey-xml-converter/pkg/utils"
)

// =============================================================================
// CSV MODE
// =============================================================================

// runCSV converts the whole file in one pass.
func (c *Converter) runCSV(ctx context.Context, input, outDir string) (progress.Result, error) {
	c.report(progress.Update{Message: "🔧 Processando arquivo...", Progress: progress.PctStrategy})

	data, err := csvparser.Parse(input, c.cfg.CSV)
	if err != nil {
		return progress.Result{}, fmt.Errorf("failed to read %s: %w", filepath.Base(input), err)
	}
	if err := checkColumns(data.Headers); err != nil {
		return progress.Result{}, err
	}
	c.log.Debug("Read %d rows (encoding %s, delimiter %q)", len(data.Rows), data.Encoding, data.Delimiter)

	ref, err := c.loadReference()
	if err != nil {
		return progress.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return progress.Result{}, err
	}

	table := data.Table()
	c.report(progress.Update{
		Message:  fmt.Sprintf("🔄 Normalizando %d endereços...", table.Len()),
		Progress: progress.PctChunksStart,
		Total:    table.Len(),
	})
	c.warnRows(table, 1)

	p := pipeline.New(ref, pipeline.OptionsFromConfig(c.cfg.Processing))
	out := pipeline.Finalize(p.Process(table))
	c.report(progress.Update{Progress: progress.PctChunksEnd, Current: table.Len()})

	return c.saveCSV(outDir, out, p.Stats())
}

// =============================================================================
// CHUNKED MODE
// =============================================================================

// runChunked converts the file in blocks of chunk_size rows. The routing
// spreadsheets are loaded once; each block goes through the same stages and
// the finalized blocks are concatenated.
func (c *Converter) runChunked(ctx context.Context, input, outDir string) (progress.Result, error) {
	c.report(progress.Update{
		Message:  "🔧 Usando processamento otimizado para arquivo grande...",
		Progress: progress.PctStrategy,
	})

	c.report(progress.Update{Message: "🔢 Contando linhas totais...", Progress: progress.PctCountStart})
	total, err := csvparser.CountRows(input, c.cfg.CSV)
	if err != nil {
		return progress.Result{}, fmt.Errorf("failed to read %s: %w", filepath.Base(input), err)
	}
	c.report(progress.Update{
		Message:  fmt.Sprintf("📊 Total de linhas encontradas: %d", total),
		Progress: progress.PctCountEnd,
		Total:    total,
	})

	parser, err := csvparser.NewStreamingParser(input, c.cfg.CSV)
	if err != nil {
		return progress.Result{}, fmt.Errorf("failed to read %s: %w", filepath.Base(input), err)
	}
	defer parser.Close()

	if err := checkColumns(parser.Headers()); err != nil {
		return progress.Result{}, err
	}

	ref, err := c.loadReference()
	if err != nil {
		return progress.Result{}, err
	}

	size := c.cfg.Processing.ChunkSize
	chunks := progress.TotalChunks(total, size)
	p := pipeline.New(ref, pipeline.OptionsFromConfig(c.cfg.Processing))
	c.log.Info("Processing %d rows in %d chunk(s) of %d (%s scope)", total, chunks, size, c.cfg.Processing.ChunkScope)

	c.report(progress.Update{Message: "🔄 Iniciando processamento em chunks...", Progress: progress.PctChunksStart})

	var combined types.Table
	read := 0
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return progress.Result{}, err
		}

		chunk, err := parser.ReadChunk(size)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return progress.Result{}, fmt.Errorf("failed to read chunk %d: %w", n, err)
		}

		firstRow := read + 1
		read += chunk.Len()
		pct := progress.ChunkProgress(n, chunks)
		c.report(progress.Update{
			Message:  fmt.Sprintf("📦 Processando chunk %d (%d linhas)...", n, chunk.Len()),
			Progress: pct,
			Current:  read,
		})

		c.warnRows(chunk, firstRow)
		combined.Append(pipeline.Finalize(p.Process(chunk)))

		c.report(progress.Update{Message: fmt.Sprintf("✅ Chunk %d processado", n)})
	}

	if read == 0 {
		return progress.Result{}, csvparser.ErrNoRows
	}

	c.report(progress.Update{Message: "🔗 Combinando chunks processados...", Progress: progress.PctCombine})
	return c.saveCSV(outDir, combined, p.Stats())
}

// =============================================================================
// OUTPUT
// =============================================================================

// saveCSV writes the finalized table to a timestamped file in outDir.
func (c *Converter) saveCSV(outDir string, table types.Table, stats pipeline.Stats) (progress.Result, error) {
	c.report(progress.Update{Message: "💾 Salvando arquivo final...", Progress: progress.PctSave})

	name, err := utils.ReserveFile(outDir, utils.GenerateOutputFileName(csvNameFormat, nil))
	if err != nil {
		return progress.Result{}, err
	}
	if err := utils.WriteCSV(filepath.Join(outDir, name), table); err != nil {
		return progress.Result{}, err
	}

	c.logStats(stats)
	return progress.Result{
		Message: fmt.Sprintf("✅ Conversão concluída! Arquivo salvo: %s", name),
		File:    name,
		Rows:    table.Len(),
		Summary: summary(stats),
	}, nil
}
