// =============================================================================
// Survey Address Converter - Address Pipeline
// =============================================================================
//
// This package turns a raw survey table into the normalized, enriched and
// classified table that both output modes consume. Every stage is a function
// from table to table; the Pipeline only composes them and carries the state
// that may span chunks.
//
// STAGES (in order):
//   1. Normalize   - CEP, COD_LOGRADOURO and key fields
//   2. BuildKeys   - CHAVE LOG
//   3. Ordinals    - per (key, prefix) numbering, working complement copies
//   4. Zones       - COD_ZONA
//   5. Compare     - RESULTADO and COMPARATIVO
//   6. Join        - ID_ROTEIRO and ID_LOCALIDADE from the routing tables
//   7. Dedup       - one row per COD_SURVEY
//   8. Classify    - Nº ARGUMENTO3 COMPLEMENTO3 and VALIDAÇÃO
//   9. Restore     - original COMPLEMENTO3
//
// Finalize is applied by the CSV writer path only.
//
// CHUNK SCOPE:
//   In "per_chunk" scope every Process call starts with fresh ordinal and
//   duplicate state, so groups split across chunks are numbered twice. In
//   "global" scope the state carries over and the concatenated output equals
//   a single pass over the whole file.
//
// =============================================================================

package pipeline

import (
	"github.com/ginjaninja78/survey-xml-converter/internal/config"
	"github.com/ginjaninja78/survey-xml-converter/internal/reference"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

// =============================================================================
// OPTIONS AND STATISTICS
// =============================================================================

// Options configures a Pipeline.
type Options struct {
	Thresholds Thresholds
	Scope      config.ChunkScope
}

// OptionsFromConfig reads the pipeline options from the processing settings.
func OptionsFromConfig(p config.ProcessingSettings) Options {
	return Options{
		Thresholds: Thresholds{Complement: p.ComplementThreshold, Ordinal: p.OrdinalThreshold},
		Scope:      p.ChunkScope,
	}
}

// Stats summarizes what the pipeline did.
type Stats struct {
	// InputRows is the number of rows received.
	InputRows int

	// OutputRows is the number of rows after deduplication.
	OutputRows int

	// WithPrefix is the number of rows with a valid complement 3 prefix.
	WithPrefix int

	// Joined is the number of rows that matched a routing entry.
	Joined int

	// DuplicatesRemoved is InputRows minus OutputRows.
	DuplicatesRemoved int

	// Chunks is the number of Process calls.
	Chunks int

	// Labels counts rows per validation label.
	Labels map[string]int
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs the stages over one table or over successive chunks of the
// same file. It is not safe for concurrent use.
type Pipeline struct {
	joiner   *Joiner
	opts     Options
	ordinals *OrdinalState
	seen     *DedupState
	stats    Stats
}

// New creates a Pipeline. The reference table is indexed once here.
func New(ref *reference.Table, opts Options) *Pipeline {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.Scope == "" {
		opts.Scope = config.ScopePerChunk
	}
	return &Pipeline{
		joiner:   NewJoiner(ref),
		opts:     opts,
		ordinals: NewOrdinalState(),
		seen:     NewDedupState(),
		stats:    Stats{Labels: make(map[string]int)},
	}
}

// Process runs every stage over t and returns the classified table.
func (p *Pipeline) Process(t types.Table) types.Table {
	if p.opts.Scope != config.ScopeGlobal && p.stats.Chunks > 0 {
		p.ordinals = NewOrdinalState()
		p.seen = NewDedupState()
	}
	p.stats.Chunks++

	out := Normalize(t)
	out = BuildKeys(out)
	out = Ordinals(out, p.ordinals)
	out = Zones(out)
	out = Compare(out)
	out = p.joiner.Join(out)
	out = Dedup(out, p.seen)
	out = Classify(out, p.opts.Thresholds)
	out = Restore(out)

	p.record(t.Len(), out)
	return out
}

// JoinEnabled reports whether the routing join runs.
func (p *Pipeline) JoinEnabled() bool {
	return p.joiner.Enabled()
}

// Stats returns the accumulated statistics.
func (p *Pipeline) Stats() Stats {
	s := p.stats
	s.Labels = make(map[string]int, len(p.stats.Labels))
	for k, v := range p.stats.Labels {
		s.Labels[k] = v
	}
	return s
}

func (p *Pipeline) record(inputRows int, out types.Table) {
	p.stats.InputRows += inputRows
	p.stats.OutputRows += out.Len()
	p.stats.DuplicatesRemoved = p.stats.InputRows - p.stats.OutputRows
	p.stats.Joined += Matched(out)
	for _, row := range out.Rows {
		if row[types.ColOrdem] != "0" {
			p.stats.WithPrefix++
		}
		p.stats.Labels[row[types.ColValidacao]]++
	}
}

// Run is a single-pass convenience wrapper.
func Run(t types.Table, ref *reference.Table, opts Options) (types.Table, Stats) {
	p := New(ref, opts)
	out := p.Process(t)
	return out, p.Stats()
}
