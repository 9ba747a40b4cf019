package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/survey-xml-converter/internal/reference"
	"github.com/ginjaninja78/survey-xml-converter/internal/types"
)

func routing(entries ...reference.Entry) *reference.Table {
	return &reference.Table{Entries: entries, HasKey: true}
}

func TestJoinMatchesAndKeepsUnmatchedRows(t *testing.T) {
	j := NewJoiner(routing(
		reference.Entry{Key: "2700035341", RouteID: "57149008", LocalidadeID: "1894644"},
	))
	in := Normalize(tableOf(
		surveyRow("1", nil),
		surveyRow("2", map[string]string{"COD_LOGRADOURO": "999"}),
	))

	out := j.Join(in)

	assert.True(t, j.Enabled())
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"57149008", ""}, column(out, types.ColIDRoteiro))
	assert.Equal(t, []string{"1894644", ""}, column(out, types.ColIDLocalidade))
	assert.Equal(t, 1, Matched(out))
}

func TestJoinNormalizesReferenceKeys(t *testing.T) {
	j := NewJoiner(routing(
		reference.Entry{Key: " 2700035341 ", RouteID: "A", LocalidadeID: "L1"},
		reference.Entry{Key: "2700035341", RouteID: "B", LocalidadeID: "L2"},
		reference.Entry{Key: "", RouteID: "EMPTY", LocalidadeID: "L3"},
	))
	in := Normalize(tableOf(
		surveyRow("1", nil),
		surveyRow("2", map[string]string{"COD_LOGRADOURO": ""}),
	))

	out := j.Join(in)

	assert.Equal(t, 1, j.Size())
	assert.Equal(t, []string{"A", ""}, column(out, types.ColIDRoteiro), "first entry wins and empty codes never match")
}

func TestJoinDegradesWithoutKeyColumn(t *testing.T) {
	withoutKey := &reference.Table{Entries: []reference.Entry{{RouteID: "X"}}}
	in := Normalize(tableOf(surveyRow("1", nil)))

	for _, j := range []*Joiner{NewJoiner(nil), NewJoiner(withoutKey)} {
		out := j.Join(in)
		assert.False(t, j.Enabled())
		assert.True(t, out.HasColumn(types.ColIDRoteiro))
		assert.True(t, out.HasColumn(types.ColIDLocalidade))
		assert.Equal(t, "", out.Rows[0][types.ColIDRoteiro])
	}

	noStreetCode := types.Table{Columns: []string{"COD_SURVEY"}, Rows: []types.Record{{"COD_SURVEY": "1"}}}
	out := NewJoiner(routing(reference.Entry{Key: "1", RouteID: "R"})).Join(noStreetCode)
	assert.Equal(t, "", out.Rows[0][types.ColIDRoteiro])
}
