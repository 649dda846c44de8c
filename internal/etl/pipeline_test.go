package etl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdash/internal/domain"
)

func writeJSONL(t *testing.T, dir, name string, lines ...string) domain.FileRef {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return domain.FileRef{Root: dir, Name: name}
}

func quietEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEngineRunJoinsSeriesWithLabels(t *testing.T) {
	dir := t.TempDir()
	f := writeJSONL(t, dir, "metrics.json",
		`{"metric":[{"period":[{"sales":100,"region":"north"},{"sales":150,"region":"south"}]}]}`,
	)

	e := quietEngine()
	res, err := e.Run([]domain.FileRef{f})
	require.NoError(t, err)

	assert.Equal(t, Stats{Files: 1, Documents: 1, Stems: 4, Groups: 2, Duration: res.Stats.Duration}, res.Stats)
	require.Len(t, res.RecordSets, 2)
	assert.Equal(t, "metric.period.str.int", res.RecordSets[0].RecordPath)
	assert.Equal(t, "metric.period.str.str", res.RecordSets[1].RecordPath)

	panels, errs := e.Panels(res.RecordSets)
	require.Empty(t, errs)
	require.Len(t, panels, 1)
	p := panels[0]
	assert.Equal(t, "metric.period", p.Header)
	assert.Equal(t, PanelChart, p.Kind)
	assert.Equal(t, []string{"metric", PeriodColumn, "region", KeyColumn, ValueColumn}, p.Data.ColumnNames())
	assert.Equal(t, [][]any{
		{int64(0), int64(0), "north", "sales", int64(100)},
		{int64(0), int64(1), "south", "sales", int64(150)},
	}, p.Data.Matrix(0))
}

func TestEngineRunSeriesWithoutIdentityIsAmbiguous(t *testing.T) {
	dir := t.TempDir()
	f := writeJSONL(t, dir, "sales.json",
		`{"metric":{"sales":{"period":"2024-Q1","value":100}}}`,
		`{"metric":{"sales":{"period":"2024-Q2","value":150}}}`,
	)

	res, err := quietEngine().Run([]domain.FileRef{f})
	require.NoError(t, err)
	require.Len(t, res.RecordSets, 2)

	// period and value are sibling leaves, so they land in separate
	// metric.sales.str.str and metric.sales.str.int groups; with no
	// identifying column both periods pivot onto one wide row.
	assert.Equal(t, "metric.sales.str.str", res.RecordSets[0].RecordPath)
	assert.Equal(t, "metric.sales.str.int", res.RecordSets[1].RecordPath)
	panels, errs := quietEngine().Panels(res.RecordSets)
	assert.Empty(t, panels)
	require.Len(t, errs, 1)
	var amb *AmbiguousPivotError
	assert.True(t, errors.As(errs[0], &amb))
}

func TestEngineRunSeriesUnderArrayIsChart(t *testing.T) {
	dir := t.TempDir()
	f := writeJSONL(t, dir, "sales.json",
		`[{"metric":{"sales":{"period":"2024-Q1","value":100}}},{"metric":{"sales":{"period":"2024-Q2","value":150}}}]`,
	)

	res, err := quietEngine().Run([]domain.FileRef{f})
	require.NoError(t, err)
	require.Len(t, res.RecordSets, 2)

	panels, errs := quietEngine().Panels(res.RecordSets)
	require.Empty(t, errs)
	require.Len(t, panels, 1)
	p := panels[0]
	assert.Equal(t, "metric.sales", p.Header)
	assert.Equal(t, PanelChart, p.Kind)
	assert.Equal(t, []string{DocIDColumn, PeriodColumn, KeyColumn, ValueColumn}, p.Data.ColumnNames())
	assert.Equal(t, [][]any{
		{int64(0), "2024-Q1", "value", int64(100)},
		{int64(1), "2024-Q2", "value", int64(150)},
	}, p.Data.Matrix(0))
}

func TestEngineRunDocIDSeparatesRows(t *testing.T) {
	dir := t.TempDir()
	f := writeJSONL(t, dir, "rows.json",
		`[{"period":"2024-Q1","value":1},{"period":"2024-Q2","value":2}]`,
	)

	res, err := quietEngine().Run([]domain.FileRef{f})
	require.NoError(t, err)

	panels, errs := quietEngine().Panels(res.RecordSets)
	require.Empty(t, errs)
	require.Len(t, panels, 1)
	assert.Equal(t, PanelChart, panels[0].Kind)
	assert.Equal(t, []string{DocIDColumn, PeriodColumn, KeyColumn, ValueColumn}, panels[0].Data.ColumnNames())
}

func TestEngineRunMultipleFilesAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	a := writeJSONL(t, dir, "a.json", `{"x":{"v":1}}`, ``, `   `, `{"x":{"v":2}}`)
	b := writeJSONL(t, dir, "b.json", `{"x":{"v":3}}`)

	res, err := quietEngine().Run([]domain.FileRef{a, b})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Documents)
	require.Len(t, res.RecordSets, 1)
	assert.Equal(t, [][]any{{"v", int64(1)}, {"v", int64(2)}, {"v", int64(3)}}, res.RecordSets[0].Data.Matrix(0))
}

func TestEngineRunMalformedLine(t *testing.T) {
	dir := t.TempDir()
	f := writeJSONL(t, dir, "bad.json", `{"x":1}`, `{"x":`, `{"x":2}`)

	_, err := quietEngine().Run([]domain.FileRef{f})
	var mi *MalformedInputError
	require.True(t, errors.As(err, &mi))
	assert.Equal(t, filepath.Join(dir, "bad.json"), mi.File)
	assert.Equal(t, 2, mi.Line)
}

func TestEngineRunMissingFile(t *testing.T) {
	_, err := quietEngine().Run([]domain.FileRef{{Root: t.TempDir(), Name: "nope.json"}})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadLines(t *testing.T) {
	var got []Line
	for l, err := range ReadLines(strings.NewReader("a\n\n  \nb\nc")) {
		require.NoError(t, err)
		got = append(got, l)
	}
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, 4, got[1].Number)
	assert.Equal(t, 5, got[2].Number)
	assert.Equal(t, "c", string(got[2].Data))
}

type recordingDest struct {
	writes map[string]int
	failOn string
	closed bool
}

func (d *recordingDest) Write(_ context.Context, target string, schema *Schema, t *Table, _ SyncMode) (int, error) {
	if target == d.failOn {
		return 0, errors.New("write refused")
	}
	if d.writes == nil {
		d.writes = make(map[string]int)
	}
	d.writes[target] = t.Len()
	return t.Len(), nil
}

func (d *recordingDest) Close() error {
	d.closed = true
	return nil
}

func TestEngineExport(t *testing.T) {
	sets := []RecordSet{
		set("sales.str.int", seriesTable()),
		set("labels.str.str", labelTable()),
	}

	dest := &recordingDest{}
	res, err := quietEngine().Export(context.Background(), dest, "shop/eu", sets, SyncReplace)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tables)
	assert.Equal(t, 4, res.RowsWritten)
	assert.Equal(t, map[string]int{
		"shop_eu_sales_str_int":  2,
		"shop_eu_labels_str_str": 2,
	}, dest.writes)

	failing := &recordingDest{failOn: "shop_eu_labels_str_str"}
	res, err = quietEngine().Export(context.Background(), failing, "shop/eu", sets, SyncAppend)
	require.Error(t, err)
	assert.Equal(t, 1, res.Tables)
	assert.Equal(t, 2, res.RowsWritten)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = quietEngine().Export(ctx, &recordingDest{}, "shop", sets, SyncReplace)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTargetName(t *testing.T) {
	assert.Equal(t, "shop_metric_sales_str_int", TargetName("shop", "metric.sales.str.int"))
	assert.Equal(t, "str_int", TargetName(".", "str.int"))
	assert.Equal(t, "a_b_c_str_nonetype", TargetName("A B", "c.str.NoneType"))
	assert.Equal(t, "caf_x_str", TargetName("café", "x.str"))
}
