package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terratensor/cnareas/internal/config"
	"github.com/terratensor/cnareas/internal/core/domain"
)

type recordingSink struct {
	saved []*domain.AreaSet
	err   error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Save(ctx context.Context, set *domain.AreaSet) error {
	s.saved = append(s.saved, set)
	return s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		SourceFile:      filepath.Join(dir, "areas.txt"),
		SourceEncoding:  "utf-8",
		NormalizeLines:  true,
		DownloadTimeout: 5 * time.Second,
		OutputDir:       filepath.Join(dir, "export"),
		ExportFormat:    "json",
		PrettyPrint:     true,
		ExportCompact:   true,
		BatchSize:       100,
	}
}

func writeSource(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestProcess_Idempotent(t *testing.T) {
	importer := NewImporter(testConfig(t))
	lines := sourceLines(sampleLines...)

	first, err := importer.Process(lines)
	require.NoError(t, err)
	second, err := importer.Process(lines)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first.Areas)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second.Areas)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, len(first.Index), len(second.Index))
}

func TestProcess_DiagnosticsOrder(t *testing.T) {
	importer := NewImporter(testConfig(t))

	set, err := importer.Process(sourceLines("北京市 110000", "东城区 110101", "东城区 110101", "坏行"))
	require.NoError(t, err)

	require.Len(t, set.Diagnostics, 2)
	assert.Equal(t, domain.KindMalformedLine, set.Diagnostics[0].Kind)
	assert.Equal(t, domain.KindDuplicateID, set.Diagnostics[1].Kind)
}

func TestProcess_MalformedCode(t *testing.T) {
	_, err := NewImporter(testConfig(t)).Process(sourceLines("北京市 1100000"))
	assert.ErrorIs(t, err, domain.ErrMalformedCode)
}

func TestRun_SavesToSinks(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg.SourceFile, sampleLines...)
	sink := &recordingSink{}

	set, err := NewImporter(cfg, NewExportService(cfg), sink).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.saved, 1)
	assert.Same(t, set, sink.saved[0])
	assert.Len(t, set.Index, len(sampleLines))

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "areas.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "areas.compact.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "diagnostics.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_SinkError(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg.SourceFile, "北京市 110000")
	boom := errors.New("boom")

	_, err := NewImporter(cfg, &recordingSink{err: boom}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "recording")
}

func TestRun_FailOnDiagnostics(t *testing.T) {
	cfg := testConfig(t)
	cfg.FailOnDiagnostics = true
	writeSource(t, cfg.SourceFile, "北京市 110000", "市辖区 110100", "东城区 110101")

	set, err := NewImporter(cfg, NewExportService(cfg)).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrDiagnostics)
	require.NotNil(t, set)
	assert.Len(t, set.Index, 2)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "diagnostics.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "orphan-record")
}

func TestRun_DownloadsMissingSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("浙江省 330000\n杭州市 330100\n上城区 330102\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.SourceURL = srv.URL

	set, err := NewImporter(cfg).Run(context.Background())
	require.NoError(t, err)

	sc, ok := set.Lookup("330102")
	require.True(t, ok)
	assert.Equal(t, "浙江省 杭州市 上城区", sc.FullName)
}

func TestRun_MissingSourceWithoutURL(t *testing.T) {
	_, err := NewImporter(testConfig(t)).Run(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_RelativeSourceInDataDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.SourceFile = "areas.txt"
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	writeSource(t, filepath.Join(cfg.DataDir, "areas.txt"), "北京市 110000", "东城区 110101")

	set, err := NewImporter(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, set.Index, 2)
}

func TestRun_DownloadsIntoDataDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("北京市 110000\n"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.SourceFile = "areas.txt"
	cfg.SourceURL = srv.URL

	_, err := NewImporter(cfg).Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cfg.DataDir, "areas.txt"))
	assert.NoError(t, err)
}
