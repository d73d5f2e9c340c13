package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// TestKeyFilename tests the deterministic output naming scheme.
func TestKeyFilename(t *testing.T) {
	k := Key{
		Input:       "tas_mon_CESM2_historical_r1i1p1f1_g025",
		Window:      &domain.TimeWindow{Start: "1995", End: "2014"},
		Season:      domain.SeasonJJA,
		Aggregation: domain.AggClim,
		Region:      domain.NamedRegions("CEU", "MED"),
	}
	want := "tas_mon_CESM2_historical_r1i1p1f1_g025_1995-2014_JJA_CLIM_CEU-MED.nc"
	if got := k.Filename(); got != want {
		t.Errorf("filename:\n got %s\nwant %s", got, want)
	}
}

// TestKeyFilename_Defaults tests the None/ANN placeholders for absent
// parameters.
func TestKeyFilename_Defaults(t *testing.T) {
	k := Key{Input: "tas_input", Region: domain.GlobalRegion()}
	want := "tas_input_None-None_ANN_None_GLOBAL.nc"
	if got := k.Filename(); got != want {
		t.Errorf("filename: got %s, want %s", got, want)
	}
}

// TestKeyFilename_MaskOcean tests that the land-only variant of a request
// gets its own entry instead of colliding with the unmasked one.
func TestKeyFilename_MaskOcean(t *testing.T) {
	k := Key{Input: "tas_input", Region: domain.GlobalRegion()}
	masked := k
	masked.MaskOcean = true

	want := "tas_input_None-None_ANN_None_GLOBAL_masked.nc"
	if got := masked.Filename(); got != want {
		t.Errorf("filename: got %s, want %s", got, want)
	}
	if masked.Filename() == k.Filename() {
		t.Error("masked and unmasked keys map to the same file")
	}
}

func TestInputIdentity(t *testing.T) {
	if got := InputIdentity("/data/cmip/tas_mon_CESM2.nc"); got != "tas_mon_CESM2" {
		t.Errorf("InputIdentity: got %q", got)
	}
}

// TestStoreWrite_PublishesAtomically tests that an entry only appears once
// its writer has finished, via the temp-and-rename protocol.
func TestStoreWrite_PublishesAtomically(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	k := Key{Input: "tas_input", Region: domain.GlobalRegion()}
	path := s.Path(k)

	err := s.Write(path, func(tmp string) error {
		if s.Exists(k) {
			t.Error("entry visible before the writer finished")
		}
		return os.WriteFile(tmp, []byte("payload"), 0o644)
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !s.Exists(k) {
		t.Fatal("entry missing after write")
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "payload" {
		t.Errorf("entry content: %q (%v)", data, err)
	}
}

// TestStoreWrite_FailedWriterLeavesNothing tests cleanup on writer failure.
func TestStoreWrite_FailedWriterLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	k := Key{Input: "tas_input", Region: domain.GlobalRegion()}

	writerErr := errors.New("encoding failed")
	if err := s.Write(s.Path(k), func(tmp string) error { return writerErr }); !errors.Is(err, writerErr) {
		t.Fatalf("expected writer error, got %v", err)
	}
	if s.Exists(k) {
		t.Error("failed write published an entry")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

// TestStoreWrite_CreatesDirectory tests that a missing store directory is
// created on first write.
func TestStoreWrite_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "diagnostics")
	s := NewStore(dir)
	k := Key{Input: "tas_input", Region: domain.GlobalRegion()}

	err := s.Write(s.Path(k), func(tmp string) error {
		return os.WriteFile(tmp, []byte("x"), 0o644)
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !s.Exists(k) {
		t.Error("entry missing after write into created directory")
	}
}
