package heuristic

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/kisun-bit/disktriage/model"
	"github.com/pkg/errors"
)

// fullDiversity 重复0..255的确定性数据, 每区间熵恰为8比特/字节.
func fullDiversity(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i % 256)
	}
	return buf
}

func repeated(b byte, size int) []byte {
	return bytes.Repeat([]byte{b}, size)
}

type erroringReader struct{}

func (erroringReader) ReadAt([]byte, int64) (int, error) {
	return 0, errors.New("injected read error")
}

func classify(t *testing.T, data []byte, fsRecognized bool) model.Finding {
	t.Helper()
	cfg := DefaultConfig()
	return Classify(context.Background(), bytes.NewReader(data), int64(len(data)), fsRecognized, cfg)
}

func TestClassifyTooSmallIsUnknown(t *testing.T) {
	f := classify(t, fullDiversity(1024), false)
	if f.Status != model.StatusUnknown {
		t.Fatalf("undersized volume must be unknown, got %s", f.Status)
	}
	if len(f.Evidence) != 0 {
		t.Fatal("no sampling happens below the minimum sample size")
	}
}

func TestClassifyReadErrorIsUnknown(t *testing.T) {
	cfg := DefaultConfig()
	f := Classify(context.Background(), erroringReader{}, 16<<20, false, cfg)
	if f.Status != model.StatusUnknown {
		t.Fatalf("read error must yield unknown, got %s", f.Status)
	}
}

func TestClassifyHighEntropyIsEncryptedLowConfidence(t *testing.T) {
	f := classify(t, fullDiversity(16<<20), false)
	if f.Status != model.StatusEncrypted {
		t.Fatalf("uniform full-range data must classify encrypted, got %s (%s)", f.Status, f.Details)
	}
	if f.Confidence != model.ConfidenceLow {
		t.Fatalf("heuristic verdicts carry low confidence, got %q", f.Confidence)
	}
	if f.Source != model.SourceHeuristic {
		t.Fatalf("source = %q, want heuristic", f.Source)
	}
	if len(f.Evidence) != 3 {
		t.Fatalf("expected 3 region evidences, got %d", len(f.Evidence))
	}
	for _, ev := range f.Evidence {
		if ev.Entropy < 7.99 {
			t.Fatalf("region %s entropy %.3f, want ~8.0", ev.Region, ev.Entropy)
		}
		if ev.Digest == "" {
			t.Fatalf("region %s evidence must carry a digest", ev.Region)
		}
	}
}

func TestClassifyRecognizedFilesystemNeverEncrypted(t *testing.T) {
	// 高熵数据但上游已识别出文件系统结构.
	f := classify(t, fullDiversity(16<<20), true)
	if f.Status == model.StatusEncrypted {
		t.Fatal("recognized filesystem must override high entropy")
	}
	if f.Status != model.StatusNotDetected {
		t.Fatalf("status = %s, want not_detected", f.Status)
	}
}

func TestClassifyZeroFillIsNotDetected(t *testing.T) {
	f := classify(t, repeated(0x00, 16<<20), false)
	if f.Status != model.StatusNotDetected {
		t.Fatalf("zero fill must be not_detected, got %s (%s)", f.Status, f.Details)
	}
}

func TestClassifySingleByteFillIsNotDetected(t *testing.T) {
	f := classify(t, repeated(0xA5, 16<<20), false)
	if f.Status != model.StatusNotDetected {
		t.Fatalf("single byte fill must be not_detected, got %s (%s)", f.Status, f.Details)
	}
}

func TestClassifyMidEntropyIsUnknown(t *testing.T) {
	// 可打印ASCII文本: 熵介于上下阈值之间, 必须落Unknown而非Encrypted.
	text := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog 0123456789. "), 300000)
	f := classify(t, text, false)
	if f.Status != model.StatusUnknown {
		t.Fatalf("mid-range entropy must be unknown, got %s (%s)", f.Status, f.Details)
	}
}

func TestClassifyCancelledIsUnknown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := DefaultConfig()
	data := fullDiversity(16 << 20)
	f := Classify(ctx, bytes.NewReader(data), int64(len(data)), false, cfg)
	if f.Status != model.StatusUnknown {
		t.Fatalf("cancelled classification must be unknown, got %s", f.Status)
	}
}

func TestClassifySmallVolumeOverlappingRegions(t *testing.T) {
	// 卷大小介于最小采样量与3倍窗口之间, 区间允许重叠但仍需3份证据.
	f := classify(t, fullDiversity(8<<10), false)
	if len(f.Evidence) != 3 {
		t.Fatalf("expected 3 region evidences, got %d", len(f.Evidence))
	}
	if f.Status != model.StatusEncrypted {
		t.Fatalf("uniform data must classify encrypted, got %s (%s)", f.Status, f.Details)
	}
}

func TestLoadConfigOverridesAndValidates(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"entropy_threshold_high": 7.5, "window_size": 4096}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.EntropyHigh != 7.5 || cfg.WindowSize != 4096 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.EntropyLow != DefaultConfig().EntropyLow {
		t.Fatal("unset keys must keep defaults")
	}

	if _, err = LoadConfig([]byte(`not json`)); err == nil {
		t.Fatal("invalid JSON must be rejected")
	}
	if _, err = LoadConfig([]byte(`{"entropy_threshold_high": 0.5}`)); err == nil {
		t.Fatal("inverted thresholds must be rejected")
	}
	if _, err = LoadConfig([]byte(`{"window_size": -1}`)); err == nil {
		t.Fatal("non-positive window must be rejected")
	}
}

func TestSampleRegionsCoverStartMiddleEnd(t *testing.T) {
	regions := sampleRegions(1<<20, 64<<10)
	if len(regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(regions))
	}
	if regions[0].offset != 0 {
		t.Fatalf("start region offset = %d", regions[0].offset)
	}
	if regions[2].offset+int64(regions[2].length) != 1<<20 {
		t.Fatal("end region must touch the end of the volume")
	}
	if regions[1].offset <= regions[0].offset || regions[1].offset >= regions[2].offset {
		t.Fatalf("middle region misplaced: %d", regions[1].offset)
	}
}

var _ io.ReaderAt = erroringReader{}
