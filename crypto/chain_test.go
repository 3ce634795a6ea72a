package crypto

import (
	"bytes"
	"context"
	"testing"

	"github.com/kisun-bit/disktriage/model"
)

func highEntropyVolume(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte((i*7 + i/256) % 256)
	}
	return buf
}

func TestChainSignatureWinsBeforeHeuristic(t *testing.T) {
	chain := NewDetectionChain()
	// 低熵卷携带LUKS头: 若启发式被错误地执行, 结论会退化为not_detected.
	data := make([]byte, 16<<20)
	copy(data, []byte{0x4c, 0x55, 0x4b, 0x53, 0xba, 0xbe, 0x01, 0x00})

	f := chain.Run(context.Background(), bytes.NewReader(data), int64(len(data)), false)
	if f.Source != model.SourceSignature {
		t.Fatalf("source = %q, want signature", f.Source)
	}
	if f.Status != model.StatusEncrypted || f.Algorithm != "LUKS" {
		t.Fatalf("finding = %+v, want encrypted LUKS", f)
	}
	if f.Confidence != model.ConfidenceHigh {
		t.Fatalf("confidence = %q, want high", f.Confidence)
	}
}

func TestChainFallsBackToHeuristicOnMiss(t *testing.T) {
	chain := NewDetectionChain()
	data := highEntropyVolume(16 << 20)

	f := chain.Run(context.Background(), bytes.NewReader(data), int64(len(data)), false)
	if f.Source != model.SourceHeuristic {
		t.Fatalf("source = %q, want heuristic", f.Source)
	}
	if f.Status != model.StatusEncrypted {
		t.Fatalf("status = %s, want encrypted (%s)", f.Status, f.Details)
	}
	if f.Confidence != model.ConfidenceLow {
		t.Fatalf("confidence = %q, want low", f.Confidence)
	}
}

func TestChainInventoryModeSkipsHeuristic(t *testing.T) {
	chain := NewDetectionChain()
	chain.SkipHeuristics = true
	// 高熵数据在清单模式下不得触发启发式加密结论.
	data := highEntropyVolume(16 << 20)

	f := chain.Run(context.Background(), bytes.NewReader(data), int64(len(data)), false)
	if f.Status != model.StatusUnknown {
		t.Fatalf("inventory miss without filesystem must be unknown, got %s", f.Status)
	}

	f = chain.Run(context.Background(), bytes.NewReader(data), int64(len(data)), true)
	if f.Status != model.StatusNotDetected {
		t.Fatalf("inventory miss with recognized filesystem must be not_detected, got %s", f.Status)
	}

	// 签名命中在清单模式下照常生效.
	copy(data, []byte("TRUE"))
	f = chain.Run(context.Background(), bytes.NewReader(data), int64(len(data)), false)
	if f.Status != model.StatusEncrypted || f.Algorithm != "VeraCrypt" {
		t.Fatalf("finding = %+v, want encrypted VeraCrypt", f)
	}
}
