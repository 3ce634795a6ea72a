package filesystem

import (
	"bytes"
	"testing"
)

func header(at int, magic string) []byte {
	buf := make([]byte, probeHeaderSize)
	copy(buf[at:], magic)
	return buf
}

func TestProbeMagics(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Type
	}{
		{"ntfs", header(0, NTFSMagic), NTFS},
		{"xfs", header(0, XFSMagic), XFS},
		{"btrfs", header(0, BTRFSMagic), BTRFS},
		{"zfs", header(0, ZFSMagic), ZFS},
		{"jfs", header(0, JFSMagic), JFS},
		{"apfs", header(0, APFSMagic), APFS},
		{"ext", header(1024+56, EXTMagic), EXT},
		{"fat32", header(80, FAT32Magic), FAT},
		{"oracle asm", header(0x20, OracleDiskMagic), OracleASM},
		{"blank", make([]byte, probeHeaderSize), Unknown},
		{"random text", header(0, "hello world"), Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Probe(bytes.NewReader(tc.data)); got != tc.want {
				t.Fatalf("Probe() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestProbeUnreadableHeaderIsUnknown(t *testing.T) {
	// 头部不足2KiB的卷按Unknown处理, 探测永不失败.
	if got := Probe(bytes.NewReader(make([]byte, 128))); got != Unknown {
		t.Fatalf("Probe() = %s, want unknown", got)
	}
}

func TestRecognized(t *testing.T) {
	if Unknown.Recognized() {
		t.Fatal("unknown type must not count as recognized")
	}
	if !NTFS.Recognized() {
		t.Fatal("ntfs must count as recognized")
	}
}
