package metadata

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"readme.txt":            {Data: []byte("hello")},
		"etc/passwd":            {Data: []byte("root:x:0:0")},
		"etc/ssh/sshd_config":   {Data: []byte("Port 22")},
		"var/log/messages":      {Data: []byte("boot")},
		"var/log/old/messages1": {Data: []byte("older")},
		"home/alice/notes.md":   {Data: []byte("todo")},
	}
}

// faultyWalker 对指定目录注入列举失败.
type faultyWalker struct {
	fsys    fstest.MapFS
	failDir string
}

func (w faultyWalker) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == w.failDir {
		return nil, errors.New("injected corrupt directory")
	}
	return w.fsys.ReadDir(name)
}

func TestScanFullTreeCounts(t *testing.T) {
	res, err := Scan(context.Background(), testFS(), Options{DepthLimit: DepthUnlimited, Workers: 4})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.TotalFiles != 6 {
		t.Fatalf("total files = %d, want 6", res.TotalFiles)
	}
	// etc, etc/ssh, var, var/log, var/log/old, home, home/alice.
	if res.TotalDirectories != 7 {
		t.Fatalf("total directories = %d, want 7", res.TotalDirectories)
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", res.Skipped)
	}
}

func TestScanOrderingIsDeterministic(t *testing.T) {
	first, err := Scan(context.Background(), testFS(), Options{DepthLimit: DepthUnlimited, Workers: 8})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	// 顶层目录必须按名字序排列, 与调度顺序无关.
	wantDirs := []string{"etc", "home", "var"}
	if len(first.Root.Subdirs) != len(wantDirs) {
		t.Fatalf("top-level dirs = %d, want %d", len(first.Root.Subdirs), len(wantDirs))
	}
	for i, want := range wantDirs {
		if first.Root.Subdirs[i].Name != want {
			t.Fatalf("subdir[%d] = %s, want %s", i, first.Root.Subdirs[i].Name, want)
		}
	}
	if first.Root.Files[0].Path != "/readme.txt" {
		t.Fatalf("root file path = %s", first.Root.Files[0].Path)
	}
}

func TestScanDepthLimits(t *testing.T) {
	top, err := Scan(context.Background(), testFS(), Options{DepthLimit: 0, Workers: 2})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if top.TotalFiles != 1 {
		t.Fatalf("depth 0 files = %d, want only root entries", top.TotalFiles)
	}
	if top.TotalDirectories != 3 {
		t.Fatalf("depth 0 dirs = %d, want 3", top.TotalDirectories)
	}
	for _, d := range top.Root.Subdirs {
		if len(d.Files) != 0 || len(d.Subdirs) != 0 {
			t.Fatalf("depth 0 must not descend into %s", d.Name)
		}
	}

	one, err := Scan(context.Background(), testFS(), Options{DepthLimit: 1, Workers: 2})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	// 深度1可见etc/passwd但不可见etc/ssh/sshd_config.
	if one.TotalFiles != 2 {
		t.Fatalf("depth 1 files = %d, want 2", one.TotalFiles)
	}
}

func TestScanIsolatesCorruptDirectory(t *testing.T) {
	w := faultyWalker{fsys: testFS(), failDir: "var/log"}
	res, err := Scan(context.Background(), w, Options{DepthLimit: DepthUnlimited, Workers: 2})
	if err != nil {
		t.Fatalf("a corrupt subdirectory must not fail the scan: %v", err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %+v, want exactly one record", res.Skipped)
	}
	if res.Skipped[0].Path != "/var/log" {
		t.Fatalf("skipped path = %s", res.Skipped[0].Path)
	}
	// 其余子树不受影响.
	if res.TotalFiles != 4 {
		t.Fatalf("total files = %d, want 4", res.TotalFiles)
	}
}

func TestScanRootFailureIsFatal(t *testing.T) {
	w := faultyWalker{fsys: testFS(), failDir: "."}
	if _, err := Scan(context.Background(), w, Options{DepthLimit: DepthUnlimited}); err == nil {
		t.Fatal("unreadable root must fail the scan")
	}
}

func TestScanCancelledMarksSubtrees(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Scan(ctx, testFS(), Options{DepthLimit: DepthUnlimited, Workers: 2})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	// 顶层列举已完成, 子树扫描被取消并留下记录.
	if len(res.Skipped) == 0 {
		t.Fatal("cancelled subtree scans must leave skip records")
	}
	for _, sk := range res.Skipped {
		if sk.Reason != "scan cancelled" {
			t.Fatalf("unexpected skip reason: %s", sk.Reason)
		}
	}
}
