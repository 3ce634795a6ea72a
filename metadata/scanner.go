package metadata

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/kisun-bit/disktriage/model"
	"github.com/kisun-bit/disktriage/util/basic"
	"github.com/kisun-bit/disktriage/util/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

// DepthUnlimited 不限制目录递归深度.
const DepthUnlimited = -1

// Options 元数据扫描选项.
type Options struct {
	// DepthLimit 自根目录起的递归深度. 0仅扫描根目录一层, DepthUnlimited不限.
	DepthLimit int
	// Workers 顶层子目录的并发扫描数, 非正值按1处理.
	Workers int
}

// Scan 扫描整卷目录树.
// 根目录列举失败视作扫描失败; 更深层的任何单条目失败只产生一条
// 跳过记录, 扫描继续. 结果中条目按名字排序, 与并发调度顺序无关.
func Scan(ctx context.Context, w Walker, opts Options) (*model.ScanResult, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	s := &scanState{walker: w, depthLimit: opts.DepthLimit}
	root := &model.DirectoryNode{Name: "/", Path: "/"}

	entries, err := w.ReadDir(".")
	if err != nil {
		return nil, errors.Wrap(err, "list filesystem root")
	}
	sortEntries(entries)

	// 仅在顶层子目录粒度做并发扇出, 子树内部串行,
	// 递归向池内提交任务会在池占满时相互等待.
	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "init metadata scan pool")
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, entry := range entries {
		entry := entry
		entryPath := path.Join("/", entry.Name())
		if !entry.IsDir() {
			s.recordFile(root, entry, entryPath)
			continue
		}
		node := s.recordDir(root, entry, entryPath)
		if opts.DepthLimit == 0 {
			continue
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			s.scanSubtree(ctx, node, entry.Name(), 1)
		})
		if submitErr != nil {
			wg.Done()
			s.skip(entryPath, submitErr.Error())
		}
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return &model.ScanResult{
		Root:             root,
		TotalFiles:       s.files,
		TotalDirectories: s.dirs,
		Skipped:          s.skipped,
	}, nil
}

type scanState struct {
	walker     Walker
	depthLimit int

	mu      sync.Mutex
	files   int
	dirs    int
	skipped []model.SkippedEntry
}

// scanSubtree 串行递归扫描一个子树. fsPath为Walker使用的io/fs路径.
func (s *scanState) scanSubtree(ctx context.Context, node *model.DirectoryNode, fsPath string, depth int) {
	if basic.Cancelled(ctx) {
		s.skip(node.Path, "scan cancelled")
		return
	}

	entries, err := s.walker.ReadDir(fsPath)
	if err != nil {
		s.skip(node.Path, errors.Wrap(err, "list directory").Error())
		return
	}
	sortEntries(entries)

	for _, entry := range entries {
		entryPath := path.Join(node.Path, entry.Name())
		if !entry.IsDir() {
			s.recordFile(node, entry, entryPath)
			continue
		}
		child := s.recordDir(node, entry, entryPath)
		if s.depthLimit != DepthUnlimited && depth >= s.depthLimit {
			continue
		}
		s.scanSubtree(ctx, child, path.Join(fsPath, entry.Name()), depth+1)
	}
}

func (s *scanState) recordFile(parent *model.DirectoryNode, entry fs.DirEntry, entryPath string) {
	fe, err := fileEntryFrom(entry, entryPath)
	if err != nil {
		s.skip(entryPath, err.Error())
		return
	}
	s.mu.Lock()
	parent.Files = append(parent.Files, fe)
	s.files++
	s.mu.Unlock()
}

func (s *scanState) recordDir(parent *model.DirectoryNode, entry fs.DirEntry, entryPath string) *model.DirectoryNode {
	node := &model.DirectoryNode{Name: entry.Name(), Path: entryPath}
	s.mu.Lock()
	parent.Subdirs = append(parent.Subdirs, node)
	s.dirs++
	s.mu.Unlock()
	return node
}

func (s *scanState) skip(entryPath, reason string) {
	logger.Warnf("metadata scan skipped %s: %s", entryPath, reason)
	s.mu.Lock()
	s.skipped = append(s.skipped, model.SkippedEntry{Path: entryPath, Reason: reason})
	s.mu.Unlock()
}

// fileEntryFrom 将目录项转换为元数据记录. Info失败时该条目被跳过.
func fileEntryFrom(entry fs.DirEntry, entryPath string) (model.FileEntry, error) {
	info, err := entry.Info()
	if err != nil {
		return model.FileEntry{}, errors.Wrap(err, "stat entry")
	}
	return model.FileEntry{
		Name:       entry.Name(),
		Path:       entryPath,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
		Attributes: info.Mode().String(),
		IsDir:      entry.IsDir(),
	}, nil
}

func sortEntries(entries []fs.DirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
}
