// Package metadata 实现卷内文件系统的元数据扫描.
// 扫描为只读操作, 单条目失败被隔离记录, 不中断整卷扫描.
package metadata

import (
	"io"
	"io/fs"

	"github.com/kisun-bit/disktriage/disk/filesystem"
	"github.com/pkg/errors"

	xfslib "github.com/masahiro331/go-xfs-filesystem/xfs"
)

// ErrUnsupportedFilesystem 该卷的文件系统尚无对应的遍历实现.
var ErrUnsupportedFilesystem = errors.New("unsupported filesystem for metadata scan")

// Walker 目录遍历接口, 与io/fs的ReadDirFS对齐,
// 便于用fstest.MapFS等标准实现充当测试替身.
type Walker interface {
	ReadDir(name string) ([]fs.DirEntry, error)
}

// XFSWalker 基于xfs解析库的只读遍历器.
type XFSWalker struct {
	fsys *xfslib.FileSystem
}

// NewXFSWalker 在卷的字节区间上打开xfs文件系统.
func NewXFSWalker(section *io.SectionReader) (*XFSWalker, error) {
	fsys, err := xfslib.NewFS(*section, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open xfs filesystem")
	}
	return &XFSWalker{fsys: fsys}, nil
}

func (w *XFSWalker) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == "" || name == "/" {
		name = "."
	}
	return w.fsys.ReadDir(name)
}

func (w *XFSWalker) Close() error {
	return w.fsys.Close()
}

// OpenWalker 按探测出的文件系统类型构造遍历器.
// 未支持的类型返回 ErrUnsupportedFilesystem, 由上层记录并跳过元数据扫描.
func OpenWalker(fsType filesystem.Type, section *io.SectionReader) (Walker, func() error, error) {
	switch fsType {
	case filesystem.XFS:
		w, err := NewXFSWalker(section)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Close, nil
	default:
		return nil, nil, errors.Wrapf(ErrUnsupportedFilesystem, "filesystem %s", fsType)
	}
}
