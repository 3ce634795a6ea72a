package source

import (
	"io"
	"os"

	"github.com/kisun-bit/disktriage/sys/ioctl"
	"github.com/pkg/errors"
)

const (
	KindImage  = "image"
	KindDevice = "device"
)

// Source 只读的分析数据源, 物理块设备或磁盘镜像文件.
// 核心各组件仅通过它暴露的io.ReaderAt读能力访问字节, 绝不写入.
type Source struct {
	path   string
	kind   string
	size   int64
	handle *os.File
}

// Open 以只读方式打开数据源. 块设备大小经由ioctl查询, 普通文件取stat大小.
func Open(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat source %s", path)
	}
	kind := KindImage
	if info.Mode()&os.ModeDevice != 0 {
		kind = KindDevice
	}
	size, err := ioctl.QueryFileSize(path)
	if err != nil {
		return nil, errors.Wrapf(err, "query size of %s", path)
	}
	handle, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open source %s", path)
	}
	return &Source{path: path, kind: kind, size: int64(size), handle: handle}, nil
}

func (s *Source) ReadAt(b []byte, off int64) (int, error) {
	return s.handle.ReadAt(b, off)
}

func (s *Source) Close() error {
	return s.handle.Close()
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) Kind() string {
	return s.kind
}

func (s *Source) Size() int64 {
	return s.size
}

// Section 返回数据源上[off, off+length)区间的只读视图.
func (s *Source) Section(off, length int64) *io.SectionReader {
	return io.NewSectionReader(s.handle, off, length)
}
