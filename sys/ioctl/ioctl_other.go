//go:build !linux

package ioctl

import (
	"github.com/pkg/errors"
	"os"
)

// QueryFileSize 查询普通文件的字节大小. 非Linux平台不支持块设备.
func QueryFileSize(fileName string) (size uint64, err error) {
	info, err := os.Stat(fileName)
	if err != nil {
		return 0, err
	}
	if info.Mode()&os.ModeDevice != 0 {
		return 0, errors.Errorf("block device size query is not supported on this platform: %s", fileName)
	}
	return uint64(info.Size()), nil
}
