//go:build linux

package ioctl

import (
	"golang.org/x/sys/unix"
	"os"
	"runtime"
	"syscall"
	"unsafe"
)

const (
	LinuxIOCTLGetBlockSize   = 0x1260 // BLKGETSIZE, 返回512字节扇区数.
	LinuxIOCTLGetBlockSize64 = 0x80081272
)

// QueryFileSize 查询普通文件或块设备的字节大小.
func QueryFileSize(fileName string) (size uint64, err error) {
	var errno syscall.Errno
	info, err := os.Stat(fileName)
	if err != nil {
		return 0, err
	}
	fm := info.Mode()
	if fm&os.ModeDevice != 0 {
		f, err := os.Open(fileName)
		if err != nil {
			return 0, err
		}
		defer f.Close()

		if runtime.GOARCH == "386" {
			_, _, errno = unix.Syscall(unix.SYS_IOCTL, f.Fd(), LinuxIOCTLGetBlockSize, uintptr(unsafe.Pointer(&size)))
			size <<= 9
		} else {
			_, _, errno = unix.Syscall(unix.SYS_IOCTL, f.Fd(), LinuxIOCTLGetBlockSize64, uintptr(unsafe.Pointer(&size)))
		}
		if errno != 0 {
			return 0, errno
		}
		return size, nil
	}
	return uint64(info.Size()), nil
}
