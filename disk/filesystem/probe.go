// Package filesystem 依据卷头部的magic bytes对文件系统分类.
package filesystem

import (
	"io"
)

const probeHeaderSize = 2 << 10

// Probe 探测卷的文件系统类型.
// 探测永不失败: 头部不可读或无任何magic命中时一律返回 Unknown,
// 由上层将其视作"无已识别结构"继续走加密检测.
func Probe(r io.ReaderAt) Type {
	compatibleHeader := make([]byte, probeHeaderSize)
	if _, err := r.ReadAt(compatibleHeader, 0); err != nil {
		return Unknown
	}
	extSB := compatibleHeader[1024:]
	if string(extSB[56:56+len(EXTMagic)]) == EXTMagic {
		return EXT
	}
	if string(compatibleHeader[0x20:0x20+len(OracleDiskMagic)]) == OracleDiskMagic {
		return OracleASM
	}
	if string(compatibleHeader[80:80+len(FAT32Magic)]) == FAT32Magic {
		return FAT
	}
	if string(compatibleHeader[:len(XFSMagic)]) == XFSMagic {
		return XFS
	}
	if string(compatibleHeader[:len(NTFSMagic)]) == NTFSMagic {
		return NTFS
	}
	if string(compatibleHeader[:len(BTRFSMagic)]) == BTRFSMagic {
		return BTRFS
	}
	if string(compatibleHeader[:len(ZFSMagic)]) == ZFSMagic {
		return ZFS
	}
	if string(compatibleHeader[:len(JFSMagic)]) == JFSMagic {
		return JFS
	}
	if string(compatibleHeader[:len(APFSMagic)]) == APFSMagic {
		return APFS
	}
	return Unknown
}
