package filesystem

// Type 已识别的文件系统类型.
type Type string

func (t Type) String() string {
	return string(t)
}

// Recognized 若探测到了具体文件系统, 则返回true.
// 已识别的文件系统结构是"整卷未加密"的直接证据, 加密启发式据此压制误报.
func (t Type) Recognized() bool {
	return t != Unknown && t != ""
}

const (
	Unknown   Type = "unknown"
	NTFS      Type = "ntfs"
	FAT       Type = "fat"
	EXT       Type = "ext2/3/4" // 无法从superblock域可靠区分这三种, 参考:https://unix.stackexchange.com/questions/123009
	XFS       Type = "xfs"
	OracleASM Type = "oracle-asm"
	BTRFS     Type = "btrfs"
	ZFS       Type = "zfs"
	JFS       Type = "jfs"
	APFS      Type = "apfs"
)

const (
	EXTMagic        = "\x53\xEF"
	FAT32Magic      = "\xEB\x3C\x90\x4D\x4B\x44\x4F\x53"
	NTFSMagic       = "\xEB\x52\x90\x4E\x54\x46\x53"
	XFSMagic        = "\x58\x46\x53\x42"
	BTRFSMagic      = "\x5F\xB7\xE1\x82"
	ZFSMagic        = "\x89\xc3\xd9\xd1\xf8\xa0\xe2\xe6"
	JFSMagic        = "\x01\xf5\xe1\xff"
	APFSMagic       = "\x45\xd2\xe1\xa9\xb7\xf6\xa8\xc6"
	OracleDiskMagic = "\x4f\x52\x43\x4c\x44\x49\x53\x4b"
)
