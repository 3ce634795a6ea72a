package table

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
)

// gptHeader 位于GPT磁盘的LBA1数据.
// 见 https://en.wikipedia.org/wiki/GUID_Partition_Table.
type gptHeader struct {
	Signature             []byte `struc:"[8]byte"`       // 0x00, 8, "EFI PART".
	Revision              uint32 `struc:"uint32,little"` // 0x08, 4.
	HeaderSize            uint32 `struc:"uint32,little"` // 0x0C, 4.
	HeaderCRC32           uint32 `struc:"uint32,little"` // 0x10, 4.
	Reserved              []byte `struc:"[4]byte"`       // 0x14, 4.
	CurrentLBA            int64  `struc:"int64,little"`  // 0x18, 8.
	BackupLBA             int64  `struc:"int64,little"`  // 0x20, 8.
	FirstUsableLBA        int64  `struc:"int64,little"`  // 0x28, 8.
	LastUsableLBA         int64  `struc:"int64,little"`  // 0x30, 8.
	GUID                  []byte `struc:"[16]byte"`      // 0x38, 16, mixed endian.
	EntriesStartLBA       int64  `struc:"int64,little"`  // 0x48, 8, 分区表项起始LBA(通常为2).
	EntriesCount          int    `struc:"int32,little"`  // 0x50, 4.
	EntrySize             int    `struc:"int32,little"`  // 0x54, 4.
	EntriesCRC32          uint32 `struc:"uint32,little"` // 0x58, 4.
}

func (gh *gptHeader) isValid() bool {
	return string(gh.Signature) == GPTSignature
}

// gptPartitionEntry GPT磁盘的一项分区表项数据.
type gptPartitionEntry struct {
	PartTypeGUID  []byte   `struc:"[16]byte"`          // 0x00, 16, mixed endian.
	UniqGUID      []byte   `struc:"[16]byte"`          // 0x10, 16, mixed endian.
	FirstLBA      int64    `struc:"int64,little"`      // 0x20, 8, 起始LBA(包含).
	LastLBA       int64    `struc:"int64,little"`      // 0x28, 8, 结束LBA(包含).
	AttrFlags     []byte   `struc:"[8]byte"`           // 0x30, 8.
	PartitionName []uint16 `struc:"[36]uint16,little"` // 0x38, 72, 36个UTF-16LE代码单元.
}

func (pe *gptPartitionEntry) typeGUID() string {
	return guidToString(pe.PartTypeGUID)
}

func (pe *gptPartitionEntry) isEmpty() bool {
	return pe.typeGUID() == GUIDBlankEmptyPart
}

func (pe *gptPartitionEntry) isBootable() bool {
	return funk.InStrings([]string{GUIDBIOSBoot, GUIDEFISystem, GUIDAppleBoot}, pe.typeGUID())
}

func (pe *gptPartitionEntry) decodedName() string {
	s := string(utf16.Decode(pe.PartitionName))
	return strings.ReplaceAll(s, "\u0000", "")
}

func (pe *gptPartitionEntry) typeDesc() string {
	v, ok := GPTPartitionTypeDesc[pe.typeGUID()]
	if !ok {
		return "unknown"
	}
	return v
}

// enumerateGPT 解析GPT头与分区表项数组, 返回非空分区.
func enumerateGPT(rd io.ReaderAt) ([]Volume, error) {
	bin := make([]byte, SectorSize)
	if _, err := rd.ReadAt(bin, SectorSize); err != nil {
		return nil, errors.Wrap(err, "read gpt header")
	}
	header := new(gptHeader)
	if err := struc.Unpack(bytes.NewReader(bin), header); err != nil {
		return nil, errors.Wrap(err, "unpack gpt header")
	}
	if !header.isValid() {
		return nil, errors.Errorf("invalid gpt signature %q", string(header.Signature))
	}

	entryCount := header.EntriesCount
	if entryCount <= 0 || entryCount > GPTPartitionEntryCnt {
		entryCount = GPTPartitionEntryCnt
	}
	entrySize := header.EntrySize
	if entrySize <= 0 {
		entrySize = GPTPartitionEntrySize
	}

	entriesBin := make([]byte, entryCount*entrySize)
	if _, err := rd.ReadAt(entriesBin, header.EntriesStartLBA*SectorSize); err != nil {
		return nil, errors.Wrap(err, "read gpt partition entries")
	}

	vols := make([]Volume, 0)
	for i := 0; i < entryCount; i++ {
		entry := new(gptPartitionEntry)
		raw := entriesBin[i*entrySize : (i+1)*entrySize]
		if err := struc.Unpack(bytes.NewReader(raw), entry); err != nil {
			return nil, errors.Wrapf(err, "unpack gpt partition entry %d", i+1)
		}
		if entry.isEmpty() || entry.LastLBA < entry.FirstLBA {
			continue
		}
		vols = append(vols, Volume{
			Index:    i + 1,
			Offset:   entry.FirstLBA * SectorSize,
			Length:   (entry.LastLBA - entry.FirstLBA + 1) * SectorSize,
			TypeDesc: entry.typeDesc(),
			Name:     entry.decodedName(),
			Bootable: entry.isBootable(),
		})
	}
	return vols, nil
}

// guidToString 将原始GUID转换为mixed endian字符串形式.
// byteGuid 的长度只能等于16, 否则将返回空串.
func guidToString(byteGuid []byte) string {
	const hexChars = "0123456789ABCDEF"
	if len(byteGuid) != 16 {
		return ""
	}
	byteOrder := [...]int{3, 2, 1, 0, -1, 5, 4, -1, 7, 6, -1, 8, 9, -1, 10, 11, 12, 13, 14, 15}
	s := make([]byte, 0, 36)
	for _, i := range byteOrder {
		if i == -1 {
			s = append(s, '-')
			continue
		}
		s = append(s, hexChars[byteGuid[i]>>4], hexChars[byteGuid[i]&0x0F])
	}
	return string(s)
}
