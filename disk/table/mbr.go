package table

import (
	"bytes"
	"io"

	"github.com/kisun-bit/disktriage/util/logger"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var errInvalidBootRecord = errors.New("invalid boot signature for mbr")

// mbrRecord MBR/EBR的LBA结构.
// 见 https://en.wikipedia.org/wiki/Master_boot_record 现代MBR结构节.
type mbrRecord struct {
	Offset        int64                                `struc:"skip"`      // 此记录的绝对字节偏移.
	BootLoader    []byte                               `struc:"[446]byte"` // 0x0000, 446.
	Entries       [MBRPartitionEntryCnt]mbrPartitionEntry                  // 0x01BE, 64, 所有多字节字段均为小端序.
	BootSignature [2]byte                              `struc:"[2]byte"`   // 0x01FE, 2.
}

// mbrPartitionEntry MBR分区表项.
type mbrPartitionEntry struct {
	BootIndicator    byte
	StartingHead     byte
	StartingSector   byte // bit0-5表示起始扇区, bit6-7为起始柱面高位.
	StartingCylinder byte
	PartitionType    MBRPartitionType `struc:"byte"`
	EndingHead       byte
	EndingSector     byte
	EndingCylinder   byte
	StartingLBA      int64 `struc:"uint32,little"` // 0x08, 4, 起始LBA(包含).
	TotalSectors     int64 `struc:"uint32,little"` // 0x0C, 4, 总扇区数.
}

func (pe mbrPartitionEntry) isEmpty() bool {
	return pe.PartitionType == PartEmpty
}

func (pe mbrPartitionEntry) isExtend() bool {
	return bytes.IndexByte(mbrExtendPartTypes, pe.PartitionType) >= 0
}

func (pe mbrPartitionEntry) isBootable() bool {
	return pe.BootIndicator == MBRPartitionBootable
}

func (pe mbrPartitionEntry) typeDesc() string {
	v, ok := MBRPartitionTypeDesc[pe.PartitionType]
	if !ok {
		return "unknown"
	}
	return v
}

func (r mbrRecord) hasProtectivePart() bool {
	for _, pe := range r.Entries {
		if pe.PartitionType == PartEFIGPTProtective {
			return true
		}
	}
	return false
}

// parseMBR 解析start偏移处的一个BR记录.
func parseMBR(rd io.ReaderAt, start int64) (rec mbrRecord, err error) {
	bin := make([]byte, SectorSize)
	if _, err = rd.ReadAt(bin, start); err != nil {
		return rec, errors.Wrapf(err, "read boot record at %d", start)
	}
	if err = struc.Unpack(bytes.NewReader(bin), &rec); err != nil {
		return rec, errors.Wrap(err, "unpack boot record")
	}
	if rec.BootSignature[0] != MBRSignature510 || rec.BootSignature[1] != MBRSignature511 {
		return rec, errInvalidBootRecord
	}
	rec.Offset = start
	return rec, nil
}

// enumerateMBR 收集主分区及EBR链上的逻辑分区.
// 主分区索引为其分区表项序号1-4, 逻辑分区从5开始顺延.
func enumerateMBR(rd io.ReaderAt, br mbrRecord) ([]Volume, error) {
	vols := make([]Volume, 0)
	for i, pe := range br.Entries {
		if pe.isEmpty() || pe.isExtend() {
			continue
		}
		if pe.StartingLBA <= 0 || pe.TotalSectors <= 0 {
			continue
		}
		vols = append(vols, Volume{
			Index:    i + 1,
			Offset:   pe.StartingLBA * SectorSize,
			Length:   pe.TotalSectors * SectorSize,
			TypeDesc: pe.typeDesc(),
			Bootable: pe.isBootable(),
		})
	}

	for _, pe := range br.Entries {
		if !pe.isExtend() {
			continue
		}
		lvols, err := enumerateEBRChain(rd, pe.StartingLBA)
		if err != nil {
			return nil, err
		}
		vols = append(vols, lvols...)
	}
	return vols, nil
}

// enumerateEBRChain 沿EBR链收集逻辑分区.
// EBR第1表项的StartingLBA是相对本EBR的偏移, 第2表项指向下一个EBR(相对扩展分区起始).
// 链上单个EBR解析失败只截断该链, 不影响已收集的分区.
func enumerateEBRChain(rd io.ReaderAt, extendStartLBA int64) ([]Volume, error) {
	vols := make([]Volume, 0)
	ebrLBA := extendStartLBA
	for lpi := 1; ; lpi++ {
		ebr, err := parseMBR(rd, ebrLBA*SectorSize)
		if err != nil {
			logger.Warnf("EBR can not be parsed at LBA(%v): %v", ebrLBA, err)
			break
		}
		data := ebr.Entries[MBRDataEntryIndex]
		next := ebr.Entries[MBREBRChainEntryIndex]
		if !data.isEmpty() && data.TotalSectors > 0 {
			vols = append(vols, Volume{
				Index:    lpi + MBRPartitionEntryCnt,
				Offset:   (ebrLBA + data.StartingLBA) * SectorSize,
				Length:   data.TotalSectors * SectorSize,
				TypeDesc: data.typeDesc(),
				Bootable: data.isBootable(),
				Logical:  true,
			})
		}
		if !next.isExtend() || next.StartingLBA == 0 {
			break
		}
		ebrLBA = extendStartLBA + next.StartingLBA
	}
	return vols, nil
}
