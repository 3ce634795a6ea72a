// Package table 解析MBR/GPT分区表, 为分析器提供按分区表顺序排列的卷清单.
// 解析只依赖数据源的io.ReaderAt读能力, 不持有设备句柄.
package table

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Volume 分区表中的一个卷(分区).
type Volume struct {
	Index    int    // 分区表项序号, 从1开始; 逻辑分区从5开始.
	Offset   int64  // 卷起始字节偏移(绝对).
	Length   int64  // 卷字节长度.
	TypeDesc string // 分区类型描述.
	Name     string // GPT分区名(MBR无此字段).
	Bootable bool
	Logical  bool
}

// Repr 返回卷的简短描述.
func (v Volume) Repr() string {
	return fmt.Sprintf("VOL#%d OFF#%d SIZE#%s (%s)",
		v.Index, v.Offset, humanize.IBytes(uint64(v.Length)), v.TypeDesc)
}

// Enumerate 解析数据源的分区表.
// 返回的卷顺序即分区表项顺序, 是报告输出顺序的唯一依据.
// 无有效分区表时返回 SchemeRaw 及一个覆盖整个数据源的卷;
// LBA0不可读则返回错误(枚举失败是唯一致命错误类).
func Enumerate(r io.ReaderAt, size int64) (Scheme, []Volume, error) {
	br, err := parseMBR(r, 0)
	if err != nil {
		if errors.Is(err, errInvalidBootRecord) {
			return SchemeRaw, wholeSourceVolume(size), nil
		}
		return SchemeRaw, nil, errors.Wrap(err, "enumerate volumes")
	}

	if br.hasProtectivePart() {
		vols, err := enumerateGPT(r)
		if err != nil {
			return SchemeGPT, nil, errors.Wrap(err, "enumerate gpt volumes")
		}
		return SchemeGPT, vols, nil
	}

	vols, err := enumerateMBR(r, br)
	if err != nil {
		return SchemeMBR, nil, errors.Wrap(err, "enumerate mbr volumes")
	}
	if len(vols) == 0 {
		// 带引导签名但分区表为空的裸卷镜像(例如单文件系统镜像)按整盘处理.
		return SchemeRaw, wholeSourceVolume(size), nil
	}
	return SchemeMBR, vols, nil
}

func wholeSourceVolume(size int64) []Volume {
	return []Volume{{Index: 1, Offset: 0, Length: size, TypeDesc: "Whole Source"}}
}
