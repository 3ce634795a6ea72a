// Package heuristic 实现基于熵采样的加密兜底判定.
// 仅在签名目录未给出结论时介入, 且永不单独产生高置信结论.
package heuristic

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/kisun-bit/disktriage/model"
	"github.com/kisun-bit/disktriage/util/basic"
	"github.com/kisun-bit/disktriage/util/logger"
)

// regionStats 单个采样区间的统计量.
type regionStats struct {
	evidence  model.RegionEvidence
	zeroFrac  float64
	topFrac   float64 // 最高频字节占比.
	diversity float64
}

// Classify 对卷做三区间熵采样并给出三态结论.
//
// 判定规则(顺序即优先级):
//  1. 卷小于最小采样量 -> Unknown, 样本不足不强行下结论;
//  2. 任一区间读取失败 -> Unknown, 数据不可达不意味着加密;
//  3. 卷带有可识别文件系统 -> 至多NotDetected, 绝不判Encrypted;
//  4. 三区间熵全部越过高阈值且字节多样性达标 -> Encrypted(低置信);
//  5. 零填充/单字节重复/聚合熵低于下阈值 -> NotDetected;
//  6. 其余一律Unknown.
func Classify(ctx context.Context, r io.ReaderAt, size int64, fsRecognized bool, cfg Config) model.Finding {
	if size < cfg.MinSampleSize {
		return model.Finding{
			Status:  model.StatusUnknown,
			Source:  model.SourceHeuristic,
			Details: fmt.Sprintf("volume too small to sample: %d bytes < %d minimum", size, cfg.MinSampleSize),
		}
	}

	window := cfg.WindowSize
	if window > size {
		window = size
	}
	regions := sampleRegions(size, window)

	stats := make([]regionStats, 0, len(regions))
	for _, reg := range regions {
		if basic.Cancelled(ctx) {
			return model.Finding{
				Status:  model.StatusUnknown,
				Source:  model.SourceHeuristic,
				Details: "classification cancelled",
			}
		}
		buf := make([]byte, reg.length)
		n, err := r.ReadAt(buf, reg.offset)
		if err != nil && err != io.EOF || n == 0 {
			logger.Debugf("heuristic sample %s at %d unreadable: %v", reg.name, reg.offset, err)
			return model.Finding{
				Status:  model.StatusUnknown,
				Source:  model.SourceHeuristic,
				Details: fmt.Sprintf("sample region %s unreadable", reg.name),
			}
		}
		stats = append(stats, analyzeRegion(reg, buf[:n]))
	}

	finding := decide(stats, fsRecognized, cfg)
	for _, st := range stats {
		finding.Evidence = append(finding.Evidence, st.evidence)
	}
	return finding
}

type region struct {
	name   string
	offset int64
	length int
}

// sampleRegions 取卷首/卷中/卷尾三个采样区间. 小卷允许区间重叠.
func sampleRegions(size, window int64) []region {
	mid := size/2 - window/2
	if mid < 0 {
		mid = 0
	}
	end := size - window
	if end < 0 {
		end = 0
	}
	return []region{
		{name: "start", offset: 0, length: int(window)},
		{name: "middle", offset: mid, length: int(window)},
		{name: "end", offset: end, length: int(window)},
	}
}

func analyzeRegion(reg region, data []byte) regionStats {
	var hist [256]int
	for _, b := range data {
		hist[b]++
	}

	total := float64(len(data))
	entropy := 0.0
	distinct := 0
	top := 0
	for _, count := range hist {
		if count == 0 {
			continue
		}
		distinct++
		if count > top {
			top = count
		}
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}

	return regionStats{
		evidence: model.RegionEvidence{
			Region:    reg.name,
			Offset:    reg.offset,
			Length:    len(data),
			Entropy:   entropy,
			Diversity: float64(distinct) / 256.0,
			Digest:    basic.Digest(data),
		},
		zeroFrac:  float64(hist[0]) / total,
		topFrac:   float64(top) / total,
		diversity: float64(distinct) / 256.0,
	}
}

func decide(stats []regionStats, fsRecognized bool, cfg Config) model.Finding {
	sumEntropy, sumZero, maxTop := 0.0, 0.0, 0.0
	allHigh, allDiverse := true, true
	for _, st := range stats {
		sumEntropy += st.evidence.Entropy
		sumZero += st.zeroFrac
		if st.topFrac > maxTop {
			maxTop = st.topFrac
		}
		if st.evidence.Entropy < cfg.EntropyHigh {
			allHigh = false
		}
		if st.diversity < cfg.DiversityFloor {
			allDiverse = false
		}
	}
	n := float64(len(stats))
	meanEntropy := sumEntropy / n
	meanZero := sumZero / n

	if fsRecognized {
		// 可识别文件系统表明卷内容可被正常解析, 高熵区间只说明
		// 存在压缩或密文文件, 不说明整卷被加密.
		return model.Finding{
			Status:  model.StatusNotDetected,
			Source:  model.SourceHeuristic,
			Details: "recognized filesystem present, whole-volume encryption ruled out",
		}
	}

	switch {
	case allHigh && allDiverse:
		return model.Finding{
			Status:     model.StatusEncrypted,
			Algorithm:  "unidentified (entropy analysis)",
			Confidence: model.ConfidenceLow,
			Source:     model.SourceHeuristic,
			Details:    fmt.Sprintf("all sample regions exceed entropy %.2f bits/byte", cfg.EntropyHigh),
		}
	case meanZero >= cfg.ZeroFraction:
		return model.Finding{
			Status:  model.StatusNotDetected,
			Source:  model.SourceHeuristic,
			Details: "volume is predominantly zero-filled",
		}
	case maxTop >= cfg.SameByteFraction && meanEntropy < cfg.EntropyHigh:
		return model.Finding{
			Status:  model.StatusNotDetected,
			Source:  model.SourceHeuristic,
			Details: "volume is dominated by a single repeated byte",
		}
	case meanEntropy <= cfg.EntropyLow:
		return model.Finding{
			Status:  model.StatusNotDetected,
			Source:  model.SourceHeuristic,
			Details: fmt.Sprintf("mean entropy %.2f bits/byte below plaintext floor", meanEntropy),
		}
	default:
		return model.Finding{
			Status:  model.StatusUnknown,
			Source:  model.SourceHeuristic,
			Details: fmt.Sprintf("mean entropy %.2f bits/byte is inconclusive", meanEntropy),
		}
	}
}
