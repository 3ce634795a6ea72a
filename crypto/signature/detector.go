package signature

import (
	"io"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/kisun-bit/disktriage/model"
	"github.com/kisun-bit/disktriage/util/logger"
)

// Detect 按目录序对卷执行签名匹配.
// 返回的terminal为false表示目录全程未命中, 结论应交由启发式兜底.
//
// 语义要点:
//   - 定义的全部matcher都命中才算命中, 部分命中不算;
//   - 多个定义命中时返回目录序靠前者(目录序即运营方优先级, 并列非错误);
//   - 某定义读取窗口失败仅视作该定义未命中, 继续枚举后续定义;
//   - 命中定义若声明Unknown状态, 同样继续枚举(Unknown不是可终结信号).
func Detect(r io.ReaderAt, volumeSize int64, cat Catalog) (finding model.Finding, terminal bool) {
	// 按read_offset分组缓存读取窗口, 同偏移取各定义所需的最大窗口,
	// 缓存沿目录序首次出现的顺序建立.
	plan := readPlan(cat)
	cache := orderedmap.NewOrderedMap[int64, []byte]()

	for i := range cat.defs {
		def := &cat.defs[i]
		window, ok := cache.Get(def.ReadOffset)
		if !ok {
			size := plan[def.ReadOffset]
			if volumeSize > 0 && def.ReadOffset+int64(size) > volumeSize {
				remain := volumeSize - def.ReadOffset
				if remain <= 0 {
					cache.Set(def.ReadOffset, nil)
					continue
				}
				size = int(remain)
			}
			window = make([]byte, size)
			n, err := r.ReadAt(window, def.ReadOffset)
			if err != nil && n == 0 {
				logger.Debugf("signature %s window at %d unreadable: %v", def.ID, def.ReadOffset, err)
				cache.Set(def.ReadOffset, nil)
				continue
			}
			window = window[:n]
			cache.Set(def.ReadOffset, window)
		}
		if len(window) == 0 {
			continue
		}

		if !def.matches(window) {
			continue
		}
		if def.Status == model.StatusUnknown {
			continue
		}

		version := ""
		if def.Version != nil {
			version = def.Version.Extract(window)
		}
		return model.Finding{
			Status:     def.Status,
			Algorithm:  def.Name,
			Version:    version,
			Confidence: model.ConfidenceHigh,
			Source:     model.SourceSignature,
			Details:    def.Details,
		}, true
	}
	return model.Finding{}, false
}

// readPlan 计算每个read_offset需要的最大读取窗口.
func readPlan(cat Catalog) map[int64]int {
	plan := make(map[int64]int)
	for i := range cat.defs {
		def := &cat.defs[i]
		if cur, ok := plan[def.ReadOffset]; !ok || def.MaxRead > cur {
			plan[def.ReadOffset] = def.MaxRead
		}
	}
	return plan
}
