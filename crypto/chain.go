// Package crypto 将签名识别与熵启发式组合为单条检测链.
package crypto

import (
	"context"
	"io"

	"github.com/kisun-bit/disktriage/crypto/heuristic"
	"github.com/kisun-bit/disktriage/crypto/signature"
	"github.com/kisun-bit/disktriage/model"
)

// DetectionChain 两级检测链: 先查签名目录, 未命中再走熵启发式.
// 链本身无状态, 可被全部并发卷分析任务共享.
type DetectionChain struct {
	Catalog signature.Catalog
	Config  heuristic.Config
	// SkipHeuristics 清单模式: 只报告签名命中, 不做熵采样.
	// 用于大批量源的快速初筛.
	SkipHeuristics bool
}

// NewDetectionChain 以内置签名目录和默认阈值构造检测链.
func NewDetectionChain() DetectionChain {
	return DetectionChain{
		Catalog: signature.DefaultCatalog(),
		Config:  heuristic.DefaultConfig(),
	}
}

// Run 对单个卷执行检测. 每级检测器至多被调用一次.
// fsRecognized 表示该卷已探测出可识别的文件系统类型.
func (c DetectionChain) Run(ctx context.Context, r io.ReaderAt, size int64, fsRecognized bool) model.Finding {
	if finding, terminal := signature.Detect(r, size, c.Catalog); terminal {
		return finding
	}

	if c.SkipHeuristics {
		if fsRecognized {
			return model.Finding{
				Status:  model.StatusNotDetected,
				Source:  model.SourceSignature,
				Details: "no catalog signature matched, recognized filesystem present",
			}
		}
		return model.Finding{
			Status:  model.StatusUnknown,
			Source:  model.SourceSignature,
			Details: "no catalog signature matched, heuristics disabled",
		}
	}

	return heuristic.Classify(ctx, r, size, fsRecognized, c.Config)
}
