// Package model 定义分析流水线各组件共享的数据模型.
// 模型值一经装入报告即不再变更.
package model

import (
	"encoding/json"
	"time"

	"github.com/kisun-bit/disktriage/disk/filesystem"
)

// Status 加密检测的三态结论.
// Encrypted 仅在强且可复现的信号下给出(精确签名命中, 或全部采样区间
// 越过高置信阈值); 任何含糊情形一律落在 Unknown 或 NotDetected,
// 绝不落在 Encrypted. 这一不对称偏置是硬性约束.
type Status string

const (
	StatusEncrypted          Status = "encrypted"
	StatusNotDetected        Status = "not_detected"
	StatusPartiallyEncrypted Status = "partially_encrypted"
	StatusUnknown            Status = "unknown"
)

// Confidence 结论置信级别, 完全由检测路径决定.
type Confidence string

const (
	ConfidenceHigh Confidence = "high" // 签名命中.
	ConfidenceLow  Confidence = "low"  // 启发式命中.
	ConfidenceNone Confidence = ""
)

// FindingSource 结论的来源路径.
type FindingSource string

const (
	SourceSignature FindingSource = "signature"
	SourceHeuristic FindingSource = "heuristic"
	SourceNone      FindingSource = "none"
)

// RegionEvidence 启发式单个采样区间的证据.
type RegionEvidence struct {
	Region    string  `json:"region"` // start/middle/end.
	Offset    int64   `json:"offset"`
	Length    int     `json:"length"`
	Entropy   float64 `json:"entropy"`
	Diversity float64 `json:"diversity"` // 出现过的字节值种数/256.
	Digest    string  `json:"digest"`    // 采样数据xxhash摘要, 用于离线复核.
}

// Finding 单个卷的加密检测结论.
type Finding struct {
	Status     Status           `json:"status"`
	Algorithm  string           `json:"algorithm,omitempty"`
	Version    string           `json:"version,omitempty"`
	Confidence Confidence       `json:"confidence,omitempty"`
	Source     FindingSource    `json:"source"`
	Details    string           `json:"details,omitempty"`
	Evidence   []RegionEvidence `json:"evidence,omitempty"`
}

// UnknownFinding 构造一个来源为空的Unknown结论.
func UnknownFinding(details string) Finding {
	return Finding{Status: StatusUnknown, Source: SourceNone, Details: details}
}

// Volume 数据源上的一个卷.
type Volume struct {
	Index      int             `json:"index"`
	Offset     int64           `json:"offset"`
	Length     int64           `json:"length"`
	TypeDesc   string          `json:"type_desc,omitempty"`
	Name       string          `json:"name,omitempty"`
	Filesystem filesystem.Type `json:"filesystem"`
}

// FileEntry 文件或目录的元数据记录. 由扫描器创建后不再修改.
type FileEntry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Owner      string    `json:"owner,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	AccessedAt time.Time `json:"accessed_at,omitempty"`
	Attributes string    `json:"attributes,omitempty"`
	IsDir      bool      `json:"is_dir"`
}

// DirectoryNode 目录树节点.
type DirectoryNode struct {
	Name    string           `json:"name"`
	Path    string           `json:"path"`
	Files   []FileEntry      `json:"files,omitempty"`
	Subdirs []*DirectoryNode `json:"subdirs,omitempty"`
}

// SkippedEntry 扫描中被隔离跳过的单条目失败记录.
type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ScanResult 单卷元数据扫描结果.
type ScanResult struct {
	Root             *DirectoryNode `json:"root,omitempty"`
	TotalFiles       int            `json:"total_files"`
	TotalDirectories int            `json:"total_directories"`
	Skipped          []SkippedEntry `json:"skipped,omitempty"`
}

// VolumeReport 单卷分析结果.
// Analyzed 为false时表示该卷分析被故障隔离, Error 记录原因.
type VolumeReport struct {
	Volume     Volume      `json:"volume"`
	Encryption Finding     `json:"encryption"`
	Metadata   *ScanResult `json:"metadata,omitempty"`
	Analyzed   bool        `json:"analyzed"`
	Error      string      `json:"error,omitempty"`
}

// Report 一次完整分析的报告. 卷顺序恒等于枚举顺序.
type Report struct {
	SourcePath  string          `json:"source_path"`
	SourceKind  string          `json:"source_kind"`
	SourceSize  int64           `json:"source_size"`
	Scheme      string          `json:"scheme"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Environment json.RawMessage `json:"environment,omitempty"`
	Volumes     []VolumeReport  `json:"volumes"`
}

// TotalFiles 报告内全部卷的文件总数.
func (r *Report) TotalFiles() int {
	total := 0
	for _, vr := range r.Volumes {
		if vr.Metadata != nil {
			total += vr.Metadata.TotalFiles
		}
	}
	return total
}

// TotalDirectories 报告内全部卷的目录总数.
func (r *Report) TotalDirectories() int {
	total := 0
	for _, vr := range r.Volumes {
		if vr.Metadata != nil {
			total += vr.Metadata.TotalDirectories
		}
	}
	return total
}
