package heuristic

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Config 启发式分类阈值. 全部阈值可经运行配置调整, 无需重新编译,
// 以支持对标注语料的离线校准.
type Config struct {
	WindowSize       int64   // 单个采样区间的字节数.
	MinSampleSize    int64   // 低于此大小的卷直接判Unknown.
	EntropyHigh      float64 // 三区间全部越过才可能判Encrypted.
	EntropyLow       float64 // 聚合熵低于此值判NotDetected.
	SameByteFraction float64 // 最高频字节占比达到此值视作低变化数据.
	ZeroFraction     float64 // 零字节占比达到此值视作空白填充.
	DiversityFloor   float64 // 符号多样性(字节种数/256)下限.
}

// DefaultConfig 默认阈值, 来自对标注语料的一轮离线校准.
func DefaultConfig() Config {
	return Config{
		WindowSize:       64 << 10,
		MinSampleSize:    4 << 10,
		EntropyHigh:      7.85,
		EntropyLow:       1.0,
		SameByteFraction: 0.90,
		ZeroFraction:     0.98,
		DiversityFloor:   0.60,
	}
}

// LoadConfig 从JSON装载阈值, 缺省键取默认值.
func LoadConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(raw) == 0 {
		return cfg, nil
	}
	if !gjson.ValidBytes(raw) {
		return cfg, errors.New("heuristic config is not valid JSON")
	}
	parsed := gjson.ParseBytes(raw)
	setInt := func(key string, dst *int64) {
		if v := parsed.Get(key); v.Exists() {
			*dst = v.Int()
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := parsed.Get(key); v.Exists() {
			*dst = v.Float()
		}
	}
	setInt("window_size", &cfg.WindowSize)
	setInt("min_sample_size", &cfg.MinSampleSize)
	setFloat("entropy_threshold_high", &cfg.EntropyHigh)
	setFloat("entropy_threshold_low", &cfg.EntropyLow)
	setFloat("same_byte_fraction", &cfg.SameByteFraction)
	setFloat("zero_fraction", &cfg.ZeroFraction)
	setFloat("diversity_floor", &cfg.DiversityFloor)

	if cfg.WindowSize <= 0 || cfg.MinSampleSize <= 0 {
		return DefaultConfig(), errors.Errorf("heuristic config has non-positive sample sizes: window=%d min=%d",
			cfg.WindowSize, cfg.MinSampleSize)
	}
	if cfg.EntropyHigh <= cfg.EntropyLow {
		return DefaultConfig(), errors.Errorf("heuristic config thresholds inverted: high=%.2f low=%.2f",
			cfg.EntropyHigh, cfg.EntropyLow)
	}
	return cfg, nil
}
