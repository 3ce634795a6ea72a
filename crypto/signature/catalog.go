// Package signature 实现基于声明式签名目录的加密容器精确识别.
// 目录在进程启动时装载一次, 之后只读共享, 可安全地被全部并发检测任务引用.
package signature

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/kisun-bit/disktriage/model"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
	"github.com/tidwall/gjson"
)

// ErrConfiguration 签名配置非法. 装载方应降级为空目录(仅启发式), 而非崩溃.
var ErrConfiguration = errors.New("invalid signature configuration")

// MatchKind 匹配规则种类.
type MatchKind string

const (
	// MatchEquals 要求样式与声明偏移处的字节精确相等, 差一个字节即不命中.
	MatchEquals MatchKind = "equals"
	// MatchContains 要求样式出现在读取窗口内声明偏移之后的任意位置.
	MatchContains MatchKind = "contains"
)

// Matcher 单条字节匹配规则.
type Matcher struct {
	Kind    MatchKind
	Offset  int64
	Pattern []byte
}

// VersionExtractor 从命中窗口中提取版本串的规则.
type VersionExtractor struct {
	Kind   string // uint16-le 或 ascii.
	Offset int64
	Length int
}

// Extract 提取版本串. 任何越界或空值仅表现为返回空串, 不使整个检测失败.
func (ve *VersionExtractor) Extract(data []byte) string {
	switch ve.Kind {
	case "uint16-le":
		length := ve.Length
		if length <= 0 {
			length = 2
		}
		if ve.Offset+int64(length) > int64(len(data)) {
			return ""
		}
		value := binary.LittleEndian.Uint16(data[ve.Offset : ve.Offset+2])
		if value == 0 {
			return ""
		}
		return strconv.Itoa(int(value))
	case "ascii":
		if ve.Length <= 0 || ve.Offset+int64(ve.Length) > int64(len(data)) {
			return ""
		}
		raw := data[ve.Offset : ve.Offset+int64(ve.Length)]
		return strings.Trim(string(raw), "\x00")
	default:
		return ""
	}
}

// Definition 一条签名定义. 装载后不可变.
type Definition struct {
	ID         string
	Name       string
	Status     model.Status
	Details    string
	ReadOffset int64
	MaxRead    int
	Matchers   []Matcher
	Version    *VersionExtractor
}

// matches 仅当全部matcher命中时该定义才算命中.
func (d *Definition) matches(data []byte) bool {
	for i := range d.Matchers {
		if !matcherHit(&d.Matchers[i], data) {
			return false
		}
	}
	return len(d.Matchers) > 0
}

func matcherHit(m *Matcher, data []byte) bool {
	switch m.Kind {
	case MatchEquals:
		end := m.Offset + int64(len(m.Pattern))
		if end > int64(len(data)) {
			return false
		}
		return string(data[m.Offset:end]) == string(m.Pattern)
	case MatchContains:
		if m.Offset >= int64(len(data)) {
			return false
		}
		return strings.Contains(string(data[m.Offset:]), string(m.Pattern))
	default:
		return false
	}
}

// Catalog 只读的签名目录. 目录序即命中优先级.
type Catalog struct {
	defs []Definition
}

func Empty() Catalog {
	return Catalog{}
}

func (c Catalog) Len() int {
	return len(c.defs)
}

func (c Catalog) Definitions() []Definition {
	return c.defs
}

// Filter 按id收窄生效签名集. 不修改原目录, 仅返回过滤后的视图.
func (c Catalog) Filter(ids ...string) Catalog {
	if len(ids) == 0 {
		return c
	}
	kept := make([]Definition, 0, len(ids))
	for _, d := range c.defs {
		if funk.InStrings(ids, d.ID) {
			kept = append(kept, d)
		}
	}
	return Catalog{defs: kept}
}

const defaultMaxRead = 4096

// LoadCatalog 从JSON配置装载签名目录并校验.
// 任一条目非法则整体失败并返回 ErrConfiguration, 由调用方降级为空目录.
func LoadCatalog(raw []byte) (Catalog, error) {
	if !gjson.ValidBytes(raw) {
		return Empty(), errors.Wrap(ErrConfiguration, "catalog is not valid JSON")
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return Empty(), errors.Wrap(ErrConfiguration, "catalog root must be an array")
	}

	defs := make([]Definition, 0)
	for _, entry := range parsed.Array() {
		def, err := parseDefinition(entry)
		if err != nil {
			return Empty(), err
		}
		defs = append(defs, def)
	}
	return Catalog{defs: defs}, nil
}

func parseDefinition(entry gjson.Result) (Definition, error) {
	def := Definition{
		ID:         entry.Get("id").String(),
		Name:       entry.Get("name").String(),
		Details:    entry.Get("details").String(),
		ReadOffset: entry.Get("read_offset").Int(),
		MaxRead:    int(entry.Get("max_read").Int()),
	}
	if def.ID == "" || def.Name == "" {
		return def, errors.Wrapf(ErrConfiguration, "signature entry requires id and name: %s", entry.Raw)
	}
	if def.ReadOffset < 0 {
		return def, errors.Wrapf(ErrConfiguration, "signature %s has negative read_offset", def.ID)
	}
	if def.MaxRead <= 0 {
		def.MaxRead = defaultMaxRead
	}

	status := entry.Get("status").String()
	switch status {
	case "", "encrypted":
		def.Status = model.StatusEncrypted
	case "not_detected":
		def.Status = model.StatusNotDetected
	case "partial":
		def.Status = model.StatusPartiallyEncrypted
	case "unknown":
		def.Status = model.StatusUnknown
	default:
		return def, errors.Wrapf(ErrConfiguration, "signature %s has unknown status %q", def.ID, status)
	}

	rawMatchers := entry.Get("matchers").Array()
	if len(rawMatchers) == 0 {
		return def, errors.Wrapf(ErrConfiguration, "signature %s declares no matchers", def.ID)
	}
	for _, rm := range rawMatchers {
		m, err := parseMatcher(def.ID, rm)
		if err != nil {
			return def, err
		}
		def.Matchers = append(def.Matchers, m)
	}

	if v := entry.Get("version"); v.Exists() {
		ve := &VersionExtractor{
			Kind:   v.Get("type").String(),
			Offset: v.Get("offset").Int(),
			Length: int(v.Get("length").Int()),
		}
		if ve.Kind != "uint16-le" && ve.Kind != "ascii" {
			return def, errors.Wrapf(ErrConfiguration, "signature %s has unknown version extractor %q", def.ID, ve.Kind)
		}
		def.Version = ve
	}
	return def, nil
}

func parseMatcher(sigID string, rm gjson.Result) (Matcher, error) {
	m := Matcher{
		Kind:   MatchKind(rm.Get("type").String()),
		Offset: rm.Get("offset").Int(),
	}
	if m.Kind != MatchEquals && m.Kind != MatchContains {
		return m, errors.Wrapf(ErrConfiguration, "signature %s has unknown matcher type %q", sigID, m.Kind)
	}
	if m.Offset < 0 {
		return m, errors.Wrapf(ErrConfiguration, "signature %s has negative matcher offset", sigID)
	}

	pattern := rm.Get("pattern").String()
	encoding := strings.ToLower(rm.Get("encoding").String())
	switch encoding {
	case "", "ascii", "utf-8":
		m.Pattern = []byte(pattern)
	case "hex":
		decoded, err := hex.DecodeString(pattern)
		if err != nil {
			return m, errors.Wrapf(ErrConfiguration, "signature %s has invalid hex pattern: %v", sigID, err)
		}
		m.Pattern = decoded
	default:
		return m, errors.Wrapf(ErrConfiguration, "signature %s has unsupported pattern encoding %q", sigID, encoding)
	}
	if len(m.Pattern) == 0 {
		return m, errors.Wrapf(ErrConfiguration, "signature %s has empty matcher pattern", sigID)
	}
	return m, nil
}
