package signature

import "github.com/kisun-bit/disktriage/util/logger"

// builtinCatalogJSON 内置签名目录.
// 目录序即命中优先级, 运营方自有目录可整体替换或按id收窄.
const builtinCatalogJSON = `[
  {
    "id": "bitlocker",
    "name": "BitLocker",
    "status": "encrypted",
    "details": "BitLocker volume header (-FVE-FS-)",
    "max_read": 4096,
    "matchers": [
      {"type": "contains", "offset": 0, "pattern": "-FVE-FS-"}
    ]
  },
  {
    "id": "luks",
    "name": "LUKS",
    "status": "encrypted",
    "details": "LUKS partition header",
    "max_read": 4096,
    "matchers": [
      {"type": "equals", "offset": 0, "pattern": "4c554b53babe", "encoding": "hex"}
    ],
    "version": {"type": "uint16-le", "offset": 6}
  },
  {
    "id": "veracrypt",
    "name": "VeraCrypt",
    "status": "encrypted",
    "details": "VeraCrypt/TrueCrypt boot volume marker",
    "max_read": 512,
    "matchers": [
      {"type": "equals", "offset": 0, "pattern": "TRUE"}
    ]
  },
  {
    "id": "filevault2",
    "name": "FileVault2",
    "status": "encrypted",
    "details": "Apple Core Storage header (FileVault 2)",
    "max_read": 4096,
    "matchers": [
      {"type": "contains", "offset": 0, "pattern": "636f72657374726167", "encoding": "hex"}
    ]
  }
]`

// DefaultCatalog 装载内置签名目录.
// 配置非法时记录错误并降级为空目录, 检测链随之仅靠启发式工作.
func DefaultCatalog() Catalog {
	c, err := LoadCatalog([]byte(builtinCatalogJSON))
	if err != nil {
		logger.Errorf("builtin signature catalog rejected: %v", err)
		return Empty()
	}
	return c
}
