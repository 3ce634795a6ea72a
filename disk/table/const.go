package table

// Scheme 数据源的分区方案.
type Scheme string

const (
	SchemeMBR Scheme = "MBR"
	SchemeGPT Scheme = "GPT"
	SchemeRaw Scheme = "RAW" // 无分区表, 整个数据源视作单个卷.
)

const (
	SectorSize            = 1 << 9
	MBRSignature510       = 0x55
	MBRSignature511       = 0xAA
	MBRPartitionEntryCnt  = 4
	MBRPartitionBootable  = 0x80
	MBREBRChainEntryIndex = 1
	MBRDataEntryIndex     = 0
)

// MBRPartitionType MBR分区表项的类型字节.
// 见 https://en.wikipedia.org/wiki/Partition_type.
type MBRPartitionType = byte

const (
	PartEmpty            MBRPartitionType = 0x00
	PartFAT12            MBRPartitionType = 0x01
	PartExtendCHS        MBRPartitionType = 0x05
	PartFAT16            MBRPartitionType = 0x06
	PartNTFS             MBRPartitionType = 0x07
	PartFAT32            MBRPartitionType = 0x0B
	PartFAT32X           MBRPartitionType = 0x0C
	PartFAT16X           MBRPartitionType = 0x0E
	PartExtendLBA        MBRPartitionType = 0x0F
	PartHiddenNTFS       MBRPartitionType = 0x17
	PartWindowsRE        MBRPartitionType = 0x27
	PartLinuxSwap        MBRPartitionType = 0x82
	PartLinux            MBRPartitionType = 0x83
	PartLinuxExtend      MBRPartitionType = 0x85
	PartLinuxLVM         MBRPartitionType = 0x8E
	PartLinuxLUKS        MBRPartitionType = 0xE8
	PartEFIGPTProtective MBRPartitionType = 0xEE
	PartEFISystem        MBRPartitionType = 0xEF
	PartLinuxRAID        MBRPartitionType = 0xFD
)

var mbrExtendPartTypes = []byte{PartExtendCHS, PartExtendLBA, PartLinuxExtend}

// MBRPartitionTypeDesc MBR分区类型描述字典(常见项).
var MBRPartitionTypeDesc = map[MBRPartitionType]string{
	PartEmpty:            "Empty",
	PartFAT12:            "FAT12",
	PartExtendCHS:        "Extended, CHS",
	PartFAT16:            "FAT16",
	PartNTFS:             "NTFS/exFAT",
	PartFAT32:            "FAT32",
	PartFAT32X:           "FAT32X",
	PartFAT16X:           "FAT16X",
	PartExtendLBA:        "Extended, LBA",
	PartHiddenNTFS:       "Hidden NTFS",
	PartWindowsRE:        "Windows Recovery Env",
	PartLinuxSwap:        "Linux Swap",
	PartLinux:            "Linux",
	PartLinuxExtend:      "Linux Extended",
	PartLinuxLVM:         "Linux LVM",
	PartLinuxLUKS:        "Linux LUKS",
	PartEFIGPTProtective: "GPT Protective MBR",
	PartEFISystem:        "EFI System",
	PartLinuxRAID:        "Linux RAID",
}

const (
	GPTSignature          = "EFI PART"
	GPTPartitionEntryCnt  = 128
	GPTPartitionEntrySize = 128
)

// GPT分区类型GUID(mixed endian字符串形式).
// http://en.wikipedia.org/wiki/GUID_Partition_Table#Partition_type_GUIDs
const (
	GUIDBlankEmptyPart    = "00000000-0000-0000-0000-000000000000"
	GUIDEFISystem         = "C12A7328-F81F-11D2-BA4B-00A0C93EC93B"
	GUIDBIOSBoot          = "21686148-6449-6E6F-744E-656564454649"
	GUIDMicrosoftReserved = "E3C9E316-0B5C-4DB8-817D-F92DF00215AE"
	GUIDBasicData         = "EBD0A0A2-B9E5-4433-87C0-68B6B72699C7"
	GUIDMicrosoftRE       = "DE94BBA4-06D1-4D40-A16A-BFD50179D6AC"
	GUIDLinuxFSData       = "0FC63DAF-8483-4772-8E79-3D69D8477DE4"
	GUIDLinuxSwap         = "0657FD6D-A4AB-43C4-84E5-0933C84B4F4F"
	GUIDLinuxLVM          = "E6D6D379-F507-44C2-A23C-238F2A3DF928"
	GUIDLinuxDmCrypt      = "7FFEC5C9-2D00-49B7-8941-3EA10A5586B7"
	GUIDLinuxLUKS         = "CA7D7CCB-63ED-4C53-861C-1742536059CC"
	GUIDAppleHFSPlus      = "48465300-0000-11AA-AA11-00306543ECAC"
	GUIDAppleAPFS         = "7C3457EF-0000-11AA-AA11-00306543ECAC"
	GUIDAppleCoreStorage  = "53746F72-6167-11AA-AA11-00306543ECAC"
	GUIDAppleBoot         = "426F6F74-0000-11AA-AA11-00306543ECAC"
)

// GPTPartitionTypeDesc GPT分区类型描述字典(常见项).
var GPTPartitionTypeDesc = map[string]string{
	GUIDEFISystem:         "EFI System",
	GUIDBIOSBoot:          "BIOS Boot",
	GUIDMicrosoftReserved: "Microsoft Reserved",
	GUIDBasicData:         "Basic Data",
	GUIDMicrosoftRE:       "Windows Recovery Env",
	GUIDLinuxFSData:       "Linux Filesystem",
	GUIDLinuxSwap:         "Linux Swap",
	GUIDLinuxLVM:          "Linux LVM",
	GUIDLinuxDmCrypt:      "Linux dm-crypt",
	GUIDLinuxLUKS:         "Linux LUKS",
	GUIDAppleHFSPlus:      "Apple HFS+",
	GUIDAppleAPFS:         "Apple APFS",
	GUIDAppleCoreStorage:  "Apple Core Storage",
	GUIDAppleBoot:         "Apple Boot",
}
