package types

// File attributes [MS-FSCC] 2.6
const (
	FileAttributeReadonly     uint32 = 0x00000001
	FileAttributeHidden       uint32 = 0x00000002
	FileAttributeSystem       uint32 = 0x00000004
	FileAttributeDirectory    uint32 = 0x00000010
	FileAttributeArchive      uint32 = 0x00000020
	FileAttributeNormal       uint32 = 0x00000080
	FileAttributeReparsePoint uint32 = 0x00000400
)

// Access Mask constants [MS-SMB2] 2.2.13.1
//
// On directories FileReadData is FILE_LIST_DIRECTORY, FileWriteData is
// FILE_ADD_FILE, FileAppendData is FILE_ADD_SUBDIRECTORY and FileExecute is
// FILE_TRAVERSE.
const (
	FileReadData         uint32 = 0x00000001
	FileWriteData        uint32 = 0x00000002
	FileAppendData       uint32 = 0x00000004
	FileReadEA           uint32 = 0x00000008
	FileWriteEA          uint32 = 0x00000010
	FileExecute          uint32 = 0x00000020
	FileDeleteChild      uint32 = 0x00000040
	FileReadAttributes   uint32 = 0x00000080
	FileWriteAttributes  uint32 = 0x00000100
	Delete               uint32 = 0x00010000
	ReadControl          uint32 = 0x00020000
	WriteDac             uint32 = 0x00040000
	WriteOwner           uint32 = 0x00080000
	Synchronize          uint32 = 0x00100000
	AccessSystemSecurity uint32 = 0x01000000
	MaximumAllowed       uint32 = 0x02000000
	GenericAll           uint32 = 0x10000000
	GenericExecute       uint32 = 0x20000000
	GenericWrite         uint32 = 0x40000000
	GenericRead          uint32 = 0x80000000
)

// Common access mask combinations.
const (
	AccessReadOnly = FileReadData | FileReadEA | FileExecute |
		FileReadAttributes | ReadControl | Synchronize

	AccessReadWrite = AccessReadOnly | FileWriteData | FileAppendData |
		FileWriteEA | FileWriteAttributes | Delete
)
