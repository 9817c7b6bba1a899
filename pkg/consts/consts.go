package consts

const (
	// Number of system area sectors. The volume descriptor set starts right after them.
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// Number of sectors probed for a primary volume descriptor.
	ISO9660_DESCRIPTOR_SCAN_SECTORS = 16

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// ISO9660 volume descriptor version (always 1).
	ISO9660_VOLUME_DESC_VERSION = 1

	// ISO9660 default sector size. Optical media always use 2048 byte logical sectors.
	ISO9660_SECTOR_SIZE = 2048

	// ISO9660 volume descriptor header size
	ISO9660_VOLUME_DESC_HEADER_SIZE = 7

	// Size of the fixed part of a directory record, up to and including the identifier length.
	ISO9660_DIRECTORY_RECORD_HEADER_SIZE = 33

	// Size of the directory record embedded in the primary volume descriptor.
	ISO9660_ROOT_RECORD_SIZE = 34

	// Identifiers of the two special directory records.
	ISO9660_IDENT_SELF   = 0x00
	ISO9660_IDENT_PARENT = 0x01

	// Separators allowed by ISO9660 0x2E and 0x3B.
	ISO9660_SEPARATOR_1 = '.'
	ISO9660_SEPARATOR_2 = ';'

	// ISO9660 Filler 0x20 (space)
	ISO9660_FILLER = ' '

	// Path separator used by Namei.
	PATH_SEPARATOR = "/"
)
