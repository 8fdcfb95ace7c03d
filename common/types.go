package common

import "fmt"

// MeterID identifies a meter within a datapath
type MeterID uint32

const (
	// MeterMax is the last usable flow meter id
	MeterMax MeterID = 0xffff0000
	// MeterSlowPath is the virtual meter for the slow datapath
	MeterSlowPath MeterID = 0xfffffffd
	// MeterController is the virtual meter for packets sent to the controller
	MeterController MeterID = 0xfffffffe
	// MeterAll represents all meters in stats requests and delete commands
	MeterAll MeterID = 0xffffffff
)

// IsAll reports whether the id is the "all meters" wildcard
func (id MeterID) IsAll() bool {
	return id == MeterAll
}

// Valid reports whether the id can name a single installed meter
func (id MeterID) Valid() bool {
	if id == 0 {
		return false
	}
	return id <= MeterMax || id == MeterSlowPath || id == MeterController
}

func (id MeterID) String() string {
	switch id {
	case MeterAll:
		return "all"
	case MeterSlowPath:
		return "slowpath"
	case MeterController:
		return "controller"
	default:
		return fmt.Sprintf("%d", uint32(id))
	}
}

// Command meter mod command
type Command uint16

const (
	// CommandAdd installs a new meter
	CommandAdd Command = iota
	// CommandModify replaces the bands of an existing meter
	CommandModify
	// CommandDelete removes one meter or all of them
	CommandDelete
)

func (c Command) String() string {
	switch c {
	case CommandAdd:
		return "add"
	case CommandModify:
		return "modify"
	case CommandDelete:
		return "delete"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(c))
	}
}

// BandType meter band type
type BandType uint16

const (
	// BandTypeDrop drops packets exceeding the band rate
	BandTypeDrop BandType = 1
	// BandTypeDSCPRemark raises the drop precedence of the DSCP field
	BandTypeDSCPRemark BandType = 2
	// BandTypeExperimenter experimenter band
	BandTypeExperimenter BandType = 0xffff
)

// Flag returns the band type bit used in MeterFeatures.BandTypes
func (t BandType) Flag() uint32 {
	if t >= 32 {
		return 0
	}
	return 1 << uint32(t)
}

func (t BandType) String() string {
	switch t {
	case BandTypeDrop:
		return "drop"
	case BandTypeDSCPRemark:
		return "dscp-remark"
	case BandTypeExperimenter:
		return "experimenter"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(t))
	}
}

// MeterFlags meter configuration flags, also used as capability bits
type MeterFlags uint16

const (
	// MeterFlagKBPS rate value in kb/s
	MeterFlagKBPS MeterFlags = 1 << 0
	// MeterFlagPKTPS rate value in packet/sec
	MeterFlagPKTPS MeterFlags = 1 << 1
	// MeterFlagBurst do burst size
	MeterFlagBurst MeterFlags = 1 << 2
	// MeterFlagStats collect statistics
	MeterFlagStats MeterFlags = 1 << 3
)

// Has reports whether all bits of f are set
func (m MeterFlags) Has(f MeterFlags) bool {
	return m&f == f
}

// Band a single rate band of a meter
type Band struct {
	Type         BandType `json:"type"`
	Rate         uint32   `json:"rate"`
	BurstSize    uint32   `json:"burst_size"`
	PrecLevel    uint8    `json:"prec_level,omitempty"`   // dscp remark only
	Experimenter uint32   `json:"experimenter,omitempty"` // experimenter only
}

// BandStats per band statistics
type BandStats struct {
	PacketBandCount uint64 `json:"packet_band_count"`
	ByteBandCount   uint64 `json:"byte_band_count"`
}

// MeterStats per meter statistics
type MeterStats struct {
	MeterID       MeterID      `json:"meter_id"`
	FlowCount     uint32       `json:"flow_count"`
	PacketInCount uint64       `json:"packet_in_count"`
	ByteInCount   uint64       `json:"byte_in_count"`
	DurationSec   uint32       `json:"duration_sec"`
	DurationNSec  uint32       `json:"duration_nsec"`
	BandStats     []*BandStats `json:"band_stats"`
}

// BandCount returns the number of bands the statistics cover
func (s *MeterStats) BandCount() int {
	return len(s.BandStats)
}

// Clone returns a deep copy of the statistics
func (s *MeterStats) Clone() *MeterStats {
	c := *s
	c.BandStats = make([]*BandStats, len(s.BandStats))
	for i, b := range s.BandStats {
		bc := *b
		c.BandStats[i] = &bc
	}
	return &c
}

// MeterConfig meter configuration as installed
type MeterConfig struct {
	Flags   MeterFlags `json:"flags"`
	MeterID MeterID    `json:"meter_id"`
	Bands   []Band     `json:"bands"`
}

// Clone returns a deep copy of the configuration
func (c *MeterConfig) Clone() *MeterConfig {
	cc := *c
	cc.Bands = append([]Band(nil), c.Bands...)
	return &cc
}

// MeterFeatures fixed meter table capabilities
type MeterFeatures struct {
	MaxMeter     uint32 `json:"max_meter"`
	BandTypes    uint32 `json:"band_types"`
	Capabilities uint32 `json:"capabilities"`
	MaxBands     uint8  `json:"max_bands"`
	MaxColor     uint8  `json:"max_color"`
}

// SupportsBand reports whether the band type is advertised in BandTypes
func (f MeterFeatures) SupportsBand(t BandType) bool {
	flag := t.Flag()
	return flag != 0 && f.BandTypes&flag != 0
}

// Role controller role negotiated for a connection
type Role uint32

const (
	// RoleNoChange leaves the current role unchanged
	RoleNoChange Role = iota
	// RoleEqual full access, equal to other controllers
	RoleEqual
	// RoleMaster full access, at most one master
	RoleMaster
	// RoleSlave read-only access
	RoleSlave
)

func (r Role) String() string {
	switch r {
	case RoleNoChange:
		return "nochange"
	case RoleEqual:
		return "equal"
	case RoleMaster:
		return "master"
	case RoleSlave:
		return "slave"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(r))
	}
}

// Remote a controller connection that sent a request
type Remote struct {
	ID   string
	Role Role
}

// FlowRef non-owning reference to a flow rule that uses a meter
type FlowRef uint64

// Packet the part of a packet the meter table needs
type Packet struct {
	InPort uint32
	Size   int
	DSCP   uint8
}

// Verdict outcome of applying a meter to a packet
type Verdict int

const (
	// VerdictPass forward the packet unchanged
	VerdictPass Verdict = iota
	// VerdictDrop drop the packet
	VerdictDrop
	// VerdictRemark forward the packet with a remarked DSCP
	VerdictRemark
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictDrop:
		return "drop"
	case VerdictRemark:
		return "remark"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// TableSnapshot point-in-time copy of a meter table, persisted by the snapshot writer
type TableSnapshot struct {
	DatapathID string         `json:"datapath_id"`
	Timestamp  int64          `json:"timestamp"` // unix seconds
	Features   MeterFeatures  `json:"features"`
	Configs    []*MeterConfig `json:"configs"`
	Stats      []*MeterStats  `json:"stats"`
}
