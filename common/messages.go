package common

// MessageType identifies a decoded controller message
type MessageType int

const (
	MessageTypeMeterMod MessageType = iota
	MessageTypeMeterStatsRequest
	MessageTypeMeterConfigRequest
	MessageTypeMeterFeaturesRequest
	MessageTypeMeterStatsReply
	MessageTypeMeterConfigReply
	MessageTypeMeterFeaturesReply
)

// Message is implemented by every request and reply the meter table handles
type Message interface {
	MessageType() MessageType
}

// MeterMod request to add, modify or delete a meter
type MeterMod struct {
	Command Command
	Flags   MeterFlags
	MeterID MeterID
	Bands   []Band
}

func (*MeterMod) MessageType() MessageType { return MessageTypeMeterMod }

// Release drops the band list once the request has been consumed
func (m *MeterMod) Release() {
	m.Bands = nil
}

// MeterStatsRequest multipart request for statistics of one or all meters
type MeterStatsRequest struct {
	MeterID MeterID
}

func (*MeterStatsRequest) MessageType() MessageType { return MessageTypeMeterStatsRequest }

// MeterConfigRequest multipart request for meter configurations.
// MeterID is carried on the wire but configuration is always reported for all meters.
type MeterConfigRequest struct {
	MeterID MeterID
}

func (*MeterConfigRequest) MessageType() MessageType { return MessageTypeMeterConfigRequest }

// MeterFeaturesRequest multipart request for the meter table features
type MeterFeaturesRequest struct{}

func (*MeterFeaturesRequest) MessageType() MessageType { return MessageTypeMeterFeaturesRequest }

// MeterStatsReply statistics reply. Stats reference live table entries
// and must be copied before the table changes again.
type MeterStatsReply struct {
	Stats []*MeterStats
}

func (*MeterStatsReply) MessageType() MessageType { return MessageTypeMeterStatsReply }

// Count returns the number of statistics entries in the reply
func (r *MeterStatsReply) Count() int { return len(r.Stats) }

// MeterConfigReply configuration reply. Configs reference live table entries.
type MeterConfigReply struct {
	Configs []*MeterConfig
}

func (*MeterConfigReply) MessageType() MessageType { return MessageTypeMeterConfigReply }

// Count returns the number of configuration entries in the reply
func (r *MeterConfigReply) Count() int { return len(r.Configs) }

// MeterFeaturesReply features reply
type MeterFeaturesReply struct {
	Features MeterFeatures
}

func (*MeterFeaturesReply) MessageType() MessageType { return MessageTypeMeterFeaturesReply }
