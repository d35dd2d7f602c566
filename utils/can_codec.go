package utils

import (
	"fmt"
	"math"

	"go.einride.tech/can"
)

// EncodeFrame packs values into the little-endian payload of frameName.
// Missing signals take their default; values are clamped to the signal range.
func (m *CANMap) EncodeFrame(frameName string, values map[string]float64) ([]byte, uint32, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return nil, 0, err
	}
	if fd.DLC <= 0 || fd.DLC > 8 {
		return nil, 0, fmt.Errorf("frame %s has invalid DLC %d", fd.Name, fd.DLC)
	}

	var payload uint64
	for _, s := range fd.Signals {
		v, ok := values[s.Name]
		if !ok {
			v = s.Default
		}
		if math.IsNaN(v) {
			return nil, 0, fmt.Errorf("frame %s signal %s: NaN value", fd.Name, s.Name)
		}
		payload = s.pack(payload, v)
	}

	out := make([]byte, fd.DLC)
	for i := 0; i < fd.DLC; i++ {
		out[i] = byte((payload >> (8 * i)) & 0xFF)
	}
	return out, fd.ID, nil
}

// EncodeEinrideFrame produces a can.Frame ready to transmit or trace.
func (m *CANMap) EncodeEinrideFrame(frameName string, values map[string]float64) (can.Frame, error) {
	payload, id, err := m.EncodeFrame(frameName, values)
	if err != nil {
		return can.Frame{}, err
	}

	var f can.Frame
	f.ID = id
	f.Length = uint8(len(payload))
	copy(f.Data[:], payload)

	if err := f.Validate(); err != nil {
		return can.Frame{}, fmt.Errorf("frame %s: %w", frameName, err)
	}
	return f, nil
}

func (m *CANMap) DecodeFrame(frameID uint32, data []byte) (map[string]float64, error) {
	fd, err := m.FrameByID(frameID)
	if err != nil {
		return nil, err
	}
	if len(data) < fd.DLC {
		return nil, fmt.Errorf("frame 0x%X expects DLC %d, got %d", frameID, fd.DLC, len(data))
	}

	var payload uint64
	for i := 0; i < fd.DLC && i < 8; i++ {
		payload |= uint64(data[i]) << (8 * i)
	}

	out := make(map[string]float64, len(fd.Signals))
	for _, s := range fd.Signals {
		out[s.Name] = s.unpack(payload)
	}
	return out, nil
}

// DecodeEinrideFrame decodes a received or replayed can.Frame
func (m *CANMap) DecodeEinrideFrame(f can.Frame) (map[string]float64, error) {
	return m.DecodeFrame(f.ID, f.Data[:f.Length])
}

// pack scales v into raw units and writes it at the signal's bit position
func (s SignalDef) pack(payload uint64, v float64) uint64 {
	v = clamp(v, s.Min, s.Max)
	raw := int64(math.Round((v - s.Offset) / s.Factor))
	raw = s.clampRaw(raw)

	mask := s.mask()
	payload &^= mask << s.StartBit
	payload |= (uint64(raw) & mask) << s.StartBit
	return payload
}

// unpack reads the signal's bits and converts them to physical units
func (s SignalDef) unpack(payload uint64) float64 {
	u := (payload >> s.StartBit) & s.mask()

	raw := int64(u)
	if s.Signed && s.BitLength < 64 {
		signBit := uint64(1) << (s.BitLength - 1)
		if u&signBit != 0 {
			raw = int64(u | ^s.mask())
		}
	}
	return float64(raw)*s.Factor + s.Offset
}

func (s SignalDef) mask() uint64 {
	if s.BitLength >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << s.BitLength) - 1
}

func (s SignalDef) clampRaw(raw int64) int64 {
	if s.BitLength <= 0 || s.BitLength > 63 {
		return raw
	}
	if !s.Signed {
		return clampInt(raw, 0, int64(1)<<s.BitLength-1)
	}
	return clampInt(raw, -(int64(1) << (s.BitLength - 1)), int64(1)<<(s.BitLength-1)-1)
}

func clamp(v, lo, hi float64) float64 {
	if lo == 0 && hi == 0 {
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
