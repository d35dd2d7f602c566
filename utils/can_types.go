package utils

import "sort"

type SignalDef struct {
	Name       string
	StartBit   int
	BitLength  int
	Signed     bool
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Default    float64
	Unit       string
	Comment    string
	Endianness string // only "little" supported
}

type FrameDef struct {
	ID        uint32
	Name      string
	DLC       int
	Direction string
	CycleMS   int
	Signals   []SignalDef
}

// Signal returns the named signal of the frame
func (fd *FrameDef) Signal(name string) (SignalDef, bool) {
	for _, s := range fd.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return SignalDef{}, false
}

type CANMap struct {
	ByID   map[uint32]*FrameDef
	ByName map[string]*FrameDef
}

func (m *CANMap) FrameNames() []string {
	out := make([]string, 0, len(m.ByName))
	for k := range m.ByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Frame names of the built-in servo status map
const (
	FrameServoStatus1 = "SERVO_STATUS_1"
	FrameServoStatus2 = "SERVO_STATUS_2"
	FramePhaseDrive   = "SERVO_PHASE_DRIVE"
)

// DefaultStatusMapCSV describes the frames the servo harness emits each tick.
const DefaultStatusMapCSV = `direction,frame_id,frame_name,cycle_ms,dlc,signal_name,start_bit,bit_length,endianness,signed,factor,offset,min,max,default,unit,comment
tx,0x310,SERVO_STATUS_1,1,8,position,0,32,little,true,0.001,0,-2147483,2147483,0,tick,axis position
tx,0x310,SERVO_STATUS_1,1,8,speed,32,16,little,true,0.001,0,-32.768,32.767,0,tick/tick,position delta per tick
tx,0x310,SERVO_STATUS_1,1,8,power,48,16,little,true,0.01,0,-327.68,327.67,0,,motor power
tx,0x311,SERVO_STATUS_2,1,8,observed_acc,0,16,little,true,0.001,0,-32.768,32.767,0,tick/tick2,measured acceleration
tx,0x311,SERVO_STATUS_2,1,8,integral_diff,16,32,little,true,0.001,0,-2147483,2147483,0,,acceleration error accumulator
tx,0x311,SERVO_STATUS_2,1,8,phase,48,8,little,false,1,0,0,255,0,,0 accel 1 decel 2 settle
tx,0x311,SERVO_STATUS_2,1,8,saturated,56,8,little,false,1,0,0,1,0,,power on torque limit
tx,0x312,SERVO_PHASE_DRIVE,1,6,drive_u,0,16,little,true,0.01,0,-327.68,327.67,0,,phase U drive
tx,0x312,SERVO_PHASE_DRIVE,1,6,drive_v,16,16,little,true,0.01,0,-327.68,327.67,0,,phase V drive
tx,0x312,SERVO_PHASE_DRIVE,1,6,drive_w,32,16,little,true,0.01,0,-327.68,327.67,0,,phase W drive
`
