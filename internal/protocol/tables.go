package protocol

import "fmt"

// Opcode tables populated from the published command tables of the
// standard. The decoder only selects tables; missing entries degrade
// to placeholder labels.

// specialEnableDeviceType is the special command address byte that
// switches the extended opcode table for the following frame.
const specialEnableDeviceType = 0xC1

// specialCommands maps a special command address byte to its name.
// Special commands occupy the odd address bytes between the group and
// broadcast ranges; each carries a one-byte parameter in the opcode
// slot. ENABLE DEVICE TYPE (0xC1) is handled separately by the
// decoder.
var specialCommands = map[byte]string{
	0xA1: "TERMINATE",
	0xA3: "DATA TRANSFER REGISTER (DTR0)",
	0xA5: "INITIALISE",
	0xA7: "RANDOMISE",
	0xA9: "COMPARE",
	0xAB: "WITHDRAW",
	0xAD: "PING",
	0xB1: "SEARCHADDRH",
	0xB3: "SEARCHADDRM",
	0xB5: "SEARCHADDRL",
	0xB7: "PROGRAM SHORT ADDRESS",
	0xB9: "VERIFY SHORT ADDRESS",
	0xBB: "QUERY SHORT ADDRESS",
	0xC3: "DATA TRANSFER REGISTER 1 (DTR1)",
	0xC5: "DATA TRANSFER REGISTER 2 (DTR2)",
	0xC7: "WRITE MEMORY LOCATION (DTR1, DTR0)",
	0xC9: "WRITE MEMORY LOCATION - NO REPLY (DTR1, DTR0)",
}

// gearCommands is the standard 16-bit control gear opcode table,
// applicable whatever device type is active. Scene, group and query
// ranges are filled in programmatically below.
var gearCommands = map[byte]string{
	0x00: "OFF",
	0x01: "UP",
	0x02: "DOWN",
	0x03: "STEP UP",
	0x04: "STEP DOWN",
	0x05: "RECALL MAX LEVEL",
	0x06: "RECALL MIN LEVEL",
	0x07: "STEP DOWN AND OFF",
	0x08: "ON AND STEP UP",
	0x09: "ENABLE DAPC SEQUENCE",
	0x0A: "GO TO LAST ACTIVE LEVEL",
	0x20: "RESET",
	0x21: "STORE ACTUAL LEVEL IN DTR0",
	0x22: "SAVE PERSISTENT VARIABLES",
	0x23: "SET OPERATING MODE (DTR0)",
	0x24: "RESET MEMORY BANK (DTR0)",
	0x25: "IDENTIFY DEVICE",
	0x2A: "SET MAX LEVEL (DTR0)",
	0x2B: "SET MIN LEVEL (DTR0)",
	0x2C: "SET SYSTEM FAILURE LEVEL (DTR0)",
	0x2D: "SET POWER ON LEVEL (DTR0)",
	0x2E: "SET FADE TIME (DTR0)",
	0x2F: "SET FADE RATE (DTR0)",
	0x30: "SET EXTENDED FADE TIME (DTR0)",
	0x80: "SET SHORT ADDRESS (DTR0)",
	0x81: "ENABLE WRITE MEMORY",
	0x90: "QUERY STATUS",
	0x91: "QUERY CONTROL GEAR PRESENT",
	0x92: "QUERY LAMP FAILURE",
	0x93: "QUERY LAMP POWER ON",
	0x94: "QUERY LIMIT ERROR",
	0x95: "QUERY RESET STATE",
	0x96: "QUERY MISSING SHORT ADDRESS",
	0x97: "QUERY VERSION NUMBER",
	0x98: "QUERY CONTENT DTR0",
	0x99: "QUERY DEVICE TYPE",
	0x9A: "QUERY PHYSICAL MINIMUM",
	0x9B: "QUERY POWER FAILURE",
	0x9C: "QUERY CONTENT DTR1",
	0x9D: "QUERY CONTENT DTR2",
	0x9E: "QUERY OPERATING MODE",
	0x9F: "QUERY LIGHT SOURCE TYPE",
	0xA0: "QUERY ACTUAL LEVEL",
	0xA1: "QUERY MAX LEVEL",
	0xA2: "QUERY MIN LEVEL",
	0xA3: "QUERY POWER ON LEVEL",
	0xA4: "QUERY SYSTEM FAILURE LEVEL",
	0xA5: "QUERY FADE TIME/FADE RATE",
	0xA6: "QUERY MANUFACTURER SPECIFIC MODE",
	0xA7: "QUERY NEXT DEVICE TYPE",
	0xA8: "QUERY EXTENDED FADE TIME",
	0xAA: "QUERY CONTROL GEAR FAILURE",
	0xC0: "QUERY GROUPS 0-7",
	0xC1: "QUERY GROUPS 8-15",
	0xC2: "QUERY RANDOM ADDRESS (H)",
	0xC3: "QUERY RANDOM ADDRESS (M)",
	0xC4: "QUERY RANDOM ADDRESS (L)",
	0xC5: "READ MEMORY LOCATION (DTR1, DTR0)",
}

func init() {
	for i := 0; i < 16; i++ {
		gearCommands[byte(0x10+i)] = fmt.Sprintf("GO TO SCENE %d", i)
		gearCommands[byte(0x40+i)] = fmt.Sprintf("STORE DTR0 AS SCENE %d", i)
		gearCommands[byte(0x50+i)] = fmt.Sprintf("REMOVE FROM SCENE %d", i)
		gearCommands[byte(0x60+i)] = fmt.Sprintf("ADD TO GROUP %d", i)
		gearCommands[byte(0x70+i)] = fmt.Sprintf("REMOVE FROM GROUP %d", i)
		gearCommands[byte(0xB0+i)] = fmt.Sprintf("QUERY SCENE LEVEL %d", i)
	}
}

// extendedCommands holds the device-type specific 16-bit opcode
// tables. They cover the application extended range; anything not
// listed there decodes to a placeholder.
var extendedCommands = map[DeviceType]map[byte]string{
	DeviceEmergency: {
		0xE0: "REST",
		0xE1: "INHIBIT",
		0xE2: "RE-LIGHT / RESET INHIBIT",
		0xE3: "START FUNCTION TEST",
		0xE4: "START DURATION TEST",
		0xE5: "STOP TEST",
		0xE6: "RESET FUNCTION TEST DONE FLAG",
		0xE7: "RESET DURATION TEST DONE FLAG",
		0xE8: "RESET LAMP TIME",
		0xF1: "QUERY BATTERY CHARGE",
		0xF2: "QUERY TEST TIMING (DTR0)",
		0xF3: "QUERY DURATION TEST RESULT",
		0xF4: "QUERY LAMP EMERGENCY TIME",
		0xF5: "QUERY LAMP TOTAL OPERATION TIME",
		0xF6: "QUERY EMERGENCY LEVEL",
		0xF7: "QUERY EMERGENCY MIN LEVEL",
		0xF8: "QUERY EMERGENCY MAX LEVEL",
		0xF9: "QUERY EMERGENCY MODE",
		0xFA: "QUERY FEATURES",
		0xFB: "QUERY FAILURE STATUS",
		0xFC: "QUERY EMERGENCY STATUS",
		0xFF: "QUERY EXTENDED VERSION NUMBER",
	},
	DeviceLED: {
		0xE0: "REFERENCE SYSTEM POWER",
		0xE3: "SELECT DIMMING CURVE (DTR0)",
		0xE4: "SET FAST FADE TIME (DTR0)",
		0xED: "QUERY CONTROL GEAR TYPE",
		0xEE: "QUERY DIMMING CURVE",
		0xF0: "QUERY FEATURES",
		0xF1: "QUERY FAILURE STATUS",
		0xF4: "QUERY LOAD DECREASE",
		0xF5: "QUERY LOAD INCREASE",
		0xF7: "QUERY THERMAL SHUTDOWN",
		0xF8: "QUERY THERMAL OVERLOAD",
		0xF9: "QUERY REFERENCE RUNNING",
		0xFA: "QUERY REFERENCE MEASUREMENT FAILED",
		0xFD: "QUERY FAST FADE TIME",
		0xFE: "QUERY MIN FAST FADE TIME",
		0xFF: "QUERY EXTENDED VERSION NUMBER",
	},
	DeviceColour: {
		0xE0: "SET TEMPORARY X-COORDINATE (DTR1:DTR0)",
		0xE1: "SET TEMPORARY Y-COORDINATE (DTR1:DTR0)",
		0xE2: "ACTIVATE",
		0xE7: "SET TEMPORARY COLOUR TEMPERATURE (DTR1:DTR0)",
		0xE8: "SET TEMPORARY PRIMARY N DIMLEVEL (DTR2, DTR1:DTR0)",
		0xE9: "SET TEMPORARY RGB DIMLEVEL (DTR2, DTR1, DTR0)",
		0xEA: "SET TEMPORARY WAF DIMLEVEL (DTR2, DTR1, DTR0)",
		0xEB: "SET TEMPORARY RGBWAF CONTROL (DTR0)",
		0xEC: "COPY REPORT TO TEMPORARY",
		0xF0: "STORE TY PRIMARY N (DTR2, DTR1, DTR0)",
		0xF2: "STORE GEAR FEATURES/STATUS (DTR0)",
		0xF8: "QUERY GEAR FEATURES/STATUS",
		0xF9: "QUERY COLOUR STATUS",
		0xFA: "QUERY COLOUR TYPE FEATURES",
		0xFB: "QUERY COLOUR VALUE (DTR0)",
		0xFC: "QUERY RGBWAF CONTROL",
		0xFF: "QUERY EXTENDED VERSION NUMBER",
	},
}

// deviceCommandKey selects a 24-bit opcode table entry: the instance
// byte plus the opcode byte.
type deviceCommandKey struct {
	Instance byte
	Opcode   byte
}

// deviceCommands is the 24-bit control device opcode table, keyed per
// active device type. The DeviceNone entry applies regardless of
// carried context; instance byte 0xFE addresses the device as a whole.
var deviceCommands = map[DeviceType]map[deviceCommandKey]string{
	DeviceNone: {
		{0xFE, 0x00}: "IDENTIFY DEVICE",
		{0xFE, 0x01}: "RESET POWER CYCLE SEEN",
		{0xFE, 0x10}: "RESET",
		{0xFE, 0x11}: "RESET MEMORY BANK (DTR0)",
		{0xFE, 0x14}: "SET SHORT ADDRESS (DTR0)",
		{0xFE, 0x15}: "ENABLE WRITE MEMORY",
		{0xFE, 0x16}: "ENABLE APPLICATION CONTROLLER",
		{0xFE, 0x17}: "DISABLE APPLICATION CONTROLLER",
		{0xFE, 0x18}: "SET OPERATING MODE (DTR0)",
		{0xFE, 0x19}: "ADD TO DEVICE GROUPS 0-15 (DTR2:DTR1)",
		{0xFE, 0x1A}: "ADD TO DEVICE GROUPS 16-31 (DTR2:DTR1)",
		{0xFE, 0x1B}: "REMOVE FROM DEVICE GROUPS 0-15 (DTR2:DTR1)",
		{0xFE, 0x1C}: "REMOVE FROM DEVICE GROUPS 16-31 (DTR2:DTR1)",
		{0xFE, 0x1D}: "START QUIESCENT MODE",
		{0xFE, 0x1E}: "STOP QUIESCENT MODE",
		{0xFE, 0x1F}: "ENABLE POWER CYCLE NOTIFICATION",
		{0xFE, 0x20}: "DISABLE POWER CYCLE NOTIFICATION",
		{0xFE, 0x21}: "SAVE PERSISTENT VARIABLES",
		{0xFE, 0x30}: "QUERY DEVICE STATUS",
		{0xFE, 0x31}: "QUERY APPLICATION CONTROLLER ERROR",
		{0xFE, 0x32}: "QUERY INPUT DEVICE ERROR",
		{0xFE, 0x33}: "QUERY MISSING SHORT ADDRESS",
		{0xFE, 0x34}: "QUERY VERSION NUMBER",
		{0xFE, 0x35}: "QUERY NUMBER OF INSTANCES",
		{0xFE, 0x36}: "QUERY CONTENT DTR0",
		{0xFE, 0x37}: "QUERY CONTENT DTR1",
		{0xFE, 0x38}: "QUERY CONTENT DTR2",
		{0xFE, 0x39}: "QUERY RANDOM ADDRESS (H)",
		{0xFE, 0x3A}: "QUERY RANDOM ADDRESS (M)",
		{0xFE, 0x3B}: "QUERY RANDOM ADDRESS (L)",
	},
}

// lookupOpcode16 resolves a 16-bit application opcode against the
// active device type's extended table first, then the standard gear
// table.
func lookupOpcode16(deviceType DeviceType, opcode byte) (string, bool) {
	if table, ok := extendedCommands[deviceType]; ok {
		if name, ok := table[opcode]; ok {
			return name, true
		}
	}
	// The application extended range belongs to the device type
	// tables; the standard table never names it.
	if opcode >= 0xE0 {
		return "", false
	}
	name, ok := gearCommands[opcode]
	return name, ok
}

// lookupOpcode24 resolves a 24-bit opcode through the control device
// tables, preferring the active device type's table over the common
// one.
func lookupOpcode24(deviceType DeviceType, instance, opcode byte) (string, bool) {
	key := deviceCommandKey{Instance: instance, Opcode: opcode}
	if table, ok := deviceCommands[deviceType]; ok && deviceType != DeviceNone {
		if name, ok := table[key]; ok {
			return name, true
		}
	}
	name, ok := deviceCommands[DeviceNone][key]
	return name, ok
}
