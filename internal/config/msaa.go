package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Msaa is the multisample setting of the rectangle pass.
type Msaa int

const (
	MsaaOff Msaa = iota
	MsaaX2
	MsaaX4
	MsaaX8
	MsaaX16
)

var msaaNames = [...]string{"off", "2x", "4x", "8x", "16x"}

// SampleCount returns the number of samples per pixel.
func (m Msaa) SampleCount() int {
	if !m.valid() {
		return 1
	}
	return 1 << int(m)
}

// MsaaFromSampleCount maps 1, 2, 4, 8 or 16 samples to a setting.
func MsaaFromSampleCount(n int) (Msaa, error) {
	for m := MsaaOff; m <= MsaaX16; m++ {
		if m.SampleCount() == n {
			return m, nil
		}
	}
	return MsaaOff, fmt.Errorf("config: no msaa setting for %d samples", n)
}

func (m Msaa) valid() bool { return m >= MsaaOff && m <= MsaaX16 }

// String returns "off", "2x", "4x", "8x" or "16x".
func (m Msaa) String() string {
	if !m.valid() {
		return fmt.Sprintf("Msaa(%d)", int(m))
	}
	return msaaNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Msaa) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("config: invalid msaa %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts the String form, "x4" style names and bare sample
// counts.
func (m *Msaa) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	switch s {
	case "off", "none", "1", "1x", "x1":
		*m = MsaaOff
		return nil
	}
	s = strings.TrimPrefix(strings.TrimSuffix(s, "x"), "x")
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || fmt.Sprint(n) != s {
		return fmt.Errorf("config: invalid msaa %q", text)
	}
	v, err := MsaaFromSampleCount(n)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Msaa.
func (m *Msaa) UnmarshalYAML(value *yaml.Node) error {
	return m.UnmarshalText([]byte(value.Value))
}

// MarshalYAML implements yaml.Marshaler for Msaa.
func (m Msaa) MarshalYAML() (any, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// Set implements flag.Value.
func (m *Msaa) Set(s string) error { return m.UnmarshalText([]byte(s)) }
