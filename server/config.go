package server

import (
	"time"

	"gopkg.in/ini.v1"
)

type Config struct {
	Addr         string
	PushInterval time.Duration // minimum time between pushed frames
	HistorySize  int
	ParameterSet string
	MaxLevel     int // finest refinement level a client may request
}

// LoadConfig reads the [server] section. Missing keys take their defaults.
func LoadConfig(file *ini.File) Config {
	sec := file.Section("server")
	return Config{
		Addr:         sec.Key("Addr").MustString(":9000"),
		PushInterval: sec.Key("PushInterval").MustDuration(100 * time.Millisecond),
		HistorySize:  sec.Key("HistorySize").MustInt(100),
		ParameterSet: sec.Key("ParameterSet").MustString("Nallusamy2007"),
		MaxLevel:     sec.Key("MaxLevel").MustInt(4),
	}
}
