package netconf

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/nabbar/netlink-sync/nlerr"
)

// xmlConfig mirrors the §6.2 wire shape:
//
//	<config>
//	  <property name="logLevel">warning</property>
//	  <property name="connectResendInterval">1.0</property>
//	  ...
//	</config>
type xmlConfig struct {
	XMLName    xml.Name      `xml:"config"`
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Load reads the §6.2 config XML from r into a Configuration seeded with
// Default(). Unknown property names are ignored (§6.2: "Unknown
// tags/properties warn and are ignored"); ignored names are returned in
// warnings so a host can log them through its own logger (config loading
// itself is an external collaborator per spec.md §1, this core only
// parses the bytes). An absent file is the caller's concern: Load never
// opens one, it only decodes what it is given.
func Load(r io.Reader) (Configuration, []string, error) {
	cfg := Default()

	var doc xmlConfig
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return cfg, nil, nlerr.Wrap(nlerr.KindParseError, err, "malformed config xml")
	}

	var warnings []string
	for _, p := range doc.Properties {
		if !applyProperty(&cfg, p.Name, p.Value) {
			warnings = append(warnings, "unknown config property: "+p.Name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, warnings, err
	}
	return cfg, warnings, nil
}

func applyProperty(cfg *Configuration, name, value string) bool {
	switch name {
	case "logLevel":
		switch LogLevel(value) {
		case LogError, LogWarning, LogInfo, LogDebug:
			cfg.LogLevel = LogLevel(value)
		default:
			return false
		}
	case "connectResendInterval":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		cfg.ConnectResendInterval = f
	case "connectTimeout":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		cfg.ConnectTimeout = f
	case "reliableResendInterval":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		cfg.ReliableResendInterval = f
	case "reliableTimeout":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		cfg.ReliableTimeout = f
	default:
		return false
	}
	return true
}
