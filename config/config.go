// Package config loads node and transport configuration from an INI file, the format the
// teacher parses EDS object-dictionary files with. Grounded on
// samsamfire/gocanopen's od_parser.go: ini.Load followed by iterating Sections() and matching
// section names against a regular expression to decide what kind of entry each section holds.
// Here the sections are per-transport blocks instead of per-object-dictionary-index blocks, and
// the matched fields are MTU/timeout/redundancy knobs instead of CANopen object metadata.
package config

import (
	"fmt"
	"regexp"
	"time"

	"gopkg.in/ini.v1"

	"github.com/samsamfire/gocyphal/clock"
)

// SessionShape selects which transport/session-table implementation a subscription uses
// (spec section 9's two supported shapes).
type SessionShape string

const (
	ShapeArray SessionShape = "array"
	ShapeMap   SessionShape = "map"
)

// TransportConfig is one [transport.<name>] section's parsed fields.
type TransportConfig struct {
	Name       string
	Kind       string // "can", "serial", "udp"
	MTU        int
	Channel    string // SocketCAN channel, serial port name, or UDP local address
	Subnet     int    // UDP subnet id
	Timeout    clock.Duration
	Redundancy int // N parallel transports for the deduplicator, spec section 4.9
	Shape      SessionShape
}

// NodeConfig is the top-level [node] section plus every configured transport.
type NodeConfig struct {
	NodeID          uint16
	Transports      []TransportConfig
	FilterCapacity  int // spec section 4.12's K
	MaxSubscriptions int
}

var transportSectionRe = regexp.MustCompile(`^transport\.(\w+)$`)

// Load parses an INI file (or, via ini's variadic Load signature, raw bytes) into a
// NodeConfig.
func Load(filePathOrData ...any) (*NodeConfig, error) {
	f, err := ini.Load(filePathOrData[0], filePathOrData[1:]...)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &NodeConfig{}
	node := f.Section("node")
	cfg.NodeID = uint16(node.Key("node_id").MustUint(0))
	cfg.FilterCapacity = node.Key("filter_capacity").MustInt(8)
	cfg.MaxSubscriptions = node.Key("max_subscriptions").MustInt(0)

	for _, section := range f.Sections() {
		m := transportSectionRe.FindStringSubmatch(section.Name())
		if m == nil {
			continue
		}
		timeoutMS := section.Key("timeout_ms").MustInt(1000)
		shape := ShapeMap
		if section.Key("session_shape").String() == string(ShapeArray) {
			shape = ShapeArray
		}
		tc := TransportConfig{
			Name:       m[1],
			Kind:       section.Key("kind").String(),
			MTU:        section.Key("mtu").MustInt(8),
			Channel:    section.Key("channel").String(),
			Subnet:     section.Key("subnet").MustInt(0),
			Timeout:    clock.Duration(time.Duration(timeoutMS) * time.Millisecond / time.Microsecond),
			Redundancy: section.Key("redundancy").MustInt(1),
			Shape:      shape,
		}
		cfg.Transports = append(cfg.Transports, tc)
	}
	return cfg, nil
}
