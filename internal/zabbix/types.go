package zabbix

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Scalar holds a Zabbix field that the API normally sends as a string but
// which may arrive as a number, a bool or null. It always decodes.
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Scalar(v)
	case b[0] == '{' || b[0] == '[':
		// Wrong shape; degrade to empty instead of failing the whole call.
		*s = ""
	default:
		*s = Scalar(b)
	}
	return nil
}

func (s Scalar) String() string { return string(s) }

// Float parses the value, returning 0 when it is empty, not numeric or
// not finite (NaN and infinities do not survive JSON encoding).
func (s Scalar) Float() float64 {
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int parses the value, returning 0 when it is empty or not an integer.
func (s Scalar) Int() int64 {
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return int64(s.Float())
	}
	return n
}

// Host is one entry of host.get.
type Host struct {
	HostID     Scalar      `json:"hostid"`
	Host       Scalar      `json:"host"`
	Status     Scalar      `json:"status"`
	Available  Scalar      `json:"available"`
	Interfaces []Interface `json:"interfaces"`
}

// Interface is one entry of hostinterface.get or host.get's selectInterfaces.
type Interface struct {
	IP        Scalar `json:"ip"`
	Available Scalar `json:"available"`
}

// Item is one entry of item.get.
type Item struct {
	Name      Scalar `json:"name"`
	Key       Scalar `json:"key_"`
	LastValue Scalar `json:"lastvalue"`
	LastClock Scalar `json:"lastclock"`
}

// TriggerHost is the host reference expanded by selectHosts.
type TriggerHost struct {
	Host Scalar `json:"host"`
}

// Trigger is one entry of trigger.get.
type Trigger struct {
	TriggerID   Scalar        `json:"triggerid"`
	Description Scalar        `json:"description"`
	Priority    Scalar        `json:"priority"`
	LastChange  Scalar        `json:"lastchange"`
	Value       Scalar        `json:"value"`
	Hosts       []TriggerHost `json:"hosts"`
}
