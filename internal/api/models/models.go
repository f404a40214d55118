package models

import "github.com/smazurov/netled/internal/indicator"

// Health check models
type HealthData struct {
	Status     string `json:"status" example:"ok" doc:"Service status"`
	Message    string `json:"message" example:"API is healthy" doc:"Status message"`
	Registered bool   `json:"registered" example:"true" doc:"Whether the LED manager receives connectivity events"`
}

type HealthResponse struct {
	Body HealthData
}

// Indicator models
type IndicatorData struct {
	Channel   string `json:"channel" example:"cellular" enum:"wifi,ethernet,cellular" doc:"Indicator channel"`
	Available bool   `json:"available" example:"true" doc:"Whether the board has an LED for this channel"`
	Known     bool   `json:"known" example:"true" doc:"Whether a state was dispatched since the last reset"`
	State     string `json:"state,omitempty" example:"level:good" doc:"Last dispatched state"`
	Value     int    `json:"value" example:"3" doc:"Value written to hardware (0/1, or signal class ordinal)"`
}

type IndicatorsData struct {
	Indicators []IndicatorData `json:"indicators" doc:"One entry per indicator channel"`
}

type IndicatorsResponse struct {
	Body IndicatorsData
}

// Event injection models
type WiFiEventRequest struct {
	Body struct {
		Enabled bool `json:"enabled" example:"true" doc:"Whether Wi-Fi is enabled"`
	}
}

type EthernetEventRequest struct {
	Body struct {
		Connected bool `json:"connected" example:"true" doc:"Whether Ethernet has an address"`
	}
}

type HotspotEventRequest struct {
	Body struct {
		State int `json:"state" example:"13" minimum:"0" doc:"Access point state code: 10 closing, 11 closed, 12 opening, 13 open"`
	}
}

// SignalReading is one encoding of signal power. Omitted fields are zero.
type SignalReading struct {
	Dbm   int `json:"dbm,omitempty" example:"-79" doc:"Signal power in dBm"`
	Asu   int `json:"asu,omitempty" example:"17" doc:"Arbitrary strength unit"`
	Level int `json:"level,omitempty" example:"4" doc:"Bucketed level, 0-4"`
}

type SignalEventRequest struct {
	Body struct {
		Technology string        `json:"technology" example:"gsm" enum:"gsm,cdma,sip,none,unknown" doc:"Radio technology selecting the authoritative reading"`
		Generic    SignalReading `json:"generic,omitempty" doc:"Technology-independent reading"`
		GSM        SignalReading `json:"gsm,omitempty" doc:"GSM reading"`
		CDMA       SignalReading `json:"cdma,omitempty" doc:"CDMA reading"`
	}
}

// Measurement converts the request readings.
func (r *SignalEventRequest) Measurement() indicator.SignalMeasurement {
	conv := func(in SignalReading) indicator.Reading {
		return indicator.Reading{Dbm: in.Dbm, Asu: in.Asu, Level: in.Level}
	}
	return indicator.SignalMeasurement{
		Generic: conv(r.Body.Generic),
		GSM:     conv(r.Body.GSM),
		CDMA:    conv(r.Body.CDMA),
	}
}

type EventAcceptedData struct {
	Accepted bool   `json:"accepted" example:"true" doc:"Event was published on the bus"`
	Event    string `json:"event" example:"wifi" doc:"Event kind"`
}

type EventAcceptedResponse struct {
	Body EventAcceptedData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"a1b2c3d4" doc:"Unique build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}
