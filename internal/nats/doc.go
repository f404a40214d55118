// Package nats carries connectivity events between processes over core NATS.
//
// # Architecture
//
//   - Server: optional embedded NATS server in the daemon (netled)
//   - Bridge: subscribes to the event subjects and publishes to the event bus
//   - Publisher: sends events from platform agents and `netled publish`
//
// # Subject Hierarchy
//
//	netled.events.wifi       # Wi-Fi radio enabled/disabled
//	netled.events.ethernet   # Ethernet connected/disconnected
//	netled.events.hotspot    # access point state code
//	netled.events.signal     # cellular signal measurement
//
// Messages are fire-and-forget JSON. A message that does not decode is
// logged and dropped.
//
// # Debugging with nats CLI
//
//	nats sub "netled.events.>"
//	nats pub netled.events.wifi '{"enabled":true}'
//	nats pub netled.events.hotspot '{"state":13}'
//
// # Message Formats
//
// WiFiMessage (netled.events.wifi):
//
//	{"enabled": true, "timestamp": "2024-01-01T12:00:00Z"}
//
// EthernetMessage (netled.events.ethernet):
//
//	{"connected": true}
//
// The bridge drops Wi-Fi and Ethernet messages without "enabled" or
// "connected".
//
// HotspotMessage (netled.events.hotspot), state 10 closing, 11 closed,
// 12 opening, 13 open:
//
//	{"state": 13}
//
// SignalMessage (netled.events.signal), technology one of gsm, cdma, sip,
// none, unknown:
//
//	{
//	  "technology": "gsm",
//	  "measurement": {
//	    "generic": {"dbm": 0, "asu": 0, "level": 0},
//	    "gsm": {"dbm": -79, "asu": 17, "level": 4},
//	    "cdma": {"dbm": 0, "asu": 0, "level": 0}
//	  }
//	}
package nats
