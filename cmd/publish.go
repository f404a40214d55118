package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/smazurov/netled/internal/indicator"
	"github.com/smazurov/netled/internal/logging"
	"github.com/smazurov/netled/internal/nats"
	"github.com/spf13/cobra"
)

// CreatePublishCmd creates the publish command, which sends one
// connectivity event to a running daemon over NATS.
func CreatePublishCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "publish <wifi|ethernet|hotspot|signal> <value>",
		Short: "Send a connectivity event over NATS",
		Long: `Publishes an event on netled.events.<kind>. ` +
			`wifi and ethernet take on/off, hotspot takes the access point state code (10-13), ` +
			`signal takes a GSM asu value (0-31, 99 unknown).`,
		Example: `  netled publish wifi on
  netled publish ethernet off
  netled publish hotspot 13
  netled publish signal 17`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := buildMessage(args[0], args[1])
			if err != nil {
				return err
			}

			pub := nats.NewPublisher(url, "netled-cli", logging.GetLogger("publish"))
			if err := pub.Connect(); err != nil {
				return err
			}
			defer pub.Close()

			if err := pub.Publish(msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", msg.Subject())
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "nats://127.0.0.1:4222", "NATS server URL")
	return cmd
}

func buildMessage(kind, value string) (nats.Message, error) {
	ts := time.Now().Format(time.RFC3339)

	switch kind {
	case "wifi", "ethernet":
		on, err := parseOnOff(value)
		if err != nil {
			return nil, err
		}
		if kind == "wifi" {
			return nats.WiFiMessage{Enabled: on, Timestamp: ts}, nil
		}
		return nats.EthernetMessage{Connected: on, Timestamp: ts}, nil

	case "hotspot":
		code, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid hotspot state %q: %w", value, err)
		}
		return nats.HotspotMessage{State: code, Timestamp: ts}, nil

	case "signal":
		asu, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid asu %q: %w", value, err)
		}
		return nats.SignalMessage{
			Technology:  indicator.RadioGSM,
			Measurement: indicator.SignalMeasurement{GSM: indicator.GSMReadingFromAsu(asu)},
			Timestamp:   ts,
		}, nil

	default:
		return nil, fmt.Errorf("unknown event kind %q (want wifi, ethernet, hotspot or signal)", kind)
	}
}

func parseOnOff(value string) (bool, error) {
	switch value {
	case "on", "up", "enabled", "connected":
		return true, nil
	case "off", "down", "disabled", "disconnected":
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid state %q (want on or off)", value)
	}
	return b, nil
}
