package cmd

import (
	"fmt"
	"strconv"

	"github.com/smazurov/netled/internal/indicator"
	"github.com/spf13/cobra"
)

// CreateClassifyCmd creates the classify command, which prints the signal
// class the cellular LED would show for a reading.
func CreateClassifyCmd() *cobra.Command {
	var technology string
	var fromAsu bool

	cmd := &cobra.Command{
		Use:   "classify <level>",
		Short: "Print the signal class for a cellular reading",
		Long: `Maps a signal level (0-4) to the class shown on the cellular LED. ` +
			`With --asu the argument is a GSM asu value (0-31, 99 unknown) converted the same way the modem poller does.`,
		Example: `  netled classify 3
  netled classify --technology cdma 4
  netled classify --asu 17`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid level %q: %w", args[0], err)
			}

			tech := indicator.ParseRadioTechnology(technology)
			var reading indicator.Reading
			if fromAsu {
				tech = indicator.RadioGSM
				reading = indicator.GSMReadingFromAsu(value)
			} else {
				reading = indicator.Reading{Level: value}
			}

			class := indicator.Classify(tech, measurementFor(tech, reading))
			fmt.Fprintf(cmd.OutOrStdout(), "technology=%s level=%d dbm=%d class=%s led=%d\n",
				tech, reading.Level, reading.Dbm, class, indicator.Level(class).Value())
			return nil
		},
	}

	cmd.Flags().StringVarP(&technology, "technology", "t", "gsm", "Radio technology (gsm, cdma, sip, none)")
	cmd.Flags().BoolVar(&fromAsu, "asu", false, "Treat the argument as a GSM asu value")
	return cmd
}

// measurementFor puts reading in the field tech selects.
func measurementFor(tech indicator.RadioTechnology, reading indicator.Reading) indicator.SignalMeasurement {
	var m indicator.SignalMeasurement
	switch tech {
	case indicator.RadioGSM:
		m.GSM = reading
	case indicator.RadioCDMA:
		m.CDMA = reading
	default:
		m.Generic = reading
	}
	return m
}
