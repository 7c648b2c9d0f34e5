package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/jsphweid/orchid/midiport"
	"github.com/jsphweid/orchid/theory"
)

var monitorPortName string

func init() {
	monitorCmd.Flags().StringVar(&monitorPortName, "port", "", "input port name (default: first available)")
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print all incoming MIDI messages",
	Long:  `Print all incoming MIDI messages. Useful for finding the CC numbers your controller sends.`,
	Run: func(cmd *cobra.Command, args []string) {
		monitor()
	},
}

func monitor() {
	defer midi.CloseDriver()

	in, err := midiport.FindInput(monitorPortName)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}
	fmt.Printf("Listening on: %v\n", in.String())
	fmt.Println("Press keys, turn knobs, push buttons... Ctrl+C to quit")

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel, cc, val, prog uint8
		var rel int16
		var abs uint16
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			fmt.Printf("  NOTE ON:  %v (note=%v, vel=%v)\n", theory.NoteName(key), key, vel)
		case msg.GetNoteEnd(&ch, &key):
			fmt.Printf("  NOTE OFF: %v (note=%v)\n", theory.NoteName(key), key)
		case msg.GetControlChange(&ch, &cc, &val):
			fmt.Printf("  CC %3d = %3d\n", cc, val)
		case msg.GetProgramChange(&ch, &prog):
			fmt.Printf("  PROGRAM %v\n", prog)
		case msg.GetPitchBend(&ch, &rel, &abs):
			fmt.Printf("  PITCH BEND: %v\n", rel)
		default:
			fmt.Printf("  %s\n", msg)
		}
	})
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}
	defer stop()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	<-sigC
	fmt.Println("\nMonitor stopped")
}
