package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orchid",
	Short: "One-finger chord instrument with a loop recorder",
	Long:  `Turns single MIDI notes into full chord voicings with smooth voice leading, and loop-records the result in layers.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
