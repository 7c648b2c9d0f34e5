package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/jsphweid/orchid/config"
	"github.com/jsphweid/orchid/engine"
	"github.com/jsphweid/orchid/instrument"
	"github.com/jsphweid/orchid/looper"
	"github.com/jsphweid/orchid/midiport"
	"github.com/jsphweid/orchid/model"
	"github.com/jsphweid/orchid/smfexport"
	"github.com/jsphweid/orchid/synth"
)

var (
	runConfigPath string
	runDummy      bool
	runServe      bool
	runExportPath string
)

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "config file path (default $ORCHID_CONFIG or ./config.json)")
	runCmd.Flags().BoolVar(&runDummy, "dummy", false, "print notes instead of sending MIDI out")
	runCmd.Flags().BoolVar(&runServe, "serve", false, "serve the status API")
	runCmd.Flags().StringVar(&runExportPath, "export", "", "write the recorded loop as a .mid file on exit")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live chord instrument",
	Long:  `Run the live chord instrument: MIDI in, chord voicings and loop playback out.`,
	Run: func(cmd *cobra.Command, args []string) {
		runLive()
	},
}

// session wires the engine, looper and output together for one live
// run. All fields are touched only from the MIDI listener callback.
type session struct {
	cfg           *config.Config
	eng           *engine.Engine
	loop          *looper.Looper
	out           synth.Output
	instrumentIdx int
	program       uint8
	liveNotes     []uint8
	printStatus   func(f func())
}

func runLive() {
	defer midi.CloseDriver()

	cfg, err := config.Load(config.Path(runConfigPath))
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}

	var out synth.Output
	if runDummy {
		out = synth.NewLogOutput()
	} else if port, err := midiport.FindOutput(cfg.MIDI.DeviceName); err == nil {
		out = synth.NewPortOutput(port)
	} else {
		fmt.Println("Running without MIDI output, printing notes instead")
		out = synth.NewLogOutput()
	}

	s := &session{
		cfg:         cfg,
		eng:         engine.New(cfg.Chord),
		loop:        looper.New(out),
		out:         out,
		printStatus: debounce.New(150 * time.Millisecond),
	}
	s.program = instrument.Program(0)

	in, err := midiport.FindInput(cfg.MIDI.DeviceName)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}

	stop, err := midi.ListenTo(in, s.handleMessage)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}

	if runServe {
		go serveStatus(cfg.Serve.Addr, s.eng, s.loop)
	}

	fmt.Printf("Connected to: %v\n", in.String())
	fmt.Println("Play a key to hear chords. Ctrl+C to quit")

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	<-sigC

	fmt.Println("\nShutting down...")
	stop()
	s.loop.Close()
	out.AllNotesOff(looper.LiveChannel)

	if runExportPath != "" {
		exportLoop(s.loop, runExportPath)
	}
}

func (s *session) handleMessage(msg midi.Message, timestampms int32) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		s.onNoteOn(key, vel)
	case msg.GetNoteEnd(&ch, &key):
		s.onNoteOff()
	case msg.GetControlChange(&ch, &cc, &val):
		s.onControlChange(cc, val)
	}
}

func (s *session) onNoteOn(note, velocity uint8) {
	chord := s.eng.GenerateChord(note, velocity)
	s.playChord(chord)
	s.printStatus(s.statusLine)
}

func (s *session) onNoteOff() {
	s.eng.StopChord()
	s.stopLiveNotes()
}

func (s *session) onControlChange(cc, value uint8) {
	action, param, ok := s.cfg.FindAction(cc)
	if !ok {
		return
	}

	switch action {
	case config.ActionChordType:
		// Buttons send a press and a release; act on the press only.
		if value > 0 && s.eng.SetChordType(param) {
			fmt.Printf("Chord type: %v\n", param)
		}
	case config.ActionInversion:
		s.eng.SetInversion(value)
	case config.ActionSpread:
		s.eng.SetSpread(value)
	case config.ActionVolume:
		s.out.SetParam(looper.LiveChannel, synth.ParamVolume, value)
	case config.ActionReverb:
		s.out.SetParam(looper.LiveChannel, synth.ParamReverb, value)
	case config.ActionInstrument:
		s.selectInstrument(instrument.IndexForCC(value))
	case config.ActionLoopRecord:
		if value > 0 {
			fmt.Printf("Looper: %v\n", s.loop.ToggleRecord(s.program))
		}
	case config.ActionLoopPlayPause:
		if value > 0 {
			fmt.Printf("Looper: %v\n", s.loop.TogglePlayPause())
		}
	case config.ActionLoopUndo:
		if value > 0 {
			s.loop.UndoLayer()
		}
	case config.ActionLoopClear:
		if value > 0 {
			s.loop.ClearAll()
		}
	}

	// A held chord tracks setting changes immediately.
	if chord := s.eng.Regenerate(); len(chord) > 0 {
		s.playChord(chord)
	}
	s.printStatus(s.statusLine)
}

func (s *session) selectInstrument(idx int) {
	if idx == s.instrumentIdx {
		return
	}
	s.instrumentIdx = idx
	inst := instrument.Get(idx)
	s.program = inst.Program
	s.out.ProgramSelect(looper.LiveChannel, inst.Program)
	fmt.Printf("Instrument: %v\n", inst.Name)
}

// playChord replaces whatever is sounding on the live channel and
// feeds the looper while a take is open.
func (s *session) playChord(chord []model.ChordNote) {
	s.stopLiveNotes()
	for _, cn := range chord {
		s.out.NoteOn(looper.LiveChannel, cn.Note, cn.Velocity)
		s.loop.RecordEvent(model.NoteOn, looper.LiveChannel, cn.Note, cn.Velocity, s.program)
		s.liveNotes = append(s.liveNotes, cn.Note)
	}
}

func (s *session) stopLiveNotes() {
	for _, n := range s.liveNotes {
		s.out.NoteOff(looper.LiveChannel, n)
		s.loop.RecordEvent(model.NoteOff, looper.LiveChannel, n, 0, s.program)
	}
	s.liveNotes = nil
}

func (s *session) statusLine() {
	es := s.eng.Status()
	ls := s.loop.Status()
	line := fmt.Sprintf("  %v -> %v", es.ChordName, strings.Join(es.NoteNames, ", "))
	if ls.State != string(looper.Idle) {
		line += fmt.Sprintf("  [loop: %v, %v layers, %.1fs]", ls.State, ls.NumLayers, ls.LoopLength)
	}
	fmt.Println(line)
}

func exportLoop(loop *looper.Looper, path string) {
	layers := loop.Layers()
	if len(layers) == 0 {
		fmt.Println("No recorded layers, skipping export")
		return
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Could not create %v: %v\n", path, err)
		return
	}
	defer f.Close()
	if err := smfexport.Write(f, layers); err != nil {
		fmt.Printf("Could not write %v: %v\n", path, err)
		return
	}
	fmt.Printf("Loop written to %v\n", path)
}
