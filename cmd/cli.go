// Package cmd defines the command line surface: live capture, offline song
// rendering, device discovery and catalog management.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"nitemix/internal/action"
	"nitemix/internal/analysis"
	"nitemix/internal/audio"
	"nitemix/internal/blend"
	"nitemix/internal/buffer"
	"nitemix/internal/catalog"
	"nitemix/internal/config"
	"nitemix/internal/dsp"
	applog "nitemix/internal/log"
	"nitemix/internal/mixer"
	"nitemix/internal/transport"
	"nitemix/internal/transport/udp"
	"nitemix/internal/video"
	"nitemix/pkg/build"
)

// Execute parses arguments and runs the selected command until it finishes
// or ctx is canceled.
func Execute(ctx context.Context) error {
	buildInfo := build.GetBuildFlags()

	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "",
		"Path to the YAML configuration file. Defaults to ./config.yaml when present.")

	rootCmd.AddCommand(
		devicesCommand(),
		listenCommand(&configPath),
		renderCommand(&configPath),
		segmentsCommand(&configPath),
		showsCommand(&configPath),
	)

	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntimeConfig loads the configuration and applies its logging level.
func loadRuntimeConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	} else if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	return cfg, nil
}

func devicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()
			return audio.ListDevices()
		},
	}
}

func listenCommand(configPath *string) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "listen [clip-dir-1 clip-dir-2]",
		Short: "Capture live audio and publish blend strengths, optionally compositing a clip pair",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("listen takes no clips or exactly two clip directories")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRuntimeConfig(*configPath)
			if err != nil {
				return err
			}
			return runListen(cmd.Context(), cfg, args, outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "listen-out", "Directory for composited frames when clips are given")
	return cmd
}

// runListen wires capture -> detection -> actions -> transports and blocks
// until the context is canceled. With a clip pair, the published strengths
// also drive a queue-fed frame loop compositing into outDir.
func runListen(ctx context.Context, cfg *config.Config, clipDirs []string, outDir string) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	// PortAudio delivers int32 callback buffers regardless of the device's
	// native width, so the live path always normalizes by the int32 range.
	processor, err := buildProcessor(cfg, int(cfg.Audio.SampleRate), true, audio.Int32Format.NormalizationFactor())
	if err != nil {
		return err
	}
	aggregator, err := buildAggregator(cfg)
	if err != nil {
		return err
	}

	targets := []transport.Transport{transport.NewLoggingTransport()}
	if cfg.Transport.WSEnabled {
		targets = append(targets, transport.NewWebSocketTransport(cfg.Transport.WSAddress))
	}

	var publisher *udp.Publisher
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		tracker := transport.NewTracker()
		publisher, err = udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, tracker)
		if err != nil {
			return err
		}
		targets = append(targets, tracker)
	}
	var streamer *mixer.QueueStreamer
	if len(clipDirs) == 2 {
		queue := transport.NewStrengthQueue()
		targets = append(targets, queue)
		if streamer, err = buildQueueStreamer(cfg, clipDirs[0], clipDirs[1], outDir, queue); err != nil {
			return err
		}
	}
	out := transport.NewFanout(targets...)
	defer out.Close()

	chunkMS := float64(cfg.Audio.FramesPerBuffer) / cfg.Audio.SampleRate * 1000
	listener, err := mixer.NewListener(processor, aggregator, out, chunkMS)
	if err != nil {
		return err
	}

	capture, err := audio.NewCapture(audio.CaptureConfig{
		DeviceID:        cfg.Audio.InputDevice,
		SampleRate:      cfg.Audio.SampleRate,
		Channels:        cfg.Audio.InputChannels,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		LowLatency:      cfg.Audio.LowLatency,
	}, listener.HandleChunk)
	if err != nil {
		return err
	}

	if err := capture.Start(); err != nil {
		return err
	}
	if publisher != nil {
		publisher.Start()
	}

	var streamerDone chan error
	if streamer != nil {
		streamerDone = make(chan error, 1)
		go func() { streamerDone <- streamer.Stream(ctx) }()
	}
	applog.Infof("Listen: running, press Ctrl+C to stop")

	<-ctx.Done()

	if err := capture.Stop(); err != nil {
		applog.Errorf("Listen: stopping capture: %v", err)
	}
	listener.Terminate()
	if publisher != nil {
		if err := publisher.Stop(); err != nil {
			applog.Errorf("Listen: stopping publisher: %v", err)
		}
	}
	if streamerDone != nil {
		if err := <-streamerDone; err != nil && !errors.Is(err, context.Canceled) {
			applog.Errorf("Listen: frame loop: %v", err)
		}
	}
	return nil
}

// buildQueueStreamer assembles the live compositing loop fed by the strength
// queue.
func buildQueueStreamer(cfg *config.Config, clipDirA, clipDirB, outDir string, queue *transport.StrengthQueue) (*mixer.QueueStreamer, error) {
	clipA, err := video.LoadClip(clipDirA)
	if err != nil {
		return nil, err
	}
	clipB, err := video.LoadClip(clipDirB)
	if err != nil {
		return nil, err
	}
	source, err := video.NewPairSource(clipA, clipB, nil)
	if err != nil {
		return nil, err
	}
	mode, err := blend.ParseMode(cfg.Blend.Operation)
	if err != nil {
		return nil, err
	}
	blender, err := blend.New(mode)
	if err != nil {
		return nil, err
	}
	writer, err := video.NewPNGWriter(outDir, video.DefaultZeroPadding)
	if err != nil {
		return nil, err
	}
	return mixer.NewQueueStreamer(source, blender, queue, writer, clipA.Metadata.FPS)
}

func renderCommand(configPath *string) *cobra.Command {
	var outDir, alphaPath string

	cmd := &cobra.Command{
		Use:   "render <song.wav> <clip-dir-1> <clip-dir-2>",
		Short: "Analyze a song and render the blended frame sequence",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRuntimeConfig(*configPath)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, args[0], args[1], args[2], alphaPath, outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "render-out", "Directory for the rendered frame sequence")
	cmd.Flags().StringVarP(&alphaPath, "alpha", "a", "", "Optional PNG alpha mask")
	return cmd
}

// runRender analyzes the whole song up front, then streams the clip pair for
// the song's duration with the aggregator driven by the frame clock.
func runRender(ctx context.Context, cfg *config.Config, songPath, clipDirA, clipDirB, alphaPath, outDir string) error {
	song, err := audio.ReadSong(songPath)
	if err != nil {
		return err
	}

	clipA, err := video.LoadClip(clipDirA)
	if err != nil {
		return err
	}
	clipB, err := video.LoadClip(clipDirB)
	if err != nil {
		return err
	}
	var mask *blend.Frame
	if alphaPath != "" {
		if mask, err = video.LoadFrame(alphaPath); err != nil {
			return err
		}
	}
	source, err := video.NewPairSource(clipA, clipB, mask)
	if err != nil {
		return err
	}

	mode, err := blend.ParseMode(cfg.Blend.Operation)
	if err != nil {
		return err
	}
	blender, err := blend.New(mode)
	if err != nil {
		return err
	}

	aggregator, err := buildAggregator(cfg)
	if err != nil {
		return err
	}
	features, err := analyzeSong(cfg, song)
	if err != nil {
		return err
	}
	if err := aggregator.SetFeatures(features); err != nil {
		return fmt.Errorf("render: song yielded no usable features (too short?): %w", err)
	}

	writer, err := video.NewPNGWriter(outDir, video.DefaultZeroPadding)
	if err != nil {
		return err
	}
	streamer, err := mixer.NewSongStreamer(source, blender, aggregator, writer, clipA.Metadata.FPS)
	if err != nil {
		return err
	}

	duration := time.Duration(song.DurationSeconds() * float64(time.Second))
	applog.Infof("Render: %s (%.1fs) over %q + %q into %s", song.Name, song.DurationSeconds(), clipDirA, clipDirB, outDir)

	streamCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()
	if err := streamer.Stream(streamCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	rendered := video.Metadata{
		Name:      filepath.Base(outDir),
		NumFrames: float64(writer.FramesWritten()),
		FPS:       clipA.Metadata.FPS,
		Extension: ".png",
		Width:     clipA.Metadata.Width,
		Height:    clipA.Metadata.Height,
	}
	if err := rendered.WriteMetadata(outDir); err != nil {
		return err
	}
	applog.Infof("Render: %d frames written to %s", writer.FramesWritten(), outDir)
	return nil
}

// analyzeSong feeds the song through the detectors chunk by chunk and merges
// the snapshots: the last BPM reading and the last pitch sequence win.
func analyzeSong(cfg *config.Config, song *audio.Song) (analysis.Features, error) {
	normFactor := audio.Format{Name: "song", BitsPerSample: song.BitDepth}.NormalizationFactor()
	processor, err := buildProcessor(cfg, song.SampleRate, false, normFactor)
	if err != nil {
		return analysis.Features{}, err
	}

	chunks, err := song.Chunks(cfg.Audio.FramesPerBuffer)
	if err != nil {
		return analysis.Features{}, err
	}

	var merged analysis.Features
	for _, chunk := range chunks {
		features, err := processor.Process(chunk)
		if err != nil {
			applog.Warnf("Render: skipping chunk: %v", err)
			continue
		}
		if features.HasBPM {
			merged.BPM, merged.HasBPM = features.BPM, true
		}
		if features.Pitches != nil {
			merged.Pitches = features.Pitches
		}
	}
	return merged, nil
}

// buildAggregator constructs the configured trigger actions.
func buildAggregator(cfg *config.Config) (*action.Aggregator, error) {
	var actions []action.Action
	if cfg.Actions.BPMFrequency != "" {
		frequency, err := action.ParseFrequency(cfg.Actions.BPMFrequency)
		if err != nil {
			return nil, err
		}
		bpmAction, err := action.NewBPMAction(frequency, cfg.Actions.BeatsPerBar)
		if err != nil {
			return nil, err
		}
		actions = append(actions, bpmAction)
	}
	if cfg.Actions.MinPitch != "" {
		minPitch, err := analysis.ParseChromaClass(cfg.Actions.MinPitch)
		if err != nil {
			return nil, err
		}
		maxPitch, err := analysis.ParseChromaClass(cfg.Actions.MaxPitch)
		if err != nil {
			return nil, err
		}
		pitchAction, err := action.NewPitchAction(minPitch, maxPitch)
		if err != nil {
			return nil, err
		}
		actions = append(actions, pitchAction)
	}
	return action.NewAggregator(cfg.Actions.BlendFalloff, actions...)
}

// buildProcessor assembles the detector pair. Live detection buffers by
// wall-clock second; offline detection buffers the whole song unbounded so
// the per-second pitch sequence spans second 0 to song end and the frame
// loop can index any second of playback.
func buildProcessor(cfg *config.Config, sampleRate int, live bool, normFactor float64) (*analysis.Processor, error) {
	newAudioBuffer := func() (buffer.Buffer, error) {
		if live {
			return buffer.NewTimed(cfg.Analysis.MaxSecondsInBuffer, cfg.Analysis.MinSecondsInBuffer, sampleRate, nil)
		}
		return buffer.NewSample(0, cfg.Analysis.MinSecondsInBuffer*sampleRate, cfg.Analysis.SamplesToRemove)
	}

	tempoBuffer, err := newAudioBuffer()
	if err != nil {
		return nil, err
	}
	bpmHistory, err := buffer.NewSample(cfg.Analysis.BPMHistoryMax, cfg.Analysis.BPMHistoryMin, 1)
	if err != nil {
		return nil, err
	}
	tempo, err := analysis.NewTempoDetector(
		dsp.NewTempoOracle(cfg.Analysis.HopLength),
		tempoBuffer, bpmHistory, sampleRate,
		cfg.Analysis.ToleranceBPM,
		cfg.Analysis.SamplesToRemove > 0)
	if err != nil {
		return nil, err
	}

	pitchBuffer, err := newAudioBuffer()
	if err != nil {
		return nil, err
	}
	pitch, err := analysis.NewPitchDetector(
		dsp.NewChromaOracle(),
		pitchBuffer, sampleRate,
		cfg.Analysis.HopLength,
		cfg.Analysis.LatestPitchOnly,
		cfg.Analysis.SamplesToRemove > 0)
	if err != nil {
		return nil, err
	}

	return analysis.NewProcessor(tempo, pitch, normFactor)
}

func openCatalog(configPath string) (*catalog.Store, error) {
	cfg, err := loadRuntimeConfig(configPath)
	if err != nil {
		return nil, err
	}
	return catalog.Open(cfg.Catalog.Path)
}

func segmentsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Manage stored mixing segments",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			segments, err := store.ListSegments()
			if err != nil {
				return err
			}
			for _, seg := range segments {
				trigger := ""
				if seg.BPMFrequency != nil {
					trigger = "bpm:" + seg.BPMFrequency.String()
				}
				if seg.MinPitch != nil {
					if trigger != "" {
						trigger += "+"
					}
					trigger += fmt.Sprintf("pitch:%s..%s", seg.MinPitch, seg.MaxPitch)
				}
				fmt.Printf("%s  %s + %s  [%s]  %s falloff=%.1fs\n",
					seg.ID, seg.Video1, seg.Video2, trigger, seg.BlendOperation, seg.BlendFalloff)
			}
			return nil
		},
	}

	var (
		video1, video2, alpha      string
		bpmFrequency               string
		minPitchName, maxPitchName string
		operation                  string
		falloff                    float64
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new segment",
		RunE: func(cmd *cobra.Command, args []string) error {
			seg := catalog.Segment{
				Video1:         video1,
				Video2:         video2,
				Alpha:          alpha,
				BlendOperation: operation,
				BlendFalloff:   falloff,
			}
			if _, err := blend.ParseMode(operation); err != nil {
				return err
			}
			if bpmFrequency != "" {
				frequency, err := action.ParseFrequency(bpmFrequency)
				if err != nil {
					return err
				}
				seg.BPMFrequency = &frequency
			}
			if minPitchName != "" || maxPitchName != "" {
				minPitch, err := analysis.ParseChromaClass(minPitchName)
				if err != nil {
					return err
				}
				maxPitch, err := analysis.ParseChromaClass(maxPitchName)
				if err != nil {
					return err
				}
				seg.MinPitch, seg.MaxPitch = &minPitch, &maxPitch
			}

			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := store.CreateSegment(seg)
			if err != nil {
				return err
			}
			fmt.Println(created.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&video1, "video1", "", "First clip directory")
	addCmd.Flags().StringVar(&video2, "video2", "", "Second clip directory")
	addCmd.Flags().StringVar(&alpha, "alpha", "", "Optional alpha mask path")
	addCmd.Flags().StringVar(&bpmFrequency, "bpm-frequency", "", "BPM trigger frequency (kick, compass, two_compass, four_compass)")
	addCmd.Flags().StringVar(&minPitchName, "min-pitch", "", "Lower bound of the pitch trigger range")
	addCmd.Flags().StringVar(&maxPitchName, "max-pitch", "", "Upper bound of the pitch trigger range")
	addCmd.Flags().StringVar(&operation, "operation", config.DefaultBlendOperation, "Blend operation")
	addCmd.Flags().Float64Var(&falloff, "falloff", config.DefaultBlendFalloff, "Strength falloff in seconds")

	rmCmd := &cobra.Command{
		Use:   "rm <segment-id>",
		Short: "Delete a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.DeleteSegment(args[0])
		},
	}

	cmd.AddCommand(listCmd, addCmd, rmCmd)
	return cmd
}

func showsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shows",
		Short: "Manage presentations (named segment timelines)",
	}

	var width, height int
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a presentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := store.CreatePresentation(catalog.Presentation{
				Name:   args[0],
				Width:  width,
				Height: height,
			})
			if err != nil {
				return err
			}
			fmt.Println(created.ID)
			return nil
		},
	}
	createCmd.Flags().IntVar(&width, "width", 1280, "Output width in pixels")
	createCmd.Flags().IntVar(&height, "height", 720, "Output height in pixels")

	var fromSeconds, toSeconds float64
	addCmd := &cobra.Command{
		Use:   "add <name> <segment-id>",
		Short: "Place a segment on a presentation's timeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.GetPresentationByName(args[0])
			if err != nil {
				return err
			}
			return store.AddSegmentToPresentation(args[1], p.ID, fromSeconds, toSeconds)
		},
	}
	addCmd.Flags().Float64Var(&fromSeconds, "from", 0, "Start second")
	addCmd.Flags().Float64Var(&toSeconds, "to", 0, "End second")

	timelineCmd := &cobra.Command{
		Use:   "timeline <name>",
		Short: "Print a presentation's timeline in start order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.GetPresentationByName(args[0])
			if err != nil {
				return err
			}
			entries, err := store.Timeline(p.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%dx%d)\n", p.Name, p.Width, p.Height)
			for _, e := range entries {
				fmt.Printf("  %7.1fs - %7.1fs  %s\n", e.FromSeconds, e.ToSeconds, e.SegmentID)
			}
			return nil
		},
	}

	cmd.AddCommand(createCmd, addCmd, timelineCmd)
	return cmd
}
