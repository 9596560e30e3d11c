/*
Interactive face and person track annotator.  Seeds boxes on the first frame
with a face detector or by hand, tracks them through the video and writes
the tracks as CVAT XML along with a raw session dump.

Press 'p' to reseed the boxes on the current frame and 'q' to finish.
*/
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/cobra"
	"github.com/swdee/go-annotrack"
	"github.com/swdee/go-annotrack/cvat"
	"github.com/swdee/go-annotrack/detect"
	"github.com/swdee/go-annotrack/tracker"
	"github.com/swdee/go-annotrack/video"
)

// windowName is the title of the operator window
const windowName = "MultiTracker"

var (
	// rootCmd runs an interactive annotation
	rootCmd = &cli.Command{
		Use:   "annotrack",
		Short: "Annotate face and person tracks in a video",
		Long: "Seed boxes on the first frame with a face detector or by hand, " +
			"track them through the video and export CVAT XML tracks.\n\n" +
			"Keys: 'p' reseeds on the current frame, 'q' finishes and exports. " +
			"During manual selection 's' finishes, any other key selects another box.",
		Args:         cli.NoArgs,
		SilenceUsage: true,
		RunE:         runAnnotate,
	}

	cfg      = annotrack.DefaultConfig()
	useModel = "True"
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.VideoPath, "video", "v", "", "Path to input video file or camera device number")
	flags.StringVarP(&cfg.TrackerKind, "tracker", "t", cfg.TrackerKind, "Tracker type "+fmt.Sprint(tracker.KindNames()))
	flags.StringVarP(&useModel, "model", "m", useModel, "Whether or not to seed boxes with the face detector [True|False]")
	flags.StringVar(&cfg.ModelFile, "model-file", cfg.ModelFile, "Face detector model, ONNX/Caffe/TensorFlow RetinaFace or a Haar cascade .xml")
	flags.StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "CVAT XML annotation file to write")
	flags.StringVar(&cfg.DumpFile, "dump", cfg.DumpFile, "Raw session dump file to write")
	flags.Float64Var(&cfg.ConfThreshold, "threshold", cfg.ConfThreshold, "Minimum face detector confidence")
	flags.Float64Var(&cfg.DetectScale, "scale", cfg.DetectScale, "Scale frames are resized by before face detection")
	flags.IntVar(&cfg.WaitDelay, "wait", cfg.WaitDelay, "Milliseconds to wait for a key press on each frame")
	flags.IntVar(&cfg.AutoReseedAfter, "auto-reseed", cfg.AutoReseedAfter, "Reseed after this many frames of lost tracking, 0 disables")
	flags.StringVar(&cfg.Label, "label", cfg.Label, "Label given to every track")
	flags.Int64Var(&cfg.ColorSeed, "seed", cfg.ColorSeed, "Seed for the identity colors, 0 picks a random seed")

	rootCmd.AddCommand(exportCmd, trackersCmd)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// runAnnotate runs the interactive annotation and writes its results
func runAnnotate(cmd *cli.Command, args []string) error {

	var err error
	cfg.UseDetector, err = annotrack.ParseBoolFlag(useModel)

	if err != nil {
		return err
	}

	registry := tracker.DefaultRegistry()

	if err := cfg.Validate(registry); err != nil {
		return err
	}

	src, err := video.Open(cfg.VideoPath)

	if err != nil {
		return err
	}

	defer src.Close()

	w, h := src.Size()
	log.Printf("Video %s opened, %dx%d at %.2f fps\n", src.Name(), w, h, src.FPS())

	win := video.NewWindow(windowName)
	defer win.Close()

	seederOpts := []annotrack.SeederOption{
		annotrack.WithThreshold(cfg.ConfThreshold),
	}

	if cfg.ColorSeed != 0 {
		seederOpts = append(seederOpts,
			annotrack.WithRand(rand.New(rand.NewSource(cfg.ColorSeed))))
	}

	if cfg.UseDetector {
		det, err := newDetector(cfg)

		if err != nil {
			return err
		}

		defer det.Close()
		seederOpts = append(seederOpts, annotrack.WithDetector(det))
	}

	seeder := annotrack.NewSeeder(registry, cfg.TrackerKind, win, seederOpts...)

	annotator := annotrack.NewAnnotator(seeder, win,
		annotrack.WithWaitDelay(cfg.WaitDelay),
		annotrack.WithAutoReseed(cfg.AutoReseedAfter),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	acc, runErr := annotator.Run(ctx, src)
	sessions := acc.Sessions()

	// the dump is always written so a run can be exported again later
	if err := annotrack.WriteDumpFile(cfg.DumpFile, sessions); err != nil {
		return err
	}

	log.Printf("Saved %d sessions to %s\n", len(sessions), cfg.DumpFile)

	if runErr != nil {
		return runErr
	}

	return writeAnnotations(cfg.OutputFile, sessions, cfg.Label)
}

// newDetector loads the face detector model
func newDetector(cfg annotrack.Config) (detect.Detector, error) {

	opts := detect.DefaultOptions()
	opts.Scale = float32(cfg.DetectScale)

	// keep low confidence faces for the seeder's own threshold
	if t := float32(cfg.ConfThreshold); t < opts.Params.ConfThreshold {
		opts.Params.ConfThreshold = t
	}

	if t := float32(cfg.ConfThreshold); t < opts.Params.VisThreshold {
		opts.Params.VisThreshold = t
	}

	det, err := detect.New(cfg.ModelFile, opts)

	if err != nil {
		return nil, fmt.Errorf("error loading face detector: %w", err)
	}

	log.Printf("Loaded %s face detector from %s\n", detect.KindOf(cfg.ModelFile), cfg.ModelFile)

	return det, nil
}

// writeAnnotations exports the sessions as CVAT XML
func writeAnnotations(file string, sessions []annotrack.Session, label string) error {

	doc := cvat.Export(sessions, cvat.Options{Label: label})

	if err := doc.WriteFile(file); err != nil {
		return err
	}

	log.Printf("Saved %d tracks with %d boxes to %s\n", len(doc.Tracks), doc.NumBoxes(), file)

	return nil
}
