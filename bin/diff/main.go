package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	diffimage "perceptual-diff/internal/diff/image"
	"perceptual-diff/internal/env"
	"perceptual-diff/internal/imageio"
	"perceptual-diff/internal/myhttp"
	"perceptual-diff/internal/retry"
	"perceptual-diff/internal/storage"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/joho/godotenv"
	"golang.org/x/xerrors"
)

const (
	exitEqual  = 0
	exitDiffer = 1
	exitError  = 2
)

// autoDiffImage asks for a generated key derived from the inputs.
const autoDiffImage = "auto"

type DiffOutput struct {
	Equal          bool                   `json:"equal"`
	ExtentMismatch bool                   `json:"extentMismatch"`
	BoundingBox    *diffimage.BoundingBox `json:"boundingBox"`
	DiffPixels     int                    `json:"diffPixels"`
	DiffAmount     float64                `json:"diffAmount"`
	DiffPath       string                 `json:"diffPath,omitempty"`
}

type options struct {
	tolerance      float64
	comparator     string
	format         string
	diffImage      string
	storageBackend string
	directory      string
	s3Bucket       string
	callbackURL    string
	callbackRetry  string
	workers        int
	autoOrient     bool
	debug          bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	o := &options{}
	flags := flag.NewFlagSet("diff", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: diff [flags] <ref-image> <image>\n\nExits 0 when the images are equal, 1 when they differ and 2 on error.\n\n")
		flags.PrintDefaults()
	}
	flags.Float64Var(&o.tolerance, "tolerance", env.OrDefaultValue("TOLERANCE", 0.0), "Pixels closer than this CIEDE2000 distance compare equal")
	flags.StringVar(&o.comparator, "comparator", env.OrDefaultValue("COMPARATOR", diffimage.ComparatorPerceptual), "Pixel comparator (perceptual or exact)")
	flags.StringVar(&o.format, "format", env.OrDefaultValue("FORMAT", diffimage.FormatPixel), "Diff image format (pixel or rectangle)")
	flags.StringVar(&o.diffImage, "diff-image", env.OrDefaultValue("DIFF_IMAGE", ""), `Where to save the diff image when the images differ; "auto" derives a key from the inputs`)
	flags.StringVar(&o.storageBackend, "storage-backend", env.OrDefaultValue("STORAGE_BACKEND", storage.BackendFile), "Storage backend for the diff image (file or s3)")
	flags.StringVar(&o.directory, "directory", env.OrDefaultValue("DIRECTORY", "."), "Output directory of the file backend")
	flags.StringVar(&o.s3Bucket, "s3-bucket", env.OrDefaultValue("S3_BUCKET", ""), "Bucket of the s3 backend")
	flags.StringVar(&o.callbackURL, "callback-url", env.OrDefaultValue("CALLBACK_URL", ""), "URL to PATCH the JSON result to")
	flags.StringVar(&o.callbackRetry, "callback-retry-on", env.OrDefaultValue("CALLBACK_RETRY_ON", retry.DefaultOn), "Conditions on which the callback is retried")
	flags.IntVar(&o.workers, "workers", env.OrDefaultValue("WORKERS", 0), "Goroutines scanning rows, 0 for GOMAXPROCS")
	flags.BoolVar(&o.autoOrient, "auto-orient", env.OrDefaultValue("AUTO_ORIENT", false), "Apply EXIF orientation before comparing")
	flags.BoolVar(&o.debug, "debug", env.OrDefaultValue("DEBUG", false), "Human readable logs")

	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return nil, nil, xerrors.New("ref-image and image must be specified")
	}
	return o, flags.Args(), nil
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
		return exitError
	}

	o, paths, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitEqual
		}
		return exitError
	}

	logLevel, err := myhttp.ParseLevel(os.Getenv("GO_LOG"))
	if err != nil {
		fmt.Fprintf(stderr, "failed to parse log level: %v\n", err)
		return exitError
	}
	logger := myhttp.NewLogger(logLevel, o.debug, stderr)

	output, err := diff(ctx, logger, o, paths[0], paths[1])
	if output == nil {
		logger.Error("failed to diff images", "error", err)
		return exitError
	}

	// The verdict is printed even when saving the diff image failed.
	j, merr := json.Marshal(output)
	if merr != nil {
		logger.Error("failed to marshal result", "error", merr)
		return exitError
	}
	fmt.Fprintln(stdout, string(j))
	if err != nil {
		logger.Error("failed to diff images", "error", err)
		return exitError
	}

	if o.callbackURL != "" {
		retryOn, err := retry.ParseOn(o.callbackRetry)
		if err != nil {
			logger.Error("invalid callback retry conditions", "error", err)
			return exitError
		}
		if err := callback(ctx, o.callbackURL, retryOn, j); err != nil {
			logger.Error("failed to send callback", "error", err)
			return exitError
		}
	}

	if !output.Equal {
		return exitDiffer
	}
	return exitEqual
}

// diff returns the output together with the error when only saving the diff image failed.
func diff(ctx context.Context, logger *slog.Logger, o *options, baselinePath string, targetPath string) (*DiffOutput, error) {
	comparator, err := diffimage.NewComparator(o.comparator, o.tolerance)
	if err != nil {
		return nil, err
	}
	differ, err := diffimage.NewDiffer(o.format, comparator, diffimage.WithWorkers(o.workers))
	if err != nil {
		return nil, err
	}

	s, err := storage.New(ctx, storage.Config{
		Backend: o.storageBackend,
		File:    storage.FileConfig{Directory: o.directory},
		S3:      storage.S3Config{Bucket: o.s3Bucket},
		HTTP:    storage.HTTPConfig{MaxRetries: 3},
	})
	if err != nil {
		return nil, err
	}

	baseline, target, err := imageio.LoadPair(ctx, s, baselinePath, targetPath, imaging.AutoOrientation(o.autoOrient))
	if err != nil {
		return nil, err
	}

	result := differ.Compare(baseline, target)
	output := &DiffOutput{
		Equal:          result.Equal,
		ExtentMismatch: result.ExtentMismatch,
		BoundingBox:    result.BoundingBox,
		DiffPixels:     result.DiffPixels,
		DiffAmount:     result.DiffAmount,
	}
	if result.Equal {
		return output, nil
	}

	logger.Info("images differ",
		"baseline", baselinePath,
		"target", targetPath,
		"diffArea", result.BoundingBox,
		"extentMismatch", result.ExtentMismatch,
	)

	if o.diffImage == "" {
		return output, nil
	}

	key, err := diffImageKey(o, baselinePath, targetPath)
	if err != nil {
		return output, err
	}
	data, err := imageio.EncodeBytes(differ.Render(baseline, target), imageio.FormatFor(key))
	if err != nil {
		return output, err
	}
	diffPath, err := s.Put(ctx, key, data)
	if err != nil {
		return output, xerrors.Errorf("failed to save diff image: %w", err)
	}
	logger.Info("diff image saved", "path", diffPath)
	output.DiffPath = diffPath

	return output, nil
}

// diffImageKey resolves -diff-image. A path given for the file backend is taken relative to
// the working directory, like any other command line path; only generated keys are placed
// under -directory.
func diffImageKey(o *options, baselinePath string, targetPath string) (string, error) {
	if o.diffImage == autoDiffImage {
		return storage.DiffKey(baselinePath, targetPath, time.Now(), "png"), nil
	}
	if o.storageBackend != "" && o.storageBackend != storage.BackendFile {
		return o.diffImage, nil
	}
	path, err := filepath.Abs(o.diffImage)
	if err != nil {
		return "", xerrors.Errorf("failed to resolve %s: %w", o.diffImage, err)
	}
	return path, nil
}

func callback(ctx context.Context, callbackURL string, retryOn *retry.On, data []byte) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPatch, callbackURL, bytes.NewReader(data))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	client := retry.NewClient(time.Second, retry.NewExponentialBackOff(10*time.Millisecond, time.Second, 3, nil), retryOn)

	response, err := client.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode >= 300 {
		return xerrors.Errorf("callback responded %s", response.Status)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
