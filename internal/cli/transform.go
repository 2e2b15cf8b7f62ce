package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chaoscrypt/pkg/imageio"
	"github.com/matzehuels/chaoscrypt/pkg/key"
	"github.com/matzehuels/chaoscrypt/pkg/pipeline"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

// transformOpts holds the command-line flags shared by encrypt and decrypt.
type transformOpts struct {
	output      string // output image path
	mapName     string // "arnold" or "baker"
	a, b        int    // Arnold shear parameters
	rounds      int    // Arnold iterations
	orientation string // Baker orientation
	key         string // explicit Baker key
	seedParams  bool   // derive a and b from the image width
	crop        bool   // crop non-square images to their centered square
	noCache     bool   // do not read or write the key cache
	refresh     bool   // regenerate the cached key
}

// encryptCommand creates the encrypt command.
func (c *CLI) encryptCommand() *cobra.Command {
	return c.transformCommand(transform.Encrypt)
}

// decryptCommand creates the decrypt command.
func (c *CLI) decryptCommand() *cobra.Command {
	return c.transformCommand(transform.Decrypt)
}

func (c *CLI) transformCommand(dir transform.Direction) *cobra.Command {
	var opts transformOpts

	verb := dir.String()
	cmd := &cobra.Command{
		Use:   verb + " [image]",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an image with a chaotic map",
		Long: fmt.Sprintf(`%s a square image with the Arnold cat map or the Baker map.

Every color channel is transformed concurrently. Decrypting with the same map,
parameters and key restores the original pixels exactly, so scrambled images
are always written in a lossless format (png, bmp or tiff).

The Baker map uses a secret key that partitions the image width into divisors.
Without --key, the key is generated from the width and cached, so encrypt and
decrypt of the same size agree.`, strings.ToUpper(verb[:1])+verb[1:]),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts := c.Config.PipelineOptions(opts.mapName)
			popts.Decrypt = dir == transform.Decrypt
			popts.Key = opts.key
			popts.Refresh = opts.refresh
			flags := cmd.Flags()
			if flags.Changed("a") {
				popts.A = opts.a
			}
			if flags.Changed("b") {
				popts.B = opts.b
			}
			if flags.Changed("rounds") {
				popts.Rounds = opts.rounds
			}
			if flags.Changed("orientation") {
				popts.Orientation = opts.orientation
			}
			if err := popts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runTransform(cmd.Context(), args[0], popts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output image (default <input>."+verb+".png)")
	cmd.Flags().StringVarP(&opts.mapName, "map", "m", pipeline.DefaultMap, "chaotic map: arnold, baker")
	cmd.Flags().IntVarP(&opts.a, "a", "a", pipeline.DefaultArnoldA, "Arnold parameter a")
	cmd.Flags().IntVarP(&opts.b, "b", "b", pipeline.DefaultArnoldB, "Arnold parameter b")
	cmd.Flags().IntVar(&opts.rounds, "rounds", pipeline.DefaultRounds, "Arnold map iterations")
	cmd.Flags().StringVar(&opts.orientation, "orientation", pipeline.DefaultOrientation, "Baker orientation: horizontal, vertical")
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "Baker secret key, comma-separated (default: generated from width)")
	cmd.Flags().BoolVar(&opts.seedParams, "seed-params", false, "derive Arnold a and b from the image width")
	cmd.Flags().BoolVar(&opts.crop, "crop", false, "crop non-square images to their centered square")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the secret key cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate the secret key even if cached")

	return cmd
}

// runTransform loads the input image, runs the pipeline over its channels
// and writes the result.
func (c *CLI) runTransform(ctx context.Context, input string, popts pipeline.Options, opts transformOpts) error {
	prog := newProgress(c.Logger)

	img, err := imageio.Load(input)
	if err != nil {
		return err
	}
	if opts.crop {
		img = imageio.CropSquare(img)
	}
	channels, err := imageio.Split(img)
	if err != nil {
		return fmt.Errorf("split %s: %w", input, err)
	}
	width := channels[0].Size()

	if opts.seedParams && popts.IsArnold() {
		params := key.DeriveParameters(width)
		popts.A, popts.B = params[0], params[1]
		c.Logger.Debug("derived parameters", "width", width, "a", popts.A, "b", popts.B)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, channels, popts)
	if err != nil {
		return err
	}
	grids, err := result.Grids()
	if err != nil {
		return err
	}
	out, err := imageio.Merge(grids)
	if err != nil {
		return fmt.Errorf("merge channels: %w", err)
	}

	output := opts.output
	if output == "" {
		output = defaultOutput(input, result.Op.Direction)
	}
	if err := imageio.Save(out, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("%s %dx%d image", pastTense(result.Op.Direction), width, width))

	printSuccess("%s %s", pastTense(result.Op.Direction), input)
	printFile(output)
	printRunSummary(result, popts.Key == "")
	return nil
}

// defaultOutput derives an output path next to input, e.g. cat.png becomes
// cat.encrypt.png. Lossy inputs still produce a png.
func defaultOutput(input string, dir transform.Direction) string {
	ext := strings.ToLower(filepath.Ext(input))
	base := strings.TrimSuffix(input, filepath.Ext(input))
	// Undo a previous suffix so decrypting cat.encrypt.png yields cat.decrypt.png.
	base = strings.TrimSuffix(base, "."+dir.Inverse().String())
	switch ext {
	case ".png", ".bmp", ".tif", ".tiff":
	default:
		ext = ".png"
	}
	return base + "." + dir.String() + ext
}

func pastTense(dir transform.Direction) string {
	if dir == transform.Decrypt {
		return "Decrypted"
	}
	return "Encrypted"
}

// printRunSummary prints the resolved transform and run statistics.
// generatedKey reports whether a Baker key was generated rather than given.
func printRunSummary(result *pipeline.Result, generatedKey bool) {
	op := result.Op
	switch op.Map {
	case pipeline.MapArnold:
		printDetail("arnold · a=%d b=%d · %d round(s)", op.Arnold.A, op.Arnold.B, max(op.Rounds, 1))
	case pipeline.MapBaker:
		printDetail("baker · %s · key %s", op.Orientation, op.Key)
	}
	printStats(len(result.Outcomes), result.Duration, op.Map == pipeline.MapBaker && generatedKey, result.KeyCached)
}
