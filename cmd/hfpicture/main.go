package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tnphis/xlwt/xlwt"
)

var version = "dev"

// usageError marks bad invocations, which exit with status 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...interface{}) error {
	return usageError{fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		var uerr usageError
		if errors.As(err, &uerr) {
			return 2
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hfpicture",
		Short: "Build and inspect BIFF8 header/footer picture streams",
		Long: `hfpicture embeds JPEG pictures in page headers and footers of an .xls
sheet. It writes the sheet-local drawing stream and the workbook drawing group
stream that a file assembler places in the sheet and workbook substreams.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
	root.AddCommand(newBuildCommand(), newDumpCommand())
	return root
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

type buildOptions struct {
	image     string
	position  string
	width     uint32
	height    uint32
	name      string
	sheet     string
	sheetOut  string
	bookOut   string
	footer    bool
	manifest  string
	verbosity int
}

func newBuildCommand() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the drawing streams for one or two pictures",
		Example: `  hfpicture build --image logo.jpg --position CH --width 100 --height 50 \
      --sheet-out sheet.bin --book-out book.bin
  hfpicture build --manifest pictures.yaml`,
		Args: wrapArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return build(m, opts.verbosity, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.image, "image", "", "picture file to embed")
	flags.StringVar(&opts.position, "position", "CH", "section: L, C or R followed by H (header) or F (footer)")
	flags.Uint32Var(&opts.width, "width", 0, "drawn width in pixels")
	flags.Uint32Var(&opts.height, "height", 0, "drawn height in pixels")
	flags.StringVar(&opts.name, "name", "", "picture name (default: base name of the image)")
	flags.StringVar(&opts.sheet, "sheet", defaultSheetName, "name of the sheet carrying the picture")
	flags.StringVar(&opts.sheetOut, "sheet-out", "", "file for the sheet drawing stream")
	flags.StringVar(&opts.bookOut, "book-out", "", "file for the workbook drawing group stream")
	flags.BoolVar(&opts.footer, "footer", true, "close the workbook stream with the drawing group footer")
	flags.StringVar(&opts.manifest, "manifest", "", "YAML manifest listing the pictures, '-' for STDIN")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "log each picture; repeat to log record framing")
	return cmd
}

// resolve merges the manifest, if any, with the command line. Explicitly set
// flags win over manifest values.
func (o *buildOptions) resolve(cmd *cobra.Command) (*manifest, error) {
	flags := cmd.Flags()
	if o.manifest != "" && o.image != "" {
		return nil, usagef("--image and --manifest cannot be combined")
	}
	if o.manifest == "" && o.image == "" {
		return nil, usagef("one of --image or --manifest is required")
	}

	var m *manifest
	if o.manifest != "" {
		var err error
		m, err = loadManifestFile(o.manifest, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
	} else {
		m = &manifest{
			Sheet: o.sheet,
			Pictures: []manifestPicture{{
				Image:    o.image,
				Position: o.position,
				Width:    o.width,
				Height:   o.height,
				Name:     o.name,
			}},
		}
	}

	if flags.Changed("sheet") {
		m.Sheet = o.sheet
	}
	if flags.Changed("sheet-out") {
		m.SheetOut = o.sheetOut
	}
	if flags.Changed("book-out") {
		m.BookOut = o.bookOut
	}
	if flags.Changed("footer") || m.Footer == nil {
		footer := o.footer
		m.Footer = &footer
	}
	return m, nil
}

func build(m *manifest, verbosity int, stdout, stderr io.Writer) error {
	book := xlwt.NewBook(&xlwt.BookOptions{Logfile: stderr, Verbosity: verbosity})
	sheet := book.AddSheet(m.Sheet)
	for _, picture := range m.Pictures {
		err := sheet.AddHeaderFooterPicture(picture.Image, picture.Position, picture.Width, picture.Height, picture.Name)
		if err != nil {
			return err
		}
	}

	sheetStream, bookStream, err := book.Streams()
	if err != nil {
		return err
	}
	if !m.includeFooter() {
		if bookStream, err = book.Drawing().Stream(false); err != nil {
			return err
		}
	}

	if m.SheetOut == "" && m.BookOut == "" {
		if err := xlwt.DumpStream(sheetStream, stdout, false); err != nil {
			return err
		}
		return xlwt.DumpStream(bookStream, stdout, false)
	}
	if err := writeStream(m.SheetOut, sheetStream, stdout); err != nil {
		return err
	}
	return writeStream(m.BookOut, bookStream, stdout)
}

func writeStream(path string, stream []byte, stdout io.Writer) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, stream, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d bytes\n", path, len(stream))
	return nil
}

type dumpOptions struct {
	unnumbered bool
	count      bool
}

func newDumpCommand() *cobra.Command {
	opts := &dumpOptions{}
	cmd := &cobra.Command{
		Use:   "dump stream-file...",
		Short: "Dump the records of header/footer picture stream files",
		Args:  wrapArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				if len(args) > 1 {
					fmt.Fprintf(out, "==> %s <==\n", path)
				}
				var err error
				if opts.count {
					err = xlwt.CountRecords(path, out)
				} else {
					err = xlwt.Dump(path, out, opts.unnumbered)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.unnumbered, "unnumbered", false, "omit offsets, for meaningful diffs")
	cmd.Flags().BoolVar(&opts.count, "count", false, "print drawing record counts instead of a dump")
	return cmd
}
