package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/editor"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/export"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/project"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"
)

// loadDocument reads an interchange document from path ("-" for stdin). An
// empty format is inferred from the file extension.
func loadDocument(path, format string, stdin io.Reader) (timeline.State, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return timeline.State{}, fmt.Errorf("read document: %w", err)
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		}
	}
	f, err := editor.ParseFormat(format)
	if err != nil {
		return timeline.State{}, err
	}

	var patch timeline.Patch
	if f == editor.FormatYAML {
		patch = project.DecodeYAML(data)
	} else {
		patch = project.Decode(data)
	}
	if patch.Empty() {
		return timeline.State{}, fmt.Errorf("%s: %w", path, editor.ErrEmptyDocument)
	}
	return timeline.Reduce(timeline.DefaultState(), timeline.LoadProject{Patch: patch}), nil
}

func newInspectCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize and check an interchange document",
		Long:  "inspect loads an interchange document, prints a per-track summary and reports any\ntimeline invariant violations. With --output it prints the normalized document instead.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := loadDocument(args[0], format, cmd.InOrStdin())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch strings.ToLower(output) {
			case "":
			case "json":
				data, err := project.Encode(state)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			case "yaml", "yml":
				data, err := project.EncodeYAML(state)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(data))
				return nil
			default:
				return fmt.Errorf("unknown output %q", output)
			}

			printSummary(out, state)
			if err := timeline.Validate(state); err != nil {
				fmt.Fprintf(out, "\ninvalid:\n%v\n", err)
				return errors.New("document violates timeline invariants")
			}
			fmt.Fprintln(out, "\nvalid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json or yaml (default from extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "print the normalized document as json or yaml")
	return cmd
}

func printSummary(out io.Writer, s timeline.State) {
	fmt.Fprintf(out, "duration: %.3fs  fps: %d  size: %dx%d  aspect: %s\n",
		s.Duration, s.FPS, s.Width, s.Height, s.AspectRatio)
	fmt.Fprintf(out, "tracks: %d  clips: %d\n\n", len(s.Tracks), s.ClipCount())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tTYPE\tLABEL\tCLIPS\tSPAN\tFLAGS")
	for _, t := range s.Tracks {
		span := "-"
		if n := len(t.Clips); n > 0 {
			span = fmt.Sprintf("%.3f-%.3f", t.Clips[0].Start, t.Clips[n-1].End)
		}
		var flags []string
		if t.Muted {
			flags = append(flags, "muted")
		}
		if t.Locked {
			flags = append(flags, "locked")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", t.ID, t.Kind, t.Label, len(t.Clips), span, strings.Join(flags, ","))
	}
	tw.Flush()
}

func newEDLCmd() *cobra.Command {
	var (
		format    string
		trackID   string
		frameRate float64
		title     string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "edl <file>",
		Short: "Render one track of an interchange document as a CMX3600 EDL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := loadDocument(args[0], format, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if trackID == "" {
				var ok bool
				if trackID, ok = export.DefaultTrack(state); !ok {
					return export.ErrTrackNotFound
				}
			}
			clips, unresolved, err := export.FromTrack(state, trackID)
			if err != nil {
				return fmt.Errorf("track %s: %w", trackID, err)
			}
			for _, id := range unresolved {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: clip %s has no source media\n", id)
			}

			if frameRate <= 0 {
				frameRate = float64(state.FPS)
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			name := export.SanitizeName(title, 120)
			if name == "" {
				name = export.DefaultTitle
			}
			edl := export.GenerateEDL(clips, name, frameRate)

			if outDir == "" {
				fmt.Fprint(cmd.OutOrStdout(), edl)
				return nil
			}
			path, err := export.WriteEDL(outDir, name, edl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json or yaml (default from extension)")
	cmd.Flags().StringVarP(&trackID, "track", "t", "", "track to export (default first video track)")
	cmd.Flags().Float64Var(&frameRate, "fps", 0, "timecode frame rate (default document fps)")
	cmd.Flags().StringVar(&title, "title", "", "EDL title (default file name)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write <title>.edl into this directory instead of stdout")
	return cmd
}
