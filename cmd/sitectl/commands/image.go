package commands

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sitebrand/internal/service"
	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func imageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Register images used as logos",
	}
	cmd.AddCommand(imageAddCmd(a))
	return cmd
}

func imageAddCmd(a *app) *cobra.Command {
	var (
		fileURL string
		title   string
		width   int
		height  int
	)
	cmd := &cobra.Command{
		Use:   "add [local-file]",
		Short: "Register an image served from --url; a local copy supplies its size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				w, h, err := imageSize(args[0])
				if err != nil {
					return err
				}
				width, height = w, h
				if title == "" {
					title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				}
			}

			img, err := a.images.Create(cmd.Context(), service.ImageInput{
				Title:   title,
				FileURL: fileURL,
				Width:   width,
				Height:  height,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered image %d %s (%dx%d)\n", img.ID, img.FileURL, img.Width, img.Height)
			return nil
		},
	}
	cmd.Flags().StringVar(&fileURL, "url", "", "public URL of the image")
	cmd.Flags().StringVar(&title, "title", "", "image title (default file name)")
	cmd.Flags().IntVar(&width, "width", 0, "width in pixels when no local file is given")
	cmd.Flags().IntVar(&height, "height", 0, "height in pixels when no local file is given")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

// imageSize reads the dimensions of a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("read image %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("read image %s: %s has no size", path, format)
	}
	return cfg.Width, cfg.Height, nil
}
