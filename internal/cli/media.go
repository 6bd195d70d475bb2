package cli

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

func newMediaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Attach photos and videos to refs",
	}
	cmd.AddCommand(newMediaAddCmd(a), newMediaListCmd(a), newMediaRemoveCmd(a))
	return cmd
}

func newMediaAddCmd(a *app) *cobra.Command {
	var (
		mediaType string
		sortOrder int
	)
	cmd := &cobra.Command{
		Use:   "add <ref-id> <file>",
		Short: "Record a media file for a ref",
		Long: `Add records the file's path, MIME type, and size. The file itself stays
where it is. The media type is taken from the MIME type unless --type is
given.

Example:
  reffo media add 0190f2a0-... ./photos/front.jpg --sort 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mediaFromFile(args[0], args[1], mediaType)
			if err != nil {
				return err
			}
			m.SortOrder = sortOrder
			return a.withStore(func(st types.BeaconStore) error {
				media, err := getTable(st, types.TableMedia)
				if err != nil {
					return err
				}
				id, err := media.Set("", m)
				if err != nil {
					return notFound("ref", m.RefID, fmt.Errorf("add media: %w", err))
				}
				logger.L().Info("media.added", "id", id, "ref_id", m.RefID, "type", m.MediaType)
				return a.render(cmd, m, func(w io.Writer) {
					fmt.Fprintf(w, "Added %s: %s (%s)\n", m.MediaType, id, m.FilePath)
				})
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "type", "", "photo or video (default: from the file's MIME type)")
	cmd.Flags().IntVar(&sortOrder, "sort", 0, "display position; lower values show first")
	return cmd
}

// mediaMimeTypes covers common camera formats missing from the mime
// package's built-in table.
var mediaMimeTypes = map[string]string{
	".heic": "image/heic",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// mediaFromFile builds a media record for path. The path is stored
// absolute so it stays valid from any working directory.
func mediaFromFile(refID, path, mediaType string) (*types.RefMedia, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("media file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("media file %s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(abs))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = mediaMimeTypes[ext]
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mediaType == "" {
		switch {
		case strings.HasPrefix(mimeType, "image/"):
			mediaType = types.MediaPhoto
		case strings.HasPrefix(mimeType, "video/"):
			mediaType = types.MediaVideo
		default:
			return nil, fmt.Errorf("cannot tell the media type of %s; pass --type photo or --type video", path)
		}
	}
	if !types.IsValidMediaType(mediaType) {
		return nil, fmt.Errorf("invalid media type %q: must be photo or video", mediaType)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &types.RefMedia{
		RefID:     refID,
		MediaType: mediaType,
		FilePath:  abs,
		MimeType:  mimeType,
		FileSize:  info.Size(),
	}, nil
}

func newMediaListCmd(a *app) *cobra.Command {
	var mediaType string
	cmd := &cobra.Command{
		Use:   "list <ref-id>",
		Short: "List a ref's media in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{"ref_id": args[0]}
			setIfNotEmpty(filter, "media_type", mediaType)
			return a.withStore(func(st types.BeaconStore) error {
				media, err := fetchAs[*types.RefMedia](st, types.TableMedia, filter)
				if err != nil {
					return err
				}
				return a.render(cmd, media, func(w io.Writer) {
					for _, m := range media {
						fmt.Fprintf(w, "%s  %-5s %3d  %s (%s, %d bytes)\n", m.ID, m.MediaType, m.SortOrder, m.FilePath, m.MimeType, m.FileSize)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&mediaType, "type", "", "only photo or only video")
	return cmd
}

func newMediaRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <media-id>",
		Short: "Forget a media record; the file is left in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.BeaconStore) error {
				media, err := getTable(st, types.TableMedia)
				if err != nil {
					return err
				}
				if err := media.Delete(args[0]); err != nil {
					return notFound("media", args[0], err)
				}
				logger.L().Info("media.removed", "id", args[0])
				return a.render(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Removed media: %s\n", args[0])
				})
			})
		},
	}
}
