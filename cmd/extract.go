package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vsocial/resolver-service/internal/models"
)

func newMetadataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <url>",
		Short: "Print normalized metadata for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.resolver().Metadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
}

func newDownloadCmd(a *app) *cobra.Command {
	var req models.DownloadRequest

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Resolve a direct download URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			result, err := a.resolver().ResolveDownload(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&req.Quality, "quality", "q", models.DefaultQuality, "Quality: best, worst, bestvideo, bestaudio")
	cmd.Flags().StringVarP(&req.Format, "format", "f", models.DefaultFormat, "Format: mp4, mp3, webm")
	return cmd
}

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Print the yt-dlp version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := a.resolver().Probe(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

// newValidateCmd 只做URL校验, 不启动 yt-dlp
func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <url>",
		Short: "Check whether a URL belongs to a supported platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.resolver().ValidateURL(args[0])
			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if !result.IsValid {
				return errors.New(result.Message)
			}
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
