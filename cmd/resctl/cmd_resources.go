package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"edu-resources/pkg/client"
)

type cliOptions struct {
	server  string
	timeout time.Duration
}

func (o *cliOptions) client() *client.Client {
	return client.NewClient(o.server)
}

func (o *cliOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:   "resctl",
		Short: "Manage educational resources on a resource server",
		Long: `resctl uploads, lists and removes the videos, PPT decks and AI
activities served by an edu-resources server.

Examples:
  resctl upload --type video --title "小星星儿歌" star.mp4
  resctl link --type ai --title "数字游戏" https://games.example.com/count
  resctl list --type ppt
  resctl list --q 数字
  resctl delete res_01J8...
  resctl export -o resources.json
  resctl import resources.json
  resctl stats`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "Resource server base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Request timeout")

	root.AddCommand(
		newUploadCmd(opts),
		newLinkCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newDeleteCmd(opts),
		newHealthCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func newUploadCmd(opts *cliOptions) *cobra.Command {
	var form client.UploadForm
	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a resource file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := client.OpenFile(args[0])
			if err != nil {
				return err
			}
			form.File = file
			if err := form.Validate(); err != nil {
				return err
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()
			res, err := opts.client().Upload(ctx, form)
			if err != nil {
				return err
			}
			printResource(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Type, "type", "video", "Resource type: video, ppt or ai")
	cmd.Flags().StringVar(&form.Title, "title", "", "Resource title")
	cmd.Flags().StringVar(&form.Description, "description", "", "Resource description")
	return cmd
}

func newLinkCmd(opts *cliOptions) *cobra.Command {
	var link client.Link
	cmd := &cobra.Command{
		Use:   "link [url]",
		Short: "Register an externally hosted resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link.URL = args[0]
			ctx, cancel := opts.context(cmd)
			defer cancel()
			res, err := opts.client().RegisterLink(ctx, link)
			if err != nil {
				return err
			}
			printResource(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&link.Type, "type", "ai", "Resource type: video, ppt or ai")
	cmd.Flags().StringVar(&link.Title, "title", "", "Resource title")
	cmd.Flags().StringVar(&link.Description, "description", "", "Resource description")
	return cmd
}

func newListCmd(opts *cliOptions) *cobra.Command {
	var list client.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			page, err := opts.client().List(ctx, list)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tTITLE\tSIZE\tUPLOADED")
			for _, item := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					item.ID, item.Type, item.Title, formatSize(item.Size), humanize.Time(item.CreatedAt))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d resources\n", len(page.Items), page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&list.Type, "type", "", "Only show this type")
	cmd.Flags().StringVar(&list.Query, "q", "", "Search title and description")
	cmd.Flags().IntVar(&list.Limit, "limit", 0, "Maximum number of resources")
	cmd.Flags().IntVar(&list.Offset, "offset", 0, "Number of resources to skip")
	return cmd
}

func newGetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			res, err := opts.client().Get(ctx, args[0])
			if err != nil {
				return err
			}
			printResource(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newDeleteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			if err := opts.client().Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newHealthCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the upload service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			health, err := opts.client().Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", health.Status, health.Message)
			return nil
		},
	}
}

func newExportCmd(opts *cliOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the registry as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			items, err := opts.client().Export(ctx)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(items, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d resources to %s\n", len(items), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import resources exported from a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			result, err := opts.client().ImportJSON(ctx, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", result.Imported, result.Skipped)
			return nil
		},
	}
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show resource counts and sizes per type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			usage, err := opts.client().Stats(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tCOUNT\tSIZE")
			for _, t := range []string{"video", "ppt", "ai"} {
				entry := usage.ByType[t]
				fmt.Fprintf(w, "%s\t%d\t%s\n", t, entry.Count, formatSize(entry.Bytes))
			}
			fmt.Fprintf(w, "total\t%d\t%s\n", usage.Total, formatSize(usage.TotalBytes))
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nstorage: %s, upload limit: %s\n", usage.Storage, usage.MaxUploadSize)
			return nil
		},
	}
}

func printResource(w io.Writer, res *client.Resource) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", res.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", res.Type)
	fmt.Fprintf(tw, "Title:\t%s\n", res.Title)
	if res.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", res.Description)
	}
	fmt.Fprintf(tw, "File:\t%s\n", res.FileName)
	fmt.Fprintf(tw, "Size:\t%s\n", formatSize(res.Size))
	fmt.Fprintf(tw, "Storage:\t%s\n", res.Storage)
	fmt.Fprintf(tw, "URL:\t%s\n", res.DownloadURL)
	_ = tw.Flush()
}

func formatSize(size int64) string {
	if size <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(size))
}
