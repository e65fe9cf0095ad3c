package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/s3"
)

func newS3Command(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3",
		Short: "Manage S3 buckets and objects",
	}
	cmd.AddCommand(
		newS3BucketsCommand(a),
		newS3CreateBucketCommand(a),
		newS3DeleteBucketCommand(a),
		newS3ListCommand(a),
		newS3RemoveCommand(a),
		newS3UploadCommand(a),
		newS3UploadFolderCommand(a),
		newS3DownloadCommand(a),
		newS3DownloadFolderCommand(a),
	)
	return cmd
}

func newS3BucketsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "List buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			buckets, err := m.ListBuckets(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range buckets {
				fmt.Fprintln(a.out, b)
			}
			return nil
		},
	}
}

func newS3CreateBucketCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create-bucket <bucket>",
		Short: "Create a bucket in the configured region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			return m.CreateBucket(cmd.Context(), args[0])
		},
	}
}

func newS3DeleteBucketCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-bucket <bucket>",
		Short: "Delete every object in a bucket, then the bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			return m.DeleteBucket(cmd.Context(), args[0])
		},
	}
}

func newS3ListCommand(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "ls <bucket>",
		Short: "List objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			objects, err := m.ListObjectsWithPrefix(cmd.Context(), args[0], prefix)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(a.out)
			table.SetHeader([]string{"LAST MODIFIED", "SIZE", "KEY"})
			table.SetAutoFormatHeaders(false)
			table.SetAutoWrapText(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetRowLine(true)
			for _, obj := range objects {
				table.Append([]string{
					obj.LastModified.UTC().Format(time.DateTime),
					strconv.FormatInt(obj.Size, 10),
					obj.Key,
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list keys under this prefix")
	return cmd
}

func newS3RemoveCommand(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "rm <bucket> [key...]",
		Short: "Delete objects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args[1:]
			if len(keys) == 0 && !all {
				return fmt.Errorf("no keys given; pass --all to empty %s", args[0])
			}

			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			result, err := m.DeleteObjects(cmd.Context(), args[0], keys...)
			if result != nil {
				for _, key := range result.Deleted {
					fmt.Fprintf(a.out, "deleted %s\n", key)
				}
				for _, de := range result.Errors {
					fmt.Fprintf(a.errOut, "failed %s: %s %s\n", de.Key, de.Code, de.Message)
				}
			}
			if err != nil {
				return err
			}
			if n := len(result.Errors); n > 0 {
				return fmt.Errorf("%d objects not deleted", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every object when no keys are given")
	return cmd
}

func newS3UploadCommand(a *app) *cobra.Command {
	var (
		key      string
		partSize int64
	)
	cmd := &cobra.Command{
		Use:   "upload <file> <bucket>",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.s3(cmd.Context(), s3.WithPartSize(partSize))
			if err != nil {
				return err
			}
			uploaded, err := m.UploadFile(cmd.Context(), args[0], args[1], key)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "s3://%s/%s\n", args[1], uploaded)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "object key (default the file's base name)")
	cmd.Flags().Int64Var(&partSize, "part-size", s3.DefaultPartSize, "multipart upload part size in bytes")
	return cmd
}

func newS3UploadFolderCommand(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "upload-folder <dir> <bucket>",
		Short: "Upload a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			report, err := m.UploadFolder(cmd.Context(), args[0], args[1], prefix)
			return a.printReport("uploaded", report, err)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix")
	return cmd
}

func newS3DownloadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download <bucket> <key> <file>",
		Short: "Download an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			return m.DownloadFile(cmd.Context(), args[0], args[1], args[2])
		},
	}
}

func newS3DownloadFolderCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download-folder <bucket> <prefix> <dir>",
		Short: "Download every object under a prefix",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.s3(cmd.Context())
			if err != nil {
				return err
			}
			report, err := m.DownloadFolder(cmd.Context(), args[0], args[1], args[2])
			return a.printReport("downloaded", report, err)
		},
	}
}

// printReport writes a folder transfer summary. Per-file failures make the
// command fail after everything else was transferred.
func (a *app) printReport(verb string, report *s3.TransferReport, err error) error {
	if report != nil {
		for _, f := range report.Failed {
			fmt.Fprintf(a.errOut, "failed %s (%s): %v\n", f.Key, f.Path, f.Err)
		}
		fmt.Fprintf(a.out, "%s %d files, %d failed\n", verb, len(report.Succeeded), len(report.Failed))
	}
	if err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf("%d files failed", len(report.Failed))
	}
	return nil
}
