// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ads "github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

const importTaskAttrs = "ImportTaskId,Name,Status,ImportRequestTime,ServerImportSuccess,ServerImportFailure"

// BatchDeleteImportDataCommandBuilder constructs "ads batch-delete-import-data".
func BatchDeleteImportDataCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.BatchDeleteImportDataInput, ads.BatchDeleteImportDataOutput]{
		Service: "ads",
		Name:    "batch-delete-import-data",
		API:     "BatchDeleteImportData",
		Usage:   "delete the data of import tasks",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "import-task-id", Usage: "import task id, repeatable"},
		},
		Select:      "Errors",
		Attrs:       "ImportTaskId,ErrorCode,ErrorDescription",
		Destructive: true,
		Resource:    func(in *ads.BatchDeleteImportDataInput) string { return idsResource("imports", in.ImportTaskIds) },
		Bind: func(cmd *cli.Command, in *ads.BatchDeleteImportDataInput) error {
			var err error
			in.ImportTaskIds, err = requireSlice(cmd, "import-task-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.BatchDeleteImportDataInput) (*ads.BatchDeleteImportDataOutput, error) {
			return c.Discovery.BatchDeleteImportData(ctx, in)
		},
		Failures: func(o *ads.BatchDeleteImportDataOutput) []string {
			out := make([]string, 0, len(o.Errors))
			for _, e := range o.Errors {
				out = append(out, fmt.Sprintf("import %s: %s: %s", deref(e.ImportTaskId), e.ErrorCode, deref(e.ErrorDescription)))
			}
			return out
		},
	}
	return op.Build(m)
}

// DescribeImportTasksCommandBuilder constructs "ads describe-import-tasks".
func DescribeImportTasksCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeImportTasksInput, ads.DescribeImportTasksOutput]{
		Service: "ads",
		Name:    "describe-import-tasks",
		API:     "DescribeImportTasks",
		Usage:   "list import tasks",
		Flags:   []cli.Flag{serverFilterFlag(false)},
		Examples: [][2]string{
			{"awsctl ads describe-import-tasks --server-filter 'STATUS:IMPORT_FAILED'", "failed imports"},
		},
		Select: "Tasks",
		Attrs:  importTaskAttrs,
		Bind: func(cmd *cli.Command, in *ads.DescribeImportTasksInput) error {
			var err error
			in.Filters, err = importTaskFilters(cmd)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeImportTasksInput) (*ads.DescribeImportTasksOutput, error) {
			return c.Discovery.DescribeImportTasks(ctx, in)
		},
		Paging: &Paging[ads.DescribeImportTasksInput, ads.DescribeImportTasksOutput]{
			NextToken:   func(o *ads.DescribeImportTasksOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.DescribeImportTasksInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.DescribeImportTasksInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// importUpload is the local file start-import-task puts in S3 first.
type importUpload struct {
	path   string
	bucket string
	key    string
}

func (u *importUpload) url() string {
	return fmt.Sprintf("s3://%s/%s", u.bucket, u.key)
}

func (u *importUpload) put(ctx context.Context, c *aws.Clients) error {
	f, err := os.Open(u.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", u.path, err)
	}
	defer f.Close()

	log.Debugf("uploading %s to %s", u.path, u.url())
	_, err = c.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: awsv2.String(u.bucket),
		Key:    awsv2.String(u.key),
		Body:   f,
	})
	if err != nil {
		return aws.FriendlyAWS(err, aws.ErrorContext{
			Service:   "s3",
			Operation: "PutObject",
			Resource:  u.url(),
			Region:    c.Region,
			Profile:   c.Profile,
		})
	}
	return nil
}

// StartImportTaskCommandBuilder constructs "ads start-import-task".
func StartImportTaskCommandBuilder(m meta.Meta) *cli.Command {
	var upload *importUpload

	op := &Operation[ads.StartImportTaskInput, ads.StartImportTaskOutput]{
		Service: "ads",
		Name:    "start-import-task",
		API:     "StartImportTask",
		Usage:   "import server and application data from a CSV in S3",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "import task name"},
			&cli.StringFlag{Name: "import-url", Usage: "s3:// URL of an uploaded import file"},
			&cli.StringFlag{Name: "file", Usage: "local import file to upload first", TakesFile: true},
			&cli.StringFlag{
				Name:    "bucket",
				Usage:   "bucket to upload --file to",
				Sources: cli.NewValueSourceChain(sources("bucket", "ads")...),
			},
			&cli.StringFlag{Name: "key", Usage: "object key for --file, defaults to the file name"},
			&cli.StringFlag{Name: "client-request-token", Usage: "idempotency token"},
		},
		Examples: [][2]string{
			{"awsctl ads start-import-task --name wave1 --file servers.csv --bucket my-imports", "upload and import a CSV"},
			{"awsctl ads start-import-task --name wave1 --import-url s3://my-imports/servers.csv", "import a file already in S3"},
		},
		Select: "Task",
		Attrs:  importTaskAttrs,
		Resource: func(in *ads.StartImportTaskInput) string {
			return "import " + deref(in.Name)
		},
		Bind: func(cmd *cli.Command, in *ads.StartImportTaskInput) error {
			var err error
			if in.Name, err = requireString(cmd, "name"); err != nil {
				return err
			}
			in.ClientRequestToken = optString(cmd, "client-request-token")

			upload = nil
			file, url := cmd.String("file"), cmd.String("import-url")
			switch {
			case file != "" && url != "":
				return fmt.Errorf("%w: --file and --import-url are mutually exclusive", ErrInvalidValue)
			case url != "":
				in.ImportUrl = awsv2.String(url)
				return nil
			case file == "":
				return fmt.Errorf("%w: --file or --import-url is required", ErrInvalidValue)
			}

			bucket := cmd.String("bucket")
			if bucket == "" {
				return fmt.Errorf("%w: --bucket is required with --file", ErrInvalidValue)
			}
			key := cmd.String("key")
			if key == "" {
				key = filepath.Base(file)
			}
			upload = &importUpload{path: file, bucket: bucket, key: strings.TrimPrefix(key, "/")}
			in.ImportUrl = awsv2.String(upload.url())
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.StartImportTaskInput) (*ads.StartImportTaskOutput, error) {
			if upload != nil {
				if err := upload.put(ctx, c); err != nil {
					return nil, err
				}
			}
			return c.Discovery.StartImportTask(ctx, in)
		},
	}
	return op.Build(m)
}
