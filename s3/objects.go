package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// maxDeleteBatch is the most keys S3 accepts in one DeleteObjects request.
const maxDeleteBatch = 1000

// ListObjects returns every object in the bucket, in key order.
// An empty bucket yields an empty slice.
func (m *Manager) ListObjects(ctx context.Context, bucket string) ([]Object, error) {
	return m.ListObjectsWithPrefix(ctx, bucket, "")
}

// ListObjectsWithPrefix returns every object whose key starts with prefix.
func (m *Manager) ListObjectsWithPrefix(ctx context.Context, bucket, prefix string) ([]Object, error) {
	const op = "s3.list_objects"
	if bucket == "" {
		return nil, awserrors.Invalid(op, "", "bucket name is required")
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	objects := []Object{}
	paginator := s3.NewListObjectsV2Paginator(m.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, m.fail(ctx, op, objectRef(bucket, prefix), err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}
	return objects, nil
}

// DeleteObjects deletes the given keys from the bucket. With no keys it deletes
// every object the bucket lists, which empties it.
//
// Keys are sent in batches of up to 1000. Keys S3 refuses individually are
// reported in the result's Errors; a failed request stops the delete and is
// returned along with what was deleted so far.
func (m *Manager) DeleteObjects(ctx context.Context, bucket string, keys ...string) (*DeleteResult, error) {
	const op = "s3.delete_objects"
	if bucket == "" {
		return nil, awserrors.Invalid(op, "", "bucket name is required")
	}

	if len(keys) == 0 {
		objects, err := m.ListObjects(ctx, bucket)
		if err != nil {
			return nil, err
		}
		keys = make([]string, 0, len(objects))
		for _, obj := range objects {
			keys = append(keys, obj.Key)
		}
	}

	result := &DeleteResult{
		Deleted: []string{},
		Errors:  []DeleteError{},
	}
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := m.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: ids,
				Quiet:   aws.Bool(false),
			},
		})
		if err != nil {
			return result, m.fail(ctx, op, bucket, err)
		}

		for _, d := range out.Deleted {
			result.Deleted = append(result.Deleted, aws.ToString(d.Key))
		}
		for _, e := range out.Errors {
			de := DeleteError{
				Key:     aws.ToString(e.Key),
				Code:    aws.ToString(e.Code),
				Message: aws.ToString(e.Message),
			}
			result.Errors = append(result.Errors, de)
			if m.logger != nil {
				m.logger.ErrorContext(ctx, "object not deleted",
					"bucket", bucket,
					"key", de.Key,
					"code", de.Code)
			}
		}
	}

	m.info(ctx, "objects deleted", "bucket", bucket, "deleted", len(result.Deleted), "failed", len(result.Errors))
	return result, nil
}
