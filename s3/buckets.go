package s3

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/awsconfig"
	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// ListBuckets returns the names of every bucket owned by the account.
func (m *Manager) ListBuckets(ctx context.Context) ([]string, error) {
	const op = "s3.list_buckets"

	names := []string{}
	paginator := s3.NewListBucketsPaginator(m.api, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, m.fail(ctx, op, "", err)
		}
		for _, b := range page.Buckets {
			names = append(names, aws.ToString(b.Name))
		}
	}
	return names, nil
}

// CreateBucket creates a bucket in the manager's region.
//
// A bucket the caller already owns is left as is and reported as success.
// A name taken by another account fails with errors.ErrAlreadyExists.
func (m *Manager) CreateBucket(ctx context.Context, bucket string) error {
	const op = "s3.create_bucket"
	if bucket == "" {
		return awserrors.Invalid(op, "", "bucket name is required")
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if m.region != "" && m.region != awsconfig.DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(m.region),
		}
	}

	_, err := m.api.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) || awserrors.Code(err) == "BucketAlreadyOwnedByYou" {
			m.info(ctx, "bucket already exists", "bucket", bucket)
			return nil
		}
		return m.fail(ctx, op, bucket, err)
	}
	m.info(ctx, "bucket created", "bucket", bucket, "region", m.region)
	return nil
}

// DeleteBucket empties the bucket and then deletes it.
//
// If emptying fails, or any object could not be deleted, the bucket delete is
// not attempted and the error is returned.
func (m *Manager) DeleteBucket(ctx context.Context, bucket string) error {
	const op = "s3.delete_bucket"
	if bucket == "" {
		return awserrors.Invalid(op, "", "bucket name is required")
	}

	result, err := m.DeleteObjects(ctx, bucket)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		first := result.Errors[0]
		return m.fail(ctx, op, bucket, awserrors.NewError(op, awserrors.ErrInvalidState).
			WithResource(bucket).
			WithMessage("bucket not emptied: "+first.Key+": "+first.Code))
	}

	if _, err := m.api.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return m.fail(ctx, op, bucket, err)
	}
	m.info(ctx, "bucket deleted", "bucket", bucket, "objects_deleted", len(result.Deleted))
	return nil
}
