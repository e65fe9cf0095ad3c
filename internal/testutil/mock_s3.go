package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/awsapi"
)

var _ awsapi.S3API = (*MockS3Client)(nil)

// MockS3Client stands in for the S3 API. A set Func field wins; otherwise bucket
// and object operations go to Store when it is non-nil, and anything else
// returns an empty output.
type MockS3Client struct {
	callLog

	// Store serves bucket and object operations without an override
	Store *MemoryS3

	ListBucketsFunc             func(context.Context, *s3.ListBucketsInput, ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	CreateBucketFunc            func(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucketFunc            func(context.Context, *s3.DeleteBucketInput, ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	PutObjectFunc               func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObjectFunc               func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2Func           func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjectsFunc           func(context.Context, *s3.DeleteObjectsInput, ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	CreateMultipartUploadFunc   func(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPartFunc              func(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUploadFunc func(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUploadFunc    func(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// invokeS3 is invoke with the in-memory store as a second fallback.
func invokeS3[In, Out any](
	m *MockS3Client,
	op string,
	override func(context.Context, *In, ...func(*s3.Options)) (*Out, error),
	store func(*MemoryS3, context.Context, *In) (*Out, error),
	ctx context.Context,
	in *In,
	optFns []func(*s3.Options),
) (*Out, error) {
	if override == nil && store != nil && m.Store != nil {
		m.record(op)
		return store(m.Store, ctx, in)
	}
	return invoke(&m.callLog, op, override, ctx, in, optFns)
}

func (m *MockS3Client) ListBuckets(ctx context.Context, in *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return invokeS3(m, "ListBuckets", m.ListBucketsFunc, (*MemoryS3).ListBuckets, ctx, in, optFns)
}

func (m *MockS3Client) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	return invokeS3(m, "CreateBucket", m.CreateBucketFunc, (*MemoryS3).CreateBucket, ctx, in, optFns)
}

func (m *MockS3Client) DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	return invokeS3(m, "DeleteBucket", m.DeleteBucketFunc, (*MemoryS3).DeleteBucket, ctx, in, optFns)
}

func (m *MockS3Client) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return invokeS3(m, "PutObject", m.PutObjectFunc, (*MemoryS3).PutObject, ctx, in, optFns)
}

func (m *MockS3Client) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return invokeS3(m, "GetObject", m.GetObjectFunc, (*MemoryS3).GetObject, ctx, in, optFns)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return invokeS3(m, "ListObjectsV2", m.ListObjectsV2Func, (*MemoryS3).ListObjectsV2, ctx, in, optFns)
}

func (m *MockS3Client) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	return invokeS3(m, "DeleteObjects", m.DeleteObjectsFunc, (*MemoryS3).DeleteObjects, ctx, in, optFns)
}

func (m *MockS3Client) CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return invokeS3(m, "CreateMultipartUpload", m.CreateMultipartUploadFunc, nil, ctx, in, optFns)
}

func (m *MockS3Client) UploadPart(ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return invokeS3(m, "UploadPart", m.UploadPartFunc, nil, ctx, in, optFns)
}

func (m *MockS3Client) CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return invokeS3(m, "CompleteMultipartUpload", m.CompleteMultipartUploadFunc, nil, ctx, in, optFns)
}

func (m *MockS3Client) AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return invokeS3(m, "AbortMultipartUpload", m.AbortMultipartUploadFunc, nil, ctx, in, optFns)
}
