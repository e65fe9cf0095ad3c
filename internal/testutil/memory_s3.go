package testutil

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // ETag emulation only
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
	etag        string
}

// MemoryS3 is an in-memory object store that answers the S3 operations the
// object store manager issues. It returns the same API errors S3 does for
// missing buckets and keys.
type MemoryS3 struct {
	buckets map[string]map[string]*memoryObject

	// PageSize caps the number of keys returned per ListObjectsV2 page
	PageSize int
}

// NewMemoryS3 creates an empty store containing the given buckets.
func NewMemoryS3(buckets ...string) *MemoryS3 {
	m := &MemoryS3{buckets: make(map[string]map[string]*memoryObject)}
	for _, b := range buckets {
		m.buckets[b] = make(map[string]*memoryObject)
	}
	return m
}

// Put stores an object directly, bypassing the API.
func (m *MemoryS3) Put(bucket, key string, data []byte) {
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string]*memoryObject)
	}
	m.buckets[bucket][key] = newMemoryObject(data, "")
}

// Object returns an object's content and whether it exists.
func (m *MemoryS3) Object(bucket, key string) ([]byte, bool) {
	objs, ok := m.buckets[bucket]
	if !ok {
		return nil, false
	}
	obj, ok := objs[key]
	if !ok {
		return nil, false
	}
	return obj.data, true
}

// ContentType returns the content type an object was stored with.
func (m *MemoryS3) ContentType(bucket, key string) string {
	if obj, ok := m.buckets[bucket][key]; ok {
		return obj.contentType
	}
	return ""
}

// Keys returns the sorted keys stored in bucket.
func (m *MemoryS3) Keys(bucket string) []string {
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasBucket reports whether bucket exists.
func (m *MemoryS3) HasBucket(bucket string) bool {
	_, ok := m.buckets[bucket]
	return ok
}

func newMemoryObject(data []byte, contentType string) *memoryObject {
	sum := md5.Sum(data) //nolint:gosec // ETag emulation only
	return &memoryObject{
		data:        data,
		contentType: contentType,
		modified:    time.Now().UTC(),
		etag:        `"` + hex.EncodeToString(sum[:]) + `"`,
	}
}

func noSuchBucket(bucket string) error {
	return &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist: " + bucket)}
}

// ListBuckets returns every bucket in name order.
func (m *MemoryS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput) (*s3.ListBucketsOutput, error) {
	names := make([]string, 0, len(m.buckets))
	for name := range m.buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &s3.ListBucketsOutput{}
	for _, name := range names {
		out.Buckets = append(out.Buckets, types.Bucket{Name: aws.String(name)})
	}
	return out, nil
}

// CreateBucket creates a bucket, failing with BucketAlreadyOwnedByYou if it exists.
func (m *MemoryS3) CreateBucket(_ context.Context, params *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
	bucket := aws.ToString(params.Bucket)
	if _, ok := m.buckets[bucket]; ok {
		return nil, &types.BucketAlreadyOwnedByYou{Message: aws.String("bucket already owned by you")}
	}
	m.buckets[bucket] = make(map[string]*memoryObject)
	return &s3.CreateBucketOutput{Location: aws.String("/" + bucket)}, nil
}

// DeleteBucket deletes an empty bucket.
func (m *MemoryS3) DeleteBucket(_ context.Context, params *s3.DeleteBucketInput) (*s3.DeleteBucketOutput, error) {
	bucket := aws.ToString(params.Bucket)
	objs, ok := m.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}
	if len(objs) > 0 {
		return nil, &smithy.GenericAPIError{
			Code:    "BucketNotEmpty",
			Message: "The bucket you tried to delete is not empty",
		}
	}
	delete(m.buckets, bucket)
	return &s3.DeleteBucketOutput{}, nil
}

// PutObject stores the request body.
func (m *MemoryS3) PutObject(_ context.Context, params *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	bucket := aws.ToString(params.Bucket)
	objs, ok := m.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}
	var data []byte
	if params.Body != nil {
		var err error
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
	obj := newMemoryObject(data, aws.ToString(params.ContentType))
	objs[aws.ToString(params.Key)] = obj
	return &s3.PutObjectOutput{ETag: aws.String(obj.etag)}, nil
}

// GetObject returns a stored object.
func (m *MemoryS3) GetObject(_ context.Context, params *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	bucket := aws.ToString(params.Bucket)
	objs, ok := m.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}
	obj, ok := objs[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(obj.etag),
		LastModified:  aws.Time(obj.modified),
	}, nil
}

// ListObjectsV2 lists keys under the prefix in lexical order, honoring PageSize.
func (m *MemoryS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	bucket := aws.ToString(params.Bucket)
	objs, ok := m.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}

	prefix := aws.ToString(params.Prefix)
	keys := make([]string, 0, len(objs))
	for k := range objs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := aws.ToString(params.ContinuationToken); token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, &smithy.GenericAPIError{Code: "InvalidArgument", Message: "bad continuation token"}
		}
		start = n
	}

	pageSize := 1000
	if m.PageSize > 0 {
		pageSize = m.PageSize
	}
	end := start + pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{
		Name:     params.Bucket,
		Prefix:   params.Prefix,
		KeyCount: aws.Int32(int32(end - start)),
	}
	for _, k := range keys[start:end] {
		obj := objs[k]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(obj.data))),
			ETag:         aws.String(obj.etag),
			LastModified: aws.Time(obj.modified),
		})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	} else {
		out.IsTruncated = aws.Bool(false)
	}
	return out, nil
}

// DeleteObjects removes the listed keys. Deleting a missing key succeeds, as in S3.
func (m *MemoryS3) DeleteObjects(_ context.Context, params *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
	bucket := aws.ToString(params.Bucket)
	objs, ok := m.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}
	out := &s3.DeleteObjectsOutput{}
	if params.Delete == nil {
		return out, nil
	}
	for _, id := range params.Delete.Objects {
		delete(objs, aws.ToString(id.Key))
		out.Deleted = append(out.Deleted, types.DeletedObject{Key: id.Key})
	}
	return out, nil
}
