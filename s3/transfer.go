package s3

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/localfs"
)

const (
	defaultContentType = "application/octet-stream"

	// sniffLen is how much of a file mimetype inspects
	sniffLen = 3072
)

// UploadFile uploads the file at localPath to bucket under key, returning the
// key used. An empty key defaults to the file's base name.
//
// Files smaller than the part size go up in a single PutObject; larger files
// use a multipart upload. The content type is sniffed from the file's leading
// bytes, falling back to its extension.
func (m *Manager) UploadFile(ctx context.Context, localPath, bucket, key string) (string, error) {
	const op = "s3.upload_file"
	if localPath == "" {
		return "", awserrors.Invalid(op, "", "local path is required")
	}
	if bucket == "" {
		return "", awserrors.Invalid(op, localPath, "bucket name is required")
	}
	if key == "" {
		key = filepath.Base(localPath)
	}

	info, err := m.fs.Stat(localPath)
	if err != nil {
		return "", m.fail(ctx, op, localPath, awserrors.FromLocal(op, localPath, err))
	}
	if !info.Mode().IsRegular() {
		return "", awserrors.Invalid(op, localPath, "not a regular file")
	}

	f, err := m.fs.Open(localPath)
	if err != nil {
		return "", m.fail(ctx, op, localPath, awserrors.FromLocal(op, localPath, err))
	}
	defer f.Close()

	contentType, err := detectContentType(f, localPath)
	if err != nil {
		return "", m.fail(ctx, op, localPath, awserrors.FromLocal(op, localPath, err))
	}

	_, err = m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		var multi manager.MultiUploadFailure
		if m.logger != nil && errors.As(err, &multi) {
			m.logger.DebugContext(ctx, "multipart upload aborted", "upload_id", multi.UploadID())
		}
		return "", m.fail(ctx, op, objectRef(bucket, key), err)
	}

	m.info(ctx, "file uploaded",
		"path", localPath,
		"bucket", bucket,
		"key", key,
		"size", info.Size(),
		"content_type", contentType)
	return key, nil
}

// DownloadFile downloads bucket/key to localPath, creating missing parent
// directories. A missing key fails with errors.ErrNotFound. No file is left at
// localPath when the download fails partway.
func (m *Manager) DownloadFile(ctx context.Context, bucket, key, localPath string) error {
	const op = "s3.download_file"
	if bucket == "" || key == "" {
		return awserrors.Invalid(op, objectRef(bucket, key), "bucket and key are required")
	}
	if localPath == "" {
		return awserrors.Invalid(op, objectRef(bucket, key), "local path is required")
	}

	out, err := m.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return m.fail(ctx, op, objectRef(bucket, key), err)
	}
	defer out.Body.Close()

	if dir := filepath.Dir(localPath); dir != "." {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return m.fail(ctx, op, localPath, awserrors.FromLocal(op, localPath, err))
		}
	}
	f, err := m.fs.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return m.fail(ctx, op, localPath, awserrors.FromLocal(op, localPath, err))
	}

	n, err := io.Copy(f, out.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := m.fs.Remove(localPath); rmErr != nil {
			m.warn(ctx, "could not remove partial download", "path", localPath, "error", rmErr)
		}
		return m.fail(ctx, op, objectRef(bucket, key), err)
	}

	m.info(ctx, "file downloaded", "bucket", bucket, "key", key, "path", localPath, "size", n)
	return nil
}

// detectContentType sniffs the file's leading bytes and rewinds it.
func detectContentType(f localfs.File, path string) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil && mt.String() != defaultContentType {
			return mt.String(), nil
		}
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt, nil
	}
	return defaultContentType, nil
}
