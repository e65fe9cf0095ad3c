package s3

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// UploadFolder uploads every regular file under localDir to bucket, keyed by
// prefix joined with the file's slash-separated path relative to localDir.
//
// Files are uploaded one at a time. A file that cannot be read or uploaded is
// recorded in the report and the walk continues. An error is returned only when
// localDir itself cannot be walked or ctx is done; the report is still returned
// with what was transferred before that.
func (m *Manager) UploadFolder(ctx context.Context, localDir, bucket, prefix string) (*TransferReport, error) {
	const op = "s3.upload_folder"
	if localDir == "" {
		return nil, awserrors.Invalid(op, "", "local directory is required")
	}
	if bucket == "" {
		return nil, awserrors.Invalid(op, localDir, "bucket name is required")
	}

	info, err := m.fs.Stat(localDir)
	if err != nil {
		return nil, m.fail(ctx, op, localDir, awserrors.FromLocal(op, localDir, err))
	}
	if !info.IsDir() {
		return nil, awserrors.Invalid(op, localDir, "not a directory")
	}

	report := &TransferReport{Succeeded: []string{}, Failed: []TransferFailure{}}
	walkErr := m.fs.Walk(localDir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			if filepath.Clean(p) == filepath.Clean(localDir) {
				return err
			}
			report.fail("", p, awserrors.FromLocal(op, p, err))
			m.warn(ctx, "skipping unreadable path", "path", p, "error", err)
			if fi != nil && fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if !fi.Mode().IsRegular() {
			if m.logger != nil {
				m.logger.DebugContext(ctx, "skipping non-regular file", "path", p, "mode", fi.Mode().String())
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			report.fail("", p, awserrors.FromLocal(op, p, err))
			return nil
		}
		key := joinKey(prefix, filepath.ToSlash(rel))

		if _, err := m.UploadFile(ctx, p, bucket, key); err != nil {
			report.fail(key, p, err)
			m.warn(ctx, "upload failed, continuing", "path", p, "key", key)
			return nil
		}
		report.Succeeded = append(report.Succeeded, key)
		return nil
	})
	if walkErr != nil {
		return report, m.fail(ctx, op, localDir, walkErr)
	}

	m.info(ctx, "folder uploaded",
		"path", localDir,
		"bucket", bucket,
		"prefix", prefix,
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed))
	return report, nil
}

// DownloadFolder downloads every object under prefix into localDir, recreating
// the key layout below prefix as directories.
//
// prefix names a folder: without a trailing "/" it still only matches the key
// equal to it and keys below "prefix/", never siblings such as "prefix2/x".
// Keys ending in "/" are folder markers and are skipped. A key whose relative
// path would land outside localDir is recorded as a failure and not written.
// Per-object failures are recorded in the report and the download continues;
// only a failed listing or a done ctx returns an error.
func (m *Manager) DownloadFolder(ctx context.Context, bucket, prefix, localDir string) (*TransferReport, error) {
	const op = "s3.download_folder"
	if bucket == "" {
		return nil, awserrors.Invalid(op, "", "bucket name is required")
	}
	if localDir == "" {
		return nil, awserrors.Invalid(op, objectRef(bucket, prefix), "local directory is required")
	}

	objects, err := m.ListObjectsWithPrefix(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	report := &TransferReport{Succeeded: []string{}, Failed: []TransferFailure{}}
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, "/") || !inFolder(prefix, obj.Key) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, m.fail(ctx, op, objectRef(bucket, prefix), err)
		}

		target, ok := localTarget(localDir, prefix, obj.Key)
		if !ok {
			report.fail(obj.Key, target, awserrors.Invalid(op, obj.Key, "key escapes the target directory"))
			m.warn(ctx, "skipping key outside target directory", "key", obj.Key)
			continue
		}

		if err := m.DownloadFile(ctx, bucket, obj.Key, target); err != nil {
			report.fail(obj.Key, target, err)
			m.warn(ctx, "download failed, continuing", "key", obj.Key, "path", target)
			continue
		}
		report.Succeeded = append(report.Succeeded, obj.Key)
	}

	m.info(ctx, "folder downloaded",
		"bucket", bucket,
		"prefix", prefix,
		"path", localDir,
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed))
	return report, nil
}

func (m *Manager) warn(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.WarnContext(ctx, msg, args...)
	}
}

// joinKey joins a key prefix and a slash-separated relative path.
func joinKey(prefix, rel string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}

// inFolder reports whether key lies under prefix taken as a folder: "www"
// covers "www" itself and "www/...", but not "www2/..." or "www.bak".
func inFolder(prefix, key string) bool {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(key, prefix)
	}
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}

// localTarget maps key to a path under localDir. It reports false when key is
// not under prefix or the result would not be inside localDir.
func localTarget(localDir, prefix, key string) (string, bool) {
	if !inFolder(prefix, key) {
		return "", false
	}
	rel := strings.TrimPrefix(key, prefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		rel = path.Base(key)
	}

	target := filepath.Join(localDir, filepath.FromSlash(rel))
	within, err := filepath.Rel(localDir, target)
	if err != nil || within == "." || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return target, false
	}
	return target, true
}
