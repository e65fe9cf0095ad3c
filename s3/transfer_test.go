package s3

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/localfs"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/testutil"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUploadDownload_RoundTrip(t *testing.T) {
	content := make([]byte, 64*1024)
	_, err := rand.Read(content)
	require.NoError(t, err)

	tests := []struct {
		name string
		fs   func(t *testing.T) (*localfs.FS, string)
	}{
		{
			name: "memory",
			fs: func(*testing.T) (*localfs.FS, string) {
				return localfs.NewInMemory(), "work"
			},
		},
		{
			name: "os",
			fs: func(t *testing.T) (*localfs.FS, string) {
				return localfs.NewOS(), t.TempDir()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, dir := tt.fs(t)
			api := &testutil.MockS3Client{Store: testutil.NewMemoryS3("test-bucket")}
			m := NewWithClient(api, WithFilesystem(fs))

			src := filepath.Join(dir, "in", "blob.bin")
			require.NoError(t, fs.WriteFile(src, content, 0o644))

			key, err := m.UploadFile(context.Background(), src, "test-bucket", "")
			require.NoError(t, err)
			assert.Equal(t, "blob.bin", key)

			dst := filepath.Join(dir, "out", "nested", "copy.bin")
			require.NoError(t, m.DownloadFile(context.Background(), "test-bucket", key, dst))

			got, err := fs.ReadFile(dst)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(content, got), "downloaded content differs from upload")
			assert.Equal(t, 1, api.Count("PutObject"))
		})
	}
}

func TestUploadFile_ContentType(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{name: "sniffed png", file: "image.dat", data: pngHeader, want: "image/png"},
		{name: "sniffed text", file: "notes", data: []byte("hello world\n"), want: "text/plain; charset=utf-8"},
		{name: "extension fallback", file: "archive.wasm", data: []byte{0x01, 0x02, 0x03, 0xff}, want: "application/wasm"},
		{name: "unknown", file: "blob", data: []byte{0x01, 0x02, 0x03, 0xff}, want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, api, fs := newTestManager(t)
			require.NoError(t, fs.WriteFile(tt.file, tt.data, 0o644))

			key, err := m.UploadFile(context.Background(), tt.file, "test-bucket", "k")
			require.NoError(t, err)
			assert.Equal(t, "k", key)
			assert.Equal(t, tt.want, api.Store.ContentType("test-bucket", "k"))

			stored, ok := api.Store.Object("test-bucket", "k")
			require.True(t, ok)
			assert.Equal(t, tt.data, stored, "sniffing must not consume the body")
		})
	}
}

func TestUploadFile_Errors(t *testing.T) {
	t.Run("missing local file", func(t *testing.T) {
		m, api, _ := newTestManager(t)
		_, err := m.UploadFile(context.Background(), "nope.txt", "test-bucket", "")
		assert.ErrorIs(t, err, awserrors.ErrNotFound)
		assert.Zero(t, api.Count("PutObject"))
	})

	t.Run("missing bucket", func(t *testing.T) {
		m, _, fs := newTestManager(t)
		require.NoError(t, fs.WriteFile("a.txt", []byte("a"), 0o644))
		_, err := m.UploadFile(context.Background(), "a.txt", "nope", "")
		assert.ErrorIs(t, err, awserrors.ErrNotFound)
		assert.True(t, awserrors.IsRemote(err))
	})

	t.Run("directory", func(t *testing.T) {
		m, _, fs := newTestManager(t)
		require.NoError(t, fs.MkdirAll("dir", 0o755))
		_, err := m.UploadFile(context.Background(), "dir", "test-bucket", "")
		assert.ErrorIs(t, err, awserrors.ErrInvalidInput)
	})

	t.Run("presence checks", func(t *testing.T) {
		m, api, _ := newTestManager(t)
		_, err := m.UploadFile(context.Background(), "", "test-bucket", "")
		assert.ErrorIs(t, err, awserrors.ErrInvalidInput)
		_, err = m.UploadFile(context.Background(), "a.txt", "", "")
		assert.ErrorIs(t, err, awserrors.ErrInvalidInput)
		assert.Empty(t, api.Calls)
	})
}

func TestUploadFile_Multipart(t *testing.T) {
	const partSize = 5 * 1024 * 1024
	m, api, fs := newTestManager(t, WithPartSize(partSize))
	require.NoError(t, fs.WriteFile("big.bin", bytes.Repeat([]byte("x"), partSize+1024), 0o644))

	var uploaded int64
	api.CreateMultipartUploadFunc = func(_ context.Context, in *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
		assert.Equal(t, "big.bin", aws.ToString(in.Key))
		return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
	}
	api.UploadPartFunc = func(_ context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
		n, err := io.Copy(io.Discard, in.Body)
		require.NoError(t, err)
		uploaded += n
		return &s3.UploadPartOutput{ETag: aws.String("etag")}, nil
	}
	api.CompleteMultipartUploadFunc = func(_ context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
		assert.Equal(t, "upload-1", aws.ToString(in.UploadId))
		assert.Len(t, in.MultipartUpload.Parts, 2)
		return &s3.CompleteMultipartUploadOutput{}, nil
	}

	_, err := m.UploadFile(context.Background(), "big.bin", "test-bucket", "")
	require.NoError(t, err)
	assert.Equal(t, 2, api.Count("UploadPart"))
	assert.Equal(t, int64(partSize+1024), uploaded)
	assert.Zero(t, api.Count("PutObject"))
}

func TestDownloadFile_MissingKey(t *testing.T) {
	m, _, fs := newTestManager(t)

	err := m.DownloadFile(context.Background(), "test-bucket", "missing", "out/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, awserrors.ErrNotFound)
	assert.Equal(t, "NoSuchKey", awserrors.Code(err))

	exists, err := fs.Exists("out/missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

// failingBody yields data and then fails with err.
type failingBody struct {
	data []byte
	err  error
}

func (b *failingBody) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, b.err
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func TestDownloadFile_InterruptedBodyLeavesNoFile(t *testing.T) {
	m, api, fs := newTestManager(t)
	api.GetObjectFunc = func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return &s3.GetObjectOutput{
			Body: io.NopCloser(&failingBody{data: []byte("partial"), err: io.ErrUnexpectedEOF}),
		}, nil
	}

	err := m.DownloadFile(context.Background(), "test-bucket", "k", "out/k")
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	exists, err := fs.Exists("out/k")
	require.NoError(t, err)
	assert.False(t, exists, "truncated download must be removed")
}

func TestDownloadFile_ReplacesPartialOnRetry(t *testing.T) {
	m, api, fs := newTestManager(t)
	api.Store.Put("test-bucket", "k", []byte("complete"))
	require.NoError(t, fs.WriteFile("out/k", []byte("stale contents that are longer"), 0o644))

	require.NoError(t, m.DownloadFile(context.Background(), "test-bucket", "k", "out/k"))

	data, err := fs.ReadFile("out/k")
	require.NoError(t, err)
	assert.Equal(t, "complete", string(data))
}

// writeTree creates files (slash paths relative to root) and returns their local paths.
func writeTree(t *testing.T, fs *localfs.FS, root string, files ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, fs.WriteFile(p, []byte("content of "+f), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestUploadFolder(t *testing.T) {
	m, api, fs := newTestManager(t)
	writeTree(t, fs, "site", "index.html", "css/main.css", "img/logo/small.png")

	report, err := m.UploadFolder(context.Background(), "site", "test-bucket", "www/")
	require.NoError(t, err)
	assert.True(t, report.OK())

	sort.Strings(report.Succeeded)
	want := []string{"www/css/main.css", "www/img/logo/small.png", "www/index.html"}
	assert.Equal(t, want, report.Succeeded)
	assert.Equal(t, want, api.Store.Keys("test-bucket"))

	data, ok := api.Store.Object("test-bucket", "www/css/main.css")
	require.True(t, ok)
	assert.Equal(t, "content of css/main.css", string(data))
}

func TestUploadFolder_NoPrefix(t *testing.T) {
	m, api, fs := newTestManager(t)
	writeTree(t, fs, "site", "a.txt", "b/c.txt")

	report, err := m.UploadFolder(context.Background(), "site", "test-bucket", "")
	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 2)
	assert.Equal(t, []string{"a.txt", "b/c.txt"}, api.Store.Keys("test-bucket"))
}

func TestUploadFolder_ContinuesPastFailure(t *testing.T) {
	logger, logs := testutil.NewLogger()
	m, api, fs := newTestManager(t, WithLogger(logger))
	writeTree(t, fs, "data", "f1.txt", "f2.txt", "f3.txt", "sub/f4.txt", "sub/f5.txt")

	const failing = "batch/f3.txt"
	var attempted []string
	api.PutObjectFunc = func(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		key := aws.ToString(in.Key)
		attempted = append(attempted, key)
		if key == failing {
			return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
		}
		return api.Store.PutObject(ctx, in)
	}

	report, err := m.UploadFolder(context.Background(), "data", "test-bucket", "batch")
	require.NoError(t, err, "per-file failures must not fail the transfer")

	assert.Len(t, attempted, 5, "every file must be attempted")
	require.Len(t, report.Failed, 1)
	assert.Equal(t, failing, report.Failed[0].Key)
	assert.Equal(t, filepath.Join("data", "f3.txt"), report.Failed[0].Path)
	assert.ErrorIs(t, report.Failed[0].Err, awserrors.ErrAccessDenied)
	assert.Len(t, report.Succeeded, 4)
	assert.NotContains(t, api.Store.Keys("test-bucket"), failing)
	assert.False(t, report.OK())

	assert.Len(t, logs.Find(slog.LevelWarn, "upload failed, continuing"), 1)
}

func TestUploadFolder_UnusableDirectory(t *testing.T) {
	m, api, fs := newTestManager(t)

	_, err := m.UploadFolder(context.Background(), "missing", "test-bucket", "")
	assert.ErrorIs(t, err, awserrors.ErrNotFound)

	require.NoError(t, fs.WriteFile("file.txt", []byte("x"), 0o644))
	_, err = m.UploadFolder(context.Background(), "file.txt", "test-bucket", "")
	assert.ErrorIs(t, err, awserrors.ErrInvalidInput)
	assert.Empty(t, api.Calls)
}

func TestUploadFolder_Canceled(t *testing.T) {
	m, api, fs := newTestManager(t)
	writeTree(t, fs, "data", "a.txt", "b.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := m.UploadFolder(ctx, "data", "test-bucket", "")
	assert.ErrorIs(t, err, awserrors.ErrCanceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Succeeded)
	assert.Zero(t, api.Count("PutObject"))
}

func TestDownloadFolder(t *testing.T) {
	m, api, fs := newTestManager(t)
	api.Store.Put("test-bucket", "www/index.html", []byte("index"))
	api.Store.Put("test-bucket", "www/css/", nil)
	api.Store.Put("test-bucket", "www/css/main.css", []byte("css"))
	api.Store.Put("test-bucket", "other/skip.txt", []byte("skip"))
	api.Store.Put("test-bucket", "www2/secret.txt", []byte("sibling"))
	api.Store.Put("test-bucket", "www.bak", []byte("sibling"))

	report, err := m.DownloadFolder(context.Background(), "test-bucket", "www", "out")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, []string{"www/css/main.css", "www/index.html"}, report.Succeeded)

	data, err := fs.ReadFile(filepath.Join("out", "css", "main.css"))
	require.NoError(t, err)
	assert.Equal(t, "css", string(data))
	data, err = fs.ReadFile(filepath.Join("out", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "index", string(data))

	for _, p := range []string{"skip.txt", "2", ".bak", filepath.Join("2", "secret.txt")} {
		exists, err := fs.Exists(filepath.Join("out", p))
		require.NoError(t, err)
		assert.False(t, exists, p)
	}
	assert.Equal(t, 2, api.Count("GetObject"))
}

func TestDownloadFolder_SingleObjectPrefix(t *testing.T) {
	m, api, fs := newTestManager(t)
	api.Store.Put("test-bucket", "reports/2024.csv", []byte("rows"))
	api.Store.Put("test-bucket", "reports/2024.csv.old", []byte("old"))

	report, err := m.DownloadFolder(context.Background(), "test-bucket", "reports/2024.csv", "out")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/2024.csv"}, report.Succeeded)
	assert.Empty(t, report.Failed)

	data, err := fs.ReadFile(filepath.Join("out", "2024.csv"))
	require.NoError(t, err)
	assert.Equal(t, "rows", string(data))
}

func TestDownloadFolder_PerFileTolerance(t *testing.T) {
	m, api, fs := newTestManager(t)
	api.Store.Put("test-bucket", "p/a.txt", []byte("a"))
	api.Store.Put("test-bucket", "p/b.txt", []byte("b"))
	api.Store.Put("test-bucket", "p/../../escape.txt", []byte("evil"))
	api.Store.Put("test-bucket", "p/c.txt", []byte("c"))

	api.GetObjectFunc = func(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		if aws.ToString(in.Key) == "p/b.txt" {
			return nil, &smithy.GenericAPIError{Code: "AccessDenied"}
		}
		return api.Store.GetObject(ctx, in)
	}

	dir := filepath.Join("work", "dl")
	report, err := m.DownloadFolder(context.Background(), "test-bucket", "p/", dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"p/a.txt", "p/c.txt"}, report.Succeeded)
	require.Len(t, report.Failed, 2)

	byKey := map[string]TransferFailure{}
	for _, f := range report.Failed {
		byKey[f.Key] = f
	}
	assert.ErrorIs(t, byKey["p/b.txt"].Err, awserrors.ErrAccessDenied)
	assert.ErrorIs(t, byKey["p/../../escape.txt"].Err, awserrors.ErrInvalidInput)

	exists, err := fs.Exists(filepath.Join("escape.txt"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 3, api.Count("GetObject"), "escaping key must not be fetched")
}

func TestDownloadFolder_ListingFailure(t *testing.T) {
	m, _, _ := newTestManager(t)
	report, err := m.DownloadFolder(context.Background(), "nope", "", "out")
	assert.ErrorIs(t, err, awserrors.ErrNotFound)
	assert.Nil(t, report)
}

func TestDownloadFolder_OSLayout(t *testing.T) {
	dir := t.TempDir()
	api := &testutil.MockS3Client{Store: testutil.NewMemoryS3("test-bucket")}
	api.Store.Put("test-bucket", "root/deep/er/file.txt", []byte("deep"))
	m := NewWithClient(api, WithFilesystem(localfs.NewOS()))

	report, err := m.DownloadFolder(context.Background(), "test-bucket", "root", dir)
	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 1)

	data, err := os.ReadFile(filepath.Join(dir, "deep", "er", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(data))
}

func TestLocalTarget(t *testing.T) {
	tests := []struct {
		prefix, key string
		want        string
		ok          bool
	}{
		{prefix: "p", key: "p/a/b.txt", want: filepath.Join("d", "a", "b.txt"), ok: true},
		{prefix: "p/", key: "p/a.txt", want: filepath.Join("d", "a.txt"), ok: true},
		{prefix: "", key: "x/y", want: filepath.Join("d", "x", "y"), ok: true},
		{prefix: "p/file.txt", key: "p/file.txt", want: filepath.Join("d", "file.txt"), ok: true},
		{prefix: "p", key: "p/../../etc/passwd", ok: false},
		{prefix: "p", key: "p/..", ok: false},
		{prefix: "www", key: "www2/secret.txt", ok: false},
		{prefix: "www", key: "www.bak", ok: false},
		{prefix: "www/", key: "www2/secret.txt", ok: false},
		{prefix: "www", key: "www", want: filepath.Join("d", "www"), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := localTarget("d", tt.prefix, tt.key)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
